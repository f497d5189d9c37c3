// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-pqmesh.
//
// go-pqmesh is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package pqc

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/awnumar/memguard"
)

// EncapsulationResult is the output of a KEM encapsulation: the ciphertext to
// send to the peer and the shared secret kept locally.
//
// The shared secret is never serialized or logged; String, LogValue and
// MarshalJSON report lengths only.
type EncapsulationResult struct {
	Ciphertext   []byte
	SharedSecret []byte
	Algorithm    Algorithm
}

// String implements fmt.Stringer
func (r *EncapsulationResult) String() string {
	return fmt.Sprintf("EncapsulationResult{algorithm=%s, ciphertext_len=%d, shared_secret_len=%d}",
		r.Algorithm, len(r.Ciphertext), len(r.SharedSecret))
}

// LogValue implements slog.LogValuer
func (r *EncapsulationResult) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("algorithm", r.Algorithm.String()),
		slog.Int("ciphertext_len", len(r.Ciphertext)),
		slog.Int("shared_secret_len", len(r.SharedSecret)),
	)
}

// MarshalJSON emits diagnostics only
func (r *EncapsulationResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Algorithm       Algorithm `json:"algorithm"`
		CiphertextLen   int       `json:"ciphertext_len"`
		SharedSecretLen int       `json:"shared_secret_len"`
	}{r.Algorithm, len(r.Ciphertext), len(r.SharedSecret)})
}

// Zeroize wipes the shared secret
func (r *EncapsulationResult) Zeroize() {
	if r == nil || r.SharedSecret == nil {
		return
	}
	memguard.WipeBytes(r.SharedSecret)
	r.SharedSecret = nil
}
