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
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"time"
)

// Signature is a detached signature together with the digest of the signed
// message. The message itself is never retained.
type Signature struct {
	Algorithm      Algorithm
	SignatureBytes []byte
	MessageHash    []byte
	Timestamp      time.Time
	SignerKeyID    string
}

// NewSignature wraps raw signature bytes produced over message
func NewSignature(algorithm Algorithm, signature, message []byte, signerKeyID string) *Signature {
	return &Signature{
		Algorithm:      algorithm,
		SignatureBytes: signature,
		MessageHash:    HashMessage(message),
		Timestamp:      time.Now().UTC(),
		SignerKeyID:    signerKeyID,
	}
}

// HashMessage returns the SHA-256 digest recorded in signatures
func HashMessage(message []byte) []byte {
	sum := sha256.Sum256(message)
	return sum[:]
}

// CoversMessage reports, in constant time, whether the recorded digest
// matches message. It does not verify the signature itself.
func (s *Signature) CoversMessage(message []byte) bool {
	return subtle.ConstantTimeCompare(s.MessageHash, HashMessage(message)) == 1
}

// SignatureRecord is the hex/JSON form of a Signature
type SignatureRecord struct {
	Algorithm      Algorithm `json:"algorithm"`
	SignatureHex   string    `json:"signature_hex"`
	MessageHashHex string    `json:"message_hash_hex"`
	Timestamp      time.Time `json:"timestamp"`
	SignerKeyID    string    `json:"signer_key_id,omitempty"`
}

// Record returns the serializable form of the signature
func (s *Signature) Record() *SignatureRecord {
	return &SignatureRecord{
		Algorithm:      s.Algorithm,
		SignatureHex:   hex.EncodeToString(s.SignatureBytes),
		MessageHashHex: hex.EncodeToString(s.MessageHash),
		Timestamp:      s.Timestamp,
		SignerKeyID:    s.SignerKeyID,
	}
}

// SignatureFromRecord decodes a record produced by Record
func SignatureFromRecord(r *SignatureRecord) (*Signature, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil record", ErrInvalidRecord)
	}
	sig, err := hex.DecodeString(r.SignatureHex)
	if err != nil {
		return nil, fmt.Errorf("%w: signature: %v", ErrInvalidRecord, err)
	}
	hash, err := hex.DecodeString(r.MessageHashHex)
	if err != nil {
		return nil, fmt.Errorf("%w: message hash: %v", ErrInvalidRecord, err)
	}
	return &Signature{
		Algorithm:      r.Algorithm,
		SignatureBytes: sig,
		MessageHash:    hash,
		Timestamp:      r.Timestamp,
		SignerKeyID:    r.SignerKeyID,
	}, nil
}
