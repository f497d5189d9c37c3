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

package secure

import (
	"fmt"
	"log/slog"
	"time"
)

// Handle identifies a secret held by a Store. It carries no key material;
// presenting it to the Store that issued it is the only way to read the
// secret back.
type Handle struct {
	KeyID     string
	Algorithm string
	CreatedAt time.Time
	ExpiresAt time.Time

	// seq identifies the store entry the handle was issued for
	seq uint64
}

// IsExpired reports whether now is past the handle's expiry
func (h *Handle) IsExpired(now time.Time) bool {
	return now.After(h.ExpiresAt)
}

// String implements fmt.Stringer
func (h *Handle) String() string {
	return fmt.Sprintf("Handle{key_id=%s, algorithm=%s, expires_at=%s}",
		h.KeyID, h.Algorithm, h.ExpiresAt.Format(time.RFC3339))
}

// LogValue implements slog.LogValuer
func (h *Handle) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("key_id", h.KeyID),
		slog.String("algorithm", h.Algorithm),
		slog.Time("expires_at", h.ExpiresAt),
	)
}

func (h *Handle) clone() *Handle {
	c := *h
	return &c
}
