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

package aead

import (
	"fmt"
	"sync/atomic"
)

// DefaultBytesLimit bounds the plaintext sealed under one key. Random
// 96-bit nonces stay well inside NIST SP 800-38D's 2^32 invocation limit
// at this volume for key-sized messages.
const DefaultBytesLimit = 64 * 1024 * 1024 * 1024

// BytesTracker counts plaintext bytes sealed with one key and enforces a
// limit.
type BytesTracker struct {
	enabled        bool
	bytesEncrypted atomic.Int64
	limit          int64
}

// NewBytesTracker creates a tracker. A zero limit selects DefaultBytesLimit.
func NewBytesTracker(enabled bool, limit int64) *BytesTracker {
	if limit <= 0 {
		limit = DefaultBytesLimit
	}
	return &BytesTracker{
		enabled: enabled,
		limit:   limit,
	}
}

// CheckAndIncrementBytes reserves numBytes of the budget. The counter is
// left unchanged when the reservation would exceed the limit.
func (bt *BytesTracker) CheckAndIncrementBytes(numBytes int64) error {
	if !bt.enabled {
		return nil
	}

	newTotal := bt.bytesEncrypted.Add(numBytes)
	if newTotal > bt.limit {
		bt.bytesEncrypted.Add(-numBytes)
		return fmt.Errorf("%w: encrypted %d bytes, limit %d bytes",
			ErrUsageLimit, newTotal-numBytes, bt.limit)
	}
	return nil
}

// BytesEncrypted returns the bytes sealed so far
func (bt *BytesTracker) BytesEncrypted() int64 {
	return bt.bytesEncrypted.Load()
}

// Remaining returns the unused budget, or -1 when tracking is disabled
func (bt *BytesTracker) Remaining() int64 {
	if !bt.enabled {
		return -1
	}
	return bt.limit - bt.bytesEncrypted.Load()
}

// UsagePercentage returns the share of the limit used, 0 to 100
func (bt *BytesTracker) UsagePercentage() float64 {
	if !bt.enabled {
		return 0
	}
	return float64(bt.bytesEncrypted.Load()) / float64(bt.limit) * 100
}

// ShouldWarn returns true once 90% of the limit is used
func (bt *BytesTracker) ShouldWarn() bool {
	return bt.UsagePercentage() >= 90
}
