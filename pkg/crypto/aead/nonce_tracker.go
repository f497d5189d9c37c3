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
	"sync"
)

// DefaultNonceCapacity is how many recent nonces a tracker remembers
const DefaultNonceCapacity = 1 << 16

// NonceTracker remembers the most recent nonces used with one key and
// rejects repeats among them. Random 96-bit nonces make a collision
// astronomically unlikely; the tracker turns a stuck or looping RNG into a
// hard error. Once capacity nonces are held, the oldest is evicted for each
// new one, so memory stays bounded for the life of the key.
type NonceTracker struct {
	enabled  bool
	capacity int
	nonces   map[[NonceSize]byte]struct{}
	order    [][NonceSize]byte
	next     int
	mu       sync.Mutex
}

// NewNonceTracker creates a tracker holding up to capacity nonces. A
// non-positive capacity selects DefaultNonceCapacity. A disabled tracker
// accepts every nonce.
func NewNonceTracker(enabled bool, capacity int) *NonceTracker {
	if capacity <= 0 {
		capacity = DefaultNonceCapacity
	}
	return &NonceTracker{
		enabled:  enabled,
		capacity: capacity,
		nonces:   make(map[[NonceSize]byte]struct{}),
	}
}

// CheckAndRecordNonce returns ErrNonceReuse if nonce was seen before and
// records it otherwise.
func (nt *NonceTracker) CheckAndRecordNonce(nonce []byte) error {
	if !nt.enabled {
		return nil
	}
	if len(nonce) != NonceSize {
		return ErrNonceReuse
	}

	var key [NonceSize]byte
	copy(key[:], nonce)

	nt.mu.Lock()
	defer nt.mu.Unlock()

	if _, exists := nt.nonces[key]; exists {
		return ErrNonceReuse
	}
	if len(nt.order) < nt.capacity {
		nt.order = append(nt.order, key)
	} else {
		delete(nt.nonces, nt.order[nt.next])
		nt.order[nt.next] = key
		nt.next = (nt.next + 1) % nt.capacity
	}
	nt.nonces[key] = struct{}{}
	return nil
}

// Contains checks if a nonce has been used before without recording it.
func (nt *NonceTracker) Contains(nonce []byte) bool {
	if !nt.enabled || len(nonce) != NonceSize {
		return false
	}
	var key [NonceSize]byte
	copy(key[:], nonce)

	nt.mu.Lock()
	defer nt.mu.Unlock()
	_, exists := nt.nonces[key]
	return exists
}

// Count returns the number of nonces currently remembered
func (nt *NonceTracker) Count() int {
	nt.mu.Lock()
	defer nt.mu.Unlock()
	return len(nt.nonces)
}

// Clear removes all tracked nonces. Only call this when the key is being
// destroyed.
func (nt *NonceTracker) Clear() {
	nt.mu.Lock()
	defer nt.mu.Unlock()
	nt.nonces = make(map[[NonceSize]byte]struct{})
	nt.order = nil
	nt.next = 0
}
