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
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
	"sync"

	"github.com/awnumar/memguard"
)

// SealerOptions tunes a Sealer. The zero value enables nonce tracking with
// the default byte limit and crypto/rand.
type SealerOptions struct {
	// DisableNonceTracking turns off the reuse check
	DisableNonceTracking bool

	// NonceCapacity bounds the remembered nonces; 0 means DefaultNonceCapacity
	NonceCapacity int

	// BytesLimit caps plaintext sealed under the key; 0 means DefaultBytesLimit
	BytesLimit int64

	// Rand is the nonce source
	Rand io.Reader
}

// Sealer binds one key to an AEAD with random nonces, nonce reuse detection
// and a usage budget.
type Sealer struct {
	mu     sync.RWMutex
	name   string
	key    []byte
	aead   cipher.AEAD
	nonces *NonceTracker
	bytes  *BytesTracker
	rand   io.Reader
}

// NewSealer creates a sealer for the named cipher. The sealer takes
// ownership of key and wipes it on Destroy.
func NewSealer(name string, key []byte, opts *SealerOptions) (*Sealer, error) {
	if opts == nil {
		opts = &SealerOptions{}
	}
	resolved, err := Resolve(name)
	if err != nil {
		return nil, err
	}
	a, err := New(resolved, key)
	if err != nil {
		return nil, err
	}
	r := opts.Rand
	if r == nil {
		r = rand.Reader
	}
	return &Sealer{
		name:   resolved,
		key:    key,
		aead:   a,
		nonces: NewNonceTracker(!opts.DisableNonceTracking, opts.NonceCapacity),
		bytes:  NewBytesTracker(true, opts.BytesLimit),
		rand:   r,
	}, nil
}

// Cipher returns the resolved cipher name
func (s *Sealer) Cipher() string {
	return s.name
}

// Seal encrypts plaintext under a fresh random nonce. The returned
// ciphertext carries the TagSize-byte tag at its end.
func (s *Sealer) Seal(plaintext, aad []byte) (nonce, ciphertext []byte, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.aead == nil {
		return nil, nil, ErrClosed
	}
	if err := s.bytes.CheckAndIncrementBytes(int64(len(plaintext))); err != nil {
		return nil, nil, err
	}

	nonce = make([]byte, NonceSize)
	if _, err := io.ReadFull(s.rand, nonce); err != nil {
		return nil, nil, fmt.Errorf("aead: nonce: %w", err)
	}
	if err := s.nonces.CheckAndRecordNonce(nonce); err != nil {
		return nil, nil, err
	}
	return nonce, s.aead.Seal(nil, nonce, plaintext, aad), nil
}

// Open authenticates and decrypts ciphertext. On failure no plaintext is
// returned.
func (s *Sealer) Open(nonce, ciphertext, aad []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.aead == nil {
		return nil, ErrClosed
	}
	if len(nonce) != NonceSize || len(ciphertext) < TagSize {
		return nil, ErrAuthentication
	}
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, ErrAuthentication
	}
	return plaintext, nil
}

// Usage returns the byte tracker for monitoring
func (s *Sealer) Usage() *BytesTracker {
	return s.bytes
}

// Destroy wipes the key and disables the sealer. Safe to call more than
// once.
func (s *Sealer) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key != nil {
		memguard.WipeBytes(s.key)
		s.key = nil
	}
	s.aead = nil
	s.nonces.Clear()
}
