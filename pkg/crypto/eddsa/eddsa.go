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

// Package eddsa is the classical half of the hybrid signature: Ed25519 with
// 32-byte seed secret keys. Keeping the seed rather than Go's 64-byte
// expanded key gives both hybrid halves a fixed 32-byte classical prefix.
package eddsa

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

const (
	// PublicKeySize is the length of an Ed25519 public key
	PublicKeySize = ed25519.PublicKeySize

	// SeedSize is the length of the secret key as stored by this package
	SeedSize = ed25519.SeedSize

	// SignatureSize is the length of an Ed25519 signature
	SignatureSize = ed25519.SignatureSize
)

// ErrInvalidSeed indicates a secret key that is not SeedSize bytes
var ErrInvalidSeed = errors.New("eddsa: invalid seed")

// GenerateKey returns a public key and its 32-byte seed
func GenerateKey(r io.Reader) (publicKey, seed []byte, err error) {
	if r == nil {
		r = rand.Reader
	}
	seed = make([]byte, SeedSize)
	if _, err := io.ReadFull(r, seed); err != nil {
		return nil, nil, fmt.Errorf("eddsa: generate seed: %w", err)
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return priv.Public().(ed25519.PublicKey), seed, nil
}

// Sign signs message with the key expanded from seed
func Sign(seed, message []byte) ([]byte, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("%w: must be %d bytes, got %d", ErrInvalidSeed, SeedSize, len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	defer clear(priv)
	return ed25519.Sign(priv, message), nil
}

// Verify reports whether signature is a valid signature of message by
// publicKey. Wrongly sized inputs verify as false.
func Verify(publicKey, message, signature []byte) bool {
	if len(publicKey) != PublicKeySize || len(signature) != SignatureSize {
		return false
	}
	return ed25519.Verify(publicKey, message, signature)
}

// PublicKey recomputes the public key for seed
func PublicKey(seed []byte) ([]byte, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("%w: must be %d bytes, got %d", ErrInvalidSeed, SeedSize, len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	defer clear(priv)
	return priv.Public().(ed25519.PublicKey), nil
}
