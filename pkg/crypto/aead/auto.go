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

// Package aead provides the authenticated encryption used to keep secrets
// encrypted in memory and to protect hybrid session payloads.
//
// Two 256-bit ciphers are supported, both with a 96-bit nonce and a 128-bit
// tag:
//
//   - AES-256-GCM: selected when the CPU has AES instructions.
//   - ChaCha20-Poly1305: selected otherwise; constant time in software.
//
// Example usage:
//
//	name := aead.SelectOptimal()
//	sealer, err := aead.NewSealer(name, key, nil)
//	nonce, ct, err := sealer.Seal(plaintext, aad)
package aead

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/sys/cpu"
)

// Cipher names
const (
	// Auto defers the choice to SelectOptimal
	Auto = "auto"

	// AES256GCM is AES-256 in Galois/Counter Mode
	AES256GCM = "aes-256-gcm"

	// ChaCha20Poly1305 is the RFC 8439 AEAD
	ChaCha20Poly1305 = "chacha20-poly1305"
)

const (
	// KeySize is the key length for every supported cipher
	KeySize = 32

	// NonceSize is the nonce length for every supported cipher (96 bits)
	NonceSize = 12

	// TagSize is the authentication tag length (128 bits)
	TagSize = 16
)

// HasAESNI returns true if the CPU has hardware AES support.
//
// Supported architectures:
//   - amd64: Checks X86.HasAES
//   - arm64: Checks ARM64.HasAES
//   - Other architectures return false
func HasAESNI() bool {
	switch runtime.GOARCH {
	case "amd64":
		return cpu.X86.HasAES
	case "arm64":
		return cpu.ARM64.HasAES
	default:
		return false
	}
}

// SelectOptimal returns AES256GCM when the CPU accelerates AES and
// ChaCha20Poly1305 otherwise
func SelectOptimal() string {
	if HasAESNI() {
		return AES256GCM
	}
	return ChaCha20Poly1305
}

// Resolve normalizes a configured cipher name. Auto and the empty string
// resolve through SelectOptimal; JWE-style aliases are accepted.
func Resolve(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", Auto:
		return SelectOptimal(), nil
	case AES256GCM, "a256gcm", "aes256-gcm":
		return AES256GCM, nil
	case ChaCha20Poly1305, "chacha20poly1305":
		return ChaCha20Poly1305, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedCipher, name)
	}
}

// New constructs the named AEAD with key. name may be Auto.
func New(name string, key []byte) (cipher.AEAD, error) {
	resolved, err := Resolve(name)
	if err != nil {
		return nil, err
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidKeySize, KeySize, len(key))
	}

	switch resolved {
	case AES256GCM:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, fmt.Errorf("aead: aes: %w", err)
		}
		return cipher.NewGCM(block)
	default:
		return chacha20poly1305.New(key)
	}
}
