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

// Package x25519 is the classical half of the hybrid key exchange: X25519
// Diffie-Hellman over raw 32-byte keys plus HKDF-SHA256 key derivation.
package x25519

import (
	"crypto/ecdh"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// PublicKeySize is the length of an encoded X25519 public key
	PublicKeySize = 32

	// PrivateKeySize is the length of an encoded X25519 private key
	PrivateKeySize = 32

	// SharedSecretSize is the length of the raw ECDH output
	SharedSecretSize = 32

	// maxHKDFSHA256 is the HKDF-SHA256 output limit (255 * hash length)
	maxHKDFSHA256 = 255 * sha256.Size
)

var (
	// ErrInvalidPublicKey indicates a public key of the wrong length or a
	// low-order point
	ErrInvalidPublicKey = errors.New("x25519: invalid public key")

	// ErrInvalidPrivateKey indicates a private key of the wrong length
	ErrInvalidPrivateKey = errors.New("x25519: invalid private key")
)

// KeyAgreement performs X25519 key generation, Diffie-Hellman and key
// derivation. All keys are raw byte slices.
type KeyAgreement interface {
	// GenerateKey returns a fresh key pair
	GenerateKey() (publicKey, privateKey []byte, err error)

	// DeriveSharedSecret performs X25519 between privateKey and
	// peerPublicKey. The output must go through DeriveKey before use.
	DeriveSharedSecret(privateKey, peerPublicKey []byte) ([]byte, error)

	// DeriveKey runs HKDF-SHA256 over secret
	DeriveKey(secret, salt, info []byte, keyLength int) ([]byte, error)
}

type x25519KeyAgreement struct {
	curve ecdh.Curve
	rand  io.Reader
}

// New creates a key agreement that draws randomness from crypto/rand
func New() KeyAgreement {
	return NewWithRand(rand.Reader)
}

// NewWithRand creates a key agreement with a custom randomness source
func NewWithRand(r io.Reader) KeyAgreement {
	return &x25519KeyAgreement{
		curve: ecdh.X25519(),
		rand:  r,
	}
}

func (ka *x25519KeyAgreement) GenerateKey() ([]byte, []byte, error) {
	privateKey, err := ka.curve.GenerateKey(ka.rand)
	if err != nil {
		return nil, nil, fmt.Errorf("x25519: generate key: %w", err)
	}
	return privateKey.PublicKey().Bytes(), privateKey.Bytes(), nil
}

func (ka *x25519KeyAgreement) DeriveSharedSecret(privateKey, peerPublicKey []byte) ([]byte, error) {
	priv, err := ParsePrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	pub, err := ParsePublicKey(peerPublicKey)
	if err != nil {
		return nil, err
	}
	// crypto/ecdh rejects an all-zero result (low-order peer point)
	secret, err := priv.ECDH(pub)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	return secret, nil
}

func (ka *x25519KeyAgreement) DeriveKey(secret, salt, info []byte, keyLength int) ([]byte, error) {
	return DeriveKey(secret, salt, info, keyLength)
}

// DeriveKey expands secret into keyLength bytes with HKDF-SHA256
func DeriveKey(secret, salt, info []byte, keyLength int) ([]byte, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("x25519: shared secret cannot be empty")
	}
	if keyLength <= 0 || keyLength > maxHKDFSHA256 {
		return nil, fmt.Errorf("x25519: key length %d out of range (1..%d)", keyLength, maxHKDFSHA256)
	}

	reader := hkdf.New(sha256.New, secret, salt, info)
	derived := make([]byte, keyLength)
	if _, err := io.ReadFull(reader, derived); err != nil {
		return nil, fmt.Errorf("x25519: derive key: %w", err)
	}
	return derived, nil
}

// PublicKeyFromPrivate recomputes the public key for privateKey
func PublicKeyFromPrivate(privateKey []byte) ([]byte, error) {
	priv, err := ParsePrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	return priv.PublicKey().Bytes(), nil
}

// ParsePrivateKey parses a raw 32-byte X25519 private key
func ParsePrivateKey(privateKeyBytes []byte) (*ecdh.PrivateKey, error) {
	if len(privateKeyBytes) != PrivateKeySize {
		return nil, fmt.Errorf("%w: must be %d bytes, got %d",
			ErrInvalidPrivateKey, PrivateKeySize, len(privateKeyBytes))
	}
	key, err := ecdh.X25519().NewPrivateKey(privateKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}
	return key, nil
}

// ParsePublicKey parses a raw 32-byte X25519 public key
func ParsePublicKey(publicKeyBytes []byte) (*ecdh.PublicKey, error) {
	if len(publicKeyBytes) != PublicKeySize {
		return nil, fmt.Errorf("%w: must be %d bytes, got %d",
			ErrInvalidPublicKey, PublicKeySize, len(publicKeyBytes))
	}
	key, err := ecdh.X25519().NewPublicKey(publicKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	return key, nil
}
