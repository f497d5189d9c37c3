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

// Package hybrid composes classical and post-quantum primitives so that
// breaking one of them alone does not break the result.
//
// KeyExchange combines X25519 with ML-KEM-768. Its ciphertext layout is
//
//	ephemeral X25519 public key (32) || ML-KEM ciphertext || HKDF salt (32)
//
// and both shared secrets are combined with HKDF-SHA256 under a fresh random
// salt per encapsulation. SignatureScheme combines Ed25519 with ML-DSA-65 and
// accepts a signature only when both halves verify.
//
// Combined keys and signatures are split at fixed offsets, classical bytes
// first. The layout is a convention: nothing in the encoding says which half
// is which.
package hybrid

import (
	"crypto/rand"
	"fmt"
	"io"
	"time"

	"github.com/awnumar/memguard"

	"github.com/jeremyhahn/go-pqmesh/pkg/adapters/logger"
	"github.com/jeremyhahn/go-pqmesh/pkg/crypto/x25519"
	"github.com/jeremyhahn/go-pqmesh/pkg/metrics"
	"github.com/jeremyhahn/go-pqmesh/pkg/pqc"
	"github.com/jeremyhahn/go-pqmesh/pkg/pqc/kem"
)

const (
	// SaltSize is the length of the per-encapsulation HKDF salt
	SaltSize = 32

	// SecretSize is the length of the combined shared secret
	SecretSize = 32

	// KDFInfo is the HKDF context for combining the two shared secrets
	KDFInfo = "hybrid-x25519-mlkem768"
)

// KeyExchange is the X25519 + ML-KEM-768 hybrid KEM
type KeyExchange struct {
	kem    *kem.Service
	x25519 x25519.KeyAgreement
	rand   io.Reader
	logger logger.Logger
}

// NewKeyExchange builds the hybrid KEM on kemService, which must be
// configured for ML-KEM-768. A nil or unavailable service yields a
// KeyExchange whose operations fail with pqc.ErrUnavailable.
func NewKeyExchange(kemService *kem.Service, log logger.Logger) (*KeyExchange, error) {
	log = logger.OrNoOp(log).With(logger.String("scheme", pqc.AlgorithmX25519MLKEM768.String()))
	if kemService != nil && kemService.Available() && kemService.Algorithm() != pqc.AlgorithmMLKEM768 {
		return nil, fmt.Errorf("%w: hybrid KEM requires ML-KEM-768, got %s",
			pqc.ErrUnsupportedAlgorithm, kemService.Algorithm())
	}
	kx := &KeyExchange{
		kem:    kemService,
		x25519: x25519.New(),
		rand:   rand.Reader,
		logger: log,
	}
	if kx.Available() {
		log.Info("hybrid key exchange initialized")
	} else {
		log.Warn("hybrid key exchange disabled, no post-quantum provider")
	}
	return kx, nil
}

// Available reports whether the post-quantum half is usable
func (kx *KeyExchange) Available() bool {
	return kx.kem != nil && kx.kem.Available()
}

// Algorithm returns pqc.AlgorithmX25519MLKEM768
func (kx *KeyExchange) Algorithm() pqc.Algorithm {
	return pqc.AlgorithmX25519MLKEM768
}

// GenerateKeyPair creates independent X25519 and ML-KEM-768 key pairs. With
// a non-empty keyID the sub keys are named keyID_x25519 and keyID_mlkem and
// the ML-KEM secret is registered by the KEM service.
func (kx *KeyExchange) GenerateKeyPair(keyID string, validityDays int) (*KeyPair, error) {
	if !kx.Available() {
		return nil, pqc.ErrUnavailable
	}

	pub, priv, err := kx.x25519.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("hybrid: %w", err)
	}
	classical := pqc.NewKeyPair(pqc.AlgorithmX25519, pub, priv, subKeyID(keyID, SuffixX25519), validityDays)

	pq, err := kx.kem.GenerateKeyPair(subKeyID(keyID, SuffixMLKEM), validityDays)
	if err != nil {
		classical.Zeroize()
		return nil, fmt.Errorf("hybrid: %w", err)
	}

	kp := newKeyPair(kx.Algorithm(), classical, pq, keyID, validityDays)
	kx.logger.Info("generated hybrid key pair", logger.KeyID(kp.KeyID))
	return kp, nil
}

// Encapsulate derives a fresh combined secret for peerPublicKey (X25519
// public key || ML-KEM public key) and returns it with the combined
// ciphertext.
func (kx *KeyExchange) Encapsulate(peerPublicKey []byte) (*pqc.EncapsulationResult, error) {
	start := time.Now()
	result, err := kx.encapsulate(peerPublicKey)
	metrics.Observe(metrics.OpEncapsulate, kx.Algorithm().String(), start, err)
	return result, err
}

func (kx *KeyExchange) encapsulate(peerPublicKey []byte) (*pqc.EncapsulationResult, error) {
	if !kx.Available() {
		return nil, pqc.ErrUnavailable
	}
	if len(peerPublicKey) <= x25519.PublicKeySize {
		return nil, fmt.Errorf("%w: hybrid public key must exceed %d bytes, got %d",
			pqc.ErrInvalidPublicKey, x25519.PublicKeySize, len(peerPublicKey))
	}

	ephPub, ephPriv, err := kx.x25519.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("hybrid: %w", err)
	}
	defer memguard.WipeBytes(ephPriv)

	classicalSecret, err := kx.x25519.DeriveSharedSecret(ephPriv, peerPublicKey[:x25519.PublicKeySize])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pqc.ErrInvalidPublicKey, err)
	}
	defer memguard.WipeBytes(classicalSecret)

	pq, err := kx.kem.Encapsulate(peerPublicKey[x25519.PublicKeySize:])
	if err != nil {
		return nil, fmt.Errorf("hybrid: %w", err)
	}
	defer pq.Zeroize()

	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(kx.rand, salt); err != nil {
		return nil, fmt.Errorf("hybrid: generate salt: %w", err)
	}

	secret, err := combineSecrets(classicalSecret, pq.SharedSecret, salt)
	if err != nil {
		return nil, err
	}

	ciphertext := make([]byte, 0, len(ephPub)+len(pq.Ciphertext)+len(salt))
	ciphertext = append(ciphertext, ephPub...)
	ciphertext = append(ciphertext, pq.Ciphertext...)
	ciphertext = append(ciphertext, salt...)

	kx.logger.Debug("hybrid encapsulation", logger.Len("ciphertext_len", ciphertext))
	return &pqc.EncapsulationResult{
		Ciphertext:   ciphertext,
		SharedSecret: secret,
		Algorithm:    kx.Algorithm(),
	}, nil
}

// Decapsulate recovers the combined secret from ciphertext using secretKey
// (X25519 private key || ML-KEM secret key)
func (kx *KeyExchange) Decapsulate(secretKey, ciphertext []byte) ([]byte, error) {
	start := time.Now()
	secret, err := kx.decapsulate(secretKey, ciphertext)
	metrics.Observe(metrics.OpDecapsulate, kx.Algorithm().String(), start, err)
	return secret, err
}

func (kx *KeyExchange) decapsulate(secretKey, ciphertext []byte) ([]byte, error) {
	if !kx.Available() {
		return nil, pqc.ErrUnavailable
	}
	if len(secretKey) <= x25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: hybrid secret key must exceed %d bytes, got %d",
			pqc.ErrInvalidSecretKey, x25519.PrivateKeySize, len(secretKey))
	}
	if len(ciphertext) <= x25519.PublicKeySize+SaltSize {
		return nil, fmt.Errorf("%w: hybrid ciphertext must exceed %d bytes, got %d",
			pqc.ErrInvalidCiphertext, x25519.PublicKeySize+SaltSize, len(ciphertext))
	}

	ephPub := ciphertext[:x25519.PublicKeySize]
	pqCiphertext := ciphertext[x25519.PublicKeySize : len(ciphertext)-SaltSize]
	salt := ciphertext[len(ciphertext)-SaltSize:]

	classicalSecret, err := kx.x25519.DeriveSharedSecret(secretKey[:x25519.PrivateKeySize], ephPub)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pqc.ErrInvalidCiphertext, err)
	}
	defer memguard.WipeBytes(classicalSecret)

	pqSecret, err := kx.kem.Decapsulate(secretKey[x25519.PrivateKeySize:], pqCiphertext)
	if err != nil {
		return nil, fmt.Errorf("hybrid: %w", err)
	}
	defer memguard.WipeBytes(pqSecret)

	return combineSecrets(classicalSecret, pqSecret, salt)
}

// DecapsulateWithKeyPair decapsulates using both halves of kp
func (kx *KeyExchange) DecapsulateWithKeyPair(kp *KeyPair, ciphertext []byte) ([]byte, error) {
	if kp == nil {
		return nil, fmt.Errorf("%w: nil key pair", pqc.ErrInvalidSecretKey)
	}
	sk := kp.SecretKey()
	defer memguard.WipeBytes(sk)
	return kx.Decapsulate(sk, ciphertext)
}

// combineSecrets runs HKDF-SHA256 over classical || post-quantum
func combineSecrets(classical, pq, salt []byte) ([]byte, error) {
	ikm := concat(classical, pq)
	defer memguard.WipeBytes(ikm)
	secret, err := x25519.DeriveKey(ikm, salt, []byte(KDFInfo), SecretSize)
	if err != nil {
		return nil, fmt.Errorf("hybrid: combine secrets: %w", err)
	}
	return secret, nil
}
