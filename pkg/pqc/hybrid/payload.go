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

package hybrid

import (
	"crypto/cipher"
	"fmt"
	"io"
	"time"

	"github.com/awnumar/memguard"

	"github.com/jeremyhahn/go-pqmesh/pkg/crypto/aead"
	"github.com/jeremyhahn/go-pqmesh/pkg/crypto/x25519"
	"github.com/jeremyhahn/go-pqmesh/pkg/metrics"
	"github.com/jeremyhahn/go-pqmesh/pkg/pqc"
)

const (
	// PayloadCipher protects payloads under a hybrid session secret. It is
	// fixed so both peers agree without negotiation.
	PayloadCipher = aead.ChaCha20Poly1305

	// PayloadInfo is the HKDF context for the payload key
	PayloadInfo = "pqmesh-hybrid-payload"
)

// Seal encrypts plaintext under a key derived from sessionSecret and
// returns nonce || ciphertext || tag. aad is authenticated but not
// encrypted.
func (kx *KeyExchange) Seal(sessionSecret, plaintext, aad []byte) ([]byte, error) {
	start := time.Now()
	sealed, err := kx.seal(sessionSecret, plaintext, aad)
	metrics.Observe(metrics.OpSeal, PayloadCipher, start, err)
	return sealed, err
}

func (kx *KeyExchange) seal(sessionSecret, plaintext, aad []byte) ([]byte, error) {
	c, err := payloadAEAD(sessionSecret)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, c.NonceSize(), c.NonceSize()+len(plaintext)+c.Overhead())
	if _, err := io.ReadFull(kx.rand, nonce); err != nil {
		return nil, fmt.Errorf("hybrid: generate nonce: %w", err)
	}
	return c.Seal(nonce, nonce, plaintext, aad), nil
}

// Open reverses Seal. Any authentication failure returns pqc.ErrIntegrity
// and no plaintext.
func (kx *KeyExchange) Open(sessionSecret, sealed, aad []byte) ([]byte, error) {
	start := time.Now()
	plaintext, err := kx.open(sessionSecret, sealed, aad)
	metrics.Observe(metrics.OpOpen, PayloadCipher, start, err)
	return plaintext, err
}

func (kx *KeyExchange) open(sessionSecret, sealed, aad []byte) ([]byte, error) {
	c, err := payloadAEAD(sessionSecret)
	if err != nil {
		return nil, err
	}
	if len(sealed) < c.NonceSize()+c.Overhead() {
		return nil, fmt.Errorf("%w: sealed payload too short", pqc.ErrIntegrity)
	}
	nonce, ciphertext := sealed[:c.NonceSize()], sealed[c.NonceSize():]
	plaintext, err := c.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, pqc.ErrIntegrity
	}
	return plaintext, nil
}

func payloadAEAD(sessionSecret []byte) (cipher.AEAD, error) {
	if len(sessionSecret) != SecretSize {
		return nil, fmt.Errorf("%w: session secret must be %d bytes, got %d",
			pqc.ErrInvalidSecretKey, SecretSize, len(sessionSecret))
	}
	key, err := x25519.DeriveKey(sessionSecret, nil, []byte(PayloadInfo), aead.KeySize)
	if err != nil {
		return nil, fmt.Errorf("hybrid: payload key: %w", err)
	}
	defer memguard.WipeBytes(key)
	return aead.New(PayloadCipher, key)
}
