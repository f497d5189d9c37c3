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
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/jeremyhahn/go-pqmesh/pkg/crypto/eddsa"
	"github.com/jeremyhahn/go-pqmesh/pkg/pqc"
)

// Sub-key id suffixes appended to a hybrid key id
const (
	SuffixX25519  = "_x25519"
	SuffixMLKEM   = "_mlkem"
	SuffixEd25519 = "_ed25519"
	SuffixMLDSA   = "_mldsa"
)

// classicalSize is the length of the classical prefix in combined keys.
// X25519 public and private keys and Ed25519 public keys and seeds are all
// 32 bytes.
const classicalSize = 32

// KeyPair pairs an independent classical key pair with an independent
// post-quantum key pair. Combined keys are classical bytes first, then
// post-quantum bytes, with no length prefix.
type KeyPair struct {
	Classical *pqc.KeyPair
	PQC       *pqc.KeyPair
	Algorithm pqc.Algorithm
	CreatedAt time.Time
	ExpiresAt time.Time
	KeyID     string
}

func newKeyPair(algorithm pqc.Algorithm, classical, pq *pqc.KeyPair, keyID string, validityDays int) *KeyPair {
	created := time.Now().UTC()
	kp := &KeyPair{
		Classical: classical,
		PQC:       pq,
		Algorithm: algorithm,
		CreatedAt: created,
		ExpiresAt: created.Add(pqc.ValidityPeriod(validityDays)),
		KeyID:     keyID,
	}
	if kp.KeyID == "" {
		kp.KeyID = pqc.DeriveKeyID(kp.PublicKey())
	}
	return kp
}

// subKeyID returns keyID+suffix, or "" so the sub key derives its own id
func subKeyID(keyID, suffix string) string {
	if keyID == "" {
		return ""
	}
	return keyID + suffix
}

// PublicKey returns classical public key || post-quantum public key
func (k *KeyPair) PublicKey() []byte {
	return concat(k.Classical.PublicKey, k.PQC.PublicKey)
}

// SecretKey returns classical secret || post-quantum secret in a new slice.
// Callers should wipe it when done.
func (k *KeyPair) SecretKey() []byte {
	return concat(k.Classical.SecretKey, k.PQC.SecretKey)
}

// IsExpired reports whether the hybrid key pair is past its expiry
func (k *KeyPair) IsExpired() bool {
	return time.Now().After(k.ExpiresAt)
}

// Zeroize wipes both secret keys
func (k *KeyPair) Zeroize() {
	if k == nil {
		return
	}
	k.Classical.Zeroize()
	k.PQC.Zeroize()
}

func (k *KeyPair) String() string {
	return fmt.Sprintf("HybridKeyPair{algorithm=%s, key_id=%s, public_key_len=%d}",
		k.Algorithm, k.KeyID, len(k.Classical.PublicKey)+len(k.PQC.PublicKey))
}

// LogValue implements slog.LogValuer
func (k *KeyPair) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("algorithm", k.Algorithm.String()),
		slog.String("key_id", k.KeyID),
		slog.String("classical_key_id", k.Classical.KeyID),
		slog.String("pqc_key_id", k.PQC.KeyID),
	)
}

// KeyPairRecord is the public, hex/JSON form of a hybrid key pair
type KeyPairRecord struct {
	Algorithm      pqc.Algorithm `json:"algorithm"`
	KeyID          string        `json:"key_id"`
	PublicKeyHex   string        `json:"public_key_hex"`
	ClassicalKeyID string        `json:"classical_key_id"`
	PQCKeyID       string        `json:"pqc_key_id"`
	CreatedAt      time.Time     `json:"created_at"`
	ExpiresAt      time.Time     `json:"expires_at"`
}

// Record returns the public record of the key pair. Secret keys are never
// included.
func (k *KeyPair) Record() *KeyPairRecord {
	return &KeyPairRecord{
		Algorithm:      k.Algorithm,
		KeyID:          k.KeyID,
		PublicKeyHex:   hex.EncodeToString(k.PublicKey()),
		ClassicalKeyID: k.Classical.KeyID,
		PQCKeyID:       k.PQC.KeyID,
		CreatedAt:      k.CreatedAt,
		ExpiresAt:      k.ExpiresAt,
	}
}

// Signature carries an Ed25519 signature and an ML-DSA signature over the
// same message
type Signature struct {
	Classical   []byte
	PQC         []byte
	Algorithm   pqc.Algorithm
	MessageHash []byte
	Timestamp   time.Time
	SignerKeyID string
}

// Bytes returns classical signature || post-quantum signature
func (s *Signature) Bytes() []byte {
	return concat(s.Classical, s.PQC)
}

// ParseSignature splits a combined signature at the Ed25519 signature size.
// Metadata fields other than Algorithm are left empty.
func ParseSignature(b []byte) (*Signature, error) {
	if len(b) <= eddsa.SignatureSize {
		return nil, fmt.Errorf("%w: hybrid signature must exceed %d bytes, got %d",
			pqc.ErrInvalidSignature, eddsa.SignatureSize, len(b))
	}
	return &Signature{
		Classical: append([]byte(nil), b[:eddsa.SignatureSize]...),
		PQC:       append([]byte(nil), b[eddsa.SignatureSize:]...),
		Algorithm: pqc.AlgorithmEd25519MLDSA65,
	}, nil
}

func (s *Signature) String() string {
	return fmt.Sprintf("HybridSignature{algorithm=%s, signer=%s, len=%d}",
		s.Algorithm, s.SignerKeyID, len(s.Classical)+len(s.PQC))
}

func concat(a, b []byte) []byte {
	out := make([]byte, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
