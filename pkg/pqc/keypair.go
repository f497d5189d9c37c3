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

package pqc

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/awnumar/memguard"
)

const (
	// DefaultValidityDays is the lifetime of a generated key pair when the
	// caller does not specify one
	DefaultValidityDays = 365

	// keyIDHexLength is the number of hex characters of SHA-256(public key)
	// used as a derived key id (128 bits)
	keyIDHexLength = 32
)

// KeyPair holds a public/secret key pair produced by a single algorithm.
//
// SecretKey is live secret material. It is never included in String,
// LogValue or the default Record; callers that are done with it should call
// Zeroize.
type KeyPair struct {
	Algorithm Algorithm
	PublicKey []byte
	SecretKey []byte
	CreatedAt time.Time
	ExpiresAt *time.Time
	KeyID     string
}

// NewKeyPair builds a key pair created now and valid for validityDays.
// A non-positive validityDays selects DefaultValidityDays. An empty keyID is
// derived from the public key.
func NewKeyPair(algorithm Algorithm, publicKey, secretKey []byte, keyID string, validityDays int) *KeyPair {
	created := time.Now().UTC()
	expires := created.Add(ValidityPeriod(validityDays))
	if keyID == "" {
		keyID = DeriveKeyID(publicKey)
	}
	return &KeyPair{
		Algorithm: algorithm,
		PublicKey: publicKey,
		SecretKey: secretKey,
		CreatedAt: created,
		ExpiresAt: &expires,
		KeyID:     keyID,
	}
}

// ValidityPeriod converts a day count to a duration, applying the default
// for non-positive values.
func ValidityPeriod(validityDays int) time.Duration {
	if validityDays <= 0 {
		validityDays = DefaultValidityDays
	}
	return time.Duration(validityDays) * 24 * time.Hour
}

// DeriveKeyID returns a stable identifier for a public key: the first 32 hex
// characters of its SHA-256 digest.
func DeriveKeyID(publicKey []byte) string {
	sum := sha256.Sum256(publicKey)
	return hex.EncodeToString(sum[:])[:keyIDHexLength]
}

// IsExpired returns true once the expiry time has passed. Key pairs without
// an expiry never expire.
func (k *KeyPair) IsExpired() bool {
	return k.ExpiresAt != nil && time.Now().After(*k.ExpiresAt)
}

// IsValid returns true if the key pair is not expired, both keys are
// present and the algorithm is known.
func (k *KeyPair) IsValid() bool {
	if k == nil {
		return false
	}
	return !k.IsExpired() &&
		len(k.PublicKey) > 0 &&
		len(k.SecretKey) > 0 &&
		k.Algorithm.IsValid()
}

// Zeroize overwrites the secret key with zeros and drops the reference.
func (k *KeyPair) Zeroize() {
	if k == nil || k.SecretKey == nil {
		return
	}
	memguard.WipeBytes(k.SecretKey)
	k.SecretKey = nil
}

// String implements fmt.Stringer without exposing key material
func (k *KeyPair) String() string {
	return fmt.Sprintf("KeyPair{algorithm=%s, key_id=%s, public_key_len=%d}",
		k.Algorithm, k.KeyID, len(k.PublicKey))
}

// LogValue implements slog.LogValuer; secret bytes are never logged.
func (k *KeyPair) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("algorithm", k.Algorithm.String()),
		slog.String("key_id", k.KeyID),
		slog.Int("public_key_len", len(k.PublicKey)),
	)
}

// KeyPairRecord is the hex/JSON form of a KeyPair. SecretKeyHex is only
// populated when explicitly requested.
type KeyPairRecord struct {
	Algorithm    Algorithm  `json:"algorithm"`
	PublicKeyHex string     `json:"public_key_hex"`
	SecretKeyHex string     `json:"secret_key_hex,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	KeyID        string     `json:"key_id"`
}

// Record returns the serializable form of the key pair. The secret key is
// included only when includeSecret is true.
func (k *KeyPair) Record(includeSecret bool) *KeyPairRecord {
	r := &KeyPairRecord{
		Algorithm:    k.Algorithm,
		PublicKeyHex: hex.EncodeToString(k.PublicKey),
		CreatedAt:    k.CreatedAt,
		ExpiresAt:    k.ExpiresAt,
		KeyID:        k.KeyID,
	}
	if includeSecret {
		r.SecretKeyHex = hex.EncodeToString(k.SecretKey)
	}
	return r
}

// KeyPairFromRecord decodes a record produced by Record. A record without a
// secret key yields a key pair with a nil SecretKey (public material only).
func KeyPairFromRecord(r *KeyPairRecord) (*KeyPair, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil record", ErrInvalidRecord)
	}
	pub, err := hex.DecodeString(r.PublicKeyHex)
	if err != nil {
		return nil, fmt.Errorf("%w: public key: %v", ErrInvalidRecord, err)
	}
	var sec []byte
	if r.SecretKeyHex != "" {
		sec, err = hex.DecodeString(r.SecretKeyHex)
		if err != nil {
			return nil, fmt.Errorf("%w: secret key: %v", ErrInvalidRecord, err)
		}
	}
	keyID := r.KeyID
	if keyID == "" {
		keyID = DeriveKeyID(pub)
	}
	return &KeyPair{
		Algorithm: r.Algorithm,
		PublicKey: pub,
		SecretKey: sec,
		CreatedAt: r.CreatedAt,
		ExpiresAt: r.ExpiresAt,
		KeyID:     keyID,
	}, nil
}
