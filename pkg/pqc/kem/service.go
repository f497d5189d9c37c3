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

// Package kem provides the ML-KEM key exchange service: key pair
// generation, encapsulation and decapsulation over an adapter, with optional
// registration of generated secret keys in the secure store.
package kem

import (
	"fmt"

	"github.com/awnumar/memguard"

	"github.com/jeremyhahn/go-pqmesh/pkg/adapters/logger"
	"github.com/jeremyhahn/go-pqmesh/pkg/pqc"
	"github.com/jeremyhahn/go-pqmesh/pkg/pqc/adapter"
	"github.com/jeremyhahn/go-pqmesh/pkg/storage/secure"
)

// Service is safe for concurrent use.
type Service struct {
	adapter *adapter.Adapter
	keys    *secure.Registry
	logger  logger.Logger
}

// New creates a KEM service. A nil adapter yields a service whose every
// operation fails with pqc.ErrUnavailable. A nil store disables secret key
// registration.
func New(a *adapter.Adapter, store *secure.Store, log logger.Logger) *Service {
	log = logger.OrNoOp(log).With(logger.String("service", "kem"))
	if a == nil {
		log.Warn("KEM service disabled, no provider")
	}
	var keys *secure.Registry
	if store != nil {
		keys = secure.NewRegistry(store)
	}
	return &Service{
		adapter: a,
		keys:    keys,
		logger:  log,
	}
}

// Available reports whether the service has a provider
func (s *Service) Available() bool {
	return s.adapter != nil
}

// Algorithm returns the configured KEM, or pqc.AlgorithmUnknown when the
// service is unavailable
func (s *Service) Algorithm() pqc.Algorithm {
	if s.adapter == nil {
		return pqc.AlgorithmUnknown
	}
	return s.adapter.KEMAlgorithm()
}

// Mechanism returns the provider mechanism name in use
func (s *Service) Mechanism() string {
	if s.adapter == nil {
		return ""
	}
	return s.adapter.KEMMechanism()
}

// GenerateKeyPair creates a key pair valid for validityDays (non-positive
// selects the default). When keyID is non-empty the secret key is also
// registered in the secure store under keyID; the returned key pair still
// carries the secret for immediate use.
func (s *Service) GenerateKeyPair(keyID string, validityDays int) (*pqc.KeyPair, error) {
	if s.adapter == nil {
		return nil, pqc.ErrUnavailable
	}
	pub, sec, err := s.adapter.KEMGenerate()
	if err != nil {
		return nil, fmt.Errorf("kem: generate key pair: %w", err)
	}

	kp := pqc.NewKeyPair(s.Algorithm(), pub, sec, keyID, validityDays)
	if keyID != "" && s.keys != nil {
		if _, err := s.keys.Register(keyID, sec, s.Mechanism(), validityDays); err != nil {
			kp.Zeroize()
			return nil, fmt.Errorf("kem: register %s: %w", keyID, err)
		}
	}

	s.logger.Info("generated KEM key pair",
		logger.KeyID(kp.KeyID),
		logger.Algorithm(kp.Algorithm),
		logger.Len("public_key_len", pub))
	return kp, nil
}

// Encapsulate produces a ciphertext for peerPublicKey and the shared secret
// it carries. Every call is randomized.
func (s *Service) Encapsulate(peerPublicKey []byte) (*pqc.EncapsulationResult, error) {
	if s.adapter == nil {
		return nil, pqc.ErrUnavailable
	}
	ct, ss, err := s.adapter.KEMEncapsulate(peerPublicKey)
	if err != nil {
		return nil, fmt.Errorf("kem: encapsulate: %w", err)
	}
	result := &pqc.EncapsulationResult{
		Ciphertext:   ct,
		SharedSecret: ss,
		Algorithm:    s.Algorithm(),
	}
	s.logger.Debug("encapsulated", logger.Any("result", result))
	return result, nil
}

// Decapsulate recovers the shared secret from ciphertext
func (s *Service) Decapsulate(secretKey, ciphertext []byte) ([]byte, error) {
	if s.adapter == nil {
		return nil, pqc.ErrUnavailable
	}
	ss, err := s.adapter.KEMDecapsulate(secretKey, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("kem: decapsulate: %w", err)
	}
	return ss, nil
}

// DecapsulateWithKeyID decapsulates using the secret registered under keyID
func (s *Service) DecapsulateWithKeyID(keyID string, ciphertext []byte) ([]byte, error) {
	sec, ok := s.GetSecretKey(keyID)
	if !ok {
		if s.adapter == nil {
			return nil, pqc.ErrUnavailable
		}
		return nil, fmt.Errorf("kem: %w: %s", pqc.ErrKeyNotFound, keyID)
	}
	defer memguard.WipeBytes(sec)
	return s.Decapsulate(sec, ciphertext)
}

// GetSecretKey re-reads a registered secret key from the store
func (s *Service) GetSecretKey(keyID string) ([]byte, bool) {
	if s.adapter == nil || s.keys == nil {
		return nil, false
	}
	return s.keys.Lookup(keyID)
}

// KeyIDs returns the ids this service has registered
func (s *Service) KeyIDs() []string {
	if s.keys == nil {
		return nil
	}
	return s.keys.KeyIDs()
}

// ClearCache securely deletes every secret this service registered and
// returns how many were removed
func (s *Service) ClearCache() int {
	if s.keys == nil {
		return 0
	}
	n := s.keys.Clear()
	s.logger.Debug("cleared KEM key cache", logger.Int("count", n))
	return n
}
