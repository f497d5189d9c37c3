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

// Package dsa provides the ML-DSA signature service.
//
// Verify never returns an error: a malformed key, an unsupported mechanism,
// an unavailable provider or a panic inside the provider all verify as
// false.
package dsa

import (
	"fmt"

	"github.com/awnumar/memguard"

	"github.com/jeremyhahn/go-pqmesh/pkg/adapters/logger"
	"github.com/jeremyhahn/go-pqmesh/pkg/pqc"
	"github.com/jeremyhahn/go-pqmesh/pkg/pqc/adapter"
	"github.com/jeremyhahn/go-pqmesh/pkg/storage/secure"
)

// Service signs and verifies with the adapter's signature mechanism and keeps
// the secret keys it generates in the secure store. Service is safe for
// concurrent use.
type Service struct {
	adapter *adapter.Adapter
	keys    *secure.Registry
	logger  logger.Logger
}

// New creates a signature service. A nil adapter yields a service whose
// operations fail with pqc.ErrUnavailable and whose Verify always returns
// false. A nil store disables secret key registration.
func New(a *adapter.Adapter, store *secure.Store, log logger.Logger) *Service {
	log = logger.OrNoOp(log).With(logger.String("service", "dsa"))
	if a == nil {
		log.Warn("signature service disabled, no provider")
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

// Algorithm returns the configured signature scheme
func (s *Service) Algorithm() pqc.Algorithm {
	if s.adapter == nil {
		return pqc.AlgorithmUnknown
	}
	return s.adapter.SigAlgorithm()
}

// Mechanism returns the provider mechanism name in use
func (s *Service) Mechanism() string {
	if s.adapter == nil {
		return ""
	}
	return s.adapter.SigMechanism()
}

// GenerateKeyPair creates a signing key pair. A non-empty keyID registers the
// secret key in the secure store.
func (s *Service) GenerateKeyPair(keyID string, validityDays int) (*pqc.KeyPair, error) {
	if s.adapter == nil {
		return nil, pqc.ErrUnavailable
	}
	pub, sec, err := s.adapter.SigGenerate()
	if err != nil {
		return nil, fmt.Errorf("dsa: generate key pair: %w", err)
	}

	kp := pqc.NewKeyPair(s.Algorithm(), pub, sec, keyID, validityDays)
	if keyID != "" && s.keys != nil {
		if _, err := s.keys.Register(keyID, sec, s.Mechanism(), validityDays); err != nil {
			kp.Zeroize()
			return nil, fmt.Errorf("dsa: register %s: %w", keyID, err)
		}
	}

	s.logger.Info("generated signing key pair",
		logger.KeyID(kp.KeyID),
		logger.Algorithm(kp.Algorithm),
		logger.Len("public_key_len", pub))
	return kp, nil
}

// Sign signs message with secretKey. The returned Signature records the
// message digest and keyID, not the message.
func (s *Service) Sign(message, secretKey []byte, keyID string) (*pqc.Signature, error) {
	if s.adapter == nil {
		return nil, pqc.ErrUnavailable
	}
	sig, err := s.adapter.SigSign(message, secretKey)
	if err != nil {
		return nil, fmt.Errorf("dsa: sign: %w", err)
	}
	s.logger.Debug("signed message",
		logger.KeyID(keyID),
		logger.Len("signature_len", sig))
	return pqc.NewSignature(s.Algorithm(), sig, message, keyID), nil
}

// SignWithKeyID signs message with the secret registered under keyID
func (s *Service) SignWithKeyID(message []byte, keyID string) (*pqc.Signature, error) {
	sec, ok := s.GetSecretKey(keyID)
	if !ok {
		if s.adapter == nil {
			return nil, pqc.ErrUnavailable
		}
		return nil, fmt.Errorf("dsa: %w: %s", pqc.ErrKeyNotFound, keyID)
	}
	defer memguard.WipeBytes(sec)
	return s.Sign(message, sec, keyID)
}

// Verify reports whether signature is a valid signature of message under
// publicKey. It never fails: every error is reported as false.
func (s *Service) Verify(message, signature, publicKey []byte) (valid bool) {
	if s.adapter == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("signature verification panicked", logger.Any("panic", r))
			valid = false
		}
	}()

	ok, err := s.adapter.SigVerify(message, signature, publicKey)
	if err != nil {
		s.logger.Debug("signature verification failed", logger.Error(err))
		return false
	}
	return ok
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

// ClearCache securely deletes every secret this service registered
func (s *Service) ClearCache() int {
	if s.keys == nil {
		return 0
	}
	n := s.keys.Clear()
	s.logger.Debug("cleared signing key cache", logger.Int("count", n))
	return n
}
