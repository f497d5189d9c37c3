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

// Package adapter binds a primitive provider to one KEM and one signature
// mechanism. It resolves legacy algorithm names, checks them against the
// mechanisms the provider actually enables, and exposes the six raw
// operations the services are built on.
package adapter

import (
	"fmt"
	"slices"
	"time"

	"github.com/jeremyhahn/go-pqmesh/pkg/adapters/logger"
	"github.com/jeremyhahn/go-pqmesh/pkg/metrics"
	"github.com/jeremyhahn/go-pqmesh/pkg/pqc"
	"github.com/jeremyhahn/go-pqmesh/pkg/pqc/provider"
)

// Default mechanisms
const (
	DefaultKEM = "ML-KEM-768"
	DefaultSig = "ML-DSA-65"
)

// Adapter is safe for concurrent use; it holds no mutable state.
type Adapter struct {
	provider provider.Provider
	kem      string
	sig      string
	logger   logger.Logger
}

// New resolves kemAlgorithm and sigAlgorithm against p. Empty names select
// the defaults. It fails with pqc.ErrUnavailable when p is nil or cannot be
// loaded.
func New(p provider.Provider, kemAlgorithm, sigAlgorithm string, log logger.Logger) (*Adapter, error) {
	log = logger.OrNoOp(log)
	if p == nil || !p.Available() {
		log.Warn("post-quantum provider unavailable")
		return nil, pqc.ErrUnavailable
	}
	if kemAlgorithm == "" {
		kemAlgorithm = DefaultKEM
	}
	if sigAlgorithm == "" {
		sigAlgorithm = DefaultSig
	}

	a := &Adapter{
		provider: p,
		kem:      resolve(kemAlgorithm, p.EnabledKEMs()),
		sig:      resolve(sigAlgorithm, p.EnabledSigs()),
	}
	a.logger = log.With(
		logger.String("provider", p.Name()),
		logger.String("kem", a.kem),
		logger.String("sig", a.sig))
	a.logger.Debug("adapter ready")
	return a, nil
}

// resolve maps name to its canonical form and substitutes the legacy alias
// when only the alias is enabled. Otherwise the canonical name is used and
// the first real call reports whether the provider supports it.
func resolve(name string, enabled []string) string {
	canonical := pqc.CanonicalName(name)
	if slices.Contains(enabled, canonical) {
		return canonical
	}
	if legacy, ok := pqc.LegacyName(canonical); ok && slices.Contains(enabled, legacy) {
		return legacy
	}
	return canonical
}

// Provider returns the underlying provider
func (a *Adapter) Provider() provider.Provider {
	return a.provider
}

// KEMMechanism returns the mechanism name passed to the provider
func (a *Adapter) KEMMechanism() string {
	return a.kem
}

// SigMechanism returns the mechanism name passed to the provider
func (a *Adapter) SigMechanism() string {
	return a.sig
}

// KEMAlgorithm returns the configured KEM as an enumerated algorithm
func (a *Adapter) KEMAlgorithm() pqc.Algorithm {
	alg, _ := pqc.ParseAlgorithm(a.kem)
	return alg
}

// SigAlgorithm returns the configured signature scheme as an enumerated
// algorithm
func (a *Adapter) SigAlgorithm() pqc.Algorithm {
	alg, _ := pqc.ParseAlgorithm(a.sig)
	return alg
}

// SupportedKEMAlgorithms lists the provider's enabled KEM mechanisms
func (a *Adapter) SupportedKEMAlgorithms() []string {
	return a.provider.EnabledKEMs()
}

// SupportedSigAlgorithms lists the provider's enabled signature mechanisms
func (a *Adapter) SupportedSigAlgorithms() []string {
	return a.provider.EnabledSigs()
}

// KEMGenerate returns a fresh KEM key pair
func (a *Adapter) KEMGenerate() (publicKey, secretKey []byte, err error) {
	start := time.Now()
	publicKey, secretKey, err = a.provider.KEMKeypair(a.kem)
	metrics.Observe(metrics.OpKeygen, a.kem, start, err)
	if err != nil {
		return nil, nil, fmt.Errorf("adapter: kem keypair: %w", err)
	}
	return publicKey, secretKey, nil
}

// KEMEncapsulate encapsulates a fresh shared secret to peerPublicKey
func (a *Adapter) KEMEncapsulate(peerPublicKey []byte) (ciphertext, sharedSecret []byte, err error) {
	start := time.Now()
	ciphertext, sharedSecret, err = a.provider.KEMEncapsulate(a.kem, peerPublicKey)
	metrics.Observe(metrics.OpEncapsulate, a.kem, start, err)
	if err != nil {
		return nil, nil, fmt.Errorf("adapter: kem encapsulate: %w", err)
	}
	return ciphertext, sharedSecret, nil
}

// KEMDecapsulate recovers the shared secret from ciphertext
func (a *Adapter) KEMDecapsulate(secretKey, ciphertext []byte) ([]byte, error) {
	start := time.Now()
	ss, err := a.provider.KEMDecapsulate(a.kem, secretKey, ciphertext)
	metrics.Observe(metrics.OpDecapsulate, a.kem, start, err)
	if err != nil {
		return nil, fmt.Errorf("adapter: kem decapsulate: %w", err)
	}
	return ss, nil
}

// SigGenerate returns a fresh signature key pair
func (a *Adapter) SigGenerate() (publicKey, secretKey []byte, err error) {
	start := time.Now()
	publicKey, secretKey, err = a.provider.SigKeypair(a.sig)
	metrics.Observe(metrics.OpKeygen, a.sig, start, err)
	if err != nil {
		return nil, nil, fmt.Errorf("adapter: sig keypair: %w", err)
	}
	return publicKey, secretKey, nil
}

// SigSign signs message with secretKey
func (a *Adapter) SigSign(message, secretKey []byte) ([]byte, error) {
	start := time.Now()
	sig, err := a.provider.SigSign(a.sig, message, secretKey)
	metrics.Observe(metrics.OpSign, a.sig, start, err)
	if err != nil {
		return nil, fmt.Errorf("adapter: sign: %w", err)
	}
	return sig, nil
}

// SigVerify reports whether signature is valid. Malformed inputs and
// provider failures are returned as errors alongside false.
func (a *Adapter) SigVerify(message, signature, publicKey []byte) (bool, error) {
	start := time.Now()
	ok, err := a.provider.SigVerify(a.sig, message, signature, publicKey)
	observed := err
	if observed == nil && !ok {
		observed = pqc.ErrIntegrity
	}
	metrics.Observe(metrics.OpVerify, a.sig, start, observed)
	if err != nil {
		return false, fmt.Errorf("adapter: verify: %w", err)
	}
	return ok, nil
}
