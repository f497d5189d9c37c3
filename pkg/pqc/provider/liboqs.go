//go:build quantum

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

package provider

import (
	"fmt"

	"github.com/awnumar/memguard"
	"github.com/open-quantum-safe/liboqs-go/oqs"

	"github.com/jeremyhahn/go-pqmesh/pkg/pqc"
)

// LibOQS implements Provider using the Open Quantum Safe C library. Each
// call initializes and cleans a fresh liboqs context, so the provider holds
// no key material between calls.
type LibOQS struct{}

// NewLibOQS returns a provider backed by liboqs
func NewLibOQS() *LibOQS {
	return &LibOQS{}
}

// Name implements Provider
func (l *LibOQS) Name() string { return NameLibOQS }

// Available implements Provider
func (l *LibOQS) Available() bool {
	return len(oqs.EnabledKEMs()) > 0 || len(oqs.EnabledSigs()) > 0
}

// EnabledKEMs implements Provider
func (l *LibOQS) EnabledKEMs() []string {
	return oqs.EnabledKEMs()
}

// EnabledSigs implements Provider
func (l *LibOQS) EnabledSigs() []string {
	return oqs.EnabledSigs()
}

func (l *LibOQS) kem(mechanism string, secretKey []byte) (*oqs.KeyEncapsulation, error) {
	if !oqs.IsKEMEnabled(mechanism) {
		return nil, fmt.Errorf("%w: %s", pqc.ErrMechanismNotSupported, mechanism)
	}
	kem := oqs.KeyEncapsulation{}
	if err := kem.Init(mechanism, secretKey); err != nil {
		return nil, fmt.Errorf("liboqs: init %s: %w", mechanism, err)
	}
	return &kem, nil
}

func (l *LibOQS) signer(mechanism string, secretKey []byte) (*oqs.Signature, error) {
	if !oqs.IsSigEnabled(mechanism) {
		return nil, fmt.Errorf("%w: %s", pqc.ErrMechanismNotSupported, mechanism)
	}
	signer := oqs.Signature{}
	if err := signer.Init(mechanism, secretKey); err != nil {
		return nil, fmt.Errorf("liboqs: init %s: %w", mechanism, err)
	}
	return &signer, nil
}

// KEMKeypair implements Provider
func (l *LibOQS) KEMKeypair(mechanism string) ([]byte, []byte, error) {
	kem, err := l.kem(mechanism, nil)
	if err != nil {
		return nil, nil, err
	}
	defer kem.Clean()

	pub, err := kem.GenerateKeyPair()
	if err != nil {
		return nil, nil, fmt.Errorf("liboqs: %s keygen: %w", mechanism, err)
	}
	// Clean wipes the exported buffer, so hand back a copy
	exported := kem.ExportSecretKey()
	sec := make([]byte, len(exported))
	copy(sec, exported)
	return pub, sec, nil
}

// KEMEncapsulate implements Provider
func (l *LibOQS) KEMEncapsulate(mechanism string, publicKey []byte) ([]byte, []byte, error) {
	kem, err := l.kem(mechanism, nil)
	if err != nil {
		return nil, nil, err
	}
	defer kem.Clean()

	if n := kem.Details().LengthPublicKey; len(publicKey) != n {
		return nil, nil, fmt.Errorf("%w: %s expects %d bytes, got %d",
			pqc.ErrInvalidPublicKey, mechanism, n, len(publicKey))
	}
	ct, ss, err := kem.EncapSecret(publicKey)
	if err != nil {
		return nil, nil, fmt.Errorf("liboqs: %s encapsulate: %w", mechanism, err)
	}
	return ct, ss, nil
}

// KEMDecapsulate implements Provider
func (l *LibOQS) KEMDecapsulate(mechanism string, secretKey, ciphertext []byte) ([]byte, error) {
	probe, err := l.kem(mechanism, nil)
	if err != nil {
		return nil, err
	}
	details := probe.Details()
	probe.Clean()

	if len(secretKey) != details.LengthSecretKey {
		return nil, fmt.Errorf("%w: %s expects %d bytes, got %d",
			pqc.ErrInvalidSecretKey, mechanism, details.LengthSecretKey, len(secretKey))
	}
	if len(ciphertext) != details.LengthCiphertext {
		return nil, fmt.Errorf("%w: %s expects %d bytes, got %d",
			pqc.ErrInvalidCiphertext, mechanism, details.LengthCiphertext, len(ciphertext))
	}

	// liboqs takes ownership of the key buffer and zeroes it on Clean
	sk := make([]byte, len(secretKey))
	copy(sk, secretKey)
	kem, err := l.kem(mechanism, sk)
	if err != nil {
		memguard.WipeBytes(sk)
		return nil, err
	}
	defer kem.Clean()

	ss, err := kem.DecapSecret(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("liboqs: %s decapsulate: %w", mechanism, err)
	}
	return ss, nil
}

// SigKeypair implements Provider
func (l *LibOQS) SigKeypair(mechanism string) ([]byte, []byte, error) {
	signer, err := l.signer(mechanism, nil)
	if err != nil {
		return nil, nil, err
	}
	defer signer.Clean()

	pub, err := signer.GenerateKeyPair()
	if err != nil {
		return nil, nil, fmt.Errorf("liboqs: %s keygen: %w", mechanism, err)
	}
	exported := signer.ExportSecretKey()
	sec := make([]byte, len(exported))
	copy(sec, exported)
	return pub, sec, nil
}

// SigSign implements Provider
func (l *LibOQS) SigSign(mechanism string, message, secretKey []byte) ([]byte, error) {
	probe, err := l.signer(mechanism, nil)
	if err != nil {
		return nil, err
	}
	n := probe.Details().LengthSecretKey
	probe.Clean()
	if len(secretKey) != n {
		return nil, fmt.Errorf("%w: %s expects %d bytes, got %d",
			pqc.ErrInvalidSecretKey, mechanism, n, len(secretKey))
	}

	sk := make([]byte, len(secretKey))
	copy(sk, secretKey)
	signer, err := l.signer(mechanism, sk)
	if err != nil {
		memguard.WipeBytes(sk)
		return nil, err
	}
	defer signer.Clean()

	sig, err := signer.Sign(message)
	if err != nil {
		return nil, fmt.Errorf("liboqs: %s sign: %w", mechanism, err)
	}
	return sig, nil
}

// SigVerify implements Provider
func (l *LibOQS) SigVerify(mechanism string, message, signature, publicKey []byte) (bool, error) {
	signer, err := l.signer(mechanism, nil)
	if err != nil {
		return false, err
	}
	defer signer.Clean()

	if n := signer.Details().LengthPublicKey; len(publicKey) != n {
		return false, fmt.Errorf("%w: %s expects %d bytes, got %d",
			pqc.ErrInvalidPublicKey, mechanism, n, len(publicKey))
	}
	return signer.Verify(message, signature, publicKey)
}
