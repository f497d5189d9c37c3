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

// Package testutil holds test doubles shared across go-pqmesh packages.
package testutil

import (
	"fmt"
	"sync"

	"github.com/jeremyhahn/go-pqmesh/pkg/pqc"
	"github.com/jeremyhahn/go-pqmesh/pkg/pqc/provider"
)

// FakeProvider is a configurable provider.Provider for tests. It performs
// real cryptography through CIRCL, but lets a test control availability,
// the advertised mechanism lists, and per-operation failures.
//
// Mechanism names passed to operations may be canonical or legacy; they are
// canonicalized before reaching CIRCL. A mechanism listed in Reject fails
// with pqc.ErrMechanismNotSupported.
type FakeProvider struct {
	Unavailable bool
	KEMs        []string
	Sigs        []string
	Reject      map[string]bool

	// PanicOnVerify makes SigVerify panic, simulating a misbehaving
	// native library
	PanicOnVerify bool

	mu    sync.Mutex
	calls map[string][]string
	circl *provider.Circl
}

// NewFakeProvider returns a fake advertising the canonical ML-KEM and
// ML-DSA names
func NewFakeProvider() *FakeProvider {
	circl := provider.NewCircl()
	return &FakeProvider{
		KEMs:   circl.EnabledKEMs(),
		Sigs:   circl.EnabledSigs(),
		Reject: map[string]bool{},
		calls:  map[string][]string{},
		circl:  circl,
	}
}

// NewLegacyFakeProvider returns a fake that only advertises the legacy
// Kyber and Dilithium names, like an older liboqs build
func NewLegacyFakeProvider() *FakeProvider {
	f := NewFakeProvider()
	f.KEMs = []string{"Kyber512", "Kyber768", "Kyber1024"}
	f.Sigs = []string{"Dilithium2", "Dilithium3", "Dilithium5"}
	return f
}

// Calls returns the mechanism names passed to operation, in call order
func (f *FakeProvider) Calls(operation string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls[operation]...)
}

func (f *FakeProvider) record(operation, mechanism string) (string, error) {
	f.mu.Lock()
	f.calls[operation] = append(f.calls[operation], mechanism)
	f.mu.Unlock()

	if f.Unavailable {
		return "", pqc.ErrUnavailable
	}
	if f.Reject[mechanism] {
		return "", fmt.Errorf("%w: %s", pqc.ErrMechanismNotSupported, mechanism)
	}
	return pqc.CanonicalName(mechanism), nil
}

func (f *FakeProvider) Name() string          { return "fake" }
func (f *FakeProvider) Available() bool       { return !f.Unavailable }
func (f *FakeProvider) EnabledKEMs() []string { return f.KEMs }
func (f *FakeProvider) EnabledSigs() []string { return f.Sigs }

func (f *FakeProvider) KEMKeypair(mechanism string) ([]byte, []byte, error) {
	m, err := f.record("kem_keypair", mechanism)
	if err != nil {
		return nil, nil, err
	}
	return f.circl.KEMKeypair(m)
}

func (f *FakeProvider) KEMEncapsulate(mechanism string, publicKey []byte) ([]byte, []byte, error) {
	m, err := f.record("kem_encapsulate", mechanism)
	if err != nil {
		return nil, nil, err
	}
	return f.circl.KEMEncapsulate(m, publicKey)
}

func (f *FakeProvider) KEMDecapsulate(mechanism string, secretKey, ciphertext []byte) ([]byte, error) {
	m, err := f.record("kem_decapsulate", mechanism)
	if err != nil {
		return nil, err
	}
	return f.circl.KEMDecapsulate(m, secretKey, ciphertext)
}

func (f *FakeProvider) SigKeypair(mechanism string) ([]byte, []byte, error) {
	m, err := f.record("sig_keypair", mechanism)
	if err != nil {
		return nil, nil, err
	}
	return f.circl.SigKeypair(m)
}

func (f *FakeProvider) SigSign(mechanism string, message, secretKey []byte) ([]byte, error) {
	m, err := f.record("sig_sign", mechanism)
	if err != nil {
		return nil, err
	}
	return f.circl.SigSign(m, message, secretKey)
}

func (f *FakeProvider) SigVerify(mechanism string, message, signature, publicKey []byte) (bool, error) {
	m, err := f.record("sig_verify", mechanism)
	if err != nil {
		return false, err
	}
	if f.PanicOnVerify {
		panic("fake provider: verify exploded")
	}
	return f.circl.SigVerify(m, message, signature, publicKey)
}
