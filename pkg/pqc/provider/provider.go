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

// Package provider defines the boundary to the post-quantum primitive
// library. A Provider is a thin, stateless dispatcher keyed by mechanism name;
// key material is passed in and out as opaque byte slices whose sizes depend
// on the mechanism.
//
// Two implementations exist: Circl (pure Go, always available) and LibOQS
// (cgo, only compiled with the "quantum" build tag).
package provider

import (
	"fmt"
	"strings"

	"github.com/jeremyhahn/go-pqmesh/pkg/pqc"
)

// Provider names accepted by New
const (
	NameAuto   = "auto"
	NameCircl  = "circl"
	NameLibOQS = "liboqs"
)

// Provider exposes raw KEM and signature mechanisms by name.
//
// Every byte slice returned is secret or key material and must not be logged.
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// Available reports whether the underlying library could be loaded
	Available() bool

	// EnabledKEMs lists the KEM mechanism names the library exposes
	EnabledKEMs() []string

	// EnabledSigs lists the signature mechanism names the library exposes
	EnabledSigs() []string

	// KEMKeypair generates a KEM key pair
	KEMKeypair(mechanism string) (publicKey, secretKey []byte, err error)

	// KEMEncapsulate produces a ciphertext and shared secret for publicKey
	KEMEncapsulate(mechanism string, publicKey []byte) (ciphertext, sharedSecret []byte, err error)

	// KEMDecapsulate recovers the shared secret from ciphertext
	KEMDecapsulate(mechanism string, secretKey, ciphertext []byte) (sharedSecret []byte, err error)

	// SigKeypair generates a signature key pair
	SigKeypair(mechanism string) (publicKey, secretKey []byte, err error)

	// SigSign signs message with secretKey
	SigSign(mechanism string, message, secretKey []byte) (signature []byte, err error)

	// SigVerify reports whether signature is valid for message under
	// publicKey. A malformed key or signature returns an error.
	SigVerify(mechanism string, message, signature, publicKey []byte) (bool, error)
}

// New returns the provider registered under name. "auto" (or an empty name)
// prefers liboqs when it was compiled in and loads, and falls back to circl.
func New(name string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameAuto:
		if lib := NewLibOQS(); lib.Available() {
			return lib, nil
		}
		return NewCircl(), nil
	case NameCircl:
		return NewCircl(), nil
	case NameLibOQS:
		lib := NewLibOQS()
		if !lib.Available() {
			return nil, fmt.Errorf("%w: liboqs not compiled in (build with -tags quantum)", pqc.ErrUnavailable)
		}
		return lib, nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", pqc.ErrUnavailable, name)
	}
}

// Names returns the provider names accepted by New
func Names() []string {
	return []string{NameAuto, NameCircl, NameLibOQS}
}
