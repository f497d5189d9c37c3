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

	"github.com/cloudflare/circl/kem"
	"github.com/cloudflare/circl/kem/mlkem/mlkem1024"
	"github.com/cloudflare/circl/kem/mlkem/mlkem512"
	"github.com/cloudflare/circl/kem/mlkem/mlkem768"
	"github.com/cloudflare/circl/sign"
	"github.com/cloudflare/circl/sign/mldsa/mldsa44"
	"github.com/cloudflare/circl/sign/mldsa/mldsa65"
	"github.com/cloudflare/circl/sign/mldsa/mldsa87"

	"github.com/jeremyhahn/go-pqmesh/pkg/pqc"
)

// Circl implements Provider on top of Cloudflare's CIRCL library. It only
// knows the FIPS 203/204 names; legacy names are resolved by the adapter.
type Circl struct {
	kems map[string]kem.Scheme
	sigs map[string]sign.Scheme
}

// NewCircl returns a provider backed by CIRCL
func NewCircl() *Circl {
	return &Circl{
		kems: map[string]kem.Scheme{
			pqc.AlgorithmMLKEM512.String():  mlkem512.Scheme(),
			pqc.AlgorithmMLKEM768.String():  mlkem768.Scheme(),
			pqc.AlgorithmMLKEM1024.String(): mlkem1024.Scheme(),
		},
		sigs: map[string]sign.Scheme{
			pqc.AlgorithmMLDSA44.String(): mldsa44.Scheme(),
			pqc.AlgorithmMLDSA65.String(): mldsa65.Scheme(),
			pqc.AlgorithmMLDSA87.String(): mldsa87.Scheme(),
		},
	}
}

// Name implements Provider
func (c *Circl) Name() string { return NameCircl }

// Available implements Provider. CIRCL is pure Go and always present.
func (c *Circl) Available() bool { return true }

// EnabledKEMs implements Provider
func (c *Circl) EnabledKEMs() []string {
	return []string{
		pqc.AlgorithmMLKEM512.String(),
		pqc.AlgorithmMLKEM768.String(),
		pqc.AlgorithmMLKEM1024.String(),
	}
}

// EnabledSigs implements Provider
func (c *Circl) EnabledSigs() []string {
	return []string{
		pqc.AlgorithmMLDSA44.String(),
		pqc.AlgorithmMLDSA65.String(),
		pqc.AlgorithmMLDSA87.String(),
	}
}

func (c *Circl) kemScheme(mechanism string) (kem.Scheme, error) {
	scheme, ok := c.kems[mechanism]
	if !ok {
		return nil, fmt.Errorf("%w: %s", pqc.ErrMechanismNotSupported, mechanism)
	}
	return scheme, nil
}

func (c *Circl) sigScheme(mechanism string) (sign.Scheme, error) {
	scheme, ok := c.sigs[mechanism]
	if !ok {
		return nil, fmt.Errorf("%w: %s", pqc.ErrMechanismNotSupported, mechanism)
	}
	return scheme, nil
}

// KEMKeypair implements Provider
func (c *Circl) KEMKeypair(mechanism string) ([]byte, []byte, error) {
	scheme, err := c.kemScheme(mechanism)
	if err != nil {
		return nil, nil, err
	}
	pk, sk, err := scheme.GenerateKeyPair()
	if err != nil {
		return nil, nil, fmt.Errorf("circl: %s keygen: %w", mechanism, err)
	}
	pub, err := pk.MarshalBinary()
	if err != nil {
		return nil, nil, fmt.Errorf("circl: marshal public key: %w", err)
	}
	sec, err := sk.MarshalBinary()
	if err != nil {
		return nil, nil, fmt.Errorf("circl: marshal secret key: %w", err)
	}
	return pub, sec, nil
}

// KEMEncapsulate implements Provider
func (c *Circl) KEMEncapsulate(mechanism string, publicKey []byte) ([]byte, []byte, error) {
	scheme, err := c.kemScheme(mechanism)
	if err != nil {
		return nil, nil, err
	}
	if len(publicKey) != scheme.PublicKeySize() {
		return nil, nil, fmt.Errorf("%w: %s expects %d bytes, got %d",
			pqc.ErrInvalidPublicKey, mechanism, scheme.PublicKeySize(), len(publicKey))
	}
	pk, err := scheme.UnmarshalBinaryPublicKey(publicKey)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", pqc.ErrInvalidPublicKey, err)
	}
	ct, ss, err := scheme.Encapsulate(pk)
	if err != nil {
		return nil, nil, fmt.Errorf("circl: %s encapsulate: %w", mechanism, err)
	}
	return ct, ss, nil
}

// KEMDecapsulate implements Provider
func (c *Circl) KEMDecapsulate(mechanism string, secretKey, ciphertext []byte) ([]byte, error) {
	scheme, err := c.kemScheme(mechanism)
	if err != nil {
		return nil, err
	}
	if len(secretKey) != scheme.PrivateKeySize() {
		return nil, fmt.Errorf("%w: %s expects %d bytes, got %d",
			pqc.ErrInvalidSecretKey, mechanism, scheme.PrivateKeySize(), len(secretKey))
	}
	if len(ciphertext) != scheme.CiphertextSize() {
		return nil, fmt.Errorf("%w: %s expects %d bytes, got %d",
			pqc.ErrInvalidCiphertext, mechanism, scheme.CiphertextSize(), len(ciphertext))
	}
	sk, err := scheme.UnmarshalBinaryPrivateKey(secretKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pqc.ErrInvalidSecretKey, err)
	}
	ss, err := scheme.Decapsulate(sk, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("circl: %s decapsulate: %w", mechanism, err)
	}
	return ss, nil
}

// SigKeypair implements Provider
func (c *Circl) SigKeypair(mechanism string) ([]byte, []byte, error) {
	scheme, err := c.sigScheme(mechanism)
	if err != nil {
		return nil, nil, err
	}
	pk, sk, err := scheme.GenerateKey()
	if err != nil {
		return nil, nil, fmt.Errorf("circl: %s keygen: %w", mechanism, err)
	}
	pub, err := pk.MarshalBinary()
	if err != nil {
		return nil, nil, fmt.Errorf("circl: marshal public key: %w", err)
	}
	sec, err := sk.MarshalBinary()
	if err != nil {
		return nil, nil, fmt.Errorf("circl: marshal secret key: %w", err)
	}
	return pub, sec, nil
}

// SigSign implements Provider
func (c *Circl) SigSign(mechanism string, message, secretKey []byte) (sig []byte, err error) {
	scheme, err := c.sigScheme(mechanism)
	if err != nil {
		return nil, err
	}
	if len(secretKey) != scheme.PrivateKeySize() {
		return nil, fmt.Errorf("%w: %s expects %d bytes, got %d",
			pqc.ErrInvalidSecretKey, mechanism, scheme.PrivateKeySize(), len(secretKey))
	}
	sk, err := scheme.UnmarshalBinaryPrivateKey(secretKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pqc.ErrInvalidSecretKey, err)
	}
	// CIRCL panics on internal signing failures
	defer func() {
		if r := recover(); r != nil {
			sig, err = nil, fmt.Errorf("circl: %s sign: %v", mechanism, r)
		}
	}()
	return scheme.Sign(sk, message, nil), nil
}

// SigVerify implements Provider
func (c *Circl) SigVerify(mechanism string, message, signature, publicKey []byte) (bool, error) {
	scheme, err := c.sigScheme(mechanism)
	if err != nil {
		return false, err
	}
	if len(publicKey) != scheme.PublicKeySize() {
		return false, fmt.Errorf("%w: %s expects %d bytes, got %d",
			pqc.ErrInvalidPublicKey, mechanism, scheme.PublicKeySize(), len(publicKey))
	}
	pk, err := scheme.UnmarshalBinaryPublicKey(publicKey)
	if err != nil {
		return false, fmt.Errorf("%w: %v", pqc.ErrInvalidPublicKey, err)
	}
	if len(signature) != scheme.SignatureSize() {
		return false, nil
	}
	return scheme.Verify(pk, message, signature, nil), nil
}
