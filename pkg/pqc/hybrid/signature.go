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
	"crypto/rand"
	"fmt"
	"time"

	"github.com/jeremyhahn/go-pqmesh/pkg/adapters/logger"
	"github.com/jeremyhahn/go-pqmesh/pkg/crypto/eddsa"
	"github.com/jeremyhahn/go-pqmesh/pkg/metrics"
	"github.com/jeremyhahn/go-pqmesh/pkg/pqc"
	"github.com/jeremyhahn/go-pqmesh/pkg/pqc/dsa"
)

// SignatureScheme is the Ed25519 + ML-DSA-65 hybrid signature
type SignatureScheme struct {
	dsa    *dsa.Service
	logger logger.Logger
}

// NewSignatureScheme builds the hybrid signature on dsaService, which must
// be configured for ML-DSA-65. A nil or unavailable service yields a scheme
// whose Sign and GenerateKeyPair fail with pqc.ErrUnavailable and whose
// Verify returns false.
func NewSignatureScheme(dsaService *dsa.Service, log logger.Logger) (*SignatureScheme, error) {
	log = logger.OrNoOp(log).With(logger.String("scheme", pqc.AlgorithmEd25519MLDSA65.String()))
	if dsaService != nil && dsaService.Available() && dsaService.Algorithm() != pqc.AlgorithmMLDSA65 {
		return nil, fmt.Errorf("%w: hybrid signature requires ML-DSA-65, got %s",
			pqc.ErrUnsupportedAlgorithm, dsaService.Algorithm())
	}
	ss := &SignatureScheme{dsa: dsaService, logger: log}
	if ss.Available() {
		log.Info("hybrid signature scheme initialized")
	} else {
		log.Warn("hybrid signature scheme disabled, no post-quantum provider")
	}
	return ss, nil
}

// Available reports whether the post-quantum half is usable
func (ss *SignatureScheme) Available() bool {
	return ss.dsa != nil && ss.dsa.Available()
}

// Algorithm returns pqc.AlgorithmEd25519MLDSA65
func (ss *SignatureScheme) Algorithm() pqc.Algorithm {
	return pqc.AlgorithmEd25519MLDSA65
}

// GenerateKeyPair creates independent Ed25519 and ML-DSA-65 key pairs. The
// Ed25519 secret is its 32-byte seed. With a non-empty keyID the sub keys are
// named keyID_ed25519 and keyID_mldsa.
func (ss *SignatureScheme) GenerateKeyPair(keyID string, validityDays int) (*KeyPair, error) {
	if !ss.Available() {
		return nil, pqc.ErrUnavailable
	}

	pub, seed, err := eddsa.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("hybrid: %w", err)
	}
	classical := pqc.NewKeyPair(pqc.AlgorithmEd25519, pub, seed, subKeyID(keyID, SuffixEd25519), validityDays)

	pq, err := ss.dsa.GenerateKeyPair(subKeyID(keyID, SuffixMLDSA), validityDays)
	if err != nil {
		classical.Zeroize()
		return nil, fmt.Errorf("hybrid: %w", err)
	}

	kp := newKeyPair(ss.Algorithm(), classical, pq, keyID, validityDays)
	ss.logger.Info("generated hybrid signing key pair", logger.KeyID(kp.KeyID))
	return kp, nil
}

// Sign produces an Ed25519 signature and an ML-DSA signature over message
func (ss *SignatureScheme) Sign(message []byte, kp *KeyPair) (*Signature, error) {
	start := time.Now()
	sig, err := ss.sign(message, kp)
	metrics.Observe(metrics.OpSign, ss.Algorithm().String(), start, err)
	return sig, err
}

func (ss *SignatureScheme) sign(message []byte, kp *KeyPair) (*Signature, error) {
	if !ss.Available() {
		return nil, pqc.ErrUnavailable
	}
	if kp == nil || kp.Classical == nil || kp.PQC == nil {
		return nil, fmt.Errorf("%w: incomplete hybrid key pair", pqc.ErrInvalidSecretKey)
	}

	classical, err := eddsa.Sign(kp.Classical.SecretKey, message)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pqc.ErrInvalidSecretKey, err)
	}
	pq, err := ss.dsa.Sign(message, kp.PQC.SecretKey, kp.KeyID)
	if err != nil {
		return nil, fmt.Errorf("hybrid: %w", err)
	}

	sig := &Signature{
		Classical:   classical,
		PQC:         pq.SignatureBytes,
		Algorithm:   ss.Algorithm(),
		MessageHash: pqc.HashMessage(message),
		Timestamp:   time.Now().UTC(),
		SignerKeyID: kp.KeyID,
	}
	ss.logger.Debug("hybrid signature created",
		logger.KeyID(kp.KeyID),
		logger.Int("signature_len", len(classical)+len(pq.SignatureBytes)))
	return sig, nil
}

// Verify reports whether both halves of signature verify over message under
// publicKey (Ed25519 public key || ML-DSA public key). Any failure, including
// a panic in either verifier, counts as that half failing.
func (ss *SignatureScheme) Verify(message []byte, signature *Signature, publicKey []byte) bool {
	start := time.Now()
	valid := ss.verify(message, signature, publicKey)
	var err error
	if !valid {
		err = pqc.ErrIntegrity
	}
	metrics.Observe(metrics.OpVerify, ss.Algorithm().String(), start, err)
	ss.logger.Debug("hybrid signature verification", logger.Bool("valid", valid))
	return valid
}

func (ss *SignatureScheme) verify(message []byte, signature *Signature, publicKey []byte) bool {
	if !ss.Available() || signature == nil || len(publicKey) <= eddsa.PublicKeySize {
		return false
	}
	classicalOK := verifyClassical(publicKey[:eddsa.PublicKeySize], message, signature.Classical)
	pqOK := ss.dsa.Verify(message, signature.PQC, publicKey[eddsa.PublicKeySize:])
	return classicalOK && pqOK
}

// VerifyBytes parses a combined signature and verifies it
func (ss *SignatureScheme) VerifyBytes(message, signature, publicKey []byte) bool {
	sig, err := ParseSignature(signature)
	if err != nil {
		return false
	}
	return ss.Verify(message, sig, publicKey)
}

func verifyClassical(publicKey, message, signature []byte) (valid bool) {
	defer func() {
		if recover() != nil {
			valid = false
		}
	}()
	return eddsa.Verify(publicKey, message, signature)
}
