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

// Package pqc defines the data model shared by the post-quantum key exchange,
// signature and hybrid layers: algorithm identifiers, key pairs, signatures
// and encapsulation results.
//
// Names follow NIST FIPS 203 (ML-KEM) and FIPS 204 (ML-DSA). The legacy
// round-3 names (Kyber768, Dilithium3, ...) are accepted wherever a name is
// parsed and map onto the standard names.
package pqc

import (
	"fmt"
	"strings"
)

// Algorithm represents a key encapsulation, signature or hybrid scheme.
type Algorithm int

const (
	// AlgorithmUnknown is the zero value and is never valid
	AlgorithmUnknown Algorithm = iota
	// AlgorithmMLKEM512 is ML-KEM-512 (NIST level 1, formerly Kyber512)
	AlgorithmMLKEM512
	// AlgorithmMLKEM768 is ML-KEM-768 (NIST level 3, formerly Kyber768)
	AlgorithmMLKEM768
	// AlgorithmMLKEM1024 is ML-KEM-1024 (NIST level 5, formerly Kyber1024)
	AlgorithmMLKEM1024
	// AlgorithmMLDSA44 is ML-DSA-44 (NIST level 2, formerly Dilithium2)
	AlgorithmMLDSA44
	// AlgorithmMLDSA65 is ML-DSA-65 (NIST level 3, formerly Dilithium3)
	AlgorithmMLDSA65
	// AlgorithmMLDSA87 is ML-DSA-87 (NIST level 5, formerly Dilithium5)
	AlgorithmMLDSA87
	// AlgorithmX25519 is classical Diffie-Hellman on Curve25519
	AlgorithmX25519
	// AlgorithmEd25519 is classical EdDSA on edwards25519
	AlgorithmEd25519
	// AlgorithmX25519MLKEM768 is the hybrid X25519 + ML-KEM-768 key exchange
	AlgorithmX25519MLKEM768
	// AlgorithmEd25519MLDSA65 is the hybrid Ed25519 + ML-DSA-65 signature
	AlgorithmEd25519MLDSA65
)

// Algorithm type names returned by Algorithm.Type
const (
	TypeKEM       = "kem"
	TypeSignature = "signature"
	TypeUnknown   = "unknown"
)

var algorithmNames = map[Algorithm]string{
	AlgorithmMLKEM512:       "ML-KEM-512",
	AlgorithmMLKEM768:       "ML-KEM-768",
	AlgorithmMLKEM1024:      "ML-KEM-1024",
	AlgorithmMLDSA44:        "ML-DSA-44",
	AlgorithmMLDSA65:        "ML-DSA-65",
	AlgorithmMLDSA87:        "ML-DSA-87",
	AlgorithmX25519:         "X25519",
	AlgorithmEd25519:        "Ed25519",
	AlgorithmX25519MLKEM768: "X25519-ML-KEM-768",
	AlgorithmEd25519MLDSA65: "Ed25519-ML-DSA-65",
}

// String returns the canonical name of the algorithm
func (a Algorithm) String() string {
	if name, ok := algorithmNames[a]; ok {
		return name
	}
	return "Unknown"
}

// Type returns "kem", "signature" or "unknown"
func (a Algorithm) Type() string {
	switch {
	case a.IsKEM():
		return TypeKEM
	case a.IsSignature():
		return TypeSignature
	default:
		return TypeUnknown
	}
}

// IsKEM returns true for key encapsulation and key agreement schemes,
// including X25519 and the X25519 hybrid.
func (a Algorithm) IsKEM() bool {
	switch a {
	case AlgorithmMLKEM512, AlgorithmMLKEM768, AlgorithmMLKEM1024,
		AlgorithmX25519, AlgorithmX25519MLKEM768:
		return true
	}
	return false
}

// IsSignature returns true for signature schemes, including Ed25519 and the
// Ed25519 hybrid.
func (a Algorithm) IsSignature() bool {
	switch a {
	case AlgorithmMLDSA44, AlgorithmMLDSA65, AlgorithmMLDSA87,
		AlgorithmEd25519, AlgorithmEd25519MLDSA65:
		return true
	}
	return false
}

// IsPostQuantum returns true for the pure lattice schemes served by a
// primitive provider.
func (a Algorithm) IsPostQuantum() bool {
	switch a {
	case AlgorithmMLKEM512, AlgorithmMLKEM768, AlgorithmMLKEM1024,
		AlgorithmMLDSA44, AlgorithmMLDSA65, AlgorithmMLDSA87:
		return true
	}
	return false
}

// IsHybrid returns true for classical + post-quantum compositions
func (a Algorithm) IsHybrid() bool {
	return a == AlgorithmX25519MLKEM768 || a == AlgorithmEd25519MLDSA65
}

// IsValid returns true if the algorithm is a known member of the enumeration
func (a Algorithm) IsValid() bool {
	_, ok := algorithmNames[a]
	return ok
}

// MarshalText encodes the algorithm as its canonical name
func (a Algorithm) MarshalText() ([]byte, error) {
	if !a.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedAlgorithm, int(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText decodes a canonical or legacy algorithm name
func (a *Algorithm) UnmarshalText(text []byte) error {
	parsed, err := ParseAlgorithm(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAlgorithm resolves a canonical or legacy name to an Algorithm.
// Matching is exact first, then case-insensitive.
func ParseAlgorithm(name string) (Algorithm, error) {
	canonical := CanonicalName(strings.TrimSpace(name))
	for alg, n := range algorithmNames {
		if n == canonical {
			return alg, nil
		}
	}
	for alg, n := range algorithmNames {
		if strings.EqualFold(n, canonical) {
			return alg, nil
		}
	}
	return AlgorithmUnknown, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, name)
}

// KEMAlgorithms returns the post-quantum KEM algorithms in security order
func KEMAlgorithms() []Algorithm {
	return []Algorithm{AlgorithmMLKEM512, AlgorithmMLKEM768, AlgorithmMLKEM1024}
}

// SignatureAlgorithms returns the post-quantum signature algorithms in
// security order
func SignatureAlgorithms() []Algorithm {
	return []Algorithm{AlgorithmMLDSA44, AlgorithmMLDSA65, AlgorithmMLDSA87}
}
