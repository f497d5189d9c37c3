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
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlgorithmString(t *testing.T) {
	tests := []struct {
		alg  Algorithm
		want string
	}{
		{AlgorithmMLKEM512, "ML-KEM-512"},
		{AlgorithmMLKEM768, "ML-KEM-768"},
		{AlgorithmMLKEM1024, "ML-KEM-1024"},
		{AlgorithmMLDSA44, "ML-DSA-44"},
		{AlgorithmMLDSA65, "ML-DSA-65"},
		{AlgorithmMLDSA87, "ML-DSA-87"},
		{AlgorithmX25519MLKEM768, "X25519-ML-KEM-768"},
		{AlgorithmEd25519MLDSA65, "Ed25519-ML-DSA-65"},
		{AlgorithmUnknown, "Unknown"},
		{Algorithm(999), "Unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.alg.String())
	}
}

func TestAlgorithmClassification(t *testing.T) {
	assert.True(t, AlgorithmMLKEM768.IsKEM())
	assert.False(t, AlgorithmMLKEM768.IsSignature())
	assert.True(t, AlgorithmMLKEM768.IsPostQuantum())
	assert.Equal(t, TypeKEM, AlgorithmMLKEM768.Type())

	assert.True(t, AlgorithmMLDSA65.IsSignature())
	assert.Equal(t, TypeSignature, AlgorithmMLDSA65.Type())

	assert.True(t, AlgorithmX25519MLKEM768.IsHybrid())
	assert.True(t, AlgorithmX25519MLKEM768.IsKEM())
	assert.False(t, AlgorithmX25519MLKEM768.IsPostQuantum())
	assert.True(t, AlgorithmEd25519MLDSA65.IsHybrid())
	assert.True(t, AlgorithmEd25519MLDSA65.IsSignature())

	assert.False(t, AlgorithmUnknown.IsValid())
	assert.Equal(t, TypeUnknown, AlgorithmUnknown.Type())
}

func TestParseAlgorithm(t *testing.T) {
	t.Run("canonical names", func(t *testing.T) {
		for _, alg := range append(KEMAlgorithms(), SignatureAlgorithms()...) {
			parsed, err := ParseAlgorithm(alg.String())
			require.NoError(t, err)
			assert.Equal(t, alg, parsed)
		}
	})

	t.Run("legacy names", func(t *testing.T) {
		tests := map[string]Algorithm{
			"Kyber512":   AlgorithmMLKEM512,
			"Kyber768":   AlgorithmMLKEM768,
			"Kyber1024":  AlgorithmMLKEM1024,
			"Dilithium2": AlgorithmMLDSA44,
			"Dilithium3": AlgorithmMLDSA65,
			"Dilithium5": AlgorithmMLDSA87,
		}
		for name, want := range tests {
			parsed, err := ParseAlgorithm(name)
			require.NoError(t, err, name)
			assert.Equal(t, want, parsed, name)
		}
	})

	t.Run("case insensitive", func(t *testing.T) {
		parsed, err := ParseAlgorithm("ml-kem-768")
		require.NoError(t, err)
		assert.Equal(t, AlgorithmMLKEM768, parsed)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := ParseAlgorithm("RSA-2048")
		assert.True(t, errors.Is(err, ErrUnsupportedAlgorithm))
	})
}

func TestLegacyNames(t *testing.T) {
	assert.Equal(t, "ML-KEM-768", CanonicalName("Kyber768"))
	assert.Equal(t, "ML-DSA-65", CanonicalName("Dilithium3"))
	assert.Equal(t, "ML-KEM-768", CanonicalName("ML-KEM-768"))
	assert.Equal(t, "Falcon-512", CanonicalName("Falcon-512"))

	legacy, ok := LegacyName("ML-KEM-768")
	require.True(t, ok)
	assert.Equal(t, "Kyber768", legacy)

	legacy, ok = LegacyName("Dilithium5")
	require.True(t, ok)
	assert.Equal(t, "Dilithium5", legacy)

	_, ok = LegacyName("X25519")
	assert.False(t, ok)

	assert.True(t, IsLegacyName("Dilithium2"))
	assert.False(t, IsLegacyName("ML-DSA-44"))
}

func TestAlgorithmJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Alg Algorithm `json:"alg"`
	}{AlgorithmMLDSA87})
	require.NoError(t, err)
	assert.JSONEq(t, `{"alg":"ML-DSA-87"}`, string(data))

	var decoded struct {
		Alg Algorithm `json:"alg"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"alg":"Kyber1024"}`), &decoded))
	assert.Equal(t, AlgorithmMLKEM1024, decoded.Alg)

	_, err = json.Marshal(struct {
		Alg Algorithm `json:"alg"`
	}{AlgorithmUnknown})
	assert.Error(t, err)
}
