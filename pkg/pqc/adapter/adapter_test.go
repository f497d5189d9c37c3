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

package adapter

import (
	"testing"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-pqmesh/internal/testutil"
	"github.com/jeremyhahn/go-pqmesh/pkg/metrics"
	"github.com/jeremyhahn/go-pqmesh/pkg/pqc"
	"github.com/jeremyhahn/go-pqmesh/pkg/pqc/provider"
)

func TestNewUnavailable(t *testing.T) {
	_, err := New(nil, "", "", nil)
	assert.ErrorIs(t, err, pqc.ErrUnavailable)

	fake := testutil.NewFakeProvider()
	fake.Unavailable = true
	_, err = New(fake, "", "", nil)
	assert.ErrorIs(t, err, pqc.ErrUnavailable)
}

func TestNameResolution(t *testing.T) {
	tests := []struct {
		name    string
		legacy  bool
		kemIn   string
		sigIn   string
		wantKEM string
		wantSig string
	}{
		{"defaults", false, "", "", "ML-KEM-768", "ML-DSA-65"},
		{"legacy input, canonical provider", false, "Kyber1024", "Dilithium2", "ML-KEM-1024", "ML-DSA-44"},
		{"canonical input, legacy provider", true, "ML-KEM-768", "ML-DSA-87", "Kyber768", "Dilithium5"},
		{"legacy input, legacy provider", true, "Kyber512", "Dilithium3", "Kyber512", "Dilithium3"},
		{"unknown proceeds optimistically", false, "HQC-128", "Falcon-512", "HQC-128", "Falcon-512"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := testutil.NewFakeProvider()
			if tt.legacy {
				fake = testutil.NewLegacyFakeProvider()
			}
			a, err := New(fake, tt.kemIn, tt.sigIn, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.wantKEM, a.KEMMechanism())
			assert.Equal(t, tt.wantSig, a.SigMechanism())
		})
	}
}

func TestLegacySubstitutionReachesProvider(t *testing.T) {
	fake := testutil.NewLegacyFakeProvider()
	a, err := New(fake, "ML-KEM-768", "ML-DSA-65", nil)
	require.NoError(t, err)
	assert.Equal(t, pqc.AlgorithmMLKEM768, a.KEMAlgorithm())
	assert.Equal(t, pqc.AlgorithmMLDSA65, a.SigAlgorithm())

	pub, sec, err := a.KEMGenerate()
	require.NoError(t, err)
	ct, ss, err := a.KEMEncapsulate(pub)
	require.NoError(t, err)
	recovered, err := a.KEMDecapsulate(sec, ct)
	require.NoError(t, err)
	assert.Equal(t, ss, recovered)

	assert.Equal(t, []string{"Kyber768"}, fake.Calls("kem_keypair"))
	assert.Equal(t, []string{"Kyber768"}, fake.Calls("kem_decapsulate"))
}

func TestOptimisticFailure(t *testing.T) {
	a, err := New(provider.NewCircl(), "HQC-128", "Falcon-512", nil)
	require.NoError(t, err)

	_, _, err = a.KEMGenerate()
	assert.ErrorIs(t, err, pqc.ErrMechanismNotSupported)
	_, _, err = a.SigGenerate()
	assert.ErrorIs(t, err, pqc.ErrMechanismNotSupported)
	assert.Equal(t, pqc.AlgorithmUnknown, a.KEMAlgorithm())
}

func TestSignatureOperations(t *testing.T) {
	a, err := New(provider.NewCircl(), "", "", nil)
	require.NoError(t, err)

	pub, sec, err := a.SigGenerate()
	require.NoError(t, err)

	msg := []byte("test message")
	sig, err := a.SigSign(msg, sec)
	require.NoError(t, err)

	ok, err := a.SigVerify(msg, sig, pub)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.SigVerify([]byte("tampered"), sig, pub)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = a.SigVerify(msg, sig, []byte("short"))
	assert.False(t, ok)
	assert.ErrorIs(t, err, pqc.ErrInvalidPublicKey)
}

func TestRejectedSignatureRecordedAsError(t *testing.T) {
	metrics.Enable()
	a, err := New(provider.NewCircl(), "", "ML-DSA-65", nil)
	require.NoError(t, err)

	pub, sec, err := a.SigGenerate()
	require.NoError(t, err)
	msg := []byte("test message")
	sig, err := a.SigSign(msg, sec)
	require.NoError(t, err)

	verified := func(status string) float64 {
		return promtest.ToFloat64(metrics.OperationsTotal.WithLabelValues(metrics.OpVerify, "ML-DSA-65", status))
	}
	success, failed := verified(metrics.StatusSuccess), verified(metrics.StatusError)

	ok, err := a.SigVerify(msg, sig, pub)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, success+1, verified(metrics.StatusSuccess))
	assert.Equal(t, failed, verified(metrics.StatusError))

	ok, err = a.SigVerify([]byte("tampered"), sig, pub)
	require.NoError(t, err)
	require.False(t, ok)
	assert.Equal(t, success+1, verified(metrics.StatusSuccess))
	assert.Equal(t, failed+1, verified(metrics.StatusError))
}

func TestSupportedAlgorithms(t *testing.T) {
	a, err := New(provider.NewCircl(), "", "", nil)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"ML-KEM-512", "ML-KEM-768", "ML-KEM-1024"}, a.SupportedKEMAlgorithms())
	assert.ElementsMatch(t, []string{"ML-DSA-44", "ML-DSA-65", "ML-DSA-87"}, a.SupportedSigAlgorithms())
	assert.Equal(t, provider.NameCircl, a.Provider().Name())
}
