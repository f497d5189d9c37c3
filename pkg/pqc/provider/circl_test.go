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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-pqmesh/pkg/pqc"
)

func TestCirclKEMRoundTrip(t *testing.T) {
	p := NewCircl()
	require.True(t, p.Available())

	sizes := map[string]struct{ pub, sec, ct int }{
		"ML-KEM-512":  {800, 1632, 768},
		"ML-KEM-768":  {1184, 2400, 1088},
		"ML-KEM-1024": {1568, 3168, 1568},
	}

	for _, mech := range p.EnabledKEMs() {
		t.Run(mech, func(t *testing.T) {
			pub, sec, err := p.KEMKeypair(mech)
			require.NoError(t, err)
			assert.Len(t, pub, sizes[mech].pub)
			assert.Len(t, sec, sizes[mech].sec)

			ct, ss, err := p.KEMEncapsulate(mech, pub)
			require.NoError(t, err)
			assert.Len(t, ct, sizes[mech].ct)
			assert.Len(t, ss, 32)

			recovered, err := p.KEMDecapsulate(mech, sec, ct)
			require.NoError(t, err)
			assert.Equal(t, ss, recovered)
		})
	}
}

func TestCirclKEMErrors(t *testing.T) {
	p := NewCircl()

	_, _, err := p.KEMKeypair("Kyber768")
	assert.ErrorIs(t, err, pqc.ErrMechanismNotSupported)

	_, _, err = p.KEMEncapsulate("ML-KEM-768", []byte("short"))
	assert.ErrorIs(t, err, pqc.ErrInvalidPublicKey)

	pub, sec, err := p.KEMKeypair("ML-KEM-768")
	require.NoError(t, err)
	ct, _, err := p.KEMEncapsulate("ML-KEM-768", pub)
	require.NoError(t, err)

	_, err = p.KEMDecapsulate("ML-KEM-768", sec[:10], ct)
	assert.ErrorIs(t, err, pqc.ErrInvalidSecretKey)

	_, err = p.KEMDecapsulate("ML-KEM-768", sec, ct[:100])
	assert.ErrorIs(t, err, pqc.ErrInvalidCiphertext)
}

func TestCirclSignatureRoundTrip(t *testing.T) {
	p := NewCircl()
	message := []byte("mesh heartbeat")

	for _, mech := range p.EnabledSigs() {
		t.Run(mech, func(t *testing.T) {
			pub, sec, err := p.SigKeypair(mech)
			require.NoError(t, err)

			sig, err := p.SigSign(mech, message, sec)
			require.NoError(t, err)
			require.NotEmpty(t, sig)

			ok, err := p.SigVerify(mech, message, sig, pub)
			require.NoError(t, err)
			assert.True(t, ok)

			tampered := append([]byte(nil), sig...)
			tampered[0] ^= 0x01
			ok, err = p.SigVerify(mech, message, tampered, pub)
			require.NoError(t, err)
			assert.False(t, ok)

			ok, err = p.SigVerify(mech, []byte("other"), sig, pub)
			require.NoError(t, err)
			assert.False(t, ok)

			ok, err = p.SigVerify(mech, message, sig[:10], pub)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestCirclSignatureErrors(t *testing.T) {
	p := NewCircl()

	_, err := p.SigSign("Dilithium3", []byte("m"), []byte("k"))
	assert.ErrorIs(t, err, pqc.ErrMechanismNotSupported)

	_, err = p.SigSign("ML-DSA-65", []byte("m"), []byte("k"))
	assert.ErrorIs(t, err, pqc.ErrInvalidSecretKey)

	_, err = p.SigVerify("ML-DSA-65", []byte("m"), []byte("s"), []byte("k"))
	assert.ErrorIs(t, err, pqc.ErrInvalidPublicKey)
}

func TestNew(t *testing.T) {
	p, err := New("circl")
	require.NoError(t, err)
	assert.Equal(t, NameCircl, p.Name())

	p, err = New("")
	require.NoError(t, err)
	assert.True(t, p.Available())

	_, err = New("bogus")
	assert.ErrorIs(t, err, pqc.ErrUnavailable)

	assert.ElementsMatch(t, []string{"auto", "circl", "liboqs"}, Names())
}
