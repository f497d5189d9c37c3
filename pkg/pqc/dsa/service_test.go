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

package dsa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-pqmesh/internal/testutil"
	"github.com/jeremyhahn/go-pqmesh/pkg/pqc"
	"github.com/jeremyhahn/go-pqmesh/pkg/pqc/adapter"
	"github.com/jeremyhahn/go-pqmesh/pkg/pqc/provider"
	"github.com/jeremyhahn/go-pqmesh/pkg/storage/secure"
)

func newService(t *testing.T, sigAlgorithm string) (*Service, *secure.Store) {
	t.Helper()
	a, err := adapter.New(provider.NewCircl(), "", sigAlgorithm, nil)
	require.NoError(t, err)
	store, err := secure.New(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return New(a, store, nil), store
}

func TestSignVerify(t *testing.T) {
	for _, alg := range pqc.SignatureAlgorithms() {
		t.Run(alg.String(), func(t *testing.T) {
			svc, _ := newService(t, alg.String())
			kp, err := svc.GenerateKeyPair("", 0)
			require.NoError(t, err)
			assert.Equal(t, alg, kp.Algorithm)

			message := []byte("mesh heartbeat #1")
			sig, err := svc.Sign(message, kp.SecretKey, "signer-1")
			require.NoError(t, err)
			assert.Equal(t, alg, sig.Algorithm)
			assert.Equal(t, "signer-1", sig.SignerKeyID)
			assert.Equal(t, pqc.HashMessage(message), sig.MessageHash)
			assert.True(t, sig.CoversMessage(message))

			assert.True(t, svc.Verify(message, sig.SignatureBytes, kp.PublicKey))
		})
	}
}

func TestSingleByteMutationFailsVerify(t *testing.T) {
	svc, _ := newService(t, "")
	kp, err := svc.GenerateKeyPair("", 0)
	require.NoError(t, err)

	message := []byte("heartbeat")
	sig, err := svc.Sign(message, kp.SecretKey, "")
	require.NoError(t, err)

	mutate := func(b []byte, i int) []byte {
		c := append([]byte(nil), b...)
		c[i] ^= 0x01
		return c
	}

	for _, i := range []int{0, len(message) / 2, len(message) - 1} {
		assert.False(t, svc.Verify(mutate(message, i), sig.SignatureBytes, kp.PublicKey), "message byte %d", i)
	}
	for _, i := range []int{0, len(sig.SignatureBytes) / 2, len(sig.SignatureBytes) - 1} {
		assert.False(t, svc.Verify(message, mutate(sig.SignatureBytes, i), kp.PublicKey), "signature byte %d", i)
	}
	for _, i := range []int{0, len(kp.PublicKey) / 2, len(kp.PublicKey) - 1} {
		assert.False(t, svc.Verify(message, sig.SignatureBytes, mutate(kp.PublicKey, i)), "public key byte %d", i)
	}
	assert.True(t, svc.Verify(message, sig.SignatureBytes, kp.PublicKey))
}

func TestVerifyNeverFails(t *testing.T) {
	svc, _ := newService(t, "")
	assert.False(t, svc.Verify([]byte("m"), []byte("sig"), []byte("short key")))
	assert.False(t, svc.Verify(nil, nil, nil))

	fake := testutil.NewFakeProvider()
	a, err := adapter.New(fake, "", "", nil)
	require.NoError(t, err)
	faked := New(a, nil, nil)
	kp, err := faked.GenerateKeyPair("", 0)
	require.NoError(t, err)
	sig, err := faked.Sign([]byte("m"), kp.SecretKey, "")
	require.NoError(t, err)

	fake.Reject["ML-DSA-65"] = true
	assert.False(t, faked.Verify([]byte("m"), sig.SignatureBytes, kp.PublicKey))

	fake.Reject["ML-DSA-65"] = false
	fake.PanicOnVerify = true
	assert.NotPanics(t, func() {
		assert.False(t, faked.Verify([]byte("m"), sig.SignatureBytes, kp.PublicKey))
	})
}

func TestKeyRegistration(t *testing.T) {
	svc, store := newService(t, "")

	kp, err := svc.GenerateKeyPair("node-42", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"node-42"}, store.ListKeys())

	sig, err := svc.SignWithKeyID([]byte("heartbeat"), "node-42")
	require.NoError(t, err)
	assert.Equal(t, "node-42", sig.SignerKeyID)
	assert.True(t, svc.Verify([]byte("heartbeat"), sig.SignatureBytes, kp.PublicKey))

	_, err = svc.SignWithKeyID([]byte("heartbeat"), "missing")
	assert.ErrorIs(t, err, pqc.ErrKeyNotFound)

	assert.Equal(t, 1, svc.ClearCache())
	_, ok := svc.GetSecretKey("node-42")
	assert.False(t, ok)
}

func TestUnavailable(t *testing.T) {
	svc := New(nil, nil, nil)
	assert.False(t, svc.Available())

	_, err := svc.GenerateKeyPair("", 1)
	assert.ErrorIs(t, err, pqc.ErrUnavailable)
	_, err = svc.Sign([]byte("m"), []byte("k"), "")
	assert.ErrorIs(t, err, pqc.ErrUnavailable)
	_, err = svc.SignWithKeyID([]byte("m"), "k")
	assert.ErrorIs(t, err, pqc.ErrUnavailable)
	assert.False(t, svc.Verify([]byte("m"), []byte("s"), []byte("k")))
	assert.Empty(t, svc.KeyIDs())
}
