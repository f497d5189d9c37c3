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
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-pqmesh/pkg/crypto/eddsa"
	"github.com/jeremyhahn/go-pqmesh/pkg/crypto/x25519"
	"github.com/jeremyhahn/go-pqmesh/pkg/pqc"
	"github.com/jeremyhahn/go-pqmesh/pkg/pqc/adapter"
	"github.com/jeremyhahn/go-pqmesh/pkg/pqc/dsa"
	"github.com/jeremyhahn/go-pqmesh/pkg/pqc/kem"
	"github.com/jeremyhahn/go-pqmesh/pkg/pqc/provider"
	"github.com/jeremyhahn/go-pqmesh/pkg/storage/secure"
)

type fixture struct {
	store *secure.Store
	kx    *KeyExchange
	sig   *SignatureScheme
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	a, err := adapter.New(provider.NewCircl(), "ML-KEM-768", "ML-DSA-65", nil)
	require.NoError(t, err)
	store, err := secure.New(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	kx, err := NewKeyExchange(kem.New(a, store, nil), nil)
	require.NoError(t, err)
	sig, err := NewSignatureScheme(dsa.New(a, store, nil), nil)
	require.NoError(t, err)
	return &fixture{store: store, kx: kx, sig: sig}
}

func TestKeyExchangeAgreement(t *testing.T) {
	f := newFixture(t)

	alice, err := f.kx.GenerateKeyPair("alice", 365)
	require.NoError(t, err)
	bob, err := f.kx.GenerateKeyPair("bob", 365)
	require.NoError(t, err)

	assert.Equal(t, pqc.AlgorithmX25519MLKEM768, alice.Algorithm)
	assert.Equal(t, "alice_x25519", alice.Classical.KeyID)
	assert.Equal(t, "alice_mlkem", alice.PQC.KeyID)
	assert.Len(t, alice.PublicKey(), x25519.PublicKeySize+1184)

	toBob, err := f.kx.Encapsulate(bob.PublicKey())
	require.NoError(t, err)
	assert.Len(t, toBob.SharedSecret, SecretSize)
	assert.Len(t, toBob.Ciphertext, x25519.PublicKeySize+1088+SaltSize)

	bobSecret, err := f.kx.DecapsulateWithKeyPair(bob, toBob.Ciphertext)
	require.NoError(t, err)
	assert.Equal(t, toBob.SharedSecret, bobSecret)

	toAlice, err := f.kx.Encapsulate(alice.PublicKey())
	require.NoError(t, err)
	aliceSecret, err := f.kx.Decapsulate(alice.SecretKey(), toAlice.Ciphertext)
	require.NoError(t, err)
	assert.Equal(t, toAlice.SharedSecret, aliceSecret)

	// ML-KEM rejects implicitly: the wrong key yields an unrelated secret
	wrong, err := f.kx.DecapsulateWithKeyPair(alice, toBob.Ciphertext)
	require.NoError(t, err)
	assert.NotEqual(t, toBob.SharedSecret, wrong)
}

func TestKeyExchangeFreshness(t *testing.T) {
	f := newFixture(t)
	kp, err := f.kx.GenerateKeyPair("", 0)
	require.NoError(t, err)
	assert.Equal(t, pqc.DeriveKeyID(kp.PublicKey()), kp.KeyID)

	first, err := f.kx.Encapsulate(kp.PublicKey())
	require.NoError(t, err)
	second, err := f.kx.Encapsulate(kp.PublicKey())
	require.NoError(t, err)

	assert.NotEqual(t, first.Ciphertext, second.Ciphertext)
	assert.NotEqual(t, first.Ciphertext[:x25519.PublicKeySize], second.Ciphertext[:x25519.PublicKeySize],
		"ephemeral classical values differ")
	assert.NotEqual(t, first.SharedSecret, second.SharedSecret)
}

func TestKeyExchangeTamperedSaltChangesSecret(t *testing.T) {
	f := newFixture(t)
	kp, err := f.kx.GenerateKeyPair("", 0)
	require.NoError(t, err)
	res, err := f.kx.Encapsulate(kp.PublicKey())
	require.NoError(t, err)

	ct := append([]byte(nil), res.Ciphertext...)
	ct[len(ct)-1] ^= 0x01
	secret, err := f.kx.DecapsulateWithKeyPair(kp, ct)
	require.NoError(t, err)
	assert.NotEqual(t, res.SharedSecret, secret)
}

func TestKeyExchangeRegistersPQCSecret(t *testing.T) {
	f := newFixture(t)
	_, err := f.kx.GenerateKeyPair("node-7", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"node-7_mlkem"}, f.store.ListKeys())
}

func TestKeyExchangeInvalidInputs(t *testing.T) {
	f := newFixture(t)

	_, err := f.kx.Encapsulate(make([]byte, x25519.PublicKeySize))
	assert.ErrorIs(t, err, pqc.ErrInvalidPublicKey)

	_, err = f.kx.Decapsulate(make([]byte, 16), make([]byte, 200))
	assert.ErrorIs(t, err, pqc.ErrInvalidSecretKey)

	kp, err := f.kx.GenerateKeyPair("", 0)
	require.NoError(t, err)
	_, err = f.kx.DecapsulateWithKeyPair(kp, make([]byte, x25519.PublicKeySize+SaltSize))
	assert.ErrorIs(t, err, pqc.ErrInvalidCiphertext)

	_, err = f.kx.DecapsulateWithKeyPair(nil, nil)
	assert.ErrorIs(t, err, pqc.ErrInvalidSecretKey)
}

func TestKeyExchangeRequiresMLKEM768(t *testing.T) {
	a, err := adapter.New(provider.NewCircl(), "ML-KEM-1024", "", nil)
	require.NoError(t, err)
	_, err = NewKeyExchange(kem.New(a, nil, nil), nil)
	assert.ErrorIs(t, err, pqc.ErrUnsupportedAlgorithm)
}

func TestUnavailable(t *testing.T) {
	kx, err := NewKeyExchange(kem.New(nil, nil, nil), nil)
	require.NoError(t, err)
	assert.False(t, kx.Available())
	_, err = kx.GenerateKeyPair("k", 1)
	assert.ErrorIs(t, err, pqc.ErrUnavailable)
	_, err = kx.Encapsulate(make([]byte, 100))
	assert.ErrorIs(t, err, pqc.ErrUnavailable)
	_, err = kx.Decapsulate(make([]byte, 100), make([]byte, 100))
	assert.ErrorIs(t, err, pqc.ErrUnavailable)

	ss, err := NewSignatureScheme(nil, nil)
	require.NoError(t, err)
	assert.False(t, ss.Available())
	_, err = ss.GenerateKeyPair("k", 1)
	assert.ErrorIs(t, err, pqc.ErrUnavailable)
	assert.False(t, ss.Verify([]byte("m"), &Signature{}, make([]byte, 100)))
}

func TestHeartbeatBitFlip(t *testing.T) {
	f := newFixture(t)
	kp, err := f.sig.GenerateKeyPair("node-42", 1)
	require.NoError(t, err)
	assert.Equal(t, "node-42_ed25519", kp.Classical.KeyID)
	assert.Equal(t, "node-42_mldsa", kp.PQC.KeyID)

	message := []byte("heartbeat")
	sig, err := f.sig.Sign(message, kp)
	require.NoError(t, err)
	assert.Equal(t, pqc.AlgorithmEd25519MLDSA65, sig.Algorithm)
	assert.Equal(t, "node-42", sig.SignerKeyID)
	assert.Equal(t, pqc.HashMessage(message), sig.MessageHash)

	tampered := *sig
	tampered.Classical = append([]byte(nil), sig.Classical...)
	tampered.Classical[0] ^= 0x01

	assert.False(t, f.sig.Verify(message, &tampered, kp.PublicKey()))
	assert.True(t, f.sig.Verify(message, sig, kp.PublicKey()))
}

func TestSignatureANDComposition(t *testing.T) {
	f := newFixture(t)
	kp, err := f.sig.GenerateKeyPair("", 0)
	require.NoError(t, err)
	message := []byte("heartbeat")
	sig, err := f.sig.Sign(message, kp)
	require.NoError(t, err)

	badPQC := *sig
	badPQC.PQC = append([]byte(nil), sig.PQC...)
	badPQC.PQC[len(badPQC.PQC)/2] ^= 0x80
	assert.False(t, f.sig.Verify(message, &badPQC, kp.PublicKey()), "valid classical, corrupt PQC")

	badClassical := *sig
	badClassical.Classical = bytes.Repeat([]byte{0}, eddsa.SignatureSize)
	assert.False(t, f.sig.Verify(message, &badClassical, kp.PublicKey()), "corrupt classical, valid PQC")

	truncated := *sig
	truncated.Classical = sig.Classical[:10]
	assert.False(t, f.sig.Verify(message, &truncated, kp.PublicKey()))

	other, err := f.sig.GenerateKeyPair("", 0)
	require.NoError(t, err)
	assert.False(t, f.sig.Verify(message, sig, other.PublicKey()))
	assert.False(t, f.sig.Verify([]byte("heartbeaT"), sig, kp.PublicKey()))
	assert.False(t, f.sig.Verify(message, nil, kp.PublicKey()))
	assert.False(t, f.sig.Verify(message, sig, kp.PublicKey()[:eddsa.PublicKeySize]))
}

func TestSignatureBytesRoundTrip(t *testing.T) {
	f := newFixture(t)
	kp, err := f.sig.GenerateKeyPair("", 0)
	require.NoError(t, err)
	message := []byte("heartbeat")
	sig, err := f.sig.Sign(message, kp)
	require.NoError(t, err)

	combined := sig.Bytes()
	assert.Equal(t, sig.Classical, combined[:eddsa.SignatureSize])

	parsed, err := ParseSignature(combined)
	require.NoError(t, err)
	assert.Equal(t, sig.Classical, parsed.Classical)
	assert.Equal(t, sig.PQC, parsed.PQC)
	assert.True(t, f.sig.VerifyBytes(message, combined, kp.PublicKey()))

	_, err = ParseSignature(combined[:eddsa.SignatureSize])
	assert.ErrorIs(t, err, pqc.ErrInvalidSignature)
	assert.False(t, f.sig.VerifyBytes(message, combined[:eddsa.SignatureSize], kp.PublicKey()))
}

func TestSignRejectsIncompleteKeyPair(t *testing.T) {
	f := newFixture(t)
	_, err := f.sig.Sign([]byte("m"), nil)
	assert.ErrorIs(t, err, pqc.ErrInvalidSecretKey)

	kp, err := f.sig.GenerateKeyPair("", 0)
	require.NoError(t, err)
	kp.Zeroize()
	_, err = f.sig.Sign([]byte("m"), kp)
	assert.ErrorIs(t, err, pqc.ErrInvalidSecretKey)
}

func TestPayloadSealOpen(t *testing.T) {
	f := newFixture(t)
	kp, err := f.kx.GenerateKeyPair("", 0)
	require.NoError(t, err)
	res, err := f.kx.Encapsulate(kp.PublicKey())
	require.NoError(t, err)
	peer, err := f.kx.DecapsulateWithKeyPair(kp, res.Ciphertext)
	require.NoError(t, err)

	aad := []byte("node-42")
	sealed, err := f.kx.Seal(res.SharedSecret, []byte("heartbeat payload"), aad)
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "heartbeat payload")

	opened, err := f.kx.Open(peer, sealed, aad)
	require.NoError(t, err)
	assert.Equal(t, []byte("heartbeat payload"), opened)

	again, err := f.kx.Seal(res.SharedSecret, []byte("heartbeat payload"), aad)
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again)

	_, err = f.kx.Open(peer, sealed, []byte("node-43"))
	assert.ErrorIs(t, err, pqc.ErrIntegrity)

	sealed[len(sealed)-1] ^= 0x01
	opened, err = f.kx.Open(peer, sealed, aad)
	assert.ErrorIs(t, err, pqc.ErrIntegrity)
	assert.Nil(t, opened)

	_, err = f.kx.Open(peer, sealed[:4], aad)
	assert.ErrorIs(t, err, pqc.ErrIntegrity)

	_, err = f.kx.Seal([]byte("short"), nil, nil)
	assert.ErrorIs(t, err, pqc.ErrInvalidSecretKey)
}

func TestKeyPairRecordOmitsSecrets(t *testing.T) {
	f := newFixture(t)
	kp, err := f.kx.GenerateKeyPair("node-1", 1)
	require.NoError(t, err)

	r := kp.Record()
	assert.Equal(t, "node-1", r.KeyID)
	assert.Equal(t, "node-1_x25519", r.ClassicalKeyID)
	assert.Equal(t, "node-1_mlkem", r.PQCKeyID)
	assert.Len(t, r.PublicKeyHex, 2*len(kp.PublicKey()))
	assert.NotContains(t, kp.String(), "secret")

	kp.Zeroize()
	assert.Nil(t, kp.Classical.SecretKey)
	assert.Nil(t, kp.PQC.SecretKey)
}
