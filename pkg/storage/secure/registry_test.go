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

package secure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryIsolation(t *testing.T) {
	s := newTestStore(t, nil)
	kemKeys := NewRegistry(s)
	sigKeys := NewRegistry(s)

	_, err := kemKeys.Register("node-1", []byte("kem-secret"), "ML-KEM-768", 1)
	require.NoError(t, err)
	_, err = sigKeys.Register("node-2", []byte("sig-secret"), "ML-DSA-65", 1)
	require.NoError(t, err)

	got, ok := kemKeys.Lookup("node-1")
	require.True(t, ok)
	assert.Equal(t, []byte("kem-secret"), got)

	_, ok = kemKeys.Lookup("node-2")
	assert.False(t, ok)

	assert.Equal(t, 1, kemKeys.Clear())
	assert.Equal(t, []string{"node-2"}, s.ListKeys())
	assert.Empty(t, kemKeys.KeyIDs())
	assert.Equal(t, []string{"node-2"}, sigKeys.KeyIDs())
}

func TestRegistryForgetsDeletedEntries(t *testing.T) {
	s := newTestStore(t, nil)
	r := NewRegistry(s)

	h, err := r.Register("k", []byte("secret"), "alg", 1)
	require.NoError(t, err)
	require.True(t, s.Delete(h))

	_, ok := r.Lookup("k")
	assert.False(t, ok)
	assert.Empty(t, r.KeyIDs())
	assert.Equal(t, 0, r.Clear())
}

func TestRegistryWithoutStore(t *testing.T) {
	r := NewRegistry(nil)
	_, err := r.Register("k", []byte("secret"), "alg", 1)
	assert.ErrorIs(t, err, ErrClosed)
	_, ok := r.Lookup("k")
	assert.False(t, ok)
	assert.Equal(t, 0, r.Clear())
}

func TestRegistrySameKeyIDAcrossRegistries(t *testing.T) {
	s := newTestStore(t, nil)
	kemKeys := NewRegistry(s)
	sigKeys := NewRegistry(s)

	_, err := kemKeys.Register("node-42", []byte("from-kem"), "ML-KEM-768", 1)
	require.NoError(t, err)
	_, err = sigKeys.Register("node-42", []byte("from-sig"), "ML-DSA-65", 1)
	require.NoError(t, err)

	_, ok := kemKeys.Lookup("node-42")
	assert.False(t, ok, "replaced entry belongs to the newer registration")
	assert.Empty(t, kemKeys.KeyIDs())

	got, ok := sigKeys.Lookup("node-42")
	require.True(t, ok)
	assert.Equal(t, []byte("from-sig"), got)

	_, err = kemKeys.Register("node-7", []byte("kem-only"), "ML-KEM-768", 1)
	require.NoError(t, err)
	_, err = sigKeys.Register("node-7", []byte("sig-now"), "ML-DSA-65", 1)
	require.NoError(t, err)

	assert.Equal(t, 0, kemKeys.Clear())
	got, ok = sigKeys.Lookup("node-7")
	require.True(t, ok)
	assert.Equal(t, []byte("sig-now"), got)
	assert.Equal(t, []string{"node-42", "node-7"}, s.ListKeys())
}
