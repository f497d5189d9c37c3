//go:build !quantum

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

	"github.com/jeremyhahn/go-pqmesh/pkg/pqc"
)

func TestLibOQSStub(t *testing.T) {
	p := NewLibOQS()
	assert.False(t, p.Available())
	assert.Empty(t, p.EnabledKEMs())
	assert.Empty(t, p.EnabledSigs())

	_, _, err := p.KEMKeypair("ML-KEM-768")
	assert.ErrorIs(t, err, pqc.ErrUnavailable)
	_, err = p.SigSign("ML-DSA-65", nil, nil)
	assert.ErrorIs(t, err, pqc.ErrUnavailable)
	ok, err := p.SigVerify("ML-DSA-65", nil, nil, nil)
	assert.False(t, ok)
	assert.ErrorIs(t, err, pqc.ErrUnavailable)

	_, err = New("liboqs")
	assert.ErrorIs(t, err, pqc.ErrUnavailable)

	auto, err := New("auto")
	assert.NoError(t, err)
	assert.Equal(t, NameCircl, auto.Name())
}
