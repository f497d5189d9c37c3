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

import "github.com/jeremyhahn/go-pqmesh/pkg/pqc"

// LibOQS is a stub when built without the "quantum" tag. It reports itself
// unavailable and every operation returns pqc.ErrUnavailable.
type LibOQS struct{}

// NewLibOQS returns the stub provider
func NewLibOQS() *LibOQS {
	return &LibOQS{}
}

// Name implements Provider
func (l *LibOQS) Name() string { return NameLibOQS }

// Available implements Provider
func (l *LibOQS) Available() bool { return false }

// EnabledKEMs implements Provider
func (l *LibOQS) EnabledKEMs() []string { return nil }

// EnabledSigs implements Provider
func (l *LibOQS) EnabledSigs() []string { return nil }

// KEMKeypair implements Provider
func (l *LibOQS) KEMKeypair(string) ([]byte, []byte, error) {
	return nil, nil, pqc.ErrUnavailable
}

// KEMEncapsulate implements Provider
func (l *LibOQS) KEMEncapsulate(string, []byte) ([]byte, []byte, error) {
	return nil, nil, pqc.ErrUnavailable
}

// KEMDecapsulate implements Provider
func (l *LibOQS) KEMDecapsulate(string, []byte, []byte) ([]byte, error) {
	return nil, pqc.ErrUnavailable
}

// SigKeypair implements Provider
func (l *LibOQS) SigKeypair(string) ([]byte, []byte, error) {
	return nil, nil, pqc.ErrUnavailable
}

// SigSign implements Provider
func (l *LibOQS) SigSign(string, []byte, []byte) ([]byte, error) {
	return nil, pqc.ErrUnavailable
}

// SigVerify implements Provider
func (l *LibOQS) SigVerify(string, []byte, []byte, []byte) (bool, error) {
	return false, pqc.ErrUnavailable
}
