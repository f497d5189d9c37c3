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

import "errors"

var (
	// ErrUnavailable indicates the primitive library (or a classical curve
	// implementation) could not be loaded. Services built on an unavailable
	// provider return this from every operation.
	ErrUnavailable = errors.New("pqc: primitive provider unavailable")

	// ErrMechanismNotSupported indicates the provider rejected the requested
	// algorithm at runtime
	ErrMechanismNotSupported = errors.New("pqc: mechanism not supported")

	// ErrUnsupportedAlgorithm indicates an algorithm name that is not part of
	// the enumeration
	ErrUnsupportedAlgorithm = errors.New("pqc: unsupported algorithm")

	// ErrInvalidPublicKey indicates a malformed or wrongly sized public key
	ErrInvalidPublicKey = errors.New("pqc: invalid public key")

	// ErrInvalidSecretKey indicates a malformed or wrongly sized secret key
	ErrInvalidSecretKey = errors.New("pqc: invalid secret key")

	// ErrInvalidCiphertext indicates a malformed or wrongly sized ciphertext
	ErrInvalidCiphertext = errors.New("pqc: invalid ciphertext")

	// ErrInvalidSignature indicates a malformed signature encoding
	ErrInvalidSignature = errors.New("pqc: invalid signature")

	// ErrKeyNotFound indicates no stored secret exists for a key id
	ErrKeyNotFound = errors.New("pqc: key not found")

	// ErrIntegrity indicates an authentication tag or signature mismatch.
	// Callers never receive partial plaintext alongside it.
	ErrIntegrity = errors.New("pqc: integrity check failed")

	// ErrInvalidRecord indicates a serialized record could not be decoded
	ErrInvalidRecord = errors.New("pqc: invalid record")
)
