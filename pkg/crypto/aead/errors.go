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

package aead

import "errors"

var (
	// ErrNonceReuse is returned when a nonce is reused with the same key.
	// Reusing a nonce breaks GCM authentication and leaks ChaCha20 keystream,
	// so the seal is refused.
	ErrNonceReuse = errors.New("aead: catastrophic nonce reuse detected - encryption rejected for security")

	// ErrUsageLimit is returned once a key has sealed its byte budget
	ErrUsageLimit = errors.New("aead: key usage limit exceeded")

	// ErrUnsupportedCipher indicates an unknown cipher name
	ErrUnsupportedCipher = errors.New("aead: unsupported cipher")

	// ErrInvalidKeySize indicates a key that is not KeySize bytes
	ErrInvalidKeySize = errors.New("aead: invalid key size")

	// ErrAuthentication indicates a tag mismatch on open
	ErrAuthentication = errors.New("aead: message authentication failed")

	// ErrClosed is returned by a Sealer after Destroy
	ErrClosed = errors.New("aead: sealer destroyed")
)
