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

package storage

import "errors"

var (
	// ErrClosed is returned by every operation on a closed backend or store.
	ErrClosed = errors.New("storage: closed")

	// ErrNotFound means no blob is stored at the requested path.
	ErrNotFound = errors.New("storage: not found")

	// ErrInvalidID rejects empty key ids and ids that would leave the
	// secrets namespace.
	ErrInvalidID = errors.New("storage: invalid ID")

	// ErrInvalidData rejects empty secrets and blobs too short to hold a
	// nonce and tag.
	ErrInvalidData = errors.New("storage: invalid data")
)
