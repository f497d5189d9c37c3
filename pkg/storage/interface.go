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

// Package storage provides the key-value abstraction underneath the secure
// key store. Backends only ever see sealed (encrypted and authenticated)
// blobs, addressed by the paths built in namespace.go.
package storage

// Backend holds sealed secret blobs. Implementations must be safe for
// concurrent use.
type Backend interface {
	// Get returns a copy of the blob at path, or ErrNotFound.
	Get(path string) ([]byte, error)

	// Put stores a copy of blob at path, replacing any previous blob.
	// Backends that keep the old blob in memory should wipe it.
	Put(path string, blob []byte) error

	// Delete removes the blob at path, or returns ErrNotFound.
	Delete(path string) error

	// List returns the sorted paths that start with prefix. An empty prefix
	// lists everything.
	List(prefix string) ([]string, error)

	// Exists reports whether a blob is stored at path.
	Exists(path string) (bool, error)

	// Close releases the backend. Every later call returns ErrClosed.
	Close() error
}
