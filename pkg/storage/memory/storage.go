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

// Package memory provides the in-memory storage.Backend used by the secure
// key store. Blobs are copied in and out, and every blob that leaves the map
// (overwrite, delete, close) is zeroed first.
package memory

import (
	"sort"
	"strings"
	"sync"

	"github.com/awnumar/memguard"

	"github.com/jeremyhahn/go-pqmesh/pkg/storage"
)

// Storage is an in-memory storage.Backend.
type Storage struct {
	mu     sync.RWMutex
	blobs  map[string][]byte
	closed bool
}

// New creates an empty in-memory backend.
func New() *Storage {
	return &Storage{blobs: make(map[string][]byte)}
}

// Get returns a copy of the blob at path
func (s *Storage) Get(path string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, storage.ErrClosed
	}
	blob, ok := s.blobs[path]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := make([]byte, len(blob))
	copy(out, blob)
	return out, nil
}

// Put stores a copy of blob, wiping any previous blob at path
func (s *Storage) Put(path string, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.ErrClosed
	}
	if old, ok := s.blobs[path]; ok {
		memguard.WipeBytes(old)
	}
	s.blobs[path] = append(make([]byte, 0, len(blob)), blob...)
	return nil
}

// Delete wipes and removes the blob at path
func (s *Storage) Delete(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.ErrClosed
	}
	blob, ok := s.blobs[path]
	if !ok {
		return storage.ErrNotFound
	}
	memguard.WipeBytes(blob)
	delete(s.blobs, path)
	return nil
}

// List returns the sorted paths under prefix
func (s *Storage) List(prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, storage.ErrClosed
	}
	paths := make([]string, 0, len(s.blobs))
	for path := range s.blobs {
		if strings.HasPrefix(path, prefix) {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// Exists reports whether a blob is stored at path
func (s *Storage) Exists(path string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false, storage.ErrClosed
	}
	_, ok := s.blobs[path]
	return ok, nil
}

// Len returns the number of stored blobs
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}

// Close wipes every blob. Later calls are no-ops.
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, blob := range s.blobs {
		memguard.WipeBytes(blob)
	}
	s.blobs = nil
	s.closed = true
	return nil
}
