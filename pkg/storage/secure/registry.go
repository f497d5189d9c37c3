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
	"sort"
	"sync"
)

// Registry remembers the handles one service has issued so it can look
// secrets up by key id and delete only its own entries. Services each own a
// private Registry over a shared Store.
//
// The Store keeps one entry per key id. When another registry stores the
// same id, the entry is replaced and belongs to the newer registration: the
// older registry's Lookup misses and its Clear leaves the entry alone.
type Registry struct {
	store   *Store
	mu      sync.Mutex
	handles map[string]*Handle
}

// NewRegistry returns an empty registry over store. A nil store yields a
// registry whose Register fails with ErrClosed.
func NewRegistry(store *Store) *Registry {
	return &Registry{
		store:   store,
		handles: make(map[string]*Handle),
	}
}

// Register stores secret under keyID and remembers the handle
func (r *Registry) Register(keyID string, secret []byte, algorithm string, validityDays int) (*Handle, error) {
	if r.store == nil {
		return nil, ErrClosed
	}
	h, err := r.store.Store(keyID, secret, algorithm, validityDays)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.handles[keyID] = h
	r.mu.Unlock()
	return h, nil
}

// Lookup returns a copy of the secret registered under keyID
func (r *Registry) Lookup(keyID string) ([]byte, bool) {
	r.mu.Lock()
	h, ok := r.handles[keyID]
	r.mu.Unlock()
	if !ok || r.store == nil {
		return nil, false
	}
	secret, ok := r.store.getIssued(h)
	if !ok {
		r.forget(keyID, h)
	}
	return secret, ok
}

func (r *Registry) forget(keyID string, h *Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.handles[keyID] == h {
		delete(r.handles, keyID)
	}
}

// KeyIDs returns the registered ids in sorted order
func (r *Registry) KeyIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.handles))
	for id := range r.handles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clear deletes every registered secret from the store and returns how many
// entries were still present
func (r *Registry) Clear() int {
	r.mu.Lock()
	handles := r.handles
	r.handles = make(map[string]*Handle)
	r.mu.Unlock()

	if r.store == nil {
		return 0
	}
	n := 0
	for _, h := range handles {
		if r.store.deleteIssued(h) {
			n++
		}
	}
	return n
}
