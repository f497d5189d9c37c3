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

// Package secure keeps secret key bytes in process memory only in encrypted
// form.
//
// A Store generates an ephemeral 256-bit master key when it is created and
// never persists it. Every secret is sealed with AES-256-GCM or
// ChaCha20-Poly1305 under a fresh 96-bit nonce, with the key id and
// algorithm bound as associated data. The sealed blob (nonce, ciphertext
// and tag) lives in a storage.Backend; reads decrypt into a fresh copy and
// never touch the stored blob. Any authentication failure reads as "not
// found".
//
// Construct one Store per process and pass it to the services that need it.
package secure

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/awnumar/memguard"
	"github.com/google/uuid"

	"github.com/jeremyhahn/go-pqmesh/pkg/adapters/logger"
	"github.com/jeremyhahn/go-pqmesh/pkg/crypto/aead"
	"github.com/jeremyhahn/go-pqmesh/pkg/metrics"
	"github.com/jeremyhahn/go-pqmesh/pkg/storage"
	"github.com/jeremyhahn/go-pqmesh/pkg/storage/memory"
)

// DefaultValidityDays is used when Store is called with a non-positive
// validity
const DefaultValidityDays = 365

// temporaryKeyPrefix marks ids issued by TemporaryKey
const temporaryKeyPrefix = "tmp-"

// ErrClosed is returned by Store after Close
var ErrClosed = errors.New("secure: store closed")

// Config configures a Store. Every field is optional.
type Config struct {
	// Backend holds the sealed blobs. Defaults to an in-memory backend.
	// The Store closes it on Close.
	Backend storage.Backend

	// Cipher is aead.Auto, aead.AES256GCM or aead.ChaCha20Poly1305
	Cipher string

	// BytesLimit caps plaintext sealed under one master key
	BytesLimit int64

	// Logger defaults to a no-op logger
	Logger logger.Logger

	// Clock defaults to time.Now
	Clock func() time.Time

	// Rand is the source for the master key and nonces
	Rand io.Reader
}

// Store is a thread-safe encrypted secret table. A single mutex guards
// every read, write and delete; helpers with the Locked suffix expect it to
// be held.
type Store struct {
	mu        sync.Mutex
	backend   storage.Backend
	sealer    *aead.Sealer
	masterKey []byte
	locked    bool
	entries   map[string]*Handle
	seq       uint64
	clock     func() time.Time
	logger    logger.Logger
	closed    bool
	closeOnce sync.Once
	done      chan struct{}
}

// New creates a Store with a fresh master key. A nil config selects every
// default.
func New(config *Config) (*Store, error) {
	if config == nil {
		config = &Config{}
	}
	log := logger.OrNoOp(config.Logger).With(logger.String("component", "secure-store"))

	r := config.Rand
	if r == nil {
		r = rand.Reader
	}
	clock := config.Clock
	if clock == nil {
		clock = time.Now
	}
	backend := config.Backend
	if backend == nil {
		backend = memory.New()
	}

	masterKey := make([]byte, aead.KeySize)
	if _, err := io.ReadFull(r, masterKey); err != nil {
		return nil, fmt.Errorf("secure: generate master key: %w", err)
	}

	locked := true
	if err := lockMemory(masterKey); err != nil {
		locked = false
		log.Warn("memory locking unavailable, master key may be swapped to disk", logger.Error(err))
	}

	sealer, err := aead.NewSealer(config.Cipher, masterKey, &aead.SealerOptions{
		BytesLimit: config.BytesLimit,
		Rand:       r,
	})
	if err != nil {
		memguard.WipeBytes(masterKey)
		if locked {
			_ = unlockMemory(masterKey)
		}
		return nil, fmt.Errorf("secure: %w", err)
	}

	log.Info("secure store initialized",
		logger.String("cipher", sealer.Cipher()),
		logger.Bool("memory_locked", locked))

	return &Store{
		backend:   backend,
		sealer:    sealer,
		masterKey: masterKey,
		locked:    locked,
		entries:   make(map[string]*Handle),
		clock:     clock,
		logger:    log,
		done:      make(chan struct{}),
	}, nil
}

// Cipher returns the AEAD protecting stored secrets
func (s *Store) Cipher() string {
	return s.sealer.Cipher()
}

// MemoryLocked reports whether the master key is pinned in RAM
func (s *Store) MemoryLocked() bool {
	return s.locked
}

// Store seals secret under keyID. An existing entry with the same id is
// securely deleted first. A non-positive validityDays selects
// DefaultValidityDays.
func (s *Store) Store(keyID string, secret []byte, algorithm string, validityDays int) (*Handle, error) {
	start := time.Now()
	h, err := s.store(keyID, secret, algorithm, validityDays)
	metrics.Observe(metrics.OpStore, algorithm, start, err)
	return h, err
}

func (s *Store) store(keyID string, secret []byte, algorithm string, validityDays int) (*Handle, error) {
	if err := storage.ValidateID(keyID); err != nil {
		return nil, err
	}
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: empty secret", storage.ErrInvalidData)
	}
	if validityDays <= 0 {
		validityDays = DefaultValidityDays
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}

	if _, exists := s.entries[keyID]; exists {
		s.deleteLocked(keyID)
	}

	nonce, ciphertext, err := s.sealer.Seal(secret, associatedData(keyID, algorithm))
	if err != nil {
		return nil, fmt.Errorf("secure: seal %s: %w", keyID, err)
	}
	blob := make([]byte, 0, len(nonce)+len(ciphertext))
	blob = append(blob, nonce...)
	blob = append(blob, ciphertext...)
	err = s.backend.Put(storage.SecretPath(keyID), blob)
	memguard.WipeBytes(blob)
	if err != nil {
		return nil, fmt.Errorf("secure: put %s: %w", keyID, err)
	}

	now := s.clock().UTC()
	s.seq++
	h := &Handle{
		KeyID:     keyID,
		Algorithm: algorithm,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Duration(validityDays) * 24 * time.Hour),
		seq:       s.seq,
	}
	s.entries[keyID] = h
	metrics.AddStoredKeys(1)

	s.logger.Debug("secret stored",
		logger.KeyID(keyID),
		logger.String("algorithm", algorithm),
		logger.Int("secret_len", len(secret)))
	return h.clone(), nil
}

// Get decrypts and returns a copy of the secret for h. It returns false when
// the id is unknown, the entry has expired, the store is closed, or the
// sealed blob fails authentication. An expired entry is deleted on access.
// Handles resolve by key id, so a handle for a replaced entry reads the
// replacement.
func (s *Store) Get(h *Handle) ([]byte, bool) {
	return s.observeGet(h, false)
}

// getIssued is Get restricted to the entry h was issued for
func (s *Store) getIssued(h *Handle) ([]byte, bool) {
	return s.observeGet(h, true)
}

func (s *Store) observeGet(h *Handle, exact bool) ([]byte, bool) {
	if h == nil {
		return nil, false
	}
	start := time.Now()
	secret, ok := s.get(h, exact)
	var err error
	if !ok {
		err = storage.ErrNotFound
	}
	metrics.Observe(metrics.OpGet, h.Algorithm, start, err)
	return secret, ok
}

func (s *Store) get(h *Handle, exact bool) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, false
	}
	keyID := h.KeyID
	entry, exists := s.entries[keyID]
	if !exists || (exact && entry.seq != h.seq) {
		return nil, false
	}
	if entry.IsExpired(s.clock()) {
		s.logger.Debug("secret expired", logger.KeyID(keyID))
		s.deleteLocked(keyID)
		return nil, false
	}

	blob, err := s.backend.Get(storage.SecretPath(keyID))
	if err != nil {
		s.logger.Warn("sealed secret missing from backend", logger.KeyID(keyID), logger.Error(err))
		return nil, false
	}
	defer memguard.WipeBytes(blob)

	if len(blob) < aead.NonceSize+aead.TagSize {
		s.integrityFailureLocked(keyID, storage.ErrInvalidData)
		return nil, false
	}
	secret, err := s.sealer.Open(blob[:aead.NonceSize], blob[aead.NonceSize:], associatedData(keyID, entry.Algorithm))
	if err != nil {
		s.integrityFailureLocked(keyID, err)
		return nil, false
	}
	return secret, true
}

func (s *Store) integrityFailureLocked(keyID string, err error) {
	metrics.RecordIntegrityFailure()
	s.logger.Warn("sealed secret failed authentication", logger.KeyID(keyID), logger.Error(err))
}

// Delete zeroes and removes the secret for h. It returns whether the entry
// existed.
func (s *Store) Delete(h *Handle) bool {
	return s.remove(h, false)
}

// deleteIssued is Delete restricted to the entry h was issued for
func (s *Store) deleteIssued(h *Handle) bool {
	return s.remove(h, true)
}

func (s *Store) remove(h *Handle, exact bool) bool {
	if h == nil {
		return false
	}
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	existed := false
	if entry, ok := s.entries[h.KeyID]; ok && (!exact || entry.seq == h.seq) {
		existed = s.deleteLocked(h.KeyID)
	}
	var err error
	if !existed {
		err = storage.ErrNotFound
	}
	metrics.Observe(metrics.OpDelete, h.Algorithm, start, err)
	return existed
}

// deleteLocked zeroes the sealed blob in the backend before removing it
func (s *Store) deleteLocked(keyID string) bool {
	if _, exists := s.entries[keyID]; !exists {
		return false
	}
	path := storage.SecretPath(keyID)
	if blob, err := s.backend.Get(path); err == nil {
		zeros := make([]byte, len(blob))
		_ = s.backend.Put(path, zeros)
		memguard.WipeBytes(blob)
	}
	if err := s.backend.Delete(path); err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.logger.Warn("backend delete failed", logger.KeyID(keyID), logger.Error(err))
	}
	delete(s.entries, keyID)
	metrics.AddStoredKeys(-1)
	s.logger.Debug("secret deleted", logger.KeyID(keyID))
	return true
}

// ClearAll deletes every entry and returns how many were removed
func (s *Store) ClearAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearAllLocked()
}

func (s *Store) clearAllLocked() int {
	n := 0
	for id := range s.entries {
		if s.deleteLocked(id) {
			n++
		}
	}
	return n
}

// PurgeExpired deletes every expired entry and returns how many were removed
func (s *Store) PurgeExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0
	}
	now := s.clock()
	n := 0
	for id, h := range s.entries {
		if h.IsExpired(now) && s.deleteLocked(id) {
			n++
		}
	}
	if n > 0 {
		s.logger.Info("purged expired secrets", logger.Int("count", n))
	}
	return n
}

// ListKeys returns the ids of all stored entries in sorted order
func (s *Store) ListKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of stored entries
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// TemporaryKey stores secret under a random id, passes its handle to fn and
// deletes the entry when fn returns, fails or panics.
func (s *Store) TemporaryKey(secret []byte, algorithm string, fn func(*Handle) error) error {
	h, err := s.Store(temporaryKeyPrefix+uuid.NewString(), secret, algorithm, 0)
	if err != nil {
		return err
	}
	defer s.Delete(h)
	return fn(h)
}

// Close clears every entry, wipes the master key and closes the backend.
// It runs exactly once and waits for in-flight operations to finish.
func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		n := s.clearAllLocked()
		s.closed = true
		close(s.done)

		s.sealer.Destroy()
		if s.locked {
			if uerr := unlockMemory(s.masterKey); uerr != nil {
				s.logger.Warn("munlock failed", logger.Error(uerr))
			}
		}
		s.masterKey = nil
		err = s.backend.Close()
		s.logger.Info("secure store closed", logger.Int("cleared", n))
	})
	return err
}

// associatedData binds a sealed blob to its id and algorithm so a blob
// cannot be replayed under another entry
func associatedData(keyID, algorithm string) []byte {
	aad := make([]byte, 0, len(keyID)+len(algorithm)+1)
	aad = append(aad, keyID...)
	aad = append(aad, 0)
	aad = append(aad, algorithm...)
	return aad
}
