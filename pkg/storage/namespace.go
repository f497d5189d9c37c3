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

import (
	"fmt"
	"strings"
)

const secretPrefix = "secrets/"

// SecretPath returns the storage path for a sealed secret with the given ID.
// The path follows the convention: secrets/{id}
func SecretPath(id string) string {
	return secretPrefix + id
}

// ValidateID rejects empty IDs and IDs that would escape the namespace
func ValidateID(id string) error {
	if id == "" || strings.ContainsAny(id, "/\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// ListSecrets retrieves all secret IDs from the backend by listing the
// "secrets/" prefix and stripping it.
// Returns an empty slice if no secrets exist.
func ListSecrets(backend Backend) ([]string, error) {
	keys, err := backend.List(secretPrefix)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		if id := strings.TrimPrefix(k, secretPrefix); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
