//go:build !(linux || darwin || freebsd || netbsd || openbsd)

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

import "errors"

var errLockUnsupported = errors.New("secure: memory locking not supported on this platform")

func lockMemory([]byte) error {
	return errLockUnsupported
}

func unlockMemory([]byte) error {
	return nil
}
