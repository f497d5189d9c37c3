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

// Legacy round-3 submission names and their FIPS 203/204 equivalents.
// liboqs builds older than 0.10 only know the legacy names.
var legacyToCanonical = map[string]string{
	"Kyber512":   "ML-KEM-512",
	"Kyber768":   "ML-KEM-768",
	"Kyber1024":  "ML-KEM-1024",
	"Dilithium2": "ML-DSA-44",
	"Dilithium3": "ML-DSA-65",
	"Dilithium5": "ML-DSA-87",
}

var canonicalToLegacy = func() map[string]string {
	m := make(map[string]string, len(legacyToCanonical))
	for legacy, canonical := range legacyToCanonical {
		m[canonical] = legacy
	}
	return m
}()

// CanonicalName maps a legacy name to its standard name. Names that are
// already canonical, or unknown, are returned unchanged.
func CanonicalName(name string) string {
	if canonical, ok := legacyToCanonical[name]; ok {
		return canonical
	}
	return name
}

// LegacyName returns the legacy alias for a canonical name, if one exists.
func LegacyName(name string) (string, bool) {
	legacy, ok := canonicalToLegacy[CanonicalName(name)]
	return legacy, ok
}

// IsLegacyName returns true if name is one of the legacy aliases
func IsLegacyName(name string) bool {
	_, ok := legacyToCanonical[name]
	return ok
}
