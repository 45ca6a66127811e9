// Package service contains the core business logic for the analysis pipeline.
// AnalysisService orchestrates the resolve-or-generate strategy:
//
//	Layer 1: Cache — exact fingerprint match, then case-insensitive name match
//	Layer 2: Inference — identify and/or interpret via the gateway
//
// Once generated, interpretations are persisted and served from cache forever.
package service

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Fingerprint returns the lowercase hex SHA-256 digest of the exact bytes.
// No normalization, re-encoding or resizing happens before hashing —
// byte-for-byte identity is the cache-hit criterion for images, so the same
// painting uploaded as two different files produces two different keys.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// NormalizeName trims surrounding whitespace. Case is preserved: the stored
// name keeps its original casing, and case-folding happens at query time in
// the store's NOCASE lookup.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}
