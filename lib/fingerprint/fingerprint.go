// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

// Package fingerprint computes content fingerprints for emitted
// artifacts and module payloads.
//
// Fingerprints are BLAKE3 keyed hashes with one fixed key per domain,
// so an artifact and a module with identical bytes still get different
// fingerprints. The hex form fills the [hash] and [hash:N] placeholders
// of artifact file name templates.
package fingerprint

import (
	"encoding/hex"
	"fmt"
	"hash"

	"github.com/zeebo/blake3"
)

// Size is the fingerprint length in bytes.
const Size = 32

// Hash is a BLAKE3 digest.
type Hash [Size]byte

// domainKey is a BLAKE3 key: ASCII domain name, zero padded. Changing
// one changes every fingerprint in its domain.
type domainKey [Size]byte

var (
	artifactDomainKey = domainKey{
		's', 'p', 'l', 'i', 't', 'p', 'a', 'c', 'k', '.', 'a', 'r', 't', 'i', 'f', 'a',
		'c', 't', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}

	moduleDomainKey = domainKey{
		's', 'p', 'l', 'i', 't', 'p', 'a', 'c', 'k', '.', 'm', 'o', 'd', 'u', 'l', 'e',
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}
)

// Artifact fingerprints a serialized artifact. Compressed sidecars are
// not fingerprinted separately; the name is derived from the
// uncompressed bytes.
func Artifact(data []byte) Hash {
	return keyedHash(artifactDomainKey, data)
}

// Module fingerprints a module payload.
func Module(data []byte) Hash {
	return keyedHash(moduleDomainKey, data)
}

// NewArtifactHasher returns a streaming hasher whose Sum equals
// Artifact over everything written to it.
func NewArtifactHasher() hash.Hash {
	return newKeyed(artifactDomainKey)
}

// FromSum copies a hasher's Sum output into a Hash.
func FromSum(sum []byte) (Hash, error) {
	var result Hash
	if len(sum) != Size {
		return result, fmt.Errorf("fingerprint is %d bytes, want %d", len(sum), Size)
	}
	copy(result[:], sum)
	return result, nil
}

// String returns the full lowercase hex encoding.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Short returns the first length hex characters, clamped to the full
// encoding. Non-positive lengths return the full encoding.
func (h Hash) Short(length int) string {
	full := h.String()
	if length <= 0 || length >= len(full) {
		return full
	}
	return full[:length]
}

// IsZero reports whether h is the zero value.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// Parse parses a 64-character hex fingerprint.
func Parse(text string) (Hash, error) {
	var result Hash
	decoded, err := hex.DecodeString(text)
	if err != nil {
		return result, fmt.Errorf("parsing fingerprint: %w", err)
	}
	return FromSum(decoded)
}

func keyedHash(key domainKey, data []byte) Hash {
	hasher := newKeyed(key)
	hasher.Write(data)
	var result Hash
	copy(result[:], hasher.Sum(nil))
	return result
}

func newKeyed(key domainKey) *blake3.Hasher {
	// NewKeyed only fails for a key that is not 32 bytes.
	hasher, err := blake3.NewKeyed(key[:])
	if err != nil {
		panic("fingerprint: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	return hasher
}
