// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds the CBOR configuration for the binary build
// manifest (manifest.cbor).
//
// JSON is the format people and tooling read (manifest.json, --json
// output). CBOR is the compact copy packaging scripts and caches load.
// Both carry the same types: fxamacker/cbor reads `json` struct tags
// when no `cbor` tag is present, so manifest types declare `json` tags
// only and the two encodings agree on field names and omitempty.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items. The
// same manifest always produces identical bytes, which keeps rebuilds
// byte-for-byte reproducible.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
package codec
