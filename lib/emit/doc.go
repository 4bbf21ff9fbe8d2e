// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

// Package emit turns a chunk assignment into loadable artifacts and a
// manifest.
//
// Each shared chunk and each entry's private bundle becomes one
// JavaScript file. Members are serialized in the graph's load order,
// dependencies first. A file registers its modules in a per-realm
// registry; a private bundle also installs the require runtime and
// requires its entry root, so an entry runs once its manifest load list
// (shared chunks by priority, then its bundle) has been loaded in
// order.
//
// Module payloads pass through the loader chosen by lib/loaderrule.
// Scripts and TypeScript are compiled to CommonJS by the configured
// [Compiler] (lib/transpile by default). JSON becomes an export. Small
// images are inlined as data URIs and other files are written out as
// assets named by template.
//
// Stylesheets are extracted. The CSS of an artifact's members is
// concatenated in member order into a .css file named by the
// artifact's template, loaded just before the artifact's script. CSS
// module stylesheets have their class names scoped first and export
// the class map.
//
// File names come from templates with [name], [ext], [hash] and
// [hash:N] placeholders; the hash is the BLAKE3 fingerprint of the
// uncompressed file. Modules are loaded and artifacts rendered in
// parallel, bounded by Options.Concurrency. Everything is rendered and
// name collisions are checked before the first write.
package emit
