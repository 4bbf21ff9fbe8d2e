// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for splitpack packages.
//
// [WriteTree] lays out a fixture source tree (module sources,
// package.json files, configs, graph descriptions) under a fresh
// t.TempDir() from a path-to-content map, so resolver, source loader
// and build tests can describe their inputs inline.
//
// [ReadTree] is the inverse: it collects every regular file under a
// directory into the same map shape so tests can compare emitted output
// directories against expectations.
//
// [Realm] runs emitted artifacts in an embedded JavaScript engine, one
// global environment per entry, so tests can check that what the
// emitter writes actually loads and executes.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no splitpack-internal dependencies. Realm uses goja.
package testutil
