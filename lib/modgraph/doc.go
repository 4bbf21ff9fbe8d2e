// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

// Package modgraph holds the immutable module reference graph that the
// chunk pipeline consumes.
//
// A [Graph] is a closed set of [Module] values plus an ordered list of
// named [Entry] roots into it. Construction ([New]) is the only point
// where the graph is checked: every reference must point at a module in
// the graph, module ids and entry names must be unique, and there may be
// at most [MaxEntries] entries. After construction nothing mutates the
// graph, so it can be read concurrently without locks.
//
// Entries are addressed by their position in the entry list. An
// [EntrySet] is a 64-bit set of those positions; the reachability index
// and the chunk engine work entirely in EntrySet terms and convert back
// to names only for output.
//
// Graphs come from a [Resolver]. Two implementations live here:
//
//   - [FileResolver] reads a JSONC graph description produced by an
//     external toolchain
//   - [ScanResolver] walks JavaScript/TypeScript sources on disk and
//     follows import, export-from and require specifiers
//
// [Graph.LoadOrder] gives the stable topological order used to
// serialize chunk members: dependencies before dependents, ties broken
// by entry order and then by reference order.
package modgraph
