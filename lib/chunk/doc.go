// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

// Package chunk is the chunk assignment engine. It partitions the
// modules of a [reach.Index] between the shared chunks of a
// [candidate.List] and one private bundle per entry.
//
// The rule is first qualifying candidate wins. A module qualifies for a
// candidate when at least MinChunks of the candidate's entries reach
// it; entries outside the subset do not count for or against it. The
// module goes to the earliest such candidate in list order, even when
// a later, narrower candidate would also take it. A module no candidate
// takes is copied into the private bundle of every entry that reaches
// it, so private bundles can overlap while shared chunks never do.
//
// Assignment is a single sequential pass and a pure function of the
// index and the list. Candidates that end up empty produce no chunk.
// [Assignment.Verify] checks the partition invariant and is cheap
// enough to run on every build.
package chunk
