// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports what splitpack binary is running.
//
// [GitCommit], [GitDirty] and [Version] can be injected with
// -ldflags -X, for example:
//
//	go build -ldflags "-X github.com/splitpack/splitpack/lib/version.GitCommit=$(git rev-parse --short HEAD)" ./cmd/splitpack
//
// Without injection, [Commit] and [Dirty] read the VCS stamp embedded
// by the go command, and report "unknown" for builds without one (test
// binaries, for instance).
package version
