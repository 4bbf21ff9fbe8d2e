// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set via -ldflags at build time. When unset, Commit and Dirty fall
// back to the VCS stamp the go command embeds.
var (
	// GitCommit is the short git SHA of the build.
	GitCommit = ""

	// GitDirty is "true" when the tree had uncommitted changes.
	GitDirty = ""

	// Version is the semantic version, set for releases.
	Version = "0.1.0-dev"
)

// Commit returns the short commit the binary was built from, or
// "unknown".
func Commit() string {
	if GitCommit != "" {
		return GitCommit
	}
	if revision := buildSetting("vcs.revision"); revision != "" {
		return revision[:min(len(revision), 12)]
	}
	return "unknown"
}

// Dirty reports whether the build tree had uncommitted changes.
func Dirty() bool {
	if GitDirty != "" {
		return GitDirty == "true"
	}
	return buildSetting("vcs.modified") == "true"
}

// Info returns "version (commit)" for --version output.
func Info() string {
	dirty := ""
	if Dirty() {
		dirty = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s)", Version, Commit(), dirty)
}

// Full is Info plus the Go toolchain and platform.
func Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

func buildSetting(key string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range info.Settings {
		if setting.Key == key {
			return setting.Value
		}
	}
	return ""
}
