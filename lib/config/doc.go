// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads splitpack build configuration from YAML.
//
// Configuration comes from a single file named by the SPLITPACK_CONFIG
// environment variable (via [Load]) or a --config flag (via
// [LoadFile]). There is no discovery and no search path.
//
// The file may contain development and production sections that
// override base output settings when [Config].Mode matches. A
// production build with no production section turns on zstd sidecars
// and content-hashed file names for any output setting still at its
// default.
//
// Path fields support ${VAR} and ${VAR:-default} expansion. Variables
// come from SPLITPACK_ROOT (the configured root), an optional dotenv
// file passed to [LoadFileWithEnv], and then the process environment.
// Relative paths are resolved against the configuration file's
// directory (root) and the root (output, graph).
//
// Key exports:
//
//   - [Config]: entries, candidates, output, resolve and loader rules
//   - [Default]: a Config with development defaults
//   - [Load], [LoadFile], [LoadFileWithEnv] and [Parse]
//   - [Config.Validate]: every configuration-time check at once
package config
