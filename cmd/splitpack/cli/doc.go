// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for splitpack.
//
// The central type is [Command], a named subcommand with optional
// nested [Command.Subcommands], a [pflag.FlagSet] factory, and a Run
// function. The tree is assembled in cmd/splitpack/commands and
// dispatched with [Command.Execute], which handles flag parsing,
// subcommand routing and help output with examples.
//
// Flags are usually declared as tagged struct fields and bound with
// [FlagsFromParams]. An unknown subcommand or flag gets a "did you
// mean" suggestion when one is within edit distance 3.
//
// [Env] carries the context and output streams commands write to, so
// tests can run the whole tree against buffers.
package cli
