// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

// Command splitpack extracts shared chunks from multi-entry bundles.
// Run "splitpack --help" for the command list.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/splitpack/splitpack/cmd/splitpack/cli"
	"github.com/splitpack/splitpack/cmd/splitpack/commands"
)

func main() {
	if err := run(); err != nil {
		// Commands that print their own output (validate) return an
		// ExitError with the code to use.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return commands.Root(cli.DefaultEnv(ctx)).Execute(os.Args[1:])
}
