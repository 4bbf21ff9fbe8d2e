// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// Env is what commands read and write: the run's context and the
// output streams.
type Env struct {
	Context context.Context
	Stdout  io.Writer
	Stderr  io.Writer
}

// DefaultEnv writes to the process's stdout and stderr.
func DefaultEnv(ctx context.Context) *Env {
	return &Env{Context: ctx, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Logger returns a structured logger on Stderr: slog.TextHandler when
// Stderr is a terminal, slog.JSONHandler otherwise (CI, pipes, tests).
// verbose lowers the level to Debug.
func (e *Env) Logger(verbose bool) *slog.Logger {
	options := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		options.Level = slog.LevelDebug
	}
	var handler slog.Handler
	if isTerminal(e.Stderr) {
		handler = slog.NewTextHandler(e.Stderr, options)
	} else {
		handler = slog.NewJSONHandler(e.Stderr, options)
	}
	return slog.New(handler)
}

// StdoutTerminal reports whether Stdout is a terminal, and its width
// when it is.
func (e *Env) StdoutTerminal() (bool, int) {
	file, ok := e.Stdout.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return false, 0
	}
	width, _, err := term.GetSize(int(file.Fd()))
	if err != nil {
		return true, 0
	}
	return true, width
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
