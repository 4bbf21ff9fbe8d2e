// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the splitpack command tree.
package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/muesli/termenv"

	"github.com/splitpack/splitpack/cmd/splitpack/cli"
	"github.com/splitpack/splitpack/lib/config"
	"github.com/splitpack/splitpack/lib/report"
	"github.com/splitpack/splitpack/lib/version"
)

// Root returns the complete command tree writing to env.
func Root(env *cli.Env) *cli.Command {
	return &cli.Command{
		Name: "splitpack",
		Description: `splitpack: shared-chunk extraction for multi-entry bundles.

Given entry points and an ordered list of chunk candidates, splitpack
moves each module into the first candidate whose entries reach it
often enough, and copies everything else into per-entry bundles.`,
		Output: env.Stderr,
		Subcommands: []*cli.Command{
			buildCommand(env),
			planCommand(env),
			validateCommand(env),
			presetCommand(env),
			inspectCommand(env),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Fprintf(env.Stdout, "splitpack %s\n", version.Full())
					return nil
				},
			},
		},
	}
}

// configParams are the flags every configuration-driven command takes.
type configParams struct {
	Config  string `flag:"config,c" desc:"configuration file (default: $SPLITPACK_CONFIG)"`
	EnvFile string `flag:"env-file" desc:"dotenv file supplying ${VAR} values for the configuration"`
	Graph   string `flag:"graph" desc:"JSONC module graph description; skips source scanning"`
	Verbose bool   `flag:"verbose,v" desc:"debug logging"`
}

// load reads and validates the configuration, applying --graph.
func (p *configParams) load() (*config.Config, error) {
	path := p.Config
	if path == "" {
		path = os.Getenv(config.EnvVar)
	}
	if path == "" {
		return nil, fmt.Errorf("no configuration: pass --config or set %s", config.EnvVar)
	}
	cfg, err := config.LoadFileWithEnv(path, p.EnvFile)
	if err != nil {
		return nil, err
	}
	if p.Graph != "" {
		graph, err := filepath.Abs(p.Graph)
		if err != nil {
			return nil, err
		}
		cfg.Paths.Graph = graph
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration %s:\n%w", path, err)
	}
	return cfg, nil
}

// terminalOptions styles the report for Stdout.
func terminalOptions(env *cli.Env, members bool) report.TerminalOptions {
	options := report.TerminalOptions{Profile: termenv.Ascii, Members: members}
	if terminal, width := env.StdoutTerminal(); terminal {
		options.Profile = termenv.ANSI256
		options.Width = width
	}
	return options
}
