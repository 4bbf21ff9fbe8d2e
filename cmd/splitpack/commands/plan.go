// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/splitpack/splitpack/cmd/splitpack/cli"
	"github.com/splitpack/splitpack/lib/build"
	"github.com/splitpack/splitpack/lib/report"
)

type planParams struct {
	configParams
	cli.JSONOutput
	Members bool `flag:"members" desc:"list each chunk's modules"`
}

func planCommand(env *cli.Env) *cli.Command {
	var params planParams
	return &cli.Command{
		Name:    "plan",
		Summary: "Print the chunk assignment without writing anything",
		Description: `Resolve the module graph and assign chunks exactly as build would, then
print the partition: each shared chunk with the entries that load it,
each private bundle, and per-entry load order. Sizes are source sizes.`,
		Usage: "splitpack plan [flags]",
		Examples: []cli.Example{
			{Description: "Show which modules each chunk takes", Command: "splitpack plan -c splitpack.yaml --members"},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("plan", &params) },
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("plan takes no positional arguments, got %q", args[0])
			}
			cfg, err := params.load()
			if err != nil {
				return err
			}
			logger := env.Logger(params.Verbose).With("command", "plan")
			result, err := build.Plan(env.Context, build.Options{Config: cfg, Logger: logger})
			if err != nil {
				return err
			}

			summary := report.FromAssignment(result.Assignment)
			if done, err := params.EmitJSON(env.Stdout, summary); done {
				return err
			}
			return report.Terminal(env.Stdout, summary, terminalOptions(env, params.Members))
		},
	}
}
