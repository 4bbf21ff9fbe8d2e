// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/splitpack/splitpack/cmd/splitpack/cli"
	"github.com/splitpack/splitpack/lib/config"
)

type validateParams struct {
	EnvFile string `flag:"env-file" desc:"dotenv file supplying ${VAR} values"`
}

func validateCommand(env *cli.Env) *cli.Command {
	var params validateParams
	return &cli.Command{
		Name:    "validate",
		Summary: "Check a configuration without resolving any sources",
		Description: `Load a configuration and run every configuration-time check: entries,
chunk candidates, output templates, compression and loader rules. All
problems are listed. Exits 1 when there are any.`,
		Usage: "splitpack validate <config> [flags]",
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("validate", &params) },
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: splitpack validate <config>")
			}
			cfg, err := config.LoadFileWithEnv(args[0], params.EnvFile)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				fmt.Fprintf(env.Stdout, "%s: invalid\n", args[0])
				for _, line := range strings.Split(err.Error(), "\n") {
					fmt.Fprintf(env.Stdout, "  %s\n", line)
				}
				return &cli.ExitError{Code: 1}
			}
			fmt.Fprintf(env.Stdout, "%s: ok (%d entries, %d candidates, mode %s)\n",
				args[0], len(cfg.Entries), len(cfg.CandidateDefinitions()), cfg.Mode)
			return nil
		},
	}
}
