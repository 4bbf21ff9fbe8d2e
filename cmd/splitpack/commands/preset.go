// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/splitpack/splitpack/cmd/splitpack/cli"
	"github.com/splitpack/splitpack/lib/candidate"
)

type presetParams struct {
	Filename string `flag:"filename" desc:"chunk file name template for every candidate" default:"commons.[name].js"`
}

func presetCommand(env *cli.Env) *cli.Command {
	var params presetParams
	return &cli.Command{
		Name:    "preset",
		Summary: "Print the generated candidate table for a list of entries",
		Description: `Print, as a YAML candidates section, the table "preset: extension"
generates: "all", then "exclude-<entry>" for each entry (with more than
three entries), then every smaller subset down to pairs.

With no entries, uses background, contentscript, popup and inpage.`,
		Usage: "splitpack preset [entry...] [flags]",
		Examples: []cli.Example{
			{Description: "The browser extension table", Command: "splitpack preset"},
			{Description: "Three entries, hashed chunk names", Command: "splitpack preset admin shop blog --filename 'shared.[name].[hash:8].js'"},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("preset", &params) },
		Run: func(args []string) error {
			entries := args
			if len(entries) == 0 {
				entries = candidate.ExtensionEntries
			}
			candidates := candidate.Combinations(entries, params.Filename)
			if _, err := candidate.NewList(entries, candidates); err != nil {
				return err
			}

			encoder := yaml.NewEncoder(env.Stdout)
			encoder.SetIndent(2)
			if err := encoder.Encode(struct {
				Candidates []candidate.Candidate `yaml:"candidates"`
			}{candidates}); err != nil {
				return fmt.Errorf("encoding candidates: %w", err)
			}
			return encoder.Close()
		},
	}
}
