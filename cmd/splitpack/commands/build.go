// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/splitpack/splitpack/cmd/splitpack/cli"
	"github.com/splitpack/splitpack/lib/build"
	"github.com/splitpack/splitpack/lib/report"
)

type buildParams struct {
	configParams
	cli.JSONOutput
	Out        string `flag:"out,o" desc:"output directory (overrides paths.output)"`
	Wait       bool   `flag:"wait" desc:"wait for a concurrent build to release the output directory"`
	Members    bool   `flag:"members" desc:"list each artifact's modules"`
	ReportHTML string `flag:"report-html" desc:"also write the build report as HTML to this file"`
	ReportMD   string `flag:"report-md" desc:"also write the build report as Markdown to this file"`
}

func buildCommand(env *cli.Env) *cli.Command {
	var params buildParams
	return &cli.Command{
		Name:    "build",
		Summary: "Emit shared chunks, private bundles and the manifest",
		Description: `Resolve the module graph, assign every reachable module to a shared
chunk or to the private bundles of the entries that reach it, and write
the artifacts with manifest.json and manifest.cbor.

The output directory is locked for the duration of the build. Nothing is
written unless every module loads and every file name is distinct.`,
		Usage: "splitpack build [flags]",
		Examples: []cli.Example{
			{Description: "Build with a config file", Command: "splitpack build --config splitpack.yaml"},
			{Description: "Build from a graph description and keep an HTML report", Command: "splitpack build -c splitpack.yaml --graph graph.jsonc --report-html report.html"},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("build", &params) },
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("build takes no positional arguments, got %q", args[0])
			}
			cfg, err := params.load()
			if err != nil {
				return err
			}
			if params.Out != "" {
				out, err := filepath.Abs(params.Out)
				if err != nil {
					return err
				}
				cfg.Paths.Output = out
			}

			logger := env.Logger(params.Verbose).With("command", "build")
			result, err := build.Run(env.Context, build.Options{Config: cfg, Wait: params.Wait, Logger: logger})
			if err != nil {
				return err
			}

			summary := report.FromManifest(result.Manifest)
			if params.ReportHTML != "" {
				page, err := report.HTML(summary)
				if err != nil {
					return err
				}
				if err := os.WriteFile(params.ReportHTML, page, 0o644); err != nil {
					return fmt.Errorf("writing report: %w", err)
				}
			}
			if params.ReportMD != "" {
				if err := os.WriteFile(params.ReportMD, []byte(report.Markdown(summary)), 0o644); err != nil {
					return fmt.Errorf("writing report: %w", err)
				}
			}

			if done, err := params.EmitJSON(env.Stdout, result.Manifest); done {
				return err
			}
			return report.Terminal(env.Stdout, summary, terminalOptions(env, params.Members))
		},
	}
}
