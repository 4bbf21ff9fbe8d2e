// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/spf13/pflag"

	"github.com/splitpack/splitpack/cmd/splitpack/cli"
	"github.com/splitpack/splitpack/lib/codec"
	"github.com/splitpack/splitpack/lib/compress"
	"github.com/splitpack/splitpack/lib/manifest"
)

type inspectParams struct {
	Color string `flag:"color" desc:"highlight output: auto, always or never" default:"auto"`
	Diag  bool   `flag:"diag" desc:"print a CBOR manifest in diagnostic notation instead of JSON"`
}

func inspectCommand(env *cli.Env) *cli.Command {
	var params inspectParams
	return &cli.Command{
		Name:    "inspect",
		Summary: "Print an emitted artifact or manifest",
		Description: `Print an emitted file. Compressed sidecars (.zst, .lz4) are
decompressed. A CBOR manifest is printed as JSON, or in CBOR diagnostic
notation with --diag. Output is syntax-highlighted when stdout is a
terminal.`,
		Usage: "splitpack inspect <file> [flags]",
		Examples: []cli.Example{
			{Description: "Read a precompressed chunk", Command: "splitpack inspect dist/commons.all.js.zst"},
			{Description: "Check the binary manifest's exact encoding", Command: "splitpack inspect dist/manifest.cbor --diag"},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("inspect", &params) },
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: splitpack inspect <file>")
			}
			highlight, err := params.highlight(env)
			if err != nil {
				return err
			}

			text, language, err := readArtifact(args[0], params.Diag)
			if err != nil {
				return err
			}
			if highlight && language != "" {
				var buffer bytes.Buffer
				if err := quick.Highlight(&buffer, text, language, "terminal256", "monokai"); err == nil {
					text = buffer.String()
				}
			}
			if !strings.HasSuffix(text, "\n") {
				text += "\n"
			}
			_, err = fmt.Fprint(env.Stdout, text)
			return err
		},
	}
}

func (p *inspectParams) highlight(env *cli.Env) (bool, error) {
	switch p.Color {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto":
		terminal, _ := env.StdoutTerminal()
		return terminal, nil
	default:
		return false, fmt.Errorf("--color must be auto, always or never, got %q", p.Color)
	}
}

// readArtifact returns path's text and the chroma lexer for it.
func readArtifact(path string, diag bool) (string, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	name := path
	if algorithm, ok := compress.ForExtension(filepath.Ext(path)); ok {
		data, err = compress.Decompress(data, algorithm)
		if err != nil {
			return "", "", fmt.Errorf("%s: %w", path, err)
		}
		name = strings.TrimSuffix(path, filepath.Ext(path))
	}

	switch filepath.Ext(name) {
	case ".cbor":
		if diag {
			notation, err := codec.Diagnose(data)
			if err != nil {
				return "", "", fmt.Errorf("%s: %w", path, err)
			}
			return notation, "", nil
		}
		decoded, err := manifest.Decode(data)
		if err != nil {
			return "", "", fmt.Errorf("%s: %w", path, err)
		}
		encoded, err := decoded.EncodeJSON()
		if err != nil {
			return "", "", err
		}
		return string(encoded), "json", nil
	case ".json":
		return string(data), "json", nil
	case ".js":
		return string(data), "javascript", nil
	case ".css":
		return string(data), "css", nil
	default:
		return string(data), "", nil
	}
}
