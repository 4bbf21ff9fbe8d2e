// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

// Package transpile compiles JavaScript and TypeScript module sources
// into CommonJS bodies for the artifact runtime.
//
// Artifacts register every module as a function of (module, exports,
// require), so import and export declarations must be rewritten into
// require calls and exports assignments before a module can be
// serialized. TypeScript and JSX syntax is stripped in the same pass.
// Specifiers are kept exactly as written, which keeps them valid keys
// into the import map the module graph recorded.
//
// Compilation is per module and never bundles: references stay
// require calls resolved at run time by the artifact registry.
package transpile

import (
	"fmt"
	"path"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// DefaultTarget is the language level emitted when none is configured.
const DefaultTarget = "es2017"

var targets = map[string]api.Target{
	"es2015": api.ES2015,
	"es2016": api.ES2016,
	"es2017": api.ES2017,
	"es2018": api.ES2018,
	"es2019": api.ES2019,
	"es2020": api.ES2020,
	"es2021": api.ES2021,
	"es2022": api.ES2022,
	"esnext": api.ESNext,
}

// ValidTarget reports whether name is a supported target.
func ValidTarget(name string) bool {
	_, ok := targets[name]
	return ok
}

// Options configures a Compiler.
type Options struct {
	// Target is the output language level, "es2015" through "es2022"
	// or "esnext". Default DefaultTarget.
	Target string

	// Minify shortens identifiers and strips whitespace.
	Minify bool
}

// Compiler compiles one module at a time. It is safe for concurrent
// use.
type Compiler struct {
	target api.Target
	minify bool
}

// New returns a Compiler for options.
func New(options Options) (*Compiler, error) {
	if options.Target == "" {
		options.Target = DefaultTarget
	}
	target, ok := targets[options.Target]
	if !ok {
		return nil, fmt.Errorf("unknown compile target %q", options.Target)
	}
	return &Compiler{target: target, minify: options.Minify}, nil
}

// Error is a compile failure. Messages carry file:line:column positions.
type Error struct {
	File     string
	Messages []string
}

func (e *Error) Error() string {
	return "compiling " + e.File + ": " + strings.Join(e.Messages, "; ")
}

// Compile returns source, named file, as a CommonJS body. The syntax is
// chosen by file extension: .ts, .tsx, .jsx, and JavaScript otherwise.
func (c *Compiler) Compile(file string, source []byte) ([]byte, error) {
	result := api.Transform(string(source), api.TransformOptions{
		Loader:            loaderFor(file),
		Format:            api.FormatCommonJS,
		Target:            c.target,
		Sourcefile:        file,
		MinifyWhitespace:  c.minify,
		MinifyIdentifiers: c.minify,
		MinifySyntax:      c.minify,
		LogLevel:          api.LogLevelSilent,
	})
	if len(result.Errors) > 0 {
		failure := &Error{File: file}
		for _, message := range result.Errors {
			if message.Location == nil {
				failure.Messages = append(failure.Messages, message.Text)
				continue
			}
			failure.Messages = append(failure.Messages, fmt.Sprintf("%d:%d: %s",
				message.Location.Line, message.Location.Column, message.Text))
		}
		return nil, failure
	}
	return result.Code, nil
}

func loaderFor(file string) api.Loader {
	switch path.Ext(file) {
	case ".ts", ".mts", ".cts":
		return api.LoaderTS
	case ".tsx":
		return api.LoaderTSX
	case ".jsx":
		return api.LoaderJSX
	default:
		return api.LoaderJS
	}
}
