// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"slices"
	"testing"

	"github.com/spf13/pflag"
)

func TestBindFlags_BasicTypes(t *testing.T) {
	type params struct {
		Name     string   `flag:"name" desc:"the name"`
		Verbose  bool     `flag:"verbose,v" desc:"enable verbose output"`
		Count    int      `flag:"count" desc:"number of items"`
		Tags     []string `flag:"tags" desc:"tag list"`
		Untagged string
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}
	if err := flagSet.Parse([]string{"--name", "alice", "-v", "--count", "42", "--tags", "a,b"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if p.Name != "alice" || !p.Verbose || p.Count != 42 {
		t.Errorf("params = %+v", p)
	}
	if !slices.Equal(p.Tags, []string{"a", "b"}) {
		t.Errorf("Tags = %v", p.Tags)
	}
	if flagSet.Lookup("untagged") != nil {
		t.Error("untagged field was bound")
	}
}

func TestBindFlags_Defaults(t *testing.T) {
	var p struct {
		Wait        bool   `flag:"wait" default:"true"`
		Concurrency int    `flag:"concurrency" default:"4"`
		Format      string `flag:"format" default:"table"`
	}
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}
	if err := flagSet.Parse(nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !p.Wait || p.Concurrency != 4 || p.Format != "table" {
		t.Errorf("defaults = %+v", p)
	}
}

func TestBindFlags_EmbeddedJSONOutput(t *testing.T) {
	var p struct {
		JSONOutput
		Config string `flag:"config"`
	}
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}
	if err := flagSet.Parse([]string{"--json"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !p.OutputJSON {
		t.Error("--json did not set OutputJSON")
	}
}

func TestBindFlags_Errors(t *testing.T) {
	tests := []struct {
		name   string
		params any
	}{
		{"not a pointer", struct{}{}},
		{"unsupported type", &struct {
			Rate float32 `flag:"rate"`
		}{}},
		{"bad default", &struct {
			Count int `flag:"count" default:"many"`
		}{}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if err := BindFlags(test.params, pflag.NewFlagSet("test", pflag.ContinueOnError)); err == nil {
				t.Error("BindFlags succeeded")
			}
		})
	}
}
