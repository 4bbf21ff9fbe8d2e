// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

package modgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"
)

// Resolver turns entry specifications into a closed module graph. It is
// the boundary to whatever toolchain understands source files;
// everything after it works on the graph alone.
type Resolver interface {
	Resolve(ctx context.Context, entries []EntrySpec) (*Graph, error)
}

// EntrySpec names an entry and the file its root module comes from.
// Resolvers decide how Path maps to a module id.
type EntrySpec struct {
	Name string `yaml:"name" json:"name"`
	Path string `yaml:"root" json:"root"`
}

// Description is the on-disk graph format read by [FileResolver]:
//
//	{
//	  // entry order is significant
//	  "entries": [{"name": "popup", "root": "src/popup/index.tsx"}],
//	  "modules": [
//	    {"id": "src/popup/index.tsx", "size": 812, "references": ["src/lib/rpc.ts"]},
//	    {"id": "src/lib/rpc.ts", "size": 240},
//	  ],
//	}
type Description struct {
	Entries []Entry  `json:"entries"`
	Modules []Module `json:"modules"`
}

// Parse strips JSONC comments and trailing commas from data and builds
// a graph from the resulting description.
func Parse(data []byte) (*Graph, error) {
	description, err := parseDescription(data)
	if err != nil {
		return nil, err
	}
	return New(description.Modules, description.Entries)
}

func parseDescription(data []byte) (*Description, error) {
	var description Description
	if err := json.Unmarshal(jsonc.ToJSON(data), &description); err != nil {
		return nil, fmt.Errorf("parsing module graph: %w", err)
	}
	return &description, nil
}

// ReadFile reads and parses a JSONC graph description.
func ReadFile(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	graph, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return graph, nil
}

// FileResolver serves graphs from a JSONC description file.
//
// When Resolve is called with no entries, the file's own entry list is
// used. Otherwise the requested entries select and order the file's
// entries by name; a non-empty EntrySpec.Path overrides the root id.
type FileResolver struct {
	Path string
}

// Resolve implements [Resolver].
func (r FileResolver) Resolve(ctx context.Context, entries []EntrySpec) (*Graph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(r.Path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", r.Path, err)
	}
	description, err := parseDescription(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.Path, err)
	}

	if len(entries) == 0 {
		graph, err := New(description.Modules, description.Entries)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", r.Path, err)
		}
		return graph, nil
	}

	declared := make(map[string]ModuleID, len(description.Entries))
	for _, entry := range description.Entries {
		declared[entry.Name] = entry.Root
	}

	selected := make([]Entry, 0, len(entries))
	for _, spec := range entries {
		root := ModuleID(spec.Path)
		if root == "" {
			fileRoot, ok := declared[spec.Name]
			if !ok {
				return nil, fmt.Errorf("%s: entry %q is not declared and has no root", r.Path, spec.Name)
			}
			root = fileRoot
		}
		selected = append(selected, Entry{Name: spec.Name, Root: root})
	}

	graph, err := New(description.Modules, selected)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.Path, err)
	}
	return graph, nil
}
