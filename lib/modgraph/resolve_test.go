// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

package modgraph

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/splitpack/splitpack/lib/testutil"
)

func TestParseJSONC(t *testing.T) {
	graph, err := Parse([]byte(`{
		// surfaces, in priority order
		"entries": [
			{"name": "popup", "root": "popup.ts"},
		],
		"modules": [
			{"id": "popup.ts", "size": 10, "references": ["view.ts"]},
			/* shared view */
			{"id": "view.ts", "size": 4},
		],
	}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if graph.Len() != 2 {
		t.Errorf("Len = %d, want 2", graph.Len())
	}
	if got := graph.EntryNames(); !reflect.DeepEqual(got, []string{"popup"}) {
		t.Errorf("EntryNames = %v", got)
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	if _, err := Parse([]byte(`{"entries": [`)); err == nil {
		t.Fatal("Parse should fail on truncated input")
	}
}

func TestFileResolverSelectsEntries(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"graph.jsonc": `{
			"entries": [
				{"name": "background", "root": "bg.ts"},
				{"name": "popup", "root": "popup.ts"},
			],
			"modules": [
				{"id": "bg.ts"},
				{"id": "popup.ts"},
				{"id": "alt-popup.ts"},
			],
		}`,
	})
	resolver := FileResolver{Path: filepath.Join(root, "graph.jsonc")}

	graph, err := resolver.Resolve(context.Background(), []EntrySpec{
		{Name: "popup", Path: "alt-popup.ts"},
		{Name: "background"},
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := []Entry{{Name: "popup", Root: "alt-popup.ts"}, {Name: "background", Root: "bg.ts"}}
	if got := graph.Entries(); !reflect.DeepEqual(got, want) {
		t.Errorf("Entries = %v, want %v", got, want)
	}

	if _, err := resolver.Resolve(context.Background(), []EntrySpec{{Name: "inpage"}}); err == nil {
		t.Error("Resolve should fail for an undeclared entry without a root")
	}
}

func TestExtractSpecifiersSourceOrder(t *testing.T) {
	source := `import React from 'react'
import {
	a,
	b,
} from "./ab"
import './side-effect.css'
export * from './reexport'
const lazy = () => import('./lazy')
const legacy = require("../legacy")
`
	got := extractSpecifiers(source)
	want := []string{"react", "./ab", "./side-effect.css", "./reexport", "./lazy", "../legacy"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("extractSpecifiers = %q, want %q", got, want)
	}
}

func TestScanResolverBuildsGraph(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"src/background/index.ts":          "import { rpc } from '../lib/rpc'\nimport 'lodash'\n",
		"src/popup/index.tsx":              "import { rpc } from '../lib/rpc'\nimport './popup.css'\nimport View from './view'\n",
		"src/popup/view/index.tsx":         "export default function View() {}\n",
		"src/popup/popup.css":              ".popup {}\n",
		"src/lib/rpc.ts":                   "export const rpc = require('./transport')\n",
		"src/lib/transport.js":             "module.exports = {}\n",
		"node_modules/lodash/package.json": `{"main": "lodash.js"}`,
		"node_modules/lodash/lodash.js":    "module.exports = {}\n",
	})

	resolver := ScanResolver{Root: root}
	graph, err := resolver.Resolve(context.Background(), []EntrySpec{
		{Name: "background", Path: "src/background/index.ts"},
		{Name: "popup", Path: "src/popup/index.tsx"},
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	popup, ok := graph.Module("src/popup/index.tsx")
	if !ok {
		t.Fatal("popup entry module missing")
	}
	wantPopup := []ModuleID{"src/lib/rpc.ts", "src/popup/popup.css", "src/popup/view/index.tsx"}
	if !reflect.DeepEqual(popup.References, wantPopup) {
		t.Errorf("popup references = %v, want %v", popup.References, wantPopup)
	}

	background, _ := graph.Module("src/background/index.ts")
	wantBackground := []ModuleID{"src/lib/rpc.ts", "node_modules/lodash/lodash.js"}
	if !reflect.DeepEqual(background.References, wantBackground) {
		t.Errorf("background references = %v, want %v", background.References, wantBackground)
	}

	rpc, _ := graph.Module("src/lib/rpc.ts")
	if !reflect.DeepEqual(rpc.References, []ModuleID{"src/lib/transport.js"}) {
		t.Errorf("rpc references = %v", rpc.References)
	}
	if got := rpc.Imports["./transport"]; got != "src/lib/transport.js" {
		t.Errorf("rpc imports ./transport = %q", got)
	}
	if got := background.Imports["lodash"]; got != "node_modules/lodash/lodash.js" {
		t.Errorf("background imports lodash = %q", got)
	}
	if graph.Len() != 7 {
		t.Errorf("Len = %d, want 7", graph.Len())
	}
}

func TestScanResolverUnresolvedSpecifier(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"index.ts": "import './missing'\n",
	})

	_, err := ScanResolver{Root: root}.Resolve(context.Background(), []EntrySpec{{Name: "main", Path: "index.ts"}})
	var unresolved *UnresolvedError
	if !errors.As(err, &unresolved) {
		t.Fatalf("Resolve error = %v, want *UnresolvedError", err)
	}
	if unresolved.From != "index.ts" || unresolved.Specifier != "./missing" {
		t.Errorf("unresolved = %+v", unresolved)
	}
}

func TestScanResolverCycle(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"a.ts": "import './b'\n",
		"b.ts": "import './a'\n",
	})

	graph, err := ScanResolver{Root: root}.Resolve(context.Background(), []EntrySpec{{Name: "main", Path: "a.ts"}})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if graph.Len() != 2 {
		t.Errorf("Len = %d, want 2", graph.Len())
	}
}

func TestScanResolverHonoursCancellation(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{"a.ts": ""})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ScanResolver{Root: root}.Resolve(ctx, []EntrySpec{{Name: "main", Path: "a.ts"}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Resolve error = %v, want context.Canceled", err)
	}
}
