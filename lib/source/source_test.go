// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/splitpack/splitpack/lib/modgraph"
	"github.com/splitpack/splitpack/lib/testutil"
)

func TestDirLoadsAndCaches(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"src/util.ts": "export const add = (a, b) => a + b",
	})
	loader, err := NewDir(root, 2)
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}
	module := &modgraph.Module{ID: "src/util.ts"}

	first, err := loader.Load(context.Background(), module)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(first) != "export const add = (a, b) => a + b" {
		t.Errorf("Load = %q", first)
	}

	// The cached copy survives the file changing on disk.
	if err := os.WriteFile(filepath.Join(root, "src/util.ts"), []byte("changed"), 0o644); err != nil {
		t.Fatal(err)
	}
	second, err := loader.Load(context.Background(), module)
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if string(second) != string(first) {
		t.Errorf("second Load = %q, want the cached payload", second)
	}
	if hits, misses := loader.Stats(); hits != 1 || misses != 1 {
		t.Errorf("Stats = %d hits, %d misses; want 1, 1", hits, misses)
	}
}

func TestDirUsesModulePath(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{"vendor/lodash.js": "module.exports = {}"})
	loader, err := NewDir(root, 0)
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}
	data, err := loader.Load(context.Background(), &modgraph.Module{ID: "lodash", Path: "vendor/lodash.js"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(data) != "module.exports = {}" {
		t.Errorf("Load = %q", data)
	}
}

func TestDirMissingFileNamesModule(t *testing.T) {
	loader, err := NewDir(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}
	_, err = loader.Load(context.Background(), &modgraph.Module{ID: "gone.ts"})
	if err == nil || !strings.Contains(err.Error(), "gone.ts") {
		t.Errorf("error = %v, want one naming gone.ts", err)
	}
}

func TestDirHonoursCancellation(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{"a.js": "a"})
	loader, err := NewDir(root, 0)
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := loader.Load(ctx, &modgraph.Module{ID: "a.js"}); err == nil {
		t.Error("Load succeeded with a cancelled context")
	}
}

func TestDirSharesCacheWithScan(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"src/index.ts": "import { add } from './util';\n",
		"src/util.ts":  "export const add = (a: number, b: number) => a + b;\n",
	})
	loader, err := NewDir(root, 0)
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}
	graph, err := modgraph.ScanResolver{Root: root, Files: loader}.Resolve(context.Background(),
		[]modgraph.EntrySpec{{Name: "main", Path: "src/index.ts"}})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if hits, misses := loader.Stats(); hits != 0 || misses != 2 {
		t.Fatalf("after scan: %d hits, %d misses; want 0, 2", hits, misses)
	}

	for _, id := range graph.LoadOrder() {
		module, _ := graph.Module(id)
		if _, err := loader.Load(context.Background(), module); err != nil {
			t.Fatalf("Load(%s): %v", id, err)
		}
	}
	if hits, misses := loader.Stats(); hits != 2 || misses != 2 {
		t.Errorf("after load: %d hits, %d misses; want 2, 2", hits, misses)
	}
}

func TestDirReadFileCleansPaths(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{"src/a.js": "a"})
	loader, err := NewDir(root, 0)
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}
	for _, name := range []string{"src/a.js", "src/../src/a.js", "./src/a.js"} {
		if data, err := loader.ReadFile(context.Background(), name); err != nil || string(data) != "a" {
			t.Errorf("ReadFile(%q) = %q, %v", name, data, err)
		}
	}
	if hits, misses := loader.Stats(); hits != 2 || misses != 1 {
		t.Errorf("Stats = %d hits, %d misses; want 2, 1", hits, misses)
	}
	if _, err := loader.ReadFile(context.Background(), "src/missing.js"); err == nil || !strings.Contains(err.Error(), "src/missing.js") {
		t.Errorf("ReadFile(missing) = %v", err)
	}
}

func TestMemory(t *testing.T) {
	loader := Memory{"a": []byte("A")}
	if data, err := loader.Load(context.Background(), &modgraph.Module{ID: "a"}); err != nil || string(data) != "A" {
		t.Errorf("Load(a) = %q, %v", data, err)
	}
	if _, err := loader.Load(context.Background(), &modgraph.Module{ID: "b"}); err == nil {
		t.Error("Load(b) succeeded without a payload")
	}
}
