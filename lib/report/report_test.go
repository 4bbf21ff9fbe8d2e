// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"bytes"
	"context"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/splitpack/splitpack/lib/candidate"
	"github.com/splitpack/splitpack/lib/chunk"
	"github.com/splitpack/splitpack/lib/manifest"
	"github.com/splitpack/splitpack/lib/modgraph"
	"github.com/splitpack/splitpack/lib/reach"
)

// planFixture has two entries sharing util and helper, plus one pruned
// module. A single "all" candidate takes both shared modules.
func planFixture(t *testing.T) *chunk.Assignment {
	t.Helper()
	modules := []modgraph.Module{
		{ID: "a", Size: 100, References: []modgraph.ModuleID{"util", "helper"}},
		{ID: "b", Size: 200, References: []modgraph.ModuleID{"util", "helper"}},
		{ID: "util", Size: 2048},
		{ID: "helper", Size: 50},
		{ID: "orphan", Size: 1},
	}
	entries := []modgraph.Entry{{Name: "a", Root: "a"}, {Name: "b", Root: "b"}}
	graph, err := modgraph.New(modules, entries)
	if err != nil {
		t.Fatalf("modgraph.New: %v", err)
	}
	index, err := reach.Build(context.Background(), graph)
	if err != nil {
		t.Fatalf("reach.Build: %v", err)
	}
	list, err := candidate.NewList(graph.EntryNames(), []candidate.Candidate{
		{Name: "all", Entries: []string{"a", "b"}, MinChunks: 2},
	})
	if err != nil {
		t.Fatalf("candidate.NewList: %v", err)
	}
	assignment, err := chunk.Assign(index, list)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	return assignment
}

func TestFromAssignment(t *testing.T) {
	summary := FromAssignment(planFixture(t))

	if len(summary.Rows) != 3 {
		t.Fatalf("rows = %+v, want one shared chunk and two bundles", summary.Rows)
	}
	shared := summary.Rows[0]
	if shared.Name != "all" || shared.Kind != manifest.Shared {
		t.Errorf("first row = %+v, want the shared chunk", shared)
	}
	if shared.Bytes != 2048+50 {
		t.Errorf("shared bytes = %d, want %d", shared.Bytes, 2048+50)
	}
	if !slices.Equal(shared.LoadedBy, []string{"a", "b"}) {
		t.Errorf("shared loaded by = %v", shared.LoadedBy)
	}
	if want := []string{"all", "a"}; !slices.Equal(summary.Entries["a"], want) {
		t.Errorf("entries[a] = %v, want %v", summary.Entries["a"], want)
	}
	stats := summary.Stats
	if stats.Modules != 5 || stats.Reachable != 4 || stats.Pruned != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.SharedChunks != 1 || stats.PrivateBundles != 2 || stats.DuplicatedModules != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestFromAssignmentCountsDuplicates(t *testing.T) {
	assignment := planFixture(t)
	graph := assignment.Graph()
	index, err := reach.Build(context.Background(), graph)
	if err != nil {
		t.Fatal(err)
	}
	empty, err := candidate.NewList(graph.EntryNames(), nil)
	if err != nil {
		t.Fatal(err)
	}
	private, err := chunk.Assign(index, empty)
	if err != nil {
		t.Fatal(err)
	}

	stats := FromAssignment(private).Stats
	if stats.DuplicatedModules != 2 {
		t.Errorf("duplicated modules = %d, want 2", stats.DuplicatedModules)
	}
	if stats.DuplicatedBytes != 2048+50 {
		t.Errorf("duplicated bytes = %d, want %d", stats.DuplicatedBytes, 2048+50)
	}
}

func manifestFixture() *manifest.Manifest {
	return &manifest.Manifest{
		Version: manifest.Version,
		Artifacts: []manifest.Artifact{
			{File: "commons.all.js", Name: "all", Kind: manifest.Shared, Members: []modgraph.ModuleID{"util"}, LoadedBy: []string{"a", "b"}, Bytes: 3 << 20},
			{File: "a.js", Name: "a", Kind: manifest.Private, Members: []modgraph.ModuleID{"a"}, LoadedBy: []string{"a"}, Bytes: 1536},
			{File: "b.js", Name: "b", Kind: manifest.Private, Members: []modgraph.ModuleID{"b", "pipe|name"}, LoadedBy: []string{"b"}, Bytes: 12},
		},
		Entries: map[string][]string{
			"a": {"commons.all.js", "a.js"},
			"b": {"commons.all.js", "b.js"},
		},
		Stats: manifest.Stats{Modules: 4, Reachable: 4, SharedChunks: 1, PrivateBundles: 2, DuplicatedModules: 1, DuplicatedBytes: 12},
	}
}

func TestFromManifest(t *testing.T) {
	summary := FromManifest(manifestFixture())
	if !slices.Equal(summary.EntryOrder, []string{"a", "b"}) {
		t.Errorf("entry order = %v", summary.EntryOrder)
	}
	if summary.Rows[0].label() != "commons.all.js" {
		t.Errorf("label = %q, want the file name", summary.Rows[0].label())
	}
}

func TestTerminal(t *testing.T) {
	var buffer bytes.Buffer
	err := Terminal(&buffer, FromManifest(manifestFixture()), TerminalOptions{Width: 80, Profile: termenv.Ascii, Members: true})
	if err != nil {
		t.Fatalf("Terminal: %v", err)
	}
	output := buffer.String()
	if strings.Contains(output, "\x1b[") {
		t.Error("ASCII profile produced escape sequences")
	}
	for _, want := range []string{"ARTIFACT", "commons.all.js", "3.0 MB", "1.5 KB", "12 B", "a: commons.all.js → a.js", "duplicated"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
	for _, line := range strings.Split(output, "\n") {
		if width := ansi.StringWidth(line); width > 80 {
			t.Errorf("line wider than 80 columns (%d): %q", width, line)
		}
	}
}

func TestTerminalTruncatesLongNames(t *testing.T) {
	m := manifestFixture()
	m.Artifacts[0].File = strings.Repeat("x", 200) + ".js"
	var buffer bytes.Buffer
	if err := Terminal(&buffer, FromManifest(m), TerminalOptions{Width: 60, Profile: termenv.Ascii}); err != nil {
		t.Fatalf("Terminal: %v", err)
	}
	if !strings.Contains(buffer.String(), "…") {
		t.Errorf("long name not truncated:\n%s", buffer.String())
	}
}

func TestMarkdownAndHTML(t *testing.T) {
	summary := FromManifest(manifestFixture())
	markdown := Markdown(summary)
	for _, want := range []string{"| `commons.all.js` | shared | 1 | 3.0 MB | a, b |", "- **b**: `commons.all.js` → `b.js`"} {
		if !strings.Contains(markdown, want) {
			t.Errorf("markdown missing %q:\n%s", want, markdown)
		}
	}

	page, err := HTML(summary)
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	html := string(page)
	for _, want := range []string{"<table>", "<code>commons.all.js</code>", "<h2>Load order</h2>"} {
		if !strings.Contains(html, want) {
			t.Errorf("HTML missing %q", want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{5 << 20, "5.0 MB"},
		{3 << 30, "3.0 GB"},
	}
	for _, test := range tests {
		if got := formatBytes(test.bytes); got != test.want {
			t.Errorf("formatBytes(%d) = %q, want %q", test.bytes, got, test.want)
		}
	}
}
