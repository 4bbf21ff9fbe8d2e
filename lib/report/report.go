// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

// Package report renders build summaries: a styled table for
// terminals, Markdown for logs and pull requests, and HTML converted
// from the Markdown.
//
// A [Summary] comes either from an emitted manifest ([FromManifest]) or
// straight from a chunk assignment before anything is written
// ([FromAssignment]), so `build` and `plan` print the same layout.
package report

import (
	"fmt"
	"strings"

	"github.com/splitpack/splitpack/lib/chunk"
	"github.com/splitpack/splitpack/lib/manifest"
	"github.com/splitpack/splitpack/lib/modgraph"
)

// Row is one artifact.
type Row struct {
	// File is empty for a plan.
	File     string              `json:"file,omitempty"`
	Name     string              `json:"name"`
	Kind     manifest.Kind       `json:"kind"`
	Members  []modgraph.ModuleID `json:"members"`
	Bytes    int64               `json:"bytes"`
	LoadedBy []string            `json:"loaded_by"`
}

// Summary is everything a report shows.
type Summary struct {
	Rows []Row `json:"artifacts"`

	// Entries maps entry name to what it loads, in order: file names
	// for a build, chunk names for a plan.
	Entries map[string][]string `json:"entries"`

	// EntryOrder lists entry names in configuration order.
	EntryOrder []string `json:"entry_order"`

	Stats manifest.Stats `json:"stats"`
}

// FromManifest summarizes an emitted build. Entry order follows the
// private bundles, which the manifest lists in entry order.
func FromManifest(m *manifest.Manifest) Summary {
	summary := Summary{Entries: m.Entries, Stats: m.Stats}
	for _, artifact := range m.Artifacts {
		summary.Rows = append(summary.Rows, Row{
			File:     artifact.File,
			Name:     artifact.Name,
			Kind:     artifact.Kind,
			Members:  artifact.Members,
			Bytes:    artifact.Bytes,
			LoadedBy: artifact.LoadedBy,
		})
		if artifact.Kind == manifest.Private {
			summary.EntryOrder = append(summary.EntryOrder, artifact.Name)
		}
	}
	return summary
}

// FromAssignment summarizes a plan. Byte counts are module sizes as
// recorded in the graph.
func FromAssignment(assignment *chunk.Assignment) Summary {
	graph := assignment.Graph()
	names := graph.EntryNames()
	summary := Summary{
		Entries:    make(map[string][]string, len(names)),
		EntryOrder: names,
	}

	size := func(members []modgraph.ModuleID) int64 {
		var total int64
		for _, id := range members {
			if module, ok := graph.Module(id); ok {
				total += module.Size
			}
		}
		return total
	}

	chunks := assignment.Chunks()
	loadedBy := make([][]string, len(chunks))
	for position, indices := range assignment.ChunkLoads() {
		for _, index := range indices {
			loadedBy[index] = append(loadedBy[index], names[position])
			summary.Entries[names[position]] = append(summary.Entries[names[position]], chunks[index].Name)
		}
	}
	for index, shared := range chunks {
		summary.Rows = append(summary.Rows, Row{
			Name: shared.Name, Kind: manifest.Shared, Members: shared.Members,
			Bytes: size(shared.Members), LoadedBy: loadedBy[index],
		})
	}
	for _, bundle := range assignment.Bundles() {
		summary.Rows = append(summary.Rows, Row{
			Name: bundle.Entry, Kind: manifest.Private, Members: bundle.Members,
			Bytes: size(bundle.Members), LoadedBy: []string{bundle.Entry},
		})
		summary.Entries[bundle.Entry] = append(summary.Entries[bundle.Entry], bundle.Entry)
	}

	placed := 0
	for _, id := range graph.Modules() {
		if _, ok := assignment.Placement(id); ok {
			placed++
		}
	}
	summary.Stats = manifest.Stats{
		Modules:        graph.Len(),
		Reachable:      placed,
		Pruned:         graph.Len() - placed,
		SharedChunks:   len(chunks),
		PrivateBundles: len(names),
	}
	for _, id := range assignment.Duplicated() {
		placement, _ := assignment.Placement(id)
		module, _ := graph.Module(id)
		summary.Stats.DuplicatedModules++
		summary.Stats.DuplicatedBytes += module.Size * int64(placement.Entries.Len()-1)
	}
	return summary
}

// label is the row's display name: the file when there is one.
func (r Row) label() string {
	if r.File != "" {
		return r.File
	}
	return r.Name
}

// formatBytes formats a byte count as a human-readable string.
func formatBytes(bytes int64) string {
	switch {
	case bytes >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(1<<30))
	case bytes >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(1<<20))
	case bytes >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

func statsLine(stats manifest.Stats) string {
	line := fmt.Sprintf("%d modules, %d reachable, %d pruned; %d shared chunks, %d private bundles",
		stats.Modules, stats.Reachable, stats.Pruned, stats.SharedChunks, stats.PrivateBundles)
	if stats.DuplicatedModules > 0 {
		line += fmt.Sprintf("; %d modules duplicated across private bundles (%s extra)",
			stats.DuplicatedModules, formatBytes(stats.DuplicatedBytes))
	}
	return line
}

func joinLoads(loads []string) string {
	return strings.Join(loads, " → ")
}
