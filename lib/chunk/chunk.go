// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

package chunk

import (
	"fmt"

	"github.com/splitpack/splitpack/lib/candidate"
	"github.com/splitpack/splitpack/lib/firstmatch"
	"github.com/splitpack/splitpack/lib/modgraph"
	"github.com/splitpack/splitpack/lib/reach"
)

// Chunk is a shared chunk: the modules assigned to one candidate.
type Chunk struct {
	// Name is the candidate name.
	Name string

	// Priority is the candidate's position in the list.
	Priority int

	// Filename is the candidate's filename template, possibly empty.
	Filename string

	// Members are in load order.
	Members []modgraph.ModuleID
}

// Bundle is an entry-private bundle: the modules an entry reaches that
// no candidate claimed.
type Bundle struct {
	Entry string

	// Position is the entry's position in the graph's entry list.
	Position int

	// Members are in load order.
	Members []modgraph.ModuleID
}

// Placement records where a reachable module ended up.
type Placement struct {
	// Chunk is the index into Assignment.Chunks, or -1 when the module
	// went to private bundles.
	Chunk int

	// Entries is the module's reachability set. For a privately placed
	// module this is also the set of bundles holding a copy.
	Entries modgraph.EntrySet
}

// Shared reports whether the module was placed in a shared chunk.
func (p Placement) Shared() bool {
	return p.Chunk >= 0
}

// Assignment is the engine's result. Immutable.
type Assignment struct {
	graph      *modgraph.Graph
	chunks     []Chunk
	bundles    []Bundle
	placements map[modgraph.ModuleID]Placement

	// loads[entry] holds the chunk indices the entry must load, in
	// priority order.
	loads [][]int
}

// Assign partitions every module index reaches between list's shared
// chunks and the entries' private bundles. Each module goes to the
// first candidate, in list order, whose subset intersects the module's
// reachability set in at least MinChunks entries; modules that qualify
// for none are copied into the bundle of every entry that reaches them.
//
// The only error is a candidate naming an entry the graph does not
// have.
func Assign(index *reach.Index, list *candidate.List) (*Assignment, error) {
	graph := index.Graph()

	rules := make([]firstmatch.Rule[modgraph.EntrySet, int], list.Len())
	for position := range list.Len() {
		definition := list.At(position)
		subset, err := graph.EntrySetFor(definition.Entries)
		if err != nil {
			return nil, fmt.Errorf("candidate %q: %w", definition.Name, err)
		}
		minimum := definition.MinChunks
		rules[position] = firstmatch.Rule[modgraph.EntrySet, int]{
			Name: definition.Name,
			Match: func(reached modgraph.EntrySet) bool {
				return reached.Intersect(subset).Len() >= minimum
			},
			Value: position,
		}
	}
	table := firstmatch.New(rules...)

	// Qualification depends only on a module's own reachability set, so
	// giving each module its first qualifying candidate is the same
	// partition as sweeping candidates in priority order over the
	// still-unassigned modules. Walking modules in load order leaves
	// every member list already ordered.
	members := make([][]modgraph.ModuleID, list.Len())
	private := make([][]modgraph.ModuleID, len(graph.Entries()))
	owners := make(map[modgraph.ModuleID]int, graph.Len())
	sets := make(map[modgraph.ModuleID]modgraph.EntrySet, graph.Len())

	for _, id := range graph.LoadOrder() {
		reached, ok := index.Set(id)
		if !ok {
			continue
		}
		sets[id] = reached
		owner := table.Lookup(reached)
		owners[id] = owner
		if owner >= 0 {
			members[owner] = append(members[owner], id)
			continue
		}
		for _, position := range reached.Positions() {
			private[position] = append(private[position], id)
		}
	}

	assignment := &Assignment{
		graph:      graph,
		placements: make(map[modgraph.ModuleID]Placement, len(owners)),
		loads:      make([][]int, len(graph.Entries())),
	}

	chunkIndex := make([]int, list.Len())
	for position := range list.Len() {
		chunkIndex[position] = -1
		if len(members[position]) == 0 {
			continue
		}
		definition := list.At(position)
		chunkIndex[position] = len(assignment.chunks)
		assignment.chunks = append(assignment.chunks, Chunk{
			Name:     definition.Name,
			Priority: position,
			Filename: definition.Filename,
			Members:  members[position],
		})
	}

	for position, entry := range graph.Entries() {
		assignment.bundles = append(assignment.bundles, Bundle{
			Entry:    entry.Name,
			Position: position,
			Members:  private[position],
		})
	}

	// An entry loads every shared chunk holding a module it reaches.
	// Chunk order is priority order, so the per-entry lists come out in
	// priority order too.
	loaded := make([]modgraph.EntrySet, len(assignment.chunks))
	for id, owner := range owners {
		placement := Placement{Chunk: -1, Entries: sets[id]}
		if owner >= 0 {
			placement.Chunk = chunkIndex[owner]
			loaded[placement.Chunk] = loaded[placement.Chunk].Union(sets[id])
		}
		assignment.placements[id] = placement
	}
	for chunk, entries := range loaded {
		for _, position := range entries.Positions() {
			assignment.loads[position] = append(assignment.loads[position], chunk)
		}
	}

	return assignment, nil
}

// Graph returns the graph the assignment covers.
func (a *Assignment) Graph() *modgraph.Graph {
	return a.graph
}

// Chunks returns the non-empty shared chunks in candidate priority
// order.
func (a *Assignment) Chunks() []Chunk {
	chunks := make([]Chunk, len(a.chunks))
	for index, chunk := range a.chunks {
		chunk.Members = append([]modgraph.ModuleID(nil), chunk.Members...)
		chunks[index] = chunk
	}
	return chunks
}

// Bundles returns one private bundle per entry, in entry order. A
// bundle may be empty when every module its entry reaches is shared.
func (a *Assignment) Bundles() []Bundle {
	bundles := make([]Bundle, len(a.bundles))
	for index, bundle := range a.bundles {
		bundle.Members = append([]modgraph.ModuleID(nil), bundle.Members...)
		bundles[index] = bundle
	}
	return bundles
}

// Placement returns where id was placed. The second result is false for
// pruned or unknown modules.
func (a *Assignment) Placement(id modgraph.ModuleID) (Placement, bool) {
	placement, ok := a.placements[id]
	return placement, ok
}

// ChunkOf returns the shared chunk holding id, if any.
func (a *Assignment) ChunkOf(id modgraph.ModuleID) (Chunk, bool) {
	placement, ok := a.placements[id]
	if !ok || !placement.Shared() {
		return Chunk{}, false
	}
	return a.Chunks()[placement.Chunk], true
}

// LoadsFor returns the names of the shared chunks entry must load
// before its private bundle, in load order.
func (a *Assignment) LoadsFor(entry string) ([]string, error) {
	position, ok := a.graph.EntryPosition(entry)
	if !ok {
		return nil, fmt.Errorf("unknown entry %q", entry)
	}
	names := make([]string, len(a.loads[position]))
	for index, chunk := range a.loads[position] {
		names[index] = a.chunks[chunk].Name
	}
	return names, nil
}

// ChunkLoads returns, per entry position, indices into Chunks of the
// shared chunks the entry must load, in load order.
func (a *Assignment) ChunkLoads() [][]int {
	loads := make([][]int, len(a.loads))
	for position, chunks := range a.loads {
		loads[position] = append([]int(nil), chunks...)
	}
	return loads
}

// Duplicated returns the privately placed modules copied into more than
// one bundle, in load order.
func (a *Assignment) Duplicated() []modgraph.ModuleID {
	var ids []modgraph.ModuleID
	for _, id := range a.graph.LoadOrder() {
		placement, ok := a.placements[id]
		if ok && !placement.Shared() && placement.Entries.Len() > 1 {
			ids = append(ids, id)
		}
	}
	return ids
}
