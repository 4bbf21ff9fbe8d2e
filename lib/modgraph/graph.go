// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

package modgraph

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// ModuleID identifies a module: a resolved path or a content id.
type ModuleID string

// Module is one node of the reference graph. References keep the order
// in which the module's source mentions them; that order breaks ties in
// the load order.
type Module struct {
	ID ModuleID `json:"id"`

	// Path is where the driver's source loader finds the payload. Empty
	// means the id doubles as the path.
	Path string `json:"path,omitempty"`

	// Size is the payload size in bytes. Reporting only.
	Size int64 `json:"size,omitempty"`

	References []ModuleID `json:"references,omitempty"`

	// Imports maps the specifiers written in the module's source to the
	// modules they resolved to. The emitted require function uses it;
	// a specifier missing here is looked up as a module id.
	Imports map[string]ModuleID `json:"imports,omitempty"`
}

// SourcePath returns Path, or the id when Path is empty.
func (m *Module) SourcePath() string {
	if m.Path != "" {
		return m.Path
	}
	return string(m.ID)
}

// Entry is a named root into the graph.
type Entry struct {
	Name string   `json:"name"`
	Root ModuleID `json:"root"`
}

// Graph is an immutable, closed module reference graph with an ordered
// entry list. Safe for concurrent reads.
type Graph struct {
	modules    map[ModuleID]*Module
	order      []ModuleID
	entries    []Entry
	entryIndex map[string]int

	loadOrderOnce sync.Once
	loadOrder     []ModuleID
}

// New builds a graph from modules and entries. The slices are copied.
//
// Returns a *GraphError for structural problems (duplicate module ids,
// duplicate or empty entry names, too many entries) and an
// *UnresolvedError for any reference or entry root that names a module
// not in modules.
func New(modules []Module, entries []Entry) (*Graph, error) {
	if len(entries) > MaxEntries {
		return nil, &GraphError{Reason: fmt.Sprintf("%d entries exceeds the maximum of %d", len(entries), MaxEntries)}
	}

	graph := &Graph{
		modules:    make(map[ModuleID]*Module, len(modules)),
		order:      make([]ModuleID, 0, len(modules)),
		entries:    make([]Entry, len(entries)),
		entryIndex: make(map[string]int, len(entries)),
	}

	for _, module := range modules {
		if module.ID == "" {
			return nil, &GraphError{Reason: "module with empty id"}
		}
		if _, exists := graph.modules[module.ID]; exists {
			return nil, &GraphError{Module: module.ID, Reason: "duplicate module id"}
		}
		stored := module
		stored.References = append([]ModuleID(nil), module.References...)
		stored.Imports = maps.Clone(module.Imports)
		graph.modules[module.ID] = &stored
		graph.order = append(graph.order, module.ID)
	}

	for _, id := range graph.order {
		for _, reference := range graph.modules[id].References {
			if _, ok := graph.modules[reference]; !ok {
				return nil, &UnresolvedError{From: id, Missing: reference}
			}
		}
		imports := graph.modules[id].Imports
		for _, specifier := range slices.Sorted(maps.Keys(imports)) {
			if _, ok := graph.modules[imports[specifier]]; !ok {
				return nil, &UnresolvedError{From: id, Specifier: specifier, Missing: imports[specifier]}
			}
		}
	}

	copy(graph.entries, entries)
	for position, entry := range graph.entries {
		if entry.Name == "" {
			return nil, &GraphError{Reason: fmt.Sprintf("entry %d has an empty name", position)}
		}
		if first, exists := graph.entryIndex[entry.Name]; exists {
			return nil, &GraphError{Entry: entry.Name, Reason: fmt.Sprintf("duplicate entry name (first declared at position %d)", first)}
		}
		if _, ok := graph.modules[entry.Root]; !ok {
			return nil, &UnresolvedError{Entry: entry.Name, Missing: entry.Root}
		}
		graph.entryIndex[entry.Name] = position
	}

	return graph, nil
}

// Len returns the number of modules, reachable or not.
func (g *Graph) Len() int {
	return len(g.order)
}

// Module returns the module with the given id. The returned value must
// not be modified.
func (g *Graph) Module(id ModuleID) (*Module, bool) {
	module, ok := g.modules[id]
	return module, ok
}

// Modules returns every module id in declaration order.
func (g *Graph) Modules() []ModuleID {
	return append([]ModuleID(nil), g.order...)
}

// Entries returns the entry list in declaration order.
func (g *Graph) Entries() []Entry {
	return append([]Entry(nil), g.entries...)
}

// EntryNames returns the entry names in declaration order. Position i
// of the result is entry position i in every EntrySet for this graph.
func (g *Graph) EntryNames() []string {
	names := make([]string, len(g.entries))
	for position, entry := range g.entries {
		names[position] = entry.Name
	}
	return names
}

// EntryPosition returns the position of the named entry.
func (g *Graph) EntryPosition(name string) (int, bool) {
	position, ok := g.entryIndex[name]
	return position, ok
}

// EntrySetFor converts entry names to an EntrySet. Unknown names are an
// error.
func (g *Graph) EntrySetFor(names []string) (EntrySet, error) {
	var set EntrySet
	for _, name := range names {
		position, ok := g.entryIndex[name]
		if !ok {
			return 0, fmt.Errorf("unknown entry %q", name)
		}
		set = set.With(position)
	}
	return set, nil
}

// Names converts an EntrySet back to entry names in entry order.
func (g *Graph) Names(set EntrySet) []string {
	positions := set.Positions()
	names := make([]string, 0, len(positions))
	for _, position := range positions {
		if position < len(g.entries) {
			names = append(names, g.entries[position].Name)
		}
	}
	return names
}

// LoadOrder returns every module reachable from some entry in a stable
// topological order: a depth-first post-order walk from each entry root
// in entry order, following references in declared order. A module
// appears after everything it references, except where a reference
// cycle makes that impossible; the back edge of a cycle is skipped.
// Computed once.
func (g *Graph) LoadOrder() []ModuleID {
	g.loadOrderOnce.Do(func() {
		g.loadOrder = g.computeLoadOrder()
	})
	return append([]ModuleID(nil), g.loadOrder...)
}

func (g *Graph) computeLoadOrder() []ModuleID {
	const (
		unvisited = iota
		inProgress
		done
	)
	state := make(map[ModuleID]int, len(g.modules))
	order := make([]ModuleID, 0, len(g.modules))

	// Explicit stack: module graphs from real dependency trees get deep
	// enough that recursion depth is worth avoiding.
	type frame struct {
		id   ModuleID
		next int
	}

	for _, entry := range g.entries {
		if state[entry.Root] != unvisited {
			continue
		}
		state[entry.Root] = inProgress
		stack := []frame{{id: entry.Root}}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			references := g.modules[top.id].References
			if top.next < len(references) {
				reference := references[top.next]
				top.next++
				if state[reference] == unvisited {
					state[reference] = inProgress
					stack = append(stack, frame{id: reference})
				}
				continue
			}
			state[top.id] = done
			order = append(order, top.id)
			stack = stack[:len(stack)-1]
		}
	}

	return order
}
