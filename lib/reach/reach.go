// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

// Package reach computes, for every module in a graph, the set of
// entries that transitively reference it.
//
// Each entry is traversed independently with its own visited set, so
// reference cycles terminate and the traversals can run in parallel:
// they read the shared immutable graph and write only to their own
// result slice. The merge into the index is sequential. Modules no
// entry reaches are pruned: they get no reachability set and are
// excluded from everything downstream. Pruning is not an error; the
// pruned ids are kept for reporting.
package reach

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/splitpack/splitpack/lib/modgraph"
)

// Index maps each reachable module to the entries that reach it.
// Immutable after Build.
type Index struct {
	graph     *modgraph.Graph
	sets      map[modgraph.ModuleID]modgraph.EntrySet
	reachable []modgraph.ModuleID
	pruned    []modgraph.ModuleID
}

// Build traverses graph from every entry root. Traversals run
// concurrently, one goroutine per entry; ctx cancellation stops them
// between modules.
func Build(ctx context.Context, graph *modgraph.Graph) (*Index, error) {
	entries := graph.Entries()
	visited := make([][]modgraph.ModuleID, len(entries))

	group, groupContext := errgroup.WithContext(ctx)
	for position, entry := range entries {
		group.Go(func() error {
			ids, err := traverse(groupContext, graph, entry.Root)
			if err != nil {
				return fmt.Errorf("reachability for entry %q: %w", entry.Name, err)
			}
			visited[position] = ids
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	index := &Index{
		graph: graph,
		sets:  make(map[modgraph.ModuleID]modgraph.EntrySet, graph.Len()),
	}
	for position, ids := range visited {
		for _, id := range ids {
			index.sets[id] = index.sets[id].With(position)
		}
	}
	for _, id := range graph.Modules() {
		if _, ok := index.sets[id]; ok {
			index.reachable = append(index.reachable, id)
		} else {
			index.pruned = append(index.pruned, id)
		}
	}
	return index, nil
}

// traverse returns every module reachable from root, root included.
// A module already visited for this root is not descended again.
func traverse(ctx context.Context, graph *modgraph.Graph, root modgraph.ModuleID) ([]modgraph.ModuleID, error) {
	seen := map[modgraph.ModuleID]bool{root: true}
	order := []modgraph.ModuleID{root}
	stack := []modgraph.ModuleID{root}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		module, ok := graph.Module(id)
		if !ok {
			// modgraph.New guarantees closure; this only trips on a
			// graph built some other way.
			return nil, &modgraph.UnresolvedError{Missing: id}
		}
		for _, reference := range module.References {
			if seen[reference] {
				continue
			}
			seen[reference] = true
			order = append(order, reference)
			stack = append(stack, reference)
		}
	}
	return order, nil
}

// Graph returns the graph the index was built from.
func (x *Index) Graph() *modgraph.Graph {
	return x.graph
}

// Set returns the entries that reach id. The second result is false
// for pruned or unknown modules.
func (x *Index) Set(id modgraph.ModuleID) (modgraph.EntrySet, bool) {
	set, ok := x.sets[id]
	return set, ok
}

// Reachable returns the reachable module ids in graph declaration order.
func (x *Index) Reachable() []modgraph.ModuleID {
	return append([]modgraph.ModuleID(nil), x.reachable...)
}

// Pruned returns the ids of modules no entry reaches, in graph
// declaration order.
func (x *Index) Pruned() []modgraph.ModuleID {
	return append([]modgraph.ModuleID(nil), x.pruned...)
}

// ReachedBy returns the reachable modules whose set contains the entry
// at position, in graph declaration order.
func (x *Index) ReachedBy(position int) []modgraph.ModuleID {
	var ids []modgraph.ModuleID
	for _, id := range x.reachable {
		if x.sets[id].Has(position) {
			ids = append(ids, id)
		}
	}
	return ids
}
