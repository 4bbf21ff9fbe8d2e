// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

package chunk

import (
	"errors"
	"fmt"

	"github.com/splitpack/splitpack/lib/modgraph"
	"github.com/splitpack/splitpack/lib/reach"
)

// Verify checks that the assignment partitions the reachable modules of
// index: every reachable module sits in exactly one shared chunk, or
// else in exactly the private bundles of the entries that reach it, and
// nothing else is placed anywhere. All violations are joined into the
// returned error, in chunk, bundle and load order.
func (a *Assignment) Verify(index *reach.Index) error {
	var problems []error
	fail := func(format string, args ...any) {
		problems = append(problems, fmt.Errorf(format, args...))
	}

	shared := make(map[modgraph.ModuleID]string)
	for _, chunk := range a.chunks {
		if len(chunk.Members) == 0 {
			fail("shared chunk %q is empty", chunk.Name)
		}
		for _, id := range chunk.Members {
			if previous, exists := shared[id]; exists {
				fail("module %s is in shared chunks %q and %q", id, previous, chunk.Name)
				continue
			}
			shared[id] = chunk.Name
		}
	}

	copies := make(map[modgraph.ModuleID]modgraph.EntrySet)
	for _, bundle := range a.bundles {
		for _, id := range bundle.Members {
			if chunk, exists := shared[id]; exists {
				fail("module %s is in shared chunk %q and in the %q bundle", id, chunk, bundle.Entry)
			}
			if copies[id].Has(bundle.Position) {
				fail("module %s appears twice in the %q bundle", id, bundle.Entry)
			}
			copies[id] = copies[id].With(bundle.Position)
		}
	}

	reachable := make(map[modgraph.ModuleID]bool)
	for _, id := range index.Reachable() {
		reachable[id] = true
		reached, _ := index.Set(id)
		if _, ok := shared[id]; ok {
			continue
		}
		switch got := copies[id]; {
		case got.Empty():
			fail("module %s is reachable but not placed", id)
		case got != reached:
			names := a.graph.EntryNames()
			fail("module %s is in bundles %s, want %s", id, got.Format(names), reached.Format(names))
		}
	}
	reported := make(map[modgraph.ModuleID]bool)
	for _, chunk := range a.chunks {
		for _, id := range chunk.Members {
			if !reachable[id] && !reported[id] {
				reported[id] = true
				fail("unreachable module %s is in shared chunk %q", id, chunk.Name)
			}
		}
	}
	for _, bundle := range a.bundles {
		for _, id := range bundle.Members {
			if !reachable[id] && !reported[id] {
				reported[id] = true
				fail("unreachable module %s is in the %q bundle", id, bundle.Entry)
			}
		}
	}

	return errors.Join(problems...)
}
