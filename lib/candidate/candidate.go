// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

// Package candidate holds the priority-ordered list of shared-chunk
// candidates.
//
// A candidate says "modules referenced by at least MinChunks of these
// Entries go into a shared chunk called Name". The list position is the
// priority: the chunk engine gives each module to the first candidate
// it qualifies for, so reordering a list changes the output. A [List]
// is therefore immutable once built and never resorted.
//
// [NewList] is the configuration-time gate. It rejects, before any
// graph is read, candidates that could never be satisfied or that
// would be ambiguous:
//
//   - empty name, or a name used by an earlier candidate
//   - empty entry subset, or an entry named twice in one subset
//   - an entry outside the configured entry universe
//   - MinChunks below 1 or above the subset size
//
// [Combinations] generates the standard table for a set of
// independently loaded surfaces: everything-shared first, then
// all-but-one, then smaller groups down to pairs.
package candidate

import (
	"fmt"
	"strings"
)

// Candidate is one shared-chunk definition.
type Candidate struct {
	Name string `yaml:"name" json:"name"`

	// Entries is the subset of entries whose references count toward
	// MinChunks. References from other entries are ignored.
	Entries []string `yaml:"entries" json:"entries"`

	// MinChunks is the minimum number of Entries that must reach a
	// module for it to qualify.
	MinChunks int `yaml:"min_chunks" json:"min_chunks"`

	// Filename is the artifact name template for this chunk. Empty
	// falls back to the build's chunk filename template.
	Filename string `yaml:"filename,omitempty" json:"filename,omitempty"`
}

// String renders the candidate as name({a,b,c}>=k).
func (c Candidate) String() string {
	return fmt.Sprintf("%s({%s}>=%d)", c.Name, strings.Join(c.Entries, ","), c.MinChunks)
}

// List is a validated, immutable, priority-ordered candidate list.
type List struct {
	candidates []Candidate
	universe   []string
}

// NewList validates candidates against the entry universe and returns
// them as a List in the given order. A nil universe skips the
// unknown-entry check; the chunk engine checks again against the graph.
// Every problem found is reported in one *ValidationError.
func NewList(universe []string, candidates []Candidate) (*List, error) {
	if issues := validate(universe, candidates); len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}

	list := &List{
		candidates: make([]Candidate, len(candidates)),
		universe:   append([]string(nil), universe...),
	}
	for index, candidate := range candidates {
		candidate.Entries = append([]string(nil), candidate.Entries...)
		list.candidates[index] = candidate
	}
	return list, nil
}

// Len returns the number of candidates.
func (l *List) Len() int {
	return len(l.candidates)
}

// At returns a copy of the candidate at priority position index.
func (l *List) At(index int) Candidate {
	candidate := l.candidates[index]
	candidate.Entries = append([]string(nil), candidate.Entries...)
	return candidate
}

// All returns copies of every candidate in priority order.
func (l *List) All() []Candidate {
	all := make([]Candidate, len(l.candidates))
	for index := range l.candidates {
		all[index] = l.At(index)
	}
	return all
}

// Names returns candidate names in priority order.
func (l *List) Names() []string {
	names := make([]string, len(l.candidates))
	for index, candidate := range l.candidates {
		names[index] = candidate.Name
	}
	return names
}

// Universe returns the entry universe the list was validated against.
func (l *List) Universe() []string {
	return append([]string(nil), l.universe...)
}
