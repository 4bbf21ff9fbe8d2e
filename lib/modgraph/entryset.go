// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

package modgraph

import (
	"math/bits"
	"strconv"
	"strings"
)

// MaxEntries is the largest entry universe a graph supports. Entry
// positions index the bits of an EntrySet.
const MaxEntries = 64

// EntrySet is a set of entry positions within one graph's entry list.
// The zero value is the empty set.
type EntrySet uint64

// EntrySetOf returns the set containing the given positions. Positions
// outside [0, MaxEntries) are ignored.
func EntrySetOf(positions ...int) EntrySet {
	var set EntrySet
	for _, position := range positions {
		set = set.With(position)
	}
	return set
}

// With returns the set with position added.
func (s EntrySet) With(position int) EntrySet {
	if position < 0 || position >= MaxEntries {
		return s
	}
	return s | 1<<uint(position)
}

// Has reports whether position is in the set.
func (s EntrySet) Has(position int) bool {
	if position < 0 || position >= MaxEntries {
		return false
	}
	return s&(1<<uint(position)) != 0
}

// Intersect returns the positions present in both sets.
func (s EntrySet) Intersect(other EntrySet) EntrySet {
	return s & other
}

// Union returns the positions present in either set.
func (s EntrySet) Union(other EntrySet) EntrySet {
	return s | other
}

// Len returns the number of positions in the set.
func (s EntrySet) Len() int {
	return bits.OnesCount64(uint64(s))
}

// Empty reports whether the set has no positions.
func (s EntrySet) Empty() bool {
	return s == 0
}

// Positions returns the positions in ascending order.
func (s EntrySet) Positions() []int {
	positions := make([]int, 0, s.Len())
	for remaining := uint64(s); remaining != 0; remaining &= remaining - 1 {
		positions = append(positions, bits.TrailingZeros64(remaining))
	}
	return positions
}

// Format renders the set using names, which must be the entry list the
// positions refer to. Positions without a name render as "#N".
func (s EntrySet) Format(names []string) string {
	var builder strings.Builder
	builder.WriteByte('{')
	for index, position := range s.Positions() {
		if index > 0 {
			builder.WriteByte(',')
		}
		if position < len(names) {
			builder.WriteString(names[position])
		} else {
			builder.WriteByte('#')
			builder.WriteString(strconv.Itoa(position))
		}
	}
	builder.WriteByte('}')
	return builder.String()
}
