// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

package candidate

import "strings"

// DefaultChunkFilename is the artifact template Combinations assigns.
const DefaultChunkFilename = "commons.[name].js"

// ExtensionEntries is the browser-extension surface order. Combinations
// over it yields the eleven-candidate extension table.
var ExtensionEntries = []string{"background", "contentscript", "popup", "inpage"}

// Combinations returns the standard candidate table for entries, most
// widely shared first:
//
//   - "all": every entry, MinChunks = len(entries)
//   - "exclude-<e>" for each entry e in order, when len(entries) > 3:
//     every other entry, MinChunks = len(entries)-1
//   - every remaining subset size down to 2, subsets in lexicographic
//     position order, named by joining entry names with "-",
//     MinChunks = subset size
//
// Each candidate's Filename is filename, or DefaultChunkFilename when
// empty. Fewer than two entries produce no candidates: nothing can be
// shared.
func Combinations(entries []string, filename string) []Candidate {
	count := len(entries)
	if count < 2 {
		return nil
	}
	if filename == "" {
		filename = DefaultChunkFilename
	}

	var candidates []Candidate
	add := func(name string, members []string) {
		candidates = append(candidates, Candidate{
			Name:      name,
			Entries:   members,
			MinChunks: len(members),
			Filename:  filename,
		})
	}

	add("all", append([]string(nil), entries...))

	for size := count - 1; size >= 2; size-- {
		if size == count-1 && size > 2 {
			for excluded := range entries {
				members := make([]string, 0, size)
				for position, entry := range entries {
					if position != excluded {
						members = append(members, entry)
					}
				}
				add("exclude-"+entries[excluded], members)
			}
			continue
		}
		for _, positions := range subsets(count, size) {
			members := make([]string, len(positions))
			for index, position := range positions {
				members[index] = entries[position]
			}
			add(strings.Join(members, "-"), members)
		}
	}

	return candidates
}

// subsets returns every size-element subset of [0, count) as ascending
// position lists, in lexicographic order.
func subsets(count, size int) [][]int {
	var result [][]int
	current := make([]int, 0, size)
	var extend func(start int)
	extend = func(start int) {
		if len(current) == size {
			result = append(result, append([]int(nil), current...))
			return
		}
		for position := start; position <= count-(size-len(current)); position++ {
			current = append(current, position)
			extend(position + 1)
			current = current[:len(current)-1]
		}
	}
	extend(0)
	return result
}
