// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

package candidate

import (
	"fmt"
	"strings"
)

// Issue is one validation problem with one candidate.
type Issue struct {
	// Index is the candidate's position in the input list.
	Index int

	// Candidate is the candidate's name, possibly empty.
	Candidate string

	Reason string
}

func (i Issue) String() string {
	if i.Candidate == "" {
		return fmt.Sprintf("candidates[%d]: %s", i.Index, i.Reason)
	}
	return fmt.Sprintf("candidates[%d] %q: %s", i.Index, i.Candidate, i.Reason)
}

// ValidationError reports every issue found in a candidate list.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	lines := make([]string, len(e.Issues))
	for index, issue := range e.Issues {
		lines[index] = issue.String()
	}
	if len(lines) == 1 {
		return "invalid chunk candidate: " + lines[0]
	}
	return fmt.Sprintf("%d invalid chunk candidate issues:\n  %s", len(lines), strings.Join(lines, "\n  "))
}

func validate(universe []string, candidates []Candidate) []Issue {
	var issues []Issue

	known := make(map[string]bool, len(universe))
	for _, name := range universe {
		known[name] = true
	}

	firstUse := make(map[string]int, len(candidates))
	for index, candidate := range candidates {
		report := func(format string, args ...any) {
			issues = append(issues, Issue{Index: index, Candidate: candidate.Name, Reason: fmt.Sprintf(format, args...)})
		}

		if candidate.Name == "" {
			report("name is required")
		} else if first, exists := firstUse[candidate.Name]; exists {
			report("duplicate candidate name (first used at candidates[%d])", first)
		} else {
			firstUse[candidate.Name] = index
		}

		if len(candidate.Entries) == 0 {
			report("entry subset is empty")
		}

		seen := make(map[string]bool, len(candidate.Entries))
		for _, entry := range candidate.Entries {
			if seen[entry] {
				report("entry %q listed more than once", entry)
				continue
			}
			seen[entry] = true
			if universe != nil && !known[entry] {
				report("unknown entry %q", entry)
			}
		}

		switch {
		case candidate.MinChunks < 1:
			report("min_chunks must be at least 1, got %d", candidate.MinChunks)
		case len(candidate.Entries) > 0 && candidate.MinChunks > len(seen):
			report("min_chunks %d exceeds the %d entries in the subset (can never be satisfied)", candidate.MinChunks, len(seen))
		}
	}

	return issues
}
