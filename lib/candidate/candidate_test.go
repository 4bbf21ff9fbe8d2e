// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

package candidate

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

var universe = []string{"a", "b", "c"}

func TestNewListKeepsOrder(t *testing.T) {
	list, err := NewList(universe, []Candidate{
		{Name: "wide", Entries: []string{"a", "b", "c"}, MinChunks: 3},
		{Name: "narrow", Entries: []string{"a", "b"}, MinChunks: 2},
		{Name: "loose", Entries: []string{"a", "b", "c"}, MinChunks: 2},
	})
	if err != nil {
		t.Fatalf("NewList: %v", err)
	}
	if got, want := list.Names(), []string{"wide", "narrow", "loose"}; !slices.Equal(got, want) {
		t.Errorf("Names = %v, want %v", got, want)
	}
	if list.Len() != 3 {
		t.Errorf("Len = %d, want 3", list.Len())
	}
}

func TestNewListCopiesInput(t *testing.T) {
	input := []Candidate{{Name: "x", Entries: []string{"a", "b"}, MinChunks: 2}}
	list, err := NewList(universe, input)
	if err != nil {
		t.Fatalf("NewList: %v", err)
	}

	input[0].Entries[0] = "c"
	input[0].Name = "renamed"
	if got := list.At(0); got.Name != "x" || got.Entries[0] != "a" {
		t.Errorf("list changed with its input: %v", got)
	}

	returned := list.At(0)
	returned.Entries[1] = "c"
	if list.At(0).Entries[1] != "b" {
		t.Error("At returned an aliased entries slice")
	}
}

func TestNewListRejects(t *testing.T) {
	tests := []struct {
		name      string
		candidate Candidate
		reason    string
	}{
		{"missing name", Candidate{Entries: []string{"a"}, MinChunks: 1}, "name is required"},
		{"empty subset", Candidate{Name: "x", MinChunks: 1}, "entry subset is empty"},
		{"zero threshold", Candidate{Name: "x", Entries: []string{"a", "b"}, MinChunks: 0}, "at least 1"},
		{"unsatisfiable", Candidate{Name: "x", Entries: []string{"a", "b"}, MinChunks: 3}, "can never be satisfied"},
		{"unknown entry", Candidate{Name: "x", Entries: []string{"a", "z"}, MinChunks: 1}, `unknown entry "z"`},
		{"repeated entry", Candidate{Name: "x", Entries: []string{"a", "a"}, MinChunks: 1}, `"a" listed more than once`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := NewList(universe, []Candidate{test.candidate})
			var validation *ValidationError
			if !errors.As(err, &validation) {
				t.Fatalf("error = %v, want *ValidationError", err)
			}
			if len(validation.Issues) != 1 {
				t.Fatalf("issues = %v, want exactly one", validation.Issues)
			}
			if !strings.Contains(validation.Issues[0].Reason, test.reason) {
				t.Errorf("reason = %q, want it to contain %q", validation.Issues[0].Reason, test.reason)
			}
		})
	}
}

func TestNewListRepeatedEntryCountsOnce(t *testing.T) {
	// {a, a} has one distinct entry, so a threshold of 2 is also unsatisfiable.
	_, err := NewList(universe, []Candidate{{Name: "x", Entries: []string{"a", "a"}, MinChunks: 2}})
	var validation *ValidationError
	if !errors.As(err, &validation) || len(validation.Issues) != 2 {
		t.Fatalf("error = %v, want two issues", err)
	}
}

func TestNewListReportsEveryIssue(t *testing.T) {
	_, err := NewList(universe, []Candidate{
		{Name: "dup", Entries: []string{"a"}, MinChunks: 1},
		{Name: "dup", Entries: []string{"b"}, MinChunks: 1},
		{Name: "bad", Entries: []string{"q"}, MinChunks: 5},
	})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	if len(validation.Issues) != 3 {
		t.Fatalf("issues = %v, want 3", validation.Issues)
	}
	if validation.Issues[0].Index != 1 || validation.Issues[0].Candidate != "dup" {
		t.Errorf("first issue = %+v, want the duplicate at index 1", validation.Issues[0])
	}
	message := err.Error()
	if !strings.Contains(message, "3 invalid chunk candidate issues") || !strings.Contains(message, `candidates[2] "bad"`) {
		t.Errorf("Error() = %q", message)
	}
}

func TestNewListNilUniverseSkipsMembership(t *testing.T) {
	if _, err := NewList(nil, []Candidate{{Name: "x", Entries: []string{"anything"}, MinChunks: 1}}); err != nil {
		t.Errorf("NewList(nil universe): %v", err)
	}
}

func TestCombinationsExtensionTable(t *testing.T) {
	got := Combinations(ExtensionEntries, "")

	want := []struct {
		name    string
		entries string
		min     int
	}{
		{"all", "background,contentscript,popup,inpage", 4},
		{"exclude-background", "contentscript,popup,inpage", 3},
		{"exclude-contentscript", "background,popup,inpage", 3},
		{"exclude-popup", "background,contentscript,inpage", 3},
		{"exclude-inpage", "background,contentscript,popup", 3},
		{"background-contentscript", "background,contentscript", 2},
		{"background-popup", "background,popup", 2},
		{"background-inpage", "background,inpage", 2},
		{"contentscript-popup", "contentscript,popup", 2},
		{"contentscript-inpage", "contentscript,inpage", 2},
		{"popup-inpage", "popup,inpage", 2},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d candidates, want %d", len(got), len(want))
	}
	for index, expected := range want {
		candidate := got[index]
		if candidate.Name != expected.name || strings.Join(candidate.Entries, ",") != expected.entries || candidate.MinChunks != expected.min {
			t.Errorf("candidate %d = %v, want %s({%s}>=%d)", index, candidate, expected.name, expected.entries, expected.min)
		}
		if candidate.Filename != DefaultChunkFilename {
			t.Errorf("candidate %d filename = %q", index, candidate.Filename)
		}
	}

	if _, err := NewList(ExtensionEntries, got); err != nil {
		t.Errorf("generated table does not validate: %v", err)
	}
}

func TestCombinationsSmallSets(t *testing.T) {
	if got := Combinations([]string{"solo"}, ""); got != nil {
		t.Errorf("one entry: %v, want nil", got)
	}

	two := Combinations([]string{"a", "b"}, "shared.[name].js")
	if len(two) != 1 || two[0].Name != "all" || two[0].MinChunks != 2 || two[0].Filename != "shared.[name].js" {
		t.Errorf("two entries: %v", two)
	}

	three := Combinations([]string{"a", "b", "c"}, "")
	var names []string
	for _, candidate := range three {
		names = append(names, candidate.Name)
	}
	if want := []string{"all", "a-b", "a-c", "b-c"}; !slices.Equal(names, want) {
		t.Errorf("three entries: %v, want %v", names, want)
	}
}

func TestCombinationsFiveEntries(t *testing.T) {
	got := Combinations([]string{"a", "b", "c", "d", "e"}, "")
	// 1 all + 5 exclude + C(5,3) + C(5,2)
	if len(got) != 1+5+10+10 {
		t.Fatalf("got %d candidates, want 26", len(got))
	}
	if got[6].Name != "a-b-c" || got[6].MinChunks != 3 {
		t.Errorf("first triple = %v", got[6])
	}
	if last := got[len(got)-1]; last.Name != "d-e" {
		t.Errorf("last = %v, want d-e", last)
	}
}
