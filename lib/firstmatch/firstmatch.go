// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

// Package firstmatch provides ordered first-match dispatch: a table of
// (predicate, value) rules where the earliest rule whose predicate
// accepts an item wins.
//
// Declaration order is the only tie-break. The table never sorts,
// scores or prefers narrower rules; a broad rule declared early shadows
// a specific one declared later. Both the chunk engine (first
// qualifying candidate) and loader selection (first matching asset
// rule) depend on exactly this behaviour.
package firstmatch

// Rule pairs a predicate with the value selected when it matches.
type Rule[T, V any] struct {
	Name  string
	Match func(T) bool
	Value V
}

// Table is an immutable ordered list of rules.
type Table[T, V any] struct {
	rules []Rule[T, V]
}

// New returns a table over a copy of rules. A rule with a nil Match
// never matches.
func New[T, V any](rules ...Rule[T, V]) *Table[T, V] {
	return &Table[T, V]{rules: append([]Rule[T, V](nil), rules...)}
}

// Len returns the number of rules.
func (t *Table[T, V]) Len() int {
	return len(t.rules)
}

// Rule returns the rule at position.
func (t *Table[T, V]) Rule(position int) Rule[T, V] {
	return t.rules[position]
}

// Lookup returns the position of the first rule matching item, or -1.
func (t *Table[T, V]) Lookup(item T) int {
	return t.LookupFrom(item, 0)
}

// LookupFrom is Lookup starting at position start. Callers use it to
// fall through to later rules after rejecting an earlier match.
func (t *Table[T, V]) LookupFrom(item T, start int) int {
	for position := max(start, 0); position < len(t.rules); position++ {
		match := t.rules[position].Match
		if match != nil && match(item) {
			return position
		}
	}
	return -1
}

// Select returns the value of the first matching rule.
func (t *Table[T, V]) Select(item T) (V, bool) {
	position := t.Lookup(item)
	if position < 0 {
		var zero V
		return zero, false
	}
	return t.rules[position].Value, true
}
