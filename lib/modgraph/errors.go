// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

package modgraph

import (
	"fmt"
	"strings"
)

// UnresolvedError reports a reference to a module id that is not in
// the graph. Exactly one of From (a referencing module) or Entry (an
// entry whose root is missing) is set.
type UnresolvedError struct {
	From    ModuleID
	Entry   string
	Missing ModuleID

	// Specifier is the source text that failed to resolve, when known.
	Specifier string
}

func (e *UnresolvedError) Error() string {
	var b strings.Builder
	b.WriteString("unresolved reference")
	switch {
	case e.Entry != "":
		fmt.Fprintf(&b, ": entry %q root", e.Entry)
	case e.From != "":
		fmt.Fprintf(&b, ": %s ->", e.From)
	}
	if e.Specifier != "" {
		fmt.Fprintf(&b, " %q", e.Specifier)
	}
	if e.Missing != "" {
		fmt.Fprintf(&b, " %s not found", e.Missing)
	} else {
		b.WriteString(" not found")
	}
	return b.String()
}

// GraphError reports a structural problem with graph input.
type GraphError struct {
	Module ModuleID
	Entry  string
	Reason string
}

func (e *GraphError) Error() string {
	switch {
	case e.Module != "":
		return fmt.Sprintf("module graph: module %s: %s", e.Module, e.Reason)
	case e.Entry != "":
		return fmt.Sprintf("module graph: entry %q: %s", e.Entry, e.Reason)
	default:
		return "module graph: " + e.Reason
	}
}
