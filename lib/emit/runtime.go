// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

package emit

import (
	"encoding/json"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/splitpack/splitpack/lib/modgraph"
)

// Artifact layout. Every artifact is one function expression applied to
// the registry of the JavaScript realm it is loaded into, so all
// scripts an entry loads, in manifest order, share one module table.
// Shared chunks only register modules; a private bundle also carries
// the require runtime and finishes by requiring its entry root.
const (
	artifactHeader = "\"use strict\";\n(function(registry) {\n"
	artifactFooter = "})(globalThis.__splitpack__ || (globalThis.__splitpack__ = {modules: {}, cache: {}}));\n"
)

const requireRuntime = `if (!registry.require) {
  registry.require = function load(id) {
    var cached = registry.cache[id];
    if (cached) {
      return cached.exports;
    }
    var definition = registry.modules[id];
    if (!definition) {
      throw new Error("splitpack: module " + id + " is not loaded");
    }
    var module = {id: id, exports: {}};
    registry.cache[id] = module;
    definition[1].call(module.exports, module, module.exports, function(specifier) {
      return load(Object.prototype.hasOwnProperty.call(definition[0], specifier) ? definition[0][specifier] : specifier);
    });
    return module.exports;
  };
}
`

// renderedModule is a module ready for serialization.
type renderedModule struct {
	id      modgraph.ModuleID
	imports map[string]modgraph.ModuleID
	body    string
}

// writeArtifact serializes modules, in order, as one artifact. A
// non-empty root makes it a private bundle.
func writeArtifact(w io.Writer, modules []*renderedModule, root modgraph.ModuleID) error {
	var b strings.Builder
	b.WriteString(artifactHeader)
	if root != "" {
		b.WriteString(requireRuntime)
	}
	for _, module := range modules {
		writeDefinition(&b, module)
	}
	if root != "" {
		b.WriteString("registry.require(")
		b.WriteString(quote(string(root)))
		b.WriteString(");\n")
	}
	b.WriteString(artifactFooter)
	_, err := io.WriteString(w, b.String())
	return err
}

func writeDefinition(b *strings.Builder, module *renderedModule) {
	// Keys sorted so the artifact bytes do not depend on map order.
	imports := make([]string, 0, len(module.imports))
	for _, specifier := range slices.Sorted(maps.Keys(module.imports)) {
		imports = append(imports, quote(specifier)+": "+quote(string(module.imports[specifier])))
	}

	b.WriteString("registry.modules[")
	b.WriteString(quote(string(module.id)))
	b.WriteString("] = [{")
	b.WriteString(strings.Join(imports, ", "))
	b.WriteString("}, function(module, exports, require) {\n")
	b.WriteString(module.body)
	if !strings.HasSuffix(module.body, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("}];\n")
}

// quote returns s as a JavaScript string literal.
func quote(s string) string {
	var b strings.Builder
	encoder := json.NewEncoder(&b)
	encoder.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = encoder.Encode(s)
	return strings.TrimSuffix(b.String(), "\n")
}
