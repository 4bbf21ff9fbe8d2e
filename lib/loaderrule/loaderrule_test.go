// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

package loaderrule

import (
	"errors"
	"testing"
)

func TestDefaultSelection(t *testing.T) {
	rules, err := Compile(Defaults())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	tests := []struct {
		path   string
		size   int64
		loader string
		rule   int
	}{
		{"src/popup/logo.png", 900, URL, 0},
		{"src/popup/photo.jpeg", 10000, URL, 0},
		{"src/popup/photo.jpg", 10001, File, 4},
		{"src/background/index.ts", 400, TypeScript, 1},
		{"src/popup/view.tsx", 400, TypeScript, 1},
		{"node_modules/pkg/index.ts", 400, File, 4},
		{"src/popup/app.css", 100, CSSModules, 2},
		{"node_modules/normalize.css/normalize.css", 100, CSS, 3},
		{"src/popup/font.woff2", 100, File, 4},
		{"node_modules/lodash/lodash.js", 100, Script, -1},
		{"src/data/table.json", 100, JSON, -1},
		{"src/popup/index.html", 100, Script, -1},
	}
	for _, test := range tests {
		t.Run(test.path, func(t *testing.T) {
			got := rules.Select(Module{Path: test.path, Size: test.size})
			if got.Loader != test.loader || got.Rule != test.rule {
				t.Errorf("Select = %s (rule %d), want %s (rule %d)", got.Loader, got.Rule, test.loader, test.rule)
			}
			if (got.Loader == URL || got.Loader == File) && got.Name != DefaultAssetName {
				t.Errorf("Name = %q, want %q", got.Name, DefaultAssetName)
			}
		})
	}
}

func TestEarlierRuleShadowsLater(t *testing.T) {
	rules, err := Compile([]Rule{
		{Test: []string{`\.css$`}, Loader: CSS},
		{Test: []string{`\.module\.css$`}, Loader: CSSModules},
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if got := rules.Select(Module{Path: "src/button.module.css"}); got.Loader != CSS {
		t.Errorf("Select = %s, want css (declared first)", got.Loader)
	}
}

func TestOversizedURLWithoutFallback(t *testing.T) {
	rules, err := Compile([]Rule{{Test: []string{`\.png$`}, Loader: URL, Limit: 10}})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if got := rules.Select(Module{Path: "big.png", Size: 11}); got.Loader != Script || got.Rule != -1 {
		t.Errorf("Select = %+v, want the built-in default", got)
	}
}

func TestCompileReportsEveryIssue(t *testing.T) {
	_, err := Compile([]Rule{
		{Test: []string{`(`}, Loader: "babel"},
		{Loader: File, Limit: 5},
	})
	var ruleErr *Error
	if !errors.As(err, &ruleErr) {
		t.Fatalf("error = %v, want *Error", err)
	}
	if len(ruleErr.Issues) != 3 {
		t.Errorf("issues = %v, want 3", ruleErr.Issues)
	}
}
