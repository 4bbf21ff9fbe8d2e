// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

// Package loaderrule picks the loader for each module from an ordered
// rule table. The first rule that matches a module's path wins, as in a
// oneOf block: a broad rule early in the table shadows narrower ones
// after it.
//
// A rule matches when any Test pattern matches the path (or Test is
// empty), no Exclude pattern matches, and, if Include is set, some
// Include pattern matches. A rule with a Limit additionally requires
// the module to be at most Limit bytes; a larger module falls through
// to the next matching rule. Modules no rule matches use the built-in
// script loader, or the JSON loader for .json files.
//
// Patterns are regular expressions matched against the module's
// slash-separated, root-relative path.
package loaderrule

import (
	"fmt"
	"path"
	"regexp"

	"github.com/splitpack/splitpack/lib/firstmatch"
)

// Loader names. Rules may only name these.
const (
	Script     = "js"
	JSON       = "json"
	TypeScript = "ts"
	URL        = "url"
	File       = "file"
	CSS        = "css"
	CSSModules = "css-modules"
)

var knownLoaders = map[string]bool{
	Script: true, JSON: true, TypeScript: true, URL: true, File: true, CSS: true, CSSModules: true,
}

// DefaultAssetName is the output template for url and file assets.
const DefaultAssetName = "static/[name].[hash:8].[ext]"

// Rule is one configured loader rule.
type Rule struct {
	Test    []string `yaml:"test,omitempty" json:"test,omitempty"`
	Include []string `yaml:"include,omitempty" json:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty" json:"exclude,omitempty"`
	Loader  string   `yaml:"loader" json:"loader"`

	// Limit is the inline size limit of the url loader in bytes. Zero
	// means no limit.
	Limit int64 `yaml:"limit,omitempty" json:"limit,omitempty"`

	// Name is the output template for assets the rule writes out.
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
}

// Defaults returns the standard rule table: inline small images, compile
// TypeScript under src/, scope class names in application CSS, load
// third-party CSS as is, and emit every other non-script file as an
// asset.
func Defaults() []Rule {
	return []Rule{
		{Test: []string{`\.bmp$`, `\.gif$`, `\.jpe?g$`, `\.png$`}, Loader: URL, Limit: 10000, Name: DefaultAssetName},
		{Test: []string{`\.(ts|tsx)$`}, Include: []string{`^src/`}, Loader: TypeScript},
		{Test: []string{`\.css$`}, Exclude: []string{`node_modules`}, Loader: CSSModules},
		{Test: []string{`\.css$`}, Include: []string{`node_modules`}, Loader: CSS},
		{Exclude: []string{`\.js$`, `\.html$`, `\.json$`}, Loader: File, Name: DefaultAssetName},
	}
}

// Module is what rules match against.
type Module struct {
	// Path is slash-separated and relative to the project root.
	Path string
	Size int64
}

// Selection is the outcome for one module.
type Selection struct {
	Loader string

	// Rule is the index of the matching rule, or -1 for a built-in
	// default.
	Rule int

	// Name is the asset output template, for url and file loaders.
	Name string
}

type compiled struct {
	test    []*regexp.Regexp
	include []*regexp.Regexp
	exclude []*regexp.Regexp
	limit   int64
}

// Set is a compiled rule table.
type Set struct {
	rules []Rule
	table *firstmatch.Table[Module, compiled]
}

// Compile validates and compiles rules. Every problem is reported.
func Compile(rules []Rule) (*Set, error) {
	var issues []string
	matchers := make([]firstmatch.Rule[Module, compiled], len(rules))

	for index, rule := range rules {
		if !knownLoaders[rule.Loader] {
			issues = append(issues, fmt.Sprintf("rules[%d]: unknown loader %q", index, rule.Loader))
		}
		if rule.Limit < 0 {
			issues = append(issues, fmt.Sprintf("rules[%d]: limit must not be negative", index))
		}
		if rule.Limit > 0 && rule.Loader != URL {
			issues = append(issues, fmt.Sprintf("rules[%d]: limit only applies to the %s loader", index, URL))
		}

		compile := func(field string, patterns []string) []*regexp.Regexp {
			result := make([]*regexp.Regexp, 0, len(patterns))
			for _, pattern := range patterns {
				expression, err := regexp.Compile(pattern)
				if err != nil {
					issues = append(issues, fmt.Sprintf("rules[%d].%s: %v", index, field, err))
					continue
				}
				result = append(result, expression)
			}
			return result
		}
		matcher := compiled{
			test:    compile("test", rule.Test),
			include: compile("include", rule.Include),
			exclude: compile("exclude", rule.Exclude),
			limit:   rule.Limit,
		}
		matchers[index] = firstmatch.Rule[Module, compiled]{
			Name:  rule.Loader,
			Match: matcher.matches,
			Value: matcher,
		}
	}
	if len(issues) > 0 {
		return nil, &Error{Issues: issues}
	}

	return &Set{
		rules: append([]Rule(nil), rules...),
		table: firstmatch.New(matchers...),
	}, nil
}

// Error lists rule table problems.
type Error struct {
	Issues []string
}

func (e *Error) Error() string {
	if len(e.Issues) == 1 {
		return "invalid loader rule: " + e.Issues[0]
	}
	return fmt.Sprintf("%d invalid loader rules: %v", len(e.Issues), e.Issues)
}

func (c compiled) matches(module Module) bool {
	if len(c.test) > 0 && !anyMatch(c.test, module.Path) {
		return false
	}
	if len(c.include) > 0 && !anyMatch(c.include, module.Path) {
		return false
	}
	return !anyMatch(c.exclude, module.Path)
}

func anyMatch(expressions []*regexp.Regexp, text string) bool {
	for _, expression := range expressions {
		if expression.MatchString(text) {
			return true
		}
	}
	return false
}

// Select returns the loader for module.
func (s *Set) Select(module Module) Selection {
	for position := s.table.Lookup(module); position >= 0; position = s.table.LookupFrom(module, position+1) {
		rule := s.table.Rule(position).Value
		if rule.limit > 0 && module.Size > rule.limit {
			continue
		}
		return Selection{Loader: s.rules[position].Loader, Rule: position, Name: s.rules[position].Name}
	}
	if path.Ext(module.Path) == ".json" {
		return Selection{Loader: JSON, Rule: -1}
	}
	return Selection{Loader: Script, Rule: -1}
}

// Rules returns the rules the set was compiled from.
func (s *Set) Rules() []Rule {
	return append([]Rule(nil), s.rules...)
}
