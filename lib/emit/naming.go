// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

package emit

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/splitpack/splitpack/lib/fingerprint"
)

// placeholderPattern matches [name], [ext], [hash] and [hash:N].
var placeholderPattern = regexp.MustCompile(`\[([a-z]+)(?::(\d+))?\]`)

// Template is a parsed file name template.
type Template struct {
	text     string
	wantHash bool
}

// ParseTemplate checks a file name template. Known placeholders are
// [name], [ext], [hash] (full fingerprint) and [hash:N] (first N hex
// characters).
func ParseTemplate(text string) (Template, error) {
	if text == "" {
		return Template{}, fmt.Errorf("empty file name template")
	}
	template := Template{text: text}
	for _, match := range placeholderPattern.FindAllStringSubmatch(text, -1) {
		switch match[1] {
		case "name", "ext":
			if match[2] != "" {
				return Template{}, fmt.Errorf("template %q: [%s] takes no length", text, match[1])
			}
		case "hash":
			template.wantHash = true
			if match[2] != "" {
				if length, err := strconv.Atoi(match[2]); err != nil || length < 1 || length > 2*fingerprint.Size {
					return Template{}, fmt.Errorf("template %q: hash length must be 1..%d", text, 2*fingerprint.Size)
				}
			}
		default:
			return Template{}, fmt.Errorf("template %q: unknown placeholder [%s]", text, match[1])
		}
	}
	return template, nil
}

// MustParseTemplate is ParseTemplate for constant templates.
func MustParseTemplate(text string) Template {
	template, err := ParseTemplate(text)
	if err != nil {
		panic(err)
	}
	return template
}

// String returns the template text.
func (t Template) String() string {
	return t.text
}

// HasHash reports whether the template embeds a fingerprint.
func (t Template) HasHash() bool {
	return t.wantHash
}

// Expand fills in the template. ext is given without its leading dot.
func (t Template) Expand(name, ext string, hash fingerprint.Hash) string {
	return placeholderPattern.ReplaceAllStringFunc(t.text, func(placeholder string) string {
		match := placeholderPattern.FindStringSubmatch(placeholder)
		switch match[1] {
		case "name":
			return name
		case "ext":
			return strings.TrimPrefix(ext, ".")
		case "hash":
			length, _ := strconv.Atoi(match[2])
			return hash.Short(length)
		}
		return placeholder
	})
}
