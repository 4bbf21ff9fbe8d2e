// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

package emit

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime"
	"path"
	"regexp"
	"strings"

	"github.com/splitpack/splitpack/lib/fingerprint"
	"github.com/splitpack/splitpack/lib/loaderrule"
	"github.com/splitpack/splitpack/lib/modgraph"
)

// asset is a file a loader writes next to the artifacts.
type asset struct {
	file string
	data []byte
}

// classPattern matches class selectors in a stylesheet.
var classPattern = regexp.MustCompile(`\.(-?[_a-zA-Z][_a-zA-Z0-9-]*)`)

// transformed is a module after its loader ran.
type transformed struct {
	body string

	// style is stylesheet text extracted into the artifact's .css file.
	style string

	asset *asset
}

// transform turns a payload into a module body according to the
// selected loader. Scripts go through compiler; stylesheets are
// extracted; file-emitting loaders also return the asset.
func transform(module *modgraph.Module, payload []byte, selection loaderrule.Selection, compiler Compiler, publicPath string) (transformed, error) {
	sourcePath := module.SourcePath()

	switch selection.Loader {
	case loaderrule.Script, loaderrule.TypeScript:
		body, err := compiler.Compile(string(module.ID), payload)
		if err != nil {
			return transformed{}, fmt.Errorf("module %s: %w", module.ID, err)
		}
		return transformed{body: string(body)}, nil

	case loaderrule.JSON:
		if !json.Valid(payload) {
			return transformed{}, fmt.Errorf("module %s: invalid JSON", module.ID)
		}
		return transformed{body: "module.exports = " + strings.TrimSpace(string(payload)) + ";\n"}, nil

	case loaderrule.URL:
		mediaType := mime.TypeByExtension(path.Ext(sourcePath))
		if mediaType == "" {
			mediaType = "application/octet-stream"
		}
		uri := "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(payload)
		return transformed{body: "module.exports = " + quote(uri) + ";\n"}, nil

	case loaderrule.File:
		name := selection.Name
		if name == "" {
			name = loaderrule.DefaultAssetName
		}
		template, err := ParseTemplate(name)
		if err != nil {
			return transformed{}, fmt.Errorf("module %s: %w", module.ID, err)
		}
		extension := path.Ext(sourcePath)
		base := strings.TrimSuffix(path.Base(sourcePath), extension)
		file := template.Expand(base, extension, fingerprint.Module(payload))
		return transformed{
			body:  "module.exports = " + quote(publicPath+file) + ";\n",
			asset: &asset{file: file, data: payload},
		}, nil

	case loaderrule.CSS:
		return transformed{body: "module.exports = {};\n", style: string(payload)}, nil

	case loaderrule.CSSModules:
		body, style := scopeStylesheet(module.ID, payload)
		return transformed{body: body, style: style}, nil

	default:
		return transformed{}, fmt.Errorf("module %s: no loader %q", module.ID, selection.Loader)
	}
}

// scopeStylesheet renames every class selector in a stylesheet to a
// name unique to the module. It returns a body exporting the
// local-to-scoped map and the rewritten stylesheet. Only selector
// preludes are rewritten: declarations and at-rule preludes
// (url(a.png), @media (min-width: 1.5em)) are left alone.
func scopeStylesheet(id modgraph.ModuleID, payload []byte) (string, string) {
	suffix := "_" + fingerprint.Module([]byte(id)).Short(6)

	classes := make(map[string]string)
	var order []string
	rename := func(selector string) string {
		local := selector[1:]
		if _, seen := classes[local]; !seen {
			classes[local] = local + suffix
			order = append(order, local)
		}
		return "." + classes[local]
	}

	var scoped strings.Builder
	source := string(payload)
	start := 0
	for index := 0; index < len(source); index++ {
		switch source[index] {
		case '{':
			prelude := source[start:index]
			if !strings.HasPrefix(strings.TrimSpace(prelude), "@") {
				prelude = classPattern.ReplaceAllStringFunc(prelude, rename)
			}
			scoped.WriteString(prelude)
			scoped.WriteByte('{')
			start = index + 1
		case '}', ';':
			scoped.WriteString(source[start : index+1])
			start = index + 1
		}
	}
	scoped.WriteString(source[start:])

	var b strings.Builder
	b.WriteString("module.exports = {")
	for index, local := range order {
		if index > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quote(local))
		b.WriteString(": ")
		b.WriteString(quote(classes[local]))
	}
	b.WriteString("};\n")
	return b.String(), scoped.String()
}
