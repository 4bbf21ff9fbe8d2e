// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Markdown renders the summary as a GitHub-flavoured Markdown document.
func Markdown(summary Summary) string {
	var b strings.Builder
	b.WriteString("# Build report\n\n")
	b.WriteString(statsLine(summary.Stats))
	b.WriteString(".\n\n")

	b.WriteString("| Artifact | Kind | Modules | Size | Loaded by |\n")
	b.WriteString("|---|---|--:|--:|---|\n")
	for _, row := range summary.Rows {
		fmt.Fprintf(&b, "| `%s` | %s | %d | %s | %s |\n",
			row.label(), row.Kind, len(row.Members), formatBytes(row.Bytes), escapeCell(strings.Join(row.LoadedBy, ", ")))
	}

	b.WriteString("\n## Load order\n\n")
	for _, entry := range summary.EntryOrder {
		loads := make([]string, len(summary.Entries[entry]))
		for index, file := range summary.Entries[entry] {
			loads[index] = "`" + file + "`"
		}
		fmt.Fprintf(&b, "- **%s**: %s\n", entry, joinLoads(loads))
	}
	return b.String()
}

func escapeCell(text string) string {
	return strings.ReplaceAll(text, "|", `\|`)
}

var markdownConverter = goldmark.New(goldmark.WithExtensions(extension.GFM))

// HTML renders the Markdown report as a standalone HTML page.
func HTML(summary Summary) ([]byte, error) {
	var body bytes.Buffer
	if err := markdownConverter.Convert([]byte(Markdown(summary)), &body); err != nil {
		return nil, fmt.Errorf("rendering report: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>Build report</title>\n")
	page.WriteString("<style>body{font-family:sans-serif;margin:2em}table{border-collapse:collapse}td,th{border:1px solid #ccc;padding:.25em .5em}</style>\n")
	page.WriteString("</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}
