// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/splitpack/splitpack/lib/manifest"
)

// TerminalOptions controls Terminal output.
type TerminalOptions struct {
	// Width is the terminal width; 0 means 100 columns.
	Width int

	// Profile is the colour profile. termenv.Ascii disables styling.
	Profile termenv.Profile

	// Members lists each artifact's modules under its row.
	Members bool
}

var (
	sharedColor  = lipgloss.Color("39")
	privateColor = lipgloss.Color("214")
	faintColor   = lipgloss.Color("245")
	headerColor  = lipgloss.Color("252")
)

// Terminal writes the summary as an aligned, coloured table.
func Terminal(w io.Writer, summary Summary, options TerminalOptions) error {
	width := options.Width
	if width <= 0 {
		width = 100
	}
	renderer := lipgloss.NewRenderer(w, termenv.WithProfile(options.Profile))
	renderer.SetColorProfile(options.Profile)

	header := renderer.NewStyle().Bold(true).Foreground(headerColor)
	faint := renderer.NewStyle().Foreground(faintColor)
	kindStyle := map[manifest.Kind]lipgloss.Style{
		manifest.Shared:  renderer.NewStyle().Foreground(sharedColor),
		manifest.Private: renderer.NewStyle().Foreground(privateColor),
	}

	const (
		kindWidth    = 8
		modulesWidth = 8
		bytesWidth   = 10
	)
	nameWidth := 4
	for _, row := range summary.Rows {
		nameWidth = max(nameWidth, ansi.StringWidth(row.label()))
	}
	// Whatever is left after the fixed columns goes to loaded-by.
	nameWidth = min(nameWidth, max(16, width/3))
	loadedWidth := max(10, width-nameWidth-kindWidth-modulesWidth-bytesWidth-8)

	cell := func(text string, cellWidth int, right bool) string {
		text = ansi.Truncate(text, cellWidth, "…")
		padding := strings.Repeat(" ", max(0, cellWidth-ansi.StringWidth(text)))
		if right {
			return padding + text
		}
		return text + padding
	}

	var b strings.Builder
	b.WriteString(header.Render(strings.Join([]string{
		cell("ARTIFACT", nameWidth, false),
		cell("KIND", kindWidth, false),
		cell("MODULES", modulesWidth, true),
		cell("SIZE", bytesWidth, true),
		cell("LOADED BY", loadedWidth, false),
	}, "  ")))
	b.WriteString("\n")

	for _, row := range summary.Rows {
		b.WriteString(strings.Join([]string{
			cell(row.label(), nameWidth, false),
			kindStyle[row.Kind].Render(cell(string(row.Kind), kindWidth, false)),
			cell(fmt.Sprint(len(row.Members)), modulesWidth, true),
			cell(formatBytes(row.Bytes), bytesWidth, true),
			cell(strings.Join(row.LoadedBy, ","), loadedWidth, false),
		}, "  "))
		b.WriteString("\n")
		if options.Members {
			for _, id := range row.Members {
				b.WriteString(faint.Render("  " + ansi.Truncate(string(id), width-2, "…")))
				b.WriteString("\n")
			}
		}
	}

	b.WriteString("\n")
	b.WriteString(header.Render("Load order"))
	b.WriteString("\n")
	for _, entry := range summary.EntryOrder {
		line := fmt.Sprintf("  %s: %s", entry, joinLoads(summary.Entries[entry]))
		b.WriteString(ansi.Wrap(line, width, " ,"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(faint.Render(ansi.Wrap(statsLine(summary.Stats), width, " ,;")))
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}
