// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

package modgraph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"syscall"
)

// DefaultExtensions is the extension search list used when a specifier
// names a file without its extension.
var DefaultExtensions = []string{".ts", ".tsx", ".js", ".jsx", ".json"}

// scannedExtensions are the source kinds whose text is searched for
// specifiers. Anything else (styles, images, JSON) becomes a leaf.
var scannedExtensions = map[string]bool{
	".js": true, ".jsx": true, ".mjs": true, ".cjs": true, ".ts": true, ".tsx": true,
}

// Specifier patterns. Each has exactly one capture group holding the
// quoted specifier. Matches from all patterns are merged by source
// offset so references keep source order.
var specifierPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^[ \t]*import[ \t]+(?:[\w*${}\s,]+?[ \t\n]from[ \t]*)?["']([^"'\n]+)["']`),
	regexp.MustCompile(`(?m)^[ \t]*export[ \t]+[\w*${}\s,]+?[ \t\n]from[ \t]*["']([^"'\n]+)["']`),
	regexp.MustCompile(`\brequire\(\s*["']([^"'\n]+)["']\s*\)`),
	regexp.MustCompile(`\bimport\(\s*["']([^"'\n]+)["']\s*\)`),
}

// FileReader reads source files by slash-separated path relative to the
// scan root.
type FileReader interface {
	ReadFile(ctx context.Context, name string) ([]byte, error)
}

// ScanResolver builds a graph by reading JavaScript and TypeScript
// sources under Root. Module ids are slash-separated paths relative to
// Root.
//
// Relative specifiers ("./x", "../x", "/x") resolve against the
// importing file's directory; bare specifiers resolve under the nearest
// node_modules directory at or above the importer, inside Root. A
// specifier may omit its extension (Extensions are tried in order) or
// name a directory (package.json "main", then index files).
//
// The scan is textual. A specifier inside a comment or string literal
// that looks like an import is followed like a real one.
type ScanResolver struct {
	Root       string
	Extensions []string

	// Files reads module sources. Default reads under Root directly.
	// Existence checks during resolution always use the file system.
	Files FileReader

	Logger *slog.Logger
}

// Resolve implements [Resolver]. EntrySpec.Path is a file path relative
// to Root.
func (r ScanResolver) Resolve(ctx context.Context, entries []EntrySpec) (*Graph, error) {
	if len(entries) == 0 {
		return nil, errors.New("scan resolver: no entries")
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	extensions := r.Extensions
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	root, err := filepath.Abs(r.Root)
	if err != nil {
		return nil, fmt.Errorf("scan resolver: %w", err)
	}

	scanner := &scanner{
		root:       root,
		files:      r.Files,
		extensions: extensions,
		logger:     logger,
		modules:    make(map[ModuleID]*Module),
	}

	graphEntries := make([]Entry, 0, len(entries))
	for _, spec := range entries {
		id, err := scanner.resolveFile(path.Clean(filepath.ToSlash(spec.Path)))
		if err != nil {
			return nil, err
		}
		if id == "" {
			return nil, &UnresolvedError{Entry: spec.Name, Specifier: spec.Path}
		}
		graphEntries = append(graphEntries, Entry{Name: spec.Name, Root: id})
		if err := scanner.walk(ctx, id); err != nil {
			return nil, err
		}
	}

	modules := make([]Module, 0, len(scanner.order))
	for _, id := range scanner.order {
		modules = append(modules, *scanner.modules[id])
	}
	logger.Debug("source scan complete", "root", root, "modules", len(modules), "entries", len(graphEntries))
	return New(modules, graphEntries)
}

type scanner struct {
	root       string
	files      FileReader
	extensions []string
	logger     *slog.Logger
	modules    map[ModuleID]*Module
	order      []ModuleID
}

// walk scans id and everything it references, breadth first. Modules
// already scanned are skipped, which also terminates cycles.
func (s *scanner) walk(ctx context.Context, start ModuleID) error {
	queue := []ModuleID{start}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if _, seen := s.modules[id]; seen {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		module, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		s.modules[id] = module
		s.order = append(s.order, id)
		queue = append(queue, module.References...)
	}
	return nil
}

func (s *scanner) load(ctx context.Context, id ModuleID) (*Module, error) {
	var data []byte
	var err error
	if s.files != nil {
		data, err = s.files.ReadFile(ctx, string(id))
	} else {
		data, err = os.ReadFile(filepath.Join(s.root, filepath.FromSlash(string(id))))
	}
	if err != nil {
		return nil, fmt.Errorf("reading module %s: %w", id, err)
	}
	module := &Module{ID: id, Size: int64(len(data))}

	if !scannedExtensions[path.Ext(string(id))] {
		return module, nil
	}

	seen := make(map[ModuleID]bool)
	for _, specifier := range extractSpecifiers(string(data)) {
		target, err := s.resolveSpecifier(id, specifier)
		if err != nil {
			return nil, err
		}
		if target == "" {
			return nil, &UnresolvedError{From: id, Specifier: specifier}
		}
		if module.Imports == nil {
			module.Imports = make(map[string]ModuleID)
		}
		module.Imports[specifier] = target
		if seen[target] || target == id {
			continue
		}
		seen[target] = true
		module.References = append(module.References, target)
	}
	s.logger.Debug("scanned module", "module", id, "references", len(module.References))
	return module, nil
}

// extractSpecifiers returns the quoted specifiers in source order.
func extractSpecifiers(source string) []string {
	type match struct {
		offset    int
		specifier string
	}
	var matches []match
	for _, pattern := range specifierPatterns {
		for _, indexes := range pattern.FindAllStringSubmatchIndex(source, -1) {
			matches = append(matches, match{offset: indexes[2], specifier: source[indexes[2]:indexes[3]]})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].offset < matches[j].offset })

	specifiers := make([]string, 0, len(matches))
	lastOffset := -1
	for _, m := range matches {
		// The export pattern can run past a declaration into the next
		// import statement and capture the same specifier.
		if m.offset == lastOffset {
			continue
		}
		lastOffset = m.offset
		specifiers = append(specifiers, m.specifier)
	}
	return specifiers
}

// resolveSpecifier maps a specifier written in module from to a module
// id. Returns "" when nothing matches.
func (s *scanner) resolveSpecifier(from ModuleID, specifier string) (ModuleID, error) {
	if strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../") || specifier == "." || specifier == ".." {
		return s.resolveFile(path.Join(path.Dir(string(from)), specifier))
	}
	if strings.HasPrefix(specifier, "/") {
		return s.resolveFile(path.Clean(strings.TrimPrefix(specifier, "/")))
	}

	// Bare specifier: walk up from the importer looking for
	// node_modules, never leaving the root.
	directory := path.Dir(string(from))
	for {
		candidate := path.Join(directory, "node_modules", specifier)
		id, err := s.resolveFile(candidate)
		if err != nil || id != "" {
			return id, err
		}
		if directory == "." || directory == "/" || directory == "" {
			return "", nil
		}
		directory = path.Dir(directory)
	}
}

// resolveFile resolves a root-relative slash path to an existing file,
// trying it as written, with each extension, and as a directory.
func (s *scanner) resolveFile(relative string) (ModuleID, error) {
	if relative == ".." || strings.HasPrefix(relative, "../") {
		return "", nil
	}

	if info, err := s.stat(relative); err != nil {
		return "", err
	} else if info != nil && !info.IsDir() {
		return ModuleID(relative), nil
	}

	for _, extension := range s.extensions {
		info, err := s.stat(relative + extension)
		if err != nil {
			return "", err
		}
		if info != nil && !info.IsDir() {
			return ModuleID(relative + extension), nil
		}
	}

	info, err := s.stat(relative)
	if err != nil || info == nil || !info.IsDir() {
		return "", err
	}

	main, err := s.packageMain(relative)
	if err != nil {
		return "", err
	}
	if main != "" {
		id, err := s.resolveFile(path.Join(relative, main))
		if err != nil || id != "" {
			return id, err
		}
	}
	for _, extension := range s.extensions {
		index := path.Join(relative, "index"+extension)
		info, err := s.stat(index)
		if err != nil {
			return "", err
		}
		if info != nil && !info.IsDir() {
			return ModuleID(index), nil
		}
	}
	return "", nil
}

// stat returns nil info (and nil error) when the path does not exist.
func (s *scanner) stat(relative string) (fs.FileInfo, error) {
	info, err := os.Stat(filepath.Join(s.root, filepath.FromSlash(relative)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrInvalid) {
			return nil, nil
		}
		if errors.Is(err, syscall.ENOTDIR) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolving %s: %w", relative, err)
	}
	return info, nil
}

func (s *scanner) packageMain(directory string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(directory), "package.json"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("reading %s/package.json: %w", directory, err)
	}
	var manifest struct {
		Main string `json:"main"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return "", fmt.Errorf("parsing %s/package.json: %w", directory, err)
	}
	return manifest.Main, nil
}
