// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

// Package build runs the splitpack pipeline for a configuration:
// resolve the module graph, index reachability, assign chunks, and,
// for a full build, emit artifacts and the manifest into the output
// directory.
package build

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/splitpack/splitpack/lib/chunk"
	"github.com/splitpack/splitpack/lib/compress"
	"github.com/splitpack/splitpack/lib/config"
	"github.com/splitpack/splitpack/lib/emit"
	"github.com/splitpack/splitpack/lib/loaderrule"
	"github.com/splitpack/splitpack/lib/manifest"
	"github.com/splitpack/splitpack/lib/modgraph"
	"github.com/splitpack/splitpack/lib/outdir"
	"github.com/splitpack/splitpack/lib/reach"
	"github.com/splitpack/splitpack/lib/source"
	"github.com/splitpack/splitpack/lib/transpile"
)

// Manifest file names, written next to the artifacts.
const (
	ManifestJSON = "manifest.json"
	ManifestCBOR = "manifest.cbor"
)

// Options configures a pipeline run.
type Options struct {
	Config *config.Config

	// Resolver overrides the resolver the configuration implies: a
	// graph description when paths.graph is set, source scanning
	// otherwise.
	Resolver modgraph.Resolver

	// Source overrides the payload loader. Default reads paths.root.
	// A Source that is also a modgraph.FileReader, such as a
	// *source.Dir, serves the source scan too.
	Source source.Loader

	// Writer overrides the output directory. Manifests go through it
	// too. Default locks and writes paths.output.
	Writer emit.Writer

	// Wait blocks on a locked output directory instead of failing.
	Wait bool

	Logger *slog.Logger
}

// Result is everything a run produced.
type Result struct {
	Graph      *modgraph.Graph
	Index      *reach.Index
	Assignment *chunk.Assignment

	// Manifest is nil for a plan.
	Manifest *manifest.Manifest
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Logger
}

// Plan resolves, indexes and assigns without writing anything.
func Plan(ctx context.Context, options Options) (*Result, error) {
	if options.Config == nil {
		return nil, fmt.Errorf("build: no configuration")
	}
	files, _ := options.Source.(modgraph.FileReader)
	return plan(ctx, options, files)
}

// plan is Plan with the scan reading through files, when set.
func plan(ctx context.Context, options Options, files modgraph.FileReader) (*Result, error) {
	cfg := options.Config
	logger := options.logger()

	list, err := cfg.CandidateList()
	if err != nil {
		return nil, err
	}

	resolver := options.Resolver
	if resolver == nil {
		resolver = Resolver(cfg, files, logger)
	}
	entries, err := entrySpecs(cfg)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	graph, err := resolver.Resolve(ctx, entries)
	if err != nil {
		return nil, fmt.Errorf("resolving module graph: %w", err)
	}
	logger.Info("module graph resolved",
		"modules", graph.Len(),
		"entries", len(graph.Entries()),
		"duration", time.Since(start),
	)

	start = time.Now()
	index, err := reach.Build(ctx, graph)
	if err != nil {
		return nil, err
	}
	if pruned := index.Pruned(); len(pruned) > 0 {
		logger.Debug("pruned unreachable modules", "modules", len(pruned))
	}

	assignment, err := chunk.Assign(index, list)
	if err != nil {
		return nil, err
	}
	if err := assignment.Verify(index); err != nil {
		return nil, fmt.Errorf("chunk assignment is not a partition: %w", err)
	}
	logger.Info("chunks assigned",
		"candidates", list.Len(),
		"shared_chunks", len(assignment.Chunks()),
		"duplicated_modules", len(assignment.Duplicated()),
		"duration", time.Since(start),
	)

	return &Result{Graph: graph, Index: index, Assignment: assignment}, nil
}

// Run plans, then emits artifacts and writes manifest.json and
// manifest.cbor. The output directory stays locked until everything is
// written.
func Run(ctx context.Context, options Options) (*Result, error) {
	if options.Config == nil {
		return nil, fmt.Errorf("build: no configuration")
	}
	cfg := options.Config
	logger := options.logger()

	// One cached Dir serves the source scan and the emitter, so each
	// file is read once.
	loader := options.Source
	if loader == nil {
		directory, err := source.NewDir(cfg.Paths.Root, 0)
		if err != nil {
			return nil, err
		}
		defer func() {
			hits, misses := directory.Stats()
			logger.Debug("source cache", "hits", hits, "misses", misses)
		}()
		loader = directory
	}
	files, _ := loader.(modgraph.FileReader)

	result, err := plan(ctx, options, files)
	if err != nil {
		return nil, err
	}

	writer := options.Writer
	if writer == nil {
		directory, err := outdir.Open(cfg.Paths.Output, options.Wait)
		if err != nil {
			return nil, err
		}
		defer directory.Close()
		writer = directory
	}

	rules, err := loaderrule.Compile(cfg.LoaderRules())
	if err != nil {
		return nil, err
	}
	compiler, err := transpile.New(transpile.Options{Target: cfg.Output.Target, Minify: cfg.Output.Minify})
	if err != nil {
		return nil, err
	}
	emitter, err := emit.New(emit.Options{
		Filename:      cfg.Output.Filename,
		ChunkFilename: cfg.Output.ChunkFilename,
		Compression:   compress.Algorithm(cfg.Output.Compression),
		Concurrency:   cfg.Output.Concurrency,
		PublicPath:    cfg.Output.PublicPath,
		Rules:         rules,
		Source:        loader,
		Compiler:      compiler,
		Reserved:      []string{ManifestJSON, ManifestCBOR},
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}

	start := time.Now()
	emitted, err := emitter.Emit(ctx, result.Assignment, writer)
	if err != nil {
		return nil, err
	}
	if issues := emitted.Validate(); len(issues) > 0 {
		return nil, fmt.Errorf("emitted manifest is inconsistent: %v", issues)
	}

	jsonData, err := emitted.EncodeJSON()
	if err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	cborData, err := emitted.EncodeCBOR()
	if err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	if err := writer.Write(ManifestJSON, jsonData); err != nil {
		return nil, fmt.Errorf("writing %s: %w", ManifestJSON, err)
	}
	if err := writer.Write(ManifestCBOR, cborData); err != nil {
		return nil, fmt.Errorf("writing %s: %w", ManifestCBOR, err)
	}
	logger.Info("build complete",
		"output", cfg.Paths.Output,
		"artifacts", len(emitted.Artifacts),
		"duration", time.Since(start),
	)

	result.Manifest = emitted
	return result, nil
}

// Resolver returns the resolver cfg implies. A scan reads sources
// through files when it is not nil.
func Resolver(cfg *config.Config, files modgraph.FileReader, logger *slog.Logger) modgraph.Resolver {
	if cfg.Paths.Graph != "" {
		return modgraph.FileResolver{Path: cfg.Paths.Graph}
	}
	return modgraph.ScanResolver{
		Root:       cfg.Paths.Root,
		Extensions: cfg.Resolve.Extensions,
		Files:      files,
		Logger:     logger,
	}
}

// entrySpecs converts configured entries for a resolver. Absolute entry
// roots under paths.root become root-relative; graph files name module
// ids, which are left alone.
func entrySpecs(cfg *config.Config) ([]modgraph.EntrySpec, error) {
	specs := make([]modgraph.EntrySpec, len(cfg.Entries))
	for index, entry := range cfg.Entries {
		specs[index] = entry
		if cfg.Paths.Graph != "" || !filepath.IsAbs(entry.Path) {
			continue
		}
		relative, err := filepath.Rel(cfg.Paths.Root, entry.Path)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", entry.Name, err)
		}
		specs[index].Path = filepath.ToSlash(relative)
	}
	return specs, nil
}
