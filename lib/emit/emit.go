// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

package emit

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"runtime"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/splitpack/splitpack/lib/candidate"
	"github.com/splitpack/splitpack/lib/chunk"
	"github.com/splitpack/splitpack/lib/compress"
	"github.com/splitpack/splitpack/lib/fingerprint"
	"github.com/splitpack/splitpack/lib/loaderrule"
	"github.com/splitpack/splitpack/lib/manifest"
	"github.com/splitpack/splitpack/lib/modgraph"
	"github.com/splitpack/splitpack/lib/source"
	"github.com/splitpack/splitpack/lib/transpile"
)

// DefaultFilename is the private bundle template.
const DefaultFilename = "[name].js"

// Writer stores emitted files. Write is called concurrently with
// distinct names.
type Writer interface {
	Write(name string, data []byte) error
}

// Compiler turns a script or TypeScript module, named by its module
// id, into a CommonJS body. It is called concurrently.
type Compiler interface {
	Compile(file string, source []byte) ([]byte, error)
}

// Options configures an Emitter.
type Options struct {
	// Filename is the private bundle template. Default DefaultFilename.
	Filename string

	// ChunkFilename is the template for shared chunks whose candidate
	// names none. Default candidate.DefaultChunkFilename.
	ChunkFilename string

	// Compression selects precompressed sidecars. Default none.
	Compression compress.Algorithm

	// Concurrency bounds parallel module loading and artifact
	// rendering. Default runtime.GOMAXPROCS(0).
	Concurrency int

	// PublicPath prefixes asset URLs and is recorded in the manifest.
	PublicPath string

	// Rules selects loaders. Default loaderrule.Defaults().
	Rules *loaderrule.Set

	// Source loads module payloads. Required.
	Source source.Loader

	// Compiler compiles js and ts modules. Default a transpile.Compiler
	// targeting transpile.DefaultTarget.
	Compiler Compiler

	// Reserved names files the caller writes itself, such as the
	// manifest. An artifact or asset expanding to one is an error.
	Reserved []string

	Logger *slog.Logger
}

// Emitter serializes an assignment into artifacts.
type Emitter struct {
	options       Options
	filename      Template
	chunkFilename Template
	logger        *slog.Logger
}

// New validates options and returns an Emitter.
func New(options Options) (*Emitter, error) {
	if options.Source == nil {
		return nil, fmt.Errorf("emit: no source loader")
	}
	if options.Filename == "" {
		options.Filename = DefaultFilename
	}
	if options.ChunkFilename == "" {
		options.ChunkFilename = candidate.DefaultChunkFilename
	}
	if options.Compression == "" {
		options.Compression = compress.None
	}
	if _, err := compress.Parse(string(options.Compression)); err != nil {
		return nil, err
	}
	if options.Concurrency <= 0 {
		options.Concurrency = runtime.GOMAXPROCS(0)
	}
	if options.Compiler == nil {
		compiler, err := transpile.New(transpile.Options{})
		if err != nil {
			return nil, err
		}
		options.Compiler = compiler
	}
	if options.Rules == nil {
		rules, err := loaderrule.Compile(loaderrule.Defaults())
		if err != nil {
			return nil, err
		}
		options.Rules = rules
	}

	filename, err := ParseTemplate(options.Filename)
	if err != nil {
		return nil, fmt.Errorf("output filename: %w", err)
	}
	chunkFilename, err := ParseTemplate(options.ChunkFilename)
	if err != nil {
		return nil, fmt.Errorf("output chunk filename: %w", err)
	}

	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Emitter{options: options, filename: filename, chunkFilename: chunkFilename, logger: logger}, nil
}

// preparedModule is a module after loading and loader transformation.
type preparedModule struct {
	rendered *renderedModule
	loader   string
	style    string
	asset    *asset
	bytes    int64
}

// job is one artifact to render.
type job struct {
	kind     manifest.Kind
	name     string
	template Template
	members  []modgraph.ModuleID
	root     modgraph.ModuleID
	loadedBy []string

	data        []byte
	file        string
	hash        fingerprint.Hash
	sidecars    []manifest.Sidecar
	sidecarData [][]byte

	// The extracted stylesheet, when any member has one.
	style            []byte
	styleFile        string
	styleHash        fingerprint.Hash
	styleSidecars    []manifest.Sidecar
	styleSidecarData [][]byte
}

// Emit renders every shared chunk and private bundle of assignment,
// writes them and their assets through writer, and returns the
// manifest. Nothing is written if any module fails to load or two
// outputs would share a file name.
func (e *Emitter) Emit(ctx context.Context, assignment *chunk.Assignment, writer Writer) (*manifest.Manifest, error) {
	graph := assignment.Graph()

	prepared, err := e.prepare(ctx, assignment)
	if err != nil {
		return nil, err
	}

	jobs, err := e.plan(assignment)
	if err != nil {
		return nil, err
	}

	group, groupContext := errgroup.WithContext(ctx)
	group.SetLimit(e.options.Concurrency)
	for _, current := range jobs {
		group.Go(func() error {
			if err := groupContext.Err(); err != nil {
				return err
			}
			return e.render(current, prepared)
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	files, err := collectFiles(jobs, prepared, e.options.Reserved)
	if err != nil {
		return nil, err
	}

	group, groupContext = errgroup.WithContext(ctx)
	group.SetLimit(e.options.Concurrency)
	for _, file := range files {
		group.Go(func() error {
			if err := groupContext.Err(); err != nil {
				return err
			}
			if err := writer.Write(file.name, file.data); err != nil {
				return fmt.Errorf("writing %s: %w", file.name, err)
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	result := e.assemble(graph, assignment, jobs, prepared)
	e.logger.Info("emitted artifacts",
		"shared_chunks", result.Stats.SharedChunks,
		"private_bundles", result.Stats.PrivateBundles,
		"files", len(files),
	)
	return result, nil
}

// prepare loads and transforms every placed module once, however many
// bundles it is copied into.
func (e *Emitter) prepare(ctx context.Context, assignment *chunk.Assignment) (map[modgraph.ModuleID]*preparedModule, error) {
	graph := assignment.Graph()

	var placed []*modgraph.Module
	for _, id := range graph.LoadOrder() {
		if _, ok := assignment.Placement(id); ok {
			module, _ := graph.Module(id)
			placed = append(placed, module)
		}
	}

	results := make([]*preparedModule, len(placed))
	group, groupContext := errgroup.WithContext(ctx)
	group.SetLimit(e.options.Concurrency)
	for index, module := range placed {
		group.Go(func() error {
			payload, err := e.options.Source.Load(groupContext, module)
			if err != nil {
				return err
			}
			selection := e.options.Rules.Select(loaderrule.Module{Path: module.SourcePath(), Size: int64(len(payload))})
			output, err := transform(module, payload, selection, e.options.Compiler, e.options.PublicPath)
			if err != nil {
				return err
			}
			results[index] = &preparedModule{
				rendered: &renderedModule{id: module.ID, imports: module.Imports, body: output.body},
				loader:   selection.Loader,
				style:    output.style,
				asset:    output.asset,
				bytes:    int64(len(payload)),
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	prepared := make(map[modgraph.ModuleID]*preparedModule, len(placed))
	for index, module := range placed {
		prepared[module.ID] = results[index]
	}
	e.logger.Debug("prepared modules", "modules", len(prepared))
	return prepared, nil
}

// plan lists the artifacts in manifest order: shared chunks by
// priority, then private bundles by entry.
func (e *Emitter) plan(assignment *chunk.Assignment) ([]*job, error) {
	graph := assignment.Graph()
	names := graph.EntryNames()
	chunks := assignment.Chunks()
	loads := assignment.ChunkLoads()

	loadedBy := make([][]string, len(chunks))
	for position, indices := range loads {
		for _, index := range indices {
			loadedBy[index] = append(loadedBy[index], names[position])
		}
	}

	var jobs []*job
	for index, shared := range chunks {
		template := e.chunkFilename
		if shared.Filename != "" {
			parsed, err := ParseTemplate(shared.Filename)
			if err != nil {
				return nil, fmt.Errorf("chunk %q filename: %w", shared.Name, err)
			}
			template = parsed
		}
		jobs = append(jobs, &job{
			kind:     manifest.Shared,
			name:     shared.Name,
			template: template,
			members:  shared.Members,
			loadedBy: loadedBy[index],
		})
	}

	entries := graph.Entries()
	for _, bundle := range assignment.Bundles() {
		jobs = append(jobs, &job{
			kind:     manifest.Private,
			name:     bundle.Entry,
			template: e.filename,
			members:  bundle.Members,
			root:     entries[bundle.Position].Root,
			loadedBy: []string{bundle.Entry},
		})
	}
	return jobs, nil
}

// render serializes one artifact, its extracted stylesheet and their
// sidecars in memory.
func (e *Emitter) render(current *job, prepared map[modgraph.ModuleID]*preparedModule) error {
	modules := make([]*renderedModule, len(current.members))
	var style strings.Builder
	for index, id := range current.members {
		module := prepared[id]
		modules[index] = module.rendered
		if module.style == "" {
			continue
		}
		style.WriteString(module.style)
		if !strings.HasSuffix(module.style, "\n") {
			style.WriteByte('\n')
		}
	}

	var buffer bytes.Buffer
	if err := writeArtifact(&buffer, modules, current.root); err != nil {
		return fmt.Errorf("rendering %s: %w", current.name, err)
	}
	current.data = buffer.Bytes()
	current.hash = fingerprint.Artifact(current.data)
	current.file = current.template.Expand(current.name, "js", current.hash)
	sidecars, sidecarData, err := e.compress(current.file, current.data)
	if err != nil {
		return err
	}
	current.sidecars, current.sidecarData = sidecars, sidecarData

	if style.Len() > 0 {
		current.style = []byte(style.String())
		current.styleHash = fingerprint.Artifact(current.style)
		current.styleFile = stylesheetName(current.template, current.name, current.styleHash)
		sidecars, sidecarData, err := e.compress(current.styleFile, current.style)
		if err != nil {
			return err
		}
		current.styleSidecars, current.styleSidecarData = sidecars, sidecarData
	}

	e.logger.Debug("rendered artifact", "artifact", current.file, "modules", len(modules), "bytes", len(current.data), "stylesheet", current.styleFile)
	return nil
}

// compress returns the precompressed sidecar of file, if one is
// configured and worth writing.
func (e *Emitter) compress(file string, data []byte) ([]manifest.Sidecar, [][]byte, error) {
	if e.options.Compression == compress.None {
		return nil, nil, nil
	}
	compressed, err := compress.Compress(data, e.options.Compression)
	switch {
	case compress.IsIncompressible(err):
		e.logger.Debug("skipping sidecar for incompressible file", "file", file)
		return nil, nil, nil
	case err != nil:
		return nil, nil, fmt.Errorf("compressing %s: %w", file, err)
	}
	sidecar := manifest.Sidecar{
		File:        file + e.options.Compression.Extension(),
		Compression: string(e.options.Compression),
		Bytes:       int64(len(compressed)),
	}
	return []manifest.Sidecar{sidecar}, [][]byte{compressed}, nil
}

// stylesheetName names an artifact's stylesheet with the artifact's
// template: [hash] comes from the stylesheet contents and a trailing
// .js becomes .css, so "[name].js" yields "popup.css".
func stylesheetName(template Template, name string, hash fingerprint.Hash) string {
	file := template.Expand(name, "css", hash)
	switch {
	case strings.HasSuffix(file, ".css"):
		return file
	case strings.HasSuffix(file, ".js"):
		return strings.TrimSuffix(file, ".js") + ".css"
	default:
		return file + ".css"
	}
}

// outputFile is one file to write.
type outputFile struct {
	name string
	data []byte
}

// collectFiles lists every file to write and rejects name collisions.
// Identical assets from different modules share a file.
func collectFiles(jobs []*job, prepared map[modgraph.ModuleID]*preparedModule, reserved []string) ([]outputFile, error) {
	var files []outputFile
	owners := make(map[string]string)
	for _, name := range reserved {
		owners[name] = "the build"
	}
	claim := func(name, owner string, data []byte) error {
		if previous, exists := owners[name]; exists {
			return fmt.Errorf("%s and %s both write %s", previous, owner, name)
		}
		owners[name] = owner
		files = append(files, outputFile{name: name, data: data})
		return nil
	}

	for _, current := range jobs {
		owner := fmt.Sprintf("%s %q", current.kind, current.name)
		if err := claim(current.file, owner, current.data); err != nil {
			return nil, err
		}
		for index, sidecar := range current.sidecars {
			if err := claim(sidecar.File, owner, current.sidecarData[index]); err != nil {
				return nil, err
			}
		}
		if current.style == nil {
			continue
		}
		if err := claim(current.styleFile, owner, current.style); err != nil {
			return nil, err
		}
		for index, sidecar := range current.styleSidecars {
			if err := claim(sidecar.File, owner, current.styleSidecarData[index]); err != nil {
				return nil, err
			}
		}
	}

	assets := make(map[string][]byte)
	for _, id := range sortedIDs(prepared) {
		emitted := prepared[id].asset
		if emitted == nil {
			continue
		}
		if existing, ok := assets[emitted.file]; ok {
			if !bytes.Equal(existing, emitted.data) {
				return nil, fmt.Errorf("module %s and another module both write asset %s", id, emitted.file)
			}
			continue
		}
		assets[emitted.file] = emitted.data
		if err := claim(emitted.file, "module "+string(id), emitted.data); err != nil {
			return nil, err
		}
	}
	return files, nil
}

func sortedIDs(prepared map[modgraph.ModuleID]*preparedModule) []modgraph.ModuleID {
	return slices.Sorted(maps.Keys(prepared))
}

// assemble builds the manifest from rendered jobs.
func (e *Emitter) assemble(graph *modgraph.Graph, assignment *chunk.Assignment, jobs []*job, prepared map[modgraph.ModuleID]*preparedModule) *manifest.Manifest {
	result := &manifest.Manifest{
		Version:    manifest.Version,
		PublicPath: e.options.PublicPath,
		Entries:    make(map[string][]string, len(graph.Entries())),
		Modules:    make(map[modgraph.ModuleID]manifest.Module, len(prepared)),
	}

	// A stylesheet loads just before its script.
	files := func(current *job) []string {
		if current.style == nil {
			return []string{current.file}
		}
		return []string{current.styleFile, current.file}
	}

	sharedFiles := make([][]string, 0, len(jobs))
	for _, current := range jobs {
		artifact := manifest.Artifact{
			File:     current.file,
			Name:     current.name,
			Kind:     current.kind,
			Members:  append([]modgraph.ModuleID{}, current.members...),
			LoadedBy: append([]string{}, current.loadedBy...),
			Hash:     current.hash.String(),
			Bytes:    int64(len(current.data)),
			Sidecars: current.sidecars,
		}
		if current.style != nil {
			artifact.Stylesheet = &manifest.Stylesheet{
				File:     current.styleFile,
				Hash:     current.styleHash.String(),
				Bytes:    int64(len(current.style)),
				Sidecars: current.styleSidecars,
			}
		}
		result.Artifacts = append(result.Artifacts, artifact)
		switch current.kind {
		case manifest.Shared:
			sharedFiles = append(sharedFiles, files(current))
			result.Stats.SharedChunks++
		case manifest.Private:
			result.Stats.PrivateBundles++
		}
	}

	loads := assignment.ChunkLoads()
	for _, current := range jobs {
		if current.kind != manifest.Private {
			continue
		}
		position, _ := graph.EntryPosition(current.name)
		var order []string
		for _, index := range loads[position] {
			order = append(order, sharedFiles[index]...)
		}
		result.Entries[current.name] = append(order, files(current)...)
	}

	for id, module := range prepared {
		record := manifest.Module{Loader: module.loader, Bytes: module.bytes}
		if module.asset != nil {
			record.Asset = module.asset.file
		}
		result.Modules[id] = record
	}

	result.Stats.Modules = graph.Len()
	result.Stats.Reachable = len(prepared)
	result.Stats.Pruned = graph.Len() - len(prepared)
	for _, id := range assignment.Duplicated() {
		placement, _ := assignment.Placement(id)
		result.Stats.DuplicatedModules++
		result.Stats.DuplicatedBytes += prepared[id].bytes * int64(placement.Entries.Len()-1)
	}
	return result
}
