// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

// Package manifest describes the artifacts of one build and the order
// each entry loads them in.
//
// The manifest is written twice: manifest.json for people and tooling,
// manifest.cbor (deterministic CBOR, see lib/codec) for packaging
// scripts. Both encodings of the same build are byte-identical across
// runs: artifacts are listed in a fixed order (shared chunks by
// candidate priority, then private bundles by entry order) and every
// map is keyed by string.
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/splitpack/splitpack/lib/codec"
	"github.com/splitpack/splitpack/lib/modgraph"
)

// Version is the manifest format version. Readers reject manifests
// with a newer version.
const Version = 1

// Kind distinguishes shared chunks from entry-private bundles.
type Kind string

const (
	Shared  Kind = "shared"
	Private Kind = "private"
)

// Manifest is the record of one build.
type Manifest struct {
	Version int `json:"version"`

	// PublicPath is the URL prefix artifacts are served from, copied
	// from the build configuration.
	PublicPath string `json:"public_path,omitempty"`

	// Artifacts lists shared chunks in candidate priority order, then
	// private bundles in entry order.
	Artifacts []Artifact `json:"artifacts"`

	// Entries maps an entry name to the files it loads, in load order:
	// shared chunks first, its private bundle last. An artifact's
	// stylesheet comes immediately before the artifact.
	Entries map[string][]string `json:"entries"`

	// Modules records per-module details for every placed module.
	Modules map[modgraph.ModuleID]Module `json:"modules,omitempty"`

	Stats Stats `json:"stats"`
}

// Artifact is one emitted file.
type Artifact struct {
	// File is the output path relative to the output directory.
	File string `json:"file"`

	// Name is the chunk name for shared chunks and the entry name for
	// private bundles.
	Name string `json:"name"`

	Kind Kind `json:"kind"`

	// Members are the module ids serialized into the artifact, in the
	// order they are registered.
	Members []modgraph.ModuleID `json:"members"`

	// LoadedBy names the entries that load the artifact, in entry order.
	LoadedBy []string `json:"loaded_by"`

	// Hash is the hex content fingerprint of the uncompressed file.
	Hash string `json:"hash"`

	Bytes int64 `json:"bytes"`

	Sidecars []Sidecar `json:"sidecars,omitempty"`

	// Stylesheet is the CSS extracted from the members, if any.
	Stylesheet *Stylesheet `json:"stylesheet,omitempty"`
}

// Stylesheet is the extracted CSS file of an artifact.
type Stylesheet struct {
	File     string    `json:"file"`
	Hash     string    `json:"hash"`
	Bytes    int64     `json:"bytes"`
	Sidecars []Sidecar `json:"sidecars,omitempty"`
}

// Sidecar is a precompressed copy of an artifact.
type Sidecar struct {
	File        string `json:"file"`
	Compression string `json:"compression"`
	Bytes       int64  `json:"bytes"`
}

// Module is per-module detail.
type Module struct {
	// Loader is the loader rule that handled the module.
	Loader string `json:"loader,omitempty"`

	// Asset is the emitted file for modules a file or url loader
	// wrote out separately.
	Asset string `json:"asset,omitempty"`

	Bytes int64 `json:"bytes"`
}

// Stats summarizes a build.
type Stats struct {
	Modules        int `json:"modules"`
	Reachable      int `json:"reachable"`
	Pruned         int `json:"pruned"`
	SharedChunks   int `json:"shared_chunks"`
	PrivateBundles int `json:"private_bundles"`

	// DuplicatedModules counts modules copied into more than one
	// private bundle; DuplicatedBytes is the size of the extra copies.
	DuplicatedModules int   `json:"duplicated_modules"`
	DuplicatedBytes   int64 `json:"duplicated_bytes"`
}

// Artifact returns the artifact written to file.
func (m *Manifest) Artifact(file string) (Artifact, bool) {
	for _, artifact := range m.Artifacts {
		if artifact.File == file {
			return artifact, true
		}
	}
	return Artifact{}, false
}

// LoadOrder returns the files entry loads, in order.
func (m *Manifest) LoadOrder(entry string) ([]string, error) {
	files, ok := m.Entries[entry]
	if !ok {
		return nil, fmt.Errorf("manifest has no entry %q", entry)
	}
	return append([]string(nil), files...), nil
}

// Validate checks internal consistency: every loaded file is an
// artifact or its stylesheet, every artifact's LoadedBy matches the
// entry load lists, a stylesheet is loaded right before its artifact,
// and each entry's private bundle is loaded last.
func (m *Manifest) Validate() []string {
	var issues []string
	if m.Version < 1 || m.Version > Version {
		issues = append(issues, fmt.Sprintf("unsupported manifest version %d", m.Version))
	}

	byFile := make(map[string]Artifact, len(m.Artifacts))
	styles := make(map[string]Artifact)
	for _, artifact := range m.Artifacts {
		files := []string{artifact.File}
		if artifact.Stylesheet != nil {
			files = append(files, artifact.Stylesheet.File)
		}
		for _, file := range files {
			if _, exists := byFile[file]; exists {
				issues = append(issues, fmt.Sprintf("artifact file %q listed twice", file))
			}
			if _, exists := styles[file]; exists {
				issues = append(issues, fmt.Sprintf("artifact file %q listed twice", file))
			}
		}
		byFile[artifact.File] = artifact
		if artifact.Stylesheet != nil {
			styles[artifact.Stylesheet.File] = artifact
		}
	}

	loads := make(map[string]map[string]bool)
	for entry, files := range m.Entries {
		for position, file := range files {
			if artifact, ok := styles[file]; ok {
				if position+1 >= len(files) || files[position+1] != artifact.File {
					issues = append(issues, fmt.Sprintf("entry %q loads stylesheet %q apart from %q", entry, file, artifact.File))
				}
				continue
			}
			artifact, ok := byFile[file]
			if !ok {
				issues = append(issues, fmt.Sprintf("entry %q loads unknown file %q", entry, file))
				continue
			}
			last := position == len(files)-1
			if artifact.Kind == Private && (!last || artifact.Name != entry) {
				issues = append(issues, fmt.Sprintf("entry %q loads private bundle %q out of place", entry, file))
			}
			if last && artifact.Kind != Private {
				issues = append(issues, fmt.Sprintf("entry %q does not end with its private bundle", entry))
			}
			if artifact.Stylesheet != nil && (position == 0 || files[position-1] != artifact.Stylesheet.File) {
				issues = append(issues, fmt.Sprintf("entry %q loads %q without its stylesheet %q", entry, file, artifact.Stylesheet.File))
			}
			if loads[file] == nil {
				loads[file] = make(map[string]bool)
			}
			loads[file][entry] = true
		}
	}

	for _, artifact := range m.Artifacts {
		if len(artifact.LoadedBy) != len(loads[artifact.File]) {
			issues = append(issues, fmt.Sprintf("artifact %q: loaded_by %v disagrees with entry load lists", artifact.File, artifact.LoadedBy))
			continue
		}
		for _, entry := range artifact.LoadedBy {
			if !loads[artifact.File][entry] {
				issues = append(issues, fmt.Sprintf("artifact %q: entry %q does not load it", artifact.File, entry))
			}
		}
	}
	return issues
}

// EncodeJSON returns the indented JSON encoding with a trailing
// newline.
func (m *Manifest) EncodeJSON() ([]byte, error) {
	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(m); err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	return buffer.Bytes(), nil
}

// EncodeCBOR returns the deterministic CBOR encoding.
func (m *Manifest) EncodeCBOR() ([]byte, error) {
	data, err := codec.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	return data, nil
}

// Decode parses a manifest in either encoding. CBOR is detected by
// its leading map header; anything else is parsed as JSON.
func Decode(data []byte) (*Manifest, error) {
	var manifest Manifest
	var err error
	if len(data) > 0 && data[0]&0xe0 == 0xa0 {
		err = codec.Unmarshal(data, &manifest)
	} else {
		err = json.Unmarshal(data, &manifest)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	if manifest.Version > Version {
		return nil, fmt.Errorf("manifest version %d is newer than supported version %d", manifest.Version, Version)
	}
	return &manifest, nil
}

// Read loads the manifest at path.
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	manifest, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return manifest, nil
}
