// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

// Package source loads module payloads for the emitter.
//
// A build reads every source file twice: once while the scan resolver
// looks for imports and once when the emitter serializes the module.
// [Dir] serves both through one LRU cache bounded by entry count, so a
// file is read from disk once per build unless it was evicted. Dir
// implements both [Loader] and [modgraph.FileReader].
package source

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/splitpack/splitpack/lib/modgraph"
)

// Loader returns the payload of a module. Implementations must be safe
// for concurrent use; the emitter loads from several goroutines.
type Loader interface {
	Load(ctx context.Context, module *modgraph.Module) ([]byte, error)
}

// DefaultCacheEntries bounds the Dir cache when no size is given.
const DefaultCacheEntries = 4096

// Dir loads payloads from files under a root directory.
type Dir struct {
	root string
	// Keyed by cleaned slash path relative to root, or by absolute path.
	cache *lru.Cache[string, []byte]

	hits   atomic.Int64
	misses atomic.Int64
}

// NewDir returns a Dir rooted at root caching up to entries payloads.
// Non-positive entries selects DefaultCacheEntries.
func NewDir(root string, entries int) (*Dir, error) {
	if entries <= 0 {
		entries = DefaultCacheEntries
	}
	cache, err := lru.New[string, []byte](entries)
	if err != nil {
		return nil, fmt.Errorf("creating source cache: %w", err)
	}
	return &Dir{root: root, cache: cache}, nil
}

// Load reads the module's source file. Relative paths resolve against
// the root. The returned slice is shared with the cache and must not be
// modified.
func (d *Dir) Load(ctx context.Context, module *modgraph.Module) ([]byte, error) {
	data, err := d.read(ctx, module.SourcePath())
	if err != nil {
		return nil, fmt.Errorf("loading module %s: %w", module.ID, err)
	}
	return data, nil
}

// ReadFile reads name, a slash-separated path relative to the root,
// through the same cache as Load.
func (d *Dir) ReadFile(ctx context.Context, name string) ([]byte, error) {
	data, err := d.read(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return data, nil
}

func (d *Dir) read(ctx context.Context, name string) ([]byte, error) {
	key := filepath.ToSlash(name)
	if !filepath.IsAbs(name) {
		key = path.Clean(key)
	}
	if data, ok := d.cache.Get(key); ok {
		d.hits.Add(1)
		return data, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.misses.Add(1)

	file := name
	if !filepath.IsAbs(file) {
		file = filepath.Join(d.root, filepath.FromSlash(key))
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	d.cache.Add(key, data)
	return data, nil
}

// Stats returns cache hits and misses so far.
func (d *Dir) Stats() (hits, misses int64) {
	return d.hits.Load(), d.misses.Load()
}

// Memory serves payloads from a map keyed by module id.
type Memory map[modgraph.ModuleID][]byte

// Load returns the stored payload. A module with no payload is an
// error naming the module.
func (m Memory) Load(ctx context.Context, module *modgraph.Module) ([]byte, error) {
	data, ok := m[module.ID]
	if !ok {
		return nil, fmt.Errorf("loading module %s: no payload", module.ID)
	}
	return data, nil
}
