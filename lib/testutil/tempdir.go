// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

// WriteTree creates a temporary directory containing files, keyed by
// slash-separated relative path, and returns the directory. Parent
// directories are created as needed. The directory is removed when the
// test completes.
//
//	root := testutil.WriteTree(t, map[string]string{
//	    "src/popup/index.ts": "import './view'",
//	    "src/popup/view.ts":  "export const view = 1",
//	})
func WriteTree(t *testing.T, files map[string]string) string {
	t.Helper()
	directory := t.TempDir()
	for name, content := range files {
		path := filepath.Join(directory, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("creating directory for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	return directory
}

// ReadTree returns every regular file under directory keyed by
// slash-separated relative path. Files whose base name starts with "."
// are skipped.
func ReadTree(t *testing.T, directory string) map[string]string {
	t.Helper()
	files := make(map[string]string)
	err := filepath.WalkDir(directory, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || entry.Name()[0] == '.' {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		relative, err := filepath.Rel(directory, path)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(relative)] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("reading tree %s: %v", directory, err)
	}
	return files
}
