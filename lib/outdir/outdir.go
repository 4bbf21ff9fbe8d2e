// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

// Package outdir writes build artifacts into an output directory.
//
// [Open] takes an exclusive advisory lock on <dir>/.splitpack.lock and
// holds it until [Dir.Close], so two builds into the same directory
// cannot interleave their files. Every write goes to a temporary file
// in the destination directory and is renamed into place, so readers
// see either the previous artifact or the complete new one.
package outdir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// LockName is the lock file created in every output directory.
const LockName = ".splitpack.lock"

// ErrLocked is returned by Open when another build holds the lock.
var ErrLocked = errors.New("output directory is locked by another build")

// Dir is an open, locked output directory. Write is safe for concurrent
// use with distinct names.
type Dir struct {
	root string
	lock *os.File
}

// Open creates root if needed and locks it. With wait false, Open
// fails with ErrLocked instead of blocking on a held lock.
func Open(root string, wait bool) (*Dir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	lock, err := os.OpenFile(filepath.Join(root, LockName), os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening output lock: %w", err)
	}

	how := unix.LOCK_EX
	if !wait {
		how |= unix.LOCK_NB
	}
	for {
		err = unix.Flock(int(lock.Fd()), how)
		if !errors.Is(err, unix.EINTR) {
			break
		}
	}
	if err != nil {
		lock.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, fmt.Errorf("%s: %w", root, ErrLocked)
		}
		return nil, fmt.Errorf("locking output directory: %w", err)
	}
	return &Dir{root: root, lock: lock}, nil
}

// Root returns the directory path.
func (d *Dir) Root() string {
	return d.root
}

// Path returns the absolute location of name, a slash-separated path
// relative to the root. Names that escape the root are rejected.
func (d *Dir) Path(name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("artifact name %q is outside the output directory", name)
	}
	return filepath.Join(d.root, clean), nil
}

// Write atomically replaces name with data, creating parent
// directories.
func (d *Dir) Write(name string, data []byte) error {
	finalPath, err := d.Path(name)
	if err != nil {
		return err
	}
	directory := filepath.Dir(finalPath)
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", name, err)
	}

	temporary, err := os.CreateTemp(directory, ".splitpack-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary file for %s: %w", name, err)
	}
	temporaryPath := temporary.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(temporaryPath)
		}
	}()

	if _, err := temporary.Write(data); err != nil {
		temporary.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := temporary.Chmod(0o644); err != nil {
		temporary.Close()
		return fmt.Errorf("setting mode on %s: %w", name, err)
	}
	if err := temporary.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", name, err)
	}
	if err := os.Rename(temporaryPath, finalPath); err != nil {
		return fmt.Errorf("renaming %s into place: %w", name, err)
	}

	success = true
	return nil
}

// Close releases the lock. The lock file itself stays.
func (d *Dir) Close() error {
	if d.lock == nil {
		return nil
	}
	unlockErr := unix.Flock(int(d.lock.Fd()), unix.LOCK_UN)
	closeErr := d.lock.Close()
	d.lock = nil
	return errors.Join(unlockErr, closeErr)
}
