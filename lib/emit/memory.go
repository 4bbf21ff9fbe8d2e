// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

package emit

import (
	"maps"
	"sync"
)

// Memory is a Writer that keeps files in memory, for dry runs and
// tests.
type Memory struct {
	mu    sync.Mutex
	files map[string][]byte
}

func (m *Memory) Write(name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.files == nil {
		m.files = make(map[string][]byte)
	}
	m.files[name] = append([]byte(nil), data...)
	return nil
}

// Files returns a copy of everything written.
func (m *Memory) Files() map[string][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return maps.Clone(m.files)
}
