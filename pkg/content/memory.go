// SPDX-License-Identifier: MPL-2.0

package content

import (
	"slices"
	"strings"
	"sync"
)

// Memory is an in-memory Provider. It is safe for concurrent use.
type Memory struct {
	name      string
	mu        sync.RWMutex
	classes   map[string][]byte
	resources map[string][]byte
	dirs      map[string]struct{}
}

// NewMemory creates an empty in-memory provider named name.
func NewMemory(name string) *Memory {
	return &Memory{
		name:      name,
		classes:   make(map[string][]byte),
		resources: make(map[string][]byte),
		dirs:      make(map[string]struct{}),
	}
}

// AddClass stores a class item under its slash-path name.
func (m *Memory) AddClass(name string, data []byte) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.classes[name] = data
	m.dirs[dirOf(name)] = struct{}{}
	return m
}

// AddResource stores a resource item under its slash path.
func (m *Memory) AddResource(name string, data []byte) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resources[name] = data
	m.dirs[dirOf(name)] = struct{}{}
	return m
}

// String returns the provider name.
func (m *Memory) String() string { return m.name }

// Paths implements Provider.
func (m *Memory) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	paths := make([]string, 0, len(m.dirs))
	for d := range m.dirs {
		paths = append(paths, d)
	}
	slices.Sort(paths)
	return paths
}

// Class implements Provider.
func (m *Memory) Class(name string) (*Content, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.classes[name]
	if !ok {
		return nil, false
	}
	return &Content{Name: name, Data: data, Origin: m.name}, true
}

// Resource implements Provider.
func (m *Memory) Resource(name string) (*Content, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.resources[name]
	if !ok {
		return nil, false
	}
	return &Content{Name: name, Data: data, Origin: m.name}, true
}

// Package implements Provider.
func (m *Memory) Package(path string) (*Package, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.dirs[strings.TrimSuffix(path, "/")]; !ok {
		return nil, false
	}
	return &Package{Path: path, Origin: m.name}, true
}
