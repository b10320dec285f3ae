// SPDX-License-Identifier: MPL-2.0

package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/modgraph/modgraph/pkg/modload"
	"github.com/modgraph/modgraph/pkg/types"
)

// Memory is a catalog of specifications added in code. It is safe for
// concurrent use; specifications added after a loader defined a module do
// not affect that loader.
type Memory struct {
	mu    sync.RWMutex
	specs map[types.ModuleName]*modload.ModuleSpec
}

// NewMemory returns a catalog holding specs, keyed by their Name.
func NewMemory(specs ...*modload.ModuleSpec) *Memory {
	m := &Memory{specs: make(map[types.ModuleName]*modload.ModuleSpec, len(specs))}
	for _, s := range specs {
		m.Add(s)
	}
	return m
}

// Add registers spec under spec.Name, replacing any previous entry.
func (m *Memory) Add(spec *modload.ModuleSpec) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.specs[spec.Name] = spec
	return m
}

// Find implements modload.Catalog.
func (m *Memory) Find(ctx context.Context, name types.ModuleName) (*modload.ModuleSpec, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.specs[name]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("memory catalog: %s: %w", name, modload.ErrModuleNotFound)
}
