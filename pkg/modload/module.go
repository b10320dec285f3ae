// SPDX-License-Identifier: MPL-2.0

package modload

import (
	"maps"
	"slices"

	"github.com/modgraph/modgraph/pkg/content"
	"github.com/modgraph/modgraph/pkg/types"
)

// Module is a defined, linked module. Handles are only handed out once the
// module is LINKED, so every method is safe for concurrent use.
type Module struct {
	name    types.ModuleName
	spec    *ModuleSpec
	loader  *Loader
	linkage *Linkage
}

func newModule(l *Loader, name types.ModuleName, spec *ModuleSpec) *Module {
	return &Module{name: name, spec: spec, loader: l, linkage: newLinkage()}
}

// Name returns the module name.
func (m *Module) Name() types.ModuleName { return m.name }

// Spec returns the specification the module was defined from.
func (m *Module) Spec() *ModuleSpec { return m.spec }

// Loader returns the loader that defined the module.
func (m *Module) Loader() *Loader { return m.loader }

// Linkage returns the module's dependency state.
func (m *Module) Linkage() *Linkage { return m.linkage }

// Dependencies returns the bound dependency list.
func (m *Module) Dependencies() []Dependency { return m.linkage.Dependencies() }

func (m *Module) String() string { return string(m.name) }

// Resolve returns the providers visible to the module for path. The result
// is cached per path and shared between all paths and modules of the loader
// that resolve to the same chain; it must not be modified.
func (m *Module) Resolve(path string, exportOnly bool) []content.Provider {
	return m.chain(path, exportOnly).Items()
}

// chain returns the canonical trie node for path. A miss computes the chain
// and installs it with LoadOrStore: concurrent misses compute the same node,
// so losing the race discards nothing of value.
func (m *Module) chain(path string, exportOnly bool) *chainNode {
	cache := &m.linkage.chains[viewOf(exportOnly)]
	if n, ok := cache.Load(path); ok {
		return n.(*chainNode)
	}
	node := resolveChain(m.loader.root, m.linkage.dependencies(), path, exportOnly)
	actual, _ := cache.LoadOrStore(path, node)
	return actual.(*chainNode)
}

// FindClass returns the first class named name served by a provider visible
// for the class's directory.
func (m *Module) FindClass(name string) (*content.Content, bool) {
	for _, p := range m.Resolve(string(types.ResourcePath(name).Dir()), false) {
		if c, ok := p.Class(name); ok {
			return c, true
		}
	}
	return nil, false
}

// FindResource returns the first resource named name served by a provider
// visible for the resource's directory.
func (m *Module) FindResource(name string) (*content.Content, bool) {
	for _, p := range m.Resolve(string(types.ResourcePath(name).Dir()), false) {
		if c, ok := p.Resource(name); ok {
			return c, true
		}
	}
	return nil, false
}

// PathIndex returns every path with at least one visible provider, mapped
// to its provider chain. The index is built once per view from the paths
// declared by all reachable local and self dependencies.
func (m *Module) PathIndex(exportOnly bool) map[string][]content.Provider {
	view := viewOf(exportOnly)
	m.linkage.indexOnce[view].Do(func() {
		index := make(map[string][]content.Provider)
		for _, path := range m.candidatePaths() {
			if chain := m.Resolve(path, exportOnly); len(chain) > 0 {
				index[path] = chain
			}
		}
		m.linkage.index[view] = index
	})
	return maps.Clone(m.linkage.index[view])
}

// Paths returns the sorted keys of PathIndex.
func (m *Module) Paths(exportOnly bool) []string {
	return slices.Sorted(maps.Keys(m.PathIndex(exportOnly)))
}

// candidatePaths collects the declared paths of every local and self
// dependency reachable from the module.
func (m *Module) candidatePaths() []string {
	seen := make(map[*Module]bool)
	paths := make(map[string]struct{})

	var visit func(*Module)
	visit = func(mod *Module) {
		if seen[mod] {
			return
		}
		seen[mod] = true
		for _, dep := range mod.linkage.dependencies() {
			switch d := dep.(type) {
			case *ModuleDependency:
				if d.module != nil {
					visit(d.module)
				}
			case *LocalDependency:
				for p := range d.paths {
					paths[p] = struct{}{}
				}
			case *SelfDependency:
				for p := range d.paths {
					paths[p] = struct{}{}
				}
			}
		}
	}
	visit(m)

	return slices.Sorted(maps.Keys(paths))
}
