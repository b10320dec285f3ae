// SPDX-License-Identifier: MPL-2.0

package modload

import (
	"fmt"
	"slices"

	"github.com/modgraph/modgraph/pkg/content"
	"github.com/modgraph/modgraph/pkg/types"
)

type (
	// Dependency is a DependencySpec bound to its target. The variants are
	// *ModuleDependency, *LocalDependency and *SelfDependency.
	Dependency interface {
		// Filters returns the filters carried over from the spec.
		Filters() Filters
		String() string
		isDependency()
	}

	// ModuleDependency is bound to a linked module. When an optional target
	// failed to load, Module is nil and Err records why.
	ModuleDependency struct {
		filters  Filters
		name     types.ModuleName
		module   *Module
		optional bool
		err      error
	}

	// LocalDependency is bound to an injected provider.
	LocalDependency struct {
		providerPaths
	}

	// SelfDependency is bound to the owning module's content.
	SelfDependency struct {
		providerPaths
		owner types.ModuleName
	}

	// providerPaths is the shared shape of local and self dependencies.
	providerPaths struct {
		filters  Filters
		provider content.Provider
		paths    map[string]struct{}
	}
)

func newProviderPaths(filters Filters, p content.Provider, paths []string) providerPaths {
	set := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		set[path] = struct{}{}
	}
	return providerPaths{filters: filters, provider: p, paths: set}
}

// Filters implements Dependency.
func (d *ModuleDependency) Filters() Filters { return d.filters }

// Name returns the target module name.
func (d *ModuleDependency) Name() types.ModuleName { return d.name }

// Module returns the bound module, or nil if an optional target failed.
func (d *ModuleDependency) Module() *Module { return d.module }

// IsOptional reports whether the dependency was declared optional.
func (d *ModuleDependency) IsOptional() bool { return d.optional }

// Err returns why an optional target is missing.
func (d *ModuleDependency) Err() error { return d.err }

func (d *ModuleDependency) String() string {
	if d.module == nil {
		return fmt.Sprintf("module %s (unavailable)", d.name)
	}
	return "module " + string(d.name)
}

func (*ModuleDependency) isDependency() {}

// Filters implements Dependency.
func (d *providerPaths) Filters() Filters { return d.filters }

// Provider returns the bound provider.
func (d *providerPaths) Provider() content.Provider { return d.provider }

// Has reports whether path is in the declared set.
func (d *providerPaths) Has(path string) bool {
	_, ok := d.paths[path]
	return ok
}

// Paths returns the declared set, sorted.
func (d *providerPaths) Paths() []string {
	out := make([]string, 0, len(d.paths))
	for p := range d.paths {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

func (d *LocalDependency) String() string {
	return "local " + content.Describe(d.provider)
}

func (*LocalDependency) isDependency() {}

func (d *SelfDependency) String() string {
	return "self " + string(d.owner)
}

func (*SelfDependency) isDependency() {}
