// SPDX-License-Identifier: MPL-2.0

package content

import (
	"fmt"

	"github.com/modgraph/modgraph/pkg/pathfilter"
)

// ClassSuffix is the file suffix under which class items are stored.
const ClassSuffix = ".class"

type (
	// Content is one item served by a provider.
	Content struct {
		// Name is the full slash path of the item.
		Name string
		// Data is the item's bytes.
		Data []byte
		// Origin describes the provider that served the item.
		Origin string
	}

	// Package describes one directory served by a provider.
	Package struct {
		Path   string
		Origin string
	}

	// Provider serves classes and resources for a declared set of paths.
	//
	// Implementations must be comparable with ==. Provider chains are
	// interned by value, and a dynamic type holding a slice, map or func
	// panics there. Use a pointer receiver for such types.
	Provider interface {
		// Paths returns the directories this provider has items in.
		Paths() []string
		// Class returns the class item with the given slash-path name.
		Class(name string) (*Content, bool)
		// Resource returns the resource item with the given slash path.
		Resource(name string) (*Content, bool)
		// Package returns metadata for one of the provider's directories.
		Package(path string) (*Package, bool)
	}

	// FilteredProvider restricts the classes and resources another provider
	// serves. It is a comparable value: two adapters over the same provider
	// with equal filters are ==.
	FilteredProvider struct {
		Provider       Provider
		ClassFilter    pathfilter.Filter
		ResourceFilter pathfilter.Filter
	}
)

// Filtered wraps p so that class and resource lookups are constrained by the
// given filters. When both filters are accept-all, p is returned unchanged;
// wrapping an already filtered provider merges the filters.
func Filtered(p Provider, classFilter, resourceFilter pathfilter.Filter) Provider {
	if pathfilter.IsAcceptAll(classFilter) && pathfilter.IsAcceptAll(resourceFilter) {
		return p
	}
	if inner, ok := p.(FilteredProvider); ok {
		return FilteredProvider{
			Provider:       inner.Provider,
			ClassFilter:    pathfilter.And(inner.ClassFilter, classFilter),
			ResourceFilter: pathfilter.And(inner.ResourceFilter, resourceFilter),
		}
	}
	return FilteredProvider{Provider: p, ClassFilter: classFilter, ResourceFilter: resourceFilter}
}

// Unwrap returns the provider beneath any filtering adapter.
func Unwrap(p Provider) Provider {
	if f, ok := p.(FilteredProvider); ok {
		return f.Provider
	}
	return p
}

// Describe renders a provider for diagnostics.
func Describe(p Provider) string {
	switch v := p.(type) {
	case nil:
		return "<nil>"
	case FilteredProvider:
		return fmt.Sprintf("%s [classes: %s, resources: %s]",
			Describe(v.Provider), pathfilter.Describe(v.ClassFilter), pathfilter.Describe(v.ResourceFilter))
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%T", p)
	}
}

// Paths implements Provider.
func (f FilteredProvider) Paths() []string { return f.Provider.Paths() }

// Class implements Provider.
func (f FilteredProvider) Class(name string) (*Content, bool) {
	if !f.ClassFilter.Accept(name) {
		return nil, false
	}
	return f.Provider.Class(name)
}

// Resource implements Provider.
func (f FilteredProvider) Resource(name string) (*Content, bool) {
	if !f.ResourceFilter.Accept(name) {
		return nil, false
	}
	return f.Provider.Resource(name)
}

// Package implements Provider.
func (f FilteredProvider) Package(path string) (*Package, bool) { return f.Provider.Package(path) }

// dirOf returns the directory of a slash path, "" at the root.
func dirOf(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '/' {
			return name[:i]
		}
	}
	return ""
}
