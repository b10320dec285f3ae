// SPDX-License-Identifier: MPL-2.0

package modload

import (
	"fmt"

	"github.com/modgraph/modgraph/pkg/content"
	"github.com/modgraph/modgraph/pkg/pathfilter"
)

// ResolvePath returns the providers visible to m for path, in declaration
// order. With exportOnly, only what m re-exports to its dependents is
// returned. The result is shared and must not be modified.
func ResolvePath(m *Module, path string, exportOnly bool) []content.Provider {
	return m.Resolve(path, exportOnly)
}

// walkDependencies enumerates, in declaration order, every provider in deps
// that serves path. In export mode both the import and the export filter of
// a dependency must accept the path. Module dependencies are always walked
// in export mode: a dependency's own dependencies are visible only as far
// as it re-exports them. classFilter and resourceFilter accumulate the item
// filters of every edge crossed so far.
func walkDependencies(deps []Dependency, path string, exportMode bool,
	classFilter, resourceFilter pathfilter.Filter, emit func(content.Provider),
) {
	for _, dep := range deps {
		f := dep.Filters()
		if !f.Import.Accept(path) || (exportMode && !f.Export.Accept(path)) {
			continue
		}

		classes := pathfilter.And(classFilter, f.ClassImport)
		resources := pathfilter.And(resourceFilter, f.ResourceImport)
		if exportMode {
			classes = pathfilter.And(classes, f.ClassExport)
			resources = pathfilter.And(resources, f.ResourceExport)
		}

		switch d := dep.(type) {
		case *ModuleDependency:
			if d.module == nil {
				continue
			}
			walkDependencies(d.module.linkage.dependencies(), path, true, classes, resources, emit)
		case *LocalDependency:
			if d.Has(path) {
				emit(content.Filtered(d.provider, classes, resources))
			}
		case *SelfDependency:
			if d.Has(path) {
				emit(content.Filtered(d.provider, classes, resources))
			}
		default:
			panic(fmt.Sprintf("modload: unknown dependency type %T", dep))
		}
	}
}

// resolveChain runs the walk from root, threading each provider through
// the trie so equal chains end on the same node.
func resolveChain(root *chainNode, deps []Dependency, path string, exportMode bool) *chainNode {
	node := root
	walkDependencies(deps, path, exportMode, pathfilter.AcceptAll(), pathfilter.AcceptAll(),
		func(p content.Provider) { node = node.Child(p) })
	return node
}
