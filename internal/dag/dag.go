// SPDX-License-Identifier: MPL-2.0

// Package dag orders modules so that every module comes after the modules it
// depends on.
package dag

import (
	"fmt"

	"github.com/modgraph/modgraph/pkg/types"
)

type (
	// CycleError reports modules that could not be ordered because they
	// depend on each other.
	CycleError struct {
		// Modules are the unordered modules, in insertion order. They include
		// every cycle member and anything that depends on one.
		Modules []types.ModuleName
	}

	// Graph is a module dependency graph. An edge from A to B means A must be
	// defined before B.
	Graph struct {
		// dependents maps a module to the modules that depend on it.
		dependents map[types.ModuleName][]types.ModuleName
		nodes      []types.ModuleName
		nodeSet    map[types.ModuleName]bool
	}
)

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle among: %s", types.JoinModuleNames(e.Modules))
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		dependents: make(map[types.ModuleName][]types.ModuleName),
		nodeSet:    make(map[types.ModuleName]bool),
	}
}

// AddModule adds a module. Adding it again is a no-op.
func (g *Graph) AddModule(name types.ModuleName) {
	if g.nodeSet[name] {
		return
	}
	g.nodeSet[name] = true
	g.nodes = append(g.nodes, name)
}

// AddDependency records that module depends on dep. Both are added if new.
func (g *Graph) AddDependency(module, dep types.ModuleName) {
	g.AddModule(dep)
	g.AddModule(module)
	g.dependents[dep] = append(g.dependents[dep], module)
}

// Len returns the number of modules.
func (g *Graph) Len() int { return len(g.nodes) }

// Order returns the modules dependencies-first using Kahn's algorithm.
// Modules at the same depth keep their insertion order.
func (g *Graph) Order() ([]types.ModuleName, error) {
	levels, err := g.Levels()
	if err != nil {
		return nil, err
	}
	var order []types.ModuleName
	for _, level := range levels {
		order = append(order, level...)
	}
	return order, nil
}

// Levels groups the modules into layers: level 0 depends on nothing, and
// each module's dependencies are all in earlier levels. Modules within one
// level are independent of each other.
func (g *Graph) Levels() ([][]types.ModuleName, error) {
	if len(g.nodes) == 0 {
		return nil, nil
	}

	inDegree := make(map[types.ModuleName]int, len(g.nodes))
	for _, deps := range g.dependents {
		for _, m := range deps {
			inDegree[m]++
		}
	}

	var current []types.ModuleName
	for _, n := range g.nodes {
		if inDegree[n] == 0 {
			current = append(current, n)
		}
	}

	var (
		levels [][]types.ModuleName
		placed int
	)
	for len(current) > 0 {
		levels = append(levels, current)
		placed += len(current)

		var next []types.ModuleName
		for _, n := range current {
			for _, m := range g.dependents[n] {
				inDegree[m]--
				if inDegree[m] == 0 {
					next = append(next, m)
				}
			}
		}
		current = next
	}

	if placed != len(g.nodes) {
		var stuck []types.ModuleName
		for _, n := range g.nodes {
			if inDegree[n] > 0 {
				stuck = append(stuck, n)
			}
		}
		return nil, &CycleError{Modules: stuck}
	}
	return levels, nil
}
