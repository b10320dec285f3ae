// SPDX-License-Identifier: MPL-2.0

package modload

import (
	"slices"
	"sync"
	"sync/atomic"

	"github.com/modgraph/modgraph/internal/chaintrie"
	"github.com/modgraph/modgraph/pkg/content"
)

const (
	viewAll = iota
	viewExported
	viewCount
)

type (
	// Linkage is a module's dependency state. It is written once, by the
	// goroutine that defines the module, and read lock-free once LINKED.
	Linkage struct {
		state atomic.Int32

		specs []DependencySpec
		deps  []Dependency

		// chains caches resolved provider chains per path, one map per view.
		chains [viewCount]sync.Map

		indexOnce [viewCount]sync.Once
		index     [viewCount]map[string][]content.Provider
	}

	chainNode = chaintrie.Node[content.Provider]
)

func newLinkage() *Linkage {
	l := &Linkage{}
	l.state.Store(int32(LinkNew))
	return l
}

// State returns the current state (atomic, lock-free read).
func (l *Linkage) State() LinkState { return LinkState(l.state.Load()) }

// Specs returns the dependency specifications once known.
func (l *Linkage) Specs() []DependencySpec {
	if l.State() < LinkUnlinked {
		return nil
	}
	return slices.Clone(l.specs)
}

// Dependencies returns the bound dependencies once LINKED.
func (l *Linkage) Dependencies() []Dependency {
	if l.State() != LinkLinked {
		return nil
	}
	return slices.Clone(l.deps)
}

// dependencies returns the LINKED list without copying.
func (l *Linkage) dependencies() []Dependency {
	if l.State() != LinkLinked {
		return nil
	}
	return l.deps
}

// setSpecs moves NEW -> UNLINKED.
func (l *Linkage) setSpecs(specs []DependencySpec) error {
	if l.State() != LinkNew {
		return &TransitionError{From: l.State(), To: LinkUnlinked}
	}
	l.specs = slices.Clone(specs)
	if !l.state.CompareAndSwap(int32(LinkNew), int32(LinkUnlinked)) {
		return &TransitionError{From: l.State(), To: LinkUnlinked}
	}
	return nil
}

// beginLink moves UNLINKED -> LINKING. A linkage already LINKING is being
// re-entered by its own resolution chain.
func (l *Linkage) beginLink() error {
	if l.state.CompareAndSwap(int32(LinkUnlinked), int32(LinkLinking)) {
		return nil
	}
	return &TransitionError{From: l.State(), To: LinkLinking}
}

// finishLink stores deps and moves LINKING -> LINKED. The state store
// publishes deps to lock-free readers.
func (l *Linkage) finishLink(deps []Dependency) error {
	if l.State() != LinkLinking {
		return &TransitionError{From: l.State(), To: LinkLinked}
	}
	l.deps = deps
	l.state.Store(int32(LinkLinked))
	return nil
}

func viewOf(exportOnly bool) int {
	if exportOnly {
		return viewExported
	}
	return viewAll
}
