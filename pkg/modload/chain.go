// SPDX-License-Identifier: MPL-2.0

package modload

import (
	"slices"
	"sync/atomic"

	"github.com/modgraph/modgraph/pkg/types"
)

type (
	// resolution is one call chain of nested module definitions. It is
	// created by each top-level LoadModule call and threaded explicitly
	// through every nested load; only its owning goroutine touches chain.
	resolution struct {
		chain   []chainLink
		waiting atomic.Pointer[waitState]
	}

	chainLink struct {
		loader *Loader
		name   types.ModuleName
	}

	// waitState records the in-flight future a resolution is blocked on,
	// with a snapshot of its chain at that moment.
	waitState struct {
		future *moduleFuture
		chain  []types.ModuleName
	}
)

func newResolution() *resolution { return &resolution{} }

func (r *resolution) push(l *Loader, name types.ModuleName) {
	r.chain = append(r.chain, chainLink{loader: l, name: name})
}

func (r *resolution) pop() {
	r.chain = r.chain[:len(r.chain)-1]
}

func (r *resolution) onChain(l *Loader, name types.ModuleName) bool {
	return slices.Contains(r.chain, chainLink{loader: l, name: name})
}

func (r *resolution) names() []types.ModuleName {
	out := make([]types.ModuleName, len(r.chain))
	for i, c := range r.chain {
		out[i] = c.name
	}
	return out
}

// cycleTo returns the error for revisiting name on this chain.
func (r *resolution) cycleTo(name types.ModuleName) *CycleError {
	return &CycleError{Chain: append(r.names(), name)}
}

// waitFor records that r is about to block on f and reports a cycle if the
// chain of waits starting at f leads back to a future r itself owns. The
// wait is published before the walk: when two resolutions start waiting on
// each other at the same time, at least one of them observes the other's
// wait and fails instead of both blocking forever.
func (r *resolution) waitFor(f *moduleFuture) *CycleError {
	mine := r.names()
	r.waiting.Store(&waitState{future: f, chain: mine})

	cycle := slices.Clone(mine)
	visited := make(map[*resolution]bool)
	for cur := f; cur != nil && !cur.isDone(); {
		owner := cur.owner
		if owner == r {
			r.waiting.Store(nil)
			return &CycleError{Chain: append(cycle, cur.name)}
		}
		if visited[owner] {
			return nil
		}
		visited[owner] = true

		ws := owner.waiting.Load()
		if ws == nil {
			return nil
		}
		if i := slices.Index(ws.chain, cur.name); i >= 0 {
			cycle = append(cycle, ws.chain[i:]...)
		} else {
			cycle = append(cycle, cur.name)
		}
		cur = ws.future
	}
	return nil
}

func (r *resolution) doneWaiting() { r.waiting.Store(nil) }
