// SPDX-License-Identifier: MPL-2.0

// Package chaintrie is a prefix trie over ordered item chains that hands out
// one canonical node per distinct chain. Two callers that build the same
// chain from the same root, in any order and from any goroutine, receive the
// same *Node, so equal chains can be shared and compared by pointer.
package chaintrie

import (
	"slices"
	"sync"
	"sync/atomic"
)

type (
	// Node is one chain in the trie. Its items never change; its children
	// only grow.
	Node[T comparable] struct {
		items    []T
		children atomic.Pointer[children[T]]
		mu       sync.Mutex
	}

	// children is an immutable snapshot of a node's child table. Narrow
	// fan-out is stored without allocating a map.
	children[T comparable] struct {
		single    *Node[T]
		singleKey T
		many      map[T]*Node[T]
	}
)

// NewRoot returns the node for the empty chain.
func NewRoot[T comparable]() *Node[T] {
	return &Node[T]{}
}

// Items returns the chain this node represents. The slice must not be
// modified.
func (n *Node[T]) Items() []T { return n.items }

// Len returns the chain length.
func (n *Node[T]) Len() int { return len(n.items) }

// Child returns the node for this chain extended by item, creating it on
// first use. Lookups of existing children take no lock.
func (n *Node[T]) Child(item T) *Node[T] {
	if c := n.children.Load().get(item); c != nil {
		return c
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	snapshot := n.children.Load()
	if c := snapshot.get(item); c != nil {
		return c
	}

	items := make([]T, len(n.items), len(n.items)+1)
	copy(items, n.items)
	child := &Node[T]{items: append(items, item)}
	n.children.Store(snapshot.with(item, child))
	return child
}

// Extend walks Child for each item in order.
func (n *Node[T]) Extend(items ...T) *Node[T] {
	cur := n
	for _, it := range items {
		cur = cur.Child(it)
	}
	return cur
}

// ChildCount returns how many children the node currently has.
func (n *Node[T]) ChildCount() int {
	c := n.children.Load()
	switch {
	case c == nil:
		return 0
	case c.many != nil:
		return len(c.many)
	case c.single != nil:
		return 1
	default:
		return 0
	}
}

// Equal reports whether the node's chain equals items.
func (n *Node[T]) Equal(items []T) bool { return slices.Equal(n.items, items) }

func (c *children[T]) get(item T) *Node[T] {
	switch {
	case c == nil:
		return nil
	case c.many != nil:
		return c.many[item]
	case c.single != nil && c.singleKey == item:
		return c.single
	default:
		return nil
	}
}

// with returns a new snapshot containing item -> child, promoting
// empty -> single -> map.
func (c *children[T]) with(item T, child *Node[T]) *children[T] {
	switch {
	case c == nil || (c.single == nil && c.many == nil):
		return &children[T]{single: child, singleKey: item}
	case c.many == nil:
		return &children[T]{many: map[T]*Node[T]{c.singleKey: c.single, item: child}}
	default:
		many := make(map[T]*Node[T], len(c.many)+1)
		for k, v := range c.many {
			many[k] = v
		}
		many[item] = child
		return &children[T]{many: many}
	}
}
