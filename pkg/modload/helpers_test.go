// SPDX-License-Identifier: MPL-2.0

package modload

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/modgraph/modgraph/pkg/types"
)

// testCatalog serves fixed specifications and counts Find calls per name.
type testCatalog struct {
	mu    sync.Mutex
	specs map[types.ModuleName]func() (*ModuleSpec, error)
	calls map[types.ModuleName]*atomic.Int32
}

func newTestCatalog() *testCatalog {
	return &testCatalog{
		specs: make(map[types.ModuleName]func() (*ModuleSpec, error)),
		calls: make(map[types.ModuleName]*atomic.Int32),
	}
}

func (c *testCatalog) add(name types.ModuleName, deps ...DependencySpec) *testCatalog {
	return c.addFunc(name, func() (*ModuleSpec, error) {
		return &ModuleSpec{Name: name, Dependencies: deps}, nil
	})
}

func (c *testCatalog) addFunc(name types.ModuleName, fn func() (*ModuleSpec, error)) *testCatalog {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.specs[name] = fn
	c.calls[name] = &atomic.Int32{}
	return c
}

func (c *testCatalog) Find(_ context.Context, name types.ModuleName) (*ModuleSpec, error) {
	c.mu.Lock()
	fn, ok := c.specs[name]
	counter := c.calls[name]
	c.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("catalog: %s: %w", name, ErrModuleNotFound)
	}
	counter.Add(1)
	return fn()
}

func (c *testCatalog) callCount(name types.ModuleName) int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if counter, ok := c.calls[name]; ok {
		return counter.Load()
	}
	return 0
}
