// SPDX-License-Identifier: MPL-2.0

package modload

import (
	"context"

	"github.com/modgraph/modgraph/pkg/types"
)

type (
	// Catalog produces module specifications by name. Find returns an error
	// wrapping ErrModuleNotFound (or a nil spec) when the module is unknown;
	// any other error is treated as a catalog failure. A Loader calls Find at
	// most once per name.
	Catalog interface {
		Find(ctx context.Context, name types.ModuleName) (*ModuleSpec, error)
	}

	// CatalogFunc adapts a function to the Catalog interface.
	CatalogFunc func(ctx context.Context, name types.ModuleName) (*ModuleSpec, error)
)

// Find implements Catalog.
func (f CatalogFunc) Find(ctx context.Context, name types.ModuleName) (*ModuleSpec, error) {
	return f(ctx, name)
}
