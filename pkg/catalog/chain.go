// SPDX-License-Identifier: MPL-2.0

package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/modgraph/modgraph/pkg/modload"
	"github.com/modgraph/modgraph/pkg/types"
)

// Chain consults catalogs in order and returns the first specification
// found. A catalog failure other than not-found stops the search.
type Chain []modload.Catalog

// Find implements modload.Catalog.
func (c Chain) Find(ctx context.Context, name types.ModuleName) (*modload.ModuleSpec, error) {
	for _, cat := range c {
		spec, err := cat.Find(ctx, name)
		switch {
		case errors.Is(err, modload.ErrModuleNotFound):
			continue
		case err != nil:
			return nil, err
		case spec != nil:
			return spec, nil
		}
	}
	return nil, fmt.Errorf("no catalog provides %s: %w", name, modload.ErrModuleNotFound)
}
