// SPDX-License-Identifier: MPL-2.0

package modload

import (
	"errors"
	"strings"
	"testing"
)

func TestModuleSpec_ValidateNilDependencies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		dep  DependencySpec
	}{
		{"nil interface", nil},
		{"nil module dependency", (*ModuleDependencySpec)(nil)},
		{"nil local dependency", (*LocalDependencySpec)(nil)},
		{"nil self dependency", (*SelfDependencySpec)(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			spec := &ModuleSpec{Name: "a", Dependencies: []DependencySpec{DependOn("b"), tt.dep}}
			err := spec.Validate("a")
			if err == nil {
				t.Fatal("Validate() succeeded, want an error")
			}
			if !strings.Contains(err.Error(), "dependencies[1]: nil dependency") {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestLoadModule_TypedNilDependencyIsCatalogFailure(t *testing.T) {
	t.Parallel()

	cat := newTestCatalog().addFunc("a", func() (*ModuleSpec, error) {
		return &ModuleSpec{Name: "a", Dependencies: []DependencySpec{(*LocalDependencySpec)(nil)}}, nil
	})
	_, err := NewLoader(cat).LoadModule(t.Context(), "a")

	var le *LoadError
	if !errors.As(err, &le) || le.Kind() != KindCatalog {
		t.Errorf("LoadModule() error = %v, want catalog failure", err)
	}
}
