// SPDX-License-Identifier: MPL-2.0

package modload

import (
	"errors"
	"fmt"

	"github.com/modgraph/modgraph/pkg/types"
)

const (
	// KindUnknown classifies errors that are none of the kinds below, such
	// as an invalid module name or a canceled context.
	KindUnknown ErrorKind = iota
	// KindNotFound means the catalog had no specification for the module.
	KindNotFound
	// KindCycle means the module transitively depends on itself.
	KindCycle
	// KindCatalog means the catalog failed while producing a specification.
	KindCatalog
	// KindDependency means a required dependency failed to load.
	KindDependency
)

var (
	// ErrModuleNotFound is wrapped by NotFoundError. Catalogs return it (or an
	// error wrapping it) to report that they do not know a module.
	ErrModuleNotFound = errors.New("module not found")

	// ErrDependencyCycle is wrapped by CycleError.
	ErrDependencyCycle = errors.New("module dependency cycle")

	// ErrCatalogFailure is wrapped by CatalogError.
	ErrCatalogFailure = errors.New("module catalog failure")

	// ErrRequiredDependency is wrapped by DependencyError.
	ErrRequiredDependency = errors.New("required dependency failed")
)

type (
	// ErrorKind classifies load failures.
	ErrorKind int

	// LoadError is returned by Loader.LoadModule for every failed definition.
	// The same *LoadError is returned to every later caller for that name.
	LoadError struct {
		Module types.ModuleName
		Err    error
	}

	// NotFoundError reports a module the catalog does not know.
	NotFoundError struct {
		Name types.ModuleName
	}

	// CycleError reports a module that depends on itself. Chain lists the
	// resolution path, ending with the module that closed the cycle.
	CycleError struct {
		Chain []types.ModuleName
	}

	// CatalogError reports a catalog failure for one module.
	CatalogError struct {
		Name types.ModuleName
		Err  error
	}

	// DependencyError reports a required dependency that failed to load.
	DependencyError struct {
		Module     types.ModuleName
		Dependency types.ModuleName
		Err        error
	}
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not-found"
	case KindCycle:
		return "cycle"
	case KindCatalog:
		return "catalog"
	case KindDependency:
		return "dependency"
	default:
		return "unknown"
	}
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("load module %s: %v", e.Module, e.Err)
}

// Unwrap returns the underlying failure.
func (e *LoadError) Unwrap() error { return e.Err }

// Kind classifies the direct cause of the failure.
func (e *LoadError) Kind() ErrorKind {
	var (
		nf  *NotFoundError
		cyc *CycleError
		cat *CatalogError
		dep *DependencyError
	)
	switch {
	case errors.As(e.Err, &dep):
		return KindDependency
	case errors.As(e.Err, &cyc):
		return KindCycle
	case errors.As(e.Err, &nf):
		return KindNotFound
	case errors.As(e.Err, &cat):
		return KindCatalog
	default:
		return KindUnknown
	}
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("module %s not found", e.Name)
}

// Unwrap returns ErrModuleNotFound for errors.Is() compatibility.
func (e *NotFoundError) Unwrap() error { return ErrModuleNotFound }

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("module dependency cycle: %s", types.JoinModuleNames(e.Chain))
}

// Unwrap returns ErrDependencyCycle for errors.Is() compatibility.
func (e *CycleError) Unwrap() error { return ErrDependencyCycle }

// Contains reports whether name appears in the cycle chain.
func (e *CycleError) Contains(name types.ModuleName) bool {
	for _, n := range e.Chain {
		if n == name {
			return true
		}
	}
	return false
}

// Error implements the error interface.
func (e *CatalogError) Error() string {
	return fmt.Sprintf("catalog failed for module %s: %v", e.Name, e.Err)
}

// Unwrap exposes both the sentinel and the catalog's own error.
func (e *CatalogError) Unwrap() []error { return []error{ErrCatalogFailure, e.Err} }

// Error implements the error interface.
func (e *DependencyError) Error() string {
	return fmt.Sprintf("module %s: required dependency %s: %v", e.Module, e.Dependency, e.Err)
}

// Unwrap exposes both the sentinel and the dependency's failure.
func (e *DependencyError) Unwrap() []error { return []error{ErrRequiredDependency, e.Err} }
