// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/modgraph/modgraph/internal/issue"
	"github.com/modgraph/modgraph/pkg/cueutil"
	"github.com/modgraph/modgraph/pkg/modload"
	"github.com/modgraph/modgraph/pkg/types"
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
type ExitError struct {
	Code types.ExitCode
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// classifyLoadError maps a load failure to its exit code and issue page. A
// cycle anywhere below the requested module is reported as a cycle.
func classifyLoadError(err error) (types.ExitCode, issue.Id) {
	var (
		le *modload.LoadError
		de *cueutil.DecodeError
	)
	switch {
	case errors.Is(err, types.ErrInvalidModuleName):
		return types.ExitUsage, issue.InvalidModuleNameId
	case errors.Is(err, modload.ErrDependencyCycle):
		return types.ExitDependencyCycle, issue.DependencyCycleId
	case !errors.As(err, &le):
		if errors.As(err, &de) {
			return types.ExitCatalogFailure, issue.DescriptorParseErrorId
		}
		return types.ExitFailure, 0
	}
	switch le.Kind() {
	case modload.KindNotFound:
		return types.ExitModuleNotFound, issue.ModuleNotFoundId
	case modload.KindCycle:
		return types.ExitDependencyCycle, issue.DependencyCycleId
	case modload.KindDependency:
		return types.ExitDependencyFailure, issue.DependencyFailureId
	case modload.KindCatalog:
		if errors.As(err, &de) {
			return types.ExitCatalogFailure, issue.DescriptorParseErrorId
		}
		return types.ExitCatalogFailure, issue.CatalogFailureId
	default:
		return types.ExitFailure, 0
	}
}

// loadFailure turns a LoadModule error into an ExitError whose cause is an
// ActionableError with suggestions for the failure kind.
func loadFailure(name types.ModuleName, err error) *ExitError {
	code, id := classifyLoadError(err)

	ec := issue.NewErrorContext().
		WithOperation("load module").
		WithResource(string(name)).
		WithIssue(id)
	switch id {
	case issue.ModuleNotFoundId:
		ec.WithSuggestion("Check the module name for typos").
			WithSuggestion("Pass the catalog directory with --catalog").
			WithSuggestion("Each module needs <catalog>/<module>/module.cue or module.toml")
	case issue.DependencyCycleId:
		ec.WithSuggestion("Remove one dependency from the reported chain")
	case issue.DependencyFailureId:
		ec.WithSuggestion("Fix the failing dependency first, or mark it optional")
	case issue.DescriptorParseErrorId:
		ec.WithSuggestion("Validate the descriptor against the module schema")
	case issue.InvalidModuleNameId:
		ec.WithSuggestion("Module names must not be empty or contain whitespace")
	case issue.CatalogFailureId:
		ec.WithSuggestion("Check that the catalog directories are readable")
	}
	return &ExitError{Code: code, Err: ec.Wrap(err).BuildError()}
}
