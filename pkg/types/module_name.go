// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrInvalidModuleName is the sentinel error wrapped by InvalidModuleNameError.
var ErrInvalidModuleName = errors.New("invalid module name")

type (
	// ModuleName identifies a module within one loader. Names are opaque:
	// "com.acme.api", "acme/api:1.2" and "api" are all valid. A valid name is
	// non-empty and contains no whitespace or control characters.
	ModuleName string

	// InvalidModuleNameError is returned when a ModuleName value is empty or
	// contains whitespace.
	InvalidModuleNameError struct {
		Value  ModuleName
		Reason string
	}
)

// String returns the string representation of the ModuleName.
func (n ModuleName) String() string { return string(n) }

// IsValid returns whether the ModuleName is valid.
func (n ModuleName) IsValid() (bool, []error) {
	if n == "" {
		return false, []error{&InvalidModuleNameError{Value: n, Reason: "must not be empty"}}
	}
	for _, r := range string(n) {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return false, []error{&InvalidModuleNameError{Value: n, Reason: "must not contain whitespace or control characters"}}
		}
	}
	return true, nil
}

// Validate returns the first validation error, or nil.
func (n ModuleName) Validate() error {
	if ok, errs := n.IsValid(); !ok {
		return errs[0]
	}
	return nil
}

// Error implements the error interface for InvalidModuleNameError.
func (e *InvalidModuleNameError) Error() string {
	return fmt.Sprintf("invalid module name %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidModuleName for errors.Is() compatibility.
func (e *InvalidModuleNameError) Unwrap() error { return ErrInvalidModuleName }

// JoinModuleNames renders a chain of names as "a -> b -> c".
func JoinModuleNames(names []ModuleName) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = string(n)
	}
	return strings.Join(parts, " -> ")
}
