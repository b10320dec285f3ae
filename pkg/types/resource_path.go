// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// ErrInvalidResourcePath is the sentinel error wrapped by InvalidResourcePathError.
var ErrInvalidResourcePath = errors.New("invalid resource path")

type (
	// ResourcePath is a slash-separated, relative path naming a directory of
	// content ("com/acme/api") or an item inside one ("com/acme/api/Client").
	// The empty path names the root directory and is valid.
	ResourcePath string

	// InvalidResourcePathError is returned when a ResourcePath is absolute,
	// not clean, or escapes its root.
	InvalidResourcePathError struct {
		Value  ResourcePath
		Reason string
	}
)

// String returns the string representation of the ResourcePath.
func (p ResourcePath) String() string { return string(p) }

// IsValid returns whether the ResourcePath is a clean relative path.
func (p ResourcePath) IsValid() (bool, []error) {
	s := string(p)
	if s == "" {
		return true, nil
	}
	switch {
	case strings.HasPrefix(s, "/"):
		return false, []error{&InvalidResourcePathError{Value: p, Reason: "must be relative"}}
	case strings.Contains(s, "\\"):
		return false, []error{&InvalidResourcePathError{Value: p, Reason: "must use forward slashes"}}
	case s == ".." || strings.HasPrefix(s, "../"):
		return false, []error{&InvalidResourcePathError{Value: p, Reason: "must not escape its root"}}
	case path.Clean(s) != s:
		return false, []error{&InvalidResourcePathError{Value: p, Reason: "must be clean"}}
	}
	return true, nil
}

// Validate returns the first validation error, or nil.
func (p ResourcePath) Validate() error {
	if ok, errs := p.IsValid(); !ok {
		return errs[0]
	}
	return nil
}

// Dir returns the directory portion of the path, or "" at the root.
func (p ResourcePath) Dir() ResourcePath {
	i := strings.LastIndexByte(string(p), '/')
	if i < 0 {
		return ""
	}
	return p[:i]
}

// Error implements the error interface for InvalidResourcePathError.
func (e *InvalidResourcePathError) Error() string {
	return fmt.Sprintf("invalid resource path %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidResourcePath for errors.Is() compatibility.
func (e *InvalidResourcePathError) Unwrap() error { return ErrInvalidResourcePath }
