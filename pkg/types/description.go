// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDescriptionText is the sentinel error wrapped by InvalidDescriptionTextError.
var ErrInvalidDescriptionText = errors.New("invalid description text")

type (
	// DescriptionText is the free-form summary attached to a module
	// descriptor. Empty means no description; otherwise it must carry
	// some non-space text.
	DescriptionText string

	// InvalidDescriptionTextError is returned for whitespace-only descriptions.
	InvalidDescriptionTextError struct {
		Value DescriptionText
	}
)

// String returns the string representation of the DescriptionText.
func (d DescriptionText) String() string { return string(d) }

// IsValid returns whether the DescriptionText is valid.
func (d DescriptionText) IsValid() (bool, []error) {
	if d != "" && strings.TrimSpace(string(d)) == "" {
		return false, []error{&InvalidDescriptionTextError{Value: d}}
	}
	return true, nil
}

// Error implements the error interface for InvalidDescriptionTextError.
func (e *InvalidDescriptionTextError) Error() string {
	return fmt.Sprintf("invalid description %q: must not be whitespace-only", e.Value)
}

// Unwrap returns ErrInvalidDescriptionText for errors.Is() compatibility.
func (e *InvalidDescriptionTextError) Unwrap() error { return ErrInvalidDescriptionText }
