// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strconv"
)

// Exit codes returned by the modgraph CLI.
const (
	ExitOK ExitCode = iota
	ExitFailure
	ExitUsage
	ExitModuleNotFound
	ExitDependencyCycle
	ExitCatalogFailure
	ExitDependencyFailure
)

// ErrInvalidExitCode is the sentinel error wrapped by InvalidExitCodeError.
var ErrInvalidExitCode = errors.New("invalid exit code")

type (
	// ExitCode is a process exit status in the POSIX range 0-255.
	ExitCode int

	// InvalidExitCodeError is returned when an ExitCode is out of range.
	InvalidExitCodeError struct {
		Value ExitCode
	}
)

// Error implements the error interface.
func (e *InvalidExitCodeError) Error() string {
	return fmt.Sprintf("invalid exit code %d (must be in range 0-255)", e.Value)
}

// Unwrap returns ErrInvalidExitCode so callers can use errors.Is.
func (e *InvalidExitCodeError) Unwrap() error { return ErrInvalidExitCode }

// Validate returns an error if the ExitCode is outside 0-255.
func (c ExitCode) Validate() error {
	if c < 0 || c > 255 {
		return &InvalidExitCodeError{Value: c}
	}
	return nil
}

// IsSuccess returns true for ExitOK.
func (c ExitCode) IsSuccess() bool { return c == ExitOK }

// String returns the decimal string representation of the ExitCode.
func (c ExitCode) String() string { return strconv.Itoa(int(c)) }
