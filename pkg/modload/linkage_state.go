// SPDX-License-Identifier: MPL-2.0

package modload

import (
	"errors"
	"fmt"
)

const (
	// LinkNew is a registered module whose specification is not yet known.
	LinkNew LinkState = iota
	// LinkUnlinked has dependency specs but no bound dependencies.
	LinkUnlinked
	// LinkLinking is binding dependencies. Observing it again on the same
	// resolution chain means the module depends on itself.
	LinkLinking
	// LinkLinked is terminal: dependencies and caches are stable.
	LinkLinked
)

// ErrInvalidLinkState is returned for a LinkState outside the defined set.
var ErrInvalidLinkState = errors.New("invalid link state")

type (
	// LinkState is the position of a Linkage in NEW -> UNLINKED -> LINKING -> LINKED.
	LinkState int32

	// InvalidLinkStateError is returned when a LinkState value is not recognized.
	InvalidLinkStateError struct {
		Value LinkState
	}

	// TransitionError reports an attempt to move a Linkage backwards or
	// skip a state.
	TransitionError struct {
		From LinkState
		To   LinkState
	}
)

// String returns a human-readable representation of the state.
func (s LinkState) String() string {
	switch s {
	case LinkNew:
		return "new"
	case LinkUnlinked:
		return "unlinked"
	case LinkLinking:
		return "linking"
	case LinkLinked:
		return "linked"
	default:
		return "unknown"
	}
}

// Validate returns nil for a defined state.
func (s LinkState) Validate() error {
	switch s {
	case LinkNew, LinkUnlinked, LinkLinking, LinkLinked:
		return nil
	default:
		return &InvalidLinkStateError{Value: s}
	}
}

// IsTerminal returns true for LinkLinked.
func (s LinkState) IsTerminal() bool { return s == LinkLinked }

// Error implements the error interface for InvalidLinkStateError.
func (e *InvalidLinkStateError) Error() string {
	return fmt.Sprintf("invalid link state %d (valid: 0=new, 1=unlinked, 2=linking, 3=linked)", e.Value)
}

// Unwrap returns ErrInvalidLinkState for errors.Is() compatibility.
func (e *InvalidLinkStateError) Unwrap() error { return ErrInvalidLinkState }

// Error implements the error interface for TransitionError.
func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move linkage from %s to %s", e.From, e.To)
}
