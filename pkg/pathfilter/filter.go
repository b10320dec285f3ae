// SPDX-License-Identifier: MPL-2.0

package pathfilter

import "fmt"

type (
	// Filter decides whether a path is visible.
	//
	// Implementations must be comparable with ==: resolution uses filters
	// inside map keys, and a dynamic type holding a slice, map or func
	// panics there. Use a pointer receiver for such types.
	Filter interface {
		Accept(path string) bool
	}

	acceptAll struct{}
	rejectAll struct{}

	funcFilter struct {
		name string
		fn   func(string) bool
	}
)

// AcceptAll returns the filter that accepts every path.
func AcceptAll() Filter { return acceptAll{} }

// RejectAll returns the filter that rejects every path.
func RejectAll() Filter { return rejectAll{} }

// Func adapts fn into a Filter. The result compares by identity.
func Func(name string, fn func(path string) bool) Filter {
	return &funcFilter{name: name, fn: fn}
}

// IsAcceptAll reports whether f is the accept-all filter.
func IsAcceptAll(f Filter) bool {
	_, ok := f.(acceptAll)
	return ok
}

// IsRejectAll reports whether f is the reject-all filter.
func IsRejectAll(f Filter) bool {
	_, ok := f.(rejectAll)
	return ok
}

func (acceptAll) Accept(string) bool { return true }
func (acceptAll) String() string     { return "accept-all" }

func (rejectAll) Accept(string) bool { return false }
func (rejectAll) String() string     { return "reject-all" }

func (f *funcFilter) Accept(path string) bool { return f.fn(path) }
func (f *funcFilter) String() string          { return fmt.Sprintf("func(%s)", f.name) }

// Describe renders f for diagnostics, falling back to its Go type.
func Describe(f Filter) string {
	if f == nil {
		return "<nil>"
	}
	if s, ok := f.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", f)
}
