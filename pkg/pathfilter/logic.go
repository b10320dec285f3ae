// SPDX-License-Identifier: MPL-2.0

package pathfilter

import "fmt"

type (
	andFilter struct{ a, b Filter }
	orFilter  struct{ a, b Filter }
	notFilter struct{ f Filter }
)

// And returns a filter accepting paths accepted by both a and b.
// Composing with AcceptAll returns the other operand unchanged.
func And(a, b Filter) Filter {
	switch {
	case IsAcceptAll(a):
		return b
	case IsAcceptAll(b):
		return a
	case IsRejectAll(a) || IsRejectAll(b):
		return RejectAll()
	}
	return andFilter{a: a, b: b}
}

// Or returns a filter accepting paths accepted by either a or b.
// Composing with RejectAll returns the other operand unchanged.
func Or(a, b Filter) Filter {
	switch {
	case IsRejectAll(a):
		return b
	case IsRejectAll(b):
		return a
	case IsAcceptAll(a) || IsAcceptAll(b):
		return AcceptAll()
	}
	return orFilter{a: a, b: b}
}

// Not inverts f.
func Not(f Filter) Filter {
	switch g := f.(type) {
	case acceptAll:
		return RejectAll()
	case rejectAll:
		return AcceptAll()
	case notFilter:
		return g.f
	}
	return notFilter{f: f}
}

// All folds filters with And. An empty list accepts everything.
func All(filters ...Filter) Filter {
	out := AcceptAll()
	for _, f := range filters {
		out = And(out, f)
	}
	return out
}

// Any folds filters with Or. An empty list rejects everything.
func Any(filters ...Filter) Filter {
	out := RejectAll()
	for _, f := range filters {
		out = Or(out, f)
	}
	return out
}

func (f andFilter) Accept(path string) bool { return f.a.Accept(path) && f.b.Accept(path) }
func (f andFilter) String() string          { return fmt.Sprintf("and(%s, %s)", Describe(f.a), Describe(f.b)) }

func (f orFilter) Accept(path string) bool { return f.a.Accept(path) || f.b.Accept(path) }
func (f orFilter) String() string          { return fmt.Sprintf("or(%s, %s)", Describe(f.a), Describe(f.b)) }

func (f notFilter) Accept(path string) bool { return !f.f.Accept(path) }
func (f notFilter) String() string          { return fmt.Sprintf("not(%s)", Describe(f.f)) }
