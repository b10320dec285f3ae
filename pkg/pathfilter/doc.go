// SPDX-License-Identifier: MPL-2.0

// Package pathfilter provides predicates over slash-separated resource paths
// and the combinators used to compose them along a dependency traversal.
//
// Every filter returned by this package is a comparable value: two filters
// built the same way from the same operands compare equal with ==, and the
// combinators short-circuit on the identity elements so that
//
//	And(AcceptAll(), f) == f
//	Or(RejectAll(), f) == f
//	Not(Not(f)) == f
//
// Filters that own a map, slice or function (In, Func, Rules) are pointer
// values and compare by identity. Custom Filter implementations must also be
// comparable, since the module loader uses filters as part of cache keys.
package pathfilter
