// SPDX-License-Identifier: MPL-2.0

package pathfilter

import (
	"fmt"
	"strings"
)

type (
	rule struct {
		filter  Filter
		include bool
	}

	// RulesBuilder assembles an ordered include/exclude list. The first rule
	// whose filter accepts a path decides; unmatched paths get the default.
	RulesBuilder struct {
		rules         []rule
		defaultAccept bool
	}

	rulesFilter struct {
		rules         []rule
		defaultAccept bool
	}
)

// NewRules starts a rule list whose unmatched paths resolve to defaultAccept.
func NewRules(defaultAccept bool) *RulesBuilder {
	return &RulesBuilder{defaultAccept: defaultAccept}
}

// Include appends a rule accepting the paths f accepts.
func (b *RulesBuilder) Include(f Filter) *RulesBuilder {
	b.rules = append(b.rules, rule{filter: f, include: true})
	return b
}

// Exclude appends a rule rejecting the paths f accepts.
func (b *RulesBuilder) Exclude(f Filter) *RulesBuilder {
	b.rules = append(b.rules, rule{filter: f, include: false})
	return b
}

// IsEmpty reports whether no rules were added.
func (b *RulesBuilder) IsEmpty() bool { return len(b.rules) == 0 }

// Build returns the filter. Without rules it is AcceptAll or RejectAll.
func (b *RulesBuilder) Build() Filter {
	if len(b.rules) == 0 {
		if b.defaultAccept {
			return AcceptAll()
		}
		return RejectAll()
	}
	rules := make([]rule, len(b.rules))
	copy(rules, b.rules)
	return &rulesFilter{rules: rules, defaultAccept: b.defaultAccept}
}

func (f *rulesFilter) Accept(path string) bool {
	for _, r := range f.rules {
		if r.filter.Accept(path) {
			return r.include
		}
	}
	return f.defaultAccept
}

func (f *rulesFilter) String() string {
	parts := make([]string, 0, len(f.rules)+1)
	for _, r := range f.rules {
		verb := "exclude"
		if r.include {
			verb = "include"
		}
		parts = append(parts, verb+" "+Describe(r.filter))
	}
	parts = append(parts, fmt.Sprintf("default %t", f.defaultAccept))
	return "rules(" + strings.Join(parts, "; ") + ")"
}

var defaultImport = NewRules(true).
	Include(Is("META-INF/services")).
	Exclude(IsOrIsChildOf("META-INF")).
	Build()

// DefaultImportFilter hides module metadata directories except the service
// registry, and accepts everything else. It always returns the same value.
func DefaultImportFilter() Filter { return defaultImport }
