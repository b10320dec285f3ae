// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"testing"
)

func TestResourcePath_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value ResourcePath
		want  bool
	}{
		{"root", ResourcePath(""), true},
		{"directory", ResourcePath("com/acme/api"), true},
		{"file", ResourcePath("META-INF/services/x"), true},
		{"absolute", ResourcePath("/com/acme"), false},
		{"backslash", ResourcePath(`com\acme`), false},
		{"parent", ResourcePath("../etc"), false},
		{"dotdot only", ResourcePath(".."), false},
		{"trailing slash", ResourcePath("com/acme/"), false},
		{"double slash", ResourcePath("com//acme"), false},
		{"dot segment", ResourcePath("com/./acme"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			isValid, errs := tt.value.IsValid()
			if isValid != tt.want {
				t.Errorf("ResourcePath(%q).IsValid() = %v, want %v", tt.value, isValid, tt.want)
			}
			if !tt.want && (len(errs) == 0 || !errors.Is(errs[0], ErrInvalidResourcePath)) {
				t.Errorf("ResourcePath(%q).IsValid() errors = %v, want ErrInvalidResourcePath", tt.value, errs)
			}
		})
	}
}

func TestResourcePath_Dir(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   ResourcePath
		want ResourcePath
	}{
		{"com/acme/Client", "com/acme"},
		{"Client", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := tt.in.Dir(); got != tt.want {
			t.Errorf("ResourcePath(%q).Dir() = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResourcePath_Validate(t *testing.T) {
	t.Parallel()

	if err := ResourcePath("com/acme").Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
	if err := ResourcePath("/com").Validate(); !errors.Is(err, ErrInvalidResourcePath) {
		t.Errorf("Validate() = %v, want ErrInvalidResourcePath", err)
	}
}
