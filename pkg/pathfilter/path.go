// SPDX-License-Identifier: MPL-2.0

package pathfilter

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

type (
	isFilter struct{ path string }

	childOfFilter struct{ parent string }

	globFilter struct{ pattern string }

	setFilter struct {
		paths map[string]struct{}
	}
)

// Is accepts exactly path.
func Is(path string) Filter { return isFilter{path: path} }

// IsChildOf accepts paths strictly below parent. The empty parent names the
// root, so every non-empty path is its child.
func IsChildOf(parent string) Filter { return childOfFilter{parent: parent} }

// IsOrIsChildOf accepts path itself and everything below it.
func IsOrIsChildOf(path string) Filter { return Or(Is(path), IsChildOf(path)) }

// Glob accepts paths matching a doublestar pattern ("com/acme/**").
func Glob(pattern string) (Filter, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid glob pattern %q", pattern)
	}
	return globFilter{pattern: pattern}, nil
}

// MustGlob is like Glob but panics on an invalid pattern.
func MustGlob(pattern string) Filter {
	f, err := Glob(pattern)
	if err != nil {
		panic(err)
	}
	return f
}

// In accepts the paths in the given set. The result compares by identity.
func In(paths ...string) Filter {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}
	return &setFilter{paths: set}
}

func (f isFilter) Accept(path string) bool { return path == f.path }
func (f isFilter) String() string          { return fmt.Sprintf("is(%q)", f.path) }

func (f childOfFilter) Accept(path string) bool {
	if f.parent == "" {
		return path != ""
	}
	return len(path) > len(f.parent)+1 && strings.HasPrefix(path, f.parent) && path[len(f.parent)] == '/'
}

func (f childOfFilter) String() string { return fmt.Sprintf("child-of(%q)", f.parent) }

func (f globFilter) Accept(path string) bool {
	ok, err := doublestar.Match(f.pattern, path)
	return err == nil && ok
}

func (f globFilter) String() string { return fmt.Sprintf("glob(%q)", f.pattern) }

func (f *setFilter) Accept(path string) bool {
	_, ok := f.paths[path]
	return ok
}

func (f *setFilter) String() string {
	paths := make([]string, 0, len(f.paths))
	for p := range f.paths {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return fmt.Sprintf("in(%s)", strings.Join(paths, ", "))
}
