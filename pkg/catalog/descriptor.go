// SPDX-License-Identifier: MPL-2.0

package catalog

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/modgraph/modgraph/pkg/content"
	"github.com/modgraph/modgraph/pkg/modload"
	"github.com/modgraph/modgraph/pkg/pathfilter"
	"github.com/modgraph/modgraph/pkg/types"
)

const (
	// RuleDefaultAccept lets paths no rule matches through.
	RuleDefaultAccept RuleDefault = "accept"
	// RuleDefaultReject blocks paths no rule matches.
	RuleDefaultReject RuleDefault = "reject"
)

var (
	// ErrInvalidDescriptor is wrapped by every descriptor validation error.
	ErrInvalidDescriptor = errors.New("invalid module descriptor")

	// ErrInvalidRuleDefault is returned for an unknown RuleDefault.
	ErrInvalidRuleDefault = errors.New("invalid filter rule default")
)

type (
	// RuleDefault is the verdict for paths no filter rule matches.
	RuleDefault string

	// Descriptor is the on-disk form of a module specification, shared by
	// the CUE and TOML formats.
	Descriptor struct {
		Module       string                 `json:"module" toml:"module"`
		Version      string                 `json:"version,omitempty" toml:"version,omitempty"`
		Description  string                 `json:"description,omitempty" toml:"description,omitempty"`
		Content      string                 `json:"content,omitempty" toml:"content,omitempty"`
		Dependencies []DependencyDescriptor `json:"dependencies,omitempty" toml:"dependencies,omitempty"`
	}

	// DependencyDescriptor declares one dependency. Exactly one of Module,
	// Local and Self is set.
	DependencyDescriptor struct {
		Module   string `json:"module,omitempty" toml:"module,omitempty"`
		Export   bool   `json:"export,omitempty" toml:"export,omitempty"`
		Optional bool   `json:"optional,omitempty" toml:"optional,omitempty"`

		Local string   `json:"local,omitempty" toml:"local,omitempty"`
		Paths []string `json:"paths,omitempty" toml:"paths,omitempty"`

		Self bool `json:"self,omitempty" toml:"self,omitempty"`

		Import         *FilterRules `json:"import,omitempty" toml:"import,omitempty"`
		ExportFilter   *FilterRules `json:"export_filter,omitempty" toml:"export_filter,omitempty"`
		Resources      *FilterRules `json:"resources,omitempty" toml:"resources,omitempty"`
		ResourceExport *FilterRules `json:"resource_export,omitempty" toml:"resource_export,omitempty"`
		Classes        *FilterRules `json:"classes,omitempty" toml:"classes,omitempty"`
		ClassExport    *FilterRules `json:"class_export,omitempty" toml:"class_export,omitempty"`
	}

	// FilterRules is a glob include/exclude list. Include patterns are
	// checked before exclude patterns; the first match decides.
	FilterRules struct {
		Include []string    `json:"include,omitempty" toml:"include,omitempty"`
		Exclude []string    `json:"exclude,omitempty" toml:"exclude,omitempty"`
		Default RuleDefault `json:"default,omitempty" toml:"default,omitempty"`
	}

	// DescriptorError reports an invalid descriptor field.
	DescriptorError struct {
		File  string
		Field string
		Err   error
	}
)

// Validate returns an error for an unknown default.
func (d RuleDefault) Validate() error {
	switch d {
	case "", RuleDefaultAccept, RuleDefaultReject:
		return nil
	default:
		return fmt.Errorf("%w: %q (valid: accept, reject)", ErrInvalidRuleDefault, string(d))
	}
}

// Error implements the error interface.
func (e *DescriptorError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %v", e.File, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.File, e.Field, e.Err)
}

// Unwrap exposes ErrInvalidDescriptor and the cause.
func (e *DescriptorError) Unwrap() []error { return []error{ErrInvalidDescriptor, e.Err} }

// Filter builds the path filter. A nil receiver returns fallback.
func (r *FilterRules) Filter(fallback pathfilter.Filter) (pathfilter.Filter, error) {
	if r == nil {
		return fallback, nil
	}
	if err := r.Default.Validate(); err != nil {
		return nil, err
	}
	b := pathfilter.NewRules(r.Default != RuleDefaultReject)
	for _, pattern := range r.Include {
		f, err := pathfilter.Glob(pattern)
		if err != nil {
			return nil, err
		}
		b.Include(f)
	}
	for _, pattern := range r.Exclude {
		f, err := pathfilter.Glob(pattern)
		if err != nil {
			return nil, err
		}
		b.Exclude(f)
	}
	return b.Build(), nil
}

// Validate checks the fields both formats share. file names the
// descriptor in errors.
func (d *Descriptor) Validate(file string) error {
	var errs []error
	fail := func(field string, err error) {
		errs = append(errs, &DescriptorError{File: file, Field: field, Err: err})
	}

	if err := types.ModuleName(d.Module).Validate(); err != nil {
		fail("module", err)
	}
	if ok, descErrs := types.DescriptionText(d.Description).IsValid(); !ok {
		fail("description", errors.Join(descErrs...))
	}
	if d.Content != "" && !filepath.IsLocal(d.Content) {
		fail("content", fmt.Errorf("directory %q escapes the module directory", d.Content))
	}

	for i, dep := range d.Dependencies {
		field := fmt.Sprintf("dependencies[%d]", i)
		kinds := 0
		if dep.Module != "" {
			kinds++
		}
		if dep.Local != "" {
			kinds++
		}
		if dep.Self {
			kinds++
		}
		switch {
		case kinds != 1:
			fail(field, errors.New("exactly one of module, local or self must be set"))
		case dep.Module != "":
			if err := types.ModuleName(dep.Module).Validate(); err != nil {
				fail(field+".module", err)
			}
		case dep.Local != "":
			if !filepath.IsLocal(dep.Local) {
				fail(field+".local", fmt.Errorf("directory %q escapes the module directory", dep.Local))
			}
		case dep.Self:
			if d.Content == "" {
				fail(field+".self", errors.New("self dependency requires content"))
			}
		}
		if dep.Optional && dep.Module == "" {
			fail(field+".optional", errors.New("only module dependencies can be optional"))
		}
		for _, p := range dep.Paths {
			if ok, pathErrs := types.ResourcePath(p).IsValid(); !ok {
				fail(field+".paths", errors.Join(pathErrs...))
			}
		}
		for name, rules := range map[string]*FilterRules{
			"import": dep.Import, "export_filter": dep.ExportFilter,
			"resources": dep.Resources, "resource_export": dep.ResourceExport,
			"classes": dep.Classes, "class_export": dep.ClassExport,
		} {
			if _, err := rules.Filter(nil); err != nil {
				fail(field+"."+name, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Spec converts the descriptor into a module specification. Content and
// local directories are resolved relative to dir on fsys.
func (d *Descriptor) Spec(fsys afero.Fs, dir string) (*modload.ModuleSpec, error) {
	name := types.ModuleName(d.Module)
	spec := &modload.ModuleSpec{
		Name:        name,
		Version:     d.Version,
		Description: types.DescriptionText(d.Description),
	}

	if d.Content != "" {
		p, err := content.NewFS(fsys, filepath.Join(dir, d.Content), d.Module)
		if err != nil {
			return nil, err
		}
		spec.Content = p
	}

	hasSelf := false
	deps := make([]modload.DependencySpec, 0, len(d.Dependencies)+1)
	for i, dep := range d.Dependencies {
		ds, err := dep.spec(fsys, dir, d.Module)
		if err != nil {
			return nil, fmt.Errorf("dependencies[%d]: %w", i, err)
		}
		if _, ok := ds.(*modload.SelfDependencySpec); ok {
			hasSelf = true
		}
		deps = append(deps, ds)
	}
	if spec.Content != nil && !hasSelf {
		deps = append([]modload.DependencySpec{modload.DependOnSelf()}, deps...)
	}
	spec.Dependencies = deps
	return spec, nil
}

func (dep *DependencyDescriptor) spec(fsys afero.Fs, dir, owner string) (modload.DependencySpec, error) {
	opts, err := dep.options()
	if err != nil {
		return nil, err
	}
	switch {
	case dep.Module != "":
		return modload.DependOn(types.ModuleName(dep.Module), opts...), nil
	case dep.Local != "":
		p, err := content.NewFS(fsys, filepath.Join(dir, dep.Local), owner+":"+filepath.ToSlash(dep.Local))
		if err != nil {
			return nil, err
		}
		paths := dep.Paths
		if paths == nil {
			paths = p.Paths()
		}
		return modload.DependOnLocal(p, paths, opts...), nil
	default:
		return modload.DependOnSelf(opts...), nil
	}
}

func (dep *DependencyDescriptor) options() ([]modload.DependencyOption, error) {
	var opts []modload.DependencyOption
	if dep.Export {
		opts = append(opts, modload.Export())
	}
	if dep.Optional {
		opts = append(opts, modload.Optional())
	}

	filters := []struct {
		rules *FilterRules
		opt   func(pathfilter.Filter) modload.DependencyOption
	}{
		{dep.Import, modload.WithImportFilter},
		{dep.ExportFilter, modload.WithExportFilter},
		{dep.Resources, modload.WithResourceImportFilter},
		{dep.ResourceExport, modload.WithResourceExportFilter},
		{dep.Classes, modload.WithClassImportFilter},
		{dep.ClassExport, modload.WithClassExportFilter},
	}
	for _, f := range filters {
		if f.rules == nil {
			continue
		}
		filter, err := f.rules.Filter(nil)
		if err != nil {
			return nil, err
		}
		opts = append(opts, f.opt(filter))
	}
	return opts, nil
}

// String summarizes the dependency for diagnostics.
func (dep *DependencyDescriptor) String() string {
	switch {
	case dep.Module != "":
		return "module " + dep.Module
	case dep.Local != "":
		return "local " + dep.Local + " [" + strings.Join(dep.Paths, ", ") + "]"
	default:
		return "self"
	}
}
