// SPDX-License-Identifier: MPL-2.0

package modload

import (
	"errors"
	"fmt"
	"slices"

	"github.com/modgraph/modgraph/pkg/content"
	"github.com/modgraph/modgraph/pkg/pathfilter"
	"github.com/modgraph/modgraph/pkg/types"
)

type (
	// Filters is the six-filter visibility contract carried by every
	// dependency. Import filters decide what the depending module sees;
	// export filters decide what it passes on to its own dependents. The
	// path filters gate whole directories, the class and resource filters
	// gate individual items served by the eventual provider.
	Filters struct {
		Import         pathfilter.Filter
		Export         pathfilter.Filter
		ResourceImport pathfilter.Filter
		ResourceExport pathfilter.Filter
		ClassImport    pathfilter.Filter
		ClassExport    pathfilter.Filter
	}

	// DependencySpec declares one dependency of a module. The variants are
	// *ModuleDependencySpec, *LocalDependencySpec and *SelfDependencySpec.
	DependencySpec interface {
		// Filters returns the declared visibility filters.
		Filters() Filters
		String() string
		isDependencySpec()
	}

	// ModuleDependencySpec depends on another module by name.
	ModuleDependencySpec struct {
		filters  Filters
		name     types.ModuleName
		loader   *Loader
		optional bool
	}

	// LocalDependencySpec depends on an injected content provider serving an
	// explicit set of paths.
	LocalDependencySpec struct {
		filters  Filters
		provider content.Provider
		paths    []string
	}

	// SelfDependencySpec depends on the module's own content.
	SelfDependencySpec struct {
		filters Filters
	}

	// ModuleSpec is the declarative specification a Catalog returns.
	ModuleSpec struct {
		// Name must equal the requested name, or be empty.
		Name types.ModuleName
		// Version is informational.
		Version string
		// Description is informational.
		Description types.DescriptionText
		// Content is the module's own content, used by SelfDependencySpec.
		Content content.Provider
		// ContentPaths declares the paths Content serves. Nil means
		// Content.Paths().
		ContentPaths []string
		// Dependencies in declaration (shadowing) order.
		Dependencies []DependencySpec
	}

	// DependencyOption configures a dependency spec.
	DependencyOption func(*dependencyConfig)

	dependencyConfig struct {
		export   bool
		optional bool
		loader   *Loader
		filters  Filters
	}
)

// Export makes the dependency's paths visible to modules that depend on the
// declaring module.
func Export() DependencyOption {
	return func(c *dependencyConfig) { c.export = true }
}

// Optional lets the declaring module load even when the target cannot.
// Only module dependencies can be optional.
func Optional() DependencyOption {
	return func(c *dependencyConfig) { c.optional = true }
}

// Via resolves a module dependency through another loader.
func Via(l *Loader) DependencyOption {
	return func(c *dependencyConfig) { c.loader = l }
}

// WithImportFilter overrides the path import filter.
func WithImportFilter(f pathfilter.Filter) DependencyOption {
	return func(c *dependencyConfig) { c.filters.Import = f }
}

// WithExportFilter overrides the path export filter.
func WithExportFilter(f pathfilter.Filter) DependencyOption {
	return func(c *dependencyConfig) { c.filters.Export = f }
}

// WithResourceImportFilter sets the resource import filter.
func WithResourceImportFilter(f pathfilter.Filter) DependencyOption {
	return func(c *dependencyConfig) { c.filters.ResourceImport = f }
}

// WithResourceExportFilter sets the resource export filter.
func WithResourceExportFilter(f pathfilter.Filter) DependencyOption {
	return func(c *dependencyConfig) { c.filters.ResourceExport = f }
}

// WithClassImportFilter sets the class import filter.
func WithClassImportFilter(f pathfilter.Filter) DependencyOption {
	return func(c *dependencyConfig) { c.filters.ClassImport = f }
}

// WithClassExportFilter sets the class export filter.
func WithClassExportFilter(f pathfilter.Filter) DependencyOption {
	return func(c *dependencyConfig) { c.filters.ClassExport = f }
}

// DependOn declares a dependency on the named module. Without Export the
// module's paths are imported through pathfilter.DefaultImportFilter and
// not re-exported; with Export everything is imported and re-exported.
func DependOn(name types.ModuleName, opts ...DependencyOption) *ModuleDependencySpec {
	cfg := applyOptions(opts)
	defaultImport := pathfilter.DefaultImportFilter()
	if cfg.export {
		defaultImport = pathfilter.AcceptAll()
	}
	return &ModuleDependencySpec{
		filters:  cfg.resolve(defaultImport, pathfilter.RejectAll()),
		name:     name,
		loader:   cfg.loader,
		optional: cfg.optional,
	}
}

// DependOnLocal declares a dependency on an injected provider. paths is the
// set of directories the provider claims; the provider is never asked for
// it. Local dependencies import and export everything by default.
func DependOnLocal(p content.Provider, paths []string, opts ...DependencyOption) *LocalDependencySpec {
	cfg := applyOptions(opts)
	return &LocalDependencySpec{
		filters:  cfg.resolve(pathfilter.AcceptAll(), pathfilter.AcceptAll()),
		provider: p,
		paths:    slices.Clone(paths),
	}
}

// DependOnSelf declares a dependency on the module's own content.
func DependOnSelf(opts ...DependencyOption) *SelfDependencySpec {
	cfg := applyOptions(opts)
	return &SelfDependencySpec{filters: cfg.resolve(pathfilter.AcceptAll(), pathfilter.AcceptAll())}
}

func applyOptions(opts []DependencyOption) dependencyConfig {
	var cfg dependencyConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// resolve fills unset filters with the defaults for this dependency.
func (c dependencyConfig) resolve(defaultImport, defaultExport pathfilter.Filter) Filters {
	f := c.filters
	if f.Import == nil {
		f.Import = defaultImport
	}
	if f.Export == nil {
		f.Export = defaultExport
		if c.export {
			f.Export = pathfilter.AcceptAll()
		}
	}
	for _, slot := range []*pathfilter.Filter{&f.ResourceImport, &f.ResourceExport, &f.ClassImport, &f.ClassExport} {
		if *slot == nil {
			*slot = pathfilter.AcceptAll()
		}
	}
	return f
}

// Filters implements DependencySpec.
func (s *ModuleDependencySpec) Filters() Filters { return s.filters }

// Name returns the target module name.
func (s *ModuleDependencySpec) Name() types.ModuleName { return s.name }

// Loader returns the override loader, or nil for the declaring module's own.
func (s *ModuleDependencySpec) Loader() *Loader { return s.loader }

// IsOptional reports whether the dependency is optional.
func (s *ModuleDependencySpec) IsOptional() bool { return s.optional }

func (s *ModuleDependencySpec) String() string {
	out := "module " + string(s.name)
	if s.loader != nil {
		out += " via " + s.loader.Name()
	}
	if s.optional {
		out += " (optional)"
	}
	return out
}

func (*ModuleDependencySpec) isDependencySpec() {}

// Filters implements DependencySpec.
func (s *LocalDependencySpec) Filters() Filters { return s.filters }

// Provider returns the injected provider.
func (s *LocalDependencySpec) Provider() content.Provider { return s.provider }

// Paths returns the declared path set.
func (s *LocalDependencySpec) Paths() []string { return slices.Clone(s.paths) }

func (s *LocalDependencySpec) String() string {
	return fmt.Sprintf("local %s (%d paths)", content.Describe(s.provider), len(s.paths))
}

func (*LocalDependencySpec) isDependencySpec() {}

// Filters implements DependencySpec.
func (s *SelfDependencySpec) Filters() Filters { return s.filters }

func (*SelfDependencySpec) String() string { return "self" }

func (*SelfDependencySpec) isDependencySpec() {}

// Validate checks the specification for the given requested name.
func (s *ModuleSpec) Validate(requested types.ModuleName) error {
	var errs []error
	if s.Name != "" && s.Name != requested {
		errs = append(errs, fmt.Errorf("specification names module %s, requested %s", s.Name, requested))
	}
	if ok, descErrs := s.Description.IsValid(); !ok {
		errs = append(errs, descErrs...)
	}
	for i, dep := range s.Dependencies {
		if isNilSpec(dep) {
			errs = append(errs, fmt.Errorf("dependencies[%d]: nil dependency", i))
			continue
		}
		switch d := dep.(type) {
		case *ModuleDependencySpec:
			if err := d.name.Validate(); err != nil {
				errs = append(errs, fmt.Errorf("dependencies[%d]: %w", i, err))
			}
		case *LocalDependencySpec:
			if d.provider == nil {
				errs = append(errs, fmt.Errorf("dependencies[%d]: local dependency without a provider", i))
			}
		case *SelfDependencySpec:
			if s.Content == nil {
				errs = append(errs, fmt.Errorf("dependencies[%d]: self dependency but the module has no content", i))
			}
		}
	}
	return errors.Join(errs...)
}

// isNilSpec reports a nil interface or a typed nil of one of the variants.
func isNilSpec(dep DependencySpec) bool {
	switch d := dep.(type) {
	case nil:
		return true
	case *ModuleDependencySpec:
		return d == nil
	case *LocalDependencySpec:
		return d == nil
	case *SelfDependencySpec:
		return d == nil
	default:
		return false
	}
}

// selfPaths returns the declared content paths.
func (s *ModuleSpec) selfPaths() []string {
	if s.ContentPaths != nil {
		return s.ContentPaths
	}
	if s.Content == nil {
		return nil
	}
	return s.Content.Paths()
}
