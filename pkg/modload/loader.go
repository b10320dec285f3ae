// SPDX-License-Identifier: MPL-2.0

package modload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"weak"

	"github.com/modgraph/modgraph/internal/chaintrie"
	"github.com/modgraph/modgraph/pkg/content"
	"github.com/modgraph/modgraph/pkg/types"
)

const (
	// CacheRetain keeps every defined module for the loader's lifetime.
	CacheRetain CachePolicy = iota
	// CacheWeak holds linked modules weakly: once nothing else references a
	// module it may be collected, and the next request defines it again.
	CacheWeak
)

type (
	// CachePolicy selects how a Loader retains linked modules.
	CachePolicy int

	// Loader is a module registry. Each name is defined at most once per
	// loader (per retention period under CacheWeak), successfully or not,
	// no matter how many goroutines ask for it concurrently.
	Loader struct {
		name    string
		catalog Catalog
		logger  *slog.Logger
		policy  CachePolicy

		// entries maps types.ModuleName to *moduleFuture.
		entries sync.Map

		// root is the empty provider chain shared by all modules of this
		// loader.
		root *chainNode
	}

	// LoaderOption configures a Loader.
	LoaderOption func(*Loader)

	// moduleFuture is the single-assignment slot for one module name. done
	// is closed after module/err are written.
	moduleFuture struct {
		name  types.ModuleName
		owner *resolution
		done  chan struct{}

		module     *Module
		weakModule weak.Pointer[Module]
		err        error
	}
)

// ParseCachePolicy parses "retain" or "weak".
func ParseCachePolicy(s string) (CachePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "retain":
		return CacheRetain, nil
	case "weak":
		return CacheWeak, nil
	default:
		return CacheRetain, fmt.Errorf("unknown cache policy %q (valid: retain, weak)", s)
	}
}

// String returns the policy name.
func (p CachePolicy) String() string {
	switch p {
	case CacheRetain:
		return "retain"
	case CacheWeak:
		return "weak"
	default:
		return "unknown"
	}
}

// WithLogger sets the logger for debug output. Without it nothing is logged.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger.With(slog.String("component", "modload"))
		}
	}
}

// WithCachePolicy sets the module retention policy. Default is CacheRetain.
func WithCachePolicy(p CachePolicy) LoaderOption {
	return func(l *Loader) { l.policy = p }
}

// WithName names the loader in diagnostics.
func WithName(name string) LoaderOption {
	return func(l *Loader) { l.name = name }
}

// NewLoader creates a registry backed by catalog.
func NewLoader(catalog Catalog, opts ...LoaderOption) *Loader {
	l := &Loader{
		name:    "default",
		catalog: catalog,
		logger:  slog.New(slog.DiscardHandler),
		root:    chaintrie.NewRoot[content.Provider](),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With(slog.String("loader", l.name))
	return l
}

// Name returns the loader name.
func (l *Loader) Name() string { return l.name }

// Policy returns the retention policy.
func (l *Loader) Policy() CachePolicy { return l.policy }

// LoadModule returns the linked module named name, defining it on first
// use. Concurrent callers for the same name share one definition. A failed
// definition is remembered: every later call returns the same *LoadError.
//
// A caller waiting for another goroutine's definition is not released by
// ctx cancellation; it waits for the definite result and returns it. ctx
// stays canceled, so the caller observes the cancellation on its next
// blocking call.
func (l *Loader) LoadModule(ctx context.Context, name types.ModuleName) (*Module, error) {
	return l.load(ctx, name, newResolution())
}

// MustLoadModule is LoadModule for callers that cannot recover from a load
// failure. It panics with a *LoadError.
func (l *Loader) MustLoadModule(ctx context.Context, name types.ModuleName) *Module {
	m, err := l.LoadModule(ctx, name)
	if err != nil {
		var le *LoadError
		if !errors.As(err, &le) {
			le = &LoadError{Module: name, Err: err}
		}
		panic(le)
	}
	return m
}

// FindLoadedModule returns a module that is already linked, without
// blocking or consulting the catalog.
func (l *Loader) FindLoadedModule(name types.ModuleName) (*Module, bool) {
	v, ok := l.entries.Load(name)
	if !ok {
		return nil, false
	}
	f := v.(*moduleFuture)
	if !f.isDone() || f.err != nil {
		return nil, false
	}
	m := f.value()
	if m == nil {
		l.entries.CompareAndDelete(name, f)
		return nil, false
	}
	return m, true
}

// LoadedModules returns the names of linked modules, sorted.
func (l *Loader) LoadedModules() []types.ModuleName {
	var names []types.ModuleName
	l.entries.Range(func(key, _ any) bool {
		if _, ok := l.FindLoadedModule(key.(types.ModuleName)); ok {
			names = append(names, key.(types.ModuleName))
		}
		return true
	})
	slices.Sort(names)
	return names
}

func (l *Loader) load(ctx context.Context, name types.ModuleName, res *resolution) (*Module, error) {
	if err := name.Validate(); err != nil {
		return nil, &LoadError{Module: name, Err: err}
	}
	if res.onChain(l, name) {
		return nil, res.cycleTo(name)
	}

	for {
		if v, ok := l.entries.Load(name); ok {
			m, err, evicted := l.await(ctx, v.(*moduleFuture), res)
			if evicted {
				continue
			}
			return m, err
		}

		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("load module %s: %w", name, err)
		}

		f := &moduleFuture{name: name, owner: res, done: make(chan struct{})}
		if _, loaded := l.entries.LoadOrStore(name, f); loaded {
			continue
		}
		return l.define(ctx, f, res)
	}
}

// await blocks until f is published. evicted reports a weakly held module
// that was collected; its entry has been dropped and the caller retries.
func (l *Loader) await(ctx context.Context, f *moduleFuture, res *resolution) (m *Module, err error, evicted bool) {
	if !f.isDone() {
		if cyc := res.waitFor(f); cyc != nil {
			return nil, cyc, false
		}
		<-f.done
		res.doneWaiting()
		if ctx.Err() != nil {
			l.logger.Debug("cancellation deferred until module definition completed",
				"module", f.name, "error", ctx.Err())
		}
	}

	if f.err != nil {
		return nil, f.err, false
	}
	if m = f.value(); m == nil {
		l.entries.CompareAndDelete(f.name, f)
		return nil, nil, true
	}
	return m, nil, false
}

// define runs the one definition of f's module on this goroutine and
// publishes the outcome.
func (l *Loader) define(ctx context.Context, f *moduleFuture, res *resolution) (m *Module, err error) {
	res.push(l, f.name)
	defer res.pop()

	published := false
	defer func() {
		if !published {
			f.publish(nil, &LoadError{Module: f.name, Err: errors.New("definition aborted")}, l.policy)
		}
	}()

	l.logger.Debug("defining module", "module", f.name, "depth", len(res.chain))

	// The definition is published for every caller, so it runs to
	// completion even if ctx is canceled. Nested loads must not observe
	// the cancellation either, or it would be recorded as a failure.
	m, err = l.defineModule(context.WithoutCancel(ctx), f.name, res)
	if err != nil {
		err = &LoadError{Module: f.name, Err: err}
		l.logger.Debug("module definition failed", "module", f.name, "error", err)
		f.publish(nil, err, l.policy)
		published = true
		return nil, err
	}

	l.logger.Debug("module linked", "module", f.name, "dependencies", len(m.linkage.deps))
	f.publish(m, nil, l.policy)
	published = true
	return m, nil
}

func (l *Loader) defineModule(ctx context.Context, name types.ModuleName, res *resolution) (*Module, error) {
	spec, err := l.catalog.Find(ctx, name)
	switch {
	case errors.Is(err, ErrModuleNotFound):
		return nil, &NotFoundError{Name: name}
	case err != nil:
		return nil, &CatalogError{Name: name, Err: err}
	case spec == nil:
		return nil, &NotFoundError{Name: name}
	}
	if err := spec.Validate(name); err != nil {
		return nil, &CatalogError{Name: name, Err: err}
	}

	m := newModule(l, name, spec)
	if err := m.linkage.setSpecs(spec.Dependencies); err != nil {
		return nil, err
	}
	if err := l.link(ctx, m, res); err != nil {
		return nil, err
	}
	return m, nil
}

// link binds every dependency spec of m, loading module targets through
// the same resolution chain.
func (l *Loader) link(ctx context.Context, m *Module, res *resolution) error {
	if err := m.linkage.beginLink(); err != nil {
		return res.cycleTo(m.name)
	}

	specs := m.linkage.specs
	deps := make([]Dependency, 0, len(specs))
	for _, spec := range specs {
		switch s := spec.(type) {
		case *ModuleDependencySpec:
			target := s.loader
			if target == nil {
				target = l
			}
			dm, err := target.load(ctx, s.name, res)
			if err != nil {
				if !s.optional {
					return &DependencyError{Module: m.name, Dependency: s.name, Err: err}
				}
				l.logger.Debug("optional dependency unavailable",
					"module", m.name, "dependency", s.name, "error", err)
			}
			deps = append(deps, &ModuleDependency{
				filters:  s.filters,
				name:     s.name,
				module:   dm,
				optional: s.optional,
				err:      err,
			})
		case *LocalDependencySpec:
			deps = append(deps, &LocalDependency{
				providerPaths: newProviderPaths(s.filters, s.provider, s.paths),
			})
		case *SelfDependencySpec:
			deps = append(deps, &SelfDependency{
				providerPaths: newProviderPaths(s.filters, m.spec.Content, m.spec.selfPaths()),
				owner:         m.name,
			})
		default:
			panic(fmt.Sprintf("modload: unknown dependency spec type %T", spec))
		}
	}

	return m.linkage.finishLink(deps)
}

func (f *moduleFuture) isDone() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// value returns the published module, or nil if it failed or was collected.
func (f *moduleFuture) value() *Module {
	if f.module != nil {
		return f.module
	}
	return f.weakModule.Value()
}

func (f *moduleFuture) publish(m *Module, err error, policy CachePolicy) {
	switch {
	case err != nil:
		f.err = err
	case policy == CacheWeak:
		f.weakModule = weak.Make(m)
	default:
		f.module = m
	}
	close(f.done)
}
