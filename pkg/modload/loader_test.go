// SPDX-License-Identifier: MPL-2.0

package modload

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/modgraph/modgraph/pkg/types"
)

func TestLoadModule_Idempotent(t *testing.T) {
	t.Parallel()

	cat := newTestCatalog().add("a", DependOn("b")).add("b")
	l := NewLoader(cat)

	first, err := l.LoadModule(t.Context(), "a")
	if err != nil {
		t.Fatalf("LoadModule(a) error = %v", err)
	}
	second, err := l.LoadModule(t.Context(), "a")
	if err != nil {
		t.Fatalf("second LoadModule(a) error = %v", err)
	}
	if first != second {
		t.Error("LoadModule() returned different handles for the same name")
	}
	if got := cat.callCount("a"); got != 1 {
		t.Errorf("catalog consulted %d times for a, want 1", got)
	}
	if got := cat.callCount("b"); got != 1 {
		t.Errorf("catalog consulted %d times for b, want 1", got)
	}
	if first.Linkage().State() != LinkLinked {
		t.Errorf("state = %s, want linked", first.Linkage().State())
	}
}

func TestLoadModule_SingleFlight(t *testing.T) {
	t.Parallel()

	gate := make(chan struct{})
	cat := newTestCatalog().addFunc("slow", func() (*ModuleSpec, error) {
		<-gate
		return &ModuleSpec{Name: "slow"}, nil
	})
	l := NewLoader(cat)

	const workers = 32
	results := make([]*Module, workers)
	var g errgroup.Group
	for i := range workers {
		g.Go(func() error {
			m, err := l.LoadModule(context.Background(), "slow")
			results[i] = m
			return err
		})
	}

	// Let the workers pile up behind the first definition.
	for cat.callCount("slow") == 0 {
		runtime.Gosched()
	}
	close(gate)

	if err := g.Wait(); err != nil {
		t.Fatalf("LoadModule() error = %v", err)
	}
	for i, m := range results {
		if m != results[0] {
			t.Fatalf("worker %d got a different module handle", i)
		}
	}
	if got := cat.callCount("slow"); got != 1 {
		t.Errorf("catalog consulted %d times, want 1", got)
	}
}

func TestLoadModule_Cycle(t *testing.T) {
	t.Parallel()

	cat := newTestCatalog().
		add("a", DependOn("b")).
		add("b", DependOn("a"))
	l := NewLoader(cat)

	_, err := l.LoadModule(t.Context(), "a")
	if !errors.Is(err, ErrDependencyCycle) {
		t.Fatalf("LoadModule(a) error = %v, want dependency cycle", err)
	}

	var cyc *CycleError
	if !errors.As(err, &cyc) {
		t.Fatalf("error %v does not carry a *CycleError", err)
	}
	for _, name := range []types.ModuleName{"a", "b"} {
		if !cyc.Contains(name) {
			t.Errorf("cycle chain %v does not contain %s", cyc.Chain, name)
		}
	}
	want := "a -> b -> a"
	if got := types.JoinModuleNames(cyc.Chain); got != want {
		t.Errorf("cycle chain = %q, want %q", got, want)
	}

	// Both entries are poisoned.
	again, err2 := l.LoadModule(t.Context(), "a")
	if again != nil || err2 != err {
		t.Errorf("second LoadModule(a) = (%v, %v), want the same error", again, err2)
	}
	if _, err := l.LoadModule(t.Context(), "b"); !errors.Is(err, ErrDependencyCycle) {
		t.Errorf("LoadModule(b) error = %v, want dependency cycle", err)
	}
	if got := cat.callCount("a"); got != 1 {
		t.Errorf("catalog consulted %d times for a, want 1", got)
	}
}

func TestLoadModule_SelfCycle(t *testing.T) {
	t.Parallel()

	l := NewLoader(newTestCatalog().add("a", DependOn("a")))

	_, err := l.LoadModule(t.Context(), "a")
	var cyc *CycleError
	if !errors.As(err, &cyc) {
		t.Fatalf("LoadModule(a) error = %v, want *CycleError", err)
	}
	if got := types.JoinModuleNames(cyc.Chain); got != "a -> a" {
		t.Errorf("cycle chain = %q, want %q", got, "a -> a")
	}
}

func TestLoadModule_ConcurrentCycleDoesNotDeadlock(t *testing.T) {
	t.Parallel()

	// Both definitions claim their entry before either links, so each
	// goroutine ends up waiting on the other's module.
	var started sync.WaitGroup
	started.Add(2)
	barrier := func(name types.ModuleName, dep types.ModuleName) func() (*ModuleSpec, error) {
		return func() (*ModuleSpec, error) {
			started.Done()
			started.Wait()
			return &ModuleSpec{Name: name, Dependencies: []DependencySpec{DependOn(dep)}}, nil
		}
	}
	cat := newTestCatalog().addFunc("a", barrier("a", "b")).addFunc("b", barrier("b", "a"))
	l := NewLoader(cat)

	errs := make(chan error, 2)
	for _, name := range []types.ModuleName{"a", "b"} {
		go func() {
			_, err := l.LoadModule(context.Background(), name)
			errs <- err
		}()
	}

	for range 2 {
		select {
		case err := <-errs:
			if !errors.Is(err, ErrDependencyCycle) {
				t.Errorf("LoadModule() error = %v, want dependency cycle", err)
			}
		case <-time.After(10 * time.Second):
			t.Fatal("concurrent cyclic loads deadlocked")
		}
	}
}

func TestLoadModule_ConcurrentUnrelatedCallersNoFalseCycle(t *testing.T) {
	t.Parallel()

	cat := newTestCatalog().
		add("app", DependOn("lib"), DependOn("util")).
		add("tool", DependOn("util"), DependOn("lib")).
		add("lib", DependOn("util")).
		add("util")
	l := NewLoader(cat)

	var g errgroup.Group
	for range 16 {
		for _, name := range []types.ModuleName{"app", "tool", "lib", "util"} {
			g.Go(func() error {
				_, err := l.LoadModule(context.Background(), name)
				return err
			})
		}
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("LoadModule() error = %v", err)
	}
	for _, name := range []types.ModuleName{"app", "tool", "lib", "util"} {
		if got := cat.callCount(name); got != 1 {
			t.Errorf("catalog consulted %d times for %s, want 1", got, name)
		}
	}
}

func TestLoadModule_ErrorKinds(t *testing.T) {
	t.Parallel()

	boom := errors.New("descriptor unreadable")
	cat := newTestCatalog().
		addFunc("broken", func() (*ModuleSpec, error) { return nil, boom }).
		addFunc("empty", func() (*ModuleSpec, error) { return nil, nil }).
		addFunc("renamed", func() (*ModuleSpec, error) { return &ModuleSpec{Name: "other"}, nil }).
		add("needs-missing", DependOn("missing")).
		add("needs-broken", DependOn("broken"))
	l := NewLoader(cat)

	tests := []struct {
		name     types.ModuleName
		kind     ErrorKind
		sentinel error
	}{
		{"missing", KindNotFound, ErrModuleNotFound},
		{"empty", KindNotFound, ErrModuleNotFound},
		{"broken", KindCatalog, boom},
		{"renamed", KindCatalog, ErrCatalogFailure},
		{"needs-missing", KindDependency, ErrModuleNotFound},
		{"needs-broken", KindDependency, boom},
		{"Not A Name", KindUnknown, types.ErrInvalidModuleName},
	}

	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			t.Parallel()

			_, err := l.LoadModule(t.Context(), tt.name)
			var le *LoadError
			if !errors.As(err, &le) {
				t.Fatalf("LoadModule(%s) error = %v, want *LoadError", tt.name, err)
			}
			if le.Kind() != tt.kind {
				t.Errorf("Kind() = %s, want %s", le.Kind(), tt.kind)
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.sentinel)
			}
		})
	}
}

func TestLoadModule_OptionalDependencyIsSkipped(t *testing.T) {
	t.Parallel()

	cat := newTestCatalog().
		add("app", DependOn("missing", Optional()), DependOn("cyclic", Optional()), DependOn("lib")).
		add("cyclic", DependOn("app")).
		add("lib")
	l := NewLoader(cat)

	m, err := l.LoadModule(t.Context(), "app")
	if err != nil {
		t.Fatalf("LoadModule(app) error = %v", err)
	}

	deps := m.Dependencies()
	if len(deps) != 3 {
		t.Fatalf("len(Dependencies()) = %d, want 3", len(deps))
	}
	for i, name := range []types.ModuleName{"missing", "cyclic"} {
		md := deps[i].(*ModuleDependency)
		if md.Name() != name || md.Module() != nil || md.Err() == nil || !md.IsOptional() {
			t.Errorf("dependency %d = %v (err %v), want unavailable optional %s", i, md, md.Err(), name)
		}
	}
	if lib := deps[2].(*ModuleDependency).Module(); lib == nil || lib.Name() != "lib" {
		t.Errorf("dependency 2 module = %v, want lib", lib)
	}

	// The optional cycle poisoned cyclic for good.
	if _, err := l.LoadModule(t.Context(), "cyclic"); !errors.Is(err, ErrDependencyCycle) {
		t.Errorf("LoadModule(cyclic) error = %v, want dependency cycle", err)
	}
}

func TestMustLoadModule(t *testing.T) {
	t.Parallel()

	l := NewLoader(newTestCatalog().add("present"))

	if m := l.MustLoadModule(t.Context(), "present"); m.Name() != "present" {
		t.Errorf("MustLoadModule() name = %s", m.Name())
	}

	defer func() {
		r := recover()
		le, ok := r.(*LoadError)
		if !ok {
			t.Fatalf("recovered %T (%v), want *LoadError", r, r)
		}
		if le.Kind() != KindNotFound {
			t.Errorf("Kind() = %s, want not-found", le.Kind())
		}
	}()
	l.MustLoadModule(t.Context(), "absent")
	t.Error("MustLoadModule() did not panic")
}

func TestLoadModule_WaiterIgnoresCancellation(t *testing.T) {
	t.Parallel()

	gate := make(chan struct{})
	cat := newTestCatalog().addFunc("slow", func() (*ModuleSpec, error) {
		<-gate
		return &ModuleSpec{Name: "slow"}, nil
	})
	l := NewLoader(cat)

	resolverDone := make(chan *Module, 1)
	go func() {
		m, _ := l.LoadModule(context.Background(), "slow")
		resolverDone <- m
	}()
	for cat.callCount("slow") == 0 {
		runtime.Gosched()
	}

	ctx, cancel := context.WithCancel(context.Background())
	waiterDone := make(chan struct{})
	var (
		got    *Module
		gotErr error
	)
	go func() {
		defer close(waiterDone)
		got, gotErr = l.LoadModule(ctx, "slow")
	}()

	cancel()
	select {
	case <-waiterDone:
		t.Fatal("waiter returned before the definition completed")
	case <-time.After(50 * time.Millisecond):
	}

	close(gate)
	<-waiterDone
	if gotErr != nil {
		t.Fatalf("waiter error = %v, want the defined module", gotErr)
	}
	if want := <-resolverDone; got != want {
		t.Error("waiter received a different module than the resolver")
	}
	if ctx.Err() == nil {
		t.Error("cancellation was lost")
	}
}

func TestLoadModule_CanceledBeforeClaimDoesNotPoison(t *testing.T) {
	t.Parallel()

	cat := newTestCatalog().add("a")
	l := NewLoader(cat)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	if _, err := l.LoadModule(ctx, "a"); !errors.Is(err, context.Canceled) {
		t.Fatalf("LoadModule() error = %v, want context.Canceled", err)
	}
	if _, err := l.LoadModule(t.Context(), "a"); err != nil {
		t.Fatalf("LoadModule() after cancellation error = %v", err)
	}
}

func TestLoadModule_CanceledDuringDefinitionDoesNotPoison(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	cat := newTestCatalog().
		addFunc("a", func() (*ModuleSpec, error) {
			cancel()
			return &ModuleSpec{Name: "a", Dependencies: []DependencySpec{DependOn("b")}}, nil
		}).
		add("b")
	l := NewLoader(cat)

	first, err := l.LoadModule(ctx, "a")
	if err != nil {
		t.Fatalf("LoadModule() error = %v, want the definition to complete", err)
	}
	if ctx.Err() == nil {
		t.Fatal("context was not canceled by the catalog")
	}

	again, err := l.LoadModule(context.Background(), "a")
	if err != nil {
		t.Fatalf("LoadModule() after cancellation error = %v", err)
	}
	if again != first {
		t.Error("second LoadModule(a) returned a different module")
	}
	if _, ok := l.FindLoadedModule("b"); !ok {
		t.Error("dependency b was not linked")
	}
	if got := cat.callCount("a"); got != 1 {
		t.Errorf("catalog consulted %d times for a, want 1", got)
	}
}

func TestLoadModule_ViaOtherLoader(t *testing.T) {
	t.Parallel()

	shared := NewLoader(newTestCatalog().add("runtime"), WithName("shared"))
	appCat := newTestCatalog().add("app", DependOn("runtime", Via(shared)))
	app := NewLoader(appCat, WithName("app"))

	m, err := app.LoadModule(t.Context(), "app")
	if err != nil {
		t.Fatalf("LoadModule(app) error = %v", err)
	}
	dep := m.Dependencies()[0].(*ModuleDependency).Module()
	if dep.Loader() != shared {
		t.Error("dependency was not defined by the override loader")
	}
	if _, ok := app.FindLoadedModule("runtime"); ok {
		t.Error("runtime leaked into the app loader")
	}
	if _, ok := shared.FindLoadedModule("runtime"); !ok {
		t.Error("runtime missing from the shared loader")
	}
}

func TestLoadedModules(t *testing.T) {
	t.Parallel()

	cat := newTestCatalog().add("c", DependOn("a"), DependOn("b")).add("a").add("b")
	l := NewLoader(cat)

	if _, ok := l.FindLoadedModule("c"); ok {
		t.Error("FindLoadedModule() found a module before loading")
	}
	if _, err := l.LoadModule(t.Context(), "c"); err != nil {
		t.Fatalf("LoadModule(c) error = %v", err)
	}
	_, _ = l.LoadModule(t.Context(), "missing")

	got := l.LoadedModules()
	want := []types.ModuleName{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("LoadedModules() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("LoadedModules()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestCacheWeak_RedefinesCollectedModule(t *testing.T) {
	t.Parallel()

	cat := newTestCatalog().add("a")
	l := NewLoader(cat, WithCachePolicy(CacheWeak))

	m, err := l.LoadModule(t.Context(), "a")
	if err != nil {
		t.Fatalf("LoadModule(a) error = %v", err)
	}
	if again, _ := l.LoadModule(t.Context(), "a"); again != m {
		t.Error("live module was redefined")
	}

	redefined := false
	for range 10 {
		runtime.GC()
		if _, ok := l.FindLoadedModule("a"); !ok {
			redefined = true
			break
		}
	}
	if !redefined {
		t.Skip("module was not collected")
	}
	if _, err := l.LoadModule(t.Context(), "a"); err != nil {
		t.Fatalf("LoadModule(a) after collection error = %v", err)
	}
	if got := cat.callCount("a"); got != 2 {
		t.Errorf("catalog consulted %d times, want 2", got)
	}
}

func TestParseCachePolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    CachePolicy
		wantErr bool
	}{
		{"", CacheRetain, false},
		{"retain", CacheRetain, false},
		{"WEAK", CacheWeak, false},
		{"lru", CacheRetain, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseCachePolicy(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCachePolicy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseCachePolicy(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}
