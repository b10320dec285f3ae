// SPDX-License-Identifier: MPL-2.0

// Package watch reports module descriptor changes under catalog roots.
//
// Events are coalesced over a debounce window, so an editor's write-then-rename
// produces one callback naming every module whose descriptor changed.
package watch

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/modgraph/modgraph/pkg/types"
)

const defaultDebounce = 300 * time.Millisecond

// ErrAlreadyRunning is returned by a second call to Run.
var ErrAlreadyRunning = errors.New("watch: Run called more than once")

// defaultIgnores are never watched, whatever Ignore says.
var defaultIgnores = []string{
	"**/.git/**",
	"**/*.swp",
	"**/*.swo",
	"**/*~",
	"**/.DS_Store",
}

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Roots are the catalog directories to watch. Roots that do not exist
		// are skipped.
		Roots []string

		// Patterns select the files that trigger callbacks, as doublestar
		// globs relative to a root. Empty matches every non-ignored file.
		Patterns []string

		// Ignore adds to the built-in ignore patterns.
		Ignore []string

		// Debounce is the quiet period before the callback fires. Zero or
		// negative uses 300ms.
		Debounce time.Duration

		// Logger receives watcher diagnostics. nil discards them.
		Logger *slog.Logger

		// OnChange receives the changed files, sorted by root then path.
		OnChange func(ctx context.Context, changes []Change) error
	}

	// Change is one changed file under a watched root.
	Change struct {
		Root string
		// Path is slash-separated and relative to Root.
		Path string
	}

	// Watcher fires a debounced callback when matching files change under
	// any of its roots. Run may be called once.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		roots    []string
		ignores  []string
		logger   *slog.Logger
		debounce time.Duration
		started  atomic.Bool
	}
)

// Module returns the module whose descriptor directory holds the file:
// "acme/core/module.cue" belongs to acme/core. Files directly under the
// root belong to no module.
func (c Change) Module() (types.ModuleName, bool) {
	dir := filepath.ToSlash(filepath.Dir(filepath.FromSlash(c.Path)))
	if dir == "." || dir == "" {
		return "", false
	}
	name := types.ModuleName(dir)
	if name.Validate() != nil {
		return "", false
	}
	return name, true
}

// Modules returns the distinct modules named by changes, sorted.
func Modules(changes []Change) []types.ModuleName {
	var names []types.ModuleName
	for _, c := range changes {
		if n, ok := c.Module(); ok {
			names = append(names, n)
		}
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// New creates a Watcher and registers every non-ignored directory under
// the existing roots.
func New(cfg Config) (*Watcher, error) {
	if err := validatePatterns(cfg.Patterns, "watch"); err != nil {
		return nil, err
	}
	if err := validatePatterns(cfg.Ignore, "ignore"); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	roots := make([]string, 0, len(cfg.Roots))
	for _, r := range cfg.Roots {
		abs, err := filepath.Abs(r)
		if err != nil {
			return nil, fmt.Errorf("watch: resolve root %q: %w", r, err)
		}
		if info, err := os.Stat(abs); err != nil || !info.IsDir() {
			logger.Debug("skipping watch root", "root", abs, "error", err)
			continue
		}
		roots = append(roots, abs)
	}
	if len(roots) == 0 {
		return nil, fmt.Errorf("watch: none of the roots %v is a directory", cfg.Roots)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		roots:    roots,
		ignores:  append(slices.Clone(defaultIgnores), cfg.Ignore...),
		logger:   logger.With(slog.String("component", "watch")),
		debounce: debounce,
	}
	for _, root := range roots {
		if err := w.addTree(root); err != nil {
			if closeErr := fsw.Close(); closeErr != nil {
				w.logger.Warn("close after init failure", "error", closeErr)
			}
			return nil, err
		}
	}
	return w, nil
}

// Roots returns the absolute roots being watched.
func (w *Watcher) Roots() []string { return slices.Clone(w.roots) }

// Run processes events until ctx is canceled, which returns nil. A fatal
// fsnotify error ends Run with that error.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	var (
		mu      sync.Mutex
		pending = make(map[Change]struct{})
		timer   *time.Timer
		running atomic.Bool
	)

	// fire drains pending. A callback still running when the timer fires
	// again reschedules instead of overlapping.
	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			w.logger.Debug("callback busy, rescheduling")
			mu.Lock()
			if timer != nil {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		changes := make([]Change, 0, len(pending))
		for c := range pending {
			changes = append(changes, c)
		}
		clear(pending)
		mu.Unlock()

		slices.SortFunc(changes, func(a, b Change) int {
			return cmp.Or(strings.Compare(a.Root, b.Root), strings.Compare(a.Path, b.Path))
		})

		if w.cfg.OnChange != nil {
			if err := w.cfg.OnChange(ctx, changes); err != nil {
				w.logger.Warn("change callback failed", "error", err)
			}
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("close fsnotify", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			root, rel, ok := w.locate(evt.Name)
			if !ok || w.isIgnored(rel) {
				continue
			}
			if evt.Has(fsnotify.Create) {
				w.maybeAddDir(evt.Name, rel)
			}
			if !w.matches(rel) {
				continue
			}
			w.logger.Debug("change", "root", root, "path", rel, "op", evt.Op.String())

			mu.Lock()
			pending[Change{Root: root, Path: rel}] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			if isFatal(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			w.logger.Warn("fsnotify error", "error", err)
		}
	}
}

// locate maps an absolute event path to its root and slash-separated
// relative path. Nested roots resolve to the innermost.
func (w *Watcher) locate(name string) (root, rel string, ok bool) {
	for _, r := range w.roots {
		p, err := filepath.Rel(r, name)
		if err != nil || !filepath.IsLocal(p) {
			continue
		}
		if !ok || len(r) > len(root) {
			root, rel, ok = r, filepath.ToSlash(p), true
		}
	}
	return root, rel, ok
}

func (w *Watcher) addTree(root string) error {
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			w.logger.Warn("skipping inaccessible path", "path", path, "error", walkErr)
			return nil //nolint:nilerr // unreadable directories are skipped, not fatal
		}
		if !d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil //nolint:nilerr // unreachable for paths produced by WalkDir
		}
		rel = filepath.ToSlash(rel)
		if rel != "." && (w.isIgnored(rel) || w.isIgnored(rel+"/")) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add directory %q: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch: walk %s: %w", root, err)
	}
	return nil
}

// maybeAddDir extends the watch to directories created after New, so a new
// module directory is picked up without a restart.
func (w *Watcher) maybeAddDir(path, rel string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || w.isIgnored(rel+"/") {
		return
	}
	if err := w.fsw.Add(path); err != nil {
		w.logger.Warn("add new directory", "path", path, "error", err)
	}
}

func (w *Watcher) isIgnored(rel string) bool {
	return matchAny(w.ignores, rel)
}

func (w *Watcher) matches(rel string) bool {
	return len(w.cfg.Patterns) == 0 || matchAny(w.cfg.Patterns, rel)
}

func matchAny(patterns []string, rel string) bool {
	for _, pat := range patterns {
		if ok, err := doublestar.Match(pat, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string { return slices.Clone(defaultIgnores) }

func validatePatterns(patterns []string, label string) error {
	for _, pat := range patterns {
		if !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("watch: invalid %s pattern %q: %w", label, pat, doublestar.ErrBadPattern)
		}
	}
	return nil
}
