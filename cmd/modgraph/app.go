// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/modgraph/modgraph/internal/config"
	"github.com/modgraph/modgraph/pkg/catalog"
	"github.com/modgraph/modgraph/pkg/modload"
	"github.com/modgraph/modgraph/pkg/types"
)

type (
	// App wires CLI services and shared dependencies. Every command handler
	// receives an App and builds a session from it.
	App struct {
		Config ConfigProvider
		fs     afero.Fs
		stdout io.Writer
		stderr io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config ConfigProvider
		Fs     afero.Fs
		Stdout io.Writer
		Stderr io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// session is the per-invocation state: effective configuration plus the
	// catalog and loader built from it.
	session struct {
		cfg     *config.Config
		logger  *slog.Logger
		catalog *catalog.Dir
		loader  *modload.Loader
		verbose bool
	}
)

// NewApp creates an App, filling unset dependencies with production defaults.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config: deps.Config,
		fs:     deps.Fs,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}
	if app.fs == nil {
		app.fs = afero.NewOsFs()
	}
	if app.Config == nil {
		app.Config = config.NewProviderFs(app.fs)
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app
}

// newSession loads configuration, applies flag overrides and builds a fresh
// loader over the directory catalog.
func (a *App) newSession(ctx context.Context, flags *rootFlagValues) (*session, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: flags.configPath})
	if err != nil {
		return nil, err
	}

	if len(flags.catalogPaths) > 0 {
		cfg.CatalogPaths = flags.catalogPaths
	}
	if flags.cachePolicy != "" {
		cfg.CachePolicy = config.CachePolicyName(flags.cachePolicy)
	}
	verbose := flags.verbose || cfg.UI.Verbose
	if flags.verbose {
		cfg.Log.Level = config.LogLevelDebug
	}
	if err := cfg.Validate(); err != nil {
		return nil, &ExitError{Code: types.ExitUsage, Err: fmt.Errorf("invalid flags: %w", err)}
	}

	policy, err := cfg.CachePolicy.Policy()
	if err != nil {
		return nil, err
	}

	logger := a.newLogger(cfg.Log.Level)
	s := &session{cfg: cfg, logger: logger, verbose: verbose}
	s.catalog = catalog.NewDir(cfg.CatalogPaths, catalog.WithFs(a.fs), catalog.WithLogger(logger))
	s.loader = modload.NewLoader(s.catalog,
		modload.WithName("cli"),
		modload.WithCachePolicy(policy),
		modload.WithLogger(logger))
	return s, nil
}

// reload returns a session sharing s's configuration with a new loader, so
// changed descriptors are read again.
func (s *session) reload() *session {
	fresh := *s
	fresh.loader = modload.NewLoader(s.catalog,
		modload.WithName("cli"),
		modload.WithCachePolicy(s.loader.Policy()),
		modload.WithLogger(s.logger))
	return &fresh
}

// newLogger builds a charmbracelet logger on stderr and exposes it through
// slog for the library packages.
func (a *App) newLogger(level config.LogLevel) *slog.Logger {
	lvl, err := log.ParseLevel(string(level))
	if err != nil {
		lvl = log.InfoLevel
	}
	handler := log.NewWithOptions(a.stderr, log.Options{
		Prefix: "modgraph",
		Level:  lvl,
	})
	return slog.New(handler)
}
