// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/modgraph/modgraph/pkg/modload"
)

const (
	// CachePolicyRetain keeps every linked module for the loader's lifetime.
	CachePolicyRetain CachePolicyName = "retain"
	// CachePolicyWeak lets modules nothing references be collected.
	CachePolicyWeak CachePolicyName = "weak"

	// LogLevelDebug enables loader and catalog diagnostics.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo is the default level.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn reports only warnings and errors.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError reports only errors.
	LogLevelError LogLevel = "error"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidCachePolicy is returned when a CachePolicyName value is not recognized.
	ErrInvalidCachePolicy = errors.New("invalid cache policy")
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidCatalogPath is returned for an empty or whitespace-only catalog root.
	ErrInvalidCatalogPath = errors.New("invalid catalog path")
	// ErrInvalidWatchConfig is the sentinel error wrapped by InvalidWatchConfigError.
	ErrInvalidWatchConfig = errors.New("invalid watch config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// CachePolicyName names a module retention policy in configuration.
	CachePolicyName string

	// LogLevel is the minimum level logged by the CLI.
	LogLevel string

	// ColorScheme selects the issue page rendering style.
	ColorScheme string

	// InvalidValueError reports an enumerated field holding an unknown value.
	InvalidValueError struct {
		Field string
		Value string
		Valid []string
		err   error
	}

	// InvalidWatchConfigError collects WatchConfig field errors.
	InvalidWatchConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError collects field errors from every section.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// CatalogPaths are the catalog roots, searched in order.
		CatalogPaths []string `json:"catalog_paths" mapstructure:"catalog_paths"`
		// CachePolicy selects module retention.
		CachePolicy CachePolicyName `json:"cache_policy" mapstructure:"cache_policy"`
		// Log configures diagnostics.
		Log LogConfig `json:"log" mapstructure:"log"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" mapstructure:"ui"`
		// Watch configures the watch command.
		Watch WatchConfig `json:"watch" mapstructure:"watch"`

		// Source is the file the configuration was read from, empty for
		// defaults only.
		Source string `json:"-" mapstructure:"-"`
	}

	// LogConfig configures diagnostics.
	LogConfig struct {
		Level LogLevel `json:"level" mapstructure:"level"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// Verbose prints full error chains.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
		// ColorScheme sets the issue page style.
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
	}

	// WatchConfig configures descriptor watching.
	WatchConfig struct {
		// Debounce is a Go duration string, e.g. "300ms".
		Debounce string `json:"debounce" mapstructure:"debounce"`
		// Patterns are doublestar globs, relative to a catalog root, of the
		// files whose changes trigger re-resolution.
		Patterns []string `json:"patterns" mapstructure:"patterns"`
	}
)

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		CatalogPaths: []string{"."},
		CachePolicy:  CachePolicyRetain,
		Log:          LogConfig{Level: LogLevelInfo},
		UI:           UIConfig{Verbose: false, ColorScheme: ColorSchemeAuto},
		Watch: WatchConfig{
			Debounce: "300ms",
			Patterns: []string{"**/module.cue", "**/module.toml"},
		},
	}
}

// IsValid returns whether every field is valid.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	for i, p := range c.CatalogPaths {
		if strings.TrimSpace(p) == "" {
			errs = append(errs, fmt.Errorf("catalog_paths[%d]: %w", i, ErrInvalidCatalogPath))
		}
	}
	for _, v := range []interface{ IsValid() (bool, []error) }{c.CachePolicy, c.Log.Level, c.UI.ColorScheme, c.Watch} {
		if ok, fieldErrs := v.IsValid(); !ok {
			errs = append(errs, fieldErrs...)
		}
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Validate returns the aggregated validation error, or nil.
func (c Config) Validate() error {
	if ok, errs := c.IsValid(); !ok {
		return errs[0]
	}
	return nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap exposes ErrInvalidConfig and every field error.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// Error implements the error interface for InvalidValueError.
func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("%s: invalid value %q (valid: %s)", e.Field, e.Value, strings.Join(e.Valid, ", "))
}

// Unwrap returns the field's sentinel error.
func (e *InvalidValueError) Unwrap() error { return e.err }

// IsValid returns whether the CachePolicyName is recognized.
func (p CachePolicyName) IsValid() (bool, []error) {
	switch p {
	case CachePolicyRetain, CachePolicyWeak:
		return true, nil
	default:
		return false, []error{&InvalidValueError{
			Field: "cache_policy", Value: string(p),
			Valid: []string{string(CachePolicyRetain), string(CachePolicyWeak)}, err: ErrInvalidCachePolicy,
		}}
	}
}

// Policy converts the name to a loader policy.
func (p CachePolicyName) Policy() (modload.CachePolicy, error) {
	if ok, errs := p.IsValid(); !ok {
		return modload.CacheRetain, errs[0]
	}
	return modload.ParseCachePolicy(string(p))
}

// IsValid returns whether the LogLevel is recognized.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidValueError{
			Field: "log.level", Value: string(l),
			Valid: []string{"debug", "info", "warn", "error"}, err: ErrInvalidLogLevel,
		}}
	}
}

// Slog returns the matching slog level; unknown levels map to info.
func (l LogLevel) Slog() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsValid returns whether the ColorScheme is recognized.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidValueError{
			Field: "ui.color_scheme", Value: string(cs),
			Valid: []string{"auto", "dark", "light"}, err: ErrInvalidColorScheme,
		}}
	}
}

// GlamourStyle returns the glamour style name for the scheme.
func (cs ColorScheme) GlamourStyle() string {
	switch cs {
	case ColorSchemeDark:
		return "dark"
	case ColorSchemeLight:
		return "light"
	default:
		return "auto"
	}
}

// IsValid returns whether the debounce parses and every pattern is a valid glob.
func (c WatchConfig) IsValid() (bool, []error) {
	var errs []error
	if _, err := c.DebounceDuration(); err != nil {
		errs = append(errs, err)
	}
	for i, p := range c.Patterns {
		if !doublestar.ValidatePattern(p) {
			errs = append(errs, fmt.Errorf("watch.patterns[%d]: invalid glob %q", i, p))
		}
	}
	if len(errs) > 0 {
		return false, []error{&InvalidWatchConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// DebounceDuration parses Debounce. Negative durations are rejected.
func (c WatchConfig) DebounceDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.Debounce)
	if err != nil {
		return 0, fmt.Errorf("watch.debounce: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("watch.debounce: must not be negative, got %s", d)
	}
	return d, nil
}

// Error implements the error interface for InvalidWatchConfigError.
func (e *InvalidWatchConfigError) Error() string {
	return fmt.Sprintf("invalid watch config: %v", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidWatchConfig for errors.Is() compatibility.
func (e *InvalidWatchConfigError) Unwrap() error { return ErrInvalidWatchConfig }
