// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/modgraph/modgraph/internal/issue"
	"github.com/modgraph/modgraph/pkg/cueutil"
)

const (
	// AppName is the application name.
	AppName = "modgraph"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment overrides: MODGRAPH_CACHE_POLICY, MODGRAPH_LOG_LEVEL.
	EnvPrefix = "MODGRAPH"
)

//go:embed config_schema.cue
var configSchemaSource []byte

var configSchema = cueutil.MustCompileSchema(configSchemaSource, "#Config")

// ConfigDir returns the modgraph configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// loadWithOptions reads defaults, then the config file (if any), then the
// environment, and validates the result.
func loadWithOptions(ctx context.Context, fsys afero.Fs, opts LoadOptions) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load config canceled: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetFs(fsys)
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, err := resolveConfigPath(fsys, opts)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := loadCUEIntoViper(fsys, v, path); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithIssue(issue.ConfigLoadFailedId).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Run 'modgraph config show' to see the defaults").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Source = path

	if err := cfg.Validate(); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(path).
			WithIssue(issue.ConfigLoadFailedId).
			WithSuggestion("Check MODGRAPH_* environment variables for typos").
			Wrap(err).
			BuildError()
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()
	v.SetDefault("catalog_paths", defaults.CatalogPaths)
	v.SetDefault("cache_policy", string(defaults.CachePolicy))
	v.SetDefault("log.level", string(defaults.Log.Level))
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
	v.SetDefault("ui.color_scheme", string(defaults.UI.ColorScheme))
	v.SetDefault("watch.debounce", defaults.Watch.Debounce)
	v.SetDefault("watch.patterns", defaults.Watch.Patterns)
}

// resolveConfigPath picks the file to load: the explicit file, then the
// config directory, then the working directory. Empty means defaults only.
func resolveConfigPath(fsys afero.Fs, opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(fsys, opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithIssue(issue.ConfigLoadFailedId).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Run 'modgraph config init' to create a default file").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	dir := opts.ConfigDirPath
	if dir == "" {
		var err error
		if dir, err = ConfigDir(); err != nil {
			return "", err
		}
	}
	candidates := []string{
		filepath.Join(dir, ConfigFileName+"."+ConfigFileExt),
		ConfigFileName + "." + ConfigFileExt,
	}
	for _, c := range candidates {
		if fileExists(fsys, c) {
			return c, nil
		}
	}
	return "", nil
}

// loadCUEIntoViper validates a CUE file against #Config and merges it over
// the defaults. Fields are optional, so values need not be concrete.
func loadCUEIntoViper(fsys afero.Fs, v *viper.Viper, path string) error {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	values, err := cueutil.Decode[map[string]any](configSchema, data,
		cueutil.WithFilename(path), cueutil.WithConcrete(false))
	if err != nil {
		return err
	}

	if err := v.MergeConfigMap(*values); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

func fileExists(fsys afero.Fs, path string) bool {
	info, err := fsys.Stat(path)
	return err == nil && !info.IsDir()
}

// WriteDefault writes the default configuration to dir/config.cue unless a
// file is already there. It returns the file path.
func WriteDefault(fsys afero.Fs, dir string) (string, error) {
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if fileExists(fsys, path) {
		return path, nil
	}
	if err := afero.WriteFile(fsys, path, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return path, nil
}

// GenerateCUE renders cfg as a config.cue document.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// modgraph configuration file\n\n")

	sb.WriteString("catalog_paths: [")
	for i, p := range cfg.CatalogPaths {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%q", p)
	}
	sb.WriteString("]\n")
	fmt.Fprintf(&sb, "cache_policy: %q\n", cfg.CachePolicy)

	sb.WriteString("\nlog: {\n")
	fmt.Fprintf(&sb, "\tlevel: %q\n", cfg.Log.Level)
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	sb.WriteString("}\n")

	sb.WriteString("\nwatch: {\n")
	fmt.Fprintf(&sb, "\tdebounce: %q\n", cfg.Watch.Debounce)
	sb.WriteString("\tpatterns: [")
	for i, p := range cfg.Watch.Patterns {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%q", p)
	}
	sb.WriteString("]\n")
	sb.WriteString("}\n")

	return sb.String()
}
