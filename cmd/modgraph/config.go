// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/modgraph/modgraph/internal/config"
)

// newConfigCommand creates the `modgraph config` command tree.
func newConfigCommand(app *App, flags *rootFlagValues) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage modgraph configuration",
		Long: `Manage modgraph configuration.

Configuration is stored in:
  - Linux: ~/.config/modgraph/config.cue
  - macOS: ~/Library/Application Support/modgraph/config.cue
  - Windows: %APPDATA%\modgraph\config.cue

Every value can be overridden by a MODGRAPH_* environment variable,
e.g. MODGRAPH_CACHE_POLICY=weak or MODGRAPH_LOG_LEVEL=debug.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app, flags)
		},
	})

	var dir string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create the default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(app, dir)
		},
	}
	initCmd.Flags().StringVar(&dir, "dir", "", "directory to write config.cue to (default is the config directory)")
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config.Load(cmd.Context(), config.LoadOptions{ConfigFilePath: flags.configPath})
			if err != nil {
				return err
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App, flags *rootFlagValues) error {
	s, err := app.newSession(ctx, flags)
	if err != nil {
		return err
	}
	cfg := s.cfg

	keyStyle := CmdStyle
	valueStyle := SuccessStyle
	out := app.stdout

	fmt.Fprintln(out, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(out)
	if cfg.Source != "" {
		fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("Config file"), cfg.Source)
	} else {
		fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("catalog_paths"), valueStyle.Render(strings.Join(cfg.CatalogPaths, ", ")))
	fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("cache_policy"), valueStyle.Render(string(cfg.CachePolicy)))

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", keyStyle.Render("log"))
	fmt.Fprintf(out, "  level: %s\n", valueStyle.Render(string(cfg.Log.Level)))

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(out, "  verbose: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))
	fmt.Fprintf(out, "  color_scheme: %s\n", valueStyle.Render(string(cfg.UI.ColorScheme)))

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", keyStyle.Render("watch"))
	fmt.Fprintf(out, "  debounce: %s\n", valueStyle.Render(cfg.Watch.Debounce))
	fmt.Fprintf(out, "  patterns: %s\n", valueStyle.Render(strings.Join(cfg.Watch.Patterns, ", ")))
	return nil
}

func initConfig(app *App, dir string) error {
	if dir == "" {
		var err error
		if dir, err = config.ConfigDir(); err != nil {
			return err
		}
	}
	path, err := config.WriteDefault(app.fs, dir)
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	fmt.Fprintf(app.stdout, "%s Configuration at %s\n", SuccessStyle.Render("✓"), path)
	return nil
}
