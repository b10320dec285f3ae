// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/modgraph/modgraph/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlagValues holds the persistent flags shared by every subcommand.
type rootFlagValues struct {
	configPath   string
	catalogPaths []string
	cachePolicy  string
	verbose      bool
}

// NewRootCommand builds the modgraph command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlagValues{}

	rootCmd := &cobra.Command{
		Use:   "modgraph",
		Short: "Resolve module dependency graphs and resource visibility",
		Long: TitleStyle.Render("modgraph") + SubtitleStyle.Render(" - module dependency resolution") + `

modgraph loads modules from catalog directories, links their dependencies
and answers which providers serve a class or resource path, honouring
import and export filters along every edge.

Each module lives at <catalog>/<module>/module.cue (or module.toml).

` + SubtitleStyle.Render("Examples:") + `
  modgraph load acme.app              Load a module and print its dependency tree
  modgraph resolve acme.app acme/lib  Show the providers serving a path
  modgraph paths acme.app --exported  List the paths a module exports
  modgraph order acme.app             Print modules dependencies-first
  modgraph watch acme.app acme/lib    Re-resolve whenever descriptors change
  modgraph config show                Show the effective configuration`,
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output and debug logging")
	pf.StringVar(&flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/modgraph/config.cue)")
	pf.StringSliceVarP(&flags.catalogPaths, "catalog", "C", nil, "catalog directories, searched in order")
	pf.StringVar(&flags.cachePolicy, "cache-policy", "", "module cache policy: retain or weak")

	rootCmd.AddCommand(
		newLoadCommand(app, flags),
		newResolveCommand(app, flags),
		newPathsCommand(app, flags),
		newOrderCommand(app, flags),
		newWatchCommand(app, flags),
		newConfigCommand(app, flags),
	)
	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI with production dependencies and exits with the
// command's exit code. It is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
	}
}

// formatErrorForDisplay formats an error for user display. ActionableErrors
// use their own Format, which shows the full chain in verbose mode.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}
