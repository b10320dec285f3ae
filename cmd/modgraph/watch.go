// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/modgraph/modgraph/internal/issue"
	"github.com/modgraph/modgraph/internal/watch"
	"github.com/modgraph/modgraph/pkg/types"
)

func newWatchCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var exported bool

	cmd := &cobra.Command{
		Use:   "watch <module> <path>",
		Short: "Re-resolve a path whenever module descriptors change",
		Long: `Resolve a path once, then watch the catalog directories and resolve it
again with a fresh loader each time a module descriptor changes.

Loaded modules never change, so every re-resolution reads all descriptors
anew. Stop with Ctrl+C.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), app, flags, types.ModuleName(args[0]), args[1], exported)
		},
	}
	cmd.Flags().BoolVar(&exported, "exported", false, "resolve the exported view")
	return cmd
}

func runWatch(ctx context.Context, app *App, flags *rootFlagValues, name types.ModuleName, path string, exported bool) error {
	s, err := app.newSession(ctx, flags)
	if err != nil {
		return err
	}
	debounce, err := s.cfg.Watch.DebounceDuration()
	if err != nil {
		return err
	}

	// A failed initial resolution is reported but does not stop the watch:
	// the user may fix the descriptor and save again.
	if err := resolveAndPrint(ctx, app, s, name, path, exported); err != nil {
		fmt.Fprintf(app.stderr, "%s %s\n", WarningStyle.Render("!"), formatErrorForDisplay(err, s.verbose))
	}

	current := s
	w, err := watch.New(watch.Config{
		Roots:    s.cfg.CatalogPaths,
		Patterns: s.cfg.Watch.Patterns,
		Debounce: debounce,
		Logger:   s.logger,
		OnChange: func(ctx context.Context, changes []watch.Change) error {
			modules := watch.Modules(changes)
			names := make([]string, len(modules))
			for i, m := range modules {
				names[i] = string(m)
			}
			fmt.Fprintf(app.stdout, "\n%s %d descriptor change(s) in %s\n",
				CmdStyle.Render("→"), len(changes), strings.Join(names, ", "))
			current = current.reload()
			if err := resolveAndPrint(ctx, app, current, name, path, exported); err != nil {
				fmt.Fprintf(app.stderr, "%s %s\n", WarningStyle.Render("!"), formatErrorForDisplay(err, current.verbose))
			}
			return nil
		},
	})
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("watch catalog").
			WithResource(fmt.Sprint(s.cfg.CatalogPaths)).
			WithIssue(issue.WatchFailedId).
			WithSuggestion("Check that the catalog directories exist").
			WithSuggestion("On Linux, raise fs.inotify.max_user_watches for large catalogs").
			Wrap(err).
			BuildError()
	}

	fmt.Fprintf(app.stdout, "\n%s Watching %d catalog root(s) (Ctrl+C to stop)...\n", CmdStyle.Render("→"), len(w.Roots()))
	return w.Run(ctx)
}
