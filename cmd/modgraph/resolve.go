// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/modgraph/modgraph/pkg/content"
	"github.com/modgraph/modgraph/pkg/modload"
	"github.com/modgraph/modgraph/pkg/types"
)

func newResolveCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var exported bool

	cmd := &cobra.Command{
		Use:   "resolve <module> <path>",
		Short: "Show the providers that serve a path",
		Long: `Show, in lookup order, the providers that serve a package path when
looked up from inside a module. With --exported, show only what the module
makes visible to modules that depend on it.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd.Context(), app, flags, types.ModuleName(args[0]), args[1], exported)
		},
	}
	cmd.Flags().BoolVar(&exported, "exported", false, "resolve the exported view")
	return cmd
}

func runResolve(ctx context.Context, app *App, flags *rootFlagValues, name types.ModuleName, path string, exported bool) error {
	s, err := app.newSession(ctx, flags)
	if err != nil {
		return err
	}
	return resolveAndPrint(ctx, app, s, name, path, exported)
}

func resolveAndPrint(ctx context.Context, app *App, s *session, name types.ModuleName, path string, exported bool) error {
	rp := types.ResourcePath(path)
	if err := rp.Validate(); err != nil {
		return &ExitError{Code: types.ExitUsage, Err: err}
	}

	m, err := s.loader.LoadModule(ctx, name)
	if err != nil {
		return app.reportLoadFailure(s, name, err)
	}
	printProviders(app.stdout, m, string(rp), exported)
	return nil
}

func printProviders(w io.Writer, m *modload.Module, path string, exported bool) {
	view := "internal"
	if exported {
		view = "exported"
	}
	fmt.Fprintf(w, "%s %s %s\n", TitleStyle.Render(string(m.Name())), SubtitleStyle.Render(view+" view of"), CmdStyle.Render(path))

	providers := m.Resolve(path, exported)
	if len(providers) == 0 {
		fmt.Fprintf(w, "  %s\n", SubtitleStyle.Render("(no providers)"))
		return
	}
	for i, p := range providers {
		fmt.Fprintf(w, "  %d. %s\n", i+1, content.Describe(p))
	}
}
