// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/modgraph/modgraph/pkg/types"
)

func newPathsCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var exported bool

	cmd := &cobra.Command{
		Use:   "paths <module>",
		Short: "List the paths visible in a module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPaths(cmd.Context(), app, flags, types.ModuleName(args[0]), exported)
		},
	}
	cmd.Flags().BoolVar(&exported, "exported", false, "list only paths exported to dependents")
	return cmd
}

func runPaths(ctx context.Context, app *App, flags *rootFlagValues, name types.ModuleName, exported bool) error {
	s, err := app.newSession(ctx, flags)
	if err != nil {
		return err
	}
	m, err := s.loader.LoadModule(ctx, name)
	if err != nil {
		return app.reportLoadFailure(s, name, err)
	}

	paths := m.Paths(exported)
	if len(paths) == 0 {
		fmt.Fprintln(app.stdout, SubtitleStyle.Render("(no paths)"))
		return nil
	}
	for _, p := range paths {
		if p == "" {
			p = "<root>"
		}
		fmt.Fprintln(app.stdout, p)
	}
	return nil
}
