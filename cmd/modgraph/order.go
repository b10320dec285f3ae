// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/modgraph/modgraph/internal/dag"
	"github.com/modgraph/modgraph/pkg/modload"
	"github.com/modgraph/modgraph/pkg/types"
)

func newOrderCommand(app *App, flags *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "order <module>...",
		Short: "Print modules in dependency order",
		Long: `Load modules and print everything they reach, dependencies first.

Modules on the same level do not depend on each other.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrder(cmd.Context(), app, flags, args)
		},
	}
}

func runOrder(ctx context.Context, app *App, flags *rootFlagValues, args []string) error {
	s, err := app.newSession(ctx, flags)
	if err != nil {
		return err
	}

	g := dag.New()
	for _, a := range args {
		name := types.ModuleName(a)
		m, err := s.loader.LoadModule(ctx, name)
		if err != nil {
			return app.reportLoadFailure(s, name, err)
		}
		addToGraph(g, m, make(map[*modload.Module]bool))
	}

	levels, err := g.Levels()
	if err != nil {
		return err
	}
	for i, level := range levels {
		fmt.Fprintf(app.stdout, "%s\n", SubtitleStyle.Render(fmt.Sprintf("level %d", i)))
		for _, name := range level {
			fmt.Fprintf(app.stdout, "  %s\n", CmdStyle.Render(string(name)))
		}
	}
	return nil
}

// addToGraph adds m and every linked module it reaches. Unavailable
// optional dependencies are left out.
func addToGraph(g *dag.Graph, m *modload.Module, seen map[*modload.Module]bool) {
	if seen[m] {
		return
	}
	seen[m] = true
	g.AddModule(m.Name())
	for _, dep := range m.Dependencies() {
		md, ok := dep.(*modload.ModuleDependency)
		if !ok || md.Module() == nil {
			continue
		}
		g.AddDependency(m.Name(), md.Module().Name())
		addToGraph(g, md.Module(), seen)
	}
}
