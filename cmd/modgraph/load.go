// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss/tree"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/modgraph/modgraph/pkg/content"
	"github.com/modgraph/modgraph/pkg/modload"
	"github.com/modgraph/modgraph/pkg/pathfilter"
	"github.com/modgraph/modgraph/pkg/types"
)

func newLoadCommand(app *App, flags *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "load <module>...",
		Short: "Load modules and print their dependency trees",
		Long: `Load one or more modules concurrently and print each dependency tree.

Modules reached more than once are expanded at their first occurrence and
marked with (*) afterwards.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(cmd.Context(), app, flags, args)
		},
	}
}

func runLoad(ctx context.Context, app *App, flags *rootFlagValues, args []string) error {
	s, err := app.newSession(ctx, flags)
	if err != nil {
		return err
	}

	names := make([]types.ModuleName, len(args))
	for i, a := range args {
		names[i] = types.ModuleName(a)
	}

	// Loads share one loader, so modules common to several roots are
	// defined once. Failures are collected per module, not short-circuited.
	modules := make([]*modload.Module, len(names))
	errs := make([]error, len(names))
	var g errgroup.Group
	for i, name := range names {
		g.Go(func() error {
			modules[i], errs[i] = s.loader.LoadModule(ctx, name)
			return nil
		})
	}
	_ = g.Wait()

	var firstErr error
	for i, name := range names {
		if errs[i] != nil {
			fmt.Fprintf(app.stdout, "%s %s\n", ErrorStyle.Render("✗"), CmdStyle.Render(string(name)))
			if reported := app.reportLoadFailure(s, name, errs[i]); firstErr == nil {
				firstErr = reported
			}
			continue
		}
		fmt.Fprintln(app.stdout, renderDependencyTree(modules[i]))
	}
	if firstErr == nil {
		s.logger.Debug("loaded", "modules", len(s.loader.LoadedModules()))
	}
	return firstErr
}

// renderDependencyTree draws m and its dependencies as a lipgloss tree.
func renderDependencyTree(m *modload.Module) string {
	seen := make(map[*modload.Module]bool)
	t := tree.Root(TitleStyle.Render(string(m.Name()))).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(treeEnumeratorStyle)
	addDependencies(t, m, seen)
	return t.String()
}

func addDependencies(t *tree.Tree, m *modload.Module, seen map[*modload.Module]bool) {
	seen[m] = true
	for _, dep := range m.Dependencies() {
		switch d := dep.(type) {
		case *modload.ModuleDependency:
			label := CmdStyle.Render(string(d.Name())) + filterNote(d.Filters())
			target := d.Module()
			switch {
			case target == nil:
				t.Child(WarningStyle.Render(string(d.Name())+" (optional, unavailable)"))
			case seen[target]:
				t.Child(label + SubtitleStyle.Render(" (*)"))
			default:
				sub := tree.Root(label)
				addDependencies(sub, target, seen)
				t.Child(sub)
			}
		case *modload.LocalDependency:
			t.Child(VerboseStyle.Render("local "+content.Describe(d.Provider())) +
				SubtitleStyle.Render(" ["+strings.Join(d.Paths(), ", ")+"]") + filterNote(d.Filters()))
		case *modload.SelfDependency:
			t.Child(VerboseStyle.Render("self") + filterNote(d.Filters()))
		}
	}
}

// filterNote marks dependencies that re-export what they import.
func filterNote(f modload.Filters) string {
	switch f.Export {
	case pathfilter.RejectAll():
		return ""
	case pathfilter.AcceptAll():
		return SuccessStyle.Render(" exported")
	default:
		return SuccessStyle.Render(" exported " + pathfilter.Describe(f.Export))
	}
}
