// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/modgraph/modgraph/internal/issue"
	"github.com/modgraph/modgraph/pkg/types"
)

// reportLoadFailure converts err to an ExitError. In verbose mode it also
// prints the full error chain and the issue page for the failure kind.
func (a *App) reportLoadFailure(s *session, name types.ModuleName, err error) error {
	exitErr := loadFailure(name, err)
	if !s.verbose {
		return exitErr
	}

	fmt.Fprintln(a.stderr, formatErrorForDisplay(exitErr.Err, true))
	var ae *issue.ActionableError
	if errors.As(exitErr.Err, &ae) {
		if page := issue.Get(ae.Issue); page != nil {
			rendered, renderErr := page.Render(s.cfg.UI.ColorScheme.GlamourStyle())
			if renderErr != nil {
				s.logger.Warn("render issue page", "issue", ae.Issue, "error", renderErr)
			} else {
				fmt.Fprint(a.stderr, rendered)
			}
		}
	}
	return exitErr
}
