// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/modgraph/modgraph/internal/issue"
	"github.com/modgraph/modgraph/pkg/types"
)

func TestLoadCommand_PrintsTree(t *testing.T) {
	t.Parallel()

	out, _, err := runCLI(t, newCatalogFs(t), "--catalog", "/cat", "load", "acme.app")
	if err != nil {
		t.Fatalf("load error = %v", err)
	}
	for _, want := range []string{"acme.app", "acme.lib exported", "acme.util", "self", "acme.ghost (optional, unavailable)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	// acme.util is reached through acme.lib first, then directly.
	if !strings.Contains(out, "(*)") {
		t.Errorf("repeated module should be marked (*):\n%s", out)
	}
}

func TestLoadCommand_Concurrent(t *testing.T) {
	t.Parallel()

	out, _, err := runCLI(t, newCatalogFs(t), "-C", "/cat", "load", "acme.lib", "acme.util", "acme.app")
	if err != nil {
		t.Fatalf("load error = %v", err)
	}
	// Trees print in argument order.
	lib, util, app := strings.Index(out, "acme.lib"), strings.Index(out, "acme.util"), strings.Index(out, "acme.app")
	if lib < 0 || util < 0 || app < 0 || lib > app {
		t.Errorf("unexpected output order:\n%s", out)
	}
}

func TestLoadCommand_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		module   string
		wantCode types.ExitCode
		wantId   issue.Id
	}{
		{"not found", "acme.missing", types.ExitModuleNotFound, issue.ModuleNotFoundId},
		{"cycle", "cyc.a", types.ExitDependencyCycle, issue.DependencyCycleId},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, _, err := runCLI(t, newCatalogFs(t), "--catalog", "/cat", "load", tt.module)
			var exitErr *ExitError
			if !errors.As(err, &exitErr) {
				t.Fatalf("load error = %v, want *ExitError", err)
			}
			if exitErr.Code != tt.wantCode {
				t.Errorf("Code = %d, want %d", exitErr.Code, tt.wantCode)
			}
			var ae *issue.ActionableError
			if !errors.As(err, &ae) || ae.Issue != tt.wantId {
				t.Errorf("error = %v, want issue %v", err, tt.wantId)
			}
			if !strings.Contains(out, tt.module) {
				t.Errorf("output should name the failed module:\n%s", out)
			}
		})
	}
}

func TestLoadCommand_VerboseRendersIssue(t *testing.T) {
	t.Parallel()

	_, stderr, err := runCLI(t, newCatalogFs(t), "--catalog", "/cat", "--verbose", "load", "acme.missing")
	if err == nil {
		t.Fatal("load should fail")
	}
	if !strings.Contains(stderr, "acme.missing") {
		t.Errorf("verbose stderr should carry the error chain:\n%s", stderr)
	}
}

func TestLoadCommand_RequiresArgs(t *testing.T) {
	t.Parallel()

	if _, _, err := runCLI(t, newCatalogFs(t), "load"); err == nil {
		t.Error("load without modules should fail")
	}
}

func TestLoadCommand_InvalidCachePolicy(t *testing.T) {
	t.Parallel()

	_, _, err := runCLI(t, newCatalogFs(t), "--catalog", "/cat", "--cache-policy", "soft", "load", "acme.app")
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != types.ExitUsage {
		t.Errorf("error = %v, want ExitUsage", err)
	}
}

func TestLoadCommand_WeakPolicy(t *testing.T) {
	t.Parallel()

	out, _, err := runCLI(t, newCatalogFs(t), "--catalog", "/cat", "--cache-policy", "weak", "load", "acme.lib")
	if err != nil {
		t.Fatalf("load error = %v", err)
	}
	if !strings.Contains(out, "acme.util") {
		t.Errorf("output missing acme.util:\n%s", out)
	}
}

func TestOrderCommand(t *testing.T) {
	t.Parallel()

	out, _, err := runCLI(t, newCatalogFs(t), "--catalog", "/cat", "order", "acme.app")
	if err != nil {
		t.Fatalf("order error = %v", err)
	}
	want := "level 0\n  acme.util\nlevel 1\n  acme.lib\nlevel 2\n  acme.app\n"
	if out != want {
		t.Errorf("order output = %q, want %q", out, want)
	}
}
