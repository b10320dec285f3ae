// SPDX-License-Identifier: MPL-2.0

package catalog

import (
	"errors"
	"testing"

	"github.com/spf13/afero"

	"github.com/modgraph/modgraph/pkg/cueutil"
	"github.com/modgraph/modgraph/pkg/modload"
	"github.com/modgraph/modgraph/pkg/pathfilter"
)

const appCUE = `
module:      "acme.app"
version:     "1.4.0"
description: "Application module"
content:     "classes"
dependencies: [
	{module: "acme.lib", export: true},
	{module: "acme.extra", optional: true, import: {exclude: ["acme/extra/internal/**"]}},
	{local: "vendor", paths: ["org/vendor"]},
]
`

const appTOML = `
module = "acme.app"
version = "1.4.0"
description = "Application module"
content = "classes"

[[dependencies]]
module = "acme.lib"
export = true

[[dependencies]]
module = "acme.extra"
optional = true
import = { exclude = ["acme/extra/internal/**"] }

[[dependencies]]
local = "vendor"
paths = ["org/vendor"]
`

func TestParseDescriptor_Formats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format Format
		data   string
	}{
		{FormatCUE, appCUE},
		{FormatTOML, appTOML},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			t.Parallel()

			d, err := ParseDescriptor(tt.format, []byte(tt.data), tt.format.FileName())
			if err != nil {
				t.Fatalf("ParseDescriptor() error = %v", err)
			}
			if d.Module != "acme.app" || d.Version != "1.4.0" || d.Content != "classes" {
				t.Errorf("header = %+v", d)
			}
			if len(d.Dependencies) != 3 {
				t.Fatalf("len(Dependencies) = %d, want 3", len(d.Dependencies))
			}
			if lib := d.Dependencies[0]; lib.Module != "acme.lib" || !lib.Export {
				t.Errorf("dependencies[0] = %+v", lib)
			}
			extra := d.Dependencies[1]
			if !extra.Optional || extra.Import == nil || len(extra.Import.Exclude) != 1 {
				t.Errorf("dependencies[1] = %+v", extra)
			}
			if local := d.Dependencies[2]; local.Local != "vendor" || len(local.Paths) != 1 {
				t.Errorf("dependencies[2] = %s", local.String())
			}
		})
	}
}

func TestParseDescriptor_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		format Format
		data   string
		cueErr bool
	}{
		{"cue missing module", FormatCUE, `version: "1"`, true},
		{"cue unknown field", FormatCUE, `module: "a", colour: "red"`, true},
		{"cue bad rule default", FormatCUE, `module: "a", dependencies: [{module: "b", import: {default: "maybe"}}]`, true},
		{"cue two kinds", FormatCUE, `module: "a", dependencies: [{module: "b", local: "lib"}]`, true},
		{"toml missing module", FormatTOML, `version = "1"`, false},
		{"toml unknown field", FormatTOML, "module = \"a\"\ncolour = \"red\"", false},
		{"toml two kinds", FormatTOML, "module = \"a\"\n[[dependencies]]\nmodule = \"b\"\nself = true", false},
		{"toml escaping local", FormatTOML, "module = \"a\"\n[[dependencies]]\nlocal = \"../outside\"", false},
		{"toml optional local", FormatTOML, "module = \"a\"\n[[dependencies]]\nlocal = \"lib\"\noptional = true", false},
		{"toml self without content", FormatTOML, "module = \"a\"\n[[dependencies]]\nself = true", false},
		{"toml bad glob", FormatTOML, "module = \"a\"\n[[dependencies]]\nmodule = \"b\"\nclasses = { include = [\"a/[\"] }", false},
		{"toml invalid path", FormatTOML, "module = \"a\"\n[[dependencies]]\nlocal = \"lib\"\npaths = [\"../x\"]", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseDescriptor(tt.format, []byte(tt.data), tt.format.FileName())
			if err == nil {
				t.Fatal("ParseDescriptor() succeeded, want error")
			}
			var de *cueutil.DecodeError
			if tt.cueErr && !errors.As(err, &de) {
				t.Errorf("error = %v, want *cueutil.DecodeError", err)
			}
			if !tt.cueErr && !errors.Is(err, ErrInvalidDescriptor) {
				t.Errorf("error = %v, want ErrInvalidDescriptor", err)
			}
		})
	}
}

func TestFilterRules_Filter(t *testing.T) {
	t.Parallel()

	var nilRules *FilterRules
	if f, err := nilRules.Filter(pathfilter.RejectAll()); err != nil || !pathfilter.IsRejectAll(f) {
		t.Errorf("nil rules = %v, %v; want the fallback", f, err)
	}
	if f, _ := (&FilterRules{}).Filter(nil); !pathfilter.IsAcceptAll(f) {
		t.Errorf("empty rules = %s, want accept-all", pathfilter.Describe(f))
	}
	if f, _ := (&FilterRules{Default: RuleDefaultReject}).Filter(nil); !pathfilter.IsRejectAll(f) {
		t.Errorf("empty reject rules = %s, want reject-all", pathfilter.Describe(f))
	}

	rules := &FilterRules{
		Include: []string{"api/internal/exported"},
		Exclude: []string{"api/internal", "api/internal/**"},
		Default: RuleDefaultAccept,
	}
	f, err := rules.Filter(nil)
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	for path, want := range map[string]bool{
		"api":                   true,
		"api/internal":          false,
		"api/internal/deep":     false,
		"api/internal/exported": true,
	} {
		if got := f.Accept(path); got != want {
			t.Errorf("Accept(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestDescriptor_Spec(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	mustWrite(t, fsys, "/cat/acme.app/classes/acme/app/Main.class", "main")
	mustWrite(t, fsys, "/cat/acme.app/vendor/org/vendor/Lib.class", "lib")
	mustWrite(t, fsys, "/cat/acme.app/vendor/org/other/Skip.class", "skip")

	d, err := ParseDescriptor(FormatCUE, []byte(appCUE), "module.cue")
	if err != nil {
		t.Fatalf("ParseDescriptor() error = %v", err)
	}
	spec, err := d.Spec(fsys, "/cat/acme.app")
	if err != nil {
		t.Fatalf("Spec() error = %v", err)
	}

	if spec.Name != "acme.app" || spec.Content == nil {
		t.Fatalf("spec = %+v", spec)
	}
	if len(spec.Dependencies) != 4 {
		t.Fatalf("len(Dependencies) = %d, want 4 (self prepended)", len(spec.Dependencies))
	}
	if _, ok := spec.Dependencies[0].(*modload.SelfDependencySpec); !ok {
		t.Errorf("dependencies[0] = %s, want self", spec.Dependencies[0])
	}
	extra := spec.Dependencies[2].(*modload.ModuleDependencySpec)
	if !extra.IsOptional() || extra.Filters().Import.Accept("acme/extra/internal/x") {
		t.Errorf("extra = %s with import %s", extra, pathfilter.Describe(extra.Filters().Import))
	}
	local := spec.Dependencies[3].(*modload.LocalDependencySpec)
	if got := local.Paths(); len(got) != 1 || got[0] != "org/vendor" {
		t.Errorf("local paths = %v, want [org/vendor]", got)
	}
}

func mustWrite(t *testing.T, fsys afero.Fs, name, data string) {
	t.Helper()
	if err := afero.WriteFile(fsys, name, []byte(data), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestDescriptor_ExportFilterFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format Format
		data   string
	}{
		{FormatCUE, `
module: "acme.app"
dependencies: [{
	module: "acme.lib"
	export: true
	resource_export: {exclude: ["acme/lib/private/**"]}
	class_export: {include: ["acme/lib/api"], default: "reject"}
}]
`},
		{FormatTOML, `
module = "acme.app"

[[dependencies]]
module = "acme.lib"
export = true
resource_export = { exclude = ["acme/lib/private/**"] }
class_export = { include = ["acme/lib/api"], default = "reject" }
`},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			t.Parallel()

			d, err := ParseDescriptor(tt.format, []byte(tt.data), tt.format.FileName())
			if err != nil {
				t.Fatalf("ParseDescriptor() error = %v", err)
			}
			spec, err := d.Spec(afero.NewMemMapFs(), "/cat/acme.app")
			if err != nil {
				t.Fatalf("Spec() error = %v", err)
			}
			lib := spec.Dependencies[0].(*modload.ModuleDependencySpec)
			f := lib.Filters()

			if f.ResourceExport.Accept("acme/lib/private/keys") {
				t.Errorf("resource export %s accepts a private path", pathfilter.Describe(f.ResourceExport))
			}
			if !f.ResourceExport.Accept("acme/lib/public") {
				t.Errorf("resource export %s rejects a public path", pathfilter.Describe(f.ResourceExport))
			}
			if !f.ClassExport.Accept("acme/lib/api") || f.ClassExport.Accept("acme/lib/impl") {
				t.Errorf("class export = %s", pathfilter.Describe(f.ClassExport))
			}
			if !pathfilter.IsAcceptAll(f.ClassImport) || !pathfilter.IsAcceptAll(f.ResourceImport) {
				t.Error("import filters changed by export-only rules")
			}
		})
	}
}
