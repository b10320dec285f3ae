// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"
)

// newCatalogFs builds a catalog under /cat:
//
//	acme.app -> acme.lib (exported), acme.util, acme.ghost (optional, missing)
//	acme.lib -> acme.util (exported)
//	cyc.a -> cyc.b -> cyc.a
func newCatalogFs(t *testing.T) afero.Fs {
	t.Helper()

	fsys := afero.NewMemMapFs()
	files := map[string]string{
		"/cat/acme.app/module.cue": `
module:  "acme.app"
content: "classes"
dependencies: [
	{module: "acme.lib", export: true},
	{module: "acme.util"},
	{module: "acme.ghost", optional: true},
]
`,
		"/cat/acme.app/classes/acme/app/Main.class": "main",
		"/cat/acme.lib/module.toml": `
module = "acme.lib"
content = "classes"

[[dependencies]]
module = "acme.util"
export = true
`,
		"/cat/acme.lib/classes/acme/lib/Lib.class":   "lib",
		"/cat/acme.util/module.cue":                  "module: \"acme.util\"\ncontent: \"classes\"\n",
		"/cat/acme.util/classes/acme/util/Util.class": "util",
		"/cat/cyc.a/module.cue":                      "module: \"cyc.a\"\ndependencies: [{module: \"cyc.b\"}]\n",
		"/cat/cyc.b/module.cue":                      "module: \"cyc.b\"\ndependencies: [{module: \"cyc.a\"}]\n",
	}
	for path, data := range files {
		if err := afero.WriteFile(fsys, path, []byte(data), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	return fsys
}

// runCLI executes the root command against fsys and captures its output.
func runCLI(t *testing.T, fsys afero.Fs, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var out, errOut bytes.Buffer
	app := NewApp(Dependencies{Fs: fsys, Stdout: &out, Stderr: &errOut})
	root := NewRootCommand(app)
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)
	err = root.ExecuteContext(t.Context())
	return out.String(), errOut.String(), err
}
