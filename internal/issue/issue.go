// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const (
	ModuleNotFoundId Id = iota + 1
	DependencyCycleId
	CatalogFailureId
	DependencyFailureId
	DescriptorParseErrorId
	InvalidModuleNameId
	ConfigLoadFailedId
	WatchFailedId
)

type (
	Id int

	MarkdownMsg string

	HttpLink string

	Issue struct {
		id       Id          // lookup key
		mdMsg    MarkdownMsg // rendered page body
		docLinks []HttpLink  // must never be empty
		extLinks []HttpLink
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Markdown returns the page body followed by its links.
func (i *Issue) Markdown() string {
	var sb strings.Builder
	sb.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		sb.WriteString("\n\n## See also\n")
		for _, link := range append(i.DocLinks(), i.extLinks...) {
			sb.WriteString("- <" + string(link) + ">\n")
		}
	}
	return sb.String()
}

// Render renders the page for a terminal. stylePath is a glamour style name
// ("dark", "light", "notty") or a JSON style file.
func (i *Issue) Render(stylePath string) (string, error) {
	return render(i.Markdown(), stylePath)
}

var (
	render = glamour.Render

	moduleNotFoundIssue = &Issue{
		id: ModuleNotFoundId,
		mdMsg: `
# Module not found!

No catalog root contains a descriptor for the requested module.

## Search order
Each catalog root is searched in order for ` + "`<root>/<module>/module.cue`" + `, then
` + "`<root>/<module>/module.toml`" + `. The first match wins.

## Things you can try
- Check the module name for typos. Names are matched exactly.
- List the roots in use:
~~~
$ modgraph config show
~~~
- Point the command at another root:
~~~
$ modgraph --catalog ./modules load acme.app
~~~`,
		docLinks: []HttpLink{"https://github.com/modgraph/modgraph#catalogs"},
	}

	dependencyCycleIssue = &Issue{
		id: DependencyCycleId,
		mdMsg: `
# Module dependency cycle!

A module depends on itself, directly or through other modules. The chain in
the error message lists every module on the cycle, in resolution order.

## Things you can try
- Remove one edge of the cycle from its descriptor.
- If one side only needs the other when present, mark that dependency optional:
~~~cue
dependencies: [
	{module: "acme.plugin", optional: true},
]
~~~
  An optional dependency that closes a cycle is skipped; the module on the
  other side still fails.`,
		docLinks: []HttpLink{"https://github.com/modgraph/modgraph#dependencies"},
	}

	catalogFailureIssue = &Issue{
		id: CatalogFailureId,
		mdMsg: `
# Catalog failure!

The catalog found the module but could not produce its specification, usually
because the descriptor is unreadable or invalid.

## Things you can try
- Run with ` + "`--verbose`" + ` to see the full error chain.
- Check that the descriptor's ` + "`module`" + ` field matches its directory name.
- Check that ` + "`content`" + ` and ` + "`local`" + ` directories exist inside the module directory.`,
		docLinks: []HttpLink{"https://github.com/modgraph/modgraph#descriptors"},
	}

	dependencyFailureIssue = &Issue{
		id: DependencyFailureId,
		mdMsg: `
# Required dependency failed!

A module could not be loaded because one of its required dependencies failed.
The innermost cause is at the end of the error chain.

## Things you can try
- Load the dependency on its own to see its failure:
~~~
$ modgraph load <dependency>
~~~
- Mark the dependency optional if the module can work without it.`,
		docLinks: []HttpLink{"https://github.com/modgraph/modgraph#dependencies"},
	}

	descriptorParseErrorIssue = &Issue{
		id: DescriptorParseErrorId,
		mdMsg: `
# Failed to parse module descriptor!

## Common issues
- Invalid CUE or TOML syntax
- Unknown field names
- A dependency that sets more than one of ` + "`module`" + `, ` + "`local`" + ` and ` + "`self`" + `
- A filter rule default other than ` + "`accept`" + ` or ` + "`reject`" + `

## Example descriptor
~~~cue
module:  "acme.app"
content: "classes"
dependencies: [
	{module: "acme.lib", export: true},
	{local: "vendor", paths: ["org/vendor"]},
]
~~~`,
		docLinks: []HttpLink{"https://github.com/modgraph/modgraph#descriptors"},
		extLinks: []HttpLink{"https://cuelang.org/docs/", "https://toml.io/en/v1.0.0"},
	}

	invalidModuleNameIssue = &Issue{
		id: InvalidModuleNameId,
		mdMsg: `
# Invalid module name!

Module names must be non-empty and must not contain whitespace or control
characters.`,
		docLinks: []HttpLink{"https://github.com/modgraph/modgraph#modules"},
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

## Things you can try
- Print the effective configuration:
~~~
$ modgraph config show
~~~
- Write a fresh default file:
~~~
$ modgraph config init
~~~
- Environment variables with the ` + "`MODGRAPH_`" + ` prefix override file values,
  e.g. ` + "`MODGRAPH_CACHE_POLICY=weak`" + `.`,
		docLinks: []HttpLink{"https://github.com/modgraph/modgraph#configuration"},
	}

	watchFailedIssue = &Issue{
		id: WatchFailedId,
		mdMsg: `
# Failed to watch catalog roots!

## Things you can try
- Check that every catalog root exists and is readable.
- On Linux, raise the inotify watch limit:
~~~
$ sysctl fs.inotify.max_user_watches=524288
~~~`,
		docLinks: []HttpLink{"https://github.com/modgraph/modgraph#watch"},
	}

	issues = map[Id]*Issue{
		moduleNotFoundIssue.id:       moduleNotFoundIssue,
		dependencyCycleIssue.id:      dependencyCycleIssue,
		catalogFailureIssue.id:       catalogFailureIssue,
		dependencyFailureIssue.id:    dependencyFailureIssue,
		descriptorParseErrorIssue.id: descriptorParseErrorIssue,
		invalidModuleNameIssue.id:    invalidModuleNameIssue,
		configLoadFailedIssue.id:     configLoadFailedIssue,
		watchFailedIssue.id:          watchFailedIssue,
	}
)

// Values returns every issue ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

// All returns a copy of the registry keyed by Id.
func All() map[Id]*Issue {
	return maps.Clone(issues)
}

// Get returns the issue for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
