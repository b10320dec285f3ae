// SPDX-License-Identifier: MPL-2.0

// Package catalog provides modload.Catalog implementations: an in-memory
// catalog, an ordered chain of catalogs, and a directory catalog that reads
// module descriptors written in CUE (module.cue) or TOML (module.toml).
//
// A directory catalog root holds one directory per module:
//
//	<root>/<module>/module.cue
//	<root>/<module>/classes/...      content, when the descriptor sets content
//
// A descriptor lists the module's dependencies in shadowing order:
//
//	module:  "acme.app"
//	content: "classes"
//	dependencies: [
//	    {module: "acme.lib", export: true},
//	    {module: "acme.extra", optional: true, import: {exclude: ["acme/extra/internal/**"]}},
//	    {local: "vendor", paths: ["org/vendor"]},
//	]
//
// When content is set and no {self: true} entry is present, the module's own
// content is visible first.
package catalog
