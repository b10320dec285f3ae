// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for modgraph.
//
// The commands load modules from directory catalogs, print dependency trees,
// and answer path lookups the way a running loader would.
package cmd
