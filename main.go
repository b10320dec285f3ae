// SPDX-License-Identifier: MPL-2.0

// modgraph resolves module dependency graphs and resource visibility.
package main

import "github.com/modgraph/modgraph/cmd/modgraph"

func main() {
	cmd.Execute()
}
