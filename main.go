// fnug - a terminal command runner that auto-selects lint/test commands
// from a declarative configuration tree.
package main

import "github.com/fnugdev/fnug/internal/cli"

func main() {
	cli.Execute()
}
