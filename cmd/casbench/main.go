// Command casbench runs declarative benchmark suites against registered
// computer-algebra backends.
//
// Backends live outside this module; a backend package registers itself
// with internal/cas from its init function, so a deployment builds its own
// main that underscore-imports the backends it ships.
package main

import (
	"fmt"
	"os"

	"github.com/casbench/casbench/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
