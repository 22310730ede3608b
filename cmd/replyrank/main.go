// replyrank submits tweet replies for remote scoring in batches, polls the
// resulting jobs, and exports the reconciled, ranked results.
package main

import (
	"fmt"
	"os"

	"github.com/replylab/replyrank/internal/cli"
	"github.com/replylab/replyrank/pkg/version"
)

func main() {
	os.Exit(run())
}

// run executes the root command and maps the outcome to an exit code.
func run() int {
	root := cli.NewRootCmd(version.GetVersion())
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
