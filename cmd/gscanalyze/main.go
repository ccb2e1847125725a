// Command gscanalyze is the CLI front end for the GSC/CSC static
// analyzer: lex, parse, run the signature and dataflow passes, and
// report diagnostics or editor-facing facts for one or many scripts.
package main

import (
	"fmt"
	"os"

	"github.com/gscls/analyzer/cmd/gscanalyze/cmd"
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
