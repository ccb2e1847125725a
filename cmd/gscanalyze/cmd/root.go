package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "gscanalyze",
	Short: "Static analyzer for GSC/CSC scripts",
	Long: `gscanalyze lexes, parses, and runs flow-sensitive static analysis over
GSC/CSC scripts: unreachable code, undeclared identifiers, constant
reassignment, argument-count mismatches, and the other diagnostics of
a reaching-definitions dataflow pass over each function's control-flow
graph.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a gscanalyze.yaml config file")
}
