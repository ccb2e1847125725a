package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/gscls/analyzer/internal/analyzer"
	"github.com/gscls/analyzer/internal/apidata"
	"github.com/gscls/analyzer/internal/glog"
	"github.com/gscls/analyzer/internal/workspace"
)

// outputFormat is a pflag.Value restricting --format to a closed set,
// rejecting anything else at flag-parse time instead of silently falling
// back to text.
type outputFormat string

const (
	formatText outputFormat = "text"
	formatJSON outputFormat = "json"
)

func (f *outputFormat) String() string { return string(*f) }

func (f *outputFormat) Type() string { return "format" }

func (f *outputFormat) Set(v string) error {
	switch outputFormat(v) {
	case formatText, formatJSON:
		*f = outputFormat(v)
		return nil
	default:
		return fmt.Errorf("must be %q or %q", formatText, formatJSON)
	}
}

var _ pflag.Value = (*outputFormat)(nil)

var (
	analyzeFormat     = formatText
	analyzeGlob       string
	analyzeMaxWorkers int64
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [files or directories...]",
	Short: "Run the analyzer over one or more scripts and report diagnostics",
	Long: `analyze lexes, parses, and runs the dataflow pass over each given
script, printing every diagnostic. Directories are walked for files
matching --glob (default "**/*.gsc").

Examples:
  gscanalyze analyze script.gsc
  gscanalyze analyze --format json scripts/
  gscanalyze analyze --glob "**/*.csc" scripts/`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().Var(&analyzeFormat, "format", `output format: "text" or "json"`)
	analyzeCmd.Flags().StringVar(&analyzeGlob, "glob", "**/*.gsc", "glob pattern used when scanning a directory")
	analyzeCmd.Flags().Int64Var(&analyzeMaxWorkers, "max-workers", 4, "maximum number of scripts analyzed concurrently")
}

func runAnalyze(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := glog.Discard()
	if verbose {
		logger = glog.New(glog.Options{Format: glog.Text})
	}

	opts := analyzer.Options{API: apidata.Default(), Logger: logger, BudgetMultiplier: cfg.IterationMultiplier}
	mgr := workspace.NewManager(analyzeMaxWorkers, opts, cfg)

	ctx := context.Background()
	results := make(map[string]*analyzer.Result)

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return fmt.Errorf("analyze: %w", err)
		}
		if info.IsDir() {
			dirResults, err := mgr.AnalyzeAll(ctx, arg, analyzeGlob)
			if err != nil {
				return fmt.Errorf("analyze %s: %w", arg, err)
			}
			for rel, res := range dirResults {
				results[arg+"/"+rel] = res
			}
			continue
		}
		res, err := mgr.AnalyzeFile(ctx, arg)
		if err != nil {
			return fmt.Errorf("analyze %s: %w", arg, err)
		}
		results[arg] = res
	}

	if analyzeFormat == formatJSON {
		return printDiagnosticsJSON(results)
	}
	return printDiagnosticsText(results)
}

func printDiagnosticsText(results map[string]*analyzer.Result) error {
	total := 0
	for path, res := range results {
		for _, d := range res.Diagnostics {
			total++
			fmt.Printf("%s:%d:%d: %s: %s [%s]\n",
				path, d.Range.Start.Line, d.Range.Start.Character, d.Severity, d.Message(), d.Code)
		}
	}
	if total == 0 {
		fmt.Println("no diagnostics")
	}
	return nil
}

func printDiagnosticsJSON(results map[string]*analyzer.Result) error {
	doc := "{}"
	var err error
	for path, res := range results {
		for i, d := range res.Diagnostics {
			base := fmt.Sprintf("files.%s.%d", jsonKey(path), i)
			if doc, err = sjson.Set(doc, base+".line", d.Range.Start.Line); err != nil {
				return err
			}
			if doc, err = sjson.Set(doc, base+".character", d.Range.Start.Character); err != nil {
				return err
			}
			if doc, err = sjson.Set(doc, base+".severity", d.Severity.String()); err != nil {
				return err
			}
			if doc, err = sjson.Set(doc, base+".code", string(d.Code)); err != nil {
				return err
			}
			if doc, err = sjson.Set(doc, base+".message", d.Message()); err != nil {
				return err
			}
		}
	}
	fmt.Println(string(pretty.Pretty([]byte(doc))))
	return nil
}

func jsonKey(path string) string {
	// sjson treats "." as a path separator; escape it so file paths
	// containing dots stay intact as a single JSON object key.
	out := make([]byte, 0, len(path))
	for _, r := range path {
		if r == '.' {
			out = append(out, '\\', '.')
			continue
		}
		out = append(out, string(r)...)
	}
	return string(out)
}
