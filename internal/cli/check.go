package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/qmlfix/qmlfix/internal/layer"
	"github.com/qmlfix/qmlfix/internal/style"
	"github.com/qmlfix/qmlfix/pkg/qmlfix"
)

var (
	checkFieldsFile string
	checkRecursive  bool
	checkShowAll    bool
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [files...]",
	Short: "Check whether style files need rewriting",
	Long: `Check QGIS QML style files against a web map backend's expression rules
without modifying anything.

For every file that would be rewritten, a line diff of the pending changes
is printed. The command exits with code 1 when at least one file needs
rewriting, which makes it usable as a CI gate.

Examples:
  qmlfix check style.qml --fields fields.yaml
  qmlfix check --recursive --fields fields.yaml ./styles
  qmlfix check --output json --fields fields.yaml style.qml`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		checkStyles(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVarP(&checkFieldsFile, "fields", "f", "", "layer field metadata file (YAML or JSON)")
	checkCmd.Flags().BoolVarP(&checkRecursive, "recursive", "r", false, "recursively check directories")
	checkCmd.Flags().BoolVar(&checkShowAll, "show-all", false, "show clean files as well")
	_ = checkCmd.MarkFlagRequired("fields")
}

// CheckResult represents the result of checking one style file
type CheckResult struct {
	File     string        `json:"file" yaml:"file"`
	Clean    bool          `json:"clean" yaml:"clean"`
	Duration time.Duration `json:"duration_ms" yaml:"duration_ms"`
	Diff     string        `json:"diff,omitempty" yaml:"diff,omitempty"`
	Error    string        `json:"error,omitempty" yaml:"error,omitempty"`
}

// CheckSummary represents the summary of all check results
type CheckSummary struct {
	Total    int           `json:"total" yaml:"total"`
	Clean    int           `json:"clean" yaml:"clean"`
	Dirty    int           `json:"dirty" yaml:"dirty"`
	Duration time.Duration `json:"total_duration_ms" yaml:"total_duration_ms"`
	Results  []CheckResult `json:"results" yaml:"results"`
}

func checkStyles(cmd *cobra.Command, args []string) {
	start := time.Now()

	meta, err := layer.Load(checkFieldsFile)
	if err != nil {
		style.Error(cmd.ErrOrStderr(), fmt.Sprintf("Failed to load field metadata: %v", err))
		os.Exit(1)
	}

	files, err := collectStyleFiles(args, checkRecursive)
	if err != nil {
		style.Error(cmd.ErrOrStderr(), fmt.Sprintf("Failed to collect files: %v", err))
		os.Exit(1)
	}

	if len(files) == 0 {
		style.Warning(cmd.OutOrStdout(), "No style files found to check")
		return
	}

	textOutput := viper.GetString("output") == "text"
	quietMode := viper.GetBool("quiet")

	results := make([]CheckResult, 0, len(files))
	for _, file := range files {
		result := checkSingleFile(meta, file)
		results = append(results, result)

		if !textOutput || quietMode {
			continue
		}
		switch {
		case result.Error != "":
			style.Error(cmd.ErrOrStderr(), result.Error)
		case result.Clean:
			if checkShowAll {
				style.Success(cmd.OutOrStdout(), fmt.Sprintf("%s (%v)", file, result.Duration))
			}
		default:
			style.Warning(cmd.OutOrStdout(), fmt.Sprintf("%s needs rewriting", style.FormatFilePath(file)))
			fmt.Fprintln(cmd.OutOrStdout(), renderDiff(result.Diff))
		}
	}

	summary := CheckSummary{
		Total:    len(results),
		Duration: time.Since(start),
		Results:  results,
	}
	for _, r := range results {
		if r.Clean && r.Error == "" {
			summary.Clean++
		} else {
			summary.Dirty++
		}
	}

	switch viper.GetString("output") {
	case "json":
		style.PrintJSON(cmd.OutOrStdout(), summary)
	case "yaml":
		style.PrintYAML(cmd.OutOrStdout(), summary)
	default:
		if !quietMode {
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d file(s), %d clean, %d need rewriting in %v\n",
				summary.Total, summary.Clean, summary.Dirty, summary.Duration)
		}
	}

	if summary.Dirty > 0 {
		os.Exit(1)
	}
}

// checkSingleFile reports whether one style file would change, with a line
// diff of the pending rewrite.
func checkSingleFile(meta *layer.Metadata, file string) CheckResult {
	start := time.Now()
	result := CheckResult{File: file}

	data, err := os.ReadFile(file)
	if err != nil {
		result.Error = fmt.Sprintf("failed to read %s: %v", file, err)
		result.Duration = time.Since(start)
		return result
	}

	rewritten, err := qmlfix.Rewrite(string(data), meta)
	if err != nil {
		result.Error = fmt.Sprintf("failed to rewrite %s: %v", file, err)
		result.Duration = time.Since(start)
		return result
	}

	result.Clean = !rewritten.Changed
	if rewritten.Changed {
		result.Diff = lineDiff(string(data), rewritten.Style)
	}
	result.Duration = time.Since(start)
	return result
}

// lineDiff produces a minimal line-based diff between two documents, with
// unchanged lines omitted.
func lineDiff(before, after string) string {
	dmp := diffmatchpatch.New()
	beforeChars, afterChars, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(beforeChars, afterChars, false), lines)

	var sb strings.Builder
	for _, diff := range diffs {
		prefix := ""
		switch diff.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		default:
			continue
		}
		for _, line := range strings.Split(strings.TrimRight(diff.Text, "\n"), "\n") {
			sb.WriteString(prefix)
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// renderDiff colors a line diff for terminal output.
func renderDiff(diff string) string {
	var sb strings.Builder
	for _, line := range strings.Split(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "+"):
			sb.WriteString(style.DiffAddStyle.Render(line))
		case strings.HasPrefix(line, "-"):
			sb.WriteString(style.DiffDeleteStyle.Render(line))
		default:
			sb.WriteString(line)
		}
		sb.WriteByte('\n')
	}
	return strings.TrimRight(sb.String(), "\n")
}
