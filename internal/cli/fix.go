package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/qmlfix/qmlfix/internal/layer"
	"github.com/qmlfix/qmlfix/internal/style"
	"github.com/qmlfix/qmlfix/pkg/qmlfix"
)

var (
	fixFieldsFile string
	fixOutput     string
	fixWrite      bool
	fixRecursive  bool
)

// fixCmd represents the fix command
var fixCmd = &cobra.Command{
	Use:   "fix [files...]",
	Short: "Rewrite style files for a web map backend",
	Long: `Rewrite the field-reference expressions in QGIS QML style files so a web
map backend renders them correctly.

Boolean field references become if("field", true, false) conditionals,
references to the source primary key become the backend's @id token, and
boolean renderer categories become integer categories. Files that need no
rewriting are left byte-for-byte untouched.

The layer's field metadata is read from a YAML or JSON sidecar file, see
'qmlfix init' for a template.

Examples:
  qmlfix fix style.qml --fields fields.yaml            # Print result to stdout
  qmlfix fix style.qml --fields fields.yaml -o out.qml # Write to a new file
  qmlfix fix --write --fields fields.yaml *.qml        # Rewrite in place
  qmlfix fix --write --recursive --fields fields.yaml ./styles`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		fixStyles(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(fixCmd)

	fixCmd.Flags().StringVarP(&fixFieldsFile, "fields", "f", "", "layer field metadata file (YAML or JSON)")
	fixCmd.Flags().StringVarP(&fixOutput, "out", "o", "", "output file (single input file only)")
	fixCmd.Flags().BoolVarP(&fixWrite, "write", "w", false, "rewrite files in place")
	fixCmd.Flags().BoolVarP(&fixRecursive, "recursive", "r", false, "recursively process directories")
	_ = fixCmd.MarkFlagRequired("fields")
}

// FixResult represents the result of fixing one style file
type FixResult struct {
	File     string        `json:"file" yaml:"file"`
	Changed  bool          `json:"changed" yaml:"changed"`
	Written  string        `json:"written,omitempty" yaml:"written,omitempty"`
	Duration time.Duration `json:"duration_ms" yaml:"duration_ms"`
	Error    string        `json:"error,omitempty" yaml:"error,omitempty"`
}

// FixSummary represents the summary of all fix results
type FixSummary struct {
	Total    int           `json:"total" yaml:"total"`
	Changed  int           `json:"changed" yaml:"changed"`
	Failed   int           `json:"failed" yaml:"failed"`
	Duration time.Duration `json:"total_duration_ms" yaml:"total_duration_ms"`
	Results  []FixResult   `json:"results" yaml:"results"`
}

func fixStyles(cmd *cobra.Command, args []string) {
	start := time.Now()

	meta, err := layer.Load(fixFieldsFile)
	if err != nil {
		style.Error(cmd.ErrOrStderr(), fmt.Sprintf("Failed to load field metadata: %v", err))
		os.Exit(1)
	}

	files, err := collectStyleFiles(args, fixRecursive)
	if err != nil {
		style.Error(cmd.ErrOrStderr(), fmt.Sprintf("Failed to collect files: %v", err))
		os.Exit(1)
	}

	if len(files) == 0 {
		style.Warning(cmd.OutOrStdout(), "No style files found to fix")
		return
	}

	if fixOutput != "" && len(files) > 1 {
		style.Error(cmd.ErrOrStderr(), "--out only applies to a single input file, use --write for batches")
		os.Exit(1)
	}

	// Stdout mode: a single file, printed, nothing persisted.
	if fixOutput == "" && !fixWrite {
		if len(files) > 1 {
			style.Error(cmd.ErrOrStderr(), "Multiple files require --write (or --out for a single file)")
			os.Exit(1)
		}
		result, text := fixSingleFile(meta, files[0])
		if result.Error != "" {
			style.Error(cmd.ErrOrStderr(), result.Error)
			os.Exit(1)
		}
		fmt.Fprint(cmd.OutOrStdout(), text)
		return
	}

	textOutput := viper.GetString("output") == "text"
	showProgress := textOutput && !viper.GetBool("quiet") && len(files) > 1

	var spin style.Spinner
	if showProgress {
		spin = style.NewSpinner(cmd.OutOrStdout())
		spin.Start()
	}

	results := make([]FixResult, 0, len(files))
	for _, file := range files {
		if spin != nil {
			spin.SetSuffix(fmt.Sprintf(" fixing %s", file))
		}

		result, text := fixSingleFile(meta, file)
		if result.Error == "" && (result.Changed || fixOutput != "") {
			target := file
			if fixOutput != "" {
				target = fixOutput
			}
			if err := os.WriteFile(target, []byte(text), 0644); err != nil {
				result.Error = fmt.Sprintf("failed to write %s: %v", target, err)
			} else {
				result.Written = target
			}
		}
		results = append(results, result)
	}

	if spin != nil {
		spin.Stop()
	}

	summary := FixSummary{
		Total:    len(results),
		Duration: time.Since(start),
		Results:  results,
	}
	for _, r := range results {
		if r.Error != "" {
			summary.Failed++
		} else if r.Changed {
			summary.Changed++
		}
	}

	switch viper.GetString("output") {
	case "json":
		style.PrintJSON(cmd.OutOrStdout(), summary)
	case "yaml":
		style.PrintYAML(cmd.OutOrStdout(), summary)
	default:
		printFixSummary(cmd, summary)
	}

	if summary.Failed > 0 {
		os.Exit(1)
	}
}

// fixSingleFile rewrites one style file and returns the result alongside
// the rewritten text.
func fixSingleFile(meta *layer.Metadata, file string) (FixResult, string) {
	start := time.Now()
	result := FixResult{File: file}

	data, err := os.ReadFile(file)
	if err != nil {
		result.Error = fmt.Sprintf("failed to read %s: %v", file, err)
		result.Duration = time.Since(start)
		return result, ""
	}

	rewritten, err := qmlfix.Rewrite(string(data), meta)
	if err != nil {
		result.Error = fmt.Sprintf("failed to rewrite %s: %v", file, err)
		result.Duration = time.Since(start)
		return result, ""
	}

	result.Changed = rewritten.Changed
	result.Duration = time.Since(start)
	return result, rewritten.Style
}

func printFixSummary(cmd *cobra.Command, summary FixSummary) {
	quietMode := viper.GetBool("quiet")

	for _, result := range summary.Results {
		switch {
		case result.Error != "":
			style.Error(cmd.ErrOrStderr(), result.Error)
		case result.Changed && !quietMode:
			style.Success(cmd.OutOrStdout(), fmt.Sprintf("%s rewritten (%v)", style.FormatFilePath(result.File), result.Duration))
		case !quietMode:
			fmt.Fprintf(cmd.OutOrStdout(), "  %s unchanged\n", result.File)
		}
	}

	if !quietMode {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d file(s), %d rewritten, %d failed in %v\n",
			summary.Total, summary.Changed, summary.Failed, summary.Duration)
	}
}
