package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/qmlfix/qmlfix/internal/style"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Scaffold a field metadata file",
	Long: `Create a template field metadata file describing a layer's fields, for
use with 'qmlfix fix' and 'qmlfix check'.

Examples:
  qmlfix init            # Create fields.yaml in the current directory
  qmlfix init ./styles   # Create ./styles/fields.yaml
  qmlfix init --force    # Overwrite an existing fields.yaml`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}
		scaffoldMetadata(cmd, dir)
	},
}

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing metadata file")
}

var validDirName = regexp.MustCompile(`^[\w./\-]+$`)

const metadataTemplate = `# Layer field metadata for qmlfix.
#
# provider identifies the data source. Primary-key rewriting only applies
# to file/database-backed providers (ogr, spatialite, gpkg).
provider: ogr

# Index into the fields list of the source primary key, if any. The field
# must be a 64-bit integer for the rewrite to apply.
primary_key: 0

fields:
  - name: gid
    type: int64
  - name: is_active
    type: bool
  - name: status
    type: string
`

func scaffoldMetadata(cmd *cobra.Command, dir string) {
	if !validDirName.MatchString(dir) {
		style.Error(cmd.ErrOrStderr(), "Directory name must contain only letters, numbers, dots, hyphens and slashes")
		os.Exit(1)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		style.Error(cmd.ErrOrStderr(), fmt.Sprintf("Failed to create directory: %v", err))
		os.Exit(1)
	}

	target := filepath.Join(dir, "fields.yaml")
	if _, err := os.Stat(target); err == nil && !initForce {
		style.Error(cmd.ErrOrStderr(), fmt.Sprintf("%s already exists, use --force to overwrite", target))
		os.Exit(1)
	}

	if err := os.WriteFile(target, []byte(metadataTemplate), 0644); err != nil {
		style.Error(cmd.ErrOrStderr(), fmt.Sprintf("Failed to write %s: %v", target, err))
		os.Exit(1)
	}

	style.Success(cmd.OutOrStdout(), fmt.Sprintf("Created %s", target))
	style.Info(cmd.OutOrStdout(), "Edit the field list to match your layer, then run 'qmlfix fix --fields "+target+" <style.qml>'")
}
