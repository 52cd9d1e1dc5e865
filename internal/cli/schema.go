package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/qmlfix/qmlfix/internal/layer"
)

// schemaCmd represents the schema command
var schemaCmd = &cobra.Command{
	Use:    "schema",
	Short:  "Output the JSON schema for field metadata files",
	Long:   `Output the JSON schema describing the layer field metadata file format, for editor integration and validation tooling.`,
	Hidden: true,
	Run: func(cmd *cobra.Command, args []string) {
		schemaBytes, err := layer.NewSchema()
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error generating schema: %v\n", err)
			os.Exit(1)
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(schemaBytes))
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
