package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tnbrown/metapush/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init <target_path>",
	Short: "Initialize a new metapush project",
	Long: `Initialize a metapush project into the specified directory.

The init command creates:
- metapush.yaml with commented configuration defaults
- columns.csv as a starter content source

Existing files are never overwritten.

Examples:
  metapush init .             # Initialize in current directory
  metapush init ./myproject   # Initialize in ./myproject`,
	Args: cobra.ExactArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

const starterConfig = `# metapush project configuration
#
# Extra field-name spellings, layered onto the built-in alias table:
# aliases:
#   attribute_name:
#     - feld
#
# Field values filled where content sources are silent:
# defaults:
#   units: meters
#
# Whether records without an identifying field merge with each other
# (default: true):
# merge_unnamed: true
#
# output:
#   indent: "  "
#   overwrite: false
`

const starterContent = `table,column,definition,type,units
Roads,Width,pavement width,double,meters
Roads,Lanes,number of lanes,integer,
`

func runInit(cmd *cobra.Command, args []string) error {
	targetPath := args[0]

	if err := os.MkdirAll(targetPath, 0755); err != nil {
		return fmt.Errorf("failed to create target directory: %w", err)
	}

	files := []struct {
		name string
		body string
	}{
		{config.ConfigFileName, starterConfig},
		{"columns.csv", starterContent},
	}

	for _, f := range files {
		path := filepath.Join(targetPath, f.name)
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("refusing to overwrite existing %s", path)
		}
		if err := os.WriteFile(path, []byte(f.body), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", path)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "\nNext steps:")
	fmt.Fprintln(cmd.OutOrStdout(), "  1. Describe your tables in columns.csv")
	fmt.Fprintln(cmd.OutOrStdout(), "  2. metapush push <template.xml> --content columns.csv --output out.xml")
	return nil
}
