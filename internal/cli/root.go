// Package cli wires the metapush commands: flag parsing, configuration
// layering, and dependency construction for the services.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const asciiLogo = `                _                        _
  _ __  ___ __| |_ __ _ _ __ _  _ __ __| |_
 | '  \/ -_)  _/ _' | '_ \ || |(_-< _' | ' \
 |_|_|_\___|\__\__,_| .__/\_,_|/__/__,_|_||_|
                    |_|`

var rootCmd = &cobra.Command{
	Use:   "metapush",
	Short: "Push content into metadata files efficiently",
	Long: asciiLogo + `

metapush injects repetitive content, like table column descriptions, into
hierarchical XML metadata documents (ArcGIS / CSDGM) from sources that are
quick to author: CSV tables or YAML lists.

Existing document content is never removed or reordered; metapush only
fills in and appends. Re-running the same push is a no-op.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration or template not found
  12 - User denied overwrite approval
  13 - Output file exists without --overwrite
  14 - No handler recognizes an input file
  15 - Template structure is ambiguous`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("help", false, "Help for metapush")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
