package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tnbrown/metapush/internal/alias"
	"github.com/tnbrown/metapush/internal/content"
	"github.com/tnbrown/metapush/internal/files/filesystem"
	"github.com/tnbrown/metapush/internal/logging"
	"github.com/tnbrown/metapush/internal/services"
	"github.com/tnbrown/metapush/pkg/metapush"
)

var gapsCmd = &cobra.Command{
	Use:   "gaps <data_dir>",
	Short: "Report missing metadata in a data directory",
	Long: `Gaps walks a data directory and reports where metadata is missing:

- tabular data files (.csv, shapefiles) without a metadata document next
  to them (name.xml or name.ext.xml)
- content sources whose attributes carry no definition

The report is advisory; nothing is modified.

Examples:
  metapush gaps ./data
  metapush gaps . -v`,
	Args: cobra.ExactArgs(1),
	RunE: runGaps,
}

func init() {
	rootCmd.AddCommand(gapsCmd)
}

func runGaps(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)
	logger := logging.NewConsoleLogger(verbose)
	fsProvider := filesystem.NewOSFileSystem()
	aliases := alias.Default()

	svc := services.NewGapService(
		fsProvider,
		content.DefaultRegistry(fsProvider, aliases),
		aliases,
		logger,
	)

	report, err := svc.Report(context.Background(), metapush.GapConfig{
		DataDir: args[0],
	})
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), report)
	return nil
}
