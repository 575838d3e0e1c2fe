package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tnbrown/metapush/internal/alias"
	"github.com/tnbrown/metapush/internal/content"
	"github.com/tnbrown/metapush/internal/files/filesystem"
	"github.com/tnbrown/metapush/internal/logging"
	"github.com/tnbrown/metapush/internal/record"
	"github.com/tnbrown/metapush/internal/services"
	"github.com/tnbrown/metapush/internal/template"
	"github.com/tnbrown/metapush/internal/ui"
)

var entitiesCmd = &cobra.Command{
	Use:   "entities <source>",
	Short: "List the entities a content source describes",
	Long: `Entities parses a content source and prints the entities and attributes it
describes, without touching any template. Useful for checking how a CSV or
YAML file will be interpreted before pushing it.

Entities with no identifying column are shown under a stable generated
identity, so unnamed entities can still be told apart across sources.

Examples:
  metapush entities columns.csv
  metapush entities entities.yaml -v`,
	Args: cobra.ExactArgs(1),
	RunE: runEntities,
}

func init() {
	rootCmd.AddCommand(entitiesCmd)
}

func runEntities(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)
	logger := logging.NewConsoleLogger(verbose)
	fsProvider := filesystem.NewOSFileSystem()
	aliases := alias.Default()

	svc := services.NewPushService(
		fsProvider,
		content.DefaultRegistry(fsProvider, aliases),
		template.DefaultRegistry(),
		aliases,
		ui.NewInteractiveApprover(),
		logger,
	)

	entities, err := svc.ListEntities(args[0])
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), renderEntities(entities, aliases))
	return nil
}

// renderEntities formats parsed entities for terminal inspection.
func renderEntities(entities []*record.Record, aliases *alias.Table) string {
	var b strings.Builder

	for _, entity := range entities {
		name, ok := aliases.Get(entity, alias.EntityName)
		if !ok {
			id, _ := entity.Lookup("generated_id")
			name = fmt.Sprintf("(unnamed entity %s)", id)
		}
		b.WriteString(name)
		b.WriteString("\n")

		for _, attr := range entity.ChildList(record.AttributesField) {
			attrName, ok := aliases.Get(attr, alias.AttributeName)
			if !ok {
				attrName = "(unnamed attribute)"
			}
			b.WriteString("  ")
			b.WriteString(attrName)
			b.WriteString("\n")

			for _, field := range sortedFieldNames(attr) {
				value, _ := attr.Lookup(field)
				if value == "" {
					continue
				}
				canonical := aliases.Canonicalize(field)
				if canonical == alias.AttributeName || canonical == alias.EntityName {
					continue
				}
				fmt.Fprintf(&b, "    %s: %s\n", canonical, value)
			}
		}
	}

	return b.String()
}

func sortedFieldNames(rec *record.Record) []string {
	names := make([]string, 0, len(rec.Fields))
	for name := range rec.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
