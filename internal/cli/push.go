package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tnbrown/metapush/internal/alias"
	"github.com/tnbrown/metapush/internal/config"
	"github.com/tnbrown/metapush/internal/content"
	"github.com/tnbrown/metapush/internal/files/filesystem"
	"github.com/tnbrown/metapush/internal/logging"
	"github.com/tnbrown/metapush/internal/params"
	"github.com/tnbrown/metapush/internal/record"
	"github.com/tnbrown/metapush/internal/services"
	"github.com/tnbrown/metapush/internal/template"
	"github.com/tnbrown/metapush/internal/tui"
	"github.com/tnbrown/metapush/internal/ui"
	"github.com/tnbrown/metapush/pkg/metapush"
)

var pushCmd = &cobra.Command{
	Use:   "push <template>",
	Short: "Push content into a metadata template",
	Long: `Push merges content sources into the entity section of a metadata template.

The push command:
1. Loads the template and detects its dialect (ArcGIS or CSDGM)
2. Reads each content source (CSV, YAML) into entity descriptions
3. Merges content into the template: existing entities and attributes are
   updated in place, new ones are appended, nothing is removed
4. Writes the result, gated by overwrite approval

Arguments:
  template    Path to the XML metadata template to update

Examples:
  # Push column descriptions into a fresh output file
  metapush push meta.xml --content columns.csv --output meta_out.xml

  # Update the template in place
  metapush push meta.xml --content columns.csv --overwrite

  # Non-interactive overwrite for scripts and CI
  metapush push meta.xml --content columns.csv --overwrite --force

  # Fill fields the CSV does not carry
  metapush push meta.xml --content columns.csv --output out.xml \
    --set units=meters --set-file defaults.env

  # Push only some entities
  metapush push meta.xml --content columns.csv --output out.xml \
    --entity Roads --entity Rivers

  # Pick entities interactively
  metapush push meta.xml --content columns.csv --output out.xml --select`,
	Args: cobra.ExactArgs(1),
	RunE: runPush,
}

type pushFlagValues struct {
	content    []string
	output     string
	overwrite  bool
	force      bool
	entities   []string
	set        []string
	setFiles   []string
	selectPick bool
}

var pushFlags pushFlagValues

func init() {
	rootCmd.AddCommand(pushCmd)

	pushCmd.Flags().StringSliceVar(&pushFlags.content, "content", nil,
		"Content source to push (can be specified multiple times)\n"+
			"Supported: .csv, .yaml, .yml")
	pushCmd.Flags().StringVarP(&pushFlags.output, "output", "o", "",
		"Output file (default: update the template in place)")
	pushCmd.Flags().BoolVar(&pushFlags.overwrite, "overwrite", false,
		"Permit replacing an existing output file\n"+
			"Requires interactive confirmation unless --force is used")
	pushCmd.Flags().BoolVar(&pushFlags.force, "force", false,
		"Skip interactive approval prompt for overwrites\n"+
			"Use with --overwrite for CI/CD pipelines")
	pushCmd.Flags().StringSliceVar(&pushFlags.entities, "entity", nil,
		"Push only the named entity (can be specified multiple times)")
	pushCmd.Flags().StringSliceVar(&pushFlags.set, "set", nil,
		"Default field as key=value, filled where content is silent\n"+
			"Example: --set units=meters --set type=text")
	pushCmd.Flags().StringSliceVar(&pushFlags.setFiles, "set-file", nil,
		"Load default fields from .env files (can be specified multiple times)\n"+
			"Later files override earlier ones, CLI --set overrides all")
	pushCmd.Flags().BoolVar(&pushFlags.selectPick, "select", false,
		"Pick entities interactively before pushing (requires a terminal)")

	_ = pushCmd.MarkFlagRequired("content")
}

// buildPushConfig layers configuration: metapush.yaml < --set-file < --set.
// Extracted from runPush for testability.
func buildPushConfig(templatePath string, flags pushFlagValues) (metapush.PushConfig, *config.ProjectConfig, error) {
	_ = godotenv.Load()

	projectCfg, err := config.LoadOrDefault(filepath.Dir(templatePath))
	if err != nil {
		return metapush.PushConfig{}, nil, fmt.Errorf("failed to load %s: %w", config.ConfigFileName, err)
	}

	defaults := map[string]string{}
	if projectCfg.Defaults != nil {
		defaults = params.Merge(projectCfg.Defaults)
	}

	if len(flags.setFiles) > 0 {
		fsProvider := filesystem.NewOSFileSystem()
		for _, path := range flags.setFiles {
			data, err := fsProvider.ReadFile(path)
			if err != nil {
				return metapush.PushConfig{}, nil, fmt.Errorf("failed to read defaults file %s: %w", path, err)
			}
			fileDefaults, err := params.ParseEnvFile(data)
			if err != nil {
				return metapush.PushConfig{}, nil, fmt.Errorf("invalid defaults file %s: %w", path, err)
			}
			defaults = params.Merge(defaults, fileDefaults)
		}
	}

	cliDefaults, err := params.ParseKeyValuePairs(flags.set)
	if err != nil {
		return metapush.PushConfig{}, nil, fmt.Errorf("invalid --set value: %w", err)
	}
	defaults = params.Merge(defaults, cliDefaults)

	cfg := metapush.PushConfig{
		TemplatePath: templatePath,
		ContentPaths: flags.content,
		OutputPath:   flags.output,
		Overwrite:    flags.overwrite || projectCfg.Output.Overwrite,
		Force:        flags.force,
		Entities:     flags.entities,
		Defaults:     defaults,
		MergeUnnamed: projectCfg.MergeUnnamedEntities(),
	}
	return cfg, projectCfg, nil
}

func runPush(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)

	cfg, projectCfg, err := buildPushConfig(args[0], pushFlags)
	if err != nil {
		return err
	}

	var approver metapush.Approver
	if cfg.Force {
		approver = ui.NewForcedApprover()
	} else {
		approver = ui.NewInteractiveApprover()
	}
	logger := logging.NewConsoleLogger(verbose)
	fsProvider := filesystem.NewOSFileSystem()
	aliases := projectCfg.AliasTable()

	pusher := services.NewPushService(
		fsProvider,
		content.DefaultRegistry(fsProvider, aliases),
		template.DefaultRegistry(),
		aliases,
		approver,
		logger,
	)
	if projectCfg.Output.Indent != "" {
		pusher = pusher.WithIndent(projectCfg.Output.Indent)
	}

	if pushFlags.selectPick {
		selected, err := pickEntities(pusher, aliases, cfg.ContentPaths)
		if err != nil {
			return err
		}
		cfg.Entities = selected
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\n[INTERRUPT] Received interrupt signal, cancelling push...")
		cancel()
	}()

	return pusher.Push(ctx, cfg)
}

// pickEntities shows the interactive picker over every named entity found
// in the content sources.
func pickEntities(pusher *services.PushService, aliases *alias.Table, contentPaths []string) ([]string, error) {
	if !tui.IsInteractive() {
		return nil, fmt.Errorf("%w: --select needs an interactive terminal", metapush.ErrInvalidConfig)
	}

	var choices []tui.Choice
	seen := make(map[string]bool)
	for _, path := range contentPaths {
		entities, err := pusher.ListEntities(path)
		if err != nil {
			return nil, err
		}
		for _, e := range entities {
			name, ok := aliases.Get(e, alias.EntityName)
			if !ok || seen[name] {
				continue
			}
			seen[name] = true
			choices = append(choices, tui.Choice{
				Label:       name,
				Description: fmt.Sprintf("%d attributes", len(e.ChildList(record.AttributesField))),
			})
		}
	}

	if len(choices) == 0 {
		return nil, fmt.Errorf("%w: no named entities to pick from", metapush.ErrInvalidConfig)
	}

	selected, confirmed, err := tui.RunPicker("Select entities to push", choices)
	if err != nil {
		return nil, err
	}
	if !confirmed {
		return nil, fmt.Errorf("%w: entity selection cancelled", metapush.ErrApprovalDenied)
	}
	return selected, nil
}
