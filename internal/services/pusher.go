// Package services implements the push and gap-analysis workflows on top of
// the content readers, the merge engine, and the dialect handlers.
package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/tnbrown/metapush/internal/alias"
	"github.com/tnbrown/metapush/internal/content"
	"github.com/tnbrown/metapush/internal/files/filesystem"
	"github.com/tnbrown/metapush/internal/merge"
	"github.com/tnbrown/metapush/internal/params"
	"github.com/tnbrown/metapush/internal/record"
	"github.com/tnbrown/metapush/internal/template"
	"github.com/tnbrown/metapush/internal/xmltree"
	"github.com/tnbrown/metapush/pkg/metapush"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

// PushService implements the Pusher interface.
// Thread-Safety: NOT safe for concurrent Push() calls on the same instance.
// Create separate instances for concurrent runs.
type PushService struct {
	fsProvider filesystem.FileSystemProvider
	readers    *content.Registry
	handlers   *template.Registry
	aliases    *alias.Table
	approver   metapush.Approver
	logger     metapush.Logger
	indent     string
}

// NewPushService creates a PushService with all dependencies injected.
// Nil dependencies are programmer errors and panic at construction time
// rather than surfacing as nil dereferences mid-run.
func NewPushService(
	fsProvider filesystem.FileSystemProvider,
	readers *content.Registry,
	handlers *template.Registry,
	aliases *alias.Table,
	approver metapush.Approver,
	logger metapush.Logger,
) *PushService {
	if fsProvider == nil {
		panic("fsProvider cannot be nil")
	}
	if readers == nil {
		panic("readers cannot be nil")
	}
	if handlers == nil {
		panic("handlers cannot be nil")
	}
	if aliases == nil {
		panic("aliases cannot be nil")
	}
	if approver == nil {
		panic("approver cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	return &PushService{
		fsProvider: fsProvider,
		readers:    readers,
		handlers:   handlers,
		aliases:    aliases,
		approver:   approver,
		logger:     logger,
		indent:     metapush.DefaultOutputIndent,
	}
}

// WithIndent overrides the serialization indent unit.
func (s *PushService) WithIndent(indent string) *PushService {
	s.indent = indent
	return s
}

// Push executes a push run: load the template, merge every content source
// into its entity section, and write the result. The output destination is
// checked before any work happens, so a denied overwrite costs nothing and
// a failed merge leaves no partial output behind.
func (s *PushService) Push(ctx context.Context, config metapush.PushConfig) error {
	outputPath, err := s.validateConfig(config)
	if err != nil {
		return err
	}

	if err := s.gateOverwrite(ctx, outputPath, config); err != nil {
		return err
	}

	root, handler, err := s.loadTemplate(config.TemplatePath)
	if err != nil {
		return err
	}
	s.logger.Verbose("template %s handled by %s dialect", config.TemplatePath, handler.Name())

	merged, err := handler.Parse(root)
	if err != nil {
		return err
	}
	s.logger.Verbose("template describes %d entities", len(merged))

	engine := merge.NewEngine(s.aliases, merge.Policy{MatchAbsent: config.MergeUnnamed})
	keyFields := []string{alias.EntityName, alias.AttributeName}
	childFields := []string{"", record.AttributesField}

	for _, contentPath := range config.ContentPaths {
		entities, err := s.readContent(contentPath, config.Defaults)
		if err != nil {
			return err
		}
		s.logger.Verbose("content %s describes %d entities", contentPath, len(entities))
		if !config.MergeUnnamed {
			s.assignFallbackIdentities(contentPath, entities)
		}
		merged = engine.Merge(merged, entities, keyFields, childFields)
	}

	merged = filterEntities(merged, config.Entities, s.aliases)
	if err := handler.Write(root, merged); err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.WriteString(xmlHeader)
	if err := root.WriteTo(&buf, s.indent); err != nil {
		return err
	}
	buf.WriteString("\n")

	if err := s.fsProvider.WriteFile(outputPath, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	s.logger.Info("pushed %d entities into %s", len(merged), outputPath)
	return nil
}

// validateConfig checks required fields and resolves the output path.
// An empty output path means updating the template in place.
func (s *PushService) validateConfig(config metapush.PushConfig) (string, error) {
	if config.TemplatePath == "" {
		return "", fmt.Errorf("%w: template path is required", metapush.ErrInvalidConfig)
	}
	if len(config.ContentPaths) == 0 {
		return "", fmt.Errorf("%w: at least one content source is required", metapush.ErrInvalidConfig)
	}

	outputPath := config.OutputPath
	if outputPath == "" {
		outputPath = config.TemplatePath
	}
	return outputPath, nil
}

// gateOverwrite enforces the output policy before anything is parsed or
// merged: an existing destination without --overwrite is fatal, and with
// --overwrite it still needs approval.
func (s *PushService) gateOverwrite(ctx context.Context, outputPath string, config metapush.PushConfig) error {
	info, err := s.fsProvider.Stat(outputPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to stat output path: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: output path %s is a directory", metapush.ErrInvalidConfig, outputPath)
	}

	if !config.Overwrite {
		return fmt.Errorf("%w: %s (pass --overwrite to replace it)", metapush.ErrOutputExists, outputPath)
	}

	approved, err := s.approver.RequestApproval(ctx, outputPath)
	if err != nil {
		return fmt.Errorf("approval failed: %w", err)
	}
	if !approved {
		return fmt.Errorf("%w: overwrite of %s", metapush.ErrApprovalDenied, outputPath)
	}
	return nil
}

// loadTemplate reads and parses the template document and resolves its
// dialect handler.
func (s *PushService) loadTemplate(templatePath string) (*xmltree.Element, template.Handler, error) {
	data, err := s.fsProvider.ReadFile(templatePath)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", metapush.ErrTemplateNotFound, templatePath, err)
	}

	root, err := xmltree.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, &metapush.TemplateError{
			FilePath: templatePath,
			Message:  err.Error(),
			Hint:     "The template must be a well-formed XML document with a single root element.",
			Err:      metapush.ErrInvalidConfig,
		}
	}

	handler, err := s.handlers.Resolve(root)
	if err != nil {
		return nil, nil, err
	}
	return root, handler, nil
}

// readContent resolves a reader for the source, parses it, and layers the
// configured defaults onto every attribute.
func (s *PushService) readContent(contentPath string, defaults map[string]string) ([]*record.Record, error) {
	reader, err := s.readers.Resolve(contentPath)
	if err != nil {
		return nil, err
	}

	entities, err := reader.Read(contentPath)
	if err != nil {
		return nil, err
	}

	params.ApplyDefaults(entities, defaults, s.aliases)
	return entities, nil
}

// assignFallbackIdentities names unnamed entities with their stable
// generated identity. The never-merge policy keeps unnamed records distinct
// through the merge, and the writer needs distinct identity text to keep
// them in distinct containers; the identity is deterministic per source and
// ordinal, so re-running the same push reuses the same containers.
func (s *PushService) assignFallbackIdentities(sourcePath string, entities []*record.Record) {
	for i, e := range entities {
		if _, ok := s.aliases.Get(e, alias.EntityName); !ok {
			e.Set(alias.EntityName, record.FallbackID(sourcePath, i).String())
		}
	}
}

// filterEntities keeps only the named entities. An empty filter keeps
// everything; unnamed entities never match a name filter.
func filterEntities(entities []*record.Record, names []string, aliases *alias.Table) []*record.Record {
	if len(names) == 0 {
		return entities
	}

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	var kept []*record.Record
	for _, e := range entities {
		if name, ok := aliases.Get(e, alias.EntityName); ok && wanted[name] {
			kept = append(kept, e)
		}
	}
	return kept
}

// ListEntities parses a single content source and returns its entities,
// without touching any template. Unnamed entities get a stable generated
// identity for display.
func (s *PushService) ListEntities(contentPath string) ([]*record.Record, error) {
	entities, err := s.readContent(contentPath, nil)
	if err != nil {
		return nil, err
	}

	for i, e := range entities {
		if _, ok := s.aliases.Get(e, alias.EntityName); !ok {
			e.Set("generated_id", record.FallbackID(contentPath, i).String())
		}
	}
	return entities, nil
}

// Verify PushService implements the interface at compile time
var _ metapush.Pusher = (*PushService)(nil)
