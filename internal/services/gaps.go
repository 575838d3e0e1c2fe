package services

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/tnbrown/metapush/internal/alias"
	"github.com/tnbrown/metapush/internal/content"
	"github.com/tnbrown/metapush/internal/files/filesystem"
	"github.com/tnbrown/metapush/internal/record"
	"github.com/tnbrown/metapush/internal/tui"
	"github.com/tnbrown/metapush/pkg/metapush"
)

// dataExtensions are the tabular data files the gap scan looks for. For
// shapefiles only the .shp member counts; its .dbf/.shx sidecars share the
// same metadata document.
var dataExtensions = map[string]bool{
	".csv": true,
	".shp": true,
	".dbf": true,
}

// GapService implements the GapReporter interface: it walks a data
// directory and reports data files without a metadata sidecar and content
// sources whose attributes still lack definitions.
type GapService struct {
	fsProvider filesystem.FileSystemProvider
	readers    *content.Registry
	aliases    *alias.Table
	logger     metapush.Logger
}

// NewGapService creates a GapService with all dependencies injected.
func NewGapService(
	fsProvider filesystem.FileSystemProvider,
	readers *content.Registry,
	aliases *alias.Table,
	logger metapush.Logger,
) *GapService {
	if fsProvider == nil {
		panic("fsProvider cannot be nil")
	}
	if readers == nil {
		panic("readers cannot be nil")
	}
	if aliases == nil {
		panic("aliases cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	return &GapService{
		fsProvider: fsProvider,
		readers:    readers,
		aliases:    aliases,
		logger:     logger,
	}
}

// gap is one finding of the scan.
type gap struct {
	filePath string
	message  string
}

// Report walks the data directory and renders the gap report. A directory
// with full metadata coverage renders a single success line.
func (s *GapService) Report(ctx context.Context, config metapush.GapConfig) (string, error) {
	if config.DataDir == "" {
		return "", fmt.Errorf("%w: data directory is required", metapush.ErrInvalidConfig)
	}

	dir, err := s.fsProvider.Open(config.DataDir)
	if err != nil {
		return "", fmt.Errorf("failed to open data directory: %w", err)
	}

	var dataFiles []string
	seen := make(map[string]bool)
	err = dir.Walk(func(f filesystem.File, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if f.Info().IsDir() {
			return nil
		}

		ext := strings.ToLower(path.Ext(f.Path()))
		if !dataExtensions[ext] {
			return nil
		}

		// Shapefile members share one metadata document; report the set
		// once under its basename.
		base := strings.TrimSuffix(f.Path(), path.Ext(f.Path()))
		if ext != ".csv" {
			if seen[base] {
				return nil
			}
			seen[base] = true
		}

		dataFiles = append(dataFiles, f.Path())
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to scan data directory: %w", err)
	}

	sort.Strings(dataFiles)

	var gaps []gap
	for _, filePath := range dataFiles {
		gaps = append(gaps, s.inspect(filePath)...)
	}

	s.logger.Verbose("scanned %d data files, found %d gaps", len(dataFiles), len(gaps))
	return renderReport(config.DataDir, len(dataFiles), gaps), nil
}

// inspect checks one data file for a metadata sidecar and, for content
// sources it can parse, for attributes without definitions.
func (s *GapService) inspect(filePath string) []gap {
	var gaps []gap

	if !s.hasMetadataSidecar(filePath) {
		gaps = append(gaps, gap{
			filePath: filePath,
			message:  "no metadata document",
		})
	}

	reader, err := s.readers.Resolve(filePath)
	if err != nil {
		// Not a parseable content source (.shp, .dbf); sidecar presence
		// is all that can be checked.
		return gaps
	}

	entities, err := reader.Read(filePath)
	if err != nil {
		gaps = append(gaps, gap{filePath: filePath, message: fmt.Sprintf("unreadable: %v", err)})
		return gaps
	}

	for _, entity := range entities {
		entityName, _ := s.aliases.Get(entity, alias.EntityName)
		for _, attr := range entity.ChildList(record.AttributesField) {
			// CSV rows carry every column, so an empty definition cell is
			// as much a gap as a missing one.
			if def, ok := s.aliases.Get(attr, alias.AttributeDefinition); ok && strings.TrimSpace(def) != "" {
				continue
			}
			attrName, named := s.aliases.Get(attr, alias.AttributeName)
			if !named {
				attrName = "(unnamed attribute)"
			}
			label := attrName
			if entityName != "" {
				label = entityName + "." + attrName
			}
			gaps = append(gaps, gap{
				filePath: filePath,
				message:  fmt.Sprintf("attribute %s has no definition", label),
			})
		}
	}

	return gaps
}

// hasMetadataSidecar looks for the common sidecar spellings next to a data
// file: file.ext.xml and file.xml.
func (s *GapService) hasMetadataSidecar(filePath string) bool {
	candidates := []string{
		filePath + ".xml",
		strings.TrimSuffix(filePath, path.Ext(filePath)) + ".xml",
	}
	for _, c := range candidates {
		if _, err := s.fsProvider.Stat(c); err == nil {
			return true
		}
	}
	return false
}

// renderReport formats the findings with the shared terminal styles.
func renderReport(dataDir string, fileCount int, gaps []gap) string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render(fmt.Sprintf("Metadata gaps in %s", dataDir)))
	b.WriteString("\n")
	b.WriteString(tui.SubtitleStyle.Render(fmt.Sprintf("%d data files scanned", fileCount)))
	b.WriteString("\n")

	if len(gaps) == 0 {
		b.WriteString(tui.SuccessStyle.Render(tui.SymbolCheck + " no gaps found"))
		b.WriteString("\n")
		return b.String()
	}

	current := ""
	for _, g := range gaps {
		if g.filePath != current {
			current = g.filePath
			b.WriteString("\n")
			b.WriteString(tui.WarningStyle.Render(current))
			b.WriteString("\n")
		}
		b.WriteString("  ")
		b.WriteString(tui.SymbolBullet)
		b.WriteString(" ")
		b.WriteString(g.message)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(tui.ErrorStyle.Render(fmt.Sprintf("%d gaps found", len(gaps))))
	b.WriteString("\n")
	return b.String()
}

// Verify GapService implements the interface at compile time
var _ metapush.GapReporter = (*GapService)(nil)
