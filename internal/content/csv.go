package content

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/tnbrown/metapush/internal/alias"
	"github.com/tnbrown/metapush/internal/files/filesystem"
	"github.com/tnbrown/metapush/internal/record"
)

// CSVReader reads table attribute descriptions from .csv files.
//
// Each row describes one attribute. The presence of an entity-identifier
// column (entity_name or any of its aliases, like "table") indicates the
// file describes more than one entity; entity boundaries are runs of equal
// canonical entity values. A file without an entity column yields a single
// unnamed entity holding every row.
type CSVReader struct {
	fsProvider filesystem.FileSystemProvider
	aliases    *alias.Table
}

// NewCSVReader creates a CSV content reader.
func NewCSVReader(fsProvider filesystem.FileSystemProvider, aliases *alias.Table) *CSVReader {
	return &CSVReader{
		fsProvider: fsProvider,
		aliases:    aliases,
	}
}

// Name implements Reader.
func (r *CSVReader) Name() string { return "csv" }

// Handles implements Reader.
func (r *CSVReader) Handles(path string) bool {
	return hasExtension(path, ".csv")
}

// Read parses the CSV into entity records.
//
// Re-encountering an entity identifier seen earlier (even non-contiguously)
// continues appending to that entity rather than starting a new one, so a
// sloppily-sorted source cannot produce duplicate entities.
func (r *CSVReader) Read(path string) ([]*record.Record, error) {
	data, err := r.fsProvider.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read content source: %w", err)
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s: empty content source", path)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read header row: %w", path, err)
	}

	var entities []*record.Record
	// Entities seen so far, keyed by canonical identity. The empty-key
	// slot is the single unnamed entity.
	seen := make(map[entityKey]*record.Record)

	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%s: line %d: %w", path, line, err)
		}

		attr := record.New()
		for i, name := range header {
			if i < len(row) {
				attr.Set(name, row[i])
			}
		}

		name, named := r.aliases.Get(attr, alias.EntityName)
		key := entityKey{named: named, name: name}

		entity, ok := seen[key]
		if !ok {
			entity = record.New()
			if named {
				entity.Set(alias.EntityName, name)
			}
			seen[key] = entity
			entities = append(entities, entity)
		}

		entity.AppendChild(record.AttributesField, attr)
	}

	return entities, nil
}

// entityKey distinguishes "no entity column" from an empty entity value.
type entityKey struct {
	named bool
	name  string
}

// Verify CSVReader implements the interface at compile time
var _ Reader = (*CSVReader)(nil)
