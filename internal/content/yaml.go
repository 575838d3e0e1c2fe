package content

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/tnbrown/metapush/internal/files/filesystem"
	"github.com/tnbrown/metapush/internal/record"
)

// YAMLReader reads entity descriptions from .yaml/.yml files.
//
// Expected shape: a list of entity mappings, each with scalar fields and an
// optional "attributes" list of attribute mappings:
//
//	- entity_name: Roads
//	  definition: Road centerlines
//	  attributes:
//	    - attribute_name: Width
//	      definition: pavement width
//
// Field names are stored as written; canonicalization happens at lookup
// time, so alias spellings (table, column, ...) work the same as in CSV.
type YAMLReader struct {
	fsProvider filesystem.FileSystemProvider
}

// NewYAMLReader creates a YAML content reader.
func NewYAMLReader(fsProvider filesystem.FileSystemProvider) *YAMLReader {
	return &YAMLReader{fsProvider: fsProvider}
}

// Name implements Reader.
func (r *YAMLReader) Name() string { return "yaml" }

// Handles implements Reader.
func (r *YAMLReader) Handles(path string) bool {
	return hasExtension(path, ".yaml", ".yml")
}

// Read parses the YAML into entity records.
func (r *YAMLReader) Read(path string) ([]*record.Record, error) {
	data, err := r.fsProvider.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read content source: %w", err)
	}

	var raw []map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%s: failed to parse YAML: %w", path, err)
	}

	entities := make([]*record.Record, 0, len(raw))
	for i, m := range raw {
		entity, err := r.toRecord(m)
		if err != nil {
			return nil, fmt.Errorf("%s: entity %d: %w", path, i+1, err)
		}
		entities = append(entities, entity)
	}

	return entities, nil
}

// toRecord converts one YAML mapping into a record. Scalar values become
// text fields; the "attributes" list becomes child records; any other
// nested shape is rejected since records only hold text or child lists.
func (r *YAMLReader) toRecord(m map[string]interface{}) (*record.Record, error) {
	rec := record.New()

	for name, value := range m {
		switch v := value.(type) {
		case nil:
			// Absent by omission; skip rather than storing empty text.
		case string:
			rec.Set(name, v)
		case bool, int, int64, float64:
			rec.Set(name, fmt.Sprintf("%v", v))
		case []interface{}:
			if name != record.AttributesField {
				return nil, fmt.Errorf("field %q: lists other than %q are not supported", name, record.AttributesField)
			}
			for j, item := range v {
				child, ok := item.(map[string]interface{})
				if !ok {
					return nil, fmt.Errorf("attribute %d: expected a mapping, got %T", j+1, item)
				}
				attr, err := r.toRecord(child)
				if err != nil {
					return nil, fmt.Errorf("attribute %d: %w", j+1, err)
				}
				rec.AppendChild(record.AttributesField, attr)
			}
		default:
			return nil, fmt.Errorf("field %q: unsupported value type %T", name, value)
		}
	}

	return rec, nil
}

// Verify YAMLReader implements the interface at compile time
var _ Reader = (*YAMLReader)(nil)
