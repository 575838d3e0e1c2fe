// Package content reads row-oriented and light-markup sources into the
// generic entity/attribute record shape.
//
// Each reader adapter declares what it can handle; a priority-ordered
// registry resolves the adapter once per input. There is no mutable global
// adapter list: construct a registry with the adapters you want, in the
// order you want them consulted.
package content

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tnbrown/metapush/internal/alias"
	"github.com/tnbrown/metapush/internal/files/filesystem"
	"github.com/tnbrown/metapush/internal/record"
	"github.com/tnbrown/metapush/pkg/metapush"
)

// Reader converts one content source into an ordered sequence of entity
// records, each carrying its attribute records under record.AttributesField.
type Reader interface {
	// Name identifies the adapter in logs and error messages.
	Name() string

	// Handles reports whether this adapter recognizes the input.
	Handles(path string) bool

	// Read parses the source into entity records.
	Read(path string) ([]*record.Record, error)
}

// Registry resolves a reader adapter for an input path. Adapters are
// consulted in registration order; the first that handles the input wins.
type Registry struct {
	readers []Reader
}

// NewRegistry creates a registry consulting the given readers in order.
func NewRegistry(readers ...Reader) *Registry {
	return &Registry{readers: readers}
}

// DefaultRegistry returns the standard adapter set: CSV first, then YAML.
func DefaultRegistry(fsProvider filesystem.FileSystemProvider, aliases *alias.Table) *Registry {
	return NewRegistry(
		NewCSVReader(fsProvider, aliases),
		NewYAMLReader(fsProvider),
	)
}

// Resolve returns the first reader that handles the given input.
// Returns ErrNoHandler when no adapter recognizes it; this is fatal for
// the run, since silently skipping an input would hide user error.
func (r *Registry) Resolve(path string) (Reader, error) {
	for _, reader := range r.readers {
		if reader.Handles(path) {
			return reader, nil
		}
	}
	return nil, fmt.Errorf("%w: %s (supported: %s)", metapush.ErrNoHandler, path, r.supported())
}

func (r *Registry) supported() string {
	names := make([]string, len(r.readers))
	for i, reader := range r.readers {
		names[i] = reader.Name()
	}
	return strings.Join(names, ", ")
}

// hasExtension reports whether path has one of the given extensions,
// case-insensitively.
func hasExtension(path string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
