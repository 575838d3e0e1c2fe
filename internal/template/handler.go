// Package template adapts metadata document dialects (CSDGM/FGDC and the
// ArcGIS variant) to the merge pipeline's record shape.
//
// A Handler owns one dialect: it detects documents of its dialect by
// structural markers, parses the entity section into records, and writes
// merged records back through the path materializer. Handlers never remove
// or reorder existing document content.
package template

import (
	"fmt"
	"strings"

	"github.com/tnbrown/metapush/internal/record"
	"github.com/tnbrown/metapush/internal/xmltree"
	"github.com/tnbrown/metapush/pkg/metapush"
)

// Handler converts between one metadata dialect and entity records.
type Handler interface {
	// Name returns a short identifier for logging and error messages.
	Name() string

	// Detect reports whether the document belongs to this handler's
	// dialect, judged by structural markers in the parsed tree.
	Detect(root *xmltree.Element) bool

	// Parse extracts entity records from the document's entity section.
	// A document without an entity section yields an empty slice.
	Parse(root *xmltree.Element) ([]*record.Record, error)

	// Write upserts the given entity records into the document. Existing
	// nodes are reused by identity; missing structure is created.
	Write(root *xmltree.Element, entities []*record.Record) error
}

// Registry resolves a document to its dialect handler. Handlers are tried
// in registration order, so marker-specific dialects must come before
// catch-all ones.
type Registry struct {
	handlers []Handler
}

// NewRegistry creates a registry over the given handlers, tried in order.
func NewRegistry(handlers ...Handler) *Registry {
	return &Registry{handlers: handlers}
}

// DefaultRegistry returns the built-in dialect registry: the ArcGIS variant
// first (it carries an explicit marker), plain CSDGM second.
func DefaultRegistry() *Registry {
	return NewRegistry(
		NewArcGISHandler(),
		NewCSDGMHandler(),
	)
}

// Resolve returns the first handler whose dialect matches the document.
func (r *Registry) Resolve(root *xmltree.Element) (Handler, error) {
	for _, h := range r.handlers {
		if h.Detect(root) {
			return h, nil
		}
	}

	names := make([]string, 0, len(r.handlers))
	for _, h := range r.handlers {
		names = append(names, h.Name())
	}
	return nil, fmt.Errorf("%w: unrecognized template dialect (supported: %s)",
		metapush.ErrNoHandler, strings.Join(names, ", "))
}
