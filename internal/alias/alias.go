// Package alias canonicalizes heterogeneous field names across sources.
//
// Different metadata sources spell the same field differently: one CSV says
// "table", another "layer", a template says "entity_name". The alias Table
// maps every accepted spelling to one canonical name so the merge engine and
// the writers compare and write fields consistently.
package alias

import (
	"sort"
	"strings"

	"github.com/tnbrown/metapush/internal/record"
)

// Table maps canonical field names to their accepted alternate spellings.
//
// A Table is an explicit configuration object, not shared global state:
// construct one per canonicalization policy (e.g. per target schema) and
// pass it to the components that need it. Entry order is insertion order
// and is significant: alias scans stop at the first table entry that
// matches, so two canonical names sharing an ambiguous alias resolve in
// favor of whichever was registered first.
type Table struct {
	order   []string
	aliases map[string][]string
}

// NewTable creates an empty alias table.
func NewTable() *Table {
	return &Table{
		aliases: make(map[string][]string),
	}
}

// Canonical field names used throughout the merge pipeline. Sources may
// spell these any way the Default table accepts; everything downstream of
// canonicalization uses these.
const (
	EntityName          = "entity_name"
	EntityDefinition    = "entity_definition"
	AttributeName       = "attribute_name"
	AttributeDefinition = "attribute_definition"
	AttributeType       = "attribute_type"
	AttributeSource     = "attribute_source"
	RangeMin            = "min"
	RangeMax            = "max"
	Units               = "units"
)

// Default returns the built-in alias table covering the field vocabulary of
// common tabular metadata sources and CSDGM/ArcGIS templates.
func Default() *Table {
	t := NewTable()
	t.Add(EntityName, "entity", "table_name", "table", "layer")
	t.Add(EntityDefinition, "entity_description", "table_definition", "table_description")
	t.Add(AttributeName, "attribute", "field_name", "field", "column_name", "column")
	t.Add(AttributeDefinition, "definition", "description", "desc", "attrdef")
	t.Add(AttributeType, "type", "data_type", "field_type", "attrtype")
	t.Add(AttributeSource, "source", "definition_source", "attrdefs")
	t.Add(RangeMin, "minimum", "range_min", "rdommin")
	t.Add(RangeMax, "maximum", "range_max", "rdommax")
	t.Add(Units, "unit", "attrunit")
	return t
}

// Add registers a canonical name with its accepted alternate spellings.
// Re-adding an existing canonical name appends new aliases in order.
// A canonical name is never listed as its own alias; such entries are
// dropped rather than stored.
func (t *Table) Add(canonical string, aliases ...string) {
	if _, exists := t.aliases[canonical]; !exists {
		t.order = append(t.order, canonical)
		t.aliases[canonical] = nil
	}

	for _, a := range aliases {
		if strings.EqualFold(a, canonical) {
			continue
		}
		if t.hasAlias(canonical, a) {
			continue
		}
		t.aliases[canonical] = append(t.aliases[canonical], a)
	}
}

func (t *Table) hasAlias(canonical, name string) bool {
	for _, a := range t.aliases[canonical] {
		if strings.EqualFold(a, name) {
			return true
		}
	}
	return false
}

// Aliases returns the alternate spellings registered for a canonical name,
// in registration order. Returns nil for unknown canonical names.
func (t *Table) Aliases(canonical string) []string {
	return t.aliases[canonical]
}

// Canonical reports whether name is (case-insensitively) a canonical name,
// returning its canonical spelling.
func (t *Table) Canonical(name string) (string, bool) {
	for _, c := range t.order {
		if strings.EqualFold(c, name) {
			return c, true
		}
	}
	return "", false
}

// Canonicalize maps an arbitrary field name to its canonical form.
//
// Resolution order:
//  1. Exact (case-insensitive) match against a canonical name wins.
//  2. First table entry, in registration order, whose alias list contains
//     the name.
//  3. Pass-through: unknown names are returned unchanged, never dropped.
//
// Canonicalization is stable: Canonicalize(Canonicalize(x)) == Canonicalize(x).
func (t *Table) Canonicalize(name string) string {
	if c, ok := t.Canonical(name); ok {
		return c
	}

	for _, c := range t.order {
		if t.hasAlias(c, name) {
			return c
		}
	}

	return name
}

// Get returns the value stored in rec under the requested key, trying the
// exact key first and then each registered alias of key in table order.
// The second return is false when neither the key nor any alias is present;
// absence is a normal condition every caller must handle.
func (t *Table) Get(rec *record.Record, key string) (string, bool) {
	if rec == nil {
		return "", false
	}

	if v, ok := rec.Lookup(key); ok {
		return v, true
	}

	for _, a := range t.aliases[key] {
		if v, ok := rec.Lookup(a); ok {
			return v, true
		}
	}

	return "", false
}

// MergeScalarFields overwrites every scalar field of src into dst under its
// canonical key. List-valued fields are never touched here; those are merged
// structurally by the merge engine. Mutates dst in place.
//
// Source fields are visited in sorted name order so that two spellings of
// the same canonical key collapse deterministically.
func (t *Table) MergeScalarFields(dst, src *record.Record) {
	if dst == nil || src == nil {
		return
	}

	names := make([]string, 0, len(src.Fields))
	for name := range src.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		dst.Set(t.Canonicalize(name), src.Fields[name])
	}
}
