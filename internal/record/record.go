// Package record defines the generic in-memory shape shared by content
// readers, the merge engine, and template writers.
//
// A Record maps field names to scalar text values, plus optionally one or
// more named list-valued fields holding child Records (an entity's
// "attributes" list). Field values are only ever absent, scalar text, or a
// list of child Records; no other nested shapes exist.
package record

// AttributesField is the conventional list-valued field under which an
// entity record holds its attribute records.
const AttributesField = "attributes"

// Record is one hierarchical metadata record.
//
// Absence of a field is a normal, checked condition, not an error: Lookup
// returns ok=false and every caller decides locally how to handle it
// (write-skip, default substitution, or propagate absence).
type Record struct {
	// Fields holds scalar text values by field name. Names are as read
	// from the source; canonicalization happens at lookup time via the
	// alias table, never destructively.
	Fields map[string]string

	// Children holds list-valued fields, e.g. an entity's "attributes".
	Children map[string][]*Record
}

// New creates an empty Record with initialized field storage.
func New() *Record {
	return &Record{
		Fields:   make(map[string]string),
		Children: make(map[string][]*Record),
	}
}

// Set stores a scalar field value under the given name.
func (r *Record) Set(name, value string) {
	if r.Fields == nil {
		r.Fields = make(map[string]string)
	}
	r.Fields[name] = value
}

// Lookup returns the scalar value stored under exactly the given name.
// Alias-aware lookup lives in the alias package; this is the raw access.
func (r *Record) Lookup(name string) (string, bool) {
	if r.Fields == nil {
		return "", false
	}
	v, ok := r.Fields[name]
	return v, ok
}

// ChildList returns the child records stored under the given list field.
// A missing field returns nil, which ranges as an empty list.
func (r *Record) ChildList(field string) []*Record {
	if r.Children == nil {
		return nil
	}
	return r.Children[field]
}

// SetChildList replaces the child records stored under the given list field.
func (r *Record) SetChildList(field string, children []*Record) {
	if r.Children == nil {
		r.Children = make(map[string][]*Record)
	}
	r.Children[field] = children
}

// AppendChild appends a child record to the given list field.
func (r *Record) AppendChild(field string, child *Record) {
	if r.Children == nil {
		r.Children = make(map[string][]*Record)
	}
	r.Children[field] = append(r.Children[field], child)
}

// Clone returns a deep, independent copy of the record. Mutating the copy
// (or its nested children) never affects the original; the merge engine
// relies on this to keep the caller's template snapshot intact.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}

	out := &Record{}

	if r.Fields != nil {
		out.Fields = make(map[string]string, len(r.Fields))
		for k, v := range r.Fields {
			out.Fields[k] = v
		}
	}

	if r.Children != nil {
		out.Children = make(map[string][]*Record, len(r.Children))
		for field, list := range r.Children {
			out.Children[field] = CloneList(list)
		}
	}

	return out
}

// CloneList deep-copies a record list, preserving order.
func CloneList(records []*Record) []*Record {
	if records == nil {
		return nil
	}
	out := make([]*Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}
