// Package xmltree provides a mutable labeled element tree for metadata
// documents, with parsing and serialization over encoding/xml token
// streams and an idempotent path materializer.
//
// Ownership is strictly top-down: every child is exclusively owned by its
// parent, and a path returned by Materialize is a borrowed reference chain
// into the tree, not a new ownership structure.
package xmltree

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Element is a node in a labeled tree: a label, optional text content, and
// an ordered list of exclusively-owned children. Attributes present in a
// parsed document are preserved for round-tripping but carry no meaning for
// path resolution.
type Element struct {
	Label    string
	Text     string
	Attr     []xml.Attr
	Children []*Element
}

// New creates an element with the given label and no content.
func New(label string) *Element {
	return &Element{Label: label}
}

// Append adds a child to the end of the element's child list. Existing
// children are never removed or reordered; appending is the only mutation
// the materializer performs.
func (e *Element) Append(child *Element) {
	e.Children = append(e.Children, child)
}

// FindAll returns every descendant (excluding e itself) with the given
// label, in document order.
func (e *Element) FindAll(label string) []*Element {
	var found []*Element
	for _, c := range e.Children {
		if c.Label == label {
			found = append(found, c)
		}
		found = append(found, c.FindAll(label)...)
	}
	return found
}

// Child returns the first direct child with the given label, or nil.
func (e *Element) Child(label string) *Element {
	for _, c := range e.Children {
		if c.Label == label {
			return c
		}
	}
	return nil
}

// FindOrCreateChild returns the first direct child with the given label,
// creating and appending one if none exists. This is the find-or-create
// discipline writers use for sibling fields under a materialized node.
func (e *Element) FindOrCreateChild(label string) *Element {
	if c := e.Child(label); c != nil {
		return c
	}
	c := New(label)
	e.Append(c)
	return c
}

// Count returns the total number of nodes in the subtree rooted at e,
// including e itself.
func (e *Element) Count() int {
	n := 1
	for _, c := range e.Children {
		n += c.Count()
	}
	return n
}

// Equal reports deep structural equality of two subtrees: labels, text,
// attributes, and child order all match.
func (e *Element) Equal(other *Element) bool {
	if e == nil || other == nil {
		return e == other
	}
	if e.Label != other.Label || e.Text != other.Text {
		return false
	}
	if len(e.Attr) != len(other.Attr) || len(e.Children) != len(other.Children) {
		return false
	}
	for i, a := range e.Attr {
		if a != other.Attr[i] {
			return false
		}
	}
	for i, c := range e.Children {
		if !c.Equal(other.Children[i]) {
			return false
		}
	}
	return true
}

// Parse reads an XML document into an element tree. Inter-element
// whitespace is discarded; text content is trimmed. Comments and
// processing instructions are dropped.
func Parse(r io.Reader) (*Element, error) {
	dec := xml.NewDecoder(r)

	var root *Element
	var stack []*Element

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse document: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := New(t.Name.Local)
			if len(t.Attr) > 0 {
				el.Attr = append([]xml.Attr(nil), t.Attr...)
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("multiple root elements in document")
				}
				root = el
			} else {
				stack[len(stack)-1].Append(el)
			}
			stack = append(stack, el)

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("unbalanced end element </%s>", t.Name.Local)
			}
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			text := strings.TrimSpace(string(t))
			if text == "" {
				continue
			}
			top := stack[len(stack)-1]
			if top.Text == "" {
				top.Text = text
			} else {
				top.Text += " " + text
			}
		}
	}

	if root == nil {
		return nil, fmt.Errorf("document contains no elements")
	}
	return root, nil
}

// ParseString is a convenience wrapper over Parse for in-memory documents.
func ParseString(s string) (*Element, error) {
	return Parse(strings.NewReader(s))
}

// WriteTo serializes the subtree as indented XML.
func (e *Element) WriteTo(w io.Writer, indent string) error {
	enc := xml.NewEncoder(w)
	enc.Indent("", indent)
	if err := e.encode(enc); err != nil {
		return fmt.Errorf("failed to serialize document: %w", err)
	}
	return enc.Flush()
}

func (e *Element) encode(enc *xml.Encoder) error {
	start := xml.StartElement{
		Name: xml.Name{Local: e.Label},
		Attr: e.Attr,
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if e.Text != "" {
		if err := enc.EncodeToken(xml.CharData(e.Text)); err != nil {
			return err
		}
	}
	for _, c := range e.Children {
		if err := c.encode(enc); err != nil {
			return err
		}
	}
	return enc.EncodeToken(xml.EndElement{Name: start.Name})
}

// String returns the indented XML serialization; it exists for debugging
// and test assertions.
func (e *Element) String() string {
	var b strings.Builder
	if err := e.WriteTo(&b, "  "); err != nil {
		return fmt.Sprintf("<!-- serialization error: %v -->", err)
	}
	return b.String()
}
