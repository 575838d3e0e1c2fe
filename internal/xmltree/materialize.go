package xmltree

import (
	"fmt"
	"strings"

	"github.com/tnbrown/metapush/pkg/metapush"
)

// Materialize resolves (creating where necessary) a path through the tree
// and returns the ordered sequence of nodes from root to the matched or
// newly-created container.
//
// containerPath is the descent from root to a repeated container level,
// e.g. ["eainfo", "detailed"] descends into the entity section and then a
// repeated "detailed" element. All but the last label resolve by searching
// anywhere under the current node: exactly one descendant with that label
// descends into it, none creates and appends a new child, and more than one
// is a contract violation (ErrAmbiguousStructure, fatal).
//
// At the final container label every matching descendant is a candidate.
// A candidate's identity is its own text when nameSubpath is empty,
// otherwise the text of the exactly-one descendant chain named by
// nameSubpath (zero or multiple at any step is a contract violation).
// A candidate whose identity equals nameText is the match. If none
// matches, a new container is created with the full nameSubpath chain
// built out beneath it, ending in a node whose text is nameText.
//
// Materialize is an idempotent upsert: calling it twice with the same
// arguments yields an equal path the second time and performs no further
// mutation, which is what makes re-processing the same document safe.
// Existing children are never removed or reordered, only appended to.
func Materialize(root *Element, containerPath, nameSubpath []string, nameText string) ([]*Element, error) {
	if len(containerPath) == 0 {
		return nil, &metapush.TemplateError{
			Message: "empty container path",
			Hint:    "Writer adapters must supply at least one container label.",
			Err:     metapush.ErrInvalidConfig,
		}
	}

	path := []*Element{root}
	current := root

	// Descend through the interior labels, creating missing ones.
	for i, label := range containerPath[:len(containerPath)-1] {
		matches := current.FindAll(label)
		switch len(matches) {
		case 0:
			child := New(label)
			current.Append(child)
			current = child
		case 1:
			current = matches[0]
		default:
			return nil, ambiguityError(containerPath[:i+1], len(matches))
		}
		path = append(path, current)
	}

	// The final label is the repeated container: collect all candidates
	// instead of auto-descending.
	containerLabel := containerPath[len(containerPath)-1]
	for _, candidate := range current.FindAll(containerLabel) {
		identity, err := identityText(candidate, containerPath, nameSubpath)
		if err != nil {
			return nil, err
		}
		if identity == nameText {
			return append(path, candidate), nil
		}
	}

	// No candidate matched: create the container and the full identity
	// chain beneath it. Nothing is reused since the container is new.
	container := New(containerLabel)
	current.Append(container)

	tip := container
	for _, label := range nameSubpath {
		child := New(label)
		tip.Append(child)
		tip = child
	}
	tip.Text = nameText

	return append(path, container), nil
}

// identityText reads a candidate's identifying text by following
// nameSubpath. An empty sub-path means the candidate's own text is the
// identity; otherwise each step must resolve to exactly one descendant.
func identityText(candidate *Element, containerPath, nameSubpath []string) (string, error) {
	if len(nameSubpath) == 0 {
		return candidate.Text, nil
	}

	current := candidate
	for i, label := range nameSubpath {
		matches := current.FindAll(label)
		if len(matches) != 1 {
			at := strings.Join(append(append([]string{}, containerPath...), nameSubpath[:i+1]...), "/")
			return "", &metapush.TemplateError{
				Path:    at,
				Message: identityMessage(len(matches), label),
				Hint: "Each container must carry exactly one identifying element.\n" +
					"Fix the template by hand before re-running; the document is not safely editable as-is.",
				Err: metapush.ErrAmbiguousStructure,
			}
		}
		current = matches[0]
	}
	return current.Text, nil
}

func identityMessage(count int, label string) string {
	if count == 0 {
		return "missing identifying element <" + label + ">"
	}
	return "multiple identifying elements <" + label + ">"
}

func ambiguityError(resolved []string, count int) error {
	return &metapush.TemplateError{
		Path:    strings.Join(resolved, "/"),
		Message: fmt.Sprintf("expected exactly one element, found %d", count),
		Hint: "The template contains duplicated structural sections.\n" +
			"Fix the template by hand before re-running; the document is not safely editable as-is.",
		Err: metapush.ErrAmbiguousStructure,
	}
}
