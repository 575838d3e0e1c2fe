// Package merge reconciles two ordered sequences of hierarchical records.
//
// The engine is generic over nesting depth: identity fields and child-list
// fields are supplied per level, outermost first. The reference usage is two
// levels (entities keyed by entity_name containing an "attributes" list
// keyed by attribute_name), but nothing here hard-codes that.
package merge

import (
	"github.com/tnbrown/metapush/internal/alias"
	"github.com/tnbrown/metapush/internal/record"
)

// Policy controls the merge-identity edge cases.
type Policy struct {
	// MatchAbsent treats two records whose identity key is absent as equal.
	// This is the reference behavior and the default: a single-entity CSV
	// with no entity column merges into a template's single unnamed entity.
	// The sharp edge is that multiple logically-distinct unnamed entities
	// coalesce into one; set MatchAbsent to false to keep every unnamed
	// record distinct instead.
	MatchAbsent bool
}

// DefaultPolicy matches the reference behavior: absent identity keys are
// considered equal.
var DefaultPolicy = Policy{MatchAbsent: true}

// Engine merges hierarchical record collections using an alias table for
// identity comparison, so an entity keyed "table" in one source and
// "entity_name" in another are recognized as the same entity.
type Engine struct {
	aliases *alias.Table
	policy  Policy
}

// NewEngine creates a merge engine with the given alias table and policy.
func NewEngine(aliases *alias.Table, policy Policy) *Engine {
	return &Engine{
		aliases: aliases,
		policy:  policy,
	}
}

// Merge reconciles newRecords into a deep copy of oldRecords and returns the
// merged sequence. The caller's inputs are never mutated or aliased.
//
// keyFields names the identity field per nesting level, outermost first.
// childFields is the matching list of child-list field names; its first
// entry is a placeholder since the outermost level has no parent list.
//
// For each new record, the working copy is scanned for a record whose
// canonical identity value equals the new record's:
//   - matched with deeper levels remaining: the matched record's child list
//     is replaced by the recursive merge of both child lists;
//   - matched at the innermost level: scalar fields are reconciled, new
//     values overwriting old ones under their canonical keys;
//   - unmatched: queued, then appended after all scans in encounter order.
//
// Ordering guarantees: existing records keep their relative order and
// position; appended records keep the order they appeared in newRecords;
// no record is duplicated or dropped.
func (e *Engine) Merge(oldRecords, newRecords []*record.Record, keyFields, childFields []string) []*record.Record {
	merged := record.CloneList(oldRecords)
	if len(keyFields) == 0 {
		return append(merged, record.CloneList(newRecords)...)
	}

	key := keyFields[0]
	var unmatched []*record.Record

	for _, incoming := range newRecords {
		target := e.findMatch(merged, incoming, key)
		if target == nil {
			unmatched = append(unmatched, incoming)
			continue
		}

		if len(keyFields) > 1 {
			childField := childFields[1]
			target.SetChildList(childField, e.Merge(
				target.ChildList(childField),
				incoming.ChildList(childField),
				keyFields[1:],
				childFields[1:],
			))
		} else {
			e.aliases.MergeScalarFields(target, incoming)
		}
	}

	for _, r := range unmatched {
		merged = append(merged, r.Clone())
	}

	return merged
}

// findMatch returns the first record in candidates whose canonical value
// under key equals incoming's, or nil. Identity comparison routes through
// the alias table, never raw field lookup.
func (e *Engine) findMatch(candidates []*record.Record, incoming *record.Record, key string) *record.Record {
	incomingVal, incomingOK := e.aliases.Get(incoming, key)

	for _, c := range candidates {
		val, ok := e.aliases.Get(c, key)
		switch {
		case ok && incomingOK:
			if val == incomingVal {
				return c
			}
		case !ok && !incomingOK:
			if e.policy.MatchAbsent {
				return c
			}
		}
	}

	return nil
}
