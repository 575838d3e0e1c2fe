package alias

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tnbrown/metapush/internal/record"
)

func TestCanonicalize_ExactMatchWins(t *testing.T) {
	tab := Default()

	assert.Equal(t, "entity_name", tab.Canonicalize("entity_name"))
	assert.Equal(t, "entity_name", tab.Canonicalize("Entity_Name"), "canonical match is case-insensitive")
}

func TestCanonicalize_AliasMatch(t *testing.T) {
	tab := Default()

	assert.Equal(t, "entity_name", tab.Canonicalize("table"))
	assert.Equal(t, "entity_name", tab.Canonicalize("layer"))
	assert.Equal(t, "attribute_name", tab.Canonicalize("column"))
	assert.Equal(t, "attribute_definition", tab.Canonicalize("definition"))
}

func TestCanonicalize_UnknownPassesThrough(t *testing.T) {
	tab := Default()

	assert.Equal(t, "favorite_color", tab.Canonicalize("favorite_color"),
		"unknown fields are preserved, not dropped")
}

func TestCanonicalize_Stable(t *testing.T) {
	tab := Default()

	for _, name := range []string{"table", "entity_name", "column", "definition", "unknown_field"} {
		once := tab.Canonicalize(name)
		assert.Equal(t, once, tab.Canonicalize(once), "canonicalize must be idempotent for %q", name)
	}
}

func TestCanonicalize_AmbiguousAliasResolvesInTableOrder(t *testing.T) {
	// "entity" deliberately aliases two canonical names; the first table
	// entry wins.
	tab := NewTable()
	tab.Add("entity_name", "entity")
	tab.Add("entity_definition", "entity")

	assert.Equal(t, "entity_name", tab.Canonicalize("entity"))

	reversed := NewTable()
	reversed.Add("entity_definition", "entity")
	reversed.Add("entity_name", "entity")

	assert.Equal(t, "entity_definition", reversed.Canonicalize("entity"))
}

func TestAdd_CanonicalNeverItsOwnAlias(t *testing.T) {
	tab := NewTable()
	tab.Add("entity_name", "entity_name", "Entity_Name", "table")

	assert.Equal(t, []string{"table"}, tab.Aliases("entity_name"))
}

func TestGet_ExactThenAliases(t *testing.T) {
	tab := Default()

	rec := record.New()
	rec.Set("table", "Roads")

	v, ok := tab.Get(rec, "entity_name")
	require.True(t, ok)
	assert.Equal(t, "Roads", v)

	// Exact key takes precedence over aliases.
	rec.Set("entity_name", "Rivers")
	v, ok = tab.Get(rec, "entity_name")
	require.True(t, ok)
	assert.Equal(t, "Rivers", v)
}

func TestGet_AbsentIsOK(t *testing.T) {
	tab := Default()

	_, ok := tab.Get(record.New(), "entity_name")
	assert.False(t, ok)

	_, ok = tab.Get(nil, "entity_name")
	assert.False(t, ok)
}

func TestGet_AliasOrderSignificant(t *testing.T) {
	tab := Default()

	rec := record.New()
	rec.Set("table_name", "FromTableName")
	rec.Set("layer", "FromLayer")

	// table_name is registered before layer, so it wins.
	v, ok := tab.Get(rec, "entity_name")
	require.True(t, ok)
	assert.Equal(t, "FromTableName", v)
}

func TestMergeScalarFields_OverwritesUnderCanonicalKey(t *testing.T) {
	tab := Default()

	dst := record.New()
	dst.Set("attribute_name", "Width")
	dst.Set("attribute_definition", "old definition")

	src := record.New()
	src.Set("definition", "pavement width")
	src.Set("type", "double")

	tab.MergeScalarFields(dst, src)

	def, _ := dst.Lookup("attribute_definition")
	assert.Equal(t, "pavement width", def)
	typ, _ := dst.Lookup("attribute_type")
	assert.Equal(t, "double", typ)
	name, _ := dst.Lookup("attribute_name")
	assert.Equal(t, "Width", name, "fields absent from src are untouched")
}

func TestMergeScalarFields_ListFieldsUntouched(t *testing.T) {
	tab := Default()

	dst := record.New()
	child := record.New()
	child.Set("attribute_name", "Width")
	dst.AppendChild("attributes", child)

	src := record.New()
	src.Set("entity_name", "Roads")
	srcChild := record.New()
	srcChild.Set("attribute_name", "Lanes")
	src.AppendChild("attributes", srcChild)

	tab.MergeScalarFields(dst, src)

	require.Len(t, dst.ChildList("attributes"), 1, "child lists are merged structurally, not here")
	name, _ := dst.ChildList("attributes")[0].Lookup("attribute_name")
	assert.Equal(t, "Width", name)
}

func TestMergeScalarFields_NilSafe(t *testing.T) {
	tab := Default()
	tab.MergeScalarFields(nil, record.New())
	tab.MergeScalarFields(record.New(), nil)
}
