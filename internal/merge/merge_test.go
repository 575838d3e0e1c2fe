package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tnbrown/metapush/internal/alias"
	"github.com/tnbrown/metapush/internal/record"
)

var (
	entityLevels = []string{"entity_name", "attribute_name"}
	childLists   = []string{"", "attributes"}
)

func entity(name string, attrs ...*record.Record) *record.Record {
	e := record.New()
	if name != "" {
		e.Set("entity_name", name)
	}
	for _, a := range attrs {
		e.AppendChild("attributes", a)
	}
	return e
}

func attr(name string, fields ...string) *record.Record {
	a := record.New()
	if name != "" {
		a.Set("attribute_name", name)
	}
	for i := 0; i+1 < len(fields); i += 2 {
		a.Set(fields[i], fields[i+1])
	}
	return a
}

func entityName(t *testing.T, r *record.Record) string {
	t.Helper()
	v, _ := r.Lookup("entity_name")
	return v
}

func TestMerge_MatchedAttributeGainsDefinition(t *testing.T) {
	// Template: Roads.Width with no definition.
	// Content:  Roads.Width with a definition.
	old := []*record.Record{entity("Roads", attr("Width"))}
	new_ := []*record.Record{entity("Roads", attr("Width", "definition", "pavement width"))}

	eng := NewEngine(alias.Default(), DefaultPolicy)
	merged := eng.Merge(old, new_, entityLevels, childLists)

	require.Len(t, merged, 1, "no duplicate Roads entity")
	attrs := merged[0].ChildList("attributes")
	require.Len(t, attrs, 1)

	def, ok := attrs[0].Lookup("attribute_definition")
	require.True(t, ok)
	assert.Equal(t, "pavement width", def)
}

func TestMerge_PreservesCardinality(t *testing.T) {
	old := []*record.Record{entity("A"), entity("B")}
	new_ := []*record.Record{entity("B"), entity("C"), entity("D")}

	eng := NewEngine(alias.Default(), DefaultPolicy)
	merged := eng.Merge(old, new_, entityLevels, childLists)

	// len(old) + count of new records with no match in old.
	assert.Len(t, merged, 4)
}

func TestMerge_OrderPreservingAndAppendOrdered(t *testing.T) {
	old := []*record.Record{entity("A"), entity("B")}
	new_ := []*record.Record{
		entity("B", attr("Width", "definition", "pavement width")),
		entity("C"),
	}

	eng := NewEngine(alias.Default(), DefaultPolicy)
	merged := eng.Merge(old, new_, entityLevels, childLists)

	require.Len(t, merged, 3)
	assert.Equal(t, "A", entityName(t, merged[0]))
	assert.Equal(t, "B", entityName(t, merged[1]))
	assert.Equal(t, "C", entityName(t, merged[2]))

	// B absorbed B's attributes.
	require.Len(t, merged[1].ChildList("attributes"), 1)
}

func TestMerge_DoesNotMutateOldInput(t *testing.T) {
	oldAttr := attr("Width")
	old := []*record.Record{entity("Roads", oldAttr)}
	new_ := []*record.Record{entity("Roads", attr("Width", "definition", "pavement width"))}

	eng := NewEngine(alias.Default(), DefaultPolicy)
	_ = eng.Merge(old, new_, entityLevels, childLists)

	require.Len(t, old, 1)
	require.Len(t, old[0].ChildList("attributes"), 1)
	_, hasDef := oldAttr.Lookup("attribute_definition")
	assert.False(t, hasDef, "merge must work on an independent copy")
	_, hasDefCanonical := oldAttr.Lookup("definition")
	assert.False(t, hasDefCanonical)
}

func TestMerge_IdentityThroughAliases(t *testing.T) {
	// Content source uses "table" for entity identity, template uses
	// "entity_name": same entity.
	content := record.New()
	content.Set("table", "Roads")
	content.AppendChild("attributes", attr("Width", "definition", "pavement width"))

	old := []*record.Record{entity("Roads", attr("Width"))}

	eng := NewEngine(alias.Default(), DefaultPolicy)
	merged := eng.Merge(old, []*record.Record{content}, entityLevels, childLists)

	require.Len(t, merged, 1, "alias-spelled key must not create a duplicate entity")
	def, ok := alias.Default().Get(merged[0].ChildList("attributes")[0], "attribute_definition")
	require.True(t, ok)
	assert.Equal(t, "pavement width", def)
}

func TestMerge_AttributeAliasedKeyMatches(t *testing.T) {
	contentAttr := record.New()
	contentAttr.Set("column", "Width")
	contentAttr.Set("definition", "pavement width")

	contentEntity := record.New()
	contentEntity.Set("entity_name", "Roads")
	contentEntity.AppendChild("attributes", contentAttr)

	old := []*record.Record{entity("Roads", attr("Width"))}

	eng := NewEngine(alias.Default(), DefaultPolicy)
	merged := eng.Merge(old, []*record.Record{contentEntity}, entityLevels, childLists)

	attrs := merged[0].ChildList("attributes")
	require.Len(t, attrs, 1, "column/attribute_name must be recognized as the same key")
}

func TestMerge_UnmatchedAttributesAppended(t *testing.T) {
	old := []*record.Record{entity("Roads", attr("Width"))}
	new_ := []*record.Record{entity("Roads", attr("Lanes"), attr("Surface"))}

	eng := NewEngine(alias.Default(), DefaultPolicy)
	merged := eng.Merge(old, new_, entityLevels, childLists)

	attrs := merged[0].ChildList("attributes")
	require.Len(t, attrs, 3)
	names := make([]string, 0, 3)
	for _, a := range attrs {
		n, _ := a.Lookup("attribute_name")
		names = append(names, n)
	}
	assert.Equal(t, []string{"Width", "Lanes", "Surface"}, names)
}

// Absent identity keys are considered equal under the default policy. This
// matches the reference behavior for single-entity CSV sources with no
// entity column, and it deliberately coalesces multiple logically-distinct
// unnamed entities into one; the never-merge policy below is the way out.
func TestMerge_AbsentKeysMatchUnderDefaultPolicy(t *testing.T) {
	old := []*record.Record{entity("", attr("Width"))}
	new_ := []*record.Record{entity("", attr("Width", "definition", "pavement width"))}

	eng := NewEngine(alias.Default(), DefaultPolicy)
	merged := eng.Merge(old, new_, entityLevels, childLists)

	require.Len(t, merged, 1, "unnamed entities coalesce by default")
	def, ok := merged[0].ChildList("attributes")[0].Lookup("attribute_definition")
	require.True(t, ok)
	assert.Equal(t, "pavement width", def)
}

func TestMerge_AbsentKeysDistinctUnderNeverMergePolicy(t *testing.T) {
	old := []*record.Record{entity("", attr("Width"))}
	new_ := []*record.Record{entity("", attr("Width", "definition", "pavement width"))}

	eng := NewEngine(alias.Default(), Policy{MatchAbsent: false})
	merged := eng.Merge(old, new_, entityLevels, childLists)

	assert.Len(t, merged, 2, "never-merge keeps unnamed records distinct")
}

func TestMerge_AbsentNeverMatchesPresent(t *testing.T) {
	old := []*record.Record{entity("Roads")}
	new_ := []*record.Record{entity("")}

	eng := NewEngine(alias.Default(), DefaultPolicy)
	merged := eng.Merge(old, new_, entityLevels, childLists)

	assert.Len(t, merged, 2)
}

func TestMerge_SingleLevel(t *testing.T) {
	// Innermost-level merge directly over attribute lists.
	old := []*record.Record{attr("Width"), attr("Lanes")}
	new_ := []*record.Record{attr("Width", "definition", "pavement width"), attr("Surface")}

	eng := NewEngine(alias.Default(), DefaultPolicy)
	merged := eng.Merge(old, new_, []string{"attribute_name"}, []string{""})

	require.Len(t, merged, 3)
	def, ok := merged[0].Lookup("attribute_definition")
	require.True(t, ok)
	assert.Equal(t, "pavement width", def)
}

func TestMerge_EmptyInputs(t *testing.T) {
	eng := NewEngine(alias.Default(), DefaultPolicy)

	assert.Empty(t, eng.Merge(nil, nil, entityLevels, childLists))

	merged := eng.Merge(nil, []*record.Record{entity("Roads")}, entityLevels, childLists)
	require.Len(t, merged, 1)
	assert.Equal(t, "Roads", entityName(t, merged[0]))

	merged = eng.Merge([]*record.Record{entity("Roads")}, nil, entityLevels, childLists)
	require.Len(t, merged, 1)
}

func TestMerge_ThreeLevels(t *testing.T) {
	// The engine generalizes to N levels via the keyFields/childFields
	// parameterization; exercise a dataset -> entity -> attribute nesting.
	ds := record.New()
	ds.Set("dataset_name", "Survey2024")
	ds.AppendChild("entities", entity("Roads", attr("Width")))

	newDS := record.New()
	newDS.Set("dataset_name", "Survey2024")
	newDS.AppendChild("entities", entity("Roads", attr("Width", "definition", "pavement width")))

	tab := alias.Default()
	tab.Add("dataset_name", "dataset")

	eng := NewEngine(tab, DefaultPolicy)
	merged := eng.Merge(
		[]*record.Record{ds},
		[]*record.Record{newDS},
		[]string{"dataset_name", "entity_name", "attribute_name"},
		[]string{"", "entities", "attributes"},
	)

	require.Len(t, merged, 1)
	entities := merged[0].ChildList("entities")
	require.Len(t, entities, 1)
	def, ok := entities[0].ChildList("attributes")[0].Lookup("attribute_definition")
	require.True(t, ok)
	assert.Equal(t, "pavement width", def)
}
