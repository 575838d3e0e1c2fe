package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tnbrown/metapush/internal/alias"
	"github.com/tnbrown/metapush/internal/content"
	"github.com/tnbrown/metapush/internal/files/filesystem"
	"github.com/tnbrown/metapush/internal/logging"
	"github.com/tnbrown/metapush/internal/record"
	"github.com/tnbrown/metapush/internal/template"
	"github.com/tnbrown/metapush/internal/xmltree"
	"github.com/tnbrown/metapush/pkg/metapush"
)

const pushTemplate = `<metadata>
  <eainfo>
    <detailed>
      <enttyp><enttypl>Roads</enttypl></enttyp>
      <attr><attrlabl>Width</attrlabl></attr>
    </detailed>
  </eainfo>
</metadata>`

// stubApprover records whether it was consulted and answers canned.
type stubApprover struct {
	approve bool
	err     error
	called  bool
}

func (a *stubApprover) RequestApproval(ctx context.Context, outputPath string) (bool, error) {
	a.called = true
	return a.approve, a.err
}

func newPushFixture(t *testing.T) (*filesystem.MemoryFileSystem, *stubApprover, *PushService) {
	t.Helper()
	mfs := filesystem.NewMemoryFileSystem("/project")
	aliases := alias.Default()
	approver := &stubApprover{approve: true}
	svc := NewPushService(
		mfs,
		content.DefaultRegistry(mfs, aliases),
		template.DefaultRegistry(),
		aliases,
		approver,
		logging.NewNullLogger(),
	)
	return mfs, approver, svc
}

func parseOutput(t *testing.T, mfs *filesystem.MemoryFileSystem, path string) *xmltree.Element {
	t.Helper()
	data, err := mfs.ReadFile(path)
	require.NoError(t, err)
	root, err := xmltree.ParseString(string(data))
	require.NoError(t, err)
	return root
}

func TestPush_EndToEnd(t *testing.T) {
	mfs, approver, svc := newPushFixture(t)
	mfs.AddFile("meta.xml", pushTemplate)
	mfs.AddFile("columns.csv",
		"table,column,definition\n"+
			"Roads,Width,pavement width\n"+
			"Roads,Lanes,number of lanes\n")

	err := svc.Push(context.Background(), metapush.PushConfig{
		TemplatePath: "meta.xml",
		ContentPaths: []string{"columns.csv"},
		OutputPath:   "out.xml",
		MergeUnnamed: true,
	})
	require.NoError(t, err)
	assert.False(t, approver.called, "fresh output needs no approval")

	root := parseOutput(t, mfs, "out.xml")
	detailed := root.FindAll("detailed")
	require.Len(t, detailed, 1, "matched entity must not be duplicated")

	attrs := detailed[0].FindAll("attr")
	require.Len(t, attrs, 2, "existing Width updated, Lanes appended")
	assert.Equal(t, "pavement width", attrs[0].Child("attrdef").Text)
	assert.Equal(t, "Lanes", attrs[1].Child("attrlabl").Text)
	assert.Equal(t, "number of lanes", attrs[1].Child("attrdef").Text)
}

// unnamedTemplate carries a single entity with an empty label, the shape
// ArcMap leaves behind for a layer that was never named in the metadata.
const unnamedTemplate = `<metadata>
  <eainfo>
    <detailed>
      <enttyp><enttypl></enttypl></enttyp>
      <attr><attrlabl>Width</attrlabl></attr>
    </detailed>
  </eainfo>
</metadata>`

func TestPush_UnnamedContentMergesIntoSingleEntity(t *testing.T) {
	mfs, _, svc := newPushFixture(t)
	mfs.AddFile("meta.xml", unnamedTemplate)
	mfs.AddFile("columns.csv", "column,definition\nWidth,pavement width\n")

	err := svc.Push(context.Background(), metapush.PushConfig{
		TemplatePath: "meta.xml",
		ContentPaths: []string{"columns.csv"},
		OutputPath:   "out.xml",
		MergeUnnamed: true,
	})
	require.NoError(t, err)

	root := parseOutput(t, mfs, "out.xml")
	require.Len(t, root.FindAll("detailed"), 1)
	assert.Equal(t, "pavement width", root.FindAll("attr")[0].Child("attrdef").Text)
}

func TestPush_NeverMergeKeepsUnnamedEntitiesDistinct(t *testing.T) {
	mfs, _, svc := newPushFixture(t)
	mfs.AddFile("meta.xml", unnamedTemplate)
	mfs.AddFile("width.csv", "column,definition\nWidth,pavement width\n")
	mfs.AddFile("depth.csv", "column,definition\nDepth,channel depth\n")

	err := svc.Push(context.Background(), metapush.PushConfig{
		TemplatePath: "meta.xml",
		ContentPaths: []string{"width.csv", "depth.csv"},
		OutputPath:   "out.xml",
		MergeUnnamed: false,
	})
	require.NoError(t, err)

	root := parseOutput(t, mfs, "out.xml")
	detailed := root.FindAll("detailed")
	require.Len(t, detailed, 3, "template entity plus one container per unnamed source")

	// Unnamed content entities carry their stable generated identity, so
	// each lands in its own container and re-runs reuse the same ones.
	assert.Equal(t, record.FallbackID("width.csv", 0).String(),
		detailed[1].Child("enttyp").Child("enttypl").Text)
	assert.Equal(t, record.FallbackID("depth.csv", 0).String(),
		detailed[2].Child("enttyp").Child("enttypl").Text)
	assert.Equal(t, "pavement width", detailed[1].FindAll("attr")[0].Child("attrdef").Text)
	assert.Equal(t, "channel depth", detailed[2].FindAll("attr")[0].Child("attrdef").Text)
}

func TestPush_DefaultsFillAbsentFields(t *testing.T) {
	mfs, _, svc := newPushFixture(t)
	mfs.AddFile("meta.xml", pushTemplate)
	mfs.AddFile("columns.csv", "table,column\nRoads,Width\n")

	err := svc.Push(context.Background(), metapush.PushConfig{
		TemplatePath: "meta.xml",
		ContentPaths: []string{"columns.csv"},
		OutputPath:   "out.xml",
		Defaults:     map[string]string{"type": "double"},
		MergeUnnamed: true,
	})
	require.NoError(t, err)

	root := parseOutput(t, mfs, "out.xml")
	assert.Equal(t, "double", root.FindAll("attr")[0].Child("attrtype").Text)
}

func TestPush_EntityFilter(t *testing.T) {
	mfs, _, svc := newPushFixture(t)
	mfs.AddFile("meta.xml", pushTemplate)
	mfs.AddFile("columns.csv",
		"table,column,definition\n"+
			"Rivers,Depth,channel depth\n"+
			"Parcels,Area,parcel area\n")

	err := svc.Push(context.Background(), metapush.PushConfig{
		TemplatePath: "meta.xml",
		ContentPaths: []string{"columns.csv"},
		OutputPath:   "out.xml",
		Entities:     []string{"Rivers"},
		MergeUnnamed: true,
	})
	require.NoError(t, err)

	root := parseOutput(t, mfs, "out.xml")
	names := root.FindAll("enttypl")
	require.Len(t, names, 2, "template entity survives, only Rivers added")
	assert.Equal(t, "Roads", names[0].Text)
	assert.Equal(t, "Rivers", names[1].Text)
}

func TestPush_OutputExistsWithoutOverwrite(t *testing.T) {
	mfs, approver, svc := newPushFixture(t)
	mfs.AddFile("meta.xml", pushTemplate)
	mfs.AddFile("columns.csv", "column\nWidth\n")
	mfs.AddFile("out.xml", "precious")

	err := svc.Push(context.Background(), metapush.PushConfig{
		TemplatePath: "meta.xml",
		ContentPaths: []string{"columns.csv"},
		OutputPath:   "out.xml",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, metapush.ErrOutputExists))
	assert.False(t, approver.called)

	data, readErr := mfs.ReadFile("out.xml")
	require.NoError(t, readErr)
	assert.Equal(t, "precious", string(data), "existing output untouched")
}

func TestPush_InPlaceUpdateRequiresOverwrite(t *testing.T) {
	mfs, _, svc := newPushFixture(t)
	mfs.AddFile("meta.xml", pushTemplate)
	mfs.AddFile("columns.csv", "column\nWidth\n")

	err := svc.Push(context.Background(), metapush.PushConfig{
		TemplatePath: "meta.xml",
		ContentPaths: []string{"columns.csv"},
	})
	assert.True(t, errors.Is(err, metapush.ErrOutputExists))
}

func TestPush_OverwriteDenied(t *testing.T) {
	mfs, approver, svc := newPushFixture(t)
	approver.approve = false
	mfs.AddFile("meta.xml", pushTemplate)
	mfs.AddFile("columns.csv", "column\nWidth\n")
	mfs.AddFile("out.xml", "precious")

	err := svc.Push(context.Background(), metapush.PushConfig{
		TemplatePath: "meta.xml",
		ContentPaths: []string{"columns.csv"},
		OutputPath:   "out.xml",
		Overwrite:    true,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, metapush.ErrApprovalDenied))
	assert.True(t, approver.called)

	data, readErr := mfs.ReadFile("out.xml")
	require.NoError(t, readErr)
	assert.Equal(t, "precious", string(data))
}

func TestPush_OverwriteApproved(t *testing.T) {
	mfs, approver, svc := newPushFixture(t)
	mfs.AddFile("meta.xml", pushTemplate)
	mfs.AddFile("columns.csv", "column,definition\nWidth,pavement width\n")
	mfs.AddFile("out.xml", "old content")

	err := svc.Push(context.Background(), metapush.PushConfig{
		TemplatePath: "meta.xml",
		ContentPaths: []string{"columns.csv"},
		OutputPath:   "out.xml",
		Overwrite:    true,
		MergeUnnamed: true,
	})
	require.NoError(t, err)
	assert.True(t, approver.called)

	root := parseOutput(t, mfs, "out.xml")
	assert.Equal(t, "metadata", root.Label)
}

func TestPush_ConfigValidation(t *testing.T) {
	_, _, svc := newPushFixture(t)

	err := svc.Push(context.Background(), metapush.PushConfig{ContentPaths: []string{"x.csv"}})
	assert.True(t, errors.Is(err, metapush.ErrInvalidConfig))

	err = svc.Push(context.Background(), metapush.PushConfig{TemplatePath: "meta.xml"})
	assert.True(t, errors.Is(err, metapush.ErrInvalidConfig))
}

func TestPush_MissingTemplate(t *testing.T) {
	mfs, _, svc := newPushFixture(t)
	mfs.AddFile("columns.csv", "column\nWidth\n")

	err := svc.Push(context.Background(), metapush.PushConfig{
		TemplatePath: "meta.xml",
		ContentPaths: []string{"columns.csv"},
		OutputPath:   "out.xml",
	})
	assert.True(t, errors.Is(err, metapush.ErrTemplateNotFound))
}

func TestPush_UnrecognizedContentIsFatal(t *testing.T) {
	mfs, _, svc := newPushFixture(t)
	mfs.AddFile("meta.xml", pushTemplate)
	mfs.AddFile("columns.docx", "not a table")

	err := svc.Push(context.Background(), metapush.PushConfig{
		TemplatePath: "meta.xml",
		ContentPaths: []string{"columns.docx"},
		OutputPath:   "out.xml",
	})
	assert.True(t, errors.Is(err, metapush.ErrNoHandler))

	_, readErr := mfs.ReadFile("out.xml")
	assert.Error(t, readErr, "no partial output on failure")
}

func TestPush_UnrecognizedTemplateDialect(t *testing.T) {
	mfs, _, svc := newPushFixture(t)
	mfs.AddFile("meta.xml", `<catalog><thing/></catalog>`)
	mfs.AddFile("columns.csv", "column\nWidth\n")

	err := svc.Push(context.Background(), metapush.PushConfig{
		TemplatePath: "meta.xml",
		ContentPaths: []string{"columns.csv"},
		OutputPath:   "out.xml",
	})
	assert.True(t, errors.Is(err, metapush.ErrNoHandler))
}

func TestListEntities(t *testing.T) {
	mfs, _, svc := newPushFixture(t)
	mfs.AddFile("columns.csv",
		"table,column\n"+
			"Roads,Width\n")
	mfs.AddFile("plain.csv", "column\nWidth\n")

	entities, err := svc.ListEntities("columns.csv")
	require.NoError(t, err)
	require.Len(t, entities, 1)
	name, _ := entities[0].Lookup(alias.EntityName)
	assert.Equal(t, "Roads", name)
	_, hasID := entities[0].Lookup("generated_id")
	assert.False(t, hasID, "named entities need no generated identity")

	entities, err = svc.ListEntities("plain.csv")
	require.NoError(t, err)
	require.Len(t, entities, 1)
	id, hasID := entities[0].Lookup("generated_id")
	assert.True(t, hasID)
	assert.NotEmpty(t, id)
}

func TestNewPushService_NilDependencyPanics(t *testing.T) {
	mfs := filesystem.NewMemoryFileSystem("/project")
	aliases := alias.Default()

	assert.Panics(t, func() {
		NewPushService(mfs, content.DefaultRegistry(mfs, aliases), template.DefaultRegistry(), aliases, nil, logging.NewNullLogger())
	})
}
