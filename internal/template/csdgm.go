package template

import (
	"github.com/tnbrown/metapush/internal/alias"
	"github.com/tnbrown/metapush/internal/record"
	"github.com/tnbrown/metapush/internal/xmltree"
)

// CSDGM entity-section structure. One <detailed> element per entity under
// <eainfo>, identified by enttyp/enttypl; one <attr> per attribute,
// identified by attrlabl. Range domain values live under attrdomv/rdom.
var (
	entityContainerPath = []string{"eainfo", "detailed"}
	entityNamePath      = []string{"enttyp", "enttypl"}
	attrContainerPath   = []string{"attr"}
	attrNamePath        = []string{"attrlabl"}
)

// attrScalarLabels maps canonical attribute fields to their direct child
// elements of <attr>.
var attrScalarLabels = []struct {
	canonical string
	label     string
}{
	{alias.AttributeDefinition, "attrdef"},
	{alias.AttributeSource, "attrdefs"},
	{alias.AttributeType, "attrtype"},
}

// rangeLabels maps canonical range fields to their elements under
// attrdomv/rdom.
var rangeLabels = []struct {
	canonical string
	label     string
}{
	{alias.RangeMin, "rdommin"},
	{alias.RangeMax, "rdommax"},
	{alias.Units, "attrunit"},
}

// CSDGMHandler reads and writes the entity section of CSDGM/FGDC metadata
// documents.
type CSDGMHandler struct {
	aliases *alias.Table
}

// NewCSDGMHandler creates a CSDGM dialect handler.
func NewCSDGMHandler() *CSDGMHandler {
	return &CSDGMHandler{aliases: alias.Default()}
}

// Name implements Handler.
func (h *CSDGMHandler) Name() string { return "csdgm" }

// Detect implements Handler. CSDGM is the catch-all dialect for <metadata>
// documents; register it after marker-specific variants.
func (h *CSDGMHandler) Detect(root *xmltree.Element) bool {
	return root != nil && root.Label == "metadata"
}

// Parse implements Handler. Each <detailed> section becomes one entity
// record; absent elements leave the corresponding field absent rather than
// empty, so the merge engine can distinguish "not described" from
// "described as empty".
func (h *CSDGMHandler) Parse(root *xmltree.Element) ([]*record.Record, error) {
	var entities []*record.Record

	for _, detailed := range root.FindAll("detailed") {
		entity := record.New()

		if enttyp := detailed.Child("enttyp"); enttyp != nil {
			setIfPresent(entity, alias.EntityName, enttyp.Child("enttypl"))
			setIfPresent(entity, alias.EntityDefinition, enttyp.Child("enttypd"))
		}

		for _, attrEl := range detailed.FindAll("attr") {
			attr := record.New()
			setIfPresent(attr, alias.AttributeName, attrEl.Child("attrlabl"))
			for _, f := range attrScalarLabels {
				setIfPresent(attr, f.canonical, attrEl.Child(f.label))
			}
			if rdom := findRange(attrEl); rdom != nil {
				for _, f := range rangeLabels {
					setIfPresent(attr, f.canonical, rdom.Child(f.label))
				}
			}
			entity.AppendChild(record.AttributesField, attr)
		}

		entities = append(entities, entity)
	}

	return entities, nil
}

// Write implements Handler. Entities and attributes are upserted through
// the path materializer; scalar fields land on existing elements where
// present, created ones otherwise.
func (h *CSDGMHandler) Write(root *xmltree.Element, entities []*record.Record) error {
	for _, entity := range entities {
		name, _ := h.aliases.Get(entity, alias.EntityName)

		path, err := xmltree.Materialize(root, entityContainerPath, entityNamePath, name)
		if err != nil {
			return err
		}
		detailed := path[len(path)-1]

		if def, ok := h.aliases.Get(entity, alias.EntityDefinition); ok {
			enttyp := detailed.FindOrCreateChild("enttyp")
			enttyp.FindOrCreateChild("enttypd").Text = def
		}

		for _, attr := range entity.ChildList(record.AttributesField) {
			if err := h.writeAttribute(detailed, attr); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *CSDGMHandler) writeAttribute(detailed *xmltree.Element, attr *record.Record) error {
	name, _ := h.aliases.Get(attr, alias.AttributeName)

	path, err := xmltree.Materialize(detailed, attrContainerPath, attrNamePath, name)
	if err != nil {
		return err
	}
	attrEl := path[len(path)-1]

	for _, f := range attrScalarLabels {
		if v, ok := h.aliases.Get(attr, f.canonical); ok {
			attrEl.FindOrCreateChild(f.label).Text = v
		}
	}

	if hasRangeField(h.aliases, attr) {
		rdom := attrEl.FindOrCreateChild("attrdomv").FindOrCreateChild("rdom")
		for _, f := range rangeLabels {
			if v, ok := h.aliases.Get(attr, f.canonical); ok {
				rdom.FindOrCreateChild(f.label).Text = v
			}
		}
	}

	return nil
}

// findRange returns the rdom element under an attr's domain values, or nil.
func findRange(attrEl *xmltree.Element) *xmltree.Element {
	if domv := attrEl.Child("attrdomv"); domv != nil {
		return domv.Child("rdom")
	}
	return nil
}

func hasRangeField(aliases *alias.Table, attr *record.Record) bool {
	for _, f := range rangeLabels {
		if _, ok := aliases.Get(attr, f.canonical); ok {
			return true
		}
	}
	return false
}

func setIfPresent(rec *record.Record, field string, el *xmltree.Element) {
	if el != nil && el.Text != "" {
		rec.Set(field, el.Text)
	}
}

// ArcGISHandler handles the ArcGIS flavor of <metadata> documents. ArcGIS
// embeds an <Esri> housekeeping section but keeps the CSDGM entity-section
// layout, so parsing and writing delegate to the CSDGM handler.
type ArcGISHandler struct {
	CSDGMHandler
}

// NewArcGISHandler creates an ArcGIS dialect handler.
func NewArcGISHandler() *ArcGISHandler {
	return &ArcGISHandler{CSDGMHandler{aliases: alias.Default()}}
}

// Name implements Handler.
func (h *ArcGISHandler) Name() string { return "arcgis" }

// Detect implements Handler. The <Esri> marker element distinguishes
// ArcGIS exports from plain CSDGM.
func (h *ArcGISHandler) Detect(root *xmltree.Element) bool {
	return root != nil && root.Label == "metadata" && len(root.FindAll("Esri")) > 0
}

// Compile-time interface checks
var (
	_ Handler = (*CSDGMHandler)(nil)
	_ Handler = (*ArcGISHandler)(nil)
)
