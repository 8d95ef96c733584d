package funnel

import (
	"encoding/json"

	"github.com/tidwall/gjson"

	apperrors "github.com/funnelsmith/funnelsmith/internal/platform/errors"
)

// requiredSections are the top-level document sections an import must carry.
var requiredSections = []string{"pages", "theme", "templates"}

// ImportDocument parses a persisted funnel document into a Graph. Documents
// missing a required top-level section are rejected before parsing; missing
// theme sub-sections and a missing layout are backfilled with defaults
// instead of failing. Paths are imported as persisted; Validate reports any
// inconsistency rather than the import silently reindexing.
func ImportDocument(data []byte) (*Graph, error) {
	if !gjson.ValidBytes(data) {
		return nil, apperrors.New(apperrors.CodeDocumentMalformed, "document is not valid JSON")
	}
	for _, section := range requiredSections {
		if !gjson.GetBytes(data, section).Exists() {
			return nil, apperrors.WithMetadata(
				apperrors.CodeDocumentMissingSection,
				"document is missing a required section",
				map[string]string{"section": section},
			)
		}
	}

	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDocumentMalformed, "parse document", err)
	}
	if g.Pages == nil {
		g.Pages = NewPages()
	}
	backfillDefaults(&g)
	return &g, nil
}

// ExportDocument serializes the graph to its persisted JSON form and runs a
// final validation pass. Issues never abort the export; the caller decides
// whether to warn or refuse.
func ExportDocument(g *Graph) ([]byte, []Issue, error) {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.CodeDocumentMalformed, "serialize document", err)
	}
	return data, Validate(g), nil
}

// backfillDefaults fills the optional corners a hand-edited document tends
// to drop: theme sub-sections, the layout, and reserved layout templates.
func backfillDefaults(g *Graph) {
	if g.Theme.Colors.IsZero() {
		g.Theme.Colors = DefaultTheme().Colors
	}
	if g.Theme.Fonts.IsZero() {
		g.Theme.Fonts = DefaultTheme().Fonts
	}
	if g.Theme.Buttons.IsZero() {
		g.Theme.Buttons = DefaultTheme().Buttons
	}
	if g.Layout.Header == "" && g.Layout.Footer == "" && g.Layout.Data == nil {
		g.Layout = DefaultLayout()
	}
	if g.Templates == nil {
		g.Templates = map[string]Node{}
	}
	for _, name := range []string{HeaderTemplateName, FooterTemplateName} {
		if _, ok := g.Templates[name]; !ok {
			g.Templates[name] = builtinTemplates()[name]
		}
	}
}
