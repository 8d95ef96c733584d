package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// PageSummary describes one page of the funnel in collection order.
type PageSummary struct {
	ID       string `json:"id" jsonschema:"page identifier"`
	Name     string `json:"name" jsonschema:"page name"`
	Path     string `json:"path" jsonschema:"1-based position path"`
	Template string `json:"template" jsonschema:"template the page renders"`
}

// MigrationSummary counts route rewrites a structural mutation caused.
type MigrationSummary struct {
	Sequential int `json:"sequential" jsonschema:"routes that kept pointing at the next page in sequence"`
	Custom     int `json:"custom" jsonschema:"routes that followed their target page's identity"`
}

// FunnelStateResult is the shared mutation output: the funnel shape after the
// edit plus history availability.
type FunnelStateResult struct {
	Pages     []PageSummary     `json:"pages" jsonschema:"pages in funnel order"`
	Migration *MigrationSummary `json:"migration,omitempty" jsonschema:"route rewrites caused by the mutation"`
	CanUndo   bool              `json:"can_undo" jsonschema:"whether an undo step is available"`
	CanRedo   bool              `json:"can_redo" jsonschema:"whether a redo step is available"`
}

// FunnelOverviewInput has no parameters.
type FunnelOverviewInput struct{}

// FunnelOverviewResult summarizes the live funnel.
type FunnelOverviewResult struct {
	Pages            []PageSummary `json:"pages" jsonschema:"pages in funnel order"`
	Templates        []string      `json:"templates" jsonschema:"template names available to pages"`
	Events           []string      `json:"events" jsonschema:"routed event names"`
	SplitTestEnabled bool          `json:"split_test_enabled" jsonschema:"whether a split test gates funnel entry"`
	CanUndo          bool          `json:"can_undo" jsonschema:"whether an undo step is available"`
	CanRedo          bool          `json:"can_redo" jsonschema:"whether a redo step is available"`
}

// FunnelValidateInput has no parameters.
type FunnelValidateInput struct{}

// ValidationIssue is one consistency finding.
type ValidationIssue struct {
	Severity string `json:"severity" jsonschema:"error or warning"`
	Field    string `json:"field" jsonschema:"event name, template name, or data key the finding concerns"`
	Message  string `json:"message" jsonschema:"human-readable description"`
	PageID   string `json:"page_id,omitempty" jsonschema:"page the finding concerns, when page-scoped"`
}

// FunnelValidateResult reports funnel consistency.
type FunnelValidateResult struct {
	Valid  bool              `json:"valid" jsonschema:"true when no error-severity issues exist"`
	Issues []ValidationIssue `json:"issues" jsonschema:"all findings, errors and warnings"`
}

// PageAddInput creates a page at the end of the funnel.
type PageAddInput struct {
	ID       string         `json:"id,omitempty" jsonschema:"explicit page identifier (generated when empty)"`
	Name     string         `json:"name" jsonschema:"page name"`
	Template string         `json:"template" jsonschema:"template the page renders"`
	Data     map[string]any `json:"data,omitempty" jsonschema:"page data dictionary bound into the template"`
}

// PageAddResult reports the created page and resulting funnel shape.
type PageAddResult struct {
	ID   string `json:"id" jsonschema:"identifier of the created page"`
	Path string `json:"path" jsonschema:"1-based position path of the created page"`
	FunnelStateResult
}

// PageUpdateInput partially updates a page. Empty fields keep their current
// values; a non-nil data map replaces the page's data wholesale.
type PageUpdateInput struct {
	PageID         string         `json:"page_id" jsonschema:"page to update"`
	Name           string         `json:"name,omitempty" jsonschema:"new page name (kept when empty)"`
	Template       string         `json:"template,omitempty" jsonschema:"new template (kept when empty)"`
	Data           map[string]any `json:"data,omitempty" jsonschema:"replacement data dictionary (kept when omitted)"`
	TrackingEvents []string       `json:"tracking_events,omitempty" jsonschema:"replacement tracking event list (kept when omitted)"`
}

// PageDuplicateInput copies a page.
type PageDuplicateInput struct {
	PageID string `json:"page_id" jsonschema:"page to duplicate"`
}

// PageDeleteInput removes a page.
type PageDeleteInput struct {
	PageID string `json:"page_id" jsonschema:"page to delete"`
}

// PagesReorderInput rearranges the funnel.
type PagesReorderInput struct {
	Order []string `json:"order" jsonschema:"every current page id exactly once, in the new order"`
}

// RoutingSetInput sets or clears one event-routing entry.
type RoutingSetInput struct {
	Event     string `json:"event" jsonschema:"event name the entry reacts to"`
	To        string `json:"to,omitempty" jsonschema:"target page path the event navigates to"`
	AnswerKey string `json:"answer_key,omitempty" jsonschema:"data-capture field the event stores its answer under"`
	ProductID string `json:"product_id,omitempty" jsonschema:"product the event opens a checkout for"`
	SuccessTo string `json:"success_to,omitempty" jsonschema:"target page path after a successful checkout"`
	Clear     bool   `json:"clear,omitempty" jsonschema:"remove the entry instead of setting it"`
}

// RoutingSetResult reports the routed events after the change.
type RoutingSetResult struct {
	Events []string `json:"events" jsonschema:"routed event names after the change"`
}

// UndoInput has no parameters.
type UndoInput struct{}

// RedoInput has no parameters.
type RedoInput struct{}

// PagePreviewInput renders a page.
type PagePreviewInput struct {
	PageID string `json:"page_id" jsonschema:"page to render"`
	// Fragment skips the layout header and footer.
	Fragment bool `json:"fragment,omitempty" jsonschema:"render the page template alone, without layout chrome"`
}

// PagePreviewResult carries rendered HTML.
type PagePreviewResult struct {
	PageID string `json:"page_id" jsonschema:"rendered page identifier"`
	HTML   string `json:"html" jsonschema:"rendered HTML"`
}

// FunnelSaveInput persists the live funnel as a document revision.
type FunnelSaveInput struct {
	Slug string `json:"slug,omitempty" jsonschema:"document slug to save under (defaults to the configured slug)"`
	Name string `json:"name,omitempty" jsonschema:"document display name (defaults to the slug on first save)"`
}

// FunnelSaveResult reports the stored document.
type FunnelSaveResult struct {
	Slug     string `json:"slug" jsonschema:"document slug"`
	Revision int64  `json:"revision" jsonschema:"revision sequence number recorded by the save"`
	Bytes    int    `json:"bytes" jsonschema:"stored document size"`
}

// FunnelOverviewTool defines the MCP tool schema for inspecting the funnel.
func FunnelOverviewTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "funnel_overview",
		Description: "Summarize the funnel being edited: pages in order, available templates, routed events, and history state",
	}
}

// FunnelValidateTool defines the MCP tool schema for consistency checks.
func FunnelValidateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "funnel_validate",
		Description: "Check the funnel for broken references: dangling route targets, missing templates, unresolved data bindings",
	}
}

// PageAddTool defines the MCP tool schema for creating pages.
func PageAddTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "page_add",
		Description: "Add a page to the end of the funnel; paths are reassigned and routes migrated automatically",
	}
}

// PageUpdateTool defines the MCP tool schema for editing pages.
func PageUpdateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "page_update",
		Description: "Update a page's name, template, data, or tracking events; omitted fields keep their current values",
	}
}

// PageDuplicateTool defines the MCP tool schema for copying pages.
func PageDuplicateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "page_duplicate",
		Description: "Duplicate a page directly after its source, with a fresh id and ' copy' appended to the name",
	}
}

// PageDeleteTool defines the MCP tool schema for removing pages.
func PageDeleteTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "page_delete",
		Description: "Delete a page; remaining pages are repositioned and routes pointing at moved pages are migrated",
	}
}

// PagesReorderTool defines the MCP tool schema for rearranging pages.
func PagesReorderTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "pages_reorder",
		Description: "Reorder the funnel's pages; the order must list every current page id exactly once",
	}
}

// RoutingSetTool defines the MCP tool schema for event routing changes.
func RoutingSetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "routing_set",
		Description: "Set or clear what happens when a named event fires: navigation target, answer capture, checkout",
	}
}

// UndoTool defines the MCP tool schema for undo.
func UndoTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "undo",
		Description: "Undo the most recent funnel mutation",
	}
}

// RedoTool defines the MCP tool schema for redo.
func RedoTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "redo",
		Description: "Re-apply the most recently undone funnel mutation",
	}
}

// PagePreviewTool defines the MCP tool schema for rendering pages.
func PagePreviewTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "page_preview",
		Description: "Render a page to HTML, either inside the funnel's layout or as a bare fragment",
	}
}

// FunnelSaveTool defines the MCP tool schema for persisting the funnel.
func FunnelSaveTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "funnel_save",
		Description: "Save the funnel being edited as a document revision in storage",
	}
}
