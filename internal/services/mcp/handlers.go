package mcp

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/funnelsmith/funnelsmith/internal/editor"
	"github.com/funnelsmith/funnelsmith/internal/funnel"
	"github.com/funnelsmith/funnelsmith/internal/render"
	"github.com/funnelsmith/funnelsmith/internal/services/editor/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// FunnelOverviewHandler summarizes the live funnel.
func FunnelOverviewHandler(store *editor.Store) mcp.ToolHandlerFor[FunnelOverviewInput, FunnelOverviewResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ FunnelOverviewInput) (*mcp.CallToolResult, FunnelOverviewResult, error) {
		g := store.Graph()
		result := FunnelOverviewResult{
			Pages:            pageSummaries(g),
			Templates:        sortedKeys(g.Templates),
			Events:           sortedKeys(g.EventRouting),
			SplitTestEnabled: g.SplitTest != nil && g.SplitTest.Enabled,
			CanUndo:          store.CanUndo(),
			CanRedo:          store.CanRedo(),
		}
		return nil, result, nil
	}
}

// FunnelValidateHandler runs the consistency checks.
func FunnelValidateHandler(store *editor.Store) mcp.ToolHandlerFor[FunnelValidateInput, FunnelValidateResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ FunnelValidateInput) (*mcp.CallToolResult, FunnelValidateResult, error) {
		issues := store.Validate()
		result := FunnelValidateResult{
			Valid:  !funnel.HasErrors(issues),
			Issues: make([]ValidationIssue, 0, len(issues)),
		}
		for _, issue := range issues {
			result.Issues = append(result.Issues, ValidationIssue{
				Severity: string(issue.Severity),
				Field:    issue.Field,
				Message:  issue.Message,
				PageID:   issue.PageID,
			})
		}
		return nil, result, nil
	}
}

// PageAddHandler creates a page at the end of the funnel.
func PageAddHandler(store *editor.Store) mcp.ToolHandlerFor[PageAddInput, PageAddResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input PageAddInput) (*mcp.CallToolResult, PageAddResult, error) {
		id, g, stats, err := store.AddPage(input.ID, funnel.Page{
			Name:     input.Name,
			Template: input.Template,
			Data:     input.Data,
		})
		if err != nil {
			return nil, PageAddResult{}, fmt.Errorf("page add failed: %w", err)
		}
		page, _ := g.Page(id)
		return nil, PageAddResult{
			ID:                id,
			Path:              page.Path,
			FunnelStateResult: stateResult(store, g, &stats),
		}, nil
	}
}

// PageUpdateHandler applies a partial page update.
func PageUpdateHandler(store *editor.Store) mcp.ToolHandlerFor[PageUpdateInput, FunnelStateResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input PageUpdateInput) (*mcp.CallToolResult, FunnelStateResult, error) {
		pageID := strings.TrimSpace(input.PageID)
		if pageID == "" {
			return nil, FunnelStateResult{}, fmt.Errorf("page_id is required")
		}
		page, ok := store.Graph().Page(pageID)
		if !ok {
			return nil, FunnelStateResult{}, fmt.Errorf("page %q not found", pageID)
		}
		if input.Name != "" {
			page.Name = input.Name
		}
		if input.Template != "" {
			page.Template = input.Template
		}
		if input.Data != nil {
			page.Data = input.Data
		}
		if input.TrackingEvents != nil {
			page.TrackingEvents = input.TrackingEvents
		}
		g, stats, err := store.SetPage(pageID, page)
		if err != nil {
			return nil, FunnelStateResult{}, fmt.Errorf("page update failed: %w", err)
		}
		return nil, stateResult(store, g, &stats), nil
	}
}

// PageDuplicateHandler copies a page directly after its source.
func PageDuplicateHandler(store *editor.Store) mcp.ToolHandlerFor[PageDuplicateInput, PageAddResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input PageDuplicateInput) (*mcp.CallToolResult, PageAddResult, error) {
		id, g, stats, err := store.DuplicatePage(strings.TrimSpace(input.PageID))
		if err != nil {
			return nil, PageAddResult{}, fmt.Errorf("page duplicate failed: %w", err)
		}
		page, _ := g.Page(id)
		return nil, PageAddResult{
			ID:                id,
			Path:              page.Path,
			FunnelStateResult: stateResult(store, g, &stats),
		}, nil
	}
}

// PageDeleteHandler removes a page.
func PageDeleteHandler(store *editor.Store) mcp.ToolHandlerFor[PageDeleteInput, FunnelStateResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input PageDeleteInput) (*mcp.CallToolResult, FunnelStateResult, error) {
		g, stats, err := store.DeletePage(strings.TrimSpace(input.PageID))
		if err != nil {
			return nil, FunnelStateResult{}, fmt.Errorf("page delete failed: %w", err)
		}
		return nil, stateResult(store, g, &stats), nil
	}
}

// PagesReorderHandler rearranges the funnel.
func PagesReorderHandler(store *editor.Store) mcp.ToolHandlerFor[PagesReorderInput, FunnelStateResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input PagesReorderInput) (*mcp.CallToolResult, FunnelStateResult, error) {
		g, stats, err := store.ReorderPages(input.Order)
		if err != nil {
			return nil, FunnelStateResult{}, fmt.Errorf("pages reorder failed: %w", err)
		}
		return nil, stateResult(store, g, &stats), nil
	}
}

// RoutingSetHandler sets or clears one event-routing entry.
func RoutingSetHandler(store *editor.Store) mcp.ToolHandlerFor[RoutingSetInput, RoutingSetResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input RoutingSetInput) (*mcp.CallToolResult, RoutingSetResult, error) {
		event := strings.TrimSpace(input.Event)
		if event == "" {
			return nil, RoutingSetResult{}, fmt.Errorf("event is required")
		}
		var entry *funnel.RoutingEntry
		if !input.Clear {
			entry = &funnel.RoutingEntry{AnswerKey: input.AnswerKey}
			if input.To != "" {
				entry.Route = &funnel.Route{To: input.To}
			}
			if input.ProductID != "" {
				entry.Checkout = &funnel.Checkout{ProductID: input.ProductID, SuccessTo: input.SuccessTo}
			}
		}
		g, err := store.SetEventRouting(map[string]*funnel.RoutingEntry{event: entry})
		if err != nil {
			return nil, RoutingSetResult{}, fmt.Errorf("routing set failed: %w", err)
		}
		return nil, RoutingSetResult{Events: sortedKeys(g.EventRouting)}, nil
	}
}

// UndoHandler reverts the most recent mutation.
func UndoHandler(store *editor.Store) mcp.ToolHandlerFor[UndoInput, FunnelStateResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ UndoInput) (*mcp.CallToolResult, FunnelStateResult, error) {
		g := store.Undo()
		return nil, stateResult(store, g, nil), nil
	}
}

// RedoHandler re-applies the most recently undone mutation.
func RedoHandler(store *editor.Store) mcp.ToolHandlerFor[RedoInput, FunnelStateResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ RedoInput) (*mcp.CallToolResult, FunnelStateResult, error) {
		g := store.Redo()
		return nil, stateResult(store, g, nil), nil
	}
}

// PagePreviewHandler renders a page to HTML.
func PagePreviewHandler(store *editor.Store, engine *render.Engine) mcp.ToolHandlerFor[PagePreviewInput, PagePreviewResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input PagePreviewInput) (*mcp.CallToolResult, PagePreviewResult, error) {
		pageID := strings.TrimSpace(input.PageID)
		g := store.Graph()
		if _, ok := g.Page(pageID); !ok {
			if byPath, _, found := funnel.PageByPath(g.Pages, pageID); found {
				pageID = byPath
			} else {
				return nil, PagePreviewResult{}, fmt.Errorf("page %q not found", input.PageID)
			}
		}
		component := engine.RenderDocument(g, pageID)
		if input.Fragment {
			component = engine.RenderPage(g, pageID)
		}
		var html strings.Builder
		if err := component.Render(ctx, &html); err != nil {
			return nil, PagePreviewResult{}, fmt.Errorf("render page %q: %w", pageID, err)
		}
		return nil, PagePreviewResult{PageID: pageID, HTML: html.String()}, nil
	}
}

// FunnelSaveHandler persists the live funnel as a document revision.
func FunnelSaveHandler(store *editor.Store, documents storage.DocumentStore, defaultSlug string, keep int) mcp.ToolHandlerFor[FunnelSaveInput, FunnelSaveResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input FunnelSaveInput) (*mcp.CallToolResult, FunnelSaveResult, error) {
		if documents == nil {
			return nil, FunnelSaveResult{}, fmt.Errorf("document storage is not configured")
		}
		slug := strings.TrimSpace(input.Slug)
		if slug == "" {
			slug = strings.TrimSpace(defaultSlug)
		}
		if slug == "" {
			return nil, FunnelSaveResult{}, fmt.Errorf("slug is required")
		}

		body, _, err := store.ExportDocument()
		if err != nil {
			return nil, FunnelSaveResult{}, fmt.Errorf("export document: %w", err)
		}

		name := strings.TrimSpace(input.Name)
		existing, err := documents.GetDocument(ctx, slug)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			if name == "" {
				name = slug
			}
			if err := documents.CreateDocument(ctx, storage.Document{Slug: slug, Name: name, Body: body}); err != nil {
				return nil, FunnelSaveResult{}, fmt.Errorf("create document: %w", err)
			}
		case err != nil:
			return nil, FunnelSaveResult{}, fmt.Errorf("get document: %w", err)
		default:
			if name == "" {
				name = existing.Name
			}
			if err := documents.UpdateDocument(ctx, storage.Document{Slug: slug, Name: name, Body: body}); err != nil {
				return nil, FunnelSaveResult{}, fmt.Errorf("update document: %w", err)
			}
		}

		revision, err := documents.AddRevision(ctx, storage.Revision{Slug: slug, Note: "save", Body: body}, keep)
		if err != nil {
			return nil, FunnelSaveResult{}, fmt.Errorf("record revision: %w", err)
		}
		return nil, FunnelSaveResult{Slug: slug, Revision: revision.Seq, Bytes: len(body)}, nil
	}
}

func stateResult(store *editor.Store, g *funnel.Graph, stats *funnel.MigrationStats) FunnelStateResult {
	result := FunnelStateResult{
		Pages:   pageSummaries(g),
		CanUndo: store.CanUndo(),
		CanRedo: store.CanRedo(),
	}
	if stats != nil {
		result.Migration = &MigrationSummary{Sequential: stats.Sequential, Custom: stats.Custom}
	}
	return result
}

func pageSummaries(g *funnel.Graph) []PageSummary {
	summaries := make([]PageSummary, 0, g.Pages.Len())
	for pair := g.Pages.Oldest(); pair != nil; pair = pair.Next() {
		summaries = append(summaries, PageSummary{
			ID:       pair.Key,
			Name:     pair.Value.Name,
			Path:     pair.Value.Path,
			Template: pair.Value.Template,
		})
	}
	return summaries
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
