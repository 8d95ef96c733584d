package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/funnelsmith/funnelsmith/internal/editor"
	"github.com/funnelsmith/funnelsmith/internal/funnel"
	apperrors "github.com/funnelsmith/funnelsmith/internal/platform/errors"
	"github.com/funnelsmith/funnelsmith/internal/services/editor/storage"
)

// newTestHandler builds a handler over the starter funnel with deterministic
// page ids and split-test rolls.
func newTestHandler(t *testing.T, documents storage.DocumentStore) (*Handler, http.Handler) {
	t.Helper()
	ids := 0
	store := editor.NewStore(nil, func() (string, error) {
		ids++
		return fmt.Sprintf("page-%02d", ids), nil
	})
	h, err := NewHandler(HandlerConfig{
		Store:     store,
		Documents: documents,
		Roll:      func(int) int { return 0 },
	})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return h, h.Routes()
}

func doJSON(t *testing.T, routes http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	rr := httptest.NewRecorder()
	routes.ServeHTTP(rr, req)
	return rr
}

func decodeState(t *testing.T, rr *httptest.ResponseRecorder) funnelState {
	t.Helper()
	var state funnelState
	if err := json.Unmarshal(rr.Body.Bytes(), &state); err != nil {
		t.Fatalf("decode state response: %v", err)
	}
	return state
}

func responseErrorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return body.Error.Code
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	_, routes := newTestHandler(t, nil)
	rr := doJSON(t, routes, http.MethodGet, "/healthz", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestFunnelGetReturnsDocument(t *testing.T) {
	t.Parallel()

	_, routes := newTestHandler(t, nil)
	rr := doJSON(t, routes, http.MethodGet, "/api/funnel", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("content type = %q", ct)
	}

	var doc struct {
		Pages     json.RawMessage `json:"pages"`
		Templates json.RawMessage `json:"templates"`
		Theme     json.RawMessage `json:"theme"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode document: %v", err)
	}
	if len(doc.Pages) == 0 || len(doc.Templates) == 0 || len(doc.Theme) == 0 {
		t.Fatal("expected pages, templates, and theme sections")
	}
}

func TestFunnelExportSetsAttachment(t *testing.T) {
	t.Parallel()

	_, routes := newTestHandler(t, nil)
	rr := doJSON(t, routes, http.MethodGet, "/api/funnel/export", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if got := rr.Header().Get("Content-Disposition"); !strings.Contains(got, "attachment") {
		t.Fatalf("content disposition = %q", got)
	}
}

func TestFunnelImportReplacesSession(t *testing.T) {
	t.Parallel()

	g := funnel.DefaultGraph()
	for _, key := range funnel.PageKeys(g.Pages)[1:] {
		g.Pages.Delete(key)
	}
	doc, _, err := funnel.ExportDocument(g)
	if err != nil {
		t.Fatalf("export fixture: %v", err)
	}

	_, routes := newTestHandler(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/funnel/import", bytes.NewReader(doc))
	rr := httptest.NewRecorder()
	routes.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rr.Code, http.StatusOK, rr.Body)
	}
	state := decodeState(t, rr)
	if len(state.Pages) != 1 {
		t.Fatalf("pages after import = %d, want 1", len(state.Pages))
	}
	if !state.CanUndo {
		t.Fatal("expected import to be undoable")
	}
}

func TestFunnelImportRejectsMalformed(t *testing.T) {
	t.Parallel()

	_, routes := newTestHandler(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/funnel/import", strings.NewReader("{broken"))
	rr := httptest.NewRecorder()
	routes.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
	if got := responseErrorCode(t, rr); got != string(apperrors.CodeDocumentMalformed) {
		t.Fatalf("code = %q, want %q", got, apperrors.CodeDocumentMalformed)
	}
}

func TestFunnelImportRejectsMissingSection(t *testing.T) {
	t.Parallel()

	_, routes := newTestHandler(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/funnel/import", strings.NewReader(`{"pages":{}}`))
	rr := httptest.NewRecorder()
	routes.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
	if got := responseErrorCode(t, rr); got != string(apperrors.CodeDocumentMissingSection) {
		t.Fatalf("code = %q, want %q", got, apperrors.CodeDocumentMissingSection)
	}
}

func TestPageCreateAssignsIDAndPath(t *testing.T) {
	t.Parallel()

	_, routes := newTestHandler(t, nil)
	rr := doJSON(t, routes, http.MethodPost, "/api/pages", map[string]any{
		"name":     "Upsell",
		"template": "sales",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rr.Code, http.StatusCreated, rr.Body)
	}
	var resp pageCreatedResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID != "page-01" {
		t.Fatalf("id = %q, want %q", resp.ID, "page-01")
	}
	if len(resp.Pages) != 4 {
		t.Fatalf("pages = %d, want 4", len(resp.Pages))
	}
	last := resp.Pages[len(resp.Pages)-1]
	if last.ID != "page-01" || last.Path != "4" {
		t.Fatalf("appended page = %+v, want id page-01 at path 4", last)
	}
	if resp.Migration == nil {
		t.Fatal("expected migration stats in response")
	}
}

func TestPageCreateRejectsDuplicateID(t *testing.T) {
	t.Parallel()

	_, routes := newTestHandler(t, nil)
	rr := doJSON(t, routes, http.MethodPost, "/api/pages", map[string]any{
		"id":       "landing",
		"name":     "Another landing",
		"template": "optin",
	})
	if rr.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusConflict)
	}
	if got := responseErrorCode(t, rr); got != string(apperrors.CodePageAlreadyExists) {
		t.Fatalf("code = %q, want %q", got, apperrors.CodePageAlreadyExists)
	}
}

func TestPageCreateRequiresName(t *testing.T) {
	t.Parallel()

	_, routes := newTestHandler(t, nil)
	rr := doJSON(t, routes, http.MethodPost, "/api/pages", map[string]any{
		"template": "sales",
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
	if got := responseErrorCode(t, rr); got != string(apperrors.CodePageNameEmpty) {
		t.Fatalf("code = %q, want %q", got, apperrors.CodePageNameEmpty)
	}
}

func TestPageUpdateUnknownPage(t *testing.T) {
	t.Parallel()

	_, routes := newTestHandler(t, nil)
	rr := doJSON(t, routes, http.MethodPut, "/api/pages/ghost", map[string]any{
		"name":     "Ghost",
		"template": "sales",
	})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestPageDeleteMigratesRoutes(t *testing.T) {
	t.Parallel()

	_, routes := newTestHandler(t, nil)
	rr := doJSON(t, routes, http.MethodDelete, "/api/pages/landing", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rr.Code, http.StatusOK, rr.Body)
	}
	state := decodeState(t, rr)
	if len(state.Pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(state.Pages))
	}
	if state.Pages[0].ID != "offer" || state.Pages[0].Path != "1" {
		t.Fatalf("first page = %+v, want offer at path 1", state.Pages[0])
	}
	// workbook_checkout pointed at the owner's successor and follows it;
	// optin_submitted lost its owner, so its target follows page identity.
	if state.Migration == nil || state.Migration.Sequential != 1 || state.Migration.Custom != 1 {
		t.Fatalf("migration = %+v, want sequential 1 custom 1", state.Migration)
	}

	doc := doJSON(t, routes, http.MethodGet, "/api/funnel", nil)
	var exported struct {
		EventRouting map[string]funnel.RoutingEntry `json:"eventRouting"`
	}
	if err := json.Unmarshal(doc.Body.Bytes(), &exported); err != nil {
		t.Fatalf("decode exported document: %v", err)
	}
	if got := exported.EventRouting["workbook_checkout"].Route.To; got != "2" {
		t.Fatalf("workbook_checkout target = %q, want %q", got, "2")
	}
	if got := exported.EventRouting["optin_submitted"].Route.To; got != "1" {
		t.Fatalf("optin_submitted target = %q, want %q", got, "1")
	}
}

func TestPageDeleteLastRemaining(t *testing.T) {
	t.Parallel()

	_, routes := newTestHandler(t, nil)
	for _, id := range []string{"landing", "offer"} {
		if rr := doJSON(t, routes, http.MethodDelete, "/api/pages/"+id, nil); rr.Code != http.StatusOK {
			t.Fatalf("delete %s: status = %d", id, rr.Code)
		}
	}
	rr := doJSON(t, routes, http.MethodDelete, "/api/pages/thanks", nil)
	if rr.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusConflict)
	}
	if got := responseErrorCode(t, rr); got != string(apperrors.CodePageLastRemaining) {
		t.Fatalf("code = %q, want %q", got, apperrors.CodePageLastRemaining)
	}
}

func TestPageDuplicateAppendsCopy(t *testing.T) {
	t.Parallel()

	_, routes := newTestHandler(t, nil)
	rr := doJSON(t, routes, http.MethodPost, "/api/pages/offer/duplicate", nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rr.Code, http.StatusCreated, rr.Body)
	}
	var resp pageCreatedResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Pages) != 4 {
		t.Fatalf("pages = %d, want 4", len(resp.Pages))
	}
	// The copy lands right after its source.
	if resp.Pages[2].ID != resp.ID {
		t.Fatalf("copy position = %+v, want id %q at index 2", resp.Pages[2], resp.ID)
	}
	if resp.Pages[2].Name != "Offer copy" {
		t.Fatalf("copy name = %q, want %q", resp.Pages[2].Name, "Offer copy")
	}
}

func TestPagesReorderRejectsBadPermutation(t *testing.T) {
	t.Parallel()

	_, routes := newTestHandler(t, nil)
	rr := doJSON(t, routes, http.MethodPost, "/api/pages/reorder", map[string]any{
		"order": []string{"landing", "landing", "thanks"},
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
	if got := responseErrorCode(t, rr); got != string(apperrors.CodeReorderInvalidPermutation) {
		t.Fatalf("code = %q, want %q", got, apperrors.CodeReorderInvalidPermutation)
	}
}

func TestPagesReorderMigratesSequentialRoutes(t *testing.T) {
	t.Parallel()

	_, routes := newTestHandler(t, nil)
	rr := doJSON(t, routes, http.MethodPost, "/api/pages/reorder", map[string]any{
		"order": []string{"offer", "landing", "thanks"},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rr.Code, http.StatusOK, rr.Body)
	}
	state := decodeState(t, rr)
	if state.Migration == nil || state.Migration.Sequential != 2 {
		t.Fatalf("migration = %+v, want 2 sequential rewrites", state.Migration)
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	t.Parallel()

	h, routes := newTestHandler(t, nil)
	before, _, err := h.store.ExportDocument()
	if err != nil {
		t.Fatalf("export baseline: %v", err)
	}

	if rr := doJSON(t, routes, http.MethodPost, "/api/pages", map[string]any{"name": "Upsell", "template": "sales"}); rr.Code != http.StatusCreated {
		t.Fatalf("create page: status = %d", rr.Code)
	}

	undo := doJSON(t, routes, http.MethodPost, "/api/undo", nil)
	if undo.Code != http.StatusOK {
		t.Fatalf("undo status = %d", undo.Code)
	}
	after, _, err := h.store.ExportDocument()
	if err != nil {
		t.Fatalf("export after undo: %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Fatal("undo did not restore the exact document")
	}

	redo := doJSON(t, routes, http.MethodPost, "/api/redo", nil)
	state := decodeState(t, redo)
	if len(state.Pages) != 4 {
		t.Fatalf("pages after redo = %d, want 4", len(state.Pages))
	}
}

func TestValidateReportsDanglingRoute(t *testing.T) {
	t.Parallel()

	_, routes := newTestHandler(t, nil)
	patch := doJSON(t, routes, http.MethodPatch, "/api/routing", map[string]any{
		"optin_submitted": map[string]any{"route": map[string]any{"to": "99"}},
	})
	if patch.Code != http.StatusOK {
		t.Fatalf("patch routing: status = %d: %s", patch.Code, patch.Body)
	}

	rr := doJSON(t, routes, http.MethodGet, "/api/validate", nil)
	var report struct {
		Valid  bool           `json:"valid"`
		Issues []funnel.Issue `json:"issues"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode validation report: %v", err)
	}
	if report.Valid {
		t.Fatal("expected dangling route to invalidate the funnel")
	}
	found := 0
	for _, issue := range report.Issues {
		if issue.Severity == funnel.SeverityError && issue.Field == "optin_submitted" {
			found++
		}
	}
	if found != 1 {
		t.Fatalf("dangling route issues = %d, want exactly 1", found)
	}
}

func TestTemplatesPutAddsTemplate(t *testing.T) {
	t.Parallel()

	_, routes := newTestHandler(t, nil)
	rr := doJSON(t, routes, http.MethodPut, "/api/templates", map[string]any{
		"promo": map[string]any{"kind": "section", "children": []any{}},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rr.Code, http.StatusOK, rr.Body)
	}
	state := decodeState(t, rr)
	for _, name := range state.Templates {
		if name == "promo" {
			return
		}
	}
	t.Fatalf("templates = %v, want to include promo", state.Templates)
}

func TestTemplateDeleteGuards(t *testing.T) {
	t.Parallel()

	_, routes := newTestHandler(t, nil)

	inUse := doJSON(t, routes, http.MethodDelete, "/api/templates/optin", nil)
	if got := responseErrorCode(t, inUse); inUse.Code != http.StatusConflict || got != string(apperrors.CodeTemplateInUse) {
		t.Fatalf("in-use delete = %d %q", inUse.Code, got)
	}

	reserved := doJSON(t, routes, http.MethodDelete, "/api/templates/header", nil)
	if got := responseErrorCode(t, reserved); reserved.Code != http.StatusConflict || got != string(apperrors.CodeTemplateReserved) {
		t.Fatalf("reserved delete = %d %q", reserved.Code, got)
	}

	missing := doJSON(t, routes, http.MethodDelete, "/api/templates/ghost", nil)
	if missing.Code != http.StatusNotFound {
		t.Fatalf("missing delete = %d, want %d", missing.Code, http.StatusNotFound)
	}
}

func TestThemePatchUpdatesDocument(t *testing.T) {
	t.Parallel()

	_, routes := newTestHandler(t, nil)
	theme := funnel.DefaultTheme()
	theme.Colors.Primary = "#123456"
	if rr := doJSON(t, routes, http.MethodPatch, "/api/theme", theme); rr.Code != http.StatusOK {
		t.Fatalf("patch theme: status = %d", rr.Code)
	}

	doc := doJSON(t, routes, http.MethodGet, "/api/funnel", nil)
	var exported struct {
		Theme funnel.Theme `json:"theme"`
	}
	if err := json.Unmarshal(doc.Body.Bytes(), &exported); err != nil {
		t.Fatalf("decode exported document: %v", err)
	}
	if got := exported.Theme.Colors.Primary; got != "#123456" {
		t.Fatalf("primary color = %q, want %q", got, "#123456")
	}
}

func TestBroadcastTargetsPatchMergesAndDeletes(t *testing.T) {
	t.Parallel()

	_, routes := newTestHandler(t, nil)
	first := doJSON(t, routes, http.MethodPatch, "/api/broadcast-targets", map[string]any{
		"crm": map[string]any{"kind": "webhook", "url": "https://crm.example.com/hook", "enabled": true},
	})
	if first.Code != http.StatusOK {
		t.Fatalf("patch broadcast targets: status = %d: %s", first.Code, first.Body)
	}
	second := doJSON(t, routes, http.MethodPatch, "/api/broadcast-targets", map[string]any{
		"mailer": map[string]any{"kind": "email"},
		"crm":    nil,
	})
	if second.Code != http.StatusOK {
		t.Fatalf("patch broadcast targets again: status = %d: %s", second.Code, second.Body)
	}

	doc := doJSON(t, routes, http.MethodGet, "/api/funnel", nil)
	var exported struct {
		BroadcastTargets map[string]funnel.BroadcastTarget `json:"broadcastTargets"`
	}
	if err := json.Unmarshal(doc.Body.Bytes(), &exported); err != nil {
		t.Fatalf("decode exported document: %v", err)
	}
	if _, ok := exported.BroadcastTargets["crm"]; ok {
		t.Fatal("expected nil patch entry to remove the crm target")
	}
	if got := exported.BroadcastTargets["mailer"].Kind; got != "email" {
		t.Fatalf("mailer kind = %q, want %q", got, "email")
	}
}

func TestLayoutPatchUpdatesDocument(t *testing.T) {
	t.Parallel()

	_, routes := newTestHandler(t, nil)
	rr := doJSON(t, routes, http.MethodPatch, "/api/layout", map[string]any{
		"header": "header",
		"footer": "footer",
		"data":   map[string]any{"_brand_name": "Acme Funnels"},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("patch layout: status = %d: %s", rr.Code, rr.Body)
	}

	doc := doJSON(t, routes, http.MethodGet, "/api/funnel", nil)
	var exported struct {
		Layout funnel.Layout `json:"layout"`
	}
	if err := json.Unmarshal(doc.Body.Bytes(), &exported); err != nil {
		t.Fatalf("decode exported document: %v", err)
	}
	if got := exported.Layout.Data["_brand_name"]; got != "Acme Funnels" {
		t.Fatalf("layout brand = %v, want %q", got, "Acme Funnels")
	}
}

func TestSplitTestDrivesPreviewEntry(t *testing.T) {
	t.Parallel()

	_, routes := newTestHandler(t, nil)
	patch := doJSON(t, routes, http.MethodPatch, "/api/split-test", map[string]any{
		"enabled": true,
		"variants": []map[string]any{
			{"name": "offer-first", "path": "2", "weight": 1},
		},
	})
	if patch.Code != http.StatusOK {
		t.Fatalf("patch split test: status = %d: %s", patch.Code, patch.Body)
	}

	rr := doJSON(t, routes, http.MethodGet, "/preview", nil)
	if rr.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusFound)
	}
	if got := rr.Header().Get("Location"); got != "/preview/offer" {
		t.Fatalf("location = %q, want %q", got, "/preview/offer")
	}
}

func TestPreviewEntryDefaultsToFirstPage(t *testing.T) {
	t.Parallel()

	_, routes := newTestHandler(t, nil)
	rr := doJSON(t, routes, http.MethodGet, "/preview", nil)
	if rr.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusFound)
	}
	if got := rr.Header().Get("Location"); got != "/preview/landing" {
		t.Fatalf("location = %q, want %q", got, "/preview/landing")
	}
}

func TestPreviewRendersFullDocument(t *testing.T) {
	t.Parallel()

	_, routes := newTestHandler(t, nil)
	rr := doJSON(t, routes, http.MethodGet, "/preview/landing", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type = %q", ct)
	}
	if !strings.Contains(rr.Body.String(), "fs-document") {
		t.Fatal("expected full document wrapper")
	}
}

func TestPreviewRendersFragmentForHTMX(t *testing.T) {
	t.Parallel()

	_, routes := newTestHandler(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/preview/landing", nil)
	req.Header.Set("HX-Request", "true")
	rr := httptest.NewRecorder()
	routes.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if strings.Contains(rr.Body.String(), "fs-document") {
		t.Fatal("fragment should not carry the document wrapper")
	}
}

func TestPreviewResolvesPathAlias(t *testing.T) {
	t.Parallel()

	_, routes := newTestHandler(t, nil)
	rr := doJSON(t, routes, http.MethodGet, "/preview/2", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestPreviewUnknownPage(t *testing.T) {
	t.Parallel()

	_, routes := newTestHandler(t, nil)
	rr := doJSON(t, routes, http.MethodGet, "/preview/ghost", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestGrantGuardsAPIRoutes(t *testing.T) {
	t.Parallel()

	cfg := testGrantConfig()
	cfg.Now = time.Now
	store := editor.NewStore(nil, nil)
	h, err := NewHandler(HandlerConfig{Store: store, Grant: cfg})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	routes := h.Routes()

	unauthorized := doJSON(t, routes, http.MethodGet, "/api/funnel", nil)
	if unauthorized.Code != http.StatusUnauthorized {
		t.Fatalf("status without grant = %d, want %d", unauthorized.Code, http.StatusUnauthorized)
	}

	token, err := IssueGrant(cfg, "local-editor", time.Hour)
	if err != nil {
		t.Fatalf("issue grant: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/funnel", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	routes.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status with grant = %d, want %d: %s", rr.Code, http.StatusOK, rr.Body)
	}

	// Health and preview stay open for probes and the rendered funnel.
	if rr := doJSON(t, routes, http.MethodGet, "/healthz", nil); rr.Code != http.StatusOK {
		t.Fatalf("healthz status = %d, want %d", rr.Code, http.StatusOK)
	}
	if rr := doJSON(t, routes, http.MethodGet, "/preview/landing", nil); rr.Code != http.StatusOK {
		t.Fatalf("preview status = %d, want %d", rr.Code, http.StatusOK)
	}
}
