// Package app assembles the funnel editor HTTP service: route table,
// middleware, and handlers over the live editing store.
package app

import (
	"errors"
	"math/rand"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/funnelsmith/funnelsmith/internal/editor"
	"github.com/funnelsmith/funnelsmith/internal/funnel"
	"github.com/funnelsmith/funnelsmith/internal/random"
	"github.com/funnelsmith/funnelsmith/internal/render"
	"github.com/funnelsmith/funnelsmith/internal/services/editor/httpx"
	"github.com/funnelsmith/funnelsmith/internal/services/editor/storage"
)

const tracerName = "funnelsmith/services/editor"

// Handler serves the editor API over a live editing store.
type Handler struct {
	store     *editor.Store
	engine    *render.Engine
	documents storage.DocumentStore
	grant     GrantConfig
	roll      func(n int) int
}

// HandlerConfig carries Handler dependencies.
type HandlerConfig struct {
	// Store is the live editing session. Required.
	Store *editor.Store
	// Engine renders previews. A nil engine uses the default registry.
	Engine *render.Engine
	// Documents persists funnels. Nil disables the /api/documents routes.
	Documents storage.DocumentStore
	// Grant guards /api routes when enabled.
	Grant GrantConfig
	// Roll supplies split-test tickets in [0, n). Nil seeds a PRNG from
	// crypto/rand.
	Roll func(n int) int
}

// NewHandler validates dependencies and builds the editor API handler.
func NewHandler(cfg HandlerConfig) (*Handler, error) {
	if cfg.Store == nil {
		return nil, errors.New("editing store is required")
	}
	engine := cfg.Engine
	if engine == nil {
		engine = render.NewEngine(nil)
	}
	roll := cfg.Roll
	if roll == nil {
		roll = newRoll()
	}
	return &Handler{
		store:     cfg.Store,
		engine:    engine,
		documents: cfg.Documents,
		grant:     cfg.Grant,
		roll:      roll,
	}, nil
}

// Routes builds the editor route table with shared middleware applied.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.handleHealth)

	mux.Handle("GET /api/funnel", h.requireGrant(h.handleFunnelGet))
	mux.Handle("POST /api/funnel/import", h.requireGrant(h.handleFunnelImport))
	mux.Handle("GET /api/funnel/export", h.requireGrant(h.handleFunnelExport))
	mux.Handle("GET /api/validate", h.requireGrant(h.handleValidate))
	mux.Handle("POST /api/undo", h.requireGrant(h.handleUndo))
	mux.Handle("POST /api/redo", h.requireGrant(h.handleRedo))

	mux.Handle("POST /api/pages", h.requireGrant(h.handlePageCreate))
	mux.Handle("POST /api/pages/reorder", h.requireGrant(h.handlePagesReorder))
	mux.Handle("PUT /api/pages/{pageID}", h.requireGrant(h.handlePageUpdate))
	mux.Handle("POST /api/pages/{pageID}/duplicate", h.requireGrant(h.handlePageDuplicate))
	mux.Handle("DELETE /api/pages/{pageID}", h.requireGrant(h.handlePageDelete))

	mux.Handle("PUT /api/templates", h.requireGrant(h.handleTemplatesPut))
	mux.Handle("DELETE /api/templates/{name}", h.requireGrant(h.handleTemplateDelete))

	mux.Handle("PATCH /api/routing", h.requireGrant(h.handleRoutingPatch))
	mux.Handle("PATCH /api/broadcast-targets", h.requireGrant(h.handleBroadcastTargetsPatch))
	mux.Handle("PATCH /api/theme", h.requireGrant(h.handleThemePatch))
	mux.Handle("PATCH /api/layout", h.requireGrant(h.handleLayoutPatch))
	mux.Handle("PATCH /api/split-test", h.requireGrant(h.handleSplitTestPatch))

	mux.Handle("GET /api/documents", h.requireGrant(h.handleDocumentList))
	mux.Handle("GET /api/documents/{slug}", h.requireGrant(h.handleDocumentGet))
	mux.Handle("PUT /api/documents/{slug}", h.requireGrant(h.handleDocumentPut))
	mux.Handle("DELETE /api/documents/{slug}", h.requireGrant(h.handleDocumentDelete))
	mux.Handle("GET /api/documents/{slug}/revisions", h.requireGrant(h.handleRevisionList))
	mux.Handle("GET /api/documents/{slug}/revisions/{seq}", h.requireGrant(h.handleRevisionGet))

	mux.HandleFunc("GET /preview", h.handlePreviewEntry)
	mux.HandleFunc("GET /preview/{pageID}", h.handlePreview)

	return httpx.Chain(mux,
		httpx.RequestID(),
		httpx.RecoverPanic(),
		httpx.Trace(tracerName),
	)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requireGrant enforces bearer grant auth on API routes when configured.
func (h *Handler) requireGrant(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.grant.Enabled() {
			next(w, r)
			return
		}
		if _, err := ValidateGrant(bearerToken(r), h.grant); err != nil {
			httpx.WriteError(w, err)
			return
		}
		next(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

// pageSummary describes one page in collection order.
type pageSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Path     string `json:"path"`
	Template string `json:"template"`
}

// funnelState is the common mutation response: the funnel shape after the
// edit plus history availability.
type funnelState struct {
	Pages     []pageSummary          `json:"pages"`
	Templates []string               `json:"templates"`
	Events    []string               `json:"events"`
	Migration *funnel.MigrationStats `json:"migration,omitempty"`
	CanUndo   bool                   `json:"canUndo"`
	CanRedo   bool                   `json:"canRedo"`
}

func (h *Handler) state(g *funnel.Graph, stats *funnel.MigrationStats) funnelState {
	state := funnelState{
		Pages:     make([]pageSummary, 0, g.Pages.Len()),
		Templates: make([]string, 0, len(g.Templates)),
		Events:    make([]string, 0, len(g.EventRouting)),
		Migration: stats,
		CanUndo:   h.store.CanUndo(),
		CanRedo:   h.store.CanRedo(),
	}
	for pair := g.Pages.Oldest(); pair != nil; pair = pair.Next() {
		state.Pages = append(state.Pages, pageSummary{
			ID:       pair.Key,
			Name:     pair.Value.Name,
			Path:     pair.Value.Path,
			Template: pair.Value.Template,
		})
	}
	for name := range g.Templates {
		state.Templates = append(state.Templates, name)
	}
	for event := range g.EventRouting {
		state.Events = append(state.Events, event)
	}
	sort.Strings(state.Templates)
	sort.Strings(state.Events)
	return state
}

func (h *Handler) writeState(w http.ResponseWriter, status int, g *funnel.Graph, stats *funnel.MigrationStats) {
	_ = httpx.WriteJSON(w, status, h.state(g, stats))
}

// newRoll builds the default split-test ticket source.
func newRoll() func(n int) int {
	seed, err := random.NewSeed()
	if err != nil {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	var mu sync.Mutex
	return func(n int) int {
		mu.Lock()
		defer mu.Unlock()
		return rng.Intn(n)
	}
}
