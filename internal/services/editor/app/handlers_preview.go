package app

import (
	"net/http"
	"strings"

	apperrors "github.com/funnelsmith/funnelsmith/internal/platform/errors"
	"github.com/funnelsmith/funnelsmith/internal/funnel"
	"github.com/funnelsmith/funnelsmith/internal/services/editor/httpx"
)

// handlePreview renders one page. Full document HTML by default; HTMX
// requests receive the page fragment only so the editor canvas can swap it
// in place.
func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	g := h.store.Graph()
	pageID := r.PathValue("pageID")
	if _, ok := g.Page(pageID); !ok {
		// Allow addressing pages by derived path, e.g. /preview/2.
		id, _, ok := funnel.PageByPath(g.Pages, pageID)
		if !ok {
			httpx.WriteError(w, apperrors.New(apperrors.CodePageNotFound, "page not found"))
			return
		}
		pageID = id
	}

	component := h.engine.RenderDocument(g, pageID)
	if httpx.IsHTMXRequest(r) {
		component = h.engine.RenderPage(g, pageID)
	}

	var buf strings.Builder
	if err := component.Render(r.Context(), &buf); err != nil {
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteHTML(w, http.StatusOK, buf.String())
}

// handlePreviewEntry resolves the funnel entry page. An enabled split test
// assigns a weighted variant; otherwise the first page wins.
func (h *Handler) handlePreviewEntry(w http.ResponseWriter, r *http.Request) {
	g := h.store.Graph()

	if variant, ok := g.SplitTest.Pick(h.roll); ok {
		if id, _, found := funnel.PageByPath(g.Pages, variant.Path); found {
			httpx.WriteRedirect(w, r, "/preview/"+id)
			return
		}
	}

	keys := funnel.PageKeys(g.Pages)
	if len(keys) == 0 {
		httpx.WriteError(w, apperrors.New(apperrors.CodePageNotFound, "funnel has no pages"))
		return
	}
	httpx.WriteRedirect(w, r, "/preview/"+keys[0])
}
