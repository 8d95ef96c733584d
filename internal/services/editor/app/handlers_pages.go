package app

import (
	"net/http"

	"github.com/funnelsmith/funnelsmith/internal/funnel"
	"github.com/funnelsmith/funnelsmith/internal/services/editor/httpx"
)

// pageCreateRequest flattens an optional explicit id next to the page body.
type pageCreateRequest struct {
	ID string `json:"id,omitempty"`
	funnel.Page
}

type pageCreatedResponse struct {
	ID string `json:"id"`
	funnelState
}

func (h *Handler) handlePageCreate(w http.ResponseWriter, r *http.Request) {
	var req pageCreateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	id, g, stats, err := h.store.AddPage(req.ID, req.Page)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusCreated, pageCreatedResponse{ID: id, funnelState: h.state(g, &stats)})
}

func (h *Handler) handlePageUpdate(w http.ResponseWriter, r *http.Request) {
	var page funnel.Page
	if err := httpx.DecodeJSON(r, &page); err != nil {
		httpx.WriteError(w, err)
		return
	}
	g, stats, err := h.store.SetPage(r.PathValue("pageID"), page)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	h.writeState(w, http.StatusOK, g, &stats)
}

func (h *Handler) handlePageDuplicate(w http.ResponseWriter, r *http.Request) {
	id, g, stats, err := h.store.DuplicatePage(r.PathValue("pageID"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusCreated, pageCreatedResponse{ID: id, funnelState: h.state(g, &stats)})
}

func (h *Handler) handlePageDelete(w http.ResponseWriter, r *http.Request) {
	g, stats, err := h.store.DeletePage(r.PathValue("pageID"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	h.writeState(w, http.StatusOK, g, &stats)
}

func (h *Handler) handlePagesReorder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Order []string `json:"order"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	g, stats, err := h.store.ReorderPages(req.Order)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	h.writeState(w, http.StatusOK, g, &stats)
}
