package app

import (
	"net/http"

	"github.com/funnelsmith/funnelsmith/internal/funnel"
	"github.com/funnelsmith/funnelsmith/internal/services/editor/httpx"
)

func (h *Handler) handleTemplatesPut(w http.ResponseWriter, r *http.Request) {
	var templates map[string]funnel.Node
	if err := httpx.DecodeJSON(r, &templates); err != nil {
		httpx.WriteError(w, err)
		return
	}
	g, err := h.store.SetTemplates(templates)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	h.writeState(w, http.StatusOK, g, nil)
}

func (h *Handler) handleTemplateDelete(w http.ResponseWriter, r *http.Request) {
	g, err := h.store.DeleteTemplate(r.PathValue("name"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	h.writeState(w, http.StatusOK, g, nil)
}

// handleRoutingPatch merges an event routing patch: entries map to their new
// value, null entries are removed.
func (h *Handler) handleRoutingPatch(w http.ResponseWriter, r *http.Request) {
	var patch map[string]*funnel.RoutingEntry
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		httpx.WriteError(w, err)
		return
	}
	g, err := h.store.SetEventRouting(patch)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	h.writeState(w, http.StatusOK, g, nil)
}

func (h *Handler) handleBroadcastTargetsPatch(w http.ResponseWriter, r *http.Request) {
	var patch map[string]*funnel.BroadcastTarget
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		httpx.WriteError(w, err)
		return
	}
	g, err := h.store.SetBroadcastTargets(patch)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	h.writeState(w, http.StatusOK, g, nil)
}

func (h *Handler) handleThemePatch(w http.ResponseWriter, r *http.Request) {
	var theme funnel.Theme
	if err := httpx.DecodeJSON(r, &theme); err != nil {
		httpx.WriteError(w, err)
		return
	}
	g, err := h.store.SetTheme(theme)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	h.writeState(w, http.StatusOK, g, nil)
}

func (h *Handler) handleLayoutPatch(w http.ResponseWriter, r *http.Request) {
	var layout funnel.Layout
	if err := httpx.DecodeJSON(r, &layout); err != nil {
		httpx.WriteError(w, err)
		return
	}
	g, err := h.store.SetLayout(layout)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	h.writeState(w, http.StatusOK, g, nil)
}

// handleSplitTestPatch replaces the split test. A JSON null body clears it.
func (h *Handler) handleSplitTestPatch(w http.ResponseWriter, r *http.Request) {
	var split *funnel.SplitTest
	if err := httpx.DecodeJSON(r, &split); err != nil {
		httpx.WriteError(w, err)
		return
	}
	g, err := h.store.SetSplitTest(split)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	h.writeState(w, http.StatusOK, g, nil)
}
