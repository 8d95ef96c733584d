package app

import (
	"net/http"

	"github.com/funnelsmith/funnelsmith/internal/funnel"
	"github.com/funnelsmith/funnelsmith/internal/services/editor/httpx"
)

func (h *Handler) handleFunnelGet(w http.ResponseWriter, _ *http.Request) {
	h.writeDocument(w, "")
}

func (h *Handler) handleFunnelExport(w http.ResponseWriter, _ *http.Request) {
	h.writeDocument(w, `attachment; filename="funnel.json"`)
}

// writeDocument serializes the live graph as a funnel document. A non-empty
// disposition marks the response as a download.
func (h *Handler) writeDocument(w http.ResponseWriter, disposition string) {
	data, _, err := h.store.ExportDocument()
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if disposition != "" {
		w.Header().Set("Content-Disposition", disposition)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) handleFunnelImport(w http.ResponseWriter, r *http.Request) {
	data, err := httpx.ReadBody(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	g, err := h.store.ImportDocument(data)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	h.writeState(w, http.StatusOK, g, nil)
}

func (h *Handler) handleValidate(w http.ResponseWriter, _ *http.Request) {
	issues := h.store.Validate()
	if issues == nil {
		issues = []funnel.Issue{}
	}
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"valid":  !funnel.HasErrors(issues),
		"issues": issues,
	})
}

func (h *Handler) handleUndo(w http.ResponseWriter, _ *http.Request) {
	h.writeState(w, http.StatusOK, h.store.Undo(), nil)
}

func (h *Handler) handleRedo(w http.ResponseWriter, _ *http.Request) {
	h.writeState(w, http.StatusOK, h.store.Redo(), nil)
}
