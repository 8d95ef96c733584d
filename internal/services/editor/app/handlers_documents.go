package app

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/funnelsmith/funnelsmith/internal/funnel"
	apperrors "github.com/funnelsmith/funnelsmith/internal/platform/errors"
	"github.com/funnelsmith/funnelsmith/internal/services/editor/httpx"
	"github.com/funnelsmith/funnelsmith/internal/services/editor/storage"
)

const defaultListPageSize = 20

type documentSummary struct {
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	Bytes     int    `json:"bytes"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type revisionSummary struct {
	Seq       int64  `json:"seq"`
	Note      string `json:"note"`
	Bytes     int    `json:"bytes"`
	CreatedAt string `json:"createdAt"`
}

func (h *Handler) handleDocumentList(w http.ResponseWriter, r *http.Request) {
	if !h.requireDocuments(w) {
		return
	}
	pageSize := defaultListPageSize
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			httpx.WriteError(w, apperrors.New(apperrors.CodeRequestMalformed, "page_size must be a positive integer"))
			return
		}
		pageSize = parsed
	}
	page, err := h.documents.ListDocuments(r.Context(), pageSize, r.URL.Query().Get("page_token"))
	if err != nil {
		httpx.WriteError(w, storageError("list documents", err))
		return
	}
	documents := make([]documentSummary, 0, len(page.Documents))
	for _, doc := range page.Documents {
		documents = append(documents, documentSummary{
			Slug:      doc.Slug,
			Name:      doc.Name,
			Bytes:     len(doc.Body),
			CreatedAt: formatTime(doc.CreatedAt),
			UpdatedAt: formatTime(doc.UpdatedAt),
		})
	}
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"documents":     documents,
		"nextPageToken": page.NextPageToken,
	})
}

func (h *Handler) handleDocumentGet(w http.ResponseWriter, r *http.Request) {
	if !h.requireDocuments(w) {
		return
	}
	slug, err := documentSlug(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	doc, err := h.documents.GetDocument(r.Context(), slug)
	if err != nil {
		httpx.WriteError(w, storageError("get document", err))
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"slug":      doc.Slug,
		"name":      doc.Name,
		"createdAt": formatTime(doc.CreatedAt),
		"updatedAt": formatTime(doc.UpdatedAt),
		"funnel":    json.RawMessage(doc.Body),
	})
}

// handleDocumentPut upserts a document under slug. An empty request body
// saves the live editing session; a body with a funnel section saves that
// document instead, after an import check.
func (h *Handler) handleDocumentPut(w http.ResponseWriter, r *http.Request) {
	if !h.requireDocuments(w) {
		return
	}
	slug, err := documentSlug(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	raw, err := httpx.ReadBody(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	var name string
	var body []byte
	if len(strings.TrimSpace(string(raw))) > 0 {
		var req struct {
			Name   string          `json:"name"`
			Funnel json.RawMessage `json:"funnel"`
		}
		if err := json.Unmarshal(raw, &req); err != nil {
			httpx.WriteError(w, apperrors.Wrap(apperrors.CodeRequestMalformed, "decode request body", err))
			return
		}
		name = strings.TrimSpace(req.Name)
		if len(req.Funnel) > 0 {
			if _, err := funnel.ImportDocument(req.Funnel); err != nil {
				httpx.WriteError(w, err)
				return
			}
			body = []byte(req.Funnel)
		}
	}
	if body == nil {
		exported, _, err := h.store.ExportDocument()
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		body = exported
	}

	status := http.StatusOK
	existing, err := h.documents.GetDocument(r.Context(), slug)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		if name == "" {
			name = slug
		}
		if err := h.documents.CreateDocument(r.Context(), storage.Document{Slug: slug, Name: name, Body: body}); err != nil {
			httpx.WriteError(w, storageError("create document", err))
			return
		}
		status = http.StatusCreated
	case err != nil:
		httpx.WriteError(w, storageError("get document", err))
		return
	default:
		if name == "" {
			name = existing.Name
		}
		if err := h.documents.UpdateDocument(r.Context(), storage.Document{Slug: slug, Name: name, Body: body}); err != nil {
			httpx.WriteError(w, storageError("update document", err))
			return
		}
	}

	revision, err := h.documents.AddRevision(r.Context(), storage.Revision{Slug: slug, Note: "save", Body: body}, revisionKeep)
	if err != nil {
		httpx.WriteError(w, storageError("record revision", err))
		return
	}
	_ = httpx.WriteJSON(w, status, map[string]any{
		"slug":     slug,
		"name":     name,
		"bytes":    len(body),
		"revision": revision.Seq,
	})
}

func (h *Handler) handleDocumentDelete(w http.ResponseWriter, r *http.Request) {
	if !h.requireDocuments(w) {
		return
	}
	slug, err := documentSlug(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := h.documents.DeleteDocument(r.Context(), slug); err != nil {
		httpx.WriteError(w, storageError("delete document", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRevisionList(w http.ResponseWriter, r *http.Request) {
	if !h.requireDocuments(w) {
		return
	}
	slug, err := documentSlug(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	limit := revisionKeep
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			httpx.WriteError(w, apperrors.New(apperrors.CodeRequestMalformed, "limit must be a positive integer"))
			return
		}
		limit = parsed
	}
	revisions, err := h.documents.ListRevisions(r.Context(), slug, limit)
	if err != nil {
		httpx.WriteError(w, storageError("list revisions", err))
		return
	}
	summaries := make([]revisionSummary, 0, len(revisions))
	for _, rev := range revisions {
		summaries = append(summaries, revisionSummary{
			Seq:       rev.Seq,
			Note:      rev.Note,
			Bytes:     len(rev.Body),
			CreatedAt: formatTime(rev.CreatedAt),
		})
	}
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]any{"revisions": summaries})
}

func (h *Handler) handleRevisionGet(w http.ResponseWriter, r *http.Request) {
	if !h.requireDocuments(w) {
		return
	}
	slug, err := documentSlug(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	seq, err := strconv.ParseInt(r.PathValue("seq"), 10, 64)
	if err != nil {
		httpx.WriteError(w, apperrors.New(apperrors.CodeRequestMalformed, "revision seq must be an integer"))
		return
	}
	revision, err := h.documents.GetRevision(r.Context(), slug, seq)
	if err != nil {
		httpx.WriteError(w, storageError("get revision", err))
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"slug":      revision.Slug,
		"seq":       revision.Seq,
		"note":      revision.Note,
		"createdAt": formatTime(revision.CreatedAt),
		"funnel":    json.RawMessage(revision.Body),
	})
}

func (h *Handler) requireDocuments(w http.ResponseWriter) bool {
	if h.documents != nil {
		return true
	}
	httpx.WriteError(w, apperrors.New(apperrors.CodeStorageUnavailable, "document storage is not configured"))
	return false
}

func documentSlug(r *http.Request) (string, error) {
	slug := strings.TrimSpace(r.PathValue("slug"))
	if slug == "" {
		return "", apperrors.New(apperrors.CodeDocumentSlugEmpty, "document slug is required")
	}
	return slug, nil
}

// storageError lifts storage sentinel errors into coded API errors.
func storageError(op string, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return apperrors.Wrap(apperrors.CodeNotFound, "document not found", err)
	case errors.Is(err, storage.ErrAlreadyExists):
		return apperrors.Wrap(apperrors.CodeAlreadyExists, "document already exists", err)
	}
	return apperrors.Wrap(apperrors.CodeUnknown, op+" failed", err)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
