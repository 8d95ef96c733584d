// Package editorfakes provides in-memory storage fakes for editor service
// tests.
package editorfakes

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/funnelsmith/funnelsmith/internal/services/editor/storage"
)

// DocumentStore is a lightweight in-memory DocumentStore fake for tests. It
// mirrors the sqlite store's ordering and pagination contract.
type DocumentStore struct {
	Documents map[string]storage.Document
	Revisions map[string][]storage.Revision
	Seq       map[string]int64
	Now       func() time.Time
}

var _ storage.DocumentStore = (*DocumentStore)(nil)

// NewDocumentStore constructs a DocumentStore fake with initialized state
// maps and a fixed clock.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		Documents: make(map[string]storage.Document),
		Revisions: make(map[string][]storage.Revision),
		Seq:       make(map[string]int64),
		Now:       func() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) },
	}
}

func (s *DocumentStore) CreateDocument(_ context.Context, doc storage.Document) error {
	if _, ok := s.Documents[doc.Slug]; ok {
		return storage.ErrAlreadyExists
	}
	doc.CreatedAt = s.Now()
	doc.UpdatedAt = doc.CreatedAt
	s.Documents[doc.Slug] = doc
	return nil
}

func (s *DocumentStore) GetDocument(_ context.Context, slug string) (storage.Document, error) {
	doc, ok := s.Documents[slug]
	if !ok {
		return storage.Document{}, storage.ErrNotFound
	}
	return doc, nil
}

func (s *DocumentStore) UpdateDocument(_ context.Context, doc storage.Document) error {
	existing, ok := s.Documents[doc.Slug]
	if !ok {
		return storage.ErrNotFound
	}
	doc.CreatedAt = existing.CreatedAt
	doc.UpdatedAt = s.Now()
	s.Documents[doc.Slug] = doc
	return nil
}

func (s *DocumentStore) DeleteDocument(_ context.Context, slug string) error {
	if _, ok := s.Documents[slug]; !ok {
		return storage.ErrNotFound
	}
	delete(s.Documents, slug)
	delete(s.Revisions, slug)
	delete(s.Seq, slug)
	return nil
}

func (s *DocumentStore) ListDocuments(_ context.Context, pageSize int, pageToken string) (storage.DocumentPage, error) {
	if pageSize <= 0 {
		return storage.DocumentPage{}, fmt.Errorf("page size must be greater than zero")
	}
	slugs := make([]string, 0, len(s.Documents))
	for slug := range s.Documents {
		if pageToken != "" && slug <= pageToken {
			continue
		}
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)

	page := storage.DocumentPage{Documents: make([]storage.Document, 0, pageSize)}
	for idx, slug := range slugs {
		if idx == pageSize {
			page.NextPageToken = slugs[pageSize-1]
			break
		}
		page.Documents = append(page.Documents, s.Documents[slug])
	}
	return page, nil
}

func (s *DocumentStore) AddRevision(_ context.Context, revision storage.Revision, keep int) (storage.Revision, error) {
	seq := s.Seq[revision.Slug] + 1
	s.Seq[revision.Slug] = seq
	revision.Seq = seq
	revision.CreatedAt = s.Now()
	revisions := append(s.Revisions[revision.Slug], revision)
	if keep > 0 && len(revisions) > keep {
		revisions = revisions[len(revisions)-keep:]
	}
	s.Revisions[revision.Slug] = revisions
	return revision, nil
}

func (s *DocumentStore) ListRevisions(_ context.Context, slug string, limit int) ([]storage.Revision, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}
	stored := s.Revisions[slug]
	out := make([]storage.Revision, 0, limit)
	for idx := len(stored) - 1; idx >= 0 && len(out) < limit; idx-- {
		out = append(out, stored[idx])
	}
	return out, nil
}

func (s *DocumentStore) GetRevision(_ context.Context, slug string, seq int64) (storage.Revision, error) {
	for _, revision := range s.Revisions[slug] {
		if revision.Seq == seq {
			return revision, nil
		}
	}
	return storage.Revision{}, storage.ErrNotFound
}
