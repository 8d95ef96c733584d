package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/funnelsmith/funnelsmith/internal/editor"
	apperrors "github.com/funnelsmith/funnelsmith/internal/platform/errors"
	"github.com/funnelsmith/funnelsmith/internal/platform/timeouts"
	"github.com/funnelsmith/funnelsmith/internal/services/editor/storage"
)

// revisionKeep bounds stored revisions per document slug.
const revisionKeep = 20

// Snapshotter periodically records revisions of the live document.
type Snapshotter struct {
	cron *cron.Cron
}

// StartAutosnapshots schedules periodic exports of the live graph into the
// revision history under slug. The spec uses cron syntax, e.g. "@every 5m".
func StartAutosnapshots(spec string, store *editor.Store, documents storage.DocumentStore, slug string) (*Snapshotter, error) {
	if store == nil {
		return nil, errors.New("editing store is required")
	}
	if documents == nil {
		return nil, errors.New("document store is required")
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, apperrors.New(apperrors.CodeDocumentSlugEmpty, "snapshot slug is required")
	}

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeouts.Snapshot)
		defer cancel()
		if err := snapshot(ctx, store, documents, slug); err != nil {
			log.Printf("autosnapshot %s: %v", slug, err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("parse autosnapshot spec %q: %w", spec, err)
	}
	c.Start()
	return &Snapshotter{cron: c}, nil
}

// Stop halts the schedule and waits for a running snapshot to finish.
func (s *Snapshotter) Stop() {
	if s == nil || s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

// snapshot exports the live document and appends it to the revision history,
// creating the document row on first run.
func snapshot(ctx context.Context, store *editor.Store, documents storage.DocumentStore, slug string) error {
	body, _, err := store.ExportDocument()
	if err != nil {
		return fmt.Errorf("export document: %w", err)
	}

	_, err = documents.GetDocument(ctx, slug)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		err = documents.CreateDocument(ctx, storage.Document{Slug: slug, Name: slug, Body: body})
		if err != nil && !errors.Is(err, storage.ErrAlreadyExists) {
			return fmt.Errorf("create document: %w", err)
		}
	case err != nil:
		return fmt.Errorf("get document: %w", err)
	}

	if _, err := documents.AddRevision(ctx, storage.Revision{Slug: slug, Note: "autosnapshot", Body: body}, revisionKeep); err != nil {
		return fmt.Errorf("record revision: %w", err)
	}
	return nil
}
