package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/funnelsmith/funnelsmith/internal/editor"
	"github.com/funnelsmith/funnelsmith/internal/funnel"
	"github.com/funnelsmith/funnelsmith/internal/platform/id"
	"github.com/funnelsmith/funnelsmith/internal/services/editor/storage"
	storagesqlite "github.com/funnelsmith/funnelsmith/internal/services/editor/storage/sqlite"
	"github.com/funnelsmith/funnelsmith/internal/services/editor/watch"
)

const (
	defaultHTTPAddr     = ":8080"
	defaultDocumentSlug = "default"
)

// RuntimeConfig controls editor service startup and dependency wiring.
type RuntimeConfig struct {
	// HTTPAddr is the listen address for the editor API.
	HTTPAddr string
	// DBPath enables sqlite document persistence when set.
	DBPath string
	// DocumentPath loads a funnel document file at startup and watches it
	// for changes.
	DocumentPath string
	// DocumentSlug names the persisted document used for startup loads and
	// autosnapshots.
	DocumentSlug string
	// AutosnapshotSpec schedules periodic revision snapshots in cron
	// syntax. Requires DBPath.
	AutosnapshotSpec string
}

// Run starts the editor HTTP runtime until context cancellation.
func Run(ctx context.Context, cfg RuntimeConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		cfg.HTTPAddr = defaultHTTPAddr
	}
	slug := strings.TrimSpace(cfg.DocumentSlug)
	if slug == "" {
		slug = defaultDocumentSlug
	}

	var documents storage.DocumentStore
	if path := strings.TrimSpace(cfg.DBPath); path != "" {
		store, err := openDocumentStore(path)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := store.Close(); closeErr != nil {
				log.Printf("close document store: %v", closeErr)
			}
		}()
		documents = store
	}

	graph, err := loadInitialGraph(ctx, cfg.DocumentPath, documents, slug)
	if err != nil {
		return err
	}
	session := editor.NewStore(graph, id.NewID)

	grant, err := LoadGrantConfigFromEnv(time.Now)
	if err != nil {
		return err
	}
	if !grant.Enabled() {
		log.Printf("editor grant checks disabled; API is open")
	}

	handler, err := NewHandler(HandlerConfig{
		Store:     session,
		Documents: documents,
		Grant:     grant,
	})
	if err != nil {
		return err
	}

	if spec := strings.TrimSpace(cfg.AutosnapshotSpec); spec != "" {
		if documents == nil {
			return errors.New("autosnapshots require a document database path")
		}
		snapshotter, err := StartAutosnapshots(spec, session, documents, slug)
		if err != nil {
			return err
		}
		defer snapshotter.Stop()
	}

	server, err := New(cfg.HTTPAddr, handler.Routes())
	if err != nil {
		return err
	}

	if path := strings.TrimSpace(cfg.DocumentPath); path != "" {
		go func() {
			if err := watch.Watch(ctx, path, session); err != nil {
				log.Printf("document watch stopped: %v", err)
			}
		}()
	}

	return server.Serve(ctx)
}

// loadInitialGraph picks the startup funnel: a document file when one exists
// at documentPath, then the persisted document under slug, then the starter
// funnel. A missing file or absent document row falls through; a present but
// unreadable document aborts startup.
func loadInitialGraph(ctx context.Context, documentPath string, documents storage.DocumentStore, slug string) (*funnel.Graph, error) {
	if path := strings.TrimSpace(documentPath); path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			graph, err := funnel.ImportDocument(data)
			if err != nil {
				return nil, fmt.Errorf("load document %s: %w", path, err)
			}
			log.Printf("loaded document from %s", path)
			return graph, nil
		case errors.Is(err, os.ErrNotExist):
			log.Printf("document %s not found, continuing without it", path)
		default:
			return nil, fmt.Errorf("read document %s: %w", path, err)
		}
	}

	if documents != nil {
		doc, err := documents.GetDocument(ctx, slug)
		switch {
		case err == nil:
			graph, err := funnel.ImportDocument(doc.Body)
			if err != nil {
				return nil, fmt.Errorf("load stored document %q: %w", slug, err)
			}
			log.Printf("loaded document %q from storage", slug)
			return graph, nil
		case errors.Is(err, storage.ErrNotFound):
		default:
			return nil, fmt.Errorf("get document %q: %w", slug, err)
		}
	}

	return funnel.DefaultGraph(), nil
}

// openDocumentStore opens the sqlite document store, creating the parent
// directory when needed.
func openDocumentStore(path string) (*storagesqlite.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := storagesqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	return store, nil
}
