package mcp

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/funnelsmith/funnelsmith/internal/editor"
	"github.com/funnelsmith/funnelsmith/internal/funnel"
	"github.com/funnelsmith/funnelsmith/internal/platform/id"
	"github.com/funnelsmith/funnelsmith/internal/services/editor/storage"
	storagesqlite "github.com/funnelsmith/funnelsmith/internal/services/editor/storage/sqlite"
)

const defaultDocumentSlug = "default"

// RuntimeConfig controls MCP service startup and dependency wiring.
type RuntimeConfig struct {
	// DBPath enables sqlite document persistence when set. funnel_save
	// needs it.
	DBPath string
	// DocumentPath loads a funnel document file at startup.
	DocumentPath string
	// DocumentSlug names the persisted document used for startup loads and
	// saves.
	DocumentSlug string
}

// Run loads the funnel, builds the editing session, and serves MCP tools on
// stdio until context cancellation.
func Run(ctx context.Context, cfg RuntimeConfig) error {
	if ctx == nil {
		ctx = context.Background()
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

	server, err := NewServer(ServerConfig{
		Store:        session,
		Documents:    documents,
		DocumentSlug: slug,
	})
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// loadInitialGraph picks the startup funnel: a document file when one exists
// at documentPath, then the persisted document under slug, then the starter
// funnel.
func loadInitialGraph(ctx context.Context, documentPath string, documents storage.DocumentStore, slug string) (*funnel.Graph, error) {
	if path := strings.TrimSpace(documentPath); path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			graph, err := funnel.ImportDocument(data)
			if err != nil {
				return nil, fmt.Errorf("load document %s: %w", path, err)
			}
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
