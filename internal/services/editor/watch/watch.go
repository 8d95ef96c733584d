// Package watch reloads a funnel document from disk into the live editing
// session whenever the file changes. It backs the dev flow where the
// document is edited in an external editor next to a running preview.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/funnelsmith/funnelsmith/internal/funnel"
)

// debounce coalesces editor save bursts into one reload.
const debounce = 500 * time.Millisecond

// Importer applies a raw funnel document to a live editing session.
type Importer interface {
	ImportDocument(data []byte) (*funnel.Graph, error)
}

// Reload reads the document at path and imports it. Malformed documents
// return an error and leave the session untouched.
func Reload(path string, imp Importer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}
	if _, err := imp.ImportDocument(data); err != nil {
		return fmt.Errorf("import document: %w", err)
	}
	return nil
}

// Watch blocks until ctx ends, reloading path into imp after every change.
// The parent directory is watched so editors that replace the file during
// save still trigger reloads. Bad documents are logged and skipped.
func Watch(ctx context.Context, path string, imp Importer) error {
	if imp == nil {
		return errors.New("importer is required")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve document path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(absPath)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	log.Printf("watching document %s", absPath)
	var pending *time.Timer
	defer func() {
		if pending != nil {
			pending.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || name != absPath {
				continue
			}
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(debounce, func() {
				if err := Reload(absPath, imp); err != nil {
					log.Printf("reload document %s: %v", absPath, err)
					return
				}
				log.Printf("document reloaded from %s", absPath)
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("document watcher: %v", err)
		}
	}
}
