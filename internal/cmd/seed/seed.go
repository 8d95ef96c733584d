// Package seed parses seed command flags and bootstraps a funnel workspace:
// the starter document as a file or stdout JSON, a seeded sqlite document
// database, and optionally a signed editor grant.
package seed

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/funnelsmith/funnelsmith/internal/funnel"
	entrypoint "github.com/funnelsmith/funnelsmith/internal/platform/cmd"
	editorapp "github.com/funnelsmith/funnelsmith/internal/services/editor/app"
	"github.com/funnelsmith/funnelsmith/internal/services/editor/storage"
	storagesqlite "github.com/funnelsmith/funnelsmith/internal/services/editor/storage/sqlite"
)

// defaultGrantTTL bounds locally issued grants to one working day.
const defaultGrantTTL = 24 * time.Hour

// Config holds seed command configuration.
type Config struct {
	Out          string
	DBPath       string `env:"FUNNELSMITH_DB_PATH"`
	DocumentSlug string `env:"FUNNELSMITH_DOCUMENT_SLUG" envDefault:"default"`
	GrantSubject string
	GrantTTL     time.Duration
	Force        bool
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Out, "out", "", "write the starter document to this file instead of stdout")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "seed the sqlite document database at this path")
	fs.StringVar(&cfg.DocumentSlug, "slug", cfg.DocumentSlug, "the document slug to seed")
	fs.StringVar(&cfg.GrantSubject, "grant", "", "issue an editor grant for this subject")
	fs.DurationVar(&cfg.GrantTTL, "grant-ttl", defaultGrantTTL, "lifetime of the issued grant")
	fs.BoolVar(&cfg.Force, "force", false, "overwrite an existing file or document")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the seed command. Without -out, -db, or -grant it writes the
// starter document JSON to out.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}

	document, err := starterDocument(errOut)
	if err != nil {
		return err
	}

	acted := false
	if path := strings.TrimSpace(cfg.Out); path != "" {
		if err := writeDocumentFile(path, document, cfg.Force); err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote document to %s\n", path)
		acted = true
	}
	if path := strings.TrimSpace(cfg.DBPath); path != "" {
		slug := strings.TrimSpace(cfg.DocumentSlug)
		if err := seedDatabase(ctx, path, slug, document, cfg.Force); err != nil {
			return err
		}
		fmt.Fprintf(out, "seeded document %q in %s\n", slug, path)
		acted = true
	}
	if subject := strings.TrimSpace(cfg.GrantSubject); subject != "" {
		token, err := issueGrant(subject, cfg.GrantTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, token)
		acted = true
	}

	if !acted {
		if _, err := out.Write(append(document, '\n')); err != nil {
			return fmt.Errorf("write document: %w", err)
		}
	}
	return nil
}

// starterDocument exports the starter funnel, reporting validation issues
// without failing on them.
func starterDocument(errOut io.Writer) ([]byte, error) {
	document, issues, err := funnel.ExportDocument(funnel.DefaultGraph())
	if err != nil {
		return nil, fmt.Errorf("export starter document: %w", err)
	}
	for _, issue := range issues {
		fmt.Fprintf(errOut, "document issue [%s] %s: %s\n", issue.Severity, issue.Field, issue.Message)
	}
	return document, nil
}

func writeDocumentFile(path string, document []byte, force bool) error {
	if !force {
		_, err := os.Stat(path)
		switch {
		case err == nil:
			return fmt.Errorf("%s already exists (use -force to overwrite)", path)
		case !errors.Is(err, os.ErrNotExist):
			return fmt.Errorf("stat %s: %w", path, err)
		}
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create document dir: %w", err)
		}
	}
	if err := os.WriteFile(path, document, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func seedDatabase(ctx context.Context, path, slug string, document []byte, force bool) error {
	if slug == "" {
		return errors.New("document slug is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := storagesqlite.Open(path)
	if err != nil {
		return fmt.Errorf("open sqlite store: %w", err)
	}
	defer store.Close()

	doc := storage.Document{Slug: slug, Name: slug, Body: document}
	err = store.CreateDocument(ctx, doc)
	switch {
	case errors.Is(err, storage.ErrAlreadyExists):
		if !force {
			return fmt.Errorf("document %q already exists (use -force to overwrite)", slug)
		}
		existing, getErr := store.GetDocument(ctx, slug)
		if getErr != nil {
			return fmt.Errorf("get document %q: %w", slug, getErr)
		}
		doc.Name = existing.Name
		if updateErr := store.UpdateDocument(ctx, doc); updateErr != nil {
			return fmt.Errorf("update document %q: %w", slug, updateErr)
		}
	case err != nil:
		return fmt.Errorf("create document %q: %w", slug, err)
	}

	if _, err := store.AddRevision(ctx, storage.Revision{Slug: slug, Note: "seed", Body: document}, 0); err != nil {
		return fmt.Errorf("record revision: %w", err)
	}
	return nil
}

// issueGrant signs an editor grant using the environment's grant secret.
func issueGrant(subject string, ttl time.Duration) (string, error) {
	grantCfg, err := editorapp.LoadGrantConfigFromEnv(time.Now)
	if err != nil {
		return "", err
	}
	if !grantCfg.Enabled() {
		return "", errors.New("FUNNELSMITH_EDITOR_GRANT_SECRET is required to issue grants")
	}
	return editorapp.IssueGrant(grantCfg, subject, ttl)
}
