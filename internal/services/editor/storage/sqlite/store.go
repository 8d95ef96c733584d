// Package sqlite provides a SQLite-backed document storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/funnelsmith/funnelsmith/internal/platform/storage/sqlitemigrate"
	"github.com/funnelsmith/funnelsmith/internal/services/editor/storage"
	"github.com/funnelsmith/funnelsmith/internal/services/editor/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists funnel documents in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite document store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// CreateDocument inserts one document record.
func (s *Store) CreateDocument(ctx context.Context, doc storage.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	slug := strings.TrimSpace(doc.Slug)
	if slug == "" {
		return fmt.Errorf("slug is required")
	}
	if len(doc.Body) == 0 {
		return fmt.Errorf("body is required")
	}
	createdAt := doc.CreatedAt.UTC()
	updatedAt := doc.UpdatedAt.UTC()
	if createdAt.IsZero() && updatedAt.IsZero() {
		createdAt = time.Now().UTC()
		updatedAt = createdAt
	} else {
		if createdAt.IsZero() {
			createdAt = updatedAt
		}
		if updatedAt.IsZero() {
			updatedAt = createdAt
		}
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO documents (slug, name, body, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		slug,
		strings.TrimSpace(doc.Name),
		doc.Body,
		toMillis(createdAt),
		toMillis(updatedAt),
	)
	if err != nil {
		if isDocumentUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

// GetDocument returns one document by slug.
func (s *Store) GetDocument(ctx context.Context, slug string) (storage.Document, error) {
	if err := ctx.Err(); err != nil {
		return storage.Document{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Document{}, fmt.Errorf("storage is not configured")
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return storage.Document{}, fmt.Errorf("slug is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT slug, name, body, created_at, updated_at
		   FROM documents
		  WHERE slug = ?`,
		slug,
	)

	var doc storage.Document
	var createdAt int64
	var updatedAt int64
	err := row.Scan(&doc.Slug, &doc.Name, &doc.Body, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Document{}, storage.ErrNotFound
		}
		return storage.Document{}, fmt.Errorf("get document: %w", err)
	}
	doc.CreatedAt = fromMillis(createdAt)
	doc.UpdatedAt = fromMillis(updatedAt)
	return doc, nil
}

// UpdateDocument replaces the name and body of an existing document.
func (s *Store) UpdateDocument(ctx context.Context, doc storage.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	slug := strings.TrimSpace(doc.Slug)
	if slug == "" {
		return fmt.Errorf("slug is required")
	}
	if len(doc.Body) == 0 {
		return fmt.Errorf("body is required")
	}
	updatedAt := doc.UpdatedAt.UTC()
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE documents
		    SET name = ?, body = ?, updated_at = ?
		  WHERE slug = ?`,
		strings.TrimSpace(doc.Name),
		doc.Body,
		toMillis(updatedAt),
		slug,
	)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteDocument removes a document and, via cascade, its revisions.
func (s *Store) DeleteDocument(ctx context.Context, slug string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return fmt.Errorf("slug is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM documents WHERE slug = ?`, slug)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListDocuments returns one page of document records ordered by slug.
func (s *Store) ListDocuments(ctx context.Context, pageSize int, pageToken string) (storage.DocumentPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.DocumentPage{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.DocumentPage{}, fmt.Errorf("storage is not configured")
	}
	if pageSize <= 0 {
		return storage.DocumentPage{}, fmt.Errorf("page size must be greater than zero")
	}
	pageToken = strings.TrimSpace(pageToken)

	page := storage.DocumentPage{
		Documents: make([]storage.Document, 0, pageSize),
	}

	var (
		rows *sql.Rows
		err  error
	)
	if pageToken == "" {
		rows, err = s.sqlDB.QueryContext(
			ctx,
			`SELECT slug, name, body, created_at, updated_at
			   FROM documents
			  ORDER BY slug ASC
			  LIMIT ?`,
			pageSize+1,
		)
	} else {
		rows, err = s.sqlDB.QueryContext(
			ctx,
			`SELECT slug, name, body, created_at, updated_at
			   FROM documents
			  WHERE slug > ?
			  ORDER BY slug ASC
			  LIMIT ?`,
			pageToken,
			pageSize+1,
		)
	}
	if err != nil {
		return storage.DocumentPage{}, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var doc storage.Document
		var createdAt int64
		var updatedAt int64
		if err := rows.Scan(&doc.Slug, &doc.Name, &doc.Body, &createdAt, &updatedAt); err != nil {
			return storage.DocumentPage{}, fmt.Errorf("list documents: %w", err)
		}
		doc.CreatedAt = fromMillis(createdAt)
		doc.UpdatedAt = fromMillis(updatedAt)
		page.Documents = append(page.Documents, doc)
	}
	if err := rows.Err(); err != nil {
		return storage.DocumentPage{}, fmt.Errorf("list documents: %w", err)
	}
	if len(page.Documents) > pageSize {
		page.NextPageToken = page.Documents[pageSize-1].Slug
		page.Documents = page.Documents[:pageSize]
	}

	return page, nil
}

// AddRevision appends a snapshot for a document, assigning the next sequence
// number, and prunes older revisions beyond keep when keep is positive.
func (s *Store) AddRevision(ctx context.Context, revision storage.Revision, keep int) (storage.Revision, error) {
	if err := ctx.Err(); err != nil {
		return storage.Revision{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Revision{}, fmt.Errorf("storage is not configured")
	}
	slug := strings.TrimSpace(revision.Slug)
	if slug == "" {
		return storage.Revision{}, fmt.Errorf("slug is required")
	}
	if len(revision.Body) == 0 {
		return storage.Revision{}, fmt.Errorf("body is required")
	}
	createdAt := revision.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return storage.Revision{}, fmt.Errorf("begin revision transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var seq int64
	if err := tx.QueryRowContext(
		ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM document_revisions WHERE slug = ?`,
		slug,
	).Scan(&seq); err != nil {
		return storage.Revision{}, fmt.Errorf("next revision seq: %w", err)
	}

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO document_revisions (slug, seq, note, body, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		slug,
		seq,
		strings.TrimSpace(revision.Note),
		revision.Body,
		toMillis(createdAt),
	); err != nil {
		if isForeignKeyViolation(err) {
			return storage.Revision{}, storage.ErrNotFound
		}
		return storage.Revision{}, fmt.Errorf("add revision: %w", err)
	}

	if keep > 0 {
		if _, err := tx.ExecContext(
			ctx,
			`DELETE FROM document_revisions WHERE slug = ? AND seq <= ?`,
			slug,
			seq-int64(keep),
		); err != nil {
			return storage.Revision{}, fmt.Errorf("prune revisions: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storage.Revision{}, fmt.Errorf("commit revision: %w", err)
	}

	revision.Slug = slug
	revision.Seq = seq
	revision.CreatedAt = createdAt
	return revision, nil
}

// ListRevisions returns the most recent revisions for a slug, newest first.
func (s *Store) ListRevisions(ctx context.Context, slug string, limit int) ([]storage.Revision, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, fmt.Errorf("slug is required")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT slug, seq, note, body, created_at
		   FROM document_revisions
		  WHERE slug = ?
		  ORDER BY seq DESC
		  LIMIT ?`,
		slug,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	defer rows.Close()

	revisions := make([]storage.Revision, 0, limit)
	for rows.Next() {
		var revision storage.Revision
		var createdAt int64
		if err := rows.Scan(&revision.Slug, &revision.Seq, &revision.Note, &revision.Body, &createdAt); err != nil {
			return nil, fmt.Errorf("list revisions: %w", err)
		}
		revision.CreatedAt = fromMillis(createdAt)
		revisions = append(revisions, revision)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	return revisions, nil
}

// GetRevision returns one revision by slug and sequence number.
func (s *Store) GetRevision(ctx context.Context, slug string, seq int64) (storage.Revision, error) {
	if err := ctx.Err(); err != nil {
		return storage.Revision{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Revision{}, fmt.Errorf("storage is not configured")
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return storage.Revision{}, fmt.Errorf("slug is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT slug, seq, note, body, created_at
		   FROM document_revisions
		  WHERE slug = ? AND seq = ?`,
		slug,
		seq,
	)

	var revision storage.Revision
	var createdAt int64
	err := row.Scan(&revision.Slug, &revision.Seq, &revision.Note, &revision.Body, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Revision{}, storage.ErrNotFound
		}
		return storage.Revision{}, fmt.Errorf("get revision: %w", err)
	}
	revision.CreatedAt = fromMillis(createdAt)
	return revision, nil
}

func isDocumentUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") &&
		strings.Contains(message, "documents.slug")
}

func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		if sqliteErr.Code() == sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY {
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint failed")
}

var _ storage.DocumentStore = (*Store)(nil)
