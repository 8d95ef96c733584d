// Package storage defines persistence contracts for funnel documents.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a requested document record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a uniqueness-constrained document already exists.
	ErrAlreadyExists = errors.New("record already exists")
)

// Document stores one persisted funnel document keyed by slug. Body holds
// the exported funnel JSON verbatim.
type Document struct {
	Slug      string
	Name      string
	Body      []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DocumentPage stores one page of document records.
type DocumentPage struct {
	Documents     []Document
	NextPageToken string
}

// Revision stores one immutable snapshot of a document body. Seq increases
// per slug; newer revisions carry higher values.
type Revision struct {
	Slug      string
	Seq       int64
	Note      string
	Body      []byte
	CreatedAt time.Time
}

// DocumentStore persists funnel documents and their revision history.
type DocumentStore interface {
	CreateDocument(ctx context.Context, doc Document) error
	GetDocument(ctx context.Context, slug string) (Document, error)
	UpdateDocument(ctx context.Context, doc Document) error
	DeleteDocument(ctx context.Context, slug string) error
	ListDocuments(ctx context.Context, pageSize int, pageToken string) (DocumentPage, error)

	// AddRevision appends a snapshot for a document and, when keep is
	// positive, prunes revisions older than the most recent keep.
	AddRevision(ctx context.Context, revision Revision, keep int) (Revision, error)
	ListRevisions(ctx context.Context, slug string, limit int) ([]Revision, error)
	GetRevision(ctx context.Context, slug string, seq int64) (Revision, error)
}
