package core

import (
	"context"

	"github.com/markdave123-py/Docuchat/internal/models"
)

// DocumentStore holds the versioned metadata record per logical
// document. Every operation is keyed by exactly one owner scope; the
// store never answers cross-scope reads.
type DocumentStore interface {
	// CreateDocument assigns version = max(existing)+1 for the
	// (file_name, scope) chain and inserts the record. Safe under
	// concurrent uploads of the same file name.
	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocument(ctx context.Context, scope models.Scope, id string) (*models.Document, error)
	GetLatest(ctx context.Context, scope models.Scope, fileName string) (*models.Document, error)
	GetVersion(ctx context.Context, scope models.Scope, fileName string, version int) (*models.Document, error)
	ListVersions(ctx context.Context, scope models.Scope, fileName string) ([]models.Document, error)
	ListDocuments(ctx context.Context, scope models.Scope) ([]models.Document, error)
	// UpdateDocument applies the partial update atomically. Returns
	// ErrStoreNotFound when the record was deleted underneath the
	// ingestion task.
	UpdateDocument(ctx context.Context, scope models.Scope, id string, upd *models.DocumentUpdate) error
	// DeleteDocument removes the record and its chunks. version <= 0
	// deletes every version of the record's file name chain member.
	DeleteDocument(ctx context.Context, scope models.Scope, id string) error
}

// ChunkIndex is the search index holding one entry per chunk.
type ChunkIndex interface {
	UpsertChunk(ctx context.Context, chunk *models.Chunk) error
	// HybridSearch issues one combined keyword+vector query. documentID
	// may be empty to search the whole scope. vec may be nil for a
	// keyword-only query.
	HybridSearch(ctx context.Context, scope models.Scope, documentID, query string, vec []float32, topN int) ([]models.SearchHit, error)
	GetChunksByDocument(ctx context.Context, scope models.Scope, documentID string) ([]models.Chunk, error)
	DeleteByDocument(ctx context.Context, scope models.Scope, documentID string) error
	DeleteByDocumentAndVersion(ctx context.Context, scope models.Scope, documentID string, version int) error
}

// UserStore covers the thin auth surface kept around the pipeline.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Store is the full persistence surface backed by one Postgres client.
type Store interface {
	UserStore
	DocumentStore
	ChunkIndex
	Close() error
}
