package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for store lookups. Handlers translate these to 404/403;
// the ingestion task treats ErrStoreNotFound from a progress update as a
// delete fence and aborts instead of resurrecting the record.
var (
	ErrStoreNotFound     = errors.New("document or version not found")
	ErrUnauthorizedScope = errors.New("owner scope mismatch")
)

// ValidationError rejects an upload before any pipeline work starts.
// User-facing, never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "validation failed: " + e.Reason }

// UnsupportedTypeError means no chunker is registered for the extension.
type UnsupportedTypeError struct {
	Extension string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported file type %q", e.Extension)
}

// ExtractionError wraps a failure or timeout from a content-extraction
// step (docconv, transcription, video indexing).
type ExtractionError struct {
	Stage string
	Err   error
}

func (e *ExtractionError) Error() string { return fmt.Sprintf("extraction (%s): %v", e.Stage, e.Err) }
func (e *ExtractionError) Unwrap() error { return e.Err }

// EmbeddingError is returned once embedding retries are exhausted.
// Never nil-as-success: callers either get vectors or this.
type EmbeddingError struct {
	Attempts int
	Err      error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding failed after %d attempts: %v", e.Attempts, e.Err)
}
func (e *EmbeddingError) Unwrap() error { return e.Err }

// IndexWriteError wraps a chunk upsert failure.
type IndexWriteError struct {
	ChunkID string
	Err     error
}

func (e *IndexWriteError) Error() string {
	return fmt.Sprintf("index write for chunk %s: %v", e.ChunkID, e.Err)
}
func (e *IndexWriteError) Unwrap() error { return e.Err }
