package models

import (
	"errors"
	"time"
)

// User represents an authenticated user of the system.
type User struct {
	ID           string    `db:"id" json:"id"`
	FirstName    string    `db:"first_name" json:"first_name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ScopeKind discriminates the two owner-scope variants.
type ScopeKind string

const (
	ScopeUser  ScopeKind = "user"
	ScopeGroup ScopeKind = "group"
)

// Scope is the personal-or-group partition a document and its chunks
// belong to. Every store query carries exactly one scope; there is no
// "all scopes" variant on purpose.
type Scope struct {
	Kind ScopeKind `json:"kind"`
	ID   string    `json:"id"`
}

func UserScope(userID string) Scope   { return Scope{Kind: ScopeUser, ID: userID} }
func GroupScope(groupID string) Scope { return Scope{Kind: ScopeGroup, ID: groupID} }

func (s Scope) Validate() error {
	if s.ID == "" {
		return errors.New("scope id is empty")
	}
	if s.Kind != ScopeUser && s.Kind != ScopeGroup {
		return errors.New("scope kind must be user or group")
	}
	return nil
}

// Document is one version of a logical document. Exactly one record per
// (file_name, scope) holds the maximum version; older versions stay
// behind as immutable history until explicitly deleted.
type Document struct {
	ID                 string    `db:"id" json:"id"`
	OwnerKind          ScopeKind `db:"owner_kind" json:"owner_kind"`
	OwnerID            string    `db:"owner_id" json:"owner_id"`
	FileName           string    `db:"file_name" json:"file_name"`
	Version            int       `db:"version" json:"version"`
	Status             string    `db:"status" json:"status"`
	PercentageComplete float64   `db:"percentage_complete" json:"percentage_complete"`
	NumChunks          int       `db:"num_chunks" json:"num_chunks"`
	NumberOfPages      int       `db:"number_of_pages" json:"number_of_pages"`
	CurrentFileChunk   int       `db:"current_file_chunk" json:"current_file_chunk"`
	NumFileChunks      int       `db:"num_file_chunks" json:"num_file_chunks"`
	StorageURL         string    `db:"storage_url" json:"storage_url,omitempty"`
	UploadDate         time.Time `db:"upload_date" json:"upload_date"`
	LastUpdated        time.Time `db:"last_updated" json:"last_updated"`

	DocumentClassification string   `db:"document_classification" json:"document_classification,omitempty"`
	Title                  string   `db:"title" json:"title,omitempty"`
	Authors                []string `db:"authors" json:"authors,omitempty"`
	Organization           string   `db:"organization" json:"organization,omitempty"`
	PublicationDate        string   `db:"publication_date" json:"publication_date,omitempty"`
	Keywords               []string `db:"keywords" json:"keywords,omitempty"`
	Abstract               string   `db:"abstract" json:"abstract,omitempty"`
}

// Scope reconstructs the owner scope of the record.
func (d *Document) Scope() Scope { return Scope{Kind: d.OwnerKind, ID: d.OwnerID} }

// DocumentUpdate is the explicit partial update applied by the ingestion
// task. Nil fields are left untouched. NumChunksDelta is applied
// atomically against the stored value, never read-modify-written in Go.
type DocumentUpdate struct {
	Status  *string
	Percent *float64
	// ForcePercent bypasses the monotonic clamp; only terminal
	// transitions set it. Failure leaves Percent nil so the bar
	// freezes where it was.
	ForcePercent bool

	NumChunksDelta   int
	NumberOfPages    *int
	CurrentFileChunk *int
	NumFileChunks    *int
	StorageURL       *string

	DocumentClassification *string
	Title                  *string
	Authors                []string
	Organization           *string
	PublicationDate        *string
	Keywords               []string
	Abstract               *string
}

// Empty reports whether the update would change nothing.
func (u *DocumentUpdate) Empty() bool {
	return u.Status == nil && u.Percent == nil && u.NumChunksDelta == 0 &&
		u.NumberOfPages == nil && u.CurrentFileChunk == nil && u.NumFileChunks == nil &&
		u.StorageURL == nil && u.DocumentClassification == nil && u.Title == nil &&
		u.Authors == nil && u.Organization == nil && u.PublicationDate == nil &&
		u.Keywords == nil && u.Abstract == nil
}

// Chunk is one indexed unit of text plus its embedding. ID is derived
// from the parent document id and the sequence number so re-indexing
// the same unit overwrites instead of duplicating.
type Chunk struct {
	ID            string    `db:"id" json:"id"`
	DocumentID    string    `db:"document_id" json:"document_id"`
	ChunkSequence int       `db:"chunk_sequence" json:"chunk_sequence"`
	ChunkText     string    `db:"chunk_text" json:"chunk_text"`
	Embedding     []float32 `db:"embedding" json:"-"`
	FileName      string    `db:"file_name" json:"file_name"`
	OwnerKind     ScopeKind `db:"owner_kind" json:"owner_kind"`
	OwnerID       string    `db:"owner_id" json:"owner_id"`
	Version       int       `db:"version" json:"version"`
	UploadDate    time.Time `db:"upload_date" json:"upload_date"`

	Title                  string `db:"title" json:"title,omitempty"`
	Author                 string `db:"author" json:"author,omitempty"`
	ChunkKeywords          string `db:"chunk_keywords" json:"chunk_keywords,omitempty"`
	ChunkSummary           string `db:"chunk_summary" json:"chunk_summary,omitempty"`
	DocumentClassification string `db:"document_classification" json:"document_classification,omitempty"`
}

// SearchHit is one ranked retrieval result with citation metadata.
type SearchHit struct {
	ChunkID       string  `json:"chunk_id"`
	DocumentID    string  `json:"document_id"`
	ChunkText     string  `json:"chunk_text"`
	FileName      string  `json:"file_name"`
	Version       int     `json:"version"`
	ChunkSequence int     `json:"chunk_sequence"`
	Score         float64 `json:"score"`
	CitationURL   string  `json:"citation_url,omitempty"`
}
