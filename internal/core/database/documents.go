package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/markdave123-py/Docuchat/internal/core"
	"github.com/markdave123-py/Docuchat/internal/models"
)

const documentColumns = `
	id, owner_kind, owner_id, file_name, version, status, percentage_complete,
	num_chunks, number_of_pages, current_file_chunk, num_file_chunks, storage_url,
	upload_date, last_updated, document_classification, title, authors,
	organization, publication_date, keywords, abstract`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(r rowScanner) (*models.Document, error) {
	var d models.Document
	var authors, keywords []byte
	err := r.Scan(
		&d.ID, &d.OwnerKind, &d.OwnerID, &d.FileName, &d.Version, &d.Status, &d.PercentageComplete,
		&d.NumChunks, &d.NumberOfPages, &d.CurrentFileChunk, &d.NumFileChunks, &d.StorageURL,
		&d.UploadDate, &d.LastUpdated, &d.DocumentClassification, &d.Title, &authors,
		&d.Organization, &d.PublicationDate, &keywords, &d.Abstract,
	)
	if err != nil {
		return nil, err
	}
	d.Authors = scanList(authors)
	d.Keywords = scanList(keywords)
	return &d, nil
}

// CreateDocument inserts the record with version = max(existing)+1 for
// its (file_name, scope) chain. Two concurrent uploads of the same file
// name race on the read-then-write; the unique index on
// (owner_kind, owner_id, file_name, version) turns the loser into a
// 23505, which we absorb by recomputing. Versions stay unique and
// gapless.
func (c *DatabaseClient) CreateDocument(ctx context.Context, doc *models.Document) error {
	if doc == nil {
		return errors.New("nil document")
	}
	const q = `
		INSERT INTO documents
			(id, owner_kind, owner_id, file_name, version, status, percentage_complete,
			 num_chunks, number_of_pages, current_file_chunk, num_file_chunks, storage_url)
		SELECT $1, $2, $3, $4, COALESCE(MAX(version), 0) + 1, $5, $6, 0, 0, 0, 1, $7
		FROM documents
		WHERE owner_kind = $2 AND owner_id = $3 AND file_name = $4
		RETURNING version
	`
	const maxAttempts = 5
	for attempt := 1; ; attempt++ {
		err := c.db.QueryRowContext(ctx, q,
			doc.ID, doc.OwnerKind, doc.OwnerID, doc.FileName,
			doc.Status, doc.PercentageComplete, doc.StorageURL,
		).Scan(&doc.Version)
		if err == nil {
			return nil
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && attempt < maxAttempts {
			c.log.Warn("version conflict on concurrent upload, retrying",
				"file_name", doc.FileName, "attempt", attempt)
			continue
		}
		return fmt.Errorf("create document: %w", err)
	}
}

func (c *DatabaseClient) GetDocument(ctx context.Context, scope models.Scope, id string) (*models.Document, error) {
	q := `SELECT` + documentColumns + `
		FROM documents
		WHERE id = $1 AND owner_kind = $2 AND owner_id = $3`
	d, err := scanDocument(c.db.QueryRowContext(ctx, q, id, scope.Kind, scope.ID))
	if err == sql.ErrNoRows {
		return nil, core.ErrStoreNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (c *DatabaseClient) GetLatest(ctx context.Context, scope models.Scope, fileName string) (*models.Document, error) {
	q := `SELECT` + documentColumns + `
		FROM documents
		WHERE owner_kind = $1 AND owner_id = $2 AND file_name = $3
		ORDER BY version DESC
		LIMIT 1`
	d, err := scanDocument(c.db.QueryRowContext(ctx, q, scope.Kind, scope.ID, fileName))
	if err == sql.ErrNoRows {
		return nil, core.ErrStoreNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (c *DatabaseClient) GetVersion(ctx context.Context, scope models.Scope, fileName string, version int) (*models.Document, error) {
	q := `SELECT` + documentColumns + `
		FROM documents
		WHERE owner_kind = $1 AND owner_id = $2 AND file_name = $3 AND version = $4`
	d, err := scanDocument(c.db.QueryRowContext(ctx, q, scope.Kind, scope.ID, fileName, version))
	if err == sql.ErrNoRows {
		return nil, core.ErrStoreNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (c *DatabaseClient) ListVersions(ctx context.Context, scope models.Scope, fileName string) ([]models.Document, error) {
	q := `SELECT` + documentColumns + `
		FROM documents
		WHERE owner_kind = $1 AND owner_id = $2 AND file_name = $3
		ORDER BY version ASC`
	return c.queryDocuments(ctx, q, scope.Kind, scope.ID, fileName)
}

func (c *DatabaseClient) ListDocuments(ctx context.Context, scope models.Scope) ([]models.Document, error) {
	q := `SELECT` + documentColumns + `
		FROM documents
		WHERE owner_kind = $1 AND owner_id = $2
		ORDER BY upload_date DESC`
	return c.queryDocuments(ctx, q, scope.Kind, scope.ID)
}

func (c *DatabaseClient) queryDocuments(ctx context.Context, q string, args ...interface{}) ([]models.Document, error) {
	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// UpdateDocument applies the partial update in one statement. The chunk
// counter increments against the stored value; the percentage only
// moves forward unless ForcePercent is set (terminal transitions).
// Metadata changes then propagate to already-indexed chunks; a failure
// there is logged, never returned.
func (c *DatabaseClient) UpdateDocument(ctx context.Context, scope models.Scope, id string, upd *models.DocumentUpdate) error {
	if upd == nil || upd.Empty() {
		return nil
	}
	const q = `
		UPDATE documents SET
			status = COALESCE($4, status),
			percentage_complete = CASE
				WHEN $5::double precision IS NULL THEN percentage_complete
				WHEN $6::boolean THEN $5
				ELSE GREATEST(percentage_complete, LEAST($5, 99))
			END,
			num_chunks = num_chunks + $7,
			number_of_pages = COALESCE($8, number_of_pages),
			current_file_chunk = COALESCE($9, current_file_chunk),
			num_file_chunks = COALESCE($10, num_file_chunks),
			storage_url = COALESCE($11, storage_url),
			document_classification = COALESCE($12, document_classification),
			title = COALESCE($13, title),
			authors = COALESCE($14, authors),
			organization = COALESCE($15, organization),
			publication_date = COALESCE($16, publication_date),
			keywords = COALESCE($17, keywords),
			abstract = COALESCE($18, abstract),
			last_updated = now()
		WHERE id = $1 AND owner_kind = $2 AND owner_id = $3
	`
	res, err := c.db.ExecContext(ctx, q,
		id, scope.Kind, scope.ID,
		upd.Status, upd.Percent, upd.ForcePercent, upd.NumChunksDelta,
		upd.NumberOfPages, upd.CurrentFileChunk, upd.NumFileChunks, upd.StorageURL,
		upd.DocumentClassification, upd.Title, jsonList(upd.Authors),
		upd.Organization, upd.PublicationDate, jsonList(upd.Keywords), upd.Abstract,
	)
	if err != nil {
		return fmt.Errorf("update document %s: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		// Record was deleted under us. The ingestion task treats this
		// as a fence and stops instead of recreating anything.
		return core.ErrStoreNotFound
	}

	if upd.Title != nil || upd.Authors != nil || upd.DocumentClassification != nil {
		c.propagateToChunks(ctx, scope, id, upd)
	}
	return nil
}

// propagateToChunks pushes document-level metadata down to every
// already-indexed chunk. Best effort: chunk rows are rewritten on the
// next full re-index anyway.
func (c *DatabaseClient) propagateToChunks(ctx context.Context, scope models.Scope, id string, upd *models.DocumentUpdate) {
	var author *string
	if upd.Authors != nil {
		joined := ""
		if len(upd.Authors) > 0 {
			joined = upd.Authors[0]
			for _, a := range upd.Authors[1:] {
				joined += ", " + a
			}
		}
		author = &joined
	}
	const q = `
		UPDATE document_chunks SET
			title = COALESCE($4, title),
			author = COALESCE($5, author),
			document_classification = COALESCE($6, document_classification)
		WHERE document_id = $1 AND owner_kind = $2 AND owner_id = $3
	`
	if _, err := c.db.ExecContext(ctx, q, id, scope.Kind, scope.ID,
		upd.Title, author, upd.DocumentClassification); err != nil {
		c.log.Warn("chunk metadata propagation failed", "document_id", id, "error", err)
	}
}

// DeleteDocument removes one version record and its chunks.
func (c *DatabaseClient) DeleteDocument(ctx context.Context, scope models.Scope, id string) error {
	if err := c.DeleteByDocument(ctx, scope, id); err != nil {
		return err
	}
	const q = `
		DELETE FROM documents
		WHERE id = $1 AND owner_kind = $2 AND owner_id = $3
	`
	res, err := c.db.ExecContext(ctx, q, id, scope.Kind, scope.ID)
	if err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return core.ErrStoreNotFound
	}
	return nil
}
