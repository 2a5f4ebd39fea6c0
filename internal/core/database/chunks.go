package db

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/markdave123-py/Docuchat/internal/core"
	"github.com/markdave123-py/Docuchat/internal/models"
)

// UpsertChunk writes one chunk entry. The deterministic id makes
// re-indexing overwrite instead of duplicate; the whole row is replaced
// on conflict so enrichment updates never leave a partially old entry.
func (c *DatabaseClient) UpsertChunk(ctx context.Context, chunk *models.Chunk) error {
	const q = `
		INSERT INTO document_chunks
			(id, document_id, chunk_sequence, chunk_text, embedding, file_name,
			 owner_kind, owner_id, version, upload_date, title, author,
			 chunk_keywords, chunk_summary, document_classification)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10, now()), $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			document_id = EXCLUDED.document_id,
			chunk_sequence = EXCLUDED.chunk_sequence,
			chunk_text = EXCLUDED.chunk_text,
			embedding = EXCLUDED.embedding,
			file_name = EXCLUDED.file_name,
			owner_kind = EXCLUDED.owner_kind,
			owner_id = EXCLUDED.owner_id,
			version = EXCLUDED.version,
			upload_date = EXCLUDED.upload_date,
			title = EXCLUDED.title,
			author = EXCLUDED.author,
			chunk_keywords = EXCLUDED.chunk_keywords,
			chunk_summary = EXCLUDED.chunk_summary,
			document_classification = EXCLUDED.document_classification
	`
	var uploadDate interface{}
	if !chunk.UploadDate.IsZero() {
		uploadDate = chunk.UploadDate
	}
	_, err := c.db.ExecContext(ctx, q,
		chunk.ID, chunk.DocumentID, chunk.ChunkSequence, chunk.ChunkText,
		pgvector.NewVector(chunk.Embedding), chunk.FileName,
		chunk.OwnerKind, chunk.OwnerID, chunk.Version, uploadDate,
		chunk.Title, chunk.Author, chunk.ChunkKeywords, chunk.ChunkSummary,
		chunk.DocumentClassification,
	)
	if err != nil {
		return &core.IndexWriteError{ChunkID: chunk.ID, Err: err}
	}
	return nil
}

// HybridSearch fuses a keyword ranking and a vector ranking with
// reciprocal rank fusion (k=60). Both arms are restricted to the owner
// scope; documentID further narrows to one document when set. A nil
// vector degrades to keyword-only ranking.
func (c *DatabaseClient) HybridSearch(ctx context.Context, scope models.Scope, documentID, query string, vec []float32, topN int) ([]models.SearchHit, error) {
	if topN <= 0 {
		topN = 10
	}
	const q = `
		WITH base AS (
			SELECT id, document_id, chunk_sequence, chunk_text, file_name, version, embedding
			FROM document_chunks
			WHERE owner_kind = $1 AND owner_id = $2
			  AND ($3 = '' OR document_id = $3)
		),
		lexical AS (
			SELECT id, row_number() OVER (ORDER BY r DESC) AS rnk
			FROM (
				SELECT id, ts_rank_cd(to_tsvector('english', chunk_text),
				                      websearch_to_tsquery('english', $4)) AS r
				FROM base
				WHERE to_tsvector('english', chunk_text) @@ websearch_to_tsquery('english', $4)
				ORDER BY r DESC
				LIMIT 50
			) t
		),
		semantic AS (
			SELECT id, row_number() OVER (ORDER BY d ASC) AS rnk
			FROM (
				SELECT id, embedding <=> $5 AS d
				FROM base
				WHERE $5::vector IS NOT NULL AND embedding IS NOT NULL
				ORDER BY d ASC
				LIMIT 50
			) t
		)
		SELECT b.id, b.document_id, b.chunk_sequence, b.chunk_text, b.file_name, b.version,
		       COALESCE(1.0 / (60 + l.rnk), 0) + COALESCE(1.0 / (60 + s.rnk), 0) AS score
		FROM base b
		LEFT JOIN lexical l ON l.id = b.id
		LEFT JOIN semantic s ON s.id = b.id
		WHERE l.id IS NOT NULL OR s.id IS NOT NULL
		ORDER BY score DESC, b.chunk_sequence ASC
		LIMIT $6
	`
	var vecArg interface{}
	if vec != nil {
		vecArg = pgvector.NewVector(vec)
	}
	rows, err := c.db.QueryContext(ctx, q, scope.Kind, scope.ID, documentID, query, vecArg, topN)
	if err != nil {
		return nil, fmt.Errorf("hybrid search: %w", err)
	}
	defer rows.Close()

	var out []models.SearchHit
	for rows.Next() {
		var h models.SearchHit
		if err := rows.Scan(&h.ChunkID, &h.DocumentID, &h.ChunkSequence, &h.ChunkText,
			&h.FileName, &h.Version, &h.Score); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) GetChunksByDocument(ctx context.Context, scope models.Scope, documentID string) ([]models.Chunk, error) {
	const q = `
		SELECT id, document_id, chunk_sequence, chunk_text, embedding, file_name,
		       owner_kind, owner_id, version, upload_date, title, author,
		       chunk_keywords, chunk_summary, document_classification
		FROM document_chunks
		WHERE document_id = $1 AND owner_kind = $2 AND owner_id = $3
		ORDER BY chunk_sequence ASC
	`
	rows, err := c.db.QueryContext(ctx, q, documentID, scope.Kind, scope.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Chunk
	for rows.Next() {
		var ch models.Chunk
		var emb pgvector.Vector
		if err := rows.Scan(&ch.ID, &ch.DocumentID, &ch.ChunkSequence, &ch.ChunkText, &emb,
			&ch.FileName, &ch.OwnerKind, &ch.OwnerID, &ch.Version, &ch.UploadDate,
			&ch.Title, &ch.Author, &ch.ChunkKeywords, &ch.ChunkSummary,
			&ch.DocumentClassification); err != nil {
			return nil, err
		}
		ch.Embedding = emb.Slice()
		out = append(out, ch)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) DeleteByDocument(ctx context.Context, scope models.Scope, documentID string) error {
	const q = `
		DELETE FROM document_chunks
		WHERE document_id = $1 AND owner_kind = $2 AND owner_id = $3
	`
	if _, err := c.db.ExecContext(ctx, q, documentID, scope.Kind, scope.ID); err != nil {
		return fmt.Errorf("delete chunks for %s: %w", documentID, err)
	}
	return nil
}

func (c *DatabaseClient) DeleteByDocumentAndVersion(ctx context.Context, scope models.Scope, documentID string, version int) error {
	const q = `
		DELETE FROM document_chunks
		WHERE document_id = $1 AND owner_kind = $2 AND owner_id = $3 AND version = $4
	`
	if _, err := c.db.ExecContext(ctx, q, documentID, scope.Kind, scope.ID, version); err != nil {
		return fmt.Errorf("delete chunks for %s v%d: %w", documentID, version, err)
	}
	return nil
}
