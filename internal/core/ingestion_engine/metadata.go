package ingestion_engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/markdave123-py/Docuchat/internal/models"
)

const metadataSystemPrompt = `You extract bibliographic metadata from document excerpts.
Respond with a single JSON object and nothing else, using exactly these keys:
{"title": "", "authors": [], "organization": "", "publication_date": "", "keywords": [], "abstract": ""}
Leave a field empty when the excerpts do not state it. Never invent values.`

const metadataMaxChunks = 4

type extractedMetadata struct {
	Title           string   `json:"title"`
	Authors         []string `json:"authors"`
	Organization    string   `json:"organization"`
	PublicationDate string   `json:"publication_date"`
	Keywords        []string `json:"keywords"`
	Abstract        string   `json:"abstract"`
}

const metadataQuery = "title author organization publication date abstract"

// extractMetadata asks the LLM for bibliographic fields over a
// retrieval-selected excerpt of the just-indexed chunks, then fills
// only the fields the record does not already have. Unparseable model
// output is an error the caller downgrades to a warning.
func (i *DocumentIngestor) extractMetadata(ctx context.Context, docID string, scope models.Scope) error {
	excerpts, err := i.metadataExcerpts(ctx, docID, scope)
	if err != nil {
		return err
	}
	if len(excerpts) == 0 {
		return nil
	}

	var b strings.Builder
	for _, e := range excerpts {
		b.WriteString(e)
		b.WriteString("\n\n")
	}

	raw, err := i.llm.Generate(ctx, metadataSystemPrompt, b.String())
	if err != nil {
		return err
	}

	var meta extractedMetadata
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &meta); err != nil {
		return fmt.Errorf("metadata response not parseable: %w", err)
	}

	doc, err := i.store.GetDocument(ctx, scope, docID)
	if err != nil {
		return err
	}

	upd := &models.DocumentUpdate{}
	if doc.Title == "" && meta.Title != "" {
		upd.Title = &meta.Title
	}
	if len(doc.Authors) == 0 && len(meta.Authors) > 0 {
		upd.Authors = meta.Authors
	}
	if doc.Organization == "" && meta.Organization != "" {
		upd.Organization = &meta.Organization
	}
	if doc.PublicationDate == "" && meta.PublicationDate != "" {
		upd.PublicationDate = &meta.PublicationDate
	}
	if len(doc.Keywords) == 0 && len(meta.Keywords) > 0 {
		upd.Keywords = meta.Keywords
	}
	if doc.Abstract == "" && meta.Abstract != "" {
		upd.Abstract = &meta.Abstract
	}
	if upd.Empty() {
		return nil
	}
	return i.store.UpdateDocument(ctx, scope, docID, upd)
}

// metadataExcerpts picks chunk texts to prompt over: a hybrid query
// scoped to the document when a vector is available, falling back to
// the document's leading chunks.
func (i *DocumentIngestor) metadataExcerpts(ctx context.Context, docID string, scope models.Scope) ([]string, error) {
	if vec, err := i.embedder.EmbedText(ctx, metadataQuery); err == nil {
		hits, err := i.store.HybridSearch(ctx, scope, docID, metadataQuery, vec, metadataMaxChunks)
		if err != nil {
			return nil, err
		}
		if len(hits) > 0 {
			out := make([]string, len(hits))
			for idx, h := range hits {
				out[idx] = h.ChunkText
			}
			return out, nil
		}
	}

	chunks, err := i.store.GetChunksByDocument(ctx, scope, docID)
	if err != nil {
		return nil, err
	}
	if len(chunks) > metadataMaxChunks {
		chunks = chunks[:metadataMaxChunks]
	}
	out := make([]string, len(chunks))
	for idx, c := range chunks {
		out[idx] = c.ChunkText
	}
	return out, nil
}

// stripCodeFence unwraps the ```json fences some models insist on.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
