package services

import (
	"context"
	"strings"
	"time"

	"github.com/markdave123-py/Docuchat/internal/core"
	objectclient "github.com/markdave123-py/Docuchat/internal/core/object-client"
	"github.com/markdave123-py/Docuchat/internal/logger"
	"github.com/markdave123-py/Docuchat/internal/models"
)

const defaultTopN = 10

type SearchService struct {
	store    core.Store
	embedder core.EmbeddingProvider
	log      *logger.Logger

	citationTTL time.Duration
	signer      objectclient.URLSigner
	bucket      string
}

func NewSearchService(store core.Store, embedder core.EmbeddingProvider, log *logger.Logger) *SearchService {
	return &SearchService{store: store, embedder: embedder, log: log}
}

// EnableCitations turns on pre-signed source links in search results.
func (s *SearchService) EnableCitations(signer objectclient.URLSigner, bucket string, ttl time.Duration) {
	s.signer = signer
	s.bucket = bucket
	s.citationTTL = ttl
}

// Search embeds the query and runs one hybrid keyword+vector pass over
// the caller's scope. documentID narrows the search to one document.
// An empty query with no results is not an error: the handler renders
// an empty list either way.
func (s *SearchService) Search(ctx context.Context, scope models.Scope, documentID, query string, topN int) ([]models.SearchHit, error) {
	if err := scope.Validate(); err != nil {
		return nil, &core.ValidationError{Reason: err.Error()}
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &core.ValidationError{Reason: "query is empty"}
	}
	if topN <= 0 {
		topN = defaultTopN
	}

	vec, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		// An embedding outage yields an empty result set, not a
		// transport error. Callers treat no results as a valid outcome.
		s.log.Warn("query embedding failed, returning no results", "error", err)
		return nil, nil
	}

	hits, err := s.store.HybridSearch(ctx, scope, documentID, query, vec, topN)
	if err != nil {
		return nil, err
	}

	if s.signer != nil {
		s.attachCitations(ctx, scope, hits)
	}
	return hits, nil
}

func (s *SearchService) attachCitations(ctx context.Context, scope models.Scope, hits []models.SearchHit) {
	for i := range hits {
		key := objectclient.CitationKey(scope, hits[i].DocumentID, hits[i].FileName)
		url, err := s.signer.PresignGet(ctx, s.bucket, key, s.citationTTL)
		if err != nil {
			s.log.Debug("citation presign failed", "chunk_id", hits[i].ChunkID, "error", err)
			continue
		}
		hits[i].CitationURL = url
	}
}
