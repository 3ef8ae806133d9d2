package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/onboardiq/onboardiq/internal/domain"
	"github.com/onboardiq/onboardiq/internal/telemetry"
)

// SearchService answers semantic queries against the vector index.
type SearchService struct {
	index    VectorIndex
	embedder EmbeddingClient
}

func NewSearchService(index VectorIndex, embedder EmbeddingClient) *SearchService {
	return &SearchService{
		index:    index,
		embedder: embedder,
	}
}

// Search embeds the query and returns up to limit matches ordered by
// descending similarity, each tagged with its relevance tier. Transient
// backend failures degrade to an empty result set; only invalid input
// and missing configuration surface as errors.
func (s *SearchService) Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	if limit <= 0 {
		return nil, domain.ErrInvalidSearchLimit
	}
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrEmptyQuery
	}

	ctx, span := telemetry.StartSpan(ctx, "search.semantic", telemetry.SpanAttributes{
		Operation: "semantic_search",
	})
	defer span.End()

	embeddings, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		if isConfigurationError(err) {
			return nil, err
		}
		log.Printf("search: embedding query failed, returning no results: %v", err)
		return []domain.SearchResult{}, nil
	}

	matches, err := s.index.Query(ctx, embeddings[0], limit)
	if err != nil {
		if isConfigurationError(err) {
			return nil, err
		}
		span.SetError(err)
		log.Printf("search: vector query failed, returning no results: %v", err)
		return []domain.SearchResult{}, nil
	}

	results := make([]domain.SearchResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, domain.SearchResult{
			ChunkID:  m.ID,
			Content:  m.Content,
			Metadata: m.Metadata,
			Score:    m.Score,
			Tier:     domain.TierForScore(m.Score),
		})
	}
	return results, nil
}

// isConfigurationError reports whether err means a required backend is
// not configured at all, which must surface instead of degrading.
func isConfigurationError(err error) bool {
	var derr *domain.DomainError
	return errors.As(err, &derr) && derr.Code == domain.ErrCodeConfiguration
}
