package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/onboardiq/onboardiq/internal/domain"
)

func TestSearchService_Search(t *testing.T) {
	index := new(MockVectorIndex)
	embedder := new(MockEmbeddingClient)

	queryVector := []float32{0.1, 0.2, 0.3}
	embedder.On("Embed", mock.Anything, []string{"how do code reviews work"}).
		Return([][]float32{queryVector}, nil)
	index.On("Query", mock.Anything, queryVector, 5).
		Return([]VectorMatch{
			{ID: "chunk_2_0_20240315_103000", Score: 0.91, Content: "Code review process: ...", Metadata: map[string]string{"type": "static_guide", "name": "code_review_process"}},
			{ID: "chunk_0_1_20240315_103000", Score: 0.72, Content: "Organization: Acme", Metadata: map[string]string{"type": "organization"}},
			{ID: "chunk_1_0_20240315_103000", Score: 0.41, Content: "Integration: Slack", Metadata: map[string]string{"type": "integration"}},
		}, nil)

	svc := NewSearchService(index, embedder)
	results, err := svc.Search(context.Background(), "how do code reviews work", 5)

	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "chunk_2_0_20240315_103000", results[0].ChunkID)
	assert.Equal(t, domain.RelevanceHigh, results[0].Tier)
	assert.Equal(t, domain.RelevanceMedium, results[1].Tier)
	assert.Equal(t, domain.RelevanceLow, results[2].Tier)

	// results stay ordered by descending score
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
	assert.GreaterOrEqual(t, results[1].Score, results[2].Score)
}

func TestSearchService_Search_InvalidLimit(t *testing.T) {
	svc := NewSearchService(new(MockVectorIndex), new(MockEmbeddingClient))

	for _, limit := range []int{0, -1} {
		_, err := svc.Search(context.Background(), "anything", limit)
		assert.ErrorIs(t, err, domain.ErrInvalidSearchLimit)
	}
}

func TestSearchService_Search_EmptyQuery(t *testing.T) {
	svc := NewSearchService(new(MockVectorIndex), new(MockEmbeddingClient))

	_, err := svc.Search(context.Background(), "   ", 5)
	assert.ErrorIs(t, err, domain.ErrEmptyQuery)
}

func TestSearchService_Search_EmbedFailureDegrades(t *testing.T) {
	index := new(MockVectorIndex)
	embedder := new(MockEmbeddingClient)
	embedder.On("Embed", mock.Anything, mock.Anything).Return(nil, errors.New("rate limited"))

	svc := NewSearchService(index, embedder)
	results, err := svc.Search(context.Background(), "anything", 5)

	require.NoError(t, err)
	assert.Empty(t, results)
	index.AssertNotCalled(t, "Query", mock.Anything, mock.Anything, mock.Anything)
}

func TestSearchService_Search_QueryFailureDegrades(t *testing.T) {
	index := new(MockVectorIndex)
	embedder := new(MockEmbeddingClient)
	embedder.On("Embed", mock.Anything, mock.Anything).Return([][]float32{{0.1}}, nil)
	index.On("Query", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("pg down"))

	svc := NewSearchService(index, embedder)
	results, err := svc.Search(context.Background(), "anything", 5)

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchService_Search_UnconfiguredBackendSurfaces(t *testing.T) {
	svc := NewSearchService(NewNoOpVectorIndex(), NewNoOpEmbeddingClient())

	_, err := svc.Search(context.Background(), "anything", 5)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)

	embedder := new(MockEmbeddingClient)
	embedder.On("Embed", mock.Anything, mock.Anything).Return([][]float32{{0.1}}, nil)

	svc = NewSearchService(NewNoOpVectorIndex(), embedder)
	_, err = svc.Search(context.Background(), "anything", 5)
	assert.ErrorIs(t, err, domain.ErrVectorServiceUnavailable)
}
