package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/onboardiq/onboardiq/internal/domain"
)

func answerMatches() []VectorMatch {
	return []VectorMatch{
		{ID: "chunk_2_0_x", Score: 0.92, Content: "Code review process:\n1. Open a pull request", Metadata: map[string]string{"type": "static_guide", "name": "code_review_process"}},
		{ID: "chunk_0_0_x", Score: 0.75, Content: "Organization: Acme\nPlan: pro", Metadata: map[string]string{"type": "organization", "name": "Acme"}},
		{ID: "chunk_1_0_x", Score: 0.40, Content: "Integration: Slack", Metadata: map[string]string{"type": "integration", "source_table": "integrations"}},
	}
}

func newAnswerFixture() (*AnswerService, *MockVectorIndex, *MockEmbeddingClient, *MockResultCache) {
	index := new(MockVectorIndex)
	embedder := new(MockEmbeddingClient)
	cache := new(MockResultCache)
	svc := NewAnswerService(index, embedder, cache, "en")
	return svc, index, embedder, cache
}

func TestAnswerService_Answer(t *testing.T) {
	svc, index, embedder, cache := newAnswerFixture()

	cache.On("Get", mock.Anything, mock.Anything).Return(nil, domain.ErrCacheMiss)
	embedder.On("Embed", mock.Anything, []string{"How do code reviews work?"}).
		Return([][]float32{{0.1, 0.2}}, nil)
	index.On("Query", mock.Anything, mock.Anything, answerTopK).Return(answerMatches(), nil)

	var prompt string
	embedder.On("Complete", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { prompt = args.String(1) }).
		Return("Open a pull request and collect two approvals.", nil)
	cache.On("Set", mock.Anything, mock.Anything, mock.Anything, time.Hour).Return(nil)

	pkg, err := svc.Answer(context.Background(), "How do code reviews work?", "backend developer")

	require.NoError(t, err)
	assert.Equal(t, "How do code reviews work?", pkg.Question)
	assert.Equal(t, "backend developer", pkg.RoleContext)
	assert.Equal(t, "Open a pull request and collect two approvals.", pkg.Answer)
	assert.True(t, pkg.ContextFound)

	// confidence is the mean similarity of everything retrieved
	assert.InDelta(t, (0.92+0.75+0.40)/3, pkg.Confidence, 1e-9)

	// only matches above the similarity floor are cited
	require.Len(t, pkg.Sources, 2)
	assert.Equal(t, "code_review_process", pkg.Sources[0].Source)
	assert.Equal(t, "static_guide", pkg.Sources[0].Type)
	assert.Equal(t, 0.92, pkg.Sources[0].Similarity)
	assert.Equal(t, "Acme", pkg.Sources[1].Source)

	// the prompt carries the context, the role and the question
	assert.Contains(t, prompt, "Code review process")
	assert.Contains(t, prompt, "backend developer")
	assert.Contains(t, prompt, "How do code reviews work?")
	assert.Contains(t, prompt, "Reply in English")
	assert.NotContains(t, prompt, "Integration: Slack")
}

func TestAnswerService_Answer_EmptyQuestion(t *testing.T) {
	svc, _, _, _ := newAnswerFixture()

	_, err := svc.Answer(context.Background(), "  ", "")
	assert.ErrorIs(t, err, domain.ErrEmptyQuestion)
}

func TestAnswerService_Answer_CacheHit(t *testing.T) {
	svc, index, embedder, cache := newAnswerFixture()

	cached := domain.AnswerPackage{
		Question:     "How do code reviews work?",
		Answer:       "Open a pull request.",
		Confidence:   0.8,
		Sources:      []domain.AnswerSource{},
		ContextFound: true,
	}
	data, err := json.Marshal(cached)
	require.NoError(t, err)
	cache.On("Get", mock.Anything, mock.Anything).Return(data, nil)

	pkg, err := svc.Answer(context.Background(), "How do code reviews work?", "")

	require.NoError(t, err)
	assert.Equal(t, cached, *pkg)
	embedder.AssertNotCalled(t, "Embed", mock.Anything, mock.Anything)
	index.AssertNotCalled(t, "Query", mock.Anything, mock.Anything, mock.Anything)
}

func TestAnswerService_Answer_NoResults(t *testing.T) {
	svc, index, embedder, cache := newAnswerFixture()

	cache.On("Get", mock.Anything, mock.Anything).Return(nil, domain.ErrCacheMiss)
	embedder.On("Embed", mock.Anything, mock.Anything).Return([][]float32{{0.1}}, nil)
	index.On("Query", mock.Anything, mock.Anything, answerTopK).Return([]VectorMatch{}, nil)

	pkg, err := svc.Answer(context.Background(), "anything", "")

	require.NoError(t, err)
	assert.False(t, pkg.ContextFound)
	assert.Equal(t, confidenceNoResults, pkg.Confidence)
	assert.Empty(t, pkg.Sources)
	embedder.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
	// low-confidence fallbacks are not cached
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAnswerService_Answer_AllBelowFloor(t *testing.T) {
	svc, index, embedder, cache := newAnswerFixture()

	cache.On("Get", mock.Anything, mock.Anything).Return(nil, domain.ErrCacheMiss)
	embedder.On("Embed", mock.Anything, mock.Anything).Return([][]float32{{0.1}}, nil)
	index.On("Query", mock.Anything, mock.Anything, answerTopK).Return([]VectorMatch{
		{ID: "a", Score: 0.31, Content: "x"},
		{ID: "b", Score: 0.12, Content: "y"},
	}, nil)

	pkg, err := svc.Answer(context.Background(), "anything", "")

	require.NoError(t, err)
	assert.True(t, pkg.ContextFound)
	assert.Equal(t, confidenceLowSimilarity, pkg.Confidence)
	// everything retrieved is still cited so the caller can see what was close
	require.Len(t, pkg.Sources, 2)
	assert.Equal(t, 0.31, pkg.Sources[0].Similarity)
	assert.Equal(t, 0.12, pkg.Sources[1].Similarity)
	embedder.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestAnswerService_Answer_FloorIsExclusive(t *testing.T) {
	svc, index, embedder, cache := newAnswerFixture()

	cache.On("Get", mock.Anything, mock.Anything).Return(nil, domain.ErrCacheMiss)
	embedder.On("Embed", mock.Anything, mock.Anything).Return([][]float32{{0.1}}, nil)
	index.On("Query", mock.Anything, mock.Anything, answerTopK).Return([]VectorMatch{
		{ID: "a", Score: answerSimilarityFloor, Content: "boundary"},
	}, nil)

	pkg, err := svc.Answer(context.Background(), "anything", "")

	require.NoError(t, err)
	assert.True(t, pkg.ContextFound)
	assert.Equal(t, confidenceLowSimilarity, pkg.Confidence)
	embedder.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestAnswerService_Answer_CompletionFailure(t *testing.T) {
	svc, index, embedder, cache := newAnswerFixture()

	cache.On("Get", mock.Anything, mock.Anything).Return(nil, domain.ErrCacheMiss)
	embedder.On("Embed", mock.Anything, mock.Anything).Return([][]float32{{0.1}}, nil)
	index.On("Query", mock.Anything, mock.Anything, answerTopK).Return(answerMatches(), nil)
	embedder.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("model overloaded"))

	pkg, err := svc.Answer(context.Background(), "anything", "")

	require.NoError(t, err)
	assert.False(t, pkg.ContextFound)
	assert.Equal(t, confidenceCompletionFailure, pkg.Confidence)
	assert.Empty(t, pkg.Sources)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAnswerService_Answer_EmbedFailureDegrades(t *testing.T) {
	svc, index, embedder, cache := newAnswerFixture()

	cache.On("Get", mock.Anything, mock.Anything).Return(nil, domain.ErrCacheMiss)
	embedder.On("Embed", mock.Anything, mock.Anything).Return(nil, errors.New("rate limited"))

	pkg, err := svc.Answer(context.Background(), "anything", "")

	require.NoError(t, err)
	assert.False(t, pkg.ContextFound)
	assert.Equal(t, confidenceNoResults, pkg.Confidence)
	index.AssertNotCalled(t, "Query", mock.Anything, mock.Anything, mock.Anything)
}

func TestAnswerService_Answer_UnconfiguredBackendSurfaces(t *testing.T) {
	cache := new(MockResultCache)
	cache.On("Get", mock.Anything, mock.Anything).Return(nil, domain.ErrCacheMiss)

	svc := NewAnswerService(NewNoOpVectorIndex(), NewNoOpEmbeddingClient(), cache, "en")
	_, err := svc.Answer(context.Background(), "anything", "")
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestAnswerService_Answer_LongSourceExcerptTruncated(t *testing.T) {
	svc, index, embedder, cache := newAnswerFixture()

	longContent := strings.Repeat("a", 450)
	cache.On("Get", mock.Anything, mock.Anything).Return(nil, domain.ErrCacheMiss)
	embedder.On("Embed", mock.Anything, mock.Anything).Return([][]float32{{0.1}}, nil)
	index.On("Query", mock.Anything, mock.Anything, answerTopK).Return([]VectorMatch{
		{ID: "a", Score: 0.9, Content: longContent, Metadata: map[string]string{"type": "resource"}},
	}, nil)
	embedder.On("Complete", mock.Anything, mock.Anything).Return("answer", nil)
	cache.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	pkg, err := svc.Answer(context.Background(), "anything", "")

	require.NoError(t, err)
	require.Len(t, pkg.Sources, 1)
	assert.Len(t, pkg.Sources[0].Excerpt, sourceExcerptLen)
}

func TestAnswerCacheKey_NormalizesQuestion(t *testing.T) {
	a := answerCacheKey("  How do code reviews WORK?  ", "Backend Developer")
	b := answerCacheKey("how do code reviews work?", "backend developer")
	c := answerCacheKey("how do deploys work?", "backend developer")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasPrefix(a, "qa:"))
}
