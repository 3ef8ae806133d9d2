package service

import (
	"context"

	"github.com/onboardiq/onboardiq/internal/domain"
)

// VectorRecord is one embedded chunk ready to be written to the index.
type VectorRecord struct {
	ID        string
	Embedding []float32
	Content   string
	Metadata  map[string]string
}

// VectorMatch is one index hit with its cosine similarity score.
type VectorMatch struct {
	ID       string
	Score    float64
	Content  string
	Metadata map[string]string
}

// VectorIndex is the vector store the pipeline writes to and search reads from.
type VectorIndex interface {
	EnsureIndex(ctx context.Context) error
	Upsert(ctx context.Context, records []VectorRecord) error
	Query(ctx context.Context, embedding []float32, limit int) ([]VectorMatch, error)
	Stats(ctx context.Context) (domain.IndexStatus, error)
}

// EmbeddingClient turns texts into embedding vectors and single prompts
// into completions.
type EmbeddingClient interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Complete(ctx context.Context, prompt string) (string, error)
	Dimensions() int
}

// NoOpVectorIndex stands in when no vector store is configured. Every
// operation reports the service as unavailable so handlers can answer
// with a configuration error instead of panicking.
type NoOpVectorIndex struct{}

func NewNoOpVectorIndex() *NoOpVectorIndex {
	return &NoOpVectorIndex{}
}

func (n *NoOpVectorIndex) EnsureIndex(ctx context.Context) error {
	return domain.ErrVectorServiceUnavailable
}

func (n *NoOpVectorIndex) Upsert(ctx context.Context, records []VectorRecord) error {
	return domain.ErrVectorServiceUnavailable
}

func (n *NoOpVectorIndex) Query(ctx context.Context, embedding []float32, limit int) ([]VectorMatch, error) {
	return nil, domain.ErrVectorServiceUnavailable
}

func (n *NoOpVectorIndex) Stats(ctx context.Context) (domain.IndexStatus, error) {
	return domain.IndexStatus{
		Status: domain.IndexStatusError,
		Error:  domain.ErrVectorServiceUnavailable.Message,
	}, nil
}

// NoOpEmbeddingClient stands in when no embedding API key is configured.
type NoOpEmbeddingClient struct{}

func NewNoOpEmbeddingClient() *NoOpEmbeddingClient {
	return &NoOpEmbeddingClient{}
}

func (n *NoOpEmbeddingClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, domain.ErrEmbeddingUnavailable
}

func (n *NoOpEmbeddingClient) Complete(ctx context.Context, prompt string) (string, error) {
	return "", domain.ErrEmbeddingUnavailable
}

func (n *NoOpEmbeddingClient) Dimensions() int {
	return 0
}
