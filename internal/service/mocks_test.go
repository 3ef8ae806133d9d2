package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/onboardiq/onboardiq/internal/domain"
)

// MockVectorIndex is a mock implementation of VectorIndex
type MockVectorIndex struct {
	mock.Mock
}

func (m *MockVectorIndex) EnsureIndex(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockVectorIndex) Upsert(ctx context.Context, records []VectorRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

func (m *MockVectorIndex) Query(ctx context.Context, embedding []float32, limit int) ([]VectorMatch, error) {
	args := m.Called(ctx, embedding, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]VectorMatch), args.Error(1)
}

func (m *MockVectorIndex) Stats(ctx context.Context) (domain.IndexStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.IndexStatus), args.Error(1)
}

// MockEmbeddingClient is a mock implementation of EmbeddingClient
type MockEmbeddingClient struct {
	mock.Mock
}

func (m *MockEmbeddingClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

func (m *MockEmbeddingClient) Complete(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockEmbeddingClient) Dimensions() int {
	args := m.Called()
	return args.Int(0)
}

// MockResultCache is a mock implementation of ResultCache
type MockResultCache struct {
	mock.Mock
}

func (m *MockResultCache) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockResultCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

// MockRecordExtractor is a mock implementation of RecordExtractor
type MockRecordExtractor struct {
	mock.Mock
}

func (m *MockRecordExtractor) Extract(ctx context.Context) ([]domain.KnowledgeRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.KnowledgeRecord), args.Error(1)
}
