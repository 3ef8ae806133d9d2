package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/onboardiq/onboardiq/internal/domain"
	"github.com/onboardiq/onboardiq/internal/service"
)

// VectorIndexRepository stores chunk embeddings in a pgvector-backed table
// and serves cosine similarity queries against it.
type VectorIndexRepository struct {
	pool       *pgxpool.Pool
	indexName  string
	dimensions int
}

func NewVectorIndexRepository(pool *pgxpool.Pool, indexName string, dimensions int) *VectorIndexRepository {
	return &VectorIndexRepository{
		pool:       pool,
		indexName:  indexName,
		dimensions: dimensions,
	}
}

// EnsureIndex creates the vector extension, the chunk table and its HNSW
// cosine index when they do not exist yet. Safe to call on every run.
func (r *VectorIndexRepository) EnsureIndex(ctx context.Context) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS knowledge_vectors (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			metadata JSONB NOT NULL DEFAULT '{}',
			embedding vector(%d) NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, r.dimensions),
		`CREATE INDEX IF NOT EXISTS knowledge_vectors_embedding_idx
			ON knowledge_vectors USING hnsw (embedding vector_cosine_ops)`,
	}

	for _, stmt := range statements {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensuring vector index: %w", err)
		}
	}
	return nil
}

// Upsert writes records into the index, replacing any record with the
// same id.
func (r *VectorIndexRepository) Upsert(ctx context.Context, records []service.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	now := time.Now().UTC()
	for _, rec := range records {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO knowledge_vectors (id, content, metadata, embedding, updated_at)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (id) DO UPDATE
			 SET content = EXCLUDED.content,
			     metadata = EXCLUDED.metadata,
			     embedding = EXCLUDED.embedding,
			     updated_at = EXCLUDED.updated_at`,
			rec.ID,
			rec.Content,
			rec.Metadata,
			pgvector.NewVector(rec.Embedding),
			now,
		)
		if err != nil {
			return fmt.Errorf("upserting vector %s: %w", rec.ID, err)
		}
	}
	return nil
}

// Query returns the limit nearest records by cosine similarity, most
// similar first. Scores are 1 - cosine distance, so identical vectors
// score 1.0.
func (r *VectorIndexRepository) Query(ctx context.Context, embedding []float32, limit int) ([]service.VectorMatch, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, content, metadata, 1 - (embedding <=> $1) AS score
		 FROM knowledge_vectors
		 ORDER BY embedding <=> $1
		 LIMIT $2`,
		pgvector.NewVector(embedding), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]service.VectorMatch, 0, limit)
	for rows.Next() {
		var m service.VectorMatch
		if err := rows.Scan(&m.ID, &m.Content, &m.Metadata, &m.Score); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// Stats reports the index size and the most recent write.
func (r *VectorIndexRepository) Stats(ctx context.Context) (domain.IndexStatus, error) {
	var total int64
	var lastUpdate *time.Time
	err := r.pool.QueryRow(ctx,
		`SELECT count(*), max(updated_at) FROM knowledge_vectors`,
	).Scan(&total, &lastUpdate)
	if err != nil {
		return domain.IndexStatus{}, err
	}

	status := domain.IndexStatusReady
	if total == 0 {
		status = domain.IndexStatusEmpty
	}

	stats := domain.IndexStatus{
		Status:       status,
		TotalVectors: total,
		Dimension:    r.dimensions,
		IndexName:    r.indexName,
	}
	if lastUpdate != nil {
		stats.LastUpdate = lastUpdate.UTC()
	}
	return stats, nil
}
