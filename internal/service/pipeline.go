package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/onboardiq/onboardiq/internal/domain"
	"github.com/onboardiq/onboardiq/internal/telemetry"
)

const (
	// StatsCacheKey is where the summary of the last completed run lives.
	StatsCacheKey = "vectorization_stats"
	// statsCacheTTL bounds how long a stale summary is served.
	statsCacheTTL = time.Hour
	// UpsertBatchSize is how many vectors are embedded and written per batch.
	UpsertBatchSize = 100

	runstampLayout = "20060102_150405"
)

// ResultCache stores serialized results with a TTL.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RecordExtractor produces the knowledge records a run vectorizes.
type RecordExtractor interface {
	Extract(ctx context.Context) ([]domain.KnowledgeRecord, error)
}

// PipelineStatus is the combined status surface: index state, the cached
// summary of the last run, and whether a run is in flight.
type PipelineStatus struct {
	Index   domain.IndexStatus `json:"index"`
	LastRun *domain.RunSummary `json:"last_run,omitempty"`
	Running bool               `json:"running"`
}

// VectorizationPipeline drives a full reindex: extract, chunk, embed,
// upsert. At most one run executes at a time.
type VectorizationPipeline struct {
	index     VectorIndex
	extractor RecordExtractor
	embedder  EmbeddingClient
	chunker   *Chunker
	cache     ResultCache
	now       func() time.Time

	runMu   sync.Mutex
	stateMu sync.RWMutex
	current *domain.VectorizationRun
}

func NewVectorizationPipeline(index VectorIndex, extractor RecordExtractor, embedder EmbeddingClient, chunker *Chunker, cache ResultCache) *VectorizationPipeline {
	return &VectorizationPipeline{
		index:     index,
		extractor: extractor,
		embedder:  embedder,
		chunker:   chunker,
		cache:     cache,
		now:       time.Now,
	}
}

// Start executes one full vectorization run and returns its summary.
// A second call while a run is in flight fails fast with ErrPipelineRunning.
// Without a configured embedding backend the run is refused before any
// index or store access.
func (p *VectorizationPipeline) Start(ctx context.Context) (*domain.RunSummary, error) {
	// the no-op embedding client reports zero dimensions
	if p.embedder.Dimensions() <= 0 {
		return nil, domain.ErrEmbeddingUnavailable
	}

	if !p.runMu.TryLock() {
		return nil, domain.ErrPipelineRunning
	}
	defer p.runMu.Unlock()

	run := domain.NewVectorizationRun(p.now().UTC())
	p.setCurrent(run)
	defer p.setCurrent(nil)

	ctx, span := telemetry.StartSpan(ctx, "pipeline.vectorize", telemetry.SpanAttributes{
		Operation: "vectorize",
	})
	defer span.End()

	fail := func(step domain.RunState, err error) (*domain.RunSummary, error) {
		run.Advance(domain.RunStateFailed)
		perr := domain.NewPipelineError(step, err)
		span.SetError(perr)
		log.Printf("vectorization: run failed during %s: %v", step, err)
		return nil, perr
	}

	run.Advance(domain.RunStateIndexInitializing)
	if err := p.index.EnsureIndex(ctx); err != nil {
		return fail(domain.RunStateIndexInitializing, err)
	}

	run.Advance(domain.RunStateExtracting)
	records, err := p.extractor.Extract(ctx)
	if err != nil {
		return fail(domain.RunStateExtracting, err)
	}
	if len(records) == 0 {
		return fail(domain.RunStateExtracting, domain.ErrNoKnowledge)
	}
	run.KnowledgeItems = len(records)
	telemetry.AddBreadcrumb(ctx, "pipeline", fmt.Sprintf("extracted %d knowledge records", len(records)))

	run.Advance(domain.RunStateChunking)
	chunks := p.chunkRecords(records, run.StartedAt)
	if len(chunks) == 0 {
		return fail(domain.RunStateChunking, domain.ErrNoKnowledge)
	}
	run.ChunksProcessed = len(chunks)

	run.Advance(domain.RunStateEmbedding)
	vectors, err := p.embedChunks(ctx, chunks)
	if err != nil {
		return fail(domain.RunStateEmbedding, err)
	}

	run.Advance(domain.RunStateUpserting)
	stored, err := p.upsertBatches(ctx, chunks, vectors)
	if err != nil {
		return fail(domain.RunStateUpserting, err)
	}
	run.VectorsStored = stored

	run.Advance(domain.RunStateComplete)
	run.CompletedAt = p.now().UTC()

	summary := domain.RunSummary{
		TotalChunks:    run.ChunksProcessed,
		VectorsStored:  run.VectorsStored,
		KnowledgeItems: run.KnowledgeItems,
		Timestamp:      run.CompletedAt,
	}
	p.cacheSummary(ctx, summary)

	log.Printf("vectorization: run complete (records=%d chunks=%d stored=%d)",
		summary.KnowledgeItems, summary.TotalChunks, summary.VectorsStored)
	return &summary, nil
}

// chunkRecords splits every record and stamps each chunk with an id that
// encodes its record index, chunk index and the run start time.
func (p *VectorizationPipeline) chunkRecords(records []domain.KnowledgeRecord, startedAt time.Time) []domain.Chunk {
	runstamp := startedAt.UTC().Format(runstampLayout)

	var chunks []domain.Chunk
	for ri, rec := range records {
		for ci, chunk := range p.chunker.Chunk(rec.Content, rec.Metadata()) {
			chunk.ID = fmt.Sprintf("chunk_%d_%d_%s", ri, ci, runstamp)
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}

// embedChunks embeds chunk contents in UpsertBatchSize batches. Any
// embedding failure aborts the run.
func (p *VectorizationPipeline) embedChunks(ctx context.Context, chunks []domain.Chunk) ([][]float32, error) {
	vectors := make([][]float32, 0, len(chunks))
	for start := 0; start < len(chunks); start += UpsertBatchSize {
		end := start + UpsertBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		texts := make([]string, 0, end-start)
		for _, chunk := range chunks[start:end] {
			texts = append(texts, chunk.Content)
		}

		batch, err := p.embedder.Embed(ctx, texts)
		if err != nil {
			return nil, err
		}
		if len(batch) != len(texts) {
			return nil, fmt.Errorf("embedding batch returned %d vectors for %d texts", len(batch), len(texts))
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

// upsertBatches writes vectors in UpsertBatchSize batches. The first
// failing batch aborts the run; upserts are idempotent by chunk id, so
// batches already written simply stay in the index.
func (p *VectorizationPipeline) upsertBatches(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) (int, error) {
	stored := 0
	batch := 0
	for start := 0; start < len(chunks); start += UpsertBatchSize {
		end := start + UpsertBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		records := make([]VectorRecord, 0, end-start)
		for i := start; i < end; i++ {
			records = append(records, VectorRecord{
				ID:        chunks[i].ID,
				Embedding: vectors[i],
				Content:   chunks[i].Content,
				Metadata:  chunks[i].Metadata,
			})
		}

		if err := p.index.Upsert(ctx, records); err != nil {
			return stored, fmt.Errorf("upsert batch %d (chunks %d-%d): %w", batch, start, end, err)
		}
		stored += len(records)
		batch++
	}
	return stored, nil
}

// cacheSummary stores the run summary for the status surface. A cache
// failure never fails a completed run.
func (p *VectorizationPipeline) cacheSummary(ctx context.Context, summary domain.RunSummary) {
	data, err := json.Marshal(summary)
	if err != nil {
		log.Printf("vectorization: marshaling run summary: %v", err)
		return
	}
	if err := p.cache.Set(ctx, StatsCacheKey, data, statsCacheTTL); err != nil {
		log.Printf("vectorization: caching run summary: %v", err)
	}
}

// Status reports the index state, the cached last-run summary and
// whether a run is currently in flight.
func (p *VectorizationPipeline) Status(ctx context.Context) (*PipelineStatus, error) {
	status := &PipelineStatus{Running: p.running()}

	if data, err := p.cache.Get(ctx, StatsCacheKey); err == nil {
		var summary domain.RunSummary
		if err := json.Unmarshal(data, &summary); err == nil {
			status.LastRun = &summary
		}
	}

	idx, err := p.index.Stats(ctx)
	if err != nil {
		status.Index = domain.IndexStatus{
			Status: domain.IndexStatusError,
			Error:  err.Error(),
		}
		return status, nil
	}
	status.Index = idx
	return status, nil
}

func (p *VectorizationPipeline) setCurrent(run *domain.VectorizationRun) {
	p.stateMu.Lock()
	p.current = run
	p.stateMu.Unlock()
}

func (p *VectorizationPipeline) running() bool {
	p.stateMu.RLock()
	defer p.stateMu.RUnlock()
	return p.current != nil
}
