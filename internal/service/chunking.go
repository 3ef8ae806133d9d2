package service

import (
	"unicode"

	"github.com/onboardiq/onboardiq/internal/domain"
)

// ChunkConfig controls how knowledge record text is split for embedding.
type ChunkConfig struct {
	// ChunkSize is the maximum chunk length in runes.
	ChunkSize int
	// ChunkOverlap is how many trailing runes of a chunk are repeated at
	// the start of the next one.
	ChunkOverlap int
}

// DefaultChunkConfig provides sane defaults for chunking.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		ChunkSize:    1000,
		ChunkOverlap: 200,
	}
}

// Chunker splits raw text into bounded, overlapping fragments. Splits
// prefer paragraph breaks, then line breaks, then spaces, falling back to
// a hard cut only when no boundary exists inside the window. Output is
// deterministic for identical input and configuration.
type Chunker struct {
	cfg ChunkConfig
}

// NewChunker creates a Chunker, normalizing degenerate configuration.
func NewChunker(cfg ChunkConfig) *Chunker {
	if cfg.ChunkSize <= 0 {
		cfg = DefaultChunkConfig()
	}
	if cfg.ChunkOverlap < 0 {
		cfg.ChunkOverlap = 0
	}
	if cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = cfg.ChunkSize / 2
	}
	return &Chunker{cfg: cfg}
}

// Chunk splits content into ordered fragments, each inheriting a copy of
// metadata. Chunks are exact substrings of content: concatenating them
// with overlaps removed reconstructs the input. Empty content yields an
// empty slice, not an error.
func (c *Chunker) Chunk(content string, metadata map[string]string) []domain.Chunk {
	if content == "" {
		return []domain.Chunk{}
	}

	runes := []rune(content)
	if len(runes) <= c.cfg.ChunkSize {
		return []domain.Chunk{{Content: content, Metadata: copyMetadata(metadata)}}
	}

	chunks := make([]domain.Chunk, 0, len(runes)/c.cfg.ChunkSize+1)
	start := 0
	for start < len(runes) {
		end := start + c.cfg.ChunkSize
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = boundaryCut(runes, start, end)
		}

		chunks = append(chunks, domain.Chunk{
			Content:  string(runes[start:end]),
			Metadata: copyMetadata(metadata),
		})

		if end >= len(runes) {
			break
		}

		next := end - c.cfg.ChunkOverlap
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}

// boundaryCut finds the best cut position in (start, end], preferring a
// paragraph break, then a line break, then a space. The boundary runes
// stay with the earlier chunk. Returns end when the window has no boundary.
func boundaryCut(runes []rune, start, end int) int {
	for i := end; i > start+1; i-- {
		if runes[i-1] == '\n' && runes[i-2] == '\n' {
			return i
		}
	}
	for i := end; i > start; i-- {
		if runes[i-1] == '\n' {
			return i
		}
	}
	for i := end; i > start; i-- {
		if unicode.IsSpace(runes[i-1]) {
			return i
		}
	}
	return end
}

func copyMetadata(metadata map[string]string) map[string]string {
	out := make(map[string]string, len(metadata))
	for k, v := range metadata {
		out[k] = v
	}
	return out
}
