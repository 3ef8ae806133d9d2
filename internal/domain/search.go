package domain

// RelevanceTier is a coarse bucket derived from a similarity score.
type RelevanceTier string

const (
	RelevanceHigh   RelevanceTier = "high"
	RelevanceMedium RelevanceTier = "medium"
	RelevanceLow    RelevanceTier = "low"
)

// Tier thresholds for cosine similarity scores.
const (
	HighRelevanceThreshold   = 0.8
	MediumRelevanceThreshold = 0.6
)

// TierForScore buckets a cosine similarity score into a relevance tier.
func TierForScore(score float64) RelevanceTier {
	switch {
	case score > HighRelevanceThreshold:
		return RelevanceHigh
	case score > MediumRelevanceThreshold:
		return RelevanceMedium
	default:
		return RelevanceLow
	}
}

// SearchResult is a scored match produced per query. Cosine similarity
// scores lie in [-1, 1]; higher means more related.
type SearchResult struct {
	ChunkID  string            `json:"chunk_id"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
	Score    float64           `json:"score"`
	Tier     RelevanceTier     `json:"tier"`
}
