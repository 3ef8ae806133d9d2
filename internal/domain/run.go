package domain

import "time"

// RunState tracks the vectorization pipeline through its strictly ordered
// steps. Failed is reachable from any non-terminal state.
type RunState string

const (
	RunStateNotStarted        RunState = "not_started"
	RunStateIndexInitializing RunState = "index_initializing"
	RunStateExtracting        RunState = "extracting"
	RunStateChunking          RunState = "chunking"
	RunStateEmbedding         RunState = "embedding"
	RunStateUpserting         RunState = "upserting"
	RunStateComplete          RunState = "complete"
	RunStateFailed            RunState = "failed"
)

// IsTerminal reports whether the state ends a run.
func (s RunState) IsTerminal() bool {
	return s == RunStateComplete || s == RunStateFailed
}

// runOrder maps each non-terminal state to its successor.
var runOrder = map[RunState]RunState{
	RunStateNotStarted:        RunStateIndexInitializing,
	RunStateIndexInitializing: RunStateExtracting,
	RunStateExtracting:        RunStateChunking,
	RunStateChunking:          RunStateEmbedding,
	RunStateEmbedding:         RunStateUpserting,
	RunStateUpserting:         RunStateComplete,
}

// CanTransition reports whether a run may move from one state to another.
func CanTransition(from, to RunState) bool {
	if from.IsTerminal() {
		return false
	}
	if to == RunStateFailed {
		return true
	}
	return runOrder[from] == to
}

// VectorizationRun holds the live state of a single reindex. Only its
// summary survives the run (cached statistics), not the run itself.
type VectorizationRun struct {
	State           RunState
	ChunksProcessed int
	VectorsStored   int
	KnowledgeItems  int
	StartedAt       time.Time
	CompletedAt     time.Time
}

// NewVectorizationRun creates a run in its initial state.
func NewVectorizationRun(startedAt time.Time) *VectorizationRun {
	return &VectorizationRun{
		State:     RunStateNotStarted,
		StartedAt: startedAt,
	}
}

// Advance moves the run to the next state. Invalid transitions are
// programming errors and leave the run untouched.
func (r *VectorizationRun) Advance(to RunState) bool {
	if !CanTransition(r.State, to) {
		return false
	}
	r.State = to
	return true
}

// RunSummary is the persisted artifact of a completed run.
type RunSummary struct {
	TotalChunks    int       `json:"total_chunks"`
	VectorsStored  int       `json:"vectors_stored"`
	KnowledgeItems int       `json:"knowledge_items"`
	Timestamp      time.Time `json:"timestamp"`
}

// IndexStatus describes the vector index for the status surface.
type IndexStatus struct {
	Status       string    `json:"status"` // ready | empty | error
	TotalVectors int64     `json:"total_vectors"`
	Dimension    int       `json:"dimension"`
	IndexName    string    `json:"index_name"`
	LastUpdate   time.Time `json:"last_index_update"`
	Error        string    `json:"error,omitempty"`
}

// Index status values.
const (
	IndexStatusReady = "ready"
	IndexStatusEmpty = "empty"
	IndexStatusError = "error"
)
