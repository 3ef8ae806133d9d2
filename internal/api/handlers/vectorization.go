package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/onboardiq/onboardiq/internal/api"
	"github.com/onboardiq/onboardiq/internal/domain"
	"github.com/onboardiq/onboardiq/internal/service"
)

// DefaultSearchLimit is used when a search request omits the limit.
const DefaultSearchLimit = 5

type PipelineService interface {
	Start(ctx context.Context) (*domain.RunSummary, error)
	Status(ctx context.Context) (*service.PipelineStatus, error)
}

type SearchProvider interface {
	Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error)
}

type VectorizationHandler struct {
	pipeline PipelineService
	search   SearchProvider
}

func NewVectorizationHandler(pipeline PipelineService, search SearchProvider) *VectorizationHandler {
	return &VectorizationHandler{
		pipeline: pipeline,
		search:   search,
	}
}

// Start runs a full vectorization synchronously and returns its summary.
func (h *VectorizationHandler) Start(w http.ResponseWriter, r *http.Request) {
	summary, err := h.pipeline.Start(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, summary)
}

// Status reports the index state and the last completed run.
func (h *VectorizationHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.pipeline.Status(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, status)
}

type SemanticSearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type SemanticSearchResponse struct {
	Query   string                `json:"query"`
	Results []domain.SearchResult `json:"results"`
	Count   int                   `json:"count"`
}

// SemanticSearch returns the most similar knowledge chunks for a query.
func (h *VectorizationHandler) SemanticSearch(w http.ResponseWriter, r *http.Request) {
	var req SemanticSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Limit == 0 {
		req.Limit = DefaultSearchLimit
	}

	results, err := h.search.Search(r.Context(), req.Query, req.Limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, SemanticSearchResponse{
		Query:   req.Query,
		Results: results,
		Count:   len(results),
	})
}
