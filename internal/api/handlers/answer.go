package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/onboardiq/onboardiq/internal/api"
	"github.com/onboardiq/onboardiq/internal/domain"
)

type AnswerProvider interface {
	Answer(ctx context.Context, question, roleContext string) (*domain.AnswerPackage, error)
}

type AnswerHandler struct {
	svc AnswerProvider
}

func NewAnswerHandler(svc AnswerProvider) *AnswerHandler {
	return &AnswerHandler{svc: svc}
}

type ContextualAnswerRequest struct {
	Question    string `json:"question"`
	RoleContext string `json:"role_context"`
}

// ContextualAnswer returns a full answer package with confidence and sources.
func (h *AnswerHandler) ContextualAnswer(w http.ResponseWriter, r *http.Request) {
	var req ContextualAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pkg, err := h.svc.Answer(r.Context(), req.Question, req.RoleContext)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, pkg)
}

type QAAnswerRequest struct {
	Question string `json:"question"`
}

type QAAnswerResponse struct {
	Question   string  `json:"question"`
	Answer     string  `json:"answer"`
	Confidence float64 `json:"confidence"`
}

// QAAnswer is the simplified question surface: just the answer text and
// its confidence, without source citations.
func (h *AnswerHandler) QAAnswer(w http.ResponseWriter, r *http.Request) {
	var req QAAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pkg, err := h.svc.Answer(r.Context(), req.Question, "")
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, QAAnswerResponse{
		Question:   pkg.Question,
		Answer:     pkg.Answer,
		Confidence: pkg.Confidence,
	})
}
