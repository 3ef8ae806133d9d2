package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/onboardiq/onboardiq/internal/api"
	"github.com/onboardiq/onboardiq/internal/domain"
	"github.com/onboardiq/onboardiq/internal/service"
)

type OnboardingProvider interface {
	CreatePlan(ctx context.Context, input service.CreatePlanInput) (*service.OnboardingPlan, error)
	GetProgress(ctx context.Context, employeeID string) (*service.ProgressReport, error)
	UpdateProgress(ctx context.Context, input service.UpdateTaskInput) (*service.ProgressReport, error)
}

type OnboardingHandler struct {
	svc OnboardingProvider
}

func NewOnboardingHandler(svc OnboardingProvider) *OnboardingHandler {
	return &OnboardingHandler{svc: svc}
}

type CreatePlanRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	Department   string `json:"department"`
	StartDate    string `json:"start_date"`
	ManagerEmail string `json:"manager_email"`
}

// CreatePlan registers a new employee and builds their onboarding plan.
func (h *OnboardingHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req CreatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	plan, err := h.svc.CreatePlan(r.Context(), service.CreatePlanInput{
		Name:         req.Name,
		Email:        req.Email,
		Role:         req.Role,
		Department:   req.Department,
		StartDate:    req.StartDate,
		ManagerEmail: req.ManagerEmail,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, plan)
}

// GetProgress returns an employee's onboarding tasks and overall progress.
func (h *OnboardingHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")

	report, err := h.svc.GetProgress(r.Context(), employeeID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, report)
}

type UpdateTaskRequest struct {
	Status   string `json:"status"`
	Progress int    `json:"progress"`
	Notes    string `json:"notes"`
}

// UpdateTask applies a task progress update and returns the refreshed report.
func (h *OnboardingHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var req UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := h.svc.UpdateProgress(r.Context(), service.UpdateTaskInput{
		EmployeeID: chi.URLParam(r, "employeeID"),
		TaskID:     chi.URLParam(r, "taskID"),
		Status:     domain.TaskStatus(req.Status),
		Progress:   req.Progress,
		Notes:      req.Notes,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, report)
}
