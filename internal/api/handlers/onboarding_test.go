package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/onboardiq/onboardiq/internal/domain"
	"github.com/onboardiq/onboardiq/internal/service"
)

type MockOnboardingProvider struct {
	mock.Mock
}

func (m *MockOnboardingProvider) CreatePlan(ctx context.Context, input service.CreatePlanInput) (*service.OnboardingPlan, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.OnboardingPlan), args.Error(1)
}

func (m *MockOnboardingProvider) GetProgress(ctx context.Context, employeeID string) (*service.ProgressReport, error) {
	args := m.Called(ctx, employeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ProgressReport), args.Error(1)
}

func (m *MockOnboardingProvider) UpdateProgress(ctx context.Context, input service.UpdateTaskInput) (*service.ProgressReport, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ProgressReport), args.Error(1)
}

func withURLParams(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestOnboardingHandler_CreatePlan(t *testing.T) {
	svc := new(MockOnboardingProvider)
	svc.On("CreatePlan", mock.Anything, service.CreatePlanInput{
		Name:  "Dana Petrenko",
		Email: "dana@acme.io",
		Role:  "backend_developer",
	}).Return(&service.OnboardingPlan{
		Employee:     &domain.Employee{ID: "emp-1", Name: "Dana Petrenko", Role: domain.RoleBackendDeveloper},
		DurationDays: 16,
		FocusAreas:   []string{"APIs", "Database", "Testing"},
		Tasks: []domain.OnboardingTask{
			{ID: "t1", Title: "Set up the local server", Status: domain.TaskStatusPending},
		},
	}, nil)

	handler := NewOnboardingHandler(svc)
	body, _ := json.Marshal(CreatePlanRequest{
		Name:  "Dana Petrenko",
		Email: "dana@acme.io",
		Role:  "backend_developer",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/onboarding/create", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.CreatePlan(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Data service.OnboardingPlan `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "emp-1", resp.Data.Employee.ID)
	assert.Equal(t, 16, resp.Data.DurationDays)
	require.Len(t, resp.Data.Tasks, 1)
}

func TestOnboardingHandler_CreatePlan_ValidationError(t *testing.T) {
	svc := new(MockOnboardingProvider)
	svc.On("CreatePlan", mock.Anything, mock.Anything).
		Return(nil, domain.NewDomainError(domain.ErrCodeValidation, "employee name is required"))

	handler := NewOnboardingHandler(svc)
	body, _ := json.Marshal(CreatePlanRequest{Email: "dana@acme.io"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/onboarding/create", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.CreatePlan(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOnboardingHandler_GetProgress(t *testing.T) {
	svc := new(MockOnboardingProvider)
	svc.On("GetProgress", mock.Anything, "emp-1").Return(&service.ProgressReport{
		Employee:        &domain.Employee{ID: "emp-1", Name: "Dana"},
		OverallProgress: 50,
		CompletedTasks:  1,
		TotalTasks:      2,
	}, nil)

	handler := NewOnboardingHandler(svc)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/progress/emp-1", nil)
	req = withURLParams(req, map[string]string{"employeeID": "emp-1"})
	rec := httptest.NewRecorder()

	handler.GetProgress(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data service.ProgressReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 50, resp.Data.OverallProgress)
	assert.Equal(t, 2, resp.Data.TotalTasks)
}

func TestOnboardingHandler_GetProgress_NotFound(t *testing.T) {
	svc := new(MockOnboardingProvider)
	svc.On("GetProgress", mock.Anything, "ghost").Return(nil, domain.ErrEmployeeNotFound)

	handler := NewOnboardingHandler(svc)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/progress/ghost", nil)
	req = withURLParams(req, map[string]string{"employeeID": "ghost"})
	rec := httptest.NewRecorder()

	handler.GetProgress(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOnboardingHandler_UpdateTask(t *testing.T) {
	svc := new(MockOnboardingProvider)
	svc.On("UpdateProgress", mock.Anything, service.UpdateTaskInput{
		EmployeeID: "emp-1",
		TaskID:     "t1",
		Status:     domain.TaskStatusCompleted,
		Progress:   100,
		Notes:      "done",
	}).Return(&service.ProgressReport{OverallProgress: 50}, nil)

	handler := NewOnboardingHandler(svc)
	body, _ := json.Marshal(UpdateTaskRequest{Status: "completed", Progress: 100, Notes: "done"})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/progress/emp-1/tasks/t1", bytes.NewReader(body))
	req = withURLParams(req, map[string]string{"employeeID": "emp-1", "taskID": "t1"})
	rec := httptest.NewRecorder()

	handler.UpdateTask(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestOnboardingHandler_UpdateTask_InvalidStatus(t *testing.T) {
	svc := new(MockOnboardingProvider)
	svc.On("UpdateProgress", mock.Anything, mock.Anything).
		Return(nil, domain.NewDomainError(domain.ErrCodeValidation, "unknown task status"))

	handler := NewOnboardingHandler(svc)
	body, _ := json.Marshal(UpdateTaskRequest{Status: "paused"})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/progress/emp-1/tasks/t1", bytes.NewReader(body))
	req = withURLParams(req, map[string]string{"employeeID": "emp-1", "taskID": "t1"})
	rec := httptest.NewRecorder()

	handler.UpdateTask(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
