package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/onboardiq/onboardiq/internal/api"
	"github.com/onboardiq/onboardiq/internal/api/handlers"
	"github.com/onboardiq/onboardiq/internal/api/middleware"
)

// HealthCheck probes one dependency by name for the health endpoint.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type RouterConfig struct {
	VectorizationHandler *handlers.VectorizationHandler
	AnswerHandler        *handlers.AnswerHandler
	OnboardingHandler    *handlers.OnboardingHandler
	HealthChecks         []HealthCheck
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", healthHandler(cfg.HealthChecks))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/vectorization", func(r chi.Router) {
			r.Post("/start", cfg.VectorizationHandler.Start)
			r.Get("/status", cfg.VectorizationHandler.Status)
			r.Post("/semantic-search", cfg.VectorizationHandler.SemanticSearch)
		})

		r.Post("/ai/contextual-answer", cfg.AnswerHandler.ContextualAnswer)
		r.Post("/qa/answer", cfg.AnswerHandler.QAAnswer)

		r.Post("/onboarding/create", cfg.OnboardingHandler.CreatePlan)

		r.Route("/progress", func(r chi.Router) {
			r.Get("/{employeeID}", cfg.OnboardingHandler.GetProgress)
			r.Put("/{employeeID}/tasks/{taskID}", cfg.OnboardingHandler.UpdateTask)
		})
	})

	return r
}

func healthHandler(checks []HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]interface{}{
			"status":  "ok",
			"service": "onboardiq",
		}

		if len(checks) == 0 {
			api.Success(w, http.StatusOK, body)
			return
		}

		results := make(map[string]string, len(checks))
		healthy := true
		for _, hc := range checks {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			if err := hc.Check(ctx); err != nil {
				results[hc.Name] = err.Error()
				healthy = false
			} else {
				results[hc.Name] = "ok"
			}
			cancel()
		}
		body["checks"] = results

		status := http.StatusOK
		if !healthy {
			body["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}
		api.Success(w, status, body)
	}
}
