//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/onboardiq/onboardiq/internal/api/handlers"
	"github.com/onboardiq/onboardiq/internal/cache"
	"github.com/onboardiq/onboardiq/internal/repository"
	"github.com/onboardiq/onboardiq/internal/server"
	"github.com/onboardiq/onboardiq/internal/service"
	"github.com/onboardiq/onboardiq/internal/testutil"
)

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T            *testing.T
	Ctx          context.Context
	PostgresC    *testutil.PostgresContainer
	Pool         *pgxpool.Pool
	ServerURL    string
	ServerCloser func()
	HTTPClient   *http.Client
}

// SetupE2EEnv creates a full E2E test environment with a pgvector
// container and an in-process server. Embeddings and completions come
// from a deterministic stub so no OpenAI key is needed.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)

	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	port, err := getFreePort()
	if err != nil {
		t.Fatalf("failed to get free port: %v", err)
	}

	serverURL, serverCloser := startServer(t, pool, port)

	return &E2ETestEnv{
		T:            t,
		Ctx:          ctx,
		PostgresC:    pgC,
		Pool:         pool,
		ServerURL:    serverURL,
		ServerCloser: serverCloser,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.ServerCloser != nil {
		e.ServerCloser()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
}

// SeedKnowledge inserts source rows the extraction step will pick up
func (e *E2ETestEnv) SeedKnowledge() {
	_, err := e.Pool.Exec(e.Ctx,
		`INSERT INTO organizations (name, domain, plan, status) VALUES
		 ('Acme', 'acme.dev', 'enterprise', 'active')`)
	if err != nil {
		e.T.Fatalf("failed to seed organizations: %v", err)
	}

	_, err = e.Pool.Exec(e.Ctx,
		`INSERT INTO integrations (name, type, status, auth_type) VALUES
		 ('GitHub', 'vcs', 'active', 'oauth')`)
	if err != nil {
		e.T.Fatalf("failed to seed integrations: %v", err)
	}

	_, err = e.Pool.Exec(e.Ctx,
		`INSERT INTO resources (name, type, status, url) VALUES
		 ('Engineering Handbook', 'doc', 'active', 'https://acme.dev/handbook')`)
	if err != nil {
		e.T.Fatalf("failed to seed resources: %v", err)
	}
}

// APIResponse represents a standard API response
type APIResponse struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error,omitempty"`
}

// Get performs a GET request
func (e *E2ETestEnv) Get(path string) (*APIResponse, error) {
	return e.doRequest("GET", path, nil)
}

// Post performs a POST request
func (e *E2ETestEnv) Post(path string, body interface{}) (*APIResponse, error) {
	return e.doRequest("POST", path, body)
}

// Put performs a PUT request
func (e *E2ETestEnv) Put(path string, body interface{}) (*APIResponse, error) {
	return e.doRequest("PUT", path, body)
}

func (e *E2ETestEnv) doRequest(method, path string, body interface{}) (*APIResponse, error) {
	url := e.ServerURL + path

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
		}
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiResp.Error)
	}

	return &apiResp, nil
}

// stubEmbedder produces deterministic unit vectors from word counts so
// semantic search ranks overlapping texts higher without calling OpenAI.
type stubEmbedder struct {
	dim int
}

func (s *stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, s.dim)
		for _, word := range strings.Fields(strings.ToLower(text)) {
			var h uint32
			for _, r := range word {
				h = h*31 + uint32(r)
			}
			vec[int(h)%s.dim]++
		}
		var norm float64
		for _, v := range vec {
			norm += float64(v) * float64(v)
		}
		if norm > 0 {
			scale := float32(1 / math.Sqrt(norm))
			for j := range vec {
				vec[j] *= scale
			}
		}
		out[i] = vec
	}
	return out, nil
}

func (s *stubEmbedder) Complete(ctx context.Context, prompt string) (string, error) {
	return "Acme runs on an enterprise plan.", nil
}

func (s *stubEmbedder) Dimensions() int {
	return s.dim
}

// startServer starts the HTTP server with all handlers wired to the pool
func startServer(t *testing.T, pool *pgxpool.Pool, port int) (string, func()) {
	embedder := &stubEmbedder{dim: 64}
	resultCache := cache.NewNoOpCache()

	index := repository.NewVectorIndexRepository(pool, "onboardiq-knowledge-e2e", embedder.Dimensions())
	source := repository.NewKnowledgeSourceRepository(pool)
	onboardingRepo := repository.NewOnboardingRepository(pool)

	extractor := service.NewKnowledgeExtractor(source)
	chunker := service.NewChunker(service.DefaultChunkConfig())

	pipeline := service.NewVectorizationPipeline(index, extractor, embedder, chunker, resultCache)
	searchSvc := service.NewSearchService(index, embedder)
	answerSvc := service.NewAnswerService(index, embedder, resultCache, "en")
	onboardingSvc := service.NewOnboardingService(onboardingRepo)

	cfg := server.RouterConfig{
		VectorizationHandler: handlers.NewVectorizationHandler(pipeline, searchSvc),
		AnswerHandler:        handlers.NewAnswerHandler(answerSvc),
		OnboardingHandler:    handlers.NewOnboardingHandler(onboardingSvc),
	}

	router := server.NewRouter(cfg)
	addr := fmt.Sprintf(":%d", port)

	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := fmt.Sprintf("http://localhost:%d", port)
	waitForServer(t, serverURL, 10*time.Second)

	return serverURL, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}

func waitForServer(t *testing.T, url string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server did not start within %v", timeout)
}

func getFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
