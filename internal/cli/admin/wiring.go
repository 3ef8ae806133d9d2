package admin

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	gopenai "github.com/sashabaranov/go-openai"

	"github.com/onboardiq/onboardiq/internal/cache"
	"github.com/onboardiq/onboardiq/internal/config"
	"github.com/onboardiq/onboardiq/internal/openai"
	"github.com/onboardiq/onboardiq/internal/repository"
	"github.com/onboardiq/onboardiq/internal/service"
)

// appServices bundles everything the commands wire up from configuration.
type appServices struct {
	Pipeline   *service.VectorizationPipeline
	Search     *service.SearchService
	Answer     *service.AnswerService
	Onboarding *service.OnboardingService
	Cache      service.ResultCache
	// Redis is nil when no Redis URL is configured.
	Redis *cache.RedisCache
}

// buildServices assembles the service graph. Optional backends (Redis,
// OpenAI) degrade to no-op implementations when unconfigured so the
// status and onboarding surfaces keep working.
func buildServices(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) (*appServices, error) {
	var resultCache service.ResultCache
	var redisCache *cache.RedisCache
	if cfg.HasRedis() {
		rc, err := cache.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		redisCache = rc
		resultCache = rc
		log.Println("connected to redis")
	} else {
		resultCache = cache.NewNoOpCache()
		log.Println("no redis configured, result caching disabled")
	}

	var embedder service.EmbeddingClient
	if cfg.HasOpenAI() {
		embedder = openai.NewClientWithConfig(openai.Config{
			APIKey:              cfg.OpenAIAPIKey,
			EmbeddingModel:      gopenai.EmbeddingModel(cfg.EmbeddingModel),
			EmbeddingDimensions: cfg.EmbeddingDimensions,
			CompletionModel:     cfg.CompletionModel,
			MaxTokens:           cfg.MaxAnswerTokens,
		})
	} else {
		embedder = service.NewNoOpEmbeddingClient()
		log.Println("no OpenAI key configured, vectorization and answers disabled")
	}

	index := repository.NewVectorIndexRepository(pool, cfg.IndexName, cfg.EmbeddingDimensions)
	source := repository.NewKnowledgeSourceRepository(pool)
	onboardingRepo := repository.NewOnboardingRepository(pool)

	extractor := service.NewKnowledgeExtractor(source)
	chunker := service.NewChunker(service.ChunkConfig{
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
	})

	return &appServices{
		Pipeline:   service.NewVectorizationPipeline(index, extractor, embedder, chunker, resultCache),
		Search:     service.NewSearchService(index, embedder),
		Answer:     service.NewAnswerService(index, embedder, resultCache, cfg.AnswerLocale),
		Onboarding: service.NewOnboardingService(onboardingRepo),
		Cache:      resultCache,
		Redis:      redisCache,
	}, nil
}
