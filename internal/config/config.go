package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	RedisURL    string `envconfig:"REDIS_URL"`

	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`

	// Vectorization parameters. The dimension must match the embedding
	// model's output dimension.
	EmbeddingModel      string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-large"`
	EmbeddingDimensions int    `envconfig:"EMBEDDING_DIMENSIONS" default:"3072"`
	ChunkSize           int    `envconfig:"CHUNK_SIZE" default:"1000"`
	ChunkOverlap        int    `envconfig:"CHUNK_OVERLAP" default:"200"`
	IndexName           string `envconfig:"INDEX_NAME" default:"onboardiq-knowledge"`
	SimilarityMetric    string `envconfig:"SIMILARITY_METRIC" default:"cosine"`

	// Answer synthesis.
	MaxAnswerTokens int    `envconfig:"MAX_ANSWER_TOKENS" default:"4000"`
	CompletionModel string `envconfig:"COMPLETION_MODEL" default:"gpt-4o-mini"`
	AnswerLocale    string `envconfig:"ANSWER_LOCALE" default:"en"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("ONBOARDIQ", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasRedis() bool {
	return c.RedisURL != ""
}
