package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/onboardiq/onboardiq/internal/config"
	"github.com/onboardiq/onboardiq/internal/database"
)

// VectorizeCmd returns the vectorize command
func VectorizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vectorize",
		Short: "Run the knowledge vectorization pipeline once",
		Long:  "Extract knowledge from the database, embed it, and store the vectors, then exit",
		RunE:  runVectorize,
	}
}

func runVectorize(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	services, err := buildServices(ctx, cfg, pool)
	if err != nil {
		return fmt.Errorf("failed to build services: %w", err)
	}

	summary, err := services.Pipeline.Start(ctx)
	if err != nil {
		return fmt.Errorf("vectorization failed: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
