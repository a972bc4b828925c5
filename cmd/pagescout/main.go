// Package main provides the pagescout CLI for one-shot page searches.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pagescout/pagescout/internal/chunk"
	"github.com/pagescout/pagescout/internal/dedup"
	"github.com/pagescout/pagescout/internal/embedding"
	"github.com/pagescout/pagescout/internal/extract"
	"github.com/pagescout/pagescout/internal/fetch"
	"github.com/pagescout/pagescout/internal/searcher"
	"github.com/pagescout/pagescout/internal/storage"
)

var rootCmd = &cobra.Command{
	Use:   "pagescout",
	Short: "Semantic search over the content of a single web page",
	Long:  "CLI for running on-demand semantic page searches against Qdrant",
}

var searchCmd = &cobra.Command{
	Use:   "search <url> <query>",
	Short: "Fetch a page and return the passages most similar to the query",
	Long: `Fetches the page, splits its content into passages, removes duplicates,
rebuilds the index, and prints the ten closest passages with 0-100 scores.

Each run wipes and rebuilds the index: the store holds passages from at
most one page at a time.

Environment variables:
  QDRANT_HOST    Qdrant hostname (default: localhost)
  QDRANT_PORT    Qdrant gRPC port (default: 6334)
  OPENAI_API_KEY OpenAI API key for embeddings (required)`,
	Args: cobra.ExactArgs(2),
	RunE: runSearch,
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check Qdrant connectivity",
	RunE:  runHealth,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(healthCmd)
}

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	url, query := args[0], args[1]
	start := time.Now()

	store, embedder, err := connect(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	pageSearcher := searcher.NewSearcher(
		fetch.NewFetcher(fetch.DefaultTimeout),
		extract.NewExtractor(),
		chunk.NewChunker(),
		dedup.NewDeduplicator(embedder, dedup.DefaultThreshold),
		embedder,
		store,
		slog.Default(),
	)

	matches, err := pageSearcher.Search(ctx, url, query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(matches) == 0 {
		fmt.Println("No matches.")
		return nil
	}

	for i, m := range matches {
		fmt.Printf("%2d. [%6.2f] %s\n", i+1, m.Score, m.Path)
		fmt.Printf("    %s\n", m.Content)
		fmt.Println()
	}
	fmt.Printf("%d matches in %s\n", len(matches), time.Since(start).Round(time.Millisecond))

	return nil
}

func runHealth(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	qdrantHost := getEnv("QDRANT_HOST", "localhost")
	qdrantPort := getEnvInt("QDRANT_PORT", 6334)

	store, err := storage.NewQdrantStorage(qdrantHost, qdrantPort)
	if err != nil {
		return fmt.Errorf("failed to connect to Qdrant: %w", err)
	}
	defer store.Close()

	if err := store.Health(ctx); err != nil {
		return fmt.Errorf("Qdrant health check failed: %w", err)
	}

	fmt.Printf("Qdrant healthy at %s:%d\n", qdrantHost, qdrantPort)

	if info, err := store.GetCollectionInfo(ctx); err == nil {
		fmt.Printf("Indexed chunks: %d\n", info.PointsCount)
	}

	return nil
}

func connect(ctx context.Context) (*storage.QdrantStorage, *embedding.Embedder, error) {
	qdrantHost := getEnv("QDRANT_HOST", "localhost")
	qdrantPort := getEnvInt("QDRANT_PORT", 6334)

	store, err := storage.NewQdrantStorage(qdrantHost, qdrantPort)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to Qdrant: %w", err)
	}

	if err := store.EnsureCollection(ctx); err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("failed to ensure collection: %w", err)
	}

	embeddingClient, err := embedding.NewClient()
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("failed to create embedding client: %w", err)
	}

	return store, embedding.NewEmbedder(embeddingClient, 0), nil
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		var i int
		if _, err := fmt.Sscanf(v, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}
