// Package main provides the pagescout HTTP and MCP server entry point.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/pagescout/pagescout/internal/api"
	"github.com/pagescout/pagescout/internal/chunk"
	"github.com/pagescout/pagescout/internal/dedup"
	"github.com/pagescout/pagescout/internal/embedding"
	"github.com/pagescout/pagescout/internal/extract"
	"github.com/pagescout/pagescout/internal/fetch"
	mcpserver "github.com/pagescout/pagescout/internal/mcp"
	"github.com/pagescout/pagescout/internal/searcher"
	"github.com/pagescout/pagescout/internal/storage"
)

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Create context that cancels on SIGTERM/SIGINT
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	// Configuration from environment
	qdrantHost := getEnv("QDRANT_HOST", "localhost")
	qdrantPort := getEnvInt("QDRANT_PORT", 6334)
	port := getEnv("PORT", "8080")

	// Initialize storage
	store, err := storage.NewQdrantStorage(qdrantHost, qdrantPort)
	if err != nil {
		log.Fatalf("failed to connect to Qdrant: %v", err)
	}
	defer store.Close()

	// Ensure collection exists
	if err := store.EnsureCollection(ctx); err != nil {
		log.Fatalf("failed to ensure collection: %v", err)
	}

	// Initialize embedding client
	embeddingClient, err := embedding.NewClient()
	if err != nil {
		log.Fatalf("failed to create embedding client: %v", err)
	}
	embedder := embedding.NewEmbedder(embeddingClient, 0) // Use default batch size

	// Assemble the search pipeline
	pageSearcher := searcher.NewSearcher(
		fetch.NewFetcher(fetch.DefaultTimeout),
		extract.NewExtractor(),
		chunk.NewChunker(),
		dedup.NewDeduplicator(embedder, dedup.DefaultThreshold),
		embedder,
		store,
		slog.Default(),
	)

	// Create MCP server
	server := mcpserver.NewServer(&mcpserver.Config{
		Searcher: pageSearcher,
	})

	// Create HTTP server with multiple endpoints
	mux := http.NewServeMux()

	// Landing page at /
	mux.HandleFunc("/", mcpserver.NewLandingHandler())

	// Search endpoint (uniform {results, error} JSON)
	mux.HandleFunc("/search", api.NewSearchHandler(pageSearcher, slog.Default()))

	// Health endpoint
	mux.HandleFunc("/health", api.NewHealthHandler(store))

	// MCP HTTP endpoint (for remote client connections)
	mux.Handle("/mcp", mcpserver.NewHTTPHandler(server, nil))

	// Check if running in server mode (HTTP) or stdio mode (local development)
	serverMode := getEnv("SERVER_MODE", "true") == "true"

	if serverMode {
		// HTTP mode: serve search API and MCP over HTTP
		addr := "0.0.0.0:" + port
		log.Printf("Starting HTTP server on %s (search at /search, MCP at /mcp, health at /health)", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Fatalf("HTTP server error: %v", err)
		}
	} else {
		// Stdio mode: run MCP server over stdin/stdout for local clients
		// Also start HTTP endpoints in background for local testing
		go func() {
			addr := "0.0.0.0:" + port
			log.Printf("Starting HTTP server on %s", addr)
			if err := http.ListenAndServe(addr, mux); err != nil {
				log.Printf("HTTP server error: %v", err)
			}
		}()

		log.Println("Starting pagescout MCP server (stdio mode)...")
		if err := server.Run(ctx); err != nil {
			log.Printf("server error: %v", err)
			os.Exit(1)
		}
	}
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
