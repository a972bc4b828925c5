// Package searcher orchestrates the search pipeline: fetch, extract, chunk,
// deduplicate, index, retrieve.
package searcher

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pagescout/pagescout/internal/chunk"
	"github.com/pagescout/pagescout/internal/dedup"
	"github.com/pagescout/pagescout/internal/extract"
	"github.com/pagescout/pagescout/internal/storage"
)

// MaxResults is the number of nearest neighbors requested per query.
const MaxResults = 10

// Match is one ranked result: the passage text, its source markup, a
// similarity-derived score in [0,100], and the DOM locator.
type Match struct {
	Content string  `json:"content"`
	HTML    string  `json:"html"`
	Score   float64 `json:"score"`
	Path    string  `json:"path"`
}

// Fetcher retrieves raw markup for a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Embedder turns text into vectors. Queries and passages must use the same
// implementation so they share an embedding space.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Store is the vector store consumed by the pipeline.
type Store interface {
	EnsureCollection(ctx context.Context) error
	ClearCollection(ctx context.Context) error
	UpsertChunks(ctx context.Context, chunks []*storage.PageChunk) error
	SearchChunks(ctx context.Context, embedding []float32, limit int) ([]*storage.ScoredChunk, error)
}

// Searcher runs one search request end to end. The store holds a single
// index generation shared by all requests, so the destructive
// clear+rebuild+query sequence runs under a mutex: a concurrent request
// cannot interleave its reset with another request's in-flight query.
type Searcher struct {
	fetcher   Fetcher
	extractor *extract.Extractor
	chunker   *chunk.Chunker
	dedup     *dedup.Deduplicator
	embedder  Embedder
	store     Store
	logger    *slog.Logger

	mu sync.Mutex // guards the store's index generation
}

// NewSearcher creates a Searcher with the given components.
func NewSearcher(
	fetcher Fetcher,
	extractor *extract.Extractor,
	chunker *chunk.Chunker,
	deduper *dedup.Deduplicator,
	embedder Embedder,
	store Store,
	logger *slog.Logger,
) *Searcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Searcher{
		fetcher:   fetcher,
		extractor: extractor,
		chunker:   chunker,
		dedup:     deduper,
		embedder:  embedder,
		store:     store,
		logger:    logger,
	}
}

// Search fetches the page at url and returns up to MaxResults passages
// ranked by semantic similarity to query, store order preserved. An empty
// match list is a legitimate outcome, not an error.
func (s *Searcher) Search(ctx context.Context, url, query string) ([]Match, error) {
	start := time.Now()

	url = strings.TrimSpace(url)
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, ErrInvalidURL
	}

	markup, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	blocks := s.extractor.Extract(markup)
	passages := s.chunker.Split(blocks, chunk.DefaultSize)
	s.logger.Debug("Chunked page", "url", url, "blocks", len(blocks), "passages", len(passages))

	unique, err := s.dedup.Filter(ctx, passages)
	if err != nil {
		return nil, fmt.Errorf("dedup: %w", err)
	}
	s.logger.Info("Deduplicated passages", "url", url, "before", len(passages), "after", len(unique))

	if len(unique) == 0 {
		return nil, ErrNoContent
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	matches, err := s.indexAndQuery(ctx, url, query, unique)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Search complete", "url", url, "matches", len(matches), "duration", time.Since(start))
	return matches, nil
}

// indexAndQuery rebuilds the single index generation from the given
// passages and runs the nearest-neighbor query. Caller holds s.mu.
func (s *Searcher) indexAndQuery(ctx context.Context, url, query string, passages []chunk.Passage) ([]Match, error) {
	// Schema reset failures are non-fatal: the subsequent upsert surfaces
	// any real store problem, so log and continue.
	if err := s.store.ClearCollection(ctx); err != nil {
		s.logger.Warn("Failed to clear collection", "error", err)
	}
	if err := s.store.EnsureCollection(ctx); err != nil {
		s.logger.Warn("Failed to ensure collection", "error", err)
	}

	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Text
	}

	embeddings, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("index: embed passages: %w", err)
	}

	chunks := make([]*storage.PageChunk, len(passages))
	for i, p := range passages {
		chunks[i] = &storage.PageChunk{
			ID:        uuid.New().String(),
			Content:   p.Text,
			HTML:      p.HTML,
			URL:       url,
			Path:      p.Path,
			Embedding: embeddings[i],
		}
	}

	if err := s.store.UpsertChunks(ctx, chunks); err != nil {
		return nil, fmt.Errorf("index: store chunks: %w", err)
	}
	s.logger.Debug("Indexed chunks", "url", url, "count", len(chunks))

	queryVec, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("index: embed query: %w", err)
	}

	hits, err := s.store.SearchChunks(ctx, queryVec, MaxResults)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}

	matches := make([]Match, 0, len(hits))
	for _, hit := range hits {
		matches = append(matches, Match{
			Content: hit.Content,
			HTML:    hit.HTML,
			Score:   round2(hit.Certainty * 100),
			Path:    hit.Path,
		})
	}

	return matches, nil
}

// round2 rounds to two decimal places.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
