// Package dedup removes exact and near-duplicate passages.
package dedup

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/pagescout/pagescout/internal/chunk"
)

// DefaultThreshold is the cosine similarity above which a passage is
// considered a near duplicate of an already accepted one.
const DefaultThreshold = 0.9

// cosineEpsilon keeps the similarity denominator non-zero for degenerate
// all-zero vectors.
const cosineEpsilon = 1e-9

// Embedder produces an embedding vector for a single text.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// Deduplicator filters passages in two stages: a cheap case-insensitive
// exact-text check, then cosine similarity against the embeddings of every
// passage accepted so far. Earlier passages always win ties.
type Deduplicator struct {
	embedder  Embedder
	threshold float64
}

// NewDeduplicator creates a Deduplicator. A non-positive threshold falls
// back to DefaultThreshold.
func NewDeduplicator(embedder Embedder, threshold float64) *Deduplicator {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Deduplicator{embedder: embedder, threshold: threshold}
}

// Filter returns the passages that are not duplicates of an earlier one,
// preserving input order. The exact filter runs before any embedding call,
// so exact repeats never cost an embedding. Passages that differ only in
// case pass the exact filter and are still caught by the similarity stage.
func (d *Deduplicator) Filter(ctx context.Context, passages []chunk.Passage) ([]chunk.Passage, error) {
	seen := make(map[string]struct{}, len(passages))
	var accepted []chunk.Passage
	var embeddings [][]float32

	for _, p := range passages {
		key := strings.ToLower(p.Text)
		if _, dup := seen[key]; dup {
			continue
		}

		vec, err := d.embedder.EmbedText(ctx, p.Text)
		if err != nil {
			return nil, fmt.Errorf("embed passage: %w", err)
		}

		if d.nearDuplicate(vec, embeddings) {
			continue
		}

		seen[key] = struct{}{}
		embeddings = append(embeddings, vec)
		accepted = append(accepted, p)
	}

	return accepted, nil
}

func (d *Deduplicator) nearDuplicate(vec []float32, accepted [][]float32) bool {
	for _, other := range accepted {
		if Cosine(vec, other) > d.threshold {
			return true
		}
	}
	return false
}

// Cosine computes cosine similarity between two vectors: dot product over
// the product of norms, with a small epsilon in the denominator.
func Cosine(a, b []float32) float64 {
	n := min(len(a), len(b))
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	return dot / (math.Sqrt(normA)*math.Sqrt(normB) + cosineEpsilon)
}
