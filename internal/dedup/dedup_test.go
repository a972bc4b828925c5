package dedup

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagescout/pagescout/internal/chunk"
)

// basisEmbedder assigns each distinct lowercased text its own basis vector,
// so case variants embed identically (cosine 1) and distinct texts are
// orthogonal (cosine 0). Deterministic across calls.
type basisEmbedder struct {
	dim   int
	axes  map[string]int
	calls []string
}

func newBasisEmbedder(dim int) *basisEmbedder {
	return &basisEmbedder{dim: dim, axes: make(map[string]int)}
}

func (e *basisEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	e.calls = append(e.calls, text)
	key := strings.ToLower(text)
	axis, ok := e.axes[key]
	if !ok {
		axis = len(e.axes) % e.dim
		e.axes[key] = axis
	}
	vec := make([]float32, e.dim)
	vec[axis] = 1
	return vec, nil
}

func passages(texts ...string) []chunk.Passage {
	ps := make([]chunk.Passage, len(texts))
	for i, text := range texts {
		ps[i] = chunk.Passage{Text: text, HTML: "<p>" + text + "</p>", Path: "p"}
	}
	return ps
}

func TestFilter_ExactDuplicateFirstWins(t *testing.T) {
	embedder := newBasisEmbedder(8)
	d := NewDeduplicator(embedder, 0.9)

	input := passages(
		"The quick brown fox jumps over the lazy dog.",
		"The quick brown fox jumps over the lazy dog.",
	)
	out, err := d.Filter(context.Background(), input)
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.Equal(t, input[0], out[0])

	// The exact repeat must be rejected before any embedding call.
	assert.Len(t, embedder.calls, 1)
}

func TestFilter_ExactDuplicateIsCaseInsensitive(t *testing.T) {
	embedder := newBasisEmbedder(8)
	// Threshold above 1 disables the similarity stage; only the exact
	// filter can reject here.
	d := NewDeduplicator(embedder, 1.1)

	out, err := d.Filter(context.Background(), passages(
		"Repeated passage text here.",
		"REPEATED PASSAGE TEXT HERE.",
	))
	require.NoError(t, err)

	// Case variants are not exact duplicates: both reach the embedding
	// stage and both survive with similarity disabled.
	assert.Len(t, out, 2)
	assert.Len(t, embedder.calls, 2)
}

func TestFilter_CaseVariantCaughtBySimilarity(t *testing.T) {
	embedder := newBasisEmbedder(8)
	d := NewDeduplicator(embedder, 0.9)

	out, err := d.Filter(context.Background(), passages(
		"Repeated passage text here.",
		"REPEATED PASSAGE TEXT HERE.",
	))
	require.NoError(t, err)

	// Identical embeddings (cosine 1 > 0.9): first retained, variant dropped.
	require.Len(t, out, 1)
	assert.Equal(t, "Repeated passage text here.", out[0].Text)
	// Both texts were embedded; the similarity stage did the rejecting.
	assert.Len(t, embedder.calls, 2)
}

func TestFilter_DistinctPassagesSurviveInOrder(t *testing.T) {
	embedder := newBasisEmbedder(8)
	d := NewDeduplicator(embedder, 0.9)

	input := passages(
		"First distinct passage about apples and orchards.",
		"Second distinct passage about rivers and bridges.",
		"Third distinct passage about mountains and trails.",
	)
	out, err := d.Filter(context.Background(), input)
	require.NoError(t, err)

	require.Len(t, out, 3)
	for i := range input {
		assert.Equal(t, input[i].Text, out[i].Text)
	}
}

func TestFilter_Idempotent(t *testing.T) {
	embedder := newBasisEmbedder(8)
	d := NewDeduplicator(embedder, 0.9)

	input := passages(
		"A passage that appears once.",
		"A passage that appears once.",
		"Another wholly different passage.",
	)
	once, err := d.Filter(context.Background(), input)
	require.NoError(t, err)

	twice, err := d.Filter(context.Background(), once)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}

func TestFilter_EmptyInput(t *testing.T) {
	d := NewDeduplicator(newBasisEmbedder(8), 0.9)

	out, err := d.Filter(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestCosine(t *testing.T) {
	a := []float32{1, 0, 0}
	b := []float32{0, 1, 0}
	c := []float32{2, 0, 0}
	zero := []float32{0, 0, 0}

	assert.InDelta(t, 0, Cosine(a, b), 1e-9)
	assert.InDelta(t, 1, Cosine(a, c), 1e-6)
	assert.InDelta(t, 1, Cosine(a, a), 1e-6)

	// Degenerate all-zero vectors must not divide by zero.
	assert.Equal(t, float64(0), Cosine(zero, zero))
}
