package embed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// TS01: Basic Embedding
// ============================================================================

func TestStaticEmbedder_Embed_ReturnsCorrectDimensions(t *testing.T) {
	// Given: static embedder with 256 dimensions
	embedder := NewStaticEmbedder()
	defer func() { _ = embedder.Close() }()

	// When: I embed a contact text
	embedding, err := embedder.Embed(context.Background(), "Ada Lovelace ada@example.com Engineer")

	// Then: a 256-dimension vector is returned
	require.NoError(t, err)
	assert.Len(t, embedding, StaticDimensions)
}

func TestStaticEmbedder_Embed_VectorIsNormalized(t *testing.T) {
	// Given: static embedder
	embedder := NewStaticEmbedder()
	defer func() { _ = embedder.Close() }()

	// When: I embed text
	embedding, err := embedder.Embed(context.Background(), "Acme Corp acme.com Manufacturing")
	require.NoError(t, err)

	// Then: vector magnitude is ~1.0 (normalized)
	magnitude := vectorMagnitude(embedding)
	assert.InDelta(t, 1.0, magnitude, 0.001, "vector should be normalized to unit length")
}

// ============================================================================
// TS02: Deterministic Output
// ============================================================================

func TestStaticEmbedder_Embed_IsDeterministic(t *testing.T) {
	// Given: static embedder
	embedder := NewStaticEmbedder()
	defer func() { _ = embedder.Close() }()

	text := "Enterprise renewal negotiation stage sales pipeline"

	// When: I embed the same text twice
	emb1, err1 := embedder.Embed(context.Background(), text)
	emb2, err2 := embedder.Embed(context.Background(), text)

	// Then: identical vectors are returned
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, emb1, emb2, "same text must always produce same vector")
}

func TestStaticEmbedder_Embed_DifferentTextsDifferentVectors(t *testing.T) {
	// Given: static embedder
	embedder := NewStaticEmbedder()
	defer func() { _ = embedder.Close() }()

	// When: I embed two unrelated texts
	emb1, err1 := embedder.Embed(context.Background(), "Grace Hopper grace@navy.mil Admiral")
	emb2, err2 := embedder.Embed(context.Background(), "Quarterly hardware procurement deal closed won")

	// Then: vectors differ
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.NotEqual(t, emb1, emb2)
}

// ============================================================================
// TS03: Similarity Behavior
// ============================================================================

func TestStaticEmbedder_SimilarTextsMoreSimilarThanUnrelated(t *testing.T) {
	// Given: static embedder
	embedder := NewStaticEmbedder()
	defer func() { _ = embedder.Close() }()

	ctx := context.Background()
	base, err := embedder.Embed(ctx, "software engineer at acme technology company")
	require.NoError(t, err)
	similar, err := embedder.Embed(ctx, "senior software engineer acme technology")
	require.NoError(t, err)
	unrelated, err := embedder.Embed(ctx, "bakery croissant flour butter oven")
	require.NoError(t, err)

	// Then: shared tokens make the similar pair score higher
	simScore := cosineSimilarity(base, similar)
	unrelScore := cosineSimilarity(base, unrelated)
	assert.Greater(t, simScore, unrelScore,
		"overlapping vocabulary should score higher than disjoint vocabulary")
}

func TestStaticEmbedder_StopWordsDoNotDominate(t *testing.T) {
	// Given: static embedder
	embedder := NewStaticEmbedder()
	defer func() { _ = embedder.Close() }()

	ctx := context.Background()
	// Texts that differ only in stop words stay closer than unrelated text
	emb1, err := embedder.Embed(ctx, "the deal with the acme account")
	require.NoError(t, err)
	emb2, err := embedder.Embed(ctx, "deal acme account")
	require.NoError(t, err)
	unrelated, err := embedder.Embed(ctx, "volcanic geology sediment basalt survey")
	require.NoError(t, err)

	assert.Greater(t, cosineSimilarity(emb1, emb2), cosineSimilarity(emb1, unrelated),
		"stop words should carry little weight")
}

// ============================================================================
// TS04: Edge Cases
// ============================================================================

func TestStaticEmbedder_Embed_EmptyText(t *testing.T) {
	embedder := NewStaticEmbedder()
	defer func() { _ = embedder.Close() }()

	embedding, err := embedder.Embed(context.Background(), "")

	require.NoError(t, err)
	assert.Len(t, embedding, StaticDimensions)
}

func TestStaticEmbedder_EmbedBatch_PreservesOrder(t *testing.T) {
	embedder := NewStaticEmbedder()
	defer func() { _ = embedder.Close() }()

	texts := []string{"alpha contact", "beta company", "gamma deal"}
	batch, err := embedder.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, batch, 3)

	// Each batch entry matches the single-embed result for the same text
	for i, text := range texts {
		single, err := embedder.Embed(context.Background(), text)
		require.NoError(t, err)
		assert.Equal(t, single, batch[i], "batch order must match input order")
	}
}

func TestStaticEmbedder_EmbedBatch_CancelledContext(t *testing.T) {
	embedder := NewStaticEmbedder()
	defer func() { _ = embedder.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := embedder.EmbedBatch(ctx, []string{"a", "b"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStaticEmbedder_Metadata(t *testing.T) {
	embedder := NewStaticEmbedder()
	defer func() { _ = embedder.Close() }()

	assert.Equal(t, StaticDimensions, embedder.Dimensions())
	assert.Equal(t, "static-hash-256", embedder.ModelName())
	assert.True(t, embedder.Available(context.Background()))
}
