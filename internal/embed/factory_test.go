package embed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Factory Provider Selection
// ============================================================================

func TestNewEmbedder_StaticProvider_ReturnsCachedStatic(t *testing.T) {
	// Given: no env overrides
	t.Setenv("CRMDEX_EMBEDDER", "")
	t.Setenv("CRMDEX_EMBED_CACHE", "")

	// When: I request the static provider
	embedder, err := NewEmbedder(context.Background(), ProviderStatic, "", 0)
	require.NoError(t, err)
	defer func() { _ = embedder.Close() }()

	// Then: the embedder is cache-wrapped around the static implementation
	cached, ok := embedder.(*CachedEmbedder)
	require.True(t, ok, "cache wrapping should be on by default")
	assert.IsType(t, &StaticEmbedder{}, cached.Inner())
	assert.Equal(t, StaticDimensions, embedder.Dimensions())
}

func TestNewEmbedder_CacheSizeReachesCache(t *testing.T) {
	// Given: a configured cache size
	t.Setenv("CRMDEX_EMBEDDER", "")
	t.Setenv("CRMDEX_EMBED_CACHE", "")

	// When: the factory builds the embedder
	embedder, err := NewEmbedder(context.Background(), ProviderStatic, "", 250)
	require.NoError(t, err)
	defer func() { _ = embedder.Close() }()

	// Then: the cache is capped at the configured size
	cached, ok := embedder.(*CachedEmbedder)
	require.True(t, ok)
	assert.Equal(t, 250, cached.CacheSize())

	// And: a non-positive size falls back to the default
	fallback, err := NewEmbedder(context.Background(), ProviderStatic, "", 0)
	require.NoError(t, err)
	defer func() { _ = fallback.Close() }()
	assert.Equal(t, DefaultEmbeddingCacheSize, fallback.(*CachedEmbedder).CacheSize())
}

func TestNewEmbedder_EnvOverride_WinsOverProviderArg(t *testing.T) {
	// Given: CRMDEX_EMBEDDER forces static
	t.Setenv("CRMDEX_EMBEDDER", "static")
	t.Setenv("CRMDEX_EMBED_CACHE", "off")

	// When: the caller asks for ollama
	embedder, err := NewEmbedder(context.Background(), ProviderOllama, "nomic-embed-text", 0)
	require.NoError(t, err)
	defer func() { _ = embedder.Close() }()

	// Then: the env override wins
	assert.IsType(t, &StaticEmbedder{}, embedder)
}

func TestNewEmbedder_CacheDisabled_ReturnsBareEmbedder(t *testing.T) {
	t.Setenv("CRMDEX_EMBEDDER", "")

	for _, v := range []string{"false", "0", "off", "disabled"} {
		t.Setenv("CRMDEX_EMBED_CACHE", v)

		embedder, err := NewEmbedder(context.Background(), ProviderStatic, "", 0)
		require.NoError(t, err)

		_, isCached := embedder.(*CachedEmbedder)
		assert.False(t, isCached, "cache value %q should disable wrapping", v)
		_ = embedder.Close()
	}
}

func TestNewEmbedder_ExplicitOllama_Unavailable_ReturnsError(t *testing.T) {
	// Given: ollama host that refuses connections
	t.Setenv("CRMDEX_EMBEDDER", "")
	t.Setenv("CRMDEX_OLLAMA_HOST", "http://127.0.0.1:1")

	// When: the caller explicitly requests ollama
	_, err := NewEmbedder(context.Background(), ProviderOllama, "", 0)

	// Then: no silent fallback to static
	assert.Error(t, err)
}

func TestNewEmbedder_AutoDetect_OllamaDown_FallsBackToStatic(t *testing.T) {
	// Given: unknown provider and unreachable ollama
	t.Setenv("CRMDEX_EMBEDDER", "")
	t.Setenv("CRMDEX_EMBED_CACHE", "off")
	t.Setenv("CRMDEX_OLLAMA_HOST", "http://127.0.0.1:1")

	// When: provider is left unspecified
	embedder, err := NewEmbedder(context.Background(), ProviderType(""), "", 0)
	require.NoError(t, err)
	defer func() { _ = embedder.Close() }()

	// Then: auto-detect degrades to the static embedder
	assert.IsType(t, &StaticEmbedder{}, embedder)
}
