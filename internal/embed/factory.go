package embed

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// ProviderType represents an embedding provider
type ProviderType string

const (
	// ProviderOllama uses the Ollama API for embeddings
	ProviderOllama ProviderType = "ollama"

	// ProviderStatic uses deterministic hash-based embeddings
	// (offline fallback, also used in tests)
	ProviderStatic ProviderType = "static"
)

// NewEmbedder creates an embedder based on provider type.
// The CRMDEX_EMBEDDER environment variable overrides the provider:
//   - "ollama": Use OllamaEmbedder
//   - "static": Use StaticEmbedder
//
// Explicit selection (env var or a recognized provider) never falls back
// silently; only the default auto-detect path degrades to static.
//
// Query embedding caching is enabled by default; cacheSize bounds the
// cache, non-positive values use DefaultEmbeddingCacheSize.
// Set CRMDEX_EMBED_CACHE=false to disable caching.
func NewEmbedder(ctx context.Context, provider ProviderType, model string, cacheSize int) (Embedder, error) {
	var embedder Embedder
	var err error

	envProvider := strings.ToLower(os.Getenv("CRMDEX_EMBEDDER"))
	switch envProvider {
	case "ollama":
		embedder, err = newOllama(ctx, model)
	case "static":
		embedder = NewStaticEmbedder()
	}

	if embedder == nil && err == nil {
		switch provider {
		case ProviderOllama:
			embedder, err = newOllama(ctx, model)

		case ProviderStatic:
			embedder = NewStaticEmbedder()

		default:
			// Auto-detect: prefer Ollama, degrade to static when unreachable
			embedder, err = newOllama(ctx, model)
			if err != nil {
				slog.Warn("ollama unavailable, using static embedder",
					slog.String("error", err.Error()))
				embedder, err = NewStaticEmbedder(), nil
			}
		}
	}

	if err != nil {
		return nil, err
	}

	if !isCacheDisabled() {
		embedder = NewCachedEmbedder(embedder, cacheSize)
	}

	return embedder, nil
}

// isCacheDisabled checks if embedding cache is disabled via environment.
func isCacheDisabled() bool {
	v := strings.ToLower(os.Getenv("CRMDEX_EMBED_CACHE"))
	return v == "false" || v == "0" || v == "off" || v == "disabled"
}

// globalOllamaConfig holds config-file settings applied via SetOllamaConfig.
var globalOllamaConfig OllamaConfig

// SetOllamaConfig applies config-file Ollama settings before NewEmbedder
// runs. Environment variables still take precedence.
func SetOllamaConfig(cfg OllamaConfig) {
	globalOllamaConfig = cfg
}

// newOllama creates an Ollama embedder: config-file settings first, the
// model argument next, env overrides last (highest priority).
func newOllama(ctx context.Context, model string) (Embedder, error) {
	cfg := globalOllamaConfig
	if model != "" {
		cfg.Model = model
	}
	if host := os.Getenv("CRMDEX_OLLAMA_HOST"); host != "" {
		cfg.Host = host
	}
	if m := os.Getenv("CRMDEX_OLLAMA_MODEL"); m != "" {
		cfg.Model = m
	}
	return NewOllamaEmbedder(ctx, cfg)
}
