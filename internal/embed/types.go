// Package embed turns entity text into fixed-dimension vectors. The model's
// internals are a black box behind the Embedder interface; this package
// provides the Ollama HTTP client, a deterministic hash-based fallback, and
// an LRU cache wrapper.
package embed

import (
	"context"
	"math"
	"time"
)

const (
	// MaxBatchSize caps one embed request to bound backend memory use.
	MaxBatchSize = 256

	// DefaultBatchSize is the batch size when none is configured.
	DefaultBatchSize = 32

	// DefaultTimeout bounds a single embed API call.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxRetries is the retry budget for transient embed failures.
	DefaultMaxRetries = 3

	// StaticDimensions is the vector width of the hash-based embedder.
	StaticDimensions = 256
)

// Embedder turns text into vectors. Implementations must return
// embeddings in the same order as the input texts.
type Embedder interface {
	// Embed generates the embedding for one text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for texts, preserving order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the vector width this embedder produces.
	Dimensions() int

	// ModelName identifies the underlying model.
	ModelName() string

	// Available reports whether the backend is reachable and ready.
	Available(ctx context.Context) bool

	// Close releases backend resources.
	Close() error
}

// normalizeVector scales v to unit length. Zero vectors pass through
// unchanged.
func normalizeVector(v []float32) []float32 {
	var sumSquares float64
	for _, x := range v {
		sumSquares += float64(x) * float64(x)
	}
	magnitude := math.Sqrt(sumSquares)
	if magnitude == 0 {
		return v
	}

	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / magnitude)
	}
	return out
}
