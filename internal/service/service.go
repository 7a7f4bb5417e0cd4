// Package service is the facade the transport layer talks to: trigger a
// reindex, query the index, report stats and readiness. It owns the
// wiring between the embedder, the cache state store, and the reindex
// orchestrator.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Aman-CERP/crmdex/internal/cachestate"
	"github.com/Aman-CERP/crmdex/internal/crm"
	"github.com/Aman-CERP/crmdex/internal/embed"
	"github.com/Aman-CERP/crmdex/internal/errors"
	"github.com/Aman-CERP/crmdex/internal/reindex"
	"github.com/Aman-CERP/crmdex/internal/telemetry"
	"github.com/Aman-CERP/crmdex/internal/vecstore"
)

// DefaultK is the result count when the caller does not specify one.
const DefaultK = 10

// Service exposes the index operations to transports and the CLI.
type Service struct {
	embedder     embed.Embedder
	cache        *cachestate.Store[reindex.Summary]
	orchestrator *reindex.Orchestrator
	metrics      *telemetry.QueryMetrics
}

// New wires a service from its collaborators. The cache store starts
// empty; nothing is searchable until the first successful reindex.
func New(source crm.Source, embedder embed.Embedder, cfg reindex.Config) *Service {
	cache := cachestate.New[reindex.Summary]()
	return &Service{
		embedder:     embedder,
		cache:        cache,
		orchestrator: reindex.New(source, embedder, cache, cfg),
		metrics:      telemetry.NewQueryMetrics(),
	}
}

// TriggerReindex runs one full rebuild and returns its summary. Fails
// fast with a rebuild-in-progress error when a job is already active.
func (s *Service) TriggerReindex(ctx context.Context) (*reindex.Summary, error) {
	return s.orchestrator.Trigger(ctx)
}

// Search embeds the query text and ranks entities against the published
// generation. Searching before the first publish fails with an empty-index
// error; callers may surface that or map it to an empty result.
func (s *Service) Search(ctx context.Context, queryText string, k int) ([]vecstore.Result, error) {
	if strings.TrimSpace(queryText) == "" {
		return nil, errors.New(errors.ErrCodeInvalidQuery, "query text is empty", nil)
	}
	if k == 0 {
		k = DefaultK
	}

	gen := s.cache.Current()
	if gen == nil {
		return nil, errors.New(errors.ErrCodeEmptyIndex,
			"no index has been published yet", nil).
			WithSuggestion("Run a reindex first")
	}

	start := time.Now()
	queryVector, err := s.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeEmbeddingFailed, err)
	}
	if len(queryVector) != gen.Dimension() {
		return nil, errors.New(errors.ErrCodeDimensionMismatch,
			fmt.Sprintf("query embedding dimension %d does not match index dimension %d",
				len(queryVector), gen.Dimension()), nil).
			WithSuggestion("The embedding model changed since the last reindex; rebuild the index")
	}

	results, err := gen.Search(queryVector, k)
	if err != nil {
		return nil, err
	}

	latency := time.Since(start)
	event := telemetry.QueryEvent{
		Query:       queryText,
		ResultCount: len(results),
		Latency:     latency,
	}
	if len(results) > 0 {
		event.TopScore = results[0].Score
	}
	s.metrics.Record(event)

	slog.Debug("search complete",
		slog.Int("results", len(results)),
		slog.Int("k", k),
		slog.Duration("latency", latency))
	return results, nil
}

// QueryMetrics returns a snapshot of query telemetry collected since
// the process started.
func (s *Service) QueryMetrics() *telemetry.Snapshot {
	return s.metrics.Snapshot()
}

// Stats returns the published generation's stats, or nil before the
// first publish (the empty marker).
func (s *Service) Stats() *vecstore.Stats {
	gen := s.cache.Current()
	if gen == nil {
		return nil
	}
	stats := gen.Stats()
	return &stats
}

// LastJob returns the most recent rebuild summary, or nil if none ran.
func (s *Service) LastJob() *reindex.Summary {
	return s.cache.LastJob()
}

// Health reports process liveness. From inside the process this is
// trivially true; transports map it to their liveness endpoint.
func (s *Service) Health() bool {
	return true
}

// Ready reports whether a generation has been published and search can
// serve real results.
func (s *Service) Ready() bool {
	return s.cache.Ready()
}

// Close releases the embedder's resources.
func (s *Service) Close() error {
	return s.embedder.Close()
}
