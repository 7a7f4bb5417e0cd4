// Package cachestate holds the process-wide published index state: the
// current IndexGeneration and the most recent rebuild summary. It is the
// only state shared between the orchestrator (single writer) and search
// readers, so the generation hand-off is a single atomic pointer swap —
// a concurrent reader sees the fully-old or fully-new generation, never
// a mix.
package cachestate

import (
	"sync/atomic"

	"github.com/Aman-CERP/crmdex/internal/vecstore"
)

// Store publishes index generations and archives rebuild summaries.
// The summary type is generic so the orchestrator can archive its own
// job type without this package depending on it.
//
// The zero value is not usable; call New.
type Store[J any] struct {
	current atomic.Pointer[vecstore.Generation]
	lastJob atomic.Pointer[J]
}

// New creates an empty store: no published generation, no job history.
func New[J any]() *Store[J] {
	return &Store[J]{}
}

// Current returns the published generation, or nil before the first
// successful publish (the empty marker).
func (s *Store[J]) Current() *vecstore.Generation {
	return s.current.Load()
}

// Publish atomically swaps in a new generation. The superseded generation
// stays valid for readers that already hold it; it is reclaimed by GC once
// the last in-flight search drops its reference.
func (s *Store[J]) Publish(gen *vecstore.Generation) {
	s.current.Store(gen)
}

// Ready reports whether a generation has been published.
func (s *Store[J]) Ready() bool {
	return s.current.Load() != nil
}

// LastJob returns the most recent rebuild summary, or nil if no rebuild
// has completed yet.
func (s *Store[J]) LastJob() *J {
	return s.lastJob.Load()
}

// ArchiveJob records the summary of a finished rebuild, successful or not.
func (s *Store[J]) ArchiveJob(summary *J) {
	s.lastJob.Store(summary)
}
