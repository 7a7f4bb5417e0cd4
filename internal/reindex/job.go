// Package reindex orchestrates full index rebuilds: clear, load, embed,
// build, publish. Exactly one rebuild job runs at a time; per-type
// failures are recorded and tolerated, and only a structural build error
// or all types failing fails the whole job.
package reindex

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Aman-CERP/crmdex/internal/crm"
)

// JobState is the rebuild state machine position.
type JobState string

const (
	StateIdle       JobState = "idle"
	StateClearing   JobState = "clearing"
	StateLoading    JobState = "loading"
	StateEmbedding  JobState = "embedding"
	StateBuilding   JobState = "building"
	StatePublishing JobState = "publishing"
	StateDone       JobState = "done"
	StateFailed     JobState = "failed"
)

// PerTypeOutcome records how one entity type fared during a rebuild.
type PerTypeOutcome struct {
	Type          crm.EntityType `json:"type"`
	Attempted     bool           `json:"attempted"`
	LoadedCount   int            `json:"loaded_count"`
	EmbeddedCount int            `json:"embedded_count"`
	SkippedCount  int            `json:"skipped_count"`
	Succeeded     bool           `json:"succeeded"`
	Error         string         `json:"error,omitempty"`
}

// Summary is the immutable archive of one finished rebuild job. It is
// what trigger callers receive and what the cache keeps as last-job.
type Summary struct {
	State         JobState         `json:"state"`
	StartedAt     time.Time        `json:"started_at"`
	FinishedAt    time.Time        `json:"finished_at"`
	Outcomes      []PerTypeOutcome `json:"outcomes"`
	Log           []string         `json:"log"`
	TotalLoaded   int              `json:"total_loaded"`
	TotalEmbedded int              `json:"total_embedded"`
	TotalEntities int              `json:"total_entities"`
	Succeeded     bool             `json:"succeeded"`
}

// job is the mutable in-flight rebuild state. All access goes through
// the mutex; a Summary snapshot is taken at the end.
type job struct {
	mu        sync.Mutex
	state     JobState
	startedAt time.Time
	outcomes  map[crm.EntityType]*PerTypeOutcome
	log       []string
}

func newJob() *job {
	outcomes := make(map[crm.EntityType]*PerTypeOutcome, len(crm.AllTypes()))
	for _, typ := range crm.AllTypes() {
		outcomes[typ] = &PerTypeOutcome{Type: typ}
	}
	return &job{
		state:     StateIdle,
		startedAt: time.Now().UTC(),
		outcomes:  outcomes,
	}
}

// setState advances the state machine, logging the transition.
func (j *job) setState(s JobState) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.state = s
	j.log = append(j.log, fmt.Sprintf("state: %s", s))
	slog.Debug("rebuild state change", slog.String("state", string(s)))
}

// logf appends a progress line, mirrored to slog.
func (j *job) logf(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	j.mu.Lock()
	j.log = append(j.log, line)
	j.mu.Unlock()
	slog.Info("rebuild progress", slog.String("msg", line))
}

// setOutcome replaces the outcome for one entity type.
func (j *job) setOutcome(o PerTypeOutcome) {
	j.mu.Lock()
	defer j.mu.Unlock()
	*j.outcomes[o.Type] = o
}

// summary snapshots the job in the fixed type order.
func (j *job) summary(totalEntities int) *Summary {
	j.mu.Lock()
	defer j.mu.Unlock()

	s := &Summary{
		State:         j.state,
		StartedAt:     j.startedAt,
		FinishedAt:    time.Now().UTC(),
		Log:           append([]string(nil), j.log...),
		TotalEntities: totalEntities,
		Succeeded:     j.state == StateDone,
	}
	for _, typ := range crm.AllTypes() {
		o := *j.outcomes[typ]
		s.Outcomes = append(s.Outcomes, o)
		if o.Succeeded {
			s.TotalLoaded += o.LoadedCount
			s.TotalEmbedded += o.EmbeddedCount
		}
	}
	return s
}
