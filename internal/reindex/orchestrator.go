package reindex

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/crmdex/internal/cachestate"
	"github.com/Aman-CERP/crmdex/internal/crm"
	"github.com/Aman-CERP/crmdex/internal/embed"
	"github.com/Aman-CERP/crmdex/internal/entity"
	"github.com/Aman-CERP/crmdex/internal/errors"
	"github.com/Aman-CERP/crmdex/internal/vecstore"
)

// DefaultTimeout bounds one whole rebuild. Types still in flight when it
// expires are counted as failed; finished types are kept.
const DefaultTimeout = 10 * time.Minute

// Config configures the orchestrator.
type Config struct {
	// Timeout bounds a whole rebuild job. Zero means DefaultTimeout;
	// negative disables the bound.
	Timeout time.Duration
}

// DefaultConfig returns the standard orchestrator settings.
func DefaultConfig() Config {
	return Config{Timeout: DefaultTimeout}
}

// Orchestrator runs rebuild jobs against a CRM source and an embedder,
// publishing each successful build to the cache state store.
type Orchestrator struct {
	loader   *crm.Loader
	embedder embed.Embedder
	cache    *cachestate.Store[Summary]
	config   Config

	mu     sync.Mutex
	active bool
}

// New creates an orchestrator. The cache store is shared with readers;
// the orchestrator is its only writer.
func New(source crm.Source, embedder embed.Embedder, cache *cachestate.Store[Summary], cfg Config) *Orchestrator {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Orchestrator{
		loader:   crm.NewLoader(source),
		embedder: embedder,
		cache:    cache,
		config:   cfg,
	}
}

// typeResult carries one type's pipeline output to the merge. Each type
// fills its own slot; there is no shared accumulator during fan-out.
type typeResult struct {
	outcome  PerTypeOutcome
	embedded []vecstore.EmbeddedEntity
}

// Trigger runs one full rebuild and returns its summary. A second trigger
// while one is active is rejected; rebuilds are single-flight, not queued.
// Per-type failures are recorded in the summary and do not fail the job;
// the job fails only when every type fails or the build itself does, and
// a failed job leaves the previously published generation untouched.
func (o *Orchestrator) Trigger(ctx context.Context) (*Summary, error) {
	o.mu.Lock()
	if o.active {
		o.mu.Unlock()
		return nil, errors.New(errors.ErrCodeRebuildInProgress,
			"a rebuild job is already running", nil).
			WithSuggestion("Wait for the active rebuild to finish and retry")
	}
	o.active = true
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.active = false
		o.mu.Unlock()
	}()

	if o.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.config.Timeout)
		defer cancel()
	}

	j := newJob()
	start := time.Now()

	// Clearing: any in-progress generation from a previous failed run is
	// simply dropped; the published one is not touched until the swap.
	j.setState(StateClearing)
	j.logf("cleared in-progress state")

	types := crm.AllTypes()
	results := make([]typeResult, len(types))

	// Each type runs its own load+embed pipeline so a type that finishes
	// early is fully done before a slow sibling hits the job timeout.
	// Goroutines never return errors; failures land in the type's outcome
	// slot. loadsDone only gates the Loading -> Embedding transition.
	j.setState(StateLoading)
	var loadsDone sync.WaitGroup
	g, runCtx := errgroup.WithContext(ctx)
	for i, typ := range types {
		i, typ := i, typ
		loadsDone.Add(1)
		g.Go(func() error {
			outcome, entities := o.loadType(runCtx, j, typ)
			results[i].outcome = outcome
			loadsDone.Done()
			if outcome.Succeeded {
				o.embedType(runCtx, j, &results[i], entities)
			}
			return nil
		})
	}
	loadsDone.Wait()
	j.setState(StateEmbedding)
	_ = g.Wait()

	for i := range results {
		j.setOutcome(results[i].outcome)
	}

	// Building: merge survivors into one generation. Zero surviving types
	// is the only load/embed condition fatal to the job.
	j.setState(StateBuilding)
	var merged []vecstore.EmbeddedEntity
	anySucceeded := false
	for i := range results {
		if results[i].outcome.Succeeded {
			anySucceeded = true
			merged = append(merged, results[i].embedded...)
		}
	}
	if !anySucceeded {
		j.logf("all entity types failed, keeping previously published index")
		return o.fail(j, errors.New(errors.ErrCodeBuildFailed,
			"rebuild failed: no entity type succeeded", nil))
	}

	gen, err := vecstore.Build(merged, o.embedder.Dimensions(), o.embedder.ModelName())
	if err != nil {
		// Dimension mismatch here means model/config inconsistency; the
		// whole job fails and the old generation stays published.
		j.logf("index build failed: %v", err)
		return o.fail(j, err)
	}
	j.logf("built %s index: %d entities, dimension %d",
		vecstore.IndexKindFlat, gen.Len(), gen.Dimension())

	// Publishing: the single atomic swap visible to readers.
	j.setState(StatePublishing)
	o.cache.Publish(gen)
	j.logf("published generation built at %s", gen.BuiltAt().Format(time.RFC3339))

	j.setState(StateDone)
	summary := j.summary(gen.Len())
	o.cache.ArchiveJob(summary)

	slog.Info("rebuild complete",
		slog.Int("total_entities", summary.TotalEntities),
		slog.Int("total_loaded", summary.TotalLoaded),
		slog.Duration("duration", time.Since(start)))
	return summary, nil
}

// fail archives a failed job and returns its summary alongside the error.
func (o *Orchestrator) fail(j *job, err error) (*Summary, error) {
	j.setState(StateFailed)
	summary := j.summary(0)
	o.cache.ArchiveJob(summary)
	return summary, err
}

// loadType fetches and normalizes all records of one type. Malformed
// records are skipped and counted; source errors fail the type.
func (o *Orchestrator) loadType(ctx context.Context, j *job, typ crm.EntityType) (PerTypeOutcome, []entity.Entity) {
	outcome := PerTypeOutcome{Type: typ, Attempted: true}

	records, err := o.loader.LoadAll(ctx, typ)
	if err != nil {
		outcome.Error = err.Error()
		j.logf("%s: load failed: %v", typ, err)
		return outcome, nil
	}

	entities := make([]entity.Entity, 0, len(records))
	for _, raw := range records {
		ent, err := entity.Normalize(raw, typ)
		if err != nil {
			outcome.SkippedCount++
			slog.Warn("skipping malformed record",
				slog.String("type", string(typ)),
				slog.String("error", err.Error()))
			continue
		}
		entities = append(entities, ent)
	}

	outcome.LoadedCount = len(entities)
	outcome.Succeeded = true
	if outcome.SkippedCount > 0 {
		j.logf("%s: loaded %d records (%d malformed skipped)",
			typ, outcome.LoadedCount, outcome.SkippedCount)
	} else {
		j.logf("%s: loaded %d records", typ, outcome.LoadedCount)
	}
	return outcome, entities
}

// embedType embeds one type's normalized entities into the result slot.
// Any embedding failure, including timeout cancellation, fails the type.
func (o *Orchestrator) embedType(ctx context.Context, j *job, res *typeResult, entities []entity.Entity) {
	if len(entities) == 0 {
		j.logf("%s: nothing to embed", res.outcome.Type)
		return
	}

	texts := make([]string, len(entities))
	for i, ent := range entities {
		texts[i] = ent.Text
	}

	vectors, err := o.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		res.outcome.Succeeded = false
		res.outcome.Error = err.Error()
		j.logf("%s: embedding failed: %v", res.outcome.Type, err)
		return
	}
	if len(vectors) != len(entities) {
		res.outcome.Succeeded = false
		res.outcome.Error = fmt.Sprintf("embedder returned %d vectors for %d texts",
			len(vectors), len(entities))
		j.logf("%s: %s", res.outcome.Type, res.outcome.Error)
		return
	}

	res.embedded = make([]vecstore.EmbeddedEntity, len(entities))
	for i := range entities {
		res.embedded[i] = vecstore.EmbeddedEntity{Entity: entities[i], Vector: vectors[i]}
	}
	res.outcome.EmbeddedCount = len(res.embedded)
	j.logf("%s: embedded %d entities", res.outcome.Type, res.outcome.EmbeddedCount)
}
