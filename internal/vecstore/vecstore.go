// Package vecstore implements the flat (exact) vector index. An index is
// an immutable Generation snapshot: built once from embedded entities,
// searched concurrently without locks, and discarded wholesale when a
// newer generation supersedes it.
package vecstore

import (
	"fmt"
	"sort"
	"time"

	"github.com/viant/vec/search"

	"github.com/Aman-CERP/crmdex/internal/entity"
	"github.com/Aman-CERP/crmdex/internal/errors"
)

// IndexKindFlat identifies the exact brute-force index layout.
const IndexKindFlat = "flat"

// EmbeddedEntity pairs a normalized entity with its embedding vector.
type EmbeddedEntity struct {
	entity.Entity
	Vector []float32
}

// Result is one search hit.
type Result struct {
	Entity entity.Entity
	Score  float32
}

// Stats describes a generation for status reporting.
type Stats struct {
	TotalEntities int       `json:"total_entities"`
	Dimension     int       `json:"dimension"`
	IndexKind     string    `json:"index_kind"`
	ModelName     string    `json:"model_name"`
	BuiltAt       time.Time `json:"built_at"`
}

// Generation is one immutable, fully-built index snapshot. Entities are
// held sorted by (type, id) so index content is independent of the order
// types were embedded in. Vectors are unit-normalized at build time, so
// cosine scoring reduces to SIMD dot products.
type Generation struct {
	entities  []EmbeddedEntity
	dimension int
	modelName string
	builtAt   time.Time
}

// Build constructs a generation from embedded entities. Every vector must
// have the given dimension; any mismatch fails the whole build. Input order
// is irrelevant. A nil/empty input yields a valid empty generation.
func Build(embedded []EmbeddedEntity, dimension int, modelName string) (*Generation, error) {
	if dimension <= 0 {
		return nil, errors.New(errors.ErrCodeDimensionMismatch,
			fmt.Sprintf("invalid index dimension %d", dimension), nil)
	}

	for _, e := range embedded {
		if len(e.Vector) != dimension {
			return nil, errors.New(errors.ErrCodeDimensionMismatch,
				fmt.Sprintf("entity %s has dimension %d, index expects %d",
					e.Key(), len(e.Vector), dimension), nil).
				WithDetail("entity_id", e.ID).
				WithDetail("entity_type", string(e.Type))
		}
	}

	// Copy and normalize; callers keep ownership of their slices
	entities := make([]EmbeddedEntity, len(embedded))
	copy(entities, embedded)
	for i := range entities {
		entities[i].Vector = normalize(entities[i].Vector)
	}

	sort.Slice(entities, func(i, j int) bool {
		if entities[i].Type != entities[j].Type {
			return entities[i].Type < entities[j].Type
		}
		return entities[i].ID < entities[j].ID
	})

	return &Generation{
		entities:  entities,
		dimension: dimension,
		modelName: modelName,
		builtAt:   time.Now().UTC(),
	}, nil
}

// Len returns the number of indexed entities.
func (g *Generation) Len() int {
	return len(g.entities)
}

// Dimension returns the vector dimension shared by all entries.
func (g *Generation) Dimension() int {
	return g.dimension
}

// ModelName returns the embedding model that produced the vectors.
func (g *Generation) ModelName() string {
	return g.modelName
}

// BuiltAt returns the build timestamp.
func (g *Generation) BuiltAt() time.Time {
	return g.builtAt
}

// Stats reports the generation's summary numbers.
func (g *Generation) Stats() Stats {
	return Stats{
		TotalEntities: len(g.entities),
		Dimension:     g.dimension,
		IndexKind:     IndexKindFlat,
		ModelName:     g.modelName,
		BuiltAt:       g.builtAt,
	}
}

// Search scans the full generation and returns up to k entities ordered by
// descending cosine similarity, ties broken by ascending entity id. k <= 0
// returns an empty result. Searching an empty generation is an error so
// callers can distinguish "no index yet" from "no matches".
func (g *Generation) Search(queryVector []float32, k int) ([]Result, error) {
	if len(g.entities) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyIndex,
			"index generation has no entities", nil).
			WithSuggestion("Trigger a reindex to populate the index")
	}
	if len(queryVector) != g.dimension {
		return nil, errors.New(errors.ErrCodeDimensionMismatch,
			fmt.Sprintf("query has dimension %d, index expects %d",
				len(queryVector), g.dimension), nil)
	}
	if k <= 0 {
		return []Result{}, nil
	}
	if k > len(g.entities) {
		k = len(g.entities)
	}

	// CosineDistance is the portable viant/vec entry point; the
	// magnitude-precomputing variants only exist on arm64.
	query := search.Float32s(normalize(queryVector))

	results := make([]Result, len(g.entities))
	for i := range g.entities {
		dist := query.CosineDistance(g.entities[i].Vector)
		results[i] = Result{
			Entity: g.entities[i].Entity,
			Score:  1 - dist,
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Entity.ID < results[j].Entity.ID
	})

	return results[:k], nil
}

// normalize returns a unit-length copy of v. Zero vectors come back as a
// zero copy rather than NaN.
func normalize(v []float32) []float32 {
	mag := search.Float32s(v).Magnitude()
	out := make([]float32, len(v))
	if mag == 0 {
		return out
	}
	for i, val := range v {
		out[i] = val / mag
	}
	return out
}
