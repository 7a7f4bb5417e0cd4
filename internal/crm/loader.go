package crm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Aman-CERP/crmdex/internal/errors"
)

// MaxPages caps pagination to guard against a source that returns a cursor
// cycle. 10k pages at a typical 100-record page size is well beyond any
// CRM portal this index is meant for.
const MaxPages = 10000

// Loader fetches all pages of one entity type from a Source, retrying
// transient failures per page with bounded backoff.
type Loader struct {
	source Source
	retry  errors.RetryConfig
}

// NewLoader creates a loader over the given source with the standard
// source retry policy.
func NewLoader(source Source) *Loader {
	return &Loader{
		source: source,
		retry:  errors.SourceRetryConfig(),
	}
}

// NewLoaderWithRetry creates a loader with a custom retry policy.
func NewLoaderWithRetry(source Source, retry errors.RetryConfig) *Loader {
	return &Loader{source: source, retry: retry}
}

// LoadAll fetches every page of the given type and returns the raw records.
// A transient error on one page is retried; a permanent error (or retry
// exhaustion) aborts the load for this type only.
func (l *Loader) LoadAll(ctx context.Context, typ EntityType) ([]RawRecord, error) {
	if !typ.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidQuery,
			fmt.Sprintf("unknown entity type %q", typ), nil)
	}

	var records []RawRecord
	cursor := ""

	for page := 0; ; page++ {
		if page >= MaxPages {
			return nil, errors.PermanentSourceError(
				fmt.Sprintf("pagination for %s exceeded %d pages, cursor cycle suspected", typ, MaxPages), nil)
		}

		result, err := errors.RetryWithResult(ctx, l.retry, func() (Page, error) {
			return l.source.List(ctx, typ, cursor)
		})
		if err != nil {
			if errors.IsRetryable(err) {
				// The retry budget ran out on a transient failure
				return nil, errors.New(errors.ErrCodeSourceExhausted,
					fmt.Sprintf("source retries exhausted loading %s page %d", typ, page), err)
			}
			return nil, err
		}

		records = append(records, result.Records...)

		slog.Debug("loaded source page",
			slog.String("type", string(typ)),
			slog.Int("page", page),
			slog.Int("records", len(result.Records)),
			slog.Int("total", len(records)))

		if result.NextCursor == "" {
			break
		}
		cursor = result.NextCursor
	}

	return records, nil
}
