package crm

import (
	"context"
	"strconv"
	"sync"
)

// StaticSource is an in-memory Source backed by fixed record sets.
// Used by tests and by `crmdex reindex --fixture` for offline smoke runs.
type StaticSource struct {
	mu       sync.Mutex
	records  map[EntityType][]RawRecord
	pageSize int

	// Errs injects a failure for a type: List returns the error on every
	// call for that type.
	Errs map[EntityType]error

	// FailAtPage injects a failure at a specific page index (0-based) for
	// a type, after serving earlier pages successfully. Takes effect only
	// when Errs has an entry for the type.
	FailAtPage map[EntityType]int

	calls map[EntityType]int
}

// NewStaticSource creates a static source with the given records per type.
// pageSize controls pagination; zero means everything in one page.
func NewStaticSource(records map[EntityType][]RawRecord, pageSize int) *StaticSource {
	return &StaticSource{
		records:  records,
		pageSize: pageSize,
		calls:    make(map[EntityType]int),
	}
}

// Calls returns how many List calls were made for the given type.
func (s *StaticSource) Calls(typ EntityType) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[typ]
}

// List implements Source over the in-memory record sets.
func (s *StaticSource) List(ctx context.Context, typ EntityType, cursor string) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}

	s.mu.Lock()
	s.calls[typ]++
	page := pageIndex(cursor)
	err := s.Errs[typ]
	failAt, hasFailAt := s.FailAtPage[typ]
	all := s.records[typ]
	size := s.pageSize
	s.mu.Unlock()

	if err != nil {
		if !hasFailAt || page >= failAt {
			return Page{}, err
		}
	}

	if size <= 0 || size >= len(all) {
		return Page{Records: all}, nil
	}

	start := page * size
	if start >= len(all) {
		return Page{}, nil
	}
	end := start + size
	next := ""
	if end < len(all) {
		next = cursorFor(page + 1)
	} else {
		end = len(all)
	}
	return Page{Records: all[start:end], NextCursor: next}, nil
}

func pageIndex(cursor string) int {
	if cursor == "" {
		return 0
	}
	n, err := strconv.Atoi(cursor)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func cursorFor(page int) string {
	return strconv.Itoa(page)
}
