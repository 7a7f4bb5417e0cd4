// Package telemetry tracks search query patterns in memory: latency
// distribution, zero-result rate, and recent queries. Nothing is
// reported externally and nothing persists across restarts.
package telemetry

import (
	"sync"
	"time"
)

// LatencyBucket is a latency histogram bucket.
type LatencyBucket string

const (
	BucketP10   LatencyBucket = "p10"   // <10ms
	BucketP50   LatencyBucket = "p50"   // 10-50ms
	BucketP100  LatencyBucket = "p100"  // 50-100ms
	BucketP500  LatencyBucket = "p500"  // 100-500ms
	BucketP1000 LatencyBucket = "p1000" // >=500ms
)

// LatencyToBucket converts a duration to its histogram bucket.
func LatencyToBucket(d time.Duration) LatencyBucket {
	ms := d.Milliseconds()
	switch {
	case ms < 10:
		return BucketP10
	case ms < 50:
		return BucketP50
	case ms < 100:
		return BucketP100
	case ms < 500:
		return BucketP500
	default:
		return BucketP1000
	}
}

// QueryEvent is one recorded search query.
type QueryEvent struct {
	Query       string
	ResultCount int
	TopScore    float32
	Latency     time.Duration
	Timestamp   time.Time
}

// IsZeroResult reports whether this query returned nothing.
func (e QueryEvent) IsZeroResult() bool {
	return e.ResultCount == 0
}

// CircularBuffer is a fixed-capacity FIFO buffer.
type CircularBuffer[T any] struct {
	items    []T
	head     int // next write position
	size     int
	capacity int
	mu       sync.RWMutex
}

// NewCircularBuffer creates a circular buffer with the given capacity.
func NewCircularBuffer[T any](capacity int) *CircularBuffer[T] {
	if capacity <= 0 {
		capacity = 100
	}
	return &CircularBuffer[T]{
		items:    make([]T, capacity),
		capacity: capacity,
	}
}

// Add appends an item, evicting the oldest when full.
func (b *CircularBuffer[T]) Add(item T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items[b.head] = item
	b.head = (b.head + 1) % b.capacity
	if b.size < b.capacity {
		b.size++
	}
}

// Items returns the buffered items, oldest first.
func (b *CircularBuffer[T]) Items() []T {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]T, 0, b.size)
	start := b.head - b.size
	if start < 0 {
		start += b.capacity
	}
	for i := 0; i < b.size; i++ {
		out = append(out, b.items[(start+i)%b.capacity])
	}
	return out
}

// Size returns the current number of buffered items.
func (b *CircularBuffer[T]) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}

// Snapshot is an immutable view of collected query metrics.
type Snapshot struct {
	TotalQueries  int64                   `json:"total_queries"`
	ZeroResults   int64                   `json:"zero_results"`
	LatencyCounts map[LatencyBucket]int64 `json:"latency_counts"`
	RecentQueries []QueryEvent            `json:"recent_queries"`
}

// ZeroResultPercentage returns the share of queries with no results.
func (s *Snapshot) ZeroResultPercentage() float64 {
	if s.TotalQueries == 0 {
		return 0
	}
	return float64(s.ZeroResults) / float64(s.TotalQueries) * 100
}

// QueryMetrics collects search query telemetry. Safe for concurrent use.
type QueryMetrics struct {
	mu            sync.Mutex
	totalQueries  int64
	zeroResults   int64
	latencyCounts map[LatencyBucket]int64
	recent        *CircularBuffer[QueryEvent]
}

// DefaultRecentQueries is how many recent queries are retained.
const DefaultRecentQueries = 50

// NewQueryMetrics creates an empty collector.
func NewQueryMetrics() *QueryMetrics {
	return &QueryMetrics{
		latencyCounts: make(map[LatencyBucket]int64),
		recent:        NewCircularBuffer[QueryEvent](DefaultRecentQueries),
	}
}

// Record adds one query event.
func (m *QueryMetrics) Record(event QueryEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	m.mu.Lock()
	m.totalQueries++
	if event.IsZeroResult() {
		m.zeroResults++
	}
	m.latencyCounts[LatencyToBucket(event.Latency)]++
	m.mu.Unlock()

	m.recent.Add(event)
}

// Snapshot returns a copy of the current metrics.
func (m *QueryMetrics) Snapshot() *Snapshot {
	m.mu.Lock()
	counts := make(map[LatencyBucket]int64, len(m.latencyCounts))
	for k, v := range m.latencyCounts {
		counts[k] = v
	}
	snap := &Snapshot{
		TotalQueries:  m.totalQueries,
		ZeroResults:   m.zeroResults,
		LatencyCounts: counts,
	}
	m.mu.Unlock()

	snap.RecentQueries = m.recent.Items()
	return snap
}
