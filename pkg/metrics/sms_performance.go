// Package metrics tracks classification latency.
package metrics

import (
	"sync"
	"time"

	"github.com/montanaflynn/stats"
)

// =============================================================================
// Performance Tracker
// =============================================================================

const (
	// RecentWindow is the number of latest samples behind RecentAverage.
	RecentWindow = 100
	// PercentileWindow is the sliding window used for percentiles.
	PercentileWindow = 1000
)

// PerformanceTracker records classification latencies. Lifetime totals are
// kept alongside a sliding window of recent samples.
type PerformanceTracker struct {
	mu sync.Mutex

	total    int64
	sum      time.Duration
	min      time.Duration
	max      time.Duration
	last     time.Duration
	lastSeen time.Time

	window []time.Duration // ring buffer, newest at (next-1)
	next   int
	full   bool
}

// NewPerformanceTracker creates an empty tracker.
func NewPerformanceTracker() *PerformanceTracker {
	return &PerformanceTracker{window: make([]time.Duration, PercentileWindow)}
}

// Record adds one latency sample.
func (t *PerformanceTracker) Record(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.total == 0 || d < t.min {
		t.min = d
	}
	if d > t.max {
		t.max = d
	}
	t.total++
	t.sum += d
	t.last = d
	t.lastSeen = time.Now()

	t.window[t.next] = d
	t.next = (t.next + 1) % len(t.window)
	if t.next == 0 {
		t.full = true
	}
}

// RecordMillis adds a sample given in milliseconds.
func (t *PerformanceTracker) RecordMillis(ms int64) {
	t.Record(time.Duration(ms) * time.Millisecond)
}

// samples returns window contents oldest first. Caller holds the lock.
func (t *PerformanceTracker) samples() []time.Duration {
	if !t.full {
		return append([]time.Duration(nil), t.window[:t.next]...)
	}
	out := make([]time.Duration, 0, len(t.window))
	out = append(out, t.window[t.next:]...)
	return append(out, t.window[:t.next]...)
}

// Stats returns a snapshot.
func (t *PerformanceTracker) Stats() PerformanceStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.total == 0 {
		return PerformanceStats{}
	}

	window := toFloat64Data(t.samples())
	recent := window
	if len(recent) > RecentWindow {
		recent = recent[len(recent)-RecentWindow:]
	}
	recentAvg, _ := stats.Mean(recent)

	return PerformanceStats{
		TotalRequests: t.total,
		Average:       t.sum / time.Duration(t.total),
		RecentAverage: time.Duration(recentAvg),
		Min:           t.min,
		Max:           t.max,
		Last:          t.last,
		P50:           percentile(window, 50),
		P95:           percentile(window, 95),
		P99:           percentile(window, 99),
		LastUpdated:   t.lastSeen,
	}
}

func toFloat64Data(ds []time.Duration) stats.Float64Data {
	out := make(stats.Float64Data, len(ds))
	for i, d := range ds {
		out[i] = float64(d)
	}
	return out
}

// percentile uses the nearest-rank method, so the result is always a recorded sample.
func percentile(samples stats.Float64Data, p float64) time.Duration {
	v, err := stats.PercentileNearestRank(samples, p)
	if err != nil {
		return 0
	}
	return time.Duration(v)
}

// Reset clears all samples and totals.
func (t *PerformanceTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.total, t.sum, t.min, t.max, t.last = 0, 0, 0, 0, 0
	t.lastSeen = time.Time{}
	t.window = make([]time.Duration, len(t.window))
	t.next, t.full = 0, false
}

// PerformanceStats is a latency summary.
type PerformanceStats struct {
	TotalRequests int64
	Average       time.Duration
	RecentAverage time.Duration
	Min           time.Duration
	Max           time.Duration
	Last          time.Duration
	P50           time.Duration
	P95           time.Duration
	P99           time.Duration
	LastUpdated   time.Time
}

// ToMap renders the stats in milliseconds for JSON responses.
func (s PerformanceStats) ToMap() map[string]any {
	ms := func(d time.Duration) float64 { return float64(d.Microseconds()) / 1000 }
	return map[string]any{
		"total_requests":    s.TotalRequests,
		"average_ms":        ms(s.Average),
		"recent_average_ms": ms(s.RecentAverage),
		"min_ms":            ms(s.Min),
		"max_ms":            ms(s.Max),
		"last_ms":           ms(s.Last),
		"p50_ms":            ms(s.P50),
		"p95_ms":            ms(s.P95),
		"p99_ms":            ms(s.P99),
	}
}
