package metrics

import (
	"testing"
	"time"
)

func TestPerformanceTracker_Stats(t *testing.T) {
	tr := NewPerformanceTracker()
	for _, ms := range []int64{30, 10, 20} {
		tr.RecordMillis(ms)
	}

	s := tr.Stats()
	if s.TotalRequests != 3 {
		t.Errorf("TotalRequests = %d, want 3", s.TotalRequests)
	}
	if s.Average != 20*time.Millisecond {
		t.Errorf("Average = %v, want 20ms", s.Average)
	}
	if s.Min != 10*time.Millisecond || s.Max != 30*time.Millisecond {
		t.Errorf("Min/Max = %v/%v, want 10ms/30ms", s.Min, s.Max)
	}
	if s.Last != 20*time.Millisecond {
		t.Errorf("Last = %v, want 20ms", s.Last)
	}
	if s.P50 != 20*time.Millisecond {
		t.Errorf("P50 = %v, want 20ms", s.P50)
	}
}

func TestPerformanceTracker_Percentiles(t *testing.T) {
	tr := NewPerformanceTracker()
	for i := 100; i >= 1; i-- {
		tr.RecordMillis(int64(i))
	}

	s := tr.Stats()
	tests := []struct {
		name string
		got  time.Duration
		want time.Duration
	}{
		{"p50", s.P50, 50 * time.Millisecond},
		{"p95", s.P95, 95 * time.Millisecond},
		{"p99", s.P99, 99 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestPerformanceTracker_RecentAverageUsesLastHundred(t *testing.T) {
	tr := NewPerformanceTracker()
	for i := 0; i < 100; i++ {
		tr.RecordMillis(1000)
	}
	for i := 0; i < 100; i++ {
		tr.RecordMillis(10)
	}

	s := tr.Stats()
	if s.RecentAverage != 10*time.Millisecond {
		t.Errorf("RecentAverage = %v, want 10ms", s.RecentAverage)
	}
	if s.Average != 505*time.Millisecond {
		t.Errorf("Average = %v, want 505ms", s.Average)
	}
}

func TestPerformanceTracker_WindowWraps(t *testing.T) {
	tr := NewPerformanceTracker()
	for i := 0; i < PercentileWindow+5; i++ {
		tr.RecordMillis(int64(i))
	}

	s := tr.Stats()
	if s.TotalRequests != PercentileWindow+5 {
		t.Errorf("TotalRequests = %d, want %d", s.TotalRequests, PercentileWindow+5)
	}
	if s.Min != 0 {
		t.Errorf("Min = %v, want 0 (lifetime)", s.Min)
	}
	if s.Last != time.Duration(PercentileWindow+4)*time.Millisecond {
		t.Errorf("Last = %v", s.Last)
	}
}

func TestPerformanceTracker_Empty(t *testing.T) {
	tr := NewPerformanceTracker()
	if s := tr.Stats(); s.TotalRequests != 0 || s.Average != 0 {
		t.Errorf("empty stats = %+v", s)
	}
	tr.RecordMillis(5)
	tr.Reset()
	if s := tr.Stats(); s.TotalRequests != 0 {
		t.Errorf("after Reset TotalRequests = %d, want 0", s.TotalRequests)
	}
}
