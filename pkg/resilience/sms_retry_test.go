package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sethvargo/go-retry"
)

func drain(b retry.Backoff, max int) []time.Duration {
	var out []time.Duration
	for i := 0; i < max; i++ {
		d, stop := b.Next()
		if stop {
			break
		}
		out = append(out, d)
	}
	return out
}

func equalDurations(a, b []time.Duration) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestExponential(t *testing.T) {
	tests := []struct {
		name    string
		base    time.Duration
		retries uint64
		want    []time.Duration
	}{
		{"two retries", time.Second, 2, []time.Duration{time.Second, 2 * time.Second}},
		{"four retries", 10 * time.Millisecond, 4, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 40 * time.Millisecond, 80 * time.Millisecond}},
		{"no retries", time.Second, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := drain(Exponential(tt.base, tt.retries), 10); !equalDurations(got, tt.want) {
				t.Errorf("delays = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCappedExponential(t *testing.T) {
	got := drain(CappedExponential(10*time.Second, 5*time.Minute), 7)
	want := []time.Duration{
		10 * time.Second, 20 * time.Second, 40 * time.Second, 80 * time.Second,
		160 * time.Second, 5 * time.Minute, 5 * time.Minute,
	}
	if !equalDurations(got, want) {
		t.Errorf("delays = %v, want %v", got, want)
	}
}

func TestObserve(t *testing.T) {
	var retries []int
	var delays []time.Duration
	b := Observe(Exponential(time.Second, 2), func(n int, d time.Duration) {
		retries = append(retries, n)
		delays = append(delays, d)
	})

	got := drain(b, 5)
	if !equalDurations(got, []time.Duration{time.Second, 2 * time.Second}) {
		t.Errorf("delays = %v, want [1s 2s]", got)
	}
	if len(retries) != 2 || retries[0] != 1 || retries[1] != 2 {
		t.Errorf("retries = %v, want [1 2]", retries)
	}
	if !equalDurations(delays, got) {
		t.Errorf("observed = %v, want %v", delays, got)
	}
}

func TestExponential_WithDo(t *testing.T) {
	calls := 0
	err := retry.Do(context.Background(), Exponential(time.Millisecond, 2), func(context.Context) error {
		calls++
		return retry.RetryableError(errors.New("unavailable"))
	})

	if err == nil || err.Error() != "unavailable" {
		t.Errorf("Do() error = %v, want unavailable", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}
