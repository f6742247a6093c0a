// Package resilience builds retry policies for calls to external services.
package resilience

import (
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
)

// Exponential waits base, 2*base, 4*base ... and stops after retries retries.
// Policies are stateful: build one per operation.
func Exponential(base time.Duration, retries uint64) retry.Backoff {
	return retry.WithMaxRetries(retries, retry.NewExponential(base))
}

// CappedExponential doubles from base without a retry limit, never waiting
// longer than limit.
func CappedExponential(base, limit time.Duration) retry.Backoff {
	return retry.WithCappedDuration(limit, retry.NewExponential(base))
}

// Observe reports every delay next hands out, numbered from 1, before it is waited.
func Observe(next retry.Backoff, fn func(n int, delay time.Duration)) retry.Backoff {
	var mu sync.Mutex
	n := 0
	return retry.BackoffFunc(func() (time.Duration, bool) {
		d, stop := next.Next()
		if stop {
			return 0, true
		}
		mu.Lock()
		n++
		i := n
		mu.Unlock()
		fn(i, d)
		return d, false
	})
}
