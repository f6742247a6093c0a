// Package ratelimit provides a Redis sliding-window rate limiter.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// slidingWindowScript admits a request when the window holds fewer than
// max entries. Otherwise it returns the negated wait in milliseconds until
// the oldest entry leaves the window.
var slidingWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local max_requests = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

	local count = redis.call('ZCARD', key)
	if count < max_requests then
		redis.call('ZADD', key, now, now .. '-' .. math.random())
		redis.call('PEXPIRE', key, window_ms * 2)
		return 1
	end

	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	if #oldest > 0 then
		return -(oldest[2] + window_ms - now)
	end
	return 0
`)

// SlidingWindowLimiter admits at most Rate+Burst requests per key within
// each window. Redis errors admit the request.
type SlidingWindowLimiter struct {
	redis  *redis.Client
	rate   int
	burst  int
	window time.Duration
	prefix string
}

// NewSlidingWindowLimiter limits to requestsPerSecond plus burst per key.
func NewSlidingWindowLimiter(client *redis.Client, requestsPerSecond, burst int) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		redis:  client,
		rate:   requestsPerSecond,
		burst:  burst,
		window: time.Second,
		prefix: "ratelimit",
	}
}

// Allow reports whether a request for key may proceed and, if not, how
// long the caller should wait.
func (l *SlidingWindowLimiter) Allow(ctx context.Context, key string) (bool, time.Duration) {
	if l.redis == nil || l.rate <= 0 {
		return true, 0
	}

	now := time.Now()
	result, err := slidingWindowScript.Run(ctx, l.redis, []string{l.key(key)},
		now.UnixMilli(),
		now.Add(-l.window).UnixMilli(),
		l.rate+l.burst,
		l.window.Milliseconds(),
	).Int64()
	if err != nil {
		return true, 0
	}

	return decide(result, l.window)
}

func (l *SlidingWindowLimiter) key(k string) string {
	return fmt.Sprintf("%s:%s", l.prefix, k)
}

// decide maps a script result to an admission decision.
func decide(result int64, window time.Duration) (bool, time.Duration) {
	switch {
	case result == 1:
		return true, 0
	case result < 0:
		return false, time.Duration(-result) * time.Millisecond
	default:
		return false, window
	}
}
