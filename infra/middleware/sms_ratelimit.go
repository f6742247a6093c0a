package middleware

import (
	"context"
	"math"
	"strconv"
	"time"

	"sms_classifier/pkg/apperr"

	"github.com/gofiber/fiber/v2"
)

// Limiter decides whether a keyed request may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, time.Duration)
}

// RateLimit rejects requests over the limit with 429 and Retry-After.
// Requests are keyed by scope and client IP.
func RateLimit(limiter Limiter, scope string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodOptions {
			return c.Next()
		}

		allowed, wait := limiter.Allow(c.UserContext(), scope+":"+c.IP())
		if allowed {
			return c.Next()
		}

		retryAfter := int(math.Ceil(wait.Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
		return apperr.RateLimited(retryAfter)
	}
}
