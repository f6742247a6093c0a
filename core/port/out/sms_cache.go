package out

import (
	"context"
	"time"
)

// PredictionCache stores JSON-encodable values by key.
type PredictionCache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}
