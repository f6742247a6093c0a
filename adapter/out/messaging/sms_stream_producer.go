// Package messaging provides Redis Streams adapters for new-message events.
package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"sms_classifier/core/port/out"
)

const (
	// StreamMessageArrived carries one event per stored message awaiting classification.
	StreamMessageArrived = "sms:arrived"

	// streamMaxLen bounds the stream; consumers only need recent events.
	streamMaxLen = 10000
)

// RedisProducer implements out.ClassifyTrigger using Redis Streams.
type RedisProducer struct {
	client *redis.Client
}

var _ out.ClassifyTrigger = (*RedisProducer)(nil)

func NewRedisProducer(client *redis.Client) *RedisProducer {
	return &RedisProducer{client: client}
}

// PublishMessageArrived publishes a new-message event. Missing ID and
// timestamp are filled in.
func (p *RedisProducer) PublishMessageArrived(ctx context.Context, job *out.MessageArrivedJob) error {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	return p.publish(ctx, StreamMessageArrived, job)
}

func (p *RedisProducer) publish(ctx context.Context, stream string, job any) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]any{"data": string(data)},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", stream, err)
	}
	return nil
}
