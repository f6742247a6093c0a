package worker

import (
	"context"
	"fmt"

	"sms_classifier/core/port/out"
	"sms_classifier/pkg/logger"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// Enqueuer accepts classification triggers.
type Enqueuer interface {
	Enqueue(reason string) string
}

// ArrivalHandler turns message-arrived stream entries into scheduler runs.
type ArrivalHandler struct {
	scheduler Enqueuer
	log       zerolog.Logger
}

func NewArrivalHandler(scheduler Enqueuer) *ArrivalHandler {
	return &ArrivalHandler{scheduler: scheduler, log: logger.Component("arrival_handler")}
}

// Handle implements messaging.JobHandler.
func (h *ArrivalHandler) Handle(ctx context.Context, stream string, data []byte) error {
	var job out.MessageArrivedJob
	if err := json.Unmarshal(data, &job); err != nil {
		return fmt.Errorf("decode %s entry: %w", stream, err)
	}

	runID := h.scheduler.Enqueue(ReasonMessageArrived)
	h.log.Debug().
		Str("job_id", job.ID).
		Int64("message_id", job.MessageID).
		Str("run_id", runID).
		Msg("classification enqueued")
	return nil
}

// SchedulerTrigger enqueues locally. It satisfies out.ClassifyTrigger when
// no Redis stream is configured.
type SchedulerTrigger struct {
	scheduler Enqueuer
}

func NewSchedulerTrigger(scheduler Enqueuer) *SchedulerTrigger {
	return &SchedulerTrigger{scheduler: scheduler}
}

func (t *SchedulerTrigger) PublishMessageArrived(_ context.Context, _ *out.MessageArrivedJob) error {
	t.scheduler.Enqueue(ReasonMessageArrived)
	return nil
}
