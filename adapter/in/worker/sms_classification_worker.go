// Package worker runs background classification of stored messages.
package worker

import (
	"context"
	"fmt"
	"time"

	"sms_classifier/core/domain"
	"sms_classifier/core/port/in"
	"sms_classifier/core/port/out"
	"sms_classifier/core/service/classification"
	"sms_classifier/pkg/logger"
	"sms_classifier/pkg/metrics"

	"github.com/rs/zerolog"
)

// DefaultBatchSize is the number of unclassified messages taken per run.
const DefaultBatchSize = 10

// Result is the outcome of one unit of work.
type Result int

const (
	ResultSuccess Result = iota
	ResultRetry
)

func (r Result) String() string {
	if r == ResultRetry {
		return "retry"
	}
	return "success"
}

// Runner is a unit of work the Scheduler can execute.
type Runner interface {
	Run(ctx context.Context) Result
}

// ClassificationWorker classifies a batch of unclassified messages and
// writes the predictions back.
type ClassificationWorker struct {
	messages   out.MessageRepository
	classifier in.Classifier
	extractor  *classification.FeatureExtractor
	tracker    *metrics.PerformanceTracker
	batchSize  int
	log        zerolog.Logger
}

// NewClassificationWorker creates a worker. tracker may be nil.
func NewClassificationWorker(
	messages out.MessageRepository,
	classifier in.Classifier,
	extractor *classification.FeatureExtractor,
	tracker *metrics.PerformanceTracker,
	batchSize int,
) *ClassificationWorker {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &ClassificationWorker{
		messages:   messages,
		classifier: classifier,
		extractor:  extractor,
		tracker:    tracker,
		batchSize:  batchSize,
		log:        logger.Component("classification_worker"),
	}
}

// Run processes one batch. Messages are handled sequentially; a failing
// message is logged and left unclassified for the next run.
func (w *ClassificationWorker) Run(ctx context.Context) Result {
	if !w.classifier.IsAvailable(ctx) {
		w.log.Warn().Msg("classifier unavailable, retrying later")
		return ResultRetry
	}

	batch, err := w.messages.ListUnclassified(ctx, w.batchSize)
	if err != nil {
		w.log.Error().Err(err).Msg("failed to list unclassified messages")
		return ResultRetry
	}
	if len(batch) == 0 {
		return ResultSuccess
	}

	classified, failed := 0, 0
	for _, msg := range batch {
		if ctx.Err() != nil {
			w.log.Warn().Int("remaining", len(batch)-classified-failed).Msg("run cancelled")
			return ResultRetry
		}
		if err := w.classifyOne(ctx, msg); err != nil {
			failed++
			w.log.Error().
				Err(err).
				Int64("message_id", msg.ID).
				Str("body", logger.Redact(msg.Body)).
				Msg("failed to classify message")
			continue
		}
		classified++
	}

	w.log.Info().
		Int("batch", len(batch)).
		Int("classified", classified).
		Int("failed", failed).
		Msg("classification batch done")
	return ResultSuccess
}

func (w *ClassificationWorker) classifyOne(ctx context.Context, msg *domain.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	text := classification.Sanitize(msg.Body)
	var sender *string
	if msg.Sender != "" {
		sender = &msg.Sender
	}
	features := w.extractor.Extract(text, sender)

	start := time.Now()
	pred := w.classifier.Predict(ctx, features)
	if w.tracker != nil {
		w.tracker.Record(time.Since(start))
	}
	if pred == nil {
		return fmt.Errorf("classifier returned no prediction")
	}

	if err := w.messages.UpdateClassification(ctx, msg.ID, pred); err != nil {
		return fmt.Errorf("update classification: %w", err)
	}
	return nil
}
