package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"sms_classifier/adapter/in/worker"
	"sms_classifier/adapter/out/messaging"
	"sms_classifier/config"
	"sms_classifier/core/port/out"
	"sms_classifier/pkg/logger"

	"github.com/rs/zerolog"
)

const workerLockTTL = 5 * time.Minute

// Worker runs the classification scheduler and, with Redis, the
// message-arrived stream consumer.
type Worker struct {
	scheduler *worker.Scheduler
	consumer  *messaging.Consumer
	deps      *Dependencies
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	zlog      zerolog.Logger
}

// NewWorker builds a worker with its own dependencies.
func NewWorker(cfg *config.Config) (*Worker, func(), error) {
	deps, cleanup, err := NewDependencies(cfg)
	if err != nil {
		return nil, nil, err
	}
	w, err := NewWorkerWithDeps(cfg, deps)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return w, cleanup, nil
}

// NewWorkerWithDeps builds a worker on shared dependencies. It requires
// message storage.
func NewWorkerWithDeps(cfg *config.Config, deps *Dependencies) (*Worker, error) {
	if !deps.HasStore() {
		return nil, fmt.Errorf("worker requires DATABASE_URL")
	}

	zlog := logger.Component("worker")

	runner := worker.NewClassificationWorker(
		deps.Messages,
		deps.Classifier,
		deps.Extractor,
		deps.Tracker,
		cfg.BatchSize,
	)

	var opts []worker.SchedulerOption
	if deps.Cache != nil {
		opts = append(opts, worker.WithLocker(deps.Cache, workerLockTTL))
	}
	scheduler := worker.NewScheduler(runner, opts...)

	ctx, cancel := context.WithCancel(context.Background())
	w := &Worker{
		scheduler: scheduler,
		deps:      deps,
		ctx:       ctx,
		cancel:    cancel,
		zlog:      zlog,
	}

	if deps.Redis != nil {
		w.consumer = messaging.NewConsumer(deps.Redis, &messaging.ConsumerConfig{
			Group:                cfg.ConsumerGroup,
			Consumer:             cfg.WorkerID,
			Streams:              []string{messaging.StreamMessageArrived},
			Handler:              worker.NewArrivalHandler(scheduler),
			Logger:               logger.Component("consumer"),
			PendingCheckInterval: time.Duration(cfg.ConsumerPendingCheckSec) * time.Second,
			MaxRetries:           cfg.ConsumerMaxRetries,
		})
		zlog.Info().Str("stream", messaging.StreamMessageArrived).Msg("stream consumer configured")
	} else {
		zlog.Warn().Msg("Redis not available, worker runs on startup and local triggers only")
	}

	return w, nil
}

// Trigger enqueues classification in this process. The API uses it when
// no Redis stream is configured.
func (w *Worker) Trigger() out.ClassifyTrigger {
	return worker.NewSchedulerTrigger(w.scheduler)
}

// Start runs until Stop is called.
func (w *Worker) Start() {
	w.scheduler.Start(w.ctx)

	if w.consumer != nil {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.zlog.Info().Msg("Starting Redis Stream Consumer...")
			if err := w.consumer.Run(w.ctx); err != nil && !errors.Is(err, context.Canceled) {
				w.zlog.Error().Err(err).Msg("Redis Stream Consumer error")
			}
		}()
	}

	<-w.ctx.Done()
}

// Stop cancels the consumer and waits for an active run to finish.
func (w *Worker) Stop() {
	w.cancel()
	w.scheduler.Stop()
	w.wg.Wait()
}

func (w *Worker) Dependencies() *Dependencies {
	return w.deps
}
