package worker

import (
	"context"
	"sync"
	"time"

	"sms_classifier/pkg/logger"
	"sms_classifier/pkg/resilience"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
)

// =============================================================================
// Scheduler - unique "classify_sms" work with REPLACE policy
// =============================================================================
//
// At most one run is pending and at most one is active. Enqueue replaces a
// pending run that has not started yet. A Retry result re-queues the same run
// with exponential backoff unless a newer Enqueue arrived meanwhile. With a
// Locker, the lock is renewed for as long as the run is active and the run is
// cancelled once the lock can no longer be held.

const (
	WorkName = "classify_sms"

	ReasonStartup        = "startup"
	ReasonMessageArrived = "message_arrived"
)

// DefaultRetryBackoff is the re-queue policy after a Retry result: 10s
// doubling up to 5m.
func DefaultRetryBackoff() retry.Backoff {
	return resilience.CappedExponential(10*time.Second, 5*time.Minute)
}

// Locker guards a run across processes. *cache.RedisCache satisfies it.
type Locker interface {
	TryLock(ctx context.Context, key, owner string, ttl time.Duration) (bool, error)
	Extend(ctx context.Context, key, owner string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key, owner string) error
}

// Run is one scheduled unit of work.
type Run struct {
	ID         string
	Reason     string
	Attempt    int
	EnqueuedAt time.Time
	NotBefore  time.Time

	backoff retry.Backoff
}

// Scheduler executes a Runner as unique work.
type Scheduler struct {
	name       string
	runner     Runner
	newBackoff func() retry.Backoff
	locker     Locker
	lockTTL    time.Duration
	log        zerolog.Logger

	mu      sync.Mutex
	pending *Run
	active  *Run
	wake    chan struct{}

	cancel context.CancelFunc
	done   chan struct{}
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithRetryBackoff overrides DefaultRetryBackoff. newBackoff is called once
// per run that needs a retry.
func WithRetryBackoff(newBackoff func() retry.Backoff) SchedulerOption {
	return func(s *Scheduler) { s.newBackoff = newBackoff }
}

// WithLocker makes each run take a distributed lock named after the work.
func WithLocker(l Locker, ttl time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		s.locker = l
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}

func NewScheduler(runner Runner, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		name:       WorkName,
		runner:     runner,
		newBackoff: DefaultRetryBackoff,
		lockTTL:    5 * time.Minute,
		log:        logger.Component("scheduler"),
		wake:       make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enqueue schedules a run, replacing any pending one. It returns the run ID.
func (s *Scheduler) Enqueue(reason string) string {
	now := time.Now()
	r := &Run{
		ID:         uuid.New().String(),
		Reason:     reason,
		EnqueuedAt: now,
		NotBefore:  now,
	}

	s.mu.Lock()
	replaced := s.pending
	s.pending = r
	s.mu.Unlock()

	if replaced != nil {
		s.log.Debug().Str("replaced", replaced.ID).Str("run_id", r.ID).Msg("pending run replaced")
	}
	s.signal()
	return r.ID
}

// Pending returns a copy of the pending run, or nil.
func (s *Scheduler) Pending() *Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return nil
	}
	r := *s.pending
	return &r
}

// Active returns a copy of the running run, or nil.
func (s *Scheduler) Active() *Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return nil
	}
	r := *s.active
	return &r
}

// Start enqueues the startup run and begins the execution loop.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	s.mu.Lock()
	s.cancel, s.done = cancel, done
	s.mu.Unlock()

	s.log.Info().Str("work", s.name).Msg("scheduler starting")
	s.Enqueue(ReasonStartup)
	go func() {
		defer close(done)
		s.loop(ctx)
	}()
}

// Stop cancels the loop and waits for an active run to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.log.Info().Str("work", s.name).Msg("scheduler stopped")
}

func (s *Scheduler) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) loop(ctx context.Context) {
	for {
		s.mu.Lock()
		next := s.pending
		s.mu.Unlock()

		if next == nil {
			select {
			case <-ctx.Done():
				return
			case <-s.wake:
				continue
			}
		}

		if wait := time.Until(next.NotBefore); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-s.wake:
				timer.Stop()
				continue
			case <-timer.C:
			}
		}

		s.mu.Lock()
		if s.pending != next {
			s.mu.Unlock()
			continue
		}
		s.pending = nil
		s.active = next
		s.mu.Unlock()

		result := s.execute(ctx, next)

		s.mu.Lock()
		s.active = nil
		if result == ResultRetry && s.pending == nil && ctx.Err() == nil {
			if next.backoff == nil {
				next.backoff = s.newBackoff()
			}
			if delay, stop := next.backoff.Next(); stop {
				s.log.Error().Str("run_id", next.ID).Int("attempt", next.Attempt).Msg("run retries exhausted")
			} else {
				next.Attempt++
				next.NotBefore = time.Now().Add(delay)
				s.pending = next
				s.log.Warn().Str("run_id", next.ID).Int("attempt", next.Attempt).Dur("delay", delay).Msg("run re-queued")
			}
		}
		s.mu.Unlock()
	}
}

func (s *Scheduler) execute(ctx context.Context, r *Run) Result {
	log := s.log.With().Str("run_id", r.ID).Str("reason", r.Reason).Int("attempt", r.Attempt).Logger()

	if s.locker != nil {
		key := "lock:" + s.name
		ok, err := s.locker.TryLock(ctx, key, r.ID, s.lockTTL)
		if err != nil {
			log.Warn().Err(err).Msg("lock unavailable")
			return ResultRetry
		}
		if !ok {
			log.Debug().Msg("run held by another instance")
			return ResultRetry
		}
		defer func() {
			if err := s.locker.Unlock(context.WithoutCancel(ctx), key, r.ID); err != nil {
				log.Warn().Err(err).Msg("failed to release lock")
			}
		}()

		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(ctx)
		defer cancel()
		stopRenew := s.keepLock(ctx, cancel, key, r.ID, log)
		defer stopRenew()
	}

	start := time.Now()
	result := s.runner.Run(ctx)
	log.Info().Str("result", result.String()).Dur("elapsed", time.Since(start)).Msg("run finished")
	return result
}

// keepLock extends the lock every lockTTL/3 until the returned stop func is
// called. It calls lost when the lock was taken over, or when renewals kept
// failing long enough that the lock may have expired.
func (s *Scheduler) keepLock(ctx context.Context, lost context.CancelFunc, key, owner string, log zerolog.Logger) func() {
	done := make(chan struct{})
	exited := make(chan struct{})

	go func() {
		defer close(exited)
		ticker := time.NewTicker(s.lockTTL / 3)
		defer ticker.Stop()

		held := time.Now()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			ok, err := s.locker.Extend(ctx, key, owner, s.lockTTL)
			switch {
			case err == nil && ok:
				held = time.Now()
			case err == nil:
				log.Error().Msg("lock lost, cancelling run")
				lost()
				return
			default:
				log.Warn().Err(err).Msg("lock renewal failed")
				if time.Since(held) >= s.lockTTL*2/3 {
					log.Error().Msg("lock about to expire, cancelling run")
					lost()
					return
				}
			}
		}
	}()

	return func() {
		close(done)
		<-exited
	}
}
