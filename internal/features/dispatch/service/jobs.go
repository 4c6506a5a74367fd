package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"courier-dispatch/internal/core/clock"
	"courier-dispatch/internal/core/logger"
	"courier-dispatch/internal/core/metrics"
	"courier-dispatch/internal/core/retry"
	"courier-dispatch/internal/features/dispatch/domain"
	"courier-dispatch/internal/features/dispatch/ports"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Job triggers.
const (
	TriggerScheduled = "scheduled"
	TriggerManual    = "manual"
	TriggerImmediate = "immediate"
)

// Dispatcher starts an order's assignment flow.
type Dispatcher interface {
	Dispatch(ctx context.Context, orderID string) (ports.Outcome, error)
}

// JobRunner runs dispatch jobs in the background with bounded concurrency.
// Each job gets the flow deadline as its timeout and is retried on transient
// failures; what still fails lands in the manual queue.
type JobRunner struct {
	dispatcher Dispatcher
	manual     ports.ManualQueue
	clock      clock.Clock
	sem        *semaphore.Weighted
	deadline   time.Duration
	policy     retry.Policy
	log        *zap.Logger

	mu   sync.Mutex
	base context.Context
	wg   sync.WaitGroup
}

// NewJobRunner creates a JobRunner allowing maxConcurrent jobs at once.
func NewJobRunner(d Dispatcher, manual ports.ManualQueue, clk clock.Clock, maxConcurrent int, deadline time.Duration, policy retry.Policy) *JobRunner {
	return &JobRunner{
		dispatcher: d,
		manual:     manual,
		clock:      clk,
		sem:        semaphore.NewWeighted(int64(max(maxConcurrent, 1))),
		deadline:   deadline,
		policy:     policy,
		log:        logger.Named("jobs"),
		base:       context.Background(),
	}
}

// Start binds jobs to ctx: cancelling it aborts queued and running jobs.
func (r *JobRunner) Start(ctx context.Context) {
	r.mu.Lock()
	r.base = ctx
	r.mu.Unlock()
}

// Submit queues a dispatch job for the order.
func (r *JobRunner) Submit(orderID, trigger string) {
	metrics.ScheduledJobs.WithLabelValues(trigger).Inc()

	r.mu.Lock()
	base := r.base
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.run(base, orderID, trigger)
	}()
}

// Wait blocks until every submitted job returned.
func (r *JobRunner) Wait() {
	r.wg.Wait()
}

func (r *JobRunner) run(base context.Context, orderID, trigger string) {
	if err := r.sem.Acquire(base, 1); err != nil {
		r.log.Warn("dispatch job dropped", zap.String("order_id", orderID), zap.Error(err))
		return
	}
	defer r.sem.Release(1)

	ctx, cancel := context.WithTimeout(base, r.deadline)
	defer cancel()

	var outcome ports.Outcome
	err := retry.Do(ctx, "dispatch.job", r.policy, func(ctx context.Context) error {
		var err error
		outcome, err = r.dispatcher.Dispatch(ctx, orderID)
		if domain.IsDataError(err) {
			return retry.Permanent(err)
		}
		return err
	})

	switch {
	case err == nil:
		r.log.Debug("dispatch job finished",
			zap.String("order_id", orderID),
			zap.String("trigger", trigger),
			zap.String("outcome", string(outcome)),
		)
	case domain.IsDataError(err):
		// Already queued for review by the assigner.
	case errors.Is(err, context.Canceled) && base.Err() != nil:
		r.log.Info("dispatch job aborted by shutdown", zap.String("order_id", orderID))
	case errors.Is(err, context.DeadlineExceeded):
		r.fail(orderID, domain.ReasonFlowDeadline, err)
	default:
		r.fail(orderID, domain.ReasonJobFailed, err)
	}
}

func (r *JobRunner) fail(orderID, reason string, err error) {
	r.log.Error("dispatch job failed", zap.String("order_id", orderID), zap.String("reason", reason), zap.Error(err))
	metrics.Escalations.WithLabelValues(reason).Inc()

	ctx, cancel := context.WithTimeout(context.Background(), callbackTimeout)
	defer cancel()
	entry := domain.ManualEntry{OrderID: orderID, Reason: reason, Detail: err.Error(), At: r.clock.Now()}
	if err := r.manual.Push(ctx, entry); err != nil {
		r.log.Error("failed to push manual dispatch entry", zap.String("order_id", orderID), zap.Error(err))
	}
}
