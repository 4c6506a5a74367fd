package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"courier-dispatch/internal/core/clock"
	"courier-dispatch/internal/core/logger"
	"courier-dispatch/internal/features/dispatch/domain"
	"courier-dispatch/internal/features/dispatch/ports"

	"go.uber.org/zap"
)

// Submitter queues dispatch jobs.
type Submitter interface {
	Submit(orderID, trigger string)
}

// Scheduler delays each order's dispatch until the courier would arrive as the
// food is ready: the lead time is the longest item preparation time minus a
// travel buffer. Orders with no lead time are dispatched immediately.
type Scheduler struct {
	orders      ports.OrderSource
	jobs        Submitter
	clock       clock.Clock
	buffer      int
	defaultPrep int
	log         *zap.Logger

	mu      sync.Mutex
	pending map[string]clock.Timer
}

// NewScheduler creates a Scheduler. bufferMinutes and defaultPrepMinutes come
// from DISPATCH_PREP_BUFFER_MINUTES and DISPATCH_DEFAULT_PREP_MINUTES.
func NewScheduler(orders ports.OrderSource, jobs Submitter, clk clock.Clock, bufferMinutes, defaultPrepMinutes int) *Scheduler {
	return &Scheduler{
		orders:      orders,
		jobs:        jobs,
		clock:       clk,
		buffer:      bufferMinutes,
		defaultPrep: defaultPrepMinutes,
		log:         logger.Named("scheduler"),
		pending:     make(map[string]clock.Timer),
	}
}

// OnPreparing is called when an order enters preparation. It returns the
// delay before the dispatch job runs. Calling it again for an order that is
// already scheduled keeps the first schedule.
func (s *Scheduler) OnPreparing(ctx context.Context, orderID string) (time.Duration, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return 0, fmt.Errorf("fetch order %s: %w", orderID, err)
	}

	prep := order.PrepMinutes(s.defaultPrep)
	lead := time.Duration(domain.LeadMinutes(prep, s.buffer)) * time.Minute

	if lead == 0 {
		s.log.Info("dispatching immediately", zap.String("order_id", orderID), zap.Int("prep_minutes", prep))
		s.jobs.Submit(orderID, TriggerImmediate)
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pending[orderID]; ok {
		s.log.Debug("order already scheduled", zap.String("order_id", orderID))
		return lead, nil
	}
	s.pending[orderID] = s.clock.AfterFunc(lead, func() {
		if s.take(orderID) {
			s.jobs.Submit(orderID, TriggerScheduled)
		}
	})

	s.log.Info("dispatch scheduled",
		zap.String("order_id", orderID),
		zap.Int("prep_minutes", prep),
		zap.Duration("lead", lead),
	)
	return lead, nil
}

// DispatchNow skips any pending delay and queues the job right away.
func (s *Scheduler) DispatchNow(orderID string) {
	s.Cancel(orderID)
	s.jobs.Submit(orderID, TriggerManual)
}

// Cancel drops a scheduled dispatch. It reports whether one was pending.
func (s *Scheduler) Cancel(orderID string) bool {
	s.mu.Lock()
	t, ok := s.pending[orderID]
	delete(s.pending, orderID)
	s.mu.Unlock()

	if ok {
		t.Stop()
	}
	return ok
}

// Pending returns the number of orders waiting for their dispatch time.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *Scheduler) take(orderID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pending[orderID]; !ok {
		return false
	}
	delete(s.pending, orderID)
	return true
}
