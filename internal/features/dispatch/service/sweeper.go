package service

import (
	"context"
	"time"

	"courier-dispatch/internal/core/logger"
	"courier-dispatch/internal/features/dispatch/ports"

	"go.uber.org/zap"
)

// OverdueExpirer times out offers whose timers were lost.
type OverdueExpirer interface {
	ExpireOverdue(ctx context.Context) (int, error)
}

// Sweeper periodically expires overdue offers and prunes stale locations.
type Sweeper struct {
	assigner OverdueExpirer
	geo      ports.GeoIndex
	interval time.Duration
	log      *zap.Logger
}

// NewSweeper creates a Sweeper.
func NewSweeper(assigner OverdueExpirer, geo ports.GeoIndex, interval time.Duration) *Sweeper {
	return &Sweeper{
		assigner: assigner,
		geo:      geo,
		interval: interval,
		log:      logger.Named("sweeper"),
	}
}

// Run sweeps once immediately, then every interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.Sweep(ctx)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Sweep performs one pass. Failures are logged and retried on the next tick.
func (s *Sweeper) Sweep(ctx context.Context) {
	expired, err := s.assigner.ExpireOverdue(ctx)
	if err != nil {
		s.log.Error("expire overdue offers", zap.Error(err))
	} else if expired > 0 {
		s.log.Info("expired overdue offers", zap.Int("count", expired))
	}

	pruned, err := s.geo.Prune(ctx)
	if err != nil {
		s.log.Error("prune stale locations", zap.Error(err))
	} else if pruned > 0 {
		s.log.Debug("pruned stale locations", zap.Int("count", pruned))
	}
}
