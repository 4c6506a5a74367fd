// Package retry runs an operation with bounded exponential backoff.
package retry

import (
	"context"
	"errors"
	"time"

	"courier-dispatch/internal/core/config"
	"courier-dispatch/internal/core/logger"

	"go.uber.org/zap"
)

// Policy configures Do.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultPolicy is used when a caller passes a zero Policy.
var DefaultPolicy = Policy{MaxAttempts: 3, BaseDelay: 50 * time.Millisecond, MaxDelay: 500 * time.Millisecond}

// FromConfig builds a Policy from the RETRY_* settings.
func FromConfig(cfg config.RetryConfig) Policy {
	return Policy{
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   time.Duration(cfg.BaseDelayMs) * time.Millisecond,
		MaxDelay:    time.Duration(cfg.MaxDelayMs) * time.Millisecond,
	}
}

type permanentError struct{ err error }

func (p permanentError) Error() string { return p.err.Error() }
func (p permanentError) Unwrap() error { return p.err }

// Permanent marks err as not worth retrying. Do returns the wrapped error.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

// Do calls fn until it succeeds, returns a Permanent error, the context ends
// or the attempts run out. The last error is returned unwrapped.
func Do(ctx context.Context, name string, p Policy, fn func(context.Context) error) error {
	if p.MaxAttempts <= 0 {
		p = DefaultPolicy
	}

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}

		var perm permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		lastErr = err

		if ctx.Err() != nil || attempt == p.MaxAttempts {
			break
		}

		delay := Backoff(p.BaseDelay, p.MaxDelay, attempt)
		logger.Get().Warn("retrying operation",
			zap.String("operation", name),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if !sleepWithContext(ctx, delay) {
			break
		}
	}
	return lastErr
}

// Backoff returns base doubled per previous attempt, capped at max.
func Backoff(base, max time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := base << (attempt - 1)
	if d > max || d <= 0 {
		return max
	}
	return d
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
