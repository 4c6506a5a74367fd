package ports

import (
	"context"
	"time"

	"courier-dispatch/internal/features/dispatch/domain"
)

// GeoIndex stores courier positions and answers nearest-courier queries.
type GeoIndex interface {
	// UpdateLocation upserts the courier position and stamps the update time.
	UpdateLocation(ctx context.Context, courierID string, p domain.Point) error
	// FindNearest returns fresh, available couriers within radiusKm ordered by
	// distance then courier id. No match is an empty slice, not an error.
	FindNearest(ctx context.Context, p domain.Point, radiusKm float64, limit int) ([]domain.Candidate, error)
	// Locate returns the last known position, or nil when the courier never pinged.
	Locate(ctx context.Context, courierID string) (*domain.Location, error)
	// Prune drops positions older than the freshness TTL.
	Prune(ctx context.Context) (int, error)
}

// EligibilityChecker is the read side of the availability tracker.
type EligibilityChecker interface {
	IsEligible(ctx context.Context, courierID string) (bool, error)
}

// AvailabilityTracker owns shift state and the per-courier active order counter.
type AvailabilityTracker interface {
	EligibilityChecker
	// Reserve takes one capacity slot, flipping the courier to busy when full.
	Reserve(ctx context.Context, courierID string) error
	// Release returns one slot. Releasing with nothing reserved is ErrNotReserved.
	Release(ctx context.Context, courierID string) error
	OpenShift(ctx context.Context, courierID string, capacity int) error
	CloseShift(ctx context.Context, courierID string) error
	Get(ctx context.Context, courierID string) (*domain.Courier, error)
}

// AssignmentLedger is the authoritative record of assignment attempts.
type AssignmentLedger interface {
	// Create inserts an assigned row. It fails with ErrAssignmentActive when the
	// order already has a non-terminal assignment.
	Create(ctx context.Context, a *domain.Assignment) error
	Get(ctx context.Context, id string) (*domain.Assignment, error)
	// Active returns the non-terminal assignment of the order, or nil.
	Active(ctx context.Context, orderID string) (*domain.Assignment, error)
	// Transition moves the assignment to status `to` only if it is currently in
	// one of `from`; otherwise ErrStaleTransition.
	Transition(ctx context.Context, id string, from []domain.AssignmentStatus, to domain.AssignmentStatus, note string, at time.Time) (*domain.Assignment, error)
	// Discard removes a row whose courier reservation never happened.
	Discard(ctx context.Context, id string) error
	// History lists every assignment of the order, oldest first.
	History(ctx context.Context, orderID string) ([]domain.Assignment, error)
	// ListExpired lists assigned rows whose expiry is at or before now.
	ListExpired(ctx context.Context, now time.Time, limit int) ([]domain.Assignment, error)
}

// OrderSource reads orders from the service that owns them.
type OrderSource interface {
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
}

// Notifier delivers notifications. Implementations must not block on the network.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) error
}

// ManualQueue holds orders a human dispatcher has to handle.
type ManualQueue interface {
	Push(ctx context.Context, e domain.ManualEntry) error
	List(ctx context.Context, limit int) ([]domain.ManualEntry, error)
}
