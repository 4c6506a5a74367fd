package ports

import (
	"context"
	"time"

	"courier-dispatch/internal/features/dispatch/domain"
)

// Outcome is the result of driving an order's assignment flow one step.
type Outcome string

const (
	OutcomeOffered   Outcome = "offered"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeEscalated Outcome = "escalated"
)

// AssignmentService is the primary port of the assigner.
type AssignmentService interface {
	Dispatch(ctx context.Context, orderID string) (Outcome, error)
	Accept(ctx context.Context, orderID, courierID string) (*domain.Assignment, error)
	Reject(ctx context.Context, orderID, courierID, reason string) error
	MarkPickedUp(ctx context.Context, orderID, courierID string) (*domain.Assignment, error)
	Complete(ctx context.Context, orderID, courierID string) (*domain.Assignment, error)
	Cancel(ctx context.Context, caps domain.Capabilities, orderID, reason string) error
	Reassign(ctx context.Context, caps domain.Capabilities, orderID, courierID, note string) (*domain.Assignment, error)
	History(ctx context.Context, orderID string) ([]domain.Assignment, error)
}

// SchedulingService decides when an order's assignment flow starts.
type SchedulingService interface {
	OnPreparing(ctx context.Context, orderID string) (time.Duration, error)
	DispatchNow(orderID string)
	Cancel(orderID string) bool
}

// CourierService covers the courier-facing writes and lookups.
type CourierService interface {
	UpdateLocation(ctx context.Context, courierID string, p domain.Point) error
	OpenShift(ctx context.Context, courierID string, capacity int) error
	CloseShift(ctx context.Context, courierID string) error
	Nearby(ctx context.Context, p domain.Point, radiusKm float64, limit int) ([]domain.Candidate, error)
	Get(ctx context.Context, courierID string) (*domain.Courier, error)
}

// ManualReview lists escalated orders.
type ManualReview interface {
	Pending(ctx context.Context, limit int) ([]domain.ManualEntry, error)
}
