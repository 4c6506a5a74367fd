package service

import (
	"context"
	"fmt"

	"courier-dispatch/internal/features/dispatch/domain"
	"courier-dispatch/internal/features/dispatch/ports"
)

// CourierService handles location pings and shift changes.
type CourierService struct {
	geo     ports.GeoIndex
	tracker ports.AvailabilityTracker
}

// NewCourierService creates a CourierService.
func NewCourierService(geo ports.GeoIndex, tracker ports.AvailabilityTracker) *CourierService {
	return &CourierService{geo: geo, tracker: tracker}
}

// UpdateLocation records a position ping.
func (s *CourierService) UpdateLocation(ctx context.Context, courierID string, p domain.Point) error {
	if courierID == "" {
		return fmt.Errorf("%w: empty courier id", domain.ErrCourierNotFound)
	}
	if !p.Valid() {
		return fmt.Errorf("%w: (%v, %v)", domain.ErrInvalidLocation, p.Lat, p.Lng)
	}
	return s.geo.UpdateLocation(ctx, courierID, p)
}

// OpenShift makes the courier available with the given capacity.
func (s *CourierService) OpenShift(ctx context.Context, courierID string, capacity int) error {
	if capacity < 1 {
		return fmt.Errorf("%w: %d", domain.ErrInvalidCapacity, capacity)
	}
	return s.tracker.OpenShift(ctx, courierID, capacity)
}

// CloseShift stops new offers to the courier. Orders already held are kept.
func (s *CourierService) CloseShift(ctx context.Context, courierID string) error {
	return s.tracker.CloseShift(ctx, courierID)
}

// Nearby lists available couriers around a point.
func (s *CourierService) Nearby(ctx context.Context, p domain.Point, radiusKm float64, limit int) ([]domain.Candidate, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: (%v, %v)", domain.ErrInvalidLocation, p.Lat, p.Lng)
	}
	return s.geo.FindNearest(ctx, p, radiusKm, limit)
}

// Get returns the courier's availability.
func (s *CourierService) Get(ctx context.Context, courierID string) (*domain.Courier, error) {
	return s.tracker.Get(ctx, courierID)
}

// ManualReviewService exposes the manual dispatch queue.
type ManualReviewService struct {
	queue ports.ManualQueue
}

// NewManualReviewService creates a ManualReviewService.
func NewManualReviewService(q ports.ManualQueue) *ManualReviewService {
	return &ManualReviewService{queue: q}
}

// Pending lists the newest escalated orders first.
func (s *ManualReviewService) Pending(ctx context.Context, limit int) ([]domain.ManualEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.queue.List(ctx, limit)
}
