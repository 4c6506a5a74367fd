package domain

import "time"

// CourierStatus is the availability state of a courier.
type CourierStatus string

const (
	CourierOffShift  CourierStatus = "off_shift"
	CourierAvailable CourierStatus = "available"
	CourierBusy      CourierStatus = "busy"
)

// Courier is the availability view of a courier. Identity and profile data
// live in the courier management system.
type Courier struct {
	ID          string        `json:"id"`
	ShiftOpen   bool          `json:"shift_open"`
	Status      CourierStatus `json:"status"`
	ActiveCount int           `json:"active_count"`
	Capacity    int           `json:"capacity"`
}

// Eligible is true on an open shift, status available and spare capacity.
func (c Courier) Eligible() bool {
	return c.ShiftOpen && c.Status == CourierAvailable && c.ActiveCount < c.Capacity
}

// Location is the last known position of a courier.
type Location struct {
	CourierID string    `json:"courier_id"`
	Point     Point     `json:"point"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Fresh reports whether the ping is younger than ttl at now.
func (l Location) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(l.UpdatedAt) <= ttl
}

// Candidate is one FindNearest result.
type Candidate struct {
	CourierID  string  `json:"courier_id"`
	DistanceKm float64 `json:"distance_km"`
}
