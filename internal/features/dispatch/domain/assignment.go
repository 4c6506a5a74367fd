package domain

import (
	"strings"
	"time"
)

// AssignmentStatus is the lifecycle state of one offer of an order to a courier.
type AssignmentStatus string

const (
	StatusAssigned  AssignmentStatus = "assigned"
	StatusAccepted  AssignmentStatus = "accepted"
	StatusInTransit AssignmentStatus = "in_transit"
	StatusDelivered AssignmentStatus = "delivered"
	StatusRejected  AssignmentStatus = "rejected"
	StatusTimedOut  AssignmentStatus = "timed_out"
	StatusCancelled AssignmentStatus = "cancelled"
)

// ActiveStatuses are the non-terminal statuses. An order holds at most one
// assignment in any of them.
var ActiveStatuses = []AssignmentStatus{StatusAssigned, StatusAccepted, StatusInTransit}

// Active reports whether s is non-terminal.
func (s AssignmentStatus) Active() bool {
	return s == StatusAssigned || s == StatusAccepted || s == StatusInTransit
}

// Valid reports whether s is a known status.
func (s AssignmentStatus) Valid() bool {
	switch s {
	case StatusAssigned, StatusAccepted, StatusInTransit, StatusDelivered,
		StatusRejected, StatusTimedOut, StatusCancelled:
		return true
	}
	return false
}

// Assignment is one attempt to assign one order to one courier.
type Assignment struct {
	ID                  string           `json:"id"`
	OrderID             string           `json:"order_id"`
	CourierID           string           `json:"courier_id"`
	Status              AssignmentStatus `json:"status"`
	Pickup              Point            `json:"pickup"`
	Dropoff             Point            `json:"dropoff"`
	EstimatedDistanceKm float64          `json:"estimated_distance_km"`
	PriorityLevel       int              `json:"priority_level"`
	CreatedAt           time.Time        `json:"created_at"`
	ExpiresAt           time.Time        `json:"expires_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
	Notes               string           `json:"notes,omitempty"`
}

// Expired reports whether the offer window has closed at now. The window is
// half open: an offer created at T with timeout d expires at exactly T+d.
func (a Assignment) Expired(now time.Time) bool {
	return !now.Before(a.ExpiresAt)
}

// AppendNote adds a line to the assignment notes.
func AppendNote(notes, note string) string {
	note = strings.TrimSpace(note)
	switch {
	case note == "":
		return notes
	case notes == "":
		return note
	default:
		return notes + "\n" + note
	}
}
