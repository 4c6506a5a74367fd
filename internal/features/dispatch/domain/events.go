package domain

import (
	"time"

	"courier-dispatch/internal/core/target"
)

// Event types published by the assigner.
const (
	EventOrderAssigned         = "order.assigned"
	EventOrderAssignmentFailed = "order.assignment_failed"
)

// Escalation reasons recorded with manual queue entries.
const (
	ReasonMaxAttempts    = "max_attempts"
	ReasonNoCandidates   = "no_candidates"
	ReasonFlowDeadline   = "flow_deadline"
	ReasonOrderNotFound  = "order_not_found"
	ReasonBadCoordinates = "missing_coordinates"
	ReasonJobFailed      = "job_failed"
)

// ManualEntry is an order waiting for a human dispatcher.
type ManualEntry struct {
	OrderID string    `json:"order_id"`
	Reason  string    `json:"reason"`
	Detail  string    `json:"detail,omitempty"`
	At      time.Time `json:"at"`
}

// NotificationKind names what a notification is about.
type NotificationKind string

const (
	NotifyOffer      NotificationKind = "offer"
	NotifyAssigned   NotificationKind = "assigned"
	NotifyRejected   NotificationKind = "rejected"
	NotifyTimedOut   NotificationKind = "timed_out"
	NotifyCancelled  NotificationKind = "cancelled"
	NotifyReassigned NotificationKind = "reassigned"
)

// Notification is a fire-and-forget message to couriers, stores or users.
type Notification struct {
	Kind         NotificationKind `json:"kind"`
	OrderID      string           `json:"order_id"`
	AssignmentID string           `json:"assignment_id,omitempty"`
	Recipients   []target.Target  `json:"recipients"`
	Note         string           `json:"note,omitempty"`
	At           time.Time        `json:"at"`
}
