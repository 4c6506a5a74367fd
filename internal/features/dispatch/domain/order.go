package domain

import (
	"fmt"
	"math"
	"time"
)

// Item is an order line as far as dispatch timing is concerned.
type Item struct {
	ID string `json:"id"`
	// PrepTime is zero when the catalog does not know it.
	PrepTime time.Duration `json:"prep_time"`
}

// Order is the read model fetched from the order service.
type Order struct {
	ID            string `json:"id"`
	StoreID       string `json:"store_id"`
	UserID        string `json:"user_id"`
	Pickup        Point  `json:"pickup"`
	Dropoff       Point  `json:"dropoff"`
	PriorityLevel int    `json:"priority_level"`
	Items         []Item `json:"items"`
}

// Validate rejects orders that cannot be dispatched.
func (o Order) Validate() error {
	if !o.Pickup.Valid() {
		return fmt.Errorf("%w: pickup of order %s", ErrMissingCoordinates, o.ID)
	}
	if !o.Dropoff.Valid() {
		return fmt.Errorf("%w: dropoff of order %s", ErrMissingCoordinates, o.ID)
	}
	return nil
}

// PrepMinutes is the longest item preparation time rounded up to whole
// minutes. Items without a prep time are ignored; defaultMinutes applies when
// no item has one.
func (o Order) PrepMinutes(defaultMinutes int) int {
	longest := time.Duration(0)
	for _, it := range o.Items {
		if it.PrepTime > longest {
			longest = it.PrepTime
		}
	}
	if longest <= 0 {
		return defaultMinutes
	}
	return int(math.Ceil(longest.Minutes()))
}

// LeadMinutes is how long to wait before dispatching a courier so that they
// arrive as the order is ready.
func LeadMinutes(prepMinutes, bufferMinutes int) int {
	return max(prepMinutes-bufferMinutes, 0)
}
