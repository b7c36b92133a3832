package model

import "time"

// TrackingEntry is an append-only note in an order's tracking history.
type TrackingEntry struct {
	ID        uint64    // order_tracking.id
	OrderID   uint64    // order_tracking.order_id
	Status    string    // order_tracking.status
	Location  *string   // order_tracking.location (nullable)
	Notes     *string   // order_tracking.notes (nullable)
	CreatedAt time.Time // order_tracking.created_at
}
