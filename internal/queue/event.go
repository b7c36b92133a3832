// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records placed orders.
package queue

// OrderPlacedEvent is published when a cart is successfully converted
// into an order. It carries enough detail for downstream consumers to
// log, notify, or trigger fulfilment without querying the primary
// database.
type OrderPlacedEvent struct {
	OrderID    uint64           `json:"order_id"`
	UserID     uint64           `json:"user_id"`
	Address    string           `json:"address"`
	TotalCents uint64           `json:"total_cents"`
	Lines      []OrderLineEvent `json:"lines"`
	PlacedAt   string           `json:"placed_at"`
}

// OrderLineEvent is one snapshotted line of a placed order.
type OrderLineEvent struct {
	ProductID      uint64 `json:"product_id"`
	Quantity       uint32 `json:"quantity"`
	UnitPriceCents uint64 `json:"unit_price_cents"`
}
