package model

import "time"

// Order status values.  The machine is
// pending → processing → shipped → delivered, with cancelled reachable
// from pending or processing only.  delivered and cancelled are
// terminal.
const (
	OrderPending    = "pending"
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderDelivered  = "delivered"
	OrderCancelled  = "cancelled"
)

// orderTransitions lists the allowed next states per current state.
var orderTransitions = map[string][]string{
	OrderPending:    {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipped, OrderCancelled},
	OrderShipped:    {OrderDelivered},
	OrderDelivered:  {},
	OrderCancelled:  {},
}

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s string) bool {
	_, ok := orderTransitions[s]
	return ok
}

// CanTransition reports whether an order may move from one status to
// another.  Terminal states (delivered, cancelled) admit no transition.
func CanTransition(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Order is an immutable record of a converted cart.  TotalCents is
// snapshotted at conversion time and never recomputed; later price
// changes do not affect existing orders.  Only the status and the
// shipping address may change after creation.
//
// Fields:
//  ID         – primary key identifier.
//  UserID     – owner of the order.
//  CartID     – cart the order was converted from.
//  Address    – shipping address text supplied at conversion.
//  Status     – one of the Order* constants above.
//  TotalCents – total amount in cents at conversion time.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Order struct {
	ID         uint64    // orders.id
	UserID     uint64    // orders.user_id
	CartID     uint64    // orders.cart_id
	Address    string    // orders.address
	Status     string    // orders.status
	TotalCents uint64    // orders.total_cents
	CreatedAt  time.Time // orders.created_at
	UpdatedAt  time.Time // orders.updated_at
}

// OrderItem is a per-line snapshot taken at conversion time.  The cart
// is cleared once the order exists, so cancellation relies on these
// rows to release the exact quantities that were reserved.
type OrderItem struct {
	ID             uint64 // order_items.id
	OrderID        uint64 // order_items.order_id
	ProductID      uint64 // order_items.product_id
	Quantity       uint32 // order_items.quantity
	UnitPriceCents uint64 // order_items.unit_price_cents
}
