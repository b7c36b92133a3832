package model

import "time"

// Payment status values.  Payments are bookkeeping records only; no
// gateway integration happens here.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

// Payment records money received against an order.
type Payment struct {
	ID            uint64     // payments.id
	OrderID       uint64     // payments.order_id
	TransactionID string     // payments.transaction_id (unique)
	Status        string     // payments.status
	AmountCents   uint64     // payments.amount_cents
	PaidAt        *time.Time // payments.paid_at (nullable)
	CreatedAt     time.Time  // payments.created_at
	UpdatedAt     time.Time  // payments.updated_at
}
