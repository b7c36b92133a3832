package model

import "time"

// Inventory is the authoritative per-product stock counter, kept 1:1
// with products.  QuantityInStock never goes negative: the repository
// performs the reserve check and decrement in a single statement.
//
// Fields:
//  ID              – primary key identifier.
//  ProductID       – product this counter belongs to (unique).
//  QuantityInStock – units available for reservation (>= 0).
//  ReorderLevel    – threshold used by the low-stock report.
//  LastRestockedAt – when stock was last added (null if never).
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Inventory struct {
	ID              uint64     // inventory.id
	ProductID       uint64     // inventory.product_id
	QuantityInStock uint32     // inventory.quantity_in_stock
	ReorderLevel    uint32     // inventory.reorder_level
	LastRestockedAt *time.Time // inventory.last_restocked_at (nullable)
	CreatedAt       time.Time  // inventory.created_at
	UpdatedAt       time.Time  // inventory.updated_at
}
