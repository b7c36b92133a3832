package model

import "time"

// Product is a catalog entry.  Quantity is a denormalized display
// value; the authoritative stock counter lives in the inventory table.
//
// Fields:
//  ID          – primary key identifier.
//  SKU         – unique stock keeping unit.
//  Name        – product name.
//  Description – optional long description.
//  PriceCents  – unit price in cents.
//  Quantity    – display quantity (not consulted by order conversion).
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Product struct {
	ID          uint64    // products.id
	SKU         string    // products.sku
	Name        string    // products.name
	Description *string   // products.description (nullable)
	PriceCents  uint64    // products.price_cents
	Quantity    uint32    // products.quantity
	CreatedAt   time.Time // products.created_at
	UpdatedAt   time.Time // products.updated_at
}

// Category groups products for browsing.
type Category struct {
	ID          uint64    // categories.id
	Name        string    // categories.name
	Description *string   // categories.description (nullable)
	IsActive    bool      // categories.is_active
	CreatedAt   time.Time // categories.created_at
	UpdatedAt   time.Time // categories.updated_at
}
