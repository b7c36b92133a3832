package model

import "time"

// Cart is a user's mutable shopping cart.  Each user owns at most one
// cart, created lazily on first access.  A successful order conversion
// clears the cart's items but keeps the cart row for reuse.
type Cart struct {
	ID        uint64    // carts.id
	UserID    uint64    // carts.user_id
	CreatedAt time.Time // carts.created_at
	UpdatedAt time.Time // carts.updated_at
}

// CartItem is a single (product, quantity) line in a cart.  The table
// carries a unique (cart_id, product_id) key so adding an existing
// product merges quantities instead of duplicating the line.
//
// Fields:
//  ID        – primary key identifier.
//  CartID    – owning cart.
//  ProductID – product referenced by the line.
//  Quantity  – units requested (> 0).
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type CartItem struct {
	ID        uint64    // cart_items.id
	CartID    uint64    // cart_items.cart_id
	ProductID uint64    // cart_items.product_id
	Quantity  uint32    // cart_items.quantity
	CreatedAt time.Time // cart_items.created_at
	UpdatedAt time.Time // cart_items.updated_at
}
