package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/online-storefront/internal/model"
)

// CartRepo manages carts and their line items.  A cart belongs to
// exactly one user and holds at most one line per product: the
// cart_items table carries a unique (cart_id, product_id) key and adds
// merge quantities through it.
type CartRepo struct{ DB *sql.DB }

func NewCartRepo(db *sql.DB) *CartRepo { return &CartRepo{DB: db} }

// GetOrCreate returns the user's cart, lazily creating an empty one on
// first access.  Idempotent: the second concurrent caller either finds
// the row or loses the duplicate-key race and re-reads it.
func (r *CartRepo) GetOrCreate(ctx context.Context, userID uint64) (model.Cart, error) {
	cart, err := r.getByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if err != sql.ErrNoRows {
		return model.Cart{}, err
	}
	if _, err := r.DB.ExecContext(ctx,
		"INSERT IGNORE INTO carts (user_id) VALUES (?)", userID); err != nil {
		return model.Cart{}, err
	}
	return r.getByUser(ctx, userID)
}

func (r *CartRepo) getByUser(ctx context.Context, userID uint64) (model.Cart, error) {
	var c model.Cart
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,user_id,created_at,updated_at FROM carts WHERE user_id=? LIMIT 1",
		userID).Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// GetByID fetches a cart, used to resolve the owner for authorization.
func (r *CartRepo) GetByID(ctx context.Context, id uint64) (model.Cart, error) {
	var c model.Cart
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,user_id,created_at,updated_at FROM carts WHERE id=? LIMIT 1",
		id).Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// AddItem inserts a line or merges the quantity into an existing line
// for the same product.  The merge happens in MySQL via the unique
// (cart_id, product_id) key, so concurrent adds cannot duplicate a line.
func (r *CartRepo) AddItem(ctx context.Context, cartID, productID uint64, quantity uint32) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO cart_items (cart_id, product_id, quantity) VALUES (?,?,?)
		 ON DUPLICATE KEY UPDATE quantity = quantity + VALUES(quantity)`,
		cartID, productID, quantity)
	return err
}

// GetItem returns a line together with the owning cart's user id so the
// handler can run the ownership check before mutating.
func (r *CartRepo) GetItem(ctx context.Context, itemID uint64) (model.CartItem, uint64, error) {
	var it model.CartItem
	var ownerID uint64
	err := r.DB.QueryRowContext(ctx,
		`SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.created_at, ci.updated_at, c.user_id
		 FROM cart_items ci JOIN carts c ON c.id = ci.cart_id
		 WHERE ci.id=? LIMIT 1`, itemID).Scan(
		&it.ID, &it.CartID, &it.ProductID, &it.Quantity, &it.CreatedAt, &it.UpdatedAt, &ownerID)
	return it, ownerID, err
}

// UpdateItemQuantity replaces a line's quantity.
func (r *CartRepo) UpdateItemQuantity(ctx context.Context, itemID uint64, quantity uint32) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE cart_items SET quantity=? WHERE id=?", quantity, itemID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// RemoveItem deletes a single line.
func (r *CartRepo) RemoveItem(ctx context.Context, itemID uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM cart_items WHERE id=?", itemID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Items returns all lines of a cart.
func (r *CartRepo) Items(ctx context.Context, cartID uint64) ([]model.CartItem, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,cart_id,product_id,quantity,created_at,updated_at FROM cart_items WHERE cart_id=? ORDER BY id",
		cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectItems(rows)
}

// ItemsTx returns all lines of a cart within a transaction.  Order
// conversion reads through this so the lines it reserves are the lines
// it clears.
func (r *CartRepo) ItemsTx(ctx context.Context, tx *sql.Tx, cartID uint64) ([]model.CartItem, error) {
	rows, err := tx.QueryContext(ctx,
		"SELECT id,cart_id,product_id,quantity,created_at,updated_at FROM cart_items WHERE cart_id=? ORDER BY id",
		cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectItems(rows)
}

func collectItems(rows *sql.Rows) ([]model.CartItem, error) {
	items := make([]model.CartItem, 0)
	for rows.Next() {
		var it model.CartItem
		if err := rows.Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity,
			&it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Clear removes every line; the cart row itself persists for reuse.
func (r *CartRepo) Clear(ctx context.Context, cartID uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM cart_items WHERE cart_id=?", cartID)
	return err
}

// ClearTx is Clear inside the order-conversion transaction.
func (r *CartRepo) ClearTx(ctx context.Context, tx *sql.Tx, cartID uint64) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM cart_items WHERE cart_id=?", cartID)
	return err
}
