package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/online-storefront/internal/model"
)

// InventoryRepo is the authoritative stock ledger.  All decrements go
// through ReserveTx, which performs the availability check and the
// decrement in a single UPDATE so concurrent reservations on the same
// product serialize on the row and the counter can never go negative.
type InventoryRepo struct{ DB *sql.DB }

func NewInventoryRepo(db *sql.DB) *InventoryRepo { return &InventoryRepo{DB: db} }

const inventoryColumns = "id,product_id,quantity_in_stock,reorder_level,last_restocked_at,created_at,updated_at"

func scanInventory(scan func(dest ...interface{}) error) (model.Inventory, error) {
	var inv model.Inventory
	err := scan(&inv.ID, &inv.ProductID, &inv.QuantityInStock, &inv.ReorderLevel,
		&inv.LastRestockedAt, &inv.CreatedAt, &inv.UpdatedAt)
	return inv, err
}

// Create adds a ledger row for a product.  Each product has at most one
// row; a second insert fails with ErrConflict.
func (r *InventoryRepo) Create(ctx context.Context, productID uint64, quantity, reorderLevel uint32) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO inventory (product_id, quantity_in_stock, reorder_level) VALUES (?,?,?)",
		productID, quantity, reorderLevel)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrConflict
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByProduct fetches the ledger row for a product.
func (r *InventoryRepo) GetByProduct(ctx context.Context, productID uint64) (model.Inventory, error) {
	return scanInventory(r.DB.QueryRowContext(ctx,
		"SELECT "+inventoryColumns+" FROM inventory WHERE product_id=? LIMIT 1", productID).Scan)
}

// List returns ledger rows, optionally restricted to products at or
// below their reorder level.
func (r *InventoryRepo) List(ctx context.Context, lowStockOnly bool) ([]model.Inventory, error) {
	q := "SELECT " + inventoryColumns + " FROM inventory"
	if lowStockOnly {
		q += " WHERE quantity_in_stock <= reorder_level"
	}
	q += " ORDER BY product_id"
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Inventory, 0)
	for rows.Next() {
		inv, err := scanInventory(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// ReserveTx atomically checks availability and decrements the counter
// within the caller's transaction.  The WHERE clause is the guard: when
// stock is short no row matches, nothing is written, and the caller gets
// an InsufficientStockError naming the product.  Two concurrent
// reservations for a product's last unit therefore yield exactly one
// success.
func (r *InventoryRepo) ReserveTx(ctx context.Context, tx *sql.Tx, productID uint64, quantity uint32) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE inventory SET quantity_in_stock = quantity_in_stock - ? WHERE product_id = ? AND quantity_in_stock >= ?",
		quantity, productID, quantity)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &InsufficientStockError{ProductID: productID}
	}
	return nil
}

// ReleaseTx reverses a reservation within the caller's transaction.
// Used when an order is cancelled or a later line of a conversion fails.
func (r *InventoryRepo) ReleaseTx(ctx context.Context, tx *sql.Tx, productID uint64, quantity uint32) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE inventory SET quantity_in_stock = quantity_in_stock + ? WHERE product_id = ?",
		quantity, productID)
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

// Restock increments the counter and stamps last_restocked_at.  No
// upper bound is enforced.
func (r *InventoryRepo) Restock(ctx context.Context, productID uint64, quantity uint32) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE inventory SET quantity_in_stock = quantity_in_stock + ?, last_restocked_at = NOW() WHERE product_id = ?",
		quantity, productID)
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

// UpdateReorderLevel changes the low-stock threshold.
func (r *InventoryRepo) UpdateReorderLevel(ctx context.Context, productID uint64, level uint32) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE inventory SET reorder_level = ? WHERE product_id = ?", level, productID)
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
