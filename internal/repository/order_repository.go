package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/online-storefront/internal/model"
)

// OrderRepo provides persistence for orders and their line snapshots.
// Orders are written only inside the conversion transaction; afterwards
// only the status and the shipping address may change.
type OrderRepo struct{ DB *sql.DB }

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{DB: db} }

const orderColumns = "id,user_id,cart_id,address,status,total_cents,created_at,updated_at"

func scanOrder(scan func(dest ...interface{}) error) (model.Order, error) {
	var o model.Order
	err := scan(&o.ID, &o.UserID, &o.CartID, &o.Address, &o.Status,
		&o.TotalCents, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

// CreateTx inserts an order within the conversion transaction and
// populates the generated ID and timestamps on the passed record.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, o *model.Order) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO orders (user_id, cart_id, address, status, total_cents) VALUES (?,?,?,?,?)",
		o.UserID, o.CartID, o.Address, o.Status, o.TotalCents)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	// Query back the full row to populate timestamps and defaults
	got, err := scanOrder(tx.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id=?", o.ID).Scan)
	if err != nil {
		return err
	}
	*o = got
	return nil
}

// CreateItemsBulkTx inserts the order's line snapshots in a single
// statement.  Passing an empty slice has no effect and returns nil.
func (r *OrderRepo) CreateItemsBulkTx(ctx context.Context, tx *sql.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	query := "INSERT INTO order_items (order_id, product_id, quantity, unit_price_cents) VALUES "
	args := make([]interface{}, 0, len(items)*4)
	for i, it := range items {
		if i > 0 {
			query += ","
		}
		query += "(?,?,?,?)"
		args = append(args, it.OrderID, it.ProductID, it.Quantity, it.UnitPriceCents)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// GetByID fetches an order; the caller authorizes against its UserID.
func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (model.Order, error) {
	return scanOrder(r.DB.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id=? LIMIT 1", id).Scan)
}

// GetTx fetches an order within a transaction, used by cancellation so
// the status it reads is the status it transitions from.
func (r *OrderRepo) GetTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Order, error) {
	return scanOrder(tx.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id=? LIMIT 1 FOR UPDATE", id).Scan)
}

// ListByOwner returns a user's orders, newest first.  The owner filter
// lives in the query itself: "list mine" reads never rely on a post-hoc
// ownership check.
func (r *OrderRepo) ListByOwner(ctx context.Context, ownerID uint64, status string) ([]model.Order, error) {
	q := "SELECT " + orderColumns + " FROM orders WHERE user_id=?"
	args := []interface{}{ownerID}
	if status != "" {
		q += " AND status=?"
		args = append(args, status)
	}
	q += " ORDER BY created_at DESC"
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	orders := make([]model.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows.Scan)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// Items returns an order's line snapshots.
func (r *OrderRepo) Items(ctx context.Context, orderID uint64) ([]model.OrderItem, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,order_id,product_id,quantity,unit_price_cents FROM order_items WHERE order_id=? ORDER BY id",
		orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrderItems(rows)
}

// ItemsTx returns the line snapshots within a transaction, used by
// cancellation to release the reserved stock.
func (r *OrderRepo) ItemsTx(ctx context.Context, tx *sql.Tx, orderID uint64) ([]model.OrderItem, error) {
	rows, err := tx.QueryContext(ctx,
		"SELECT id,order_id,product_id,quantity,unit_price_cents FROM order_items WHERE order_id=? ORDER BY id",
		orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrderItems(rows)
}

func collectOrderItems(rows *sql.Rows) ([]model.OrderItem, error) {
	items := make([]model.OrderItem, 0)
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.UnitPriceCents); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// SetStatusTx updates the order status within a transaction.  The
// transition itself is validated by the checkout service.
func (r *OrderRepo) SetStatusTx(ctx context.Context, tx *sql.Tx, orderID uint64, status string) error {
	res, err := tx.ExecContext(ctx, "UPDATE orders SET status=? WHERE id=?", status, orderID)
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

// UpdateAddress edits the shipping address, the only mutable field
// besides status.
func (r *OrderRepo) UpdateAddress(ctx context.Context, orderID uint64, address string) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE orders SET address=? WHERE id=?", address, orderID)
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
