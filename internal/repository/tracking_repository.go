package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/online-storefront/internal/model"
)

// TrackingRepo appends and reads order tracking history.
type TrackingRepo struct{ DB *sql.DB }

func NewTrackingRepo(db *sql.DB) *TrackingRepo { return &TrackingRepo{DB: db} }

func (r *TrackingRepo) Append(ctx context.Context, t *model.TrackingEntry) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO order_tracking (order_id, status, location, notes) VALUES (?,?,?,?)",
		t.OrderID, t.Status, t.Location, t.Notes)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// History returns the entries for an order, oldest first.
func (r *TrackingRepo) History(ctx context.Context, orderID uint64) ([]model.TrackingEntry, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,order_id,status,location,notes,created_at FROM order_tracking WHERE order_id=? ORDER BY created_at, id",
		orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.TrackingEntry, 0)
	for rows.Next() {
		var t model.TrackingEntry
		if err := rows.Scan(&t.ID, &t.OrderID, &t.Status, &t.Location, &t.Notes, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Latest returns the most recent entry for an order.
func (r *TrackingRepo) Latest(ctx context.Context, orderID uint64) (model.TrackingEntry, error) {
	var t model.TrackingEntry
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,order_id,status,location,notes,created_at FROM order_tracking WHERE order_id=? ORDER BY created_at DESC, id DESC LIMIT 1",
		orderID).Scan(&t.ID, &t.OrderID, &t.Status, &t.Location, &t.Notes, &t.CreatedAt)
	return t, err
}
