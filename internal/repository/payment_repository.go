package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/online-storefront/internal/model"
)

// PaymentRepo records payments against orders.  Bookkeeping only; no
// gateway calls happen here.
type PaymentRepo struct{ DB *sql.DB }

func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{DB: db} }

const paymentColumns = "id,order_id,transaction_id,status,amount_cents,paid_at,created_at,updated_at"

func scanPayment(scan func(dest ...interface{}) error) (model.Payment, error) {
	var p model.Payment
	err := scan(&p.ID, &p.OrderID, &p.TransactionID, &p.Status, &p.AmountCents,
		&p.PaidAt, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *PaymentRepo) Create(ctx context.Context, p *model.Payment) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO payments (order_id, transaction_id, status, amount_cents) VALUES (?,?,?,?)",
		p.OrderID, p.TransactionID, p.Status, p.AmountCents)
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

func (r *PaymentRepo) GetByID(ctx context.Context, id uint64) (model.Payment, error) {
	return scanPayment(r.DB.QueryRowContext(ctx,
		"SELECT "+paymentColumns+" FROM payments WHERE id=? LIMIT 1", id).Scan)
}

func (r *PaymentRepo) ListByOrder(ctx context.Context, orderID uint64) ([]model.Payment, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+paymentColumns+" FROM payments WHERE order_id=? ORDER BY id", orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SetStatus updates a payment's status; completed payments get a
// paid_at stamp.
func (r *PaymentRepo) SetStatus(ctx context.Context, id uint64, status string) error {
	q := "UPDATE payments SET status=? WHERE id=?"
	if status == model.PaymentCompleted {
		q = "UPDATE payments SET status=?, paid_at=NOW() WHERE id=?"
	}
	res, err := r.DB.ExecContext(ctx, q, status, id)
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
