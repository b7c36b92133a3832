package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/online-storefront/internal/model"
)

// AddressRepo manages saved shipping addresses.  At most one address
// per user is flagged default; SetDefault flips the flag transactionally
// so the invariant holds even under concurrent updates.
type AddressRepo struct{ DB *sql.DB }

func NewAddressRepo(db *sql.DB) *AddressRepo { return &AddressRepo{DB: db} }

const addressColumns = "id,user_id,address,city,state,country,postal_code,is_default,created_at,updated_at"

func scanAddress(scan func(dest ...interface{}) error) (model.Address, error) {
	var a model.Address
	err := scan(&a.ID, &a.UserID, &a.Address, &a.City, &a.State, &a.Country,
		&a.PostalCode, &a.IsDefault, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// Create inserts an address.  When the new address is flagged default,
// the previous default is cleared in the same transaction.
func (r *AddressRepo) Create(ctx context.Context, a *model.Address) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if a.IsDefault {
		if _, err := tx.ExecContext(ctx,
			"UPDATE addresses SET is_default=FALSE WHERE user_id=? AND is_default=TRUE", a.UserID); err != nil {
			return 0, err
		}
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO addresses (user_id, address, city, state, country, postal_code, is_default) VALUES (?,?,?,?,?,?,?)",
		a.UserID, a.Address, a.City, a.State, a.Country, a.PostalCode, a.IsDefault)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return uint64(id), nil
}

// GetByID fetches an address; the caller authorizes against UserID.
func (r *AddressRepo) GetByID(ctx context.Context, id uint64) (model.Address, error) {
	return scanAddress(r.DB.QueryRowContext(ctx,
		"SELECT "+addressColumns+" FROM addresses WHERE id=? LIMIT 1", id).Scan)
}

// ListByOwner returns a user's addresses, default first.
func (r *AddressRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Address, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+addressColumns+" FROM addresses WHERE user_id=? ORDER BY is_default DESC, id", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Address, 0)
	for rows.Next() {
		a, err := scanAddress(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Update overwrites the address fields, keeping the single-default
// invariant when is_default is being set.
func (r *AddressRepo) Update(ctx context.Context, a *model.Address) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if a.IsDefault {
		if _, err := tx.ExecContext(ctx,
			"UPDATE addresses SET is_default=FALSE WHERE user_id=? AND is_default=TRUE AND id<>?",
			a.UserID, a.ID); err != nil {
			return err
		}
	}
	res, err := tx.ExecContext(ctx,
		"UPDATE addresses SET address=?, city=?, state=?, country=?, postal_code=?, is_default=? WHERE id=?",
		a.Address, a.City, a.State, a.Country, a.PostalCode, a.IsDefault, a.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return sql.ErrNoRows
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Delete removes an address.
func (r *AddressRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM addresses WHERE id=?", id)
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
