package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/online-storefront/internal/model"
)

// ProductRepo provides CRUD operations for the product catalog.  The
// catalog is read-mostly from the core's perspective; writes come from
// admin endpoints only.
type ProductRepo struct{ DB *sql.DB }

func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{DB: db} }

var ErrSKUExists = errors.New("sku already exists")

const productColumns = "id,sku,name,description,price_cents,quantity,created_at,updated_at"

func scanProduct(scan func(dest ...interface{}) error) (model.Product, error) {
	var p model.Product
	err := scan(&p.ID, &p.SKU, &p.Name, &p.Description, &p.PriceCents,
		&p.Quantity, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// Create inserts a product and returns its ID.
func (r *ProductRepo) Create(ctx context.Context, p *model.Product) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO products (sku, name, description, price_cents, quantity) VALUES (?,?,?,?,?)",
		p.SKU, p.Name, p.Description, p.PriceCents, p.Quantity)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrSKUExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a product by id.
func (r *ProductRepo) GetByID(ctx context.Context, id uint64) (model.Product, error) {
	return scanProduct(r.DB.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE id=? LIMIT 1", id).Scan)
}

// GetBySKU fetches a product by its stock keeping unit.
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (model.Product, error) {
	return scanProduct(r.DB.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE sku=? LIMIT 1", sku).Scan)
}

// GetTx fetches a product inside a transaction.  Order conversion reads
// the unit price through this so the snapshot and the reservation see
// the same transactional state.
func (r *ProductRepo) GetTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Product, error) {
	return scanProduct(tx.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE id=? LIMIT 1", id).Scan)
}

// List returns catalog products ordered by id.
func (r *ProductRepo) List(ctx context.Context, offset, limit int) ([]model.Product, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+productColumns+" FROM products ORDER BY id LIMIT ? OFFSET ?", limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	products := make([]model.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Update overwrites the mutable product fields.
func (r *ProductRepo) Update(ctx context.Context, p *model.Product) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE products SET name=?, description=?, price_cents=?, quantity=? WHERE id=?",
		p.Name, p.Description, p.PriceCents, p.Quantity, p.ID)
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

// UpdatePrice changes only the unit price.  Existing orders are not
// affected: their totals were snapshotted at conversion time.
func (r *ProductRepo) UpdatePrice(ctx context.Context, id uint64, priceCents uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE products SET price_cents=? WHERE id=?", priceCents, id)
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

// Delete removes a product unless order lines still reference it, in
// which case ErrConflict is returned.
func (r *ProductRepo) Delete(ctx context.Context, id uint64) error {
	var refs int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM order_items WHERE product_id=?", id).Scan(&refs); err != nil {
		return err
	}
	if refs > 0 {
		return ErrConflict
	}
	res, err := r.DB.ExecContext(ctx, "DELETE FROM products WHERE id=?", id)
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
