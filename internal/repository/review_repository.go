package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/online-storefront/internal/model"
)

// ReviewRepo manages product reviews.  Public reads only see visible
// reviews; moderation flips is_visible without deleting the row.
type ReviewRepo struct{ DB *sql.DB }

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{DB: db} }

const reviewColumns = "id,user_id,product_id,rating,comment,is_visible,created_at,updated_at"

func scanReview(scan func(dest ...interface{}) error) (model.Review, error) {
	var v model.Review
	err := scan(&v.ID, &v.UserID, &v.ProductID, &v.Rating, &v.Comment,
		&v.IsVisible, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}

func (r *ReviewRepo) Create(ctx context.Context, v *model.Review) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO reviews (user_id, product_id, rating, comment, is_visible) VALUES (?,?,?,?,TRUE)",
		v.UserID, v.ProductID, v.Rating, v.Comment)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

func (r *ReviewRepo) GetByID(ctx context.Context, id uint64) (model.Review, error) {
	return scanReview(r.DB.QueryRowContext(ctx,
		"SELECT "+reviewColumns+" FROM reviews WHERE id=? LIMIT 1", id).Scan)
}

// ListByProduct returns the visible reviews for a product, newest first.
func (r *ReviewRepo) ListByProduct(ctx context.Context, productID uint64) ([]model.Review, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+reviewColumns+" FROM reviews WHERE product_id=? AND is_visible=TRUE ORDER BY created_at DESC",
		productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Review, 0)
	for rows.Next() {
		v, err := scanReview(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// AverageRating returns the mean visible rating and review count for a
// product.  Zero values when no visible reviews exist.
func (r *ReviewRepo) AverageRating(ctx context.Context, productID uint64) (float64, int, error) {
	var avg sql.NullFloat64
	var count int
	err := r.DB.QueryRowContext(ctx,
		"SELECT AVG(rating), COUNT(*) FROM reviews WHERE product_id=? AND is_visible=TRUE",
		productID).Scan(&avg, &count)
	if err != nil {
		return 0, 0, err
	}
	return avg.Float64, count, nil
}

func (r *ReviewRepo) Update(ctx context.Context, id uint64, rating uint8, comment *string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE reviews SET rating=?, comment=? WHERE id=?", rating, comment, id)
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

// SetVisibility is the superadmin moderation hook.
func (r *ReviewRepo) SetVisibility(ctx context.Context, id uint64, visible bool) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE reviews SET is_visible=? WHERE id=?", visible, id)
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

func (r *ReviewRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM reviews WHERE id=?", id)
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
