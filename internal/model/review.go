package model

import "time"

// Review is a user's rating of a product.  IsVisible supports
// moderation: hidden reviews are excluded from public listings and the
// average rating.
type Review struct {
	ID        uint64    // reviews.id
	UserID    uint64    // reviews.user_id
	ProductID uint64    // reviews.product_id
	Rating    uint8     // reviews.rating (1..5)
	Comment   *string   // reviews.comment (nullable)
	IsVisible bool      // reviews.is_visible
	CreatedAt time.Time // reviews.created_at
	UpdatedAt time.Time // reviews.updated_at
}
