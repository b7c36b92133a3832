package model

import "time"

// Address is a user's saved shipping address.  At most one address per
// user carries the default flag; the repository clears the previous
// default in the same transaction when a new one is set.
type Address struct {
	ID         uint64    // addresses.id
	UserID     uint64    // addresses.user_id
	Address    string    // addresses.address
	City       string    // addresses.city
	State      string    // addresses.state
	Country    string    // addresses.country
	PostalCode *string   // addresses.postal_code (nullable)
	IsDefault  bool      // addresses.is_default
	CreatedAt  time.Time // addresses.created_at
	UpdatedAt  time.Time // addresses.updated_at
}
