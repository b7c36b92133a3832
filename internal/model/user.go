package model

import "time"

// Role names stored in the users.role column.  The three roles form a
// strict hierarchy: CUSTOMER < ADMIN < SUPERADMIN.  Rank ordering is
// implemented by the auth package; the model only defines the values.
const (
	RoleCustomer   = "CUSTOMER"
	RoleAdmin      = "ADMIN"
	RoleSuperadmin = "SUPERADMIN"
)

// User represents an application user record as stored in the
// `users` table.  Each field corresponds to a column in the
// database.  The json tags are omitted here because these structs
// are primarily used internally by the repository layer; handlers
// define separate response types with appropriate JSON tags.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique login handle.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  FullName     – optional display name.
//  Phone        – optional phone number.
//  Role         – role name (CUSTOMER, ADMIN or SUPERADMIN).
//  IsActive     – whether the account is active.  Inactive accounts
//                 are rejected at token resolution time even when the
//                 token itself is still valid.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	FullName     *string   // users.full_name (nullable)
	Phone        *string   // users.phone (nullable)
	Role         string    // users.role
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
