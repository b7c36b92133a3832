package repository

import (
	"context"
	"database/sql"
)

// SessionRepo persists login audit records.  Sessions are observational
// only: nothing in the authorization path reads them.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Create opens a session row at login.
func (r *SessionRepo) Create(ctx context.Context, userID uint64, sessionID string, ip *string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO sessions (user_id, session_id, ip_address) VALUES (?,?,?)",
		userID, sessionID, ip)
	return err
}

// CloseAllForUser marks every open session of the user as logged out.
// Outstanding bearer tokens stay valid until expiry; logout only closes
// the audit trail.
func (r *SessionRepo) CloseAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE sessions SET is_active=FALSE, logout_at=NOW() WHERE user_id=? AND is_active=TRUE",
		userID)
	return err
}
