package model

import "time"

// Session is an audit record of a login.  It is created at successful
// login and closed at logout.  Sessions are purely observational:
// authorization decisions rely solely on the bearer token's validity
// window and never consult session state.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the session.
//  SessionID – opaque unique identifier returned to nobody; audit only.
//  IPAddress – originating network address, if known.
//  LoginAt   – when the session was opened.
//  LogoutAt  – when the session was closed (null while open).
//  IsActive  – whether the session is still open.
type Session struct {
	ID        uint64     // sessions.id
	UserID    uint64     // sessions.user_id
	SessionID string     // sessions.session_id
	IPAddress *string    // sessions.ip_address (nullable)
	LoginAt   time.Time  // sessions.login_at
	LogoutAt  *time.Time // sessions.logout_at (nullable)
	IsActive  bool       // sessions.is_active
}
