package domain

import "time"

// Cache keys of the local store.
const (
	KeyToken = "token"
	KeyUser  = "user"
	KeyUsers = "users"
)

// Routes the controllers navigate to.
const (
	RouteLogin      = "/login"
	RouteRegister   = "/register"
	RouteManagement = "/user/management"
)

// MsgLoginRequired is shown when a guarded view is opened without a session.
const MsgLoginRequired = "You need to log in to access this page"

// Claims is the decoded payload of a session token.
type Claims struct {
	Subject     string
	Issuer      string
	IssuedAt    time.Time
	ExpiresAt   time.Time // zero when the token carries no exp claim
	Authorities []string
}

// Expired reports whether the token has expired at now. Tokens without an
// expiry never expire locally.
func (c Claims) Expired(now time.Time) bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(c.ExpiresAt)
}
