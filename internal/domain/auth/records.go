package auth

import "time"

// IdentityRecord is the long-lived session record remembering which username
// a browser session belongs to. Default expiration is 30 days.
type IdentityRecord struct {
	SessionID string    `json:"session_id"`
	UserName  string    `json:"user_name"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the record expired at the given instant.
func (r IdentityRecord) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// AuthorizationRecord is the short-lived session record remembering whether
// the remembered username is currently authorized. Default expiration is
// 10 minutes, deliberately shorter than the identity record: an expired
// authorization leaves the user remembered but signed out.
type AuthorizationRecord struct {
	SessionID  string    `json:"session_id"`
	Authorized bool      `json:"authorized"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Expired reports whether the record expired at the given instant.
func (r AuthorizationRecord) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
