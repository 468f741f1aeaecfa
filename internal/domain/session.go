package domain

import "time"

// Session is a durable refresh session. The refresh secret handed to the
// browser is never persisted; only its SHA-256 hex digest is stored in
// RefreshHash. A session is usable iff RevokedAt is nil and ExpiresAt is in
// the future.
//
// Sessions are write-once-then-revoke-once: RevokedAt is never cleared, and
// ReplacedBy is set exactly once, by rotation, together with RevokedAt.
type Session struct {
	ID          string
	UserID      string
	RefreshHash string
	UserAgent   string
	IP          string
	ExpiresAt   time.Time
	RevokedAt   *time.Time
	ReplacedBy  *string
	CreatedAt   time.Time
}

// Active reports whether the session may still be used at the given instant.
func (s Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && s.ExpiresAt.After(now)
}
