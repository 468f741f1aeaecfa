package domain

import "time"

// AdminUser represents a back-office account that can sign in to the admin
// area. There is no password hash field on purpose: hashes are compared
// inside Postgres by the pgcrypto gateway and never cross into application
// memory.
type AdminUser struct {
	ID        string
	Username  string
	Email     string
	Role      string
	IsActive  bool
	LastLogin *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PublicUser is the subset of AdminUser returned to clients after login.
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Public strips everything a browser has no business seeing.
func (u AdminUser) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, Role: u.Role}
}
