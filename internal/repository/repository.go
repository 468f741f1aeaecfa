// Package repository holds the Postgres persistence layer. Lookup misses are
// reported through sentinel errors so callers can distinguish routine
// not-found outcomes from database faults; only the latter are logged and
// surfaced as generic failures.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sueliob/backend-pizza/internal/domain"
)

// Sentinel lookup errors. These are normal control-flow outcomes, not faults.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrNotFound        = errors.New("not found")
)

// SessionRepository is the durable refresh-session store. All session truth
// lives here; nothing is cached in process, so any number of replicas can
// serve refresh traffic.
type SessionRepository interface {
	// Create inserts a new active session with a fresh 7-day expiry.
	Create(ctx context.Context, userID, refreshHash, userAgent, ip string) (domain.Session, error)

	// FindActiveByHash is the only lookup path for refresh. Revoked or
	// expired rows are filtered in SQL; a hash match against one returns
	// ErrSessionNotFound, never the stale row.
	FindActiveByHash(ctx context.Context, refreshHash string) (domain.Session, error)

	// Rotate revokes old and inserts its replacement in one transaction,
	// carrying forward user, user agent and IP but recomputing the expiry.
	// If old was already revoked by a concurrent refresh, Rotate returns
	// ErrSessionNotFound and leaves the store untouched.
	Rotate(ctx context.Context, old domain.Session, newRefreshHash string) (domain.Session, error)

	// Revoke marks the session matching the hash as revoked. Revoking an
	// already-revoked or unknown session is a no-op.
	Revoke(ctx context.Context, refreshHash string) error

	// DeleteExpired removes rows that can never be used again (expired, or
	// revoked longer than the retention window ago). Housekeeping only; the
	// protocol never depends on physical deletion.
	DeleteExpired(ctx context.Context) (int64, error)
}

// UserRepository is the admin user directory. Password verification does not
// live here; see the password gateway.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (domain.AdminUser, error)
	GetByUsername(ctx context.Context, username string) (domain.AdminUser, error)
	SetLastLogin(ctx context.Context, id string) error
	Create(ctx context.Context, username, email, passwordHash, role string) (domain.AdminUser, error)
	Count(ctx context.Context) (int, error)
}

// CatalogRepository persists flavors, extras and dough types.
type CatalogRepository interface {
	ListFlavors(ctx context.Context, onlyAvailable bool) ([]domain.Flavor, error)
	ListFlavorsByCategory(ctx context.Context, category string) ([]domain.Flavor, error)
	CreateFlavor(ctx context.Context, f domain.Flavor) (domain.Flavor, error)
	UpdateFlavor(ctx context.Context, id string, f domain.Flavor) (domain.Flavor, error)
	BulkInsertFlavors(ctx context.Context, fs []domain.Flavor) (int, error)

	ListExtras(ctx context.Context, onlyAvailable bool) ([]domain.Extra, error)
	CreateExtra(ctx context.Context, e domain.Extra) (domain.Extra, error)
	UpdateExtra(ctx context.Context, id string, e domain.Extra) (domain.Extra, error)
	BulkInsertExtras(ctx context.Context, es []domain.Extra) (int, error)

	ListDoughTypes(ctx context.Context, onlyAvailable bool) ([]domain.DoughType, error)
	CreateDoughType(ctx context.Context, d domain.DoughType) (domain.DoughType, error)
	UpdateDoughType(ctx context.Context, id string, d domain.DoughType) (domain.DoughType, error)
	BulkInsertDoughTypes(ctx context.Context, ds []domain.DoughType) (int, error)

	CountProducts(ctx context.Context) (int, error)
}

// OrderRepository persists storefront orders.
type OrderRepository interface {
	Create(ctx context.Context, o domain.Order) (domain.Order, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Order, error)
	CountSince(ctx context.Context, since time.Time) (int, error)
	SumTotals(ctx context.Context) (float64, error)
}

// SettingsRepository stores the section -> document configuration.
type SettingsRepository interface {
	GetAll(ctx context.Context) ([]domain.Setting, error)
	GetSection(ctx context.Context, section string) (domain.Setting, error)
	Upsert(ctx context.Context, section string, data []byte) error
}
