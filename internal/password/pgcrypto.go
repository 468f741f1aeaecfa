// Package password delegates all bcrypt work to the pgcrypto extension on
// Postgres. The service process never computes a hash and never reads one
// back: lookup and comparison happen in a single SQL statement, so the hash
// column never leaves the database.
//
// Requires `CREATE EXTENSION IF NOT EXISTS pgcrypto;` on the target database.
package password

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sueliob/backend-pizza/internal/domain"
)

// Bcrypt cost factors outside this range are clamped before reaching
// gen_salt: below 4 is degenerate, above 12 is a denial-of-service on the
// database.
const (
	MinCost     = 4
	MaxCost     = 12
	DefaultCost = 10
)

// Gateway verifies and provisions admin credentials through pgcrypto.
type Gateway struct {
	db *pgxpool.Pool
}

// NewGateway returns a Gateway backed by the given pool.
func NewGateway(db *pgxpool.Pool) *Gateway {
	return &Gateway{db: db}
}

// Verify checks username/password in one atomic lookup-and-compare and also
// requires the account to be active. It returns (nil, nil) for unknown users,
// wrong passwords and inactive accounts alike; an error means a database
// fault, never a failed login.
func (g *Gateway) Verify(ctx context.Context, username, plaintext string) (*domain.PublicUser, error) {
	const q = `SELECT id, username, role
	             FROM admin_users
	            WHERE username = $1
	              AND is_active = true
	              AND password_hash = crypt($2, password_hash)
	            LIMIT 1`

	var u domain.PublicUser
	err := g.db.QueryRow(ctx, q, username, plaintext).Scan(&u.ID, &u.Username, &u.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	return &u, nil
}

// Hash produces a bcrypt hash for provisioning or changing credentials. The
// cost factor is clamped into [MinCost, MaxCost] before it is forwarded.
func (g *Gateway) Hash(ctx context.Context, plaintext string, cost int) (string, error) {
	var hash string
	err := g.db.QueryRow(ctx,
		`SELECT crypt($1, gen_salt('bf', $2))`, plaintext, clampCost(cost),
	).Scan(&hash)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

// UpdatePassword rehashes and stores a new password for the given user.
func (g *Gateway) UpdatePassword(ctx context.Context, userID, newPassword string, cost int) error {
	_, err := g.db.Exec(ctx,
		`UPDATE admin_users
		    SET password_hash = crypt($2, gen_salt('bf', $3)), updated_at = now()
		  WHERE id = $1`, userID, newPassword, clampCost(cost))
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func clampCost(cost int) int {
	if cost < MinCost {
		return MinCost
	}
	if cost > MaxCost {
		return MaxCost
	}
	return cost
}
