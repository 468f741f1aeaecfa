package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sueliob/backend-pizza/internal/cookie"
	"github.com/sueliob/backend-pizza/internal/domain"
)

// Compile-time interface assertions.
var (
	_ SessionRepository = (*PostgresSessionRepo)(nil)
	_ UserRepository    = (*PostgresUserRepo)(nil)
)

const sessionColumns = `id, user_id, refresh_hash, user_agent, ip, expires_at, revoked_at, replaced_by, created_at`

// PostgresSessionRepo implements SessionRepository on pgx.
type PostgresSessionRepo struct {
	db *pgxpool.Pool
}

func NewPostgresSessionRepo(db *pgxpool.Pool) *PostgresSessionRepo {
	return &PostgresSessionRepo{db: db}
}

func (r *PostgresSessionRepo) Create(ctx context.Context, userID, refreshHash, userAgent, ip string) (domain.Session, error) {
	q := `INSERT INTO sessions (id, user_id, refresh_hash, user_agent, ip, expires_at)
	      VALUES ($1, $2, $3, $4, $5, now() + make_interval(secs => $6))
	      RETURNING ` + sessionColumns
	row := r.db.QueryRow(ctx, q, uuid.NewString(), userID, refreshHash, userAgent, ip, cookie.RefreshTTL.Seconds())
	s, err := scanSession(row)
	if err != nil {
		return domain.Session{}, fmt.Errorf("create session: %w", err)
	}
	return s, nil
}

func (r *PostgresSessionRepo) FindActiveByHash(ctx context.Context, refreshHash string) (domain.Session, error) {
	q := `SELECT ` + sessionColumns + `
	        FROM sessions
	       WHERE refresh_hash = $1
	         AND revoked_at IS NULL
	         AND expires_at > now()`
	row := r.db.QueryRow(ctx, q, refreshHash)
	s, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Session{}, ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("find session: %w", err)
	}
	return s, nil
}

// Rotate revokes old and inserts its replacement in a single transaction.
// The revoke is conditional on revoked_at still being NULL: when two refresh
// calls race on the same session, exactly one sees a row updated; the other
// gets ErrSessionNotFound and the transaction rolls back without a trace.
func (r *PostgresSessionRepo) Rotate(ctx context.Context, old domain.Session, newRefreshHash string) (domain.Session, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.Session{}, fmt.Errorf("begin rotation: %w", err)
	}
	defer tx.Rollback(ctx)

	newID := uuid.NewString()

	tag, err := tx.Exec(ctx,
		`UPDATE sessions
		    SET revoked_at = now(), replaced_by = $2
		  WHERE id = $1 AND revoked_at IS NULL`, old.ID, newID)
	if err != nil {
		return domain.Session{}, fmt.Errorf("revoke rotated session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Session{}, ErrSessionNotFound
	}

	q := `INSERT INTO sessions (id, user_id, refresh_hash, user_agent, ip, expires_at)
	      VALUES ($1, $2, $3, $4, $5, now() + make_interval(secs => $6))
	      RETURNING ` + sessionColumns
	row := tx.QueryRow(ctx, q, newID, old.UserID, newRefreshHash, old.UserAgent, old.IP, cookie.RefreshTTL.Seconds())
	next, err := scanSession(row)
	if err != nil {
		return domain.Session{}, fmt.Errorf("insert rotated session: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Session{}, fmt.Errorf("commit rotation: %w", err)
	}
	return next, nil
}

func (r *PostgresSessionRepo) Revoke(ctx context.Context, refreshHash string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE sessions SET revoked_at = now()
		  WHERE refresh_hash = $1 AND revoked_at IS NULL`, refreshHash)
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (r *PostgresSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM sessions
		  WHERE expires_at < now() - interval '30 days'
		     OR revoked_at < now() - interval '30 days'`)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanSession(row pgx.Row) (domain.Session, error) {
	var s domain.Session
	err := row.Scan(&s.ID, &s.UserID, &s.RefreshHash, &s.UserAgent, &s.IP,
		&s.ExpiresAt, &s.RevokedAt, &s.ReplacedBy, &s.CreatedAt)
	return s, err
}

const userColumns = `id, username, email, role, is_active, last_login, created_at, updated_at`

// PostgresUserRepo implements UserRepository. The password_hash column is
// deliberately absent from every query here.
type PostgresUserRepo struct {
	db *pgxpool.Pool
}

func NewPostgresUserRepo(db *pgxpool.Pool) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

func (r *PostgresUserRepo) GetByID(ctx context.Context, id string) (domain.AdminUser, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM admin_users WHERE id = $1`, id)
	return scanUser(row, "get user by id")
}

func (r *PostgresUserRepo) GetByUsername(ctx context.Context, username string) (domain.AdminUser, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM admin_users WHERE username = $1`, username)
	return scanUser(row, "get user by username")
}

func (r *PostgresUserRepo) SetLastLogin(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `UPDATE admin_users SET last_login = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("set last login: %w", err)
	}
	return nil
}

func (r *PostgresUserRepo) Create(ctx context.Context, username, email, passwordHash, role string) (domain.AdminUser, error) {
	q := `INSERT INTO admin_users (id, username, email, password_hash, role, is_active)
	      VALUES ($1, $2, $3, $4, $5, true)
	      RETURNING ` + userColumns
	row := r.db.QueryRow(ctx, q, uuid.NewString(), username, email, passwordHash, role)
	return scanUser(row, "create user")
}

func (r *PostgresUserRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM admin_users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func scanUser(row pgx.Row, op string) (domain.AdminUser, error) {
	var u domain.AdminUser
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Role, &u.IsActive,
		&u.LastLogin, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.AdminUser{}, ErrUserNotFound
	}
	if err != nil {
		return domain.AdminUser{}, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}
