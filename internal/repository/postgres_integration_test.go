//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/sueliob/backend-pizza/internal/repository"
)

func setupDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatal("DATABASE_URL must be set for integration tests")
	}

	pool, err := pgxpool.New(context.Background(), dbURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func seedUser(t *testing.T, db *pgxpool.Pool) string {
	t.Helper()

	users := repository.NewPostgresUserRepo(db)
	username := fmt.Sprintf("it-sess-%d", time.Now().UnixNano())
	user, err := users.Create(context.Background(), username, username+"@example.com", "x", "admin")
	require.NoError(t, err)

	t.Cleanup(func() {
		_, _ = db.Exec(context.Background(), `DELETE FROM sessions WHERE user_id = $1`, user.ID)
		_, _ = db.Exec(context.Background(), `DELETE FROM admin_users WHERE id = $1`, user.ID)
	})
	return user.ID
}

func TestSessionLifecycle(t *testing.T) {
	db := setupDB(t)
	sessions := repository.NewPostgresSessionRepo(db)
	userID := seedUser(t, db)
	ctx := context.Background()

	hash := fmt.Sprintf("%064d", time.Now().UnixNano())
	created, err := sessions.Create(ctx, userID, hash, "go-test", "127.0.0.1")
	require.NoError(t, err)
	require.True(t, created.ExpiresAt.After(time.Now().Add(6*24*time.Hour)))

	found, err := sessions.FindActiveByHash(ctx, hash)
	require.NoError(t, err)
	require.Equal(t, created.ID, found.ID)

	newHash := fmt.Sprintf("%064d", time.Now().UnixNano()+1)
	rotated, err := sessions.Rotate(ctx, found, newHash)
	require.NoError(t, err)
	require.Equal(t, userID, rotated.UserID)
	require.NotEqual(t, found.ID, rotated.ID)

	// The old hash is dead after rotation.
	_, err = sessions.FindActiveByHash(ctx, hash)
	require.ErrorIs(t, err, repository.ErrSessionNotFound)

	// Rotating the already-revoked row again is the replay race; it must fail
	// without touching the replacement.
	_, err = sessions.Rotate(ctx, found, fmt.Sprintf("%064d", time.Now().UnixNano()+2))
	require.ErrorIs(t, err, repository.ErrSessionNotFound)

	stillThere, err := sessions.FindActiveByHash(ctx, newHash)
	require.NoError(t, err)
	require.Equal(t, rotated.ID, stillThere.ID)

	require.NoError(t, sessions.Revoke(ctx, newHash))
	_, err = sessions.FindActiveByHash(ctx, newHash)
	require.ErrorIs(t, err, repository.ErrSessionNotFound)

	// Revoking again is a no-op.
	require.NoError(t, sessions.Revoke(ctx, newHash))
}
