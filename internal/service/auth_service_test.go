package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sueliob/backend-pizza/internal/domain"
	"github.com/sueliob/backend-pizza/internal/repository"
	"github.com/sueliob/backend-pizza/internal/service"
	"github.com/sueliob/backend-pizza/internal/token"
)

func newTestService(t *testing.T) (*service.AuthService, *memorySessionRepo, *memoryUserRepo) {
	t.Helper()

	user := domain.AdminUser{
		ID:       "user-1",
		Username: "gerente",
		Email:    "gerente@pizzaria.test",
		Role:     "admin",
		IsActive: true,
	}
	users := &memoryUserRepo{users: map[string]domain.AdminUser{user.ID: user}}
	sessions := newMemorySessionRepo()
	creds := &memoryCredentials{username: "gerente", password: "segredo123", user: user.Public()}
	codec := token.NewCodec([]byte("test-secret"), "backend-pizzaria", "pizzaria-spa", 15*time.Minute)

	return service.NewAuthService(creds, users, sessions, codec, zap.NewNop()), sessions, users
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	svc, sessions, users := newTestService(t)
	ctx := context.Background()

	res, err := svc.Login(ctx, "gerente", "segredo123", "ua-test", "10.0.0.1")
	require.NoError(t, err)
	require.NotEmpty(t, res.AccessToken)
	require.NotEmpty(t, res.RefreshSecret)
	require.NotEmpty(t, res.CSRFNonce)
	require.Equal(t, "gerente", res.User.Username)

	codec := token.NewCodec([]byte("test-secret"), "backend-pizzaria", "pizzaria-spa", 15*time.Minute)
	claims, err := codec.Verify(res.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "gerente", claims.Username)
	require.Equal(t, "admin", claims.Role)

	// One session row, provenance recorded, last_login touched.
	require.Len(t, sessions.all(), 1)
	sess := sessions.all()[0]
	require.Equal(t, "user-1", sess.UserID)
	require.Equal(t, "ua-test", sess.UserAgent)
	require.Equal(t, "10.0.0.1", sess.IP)
	require.True(t, users.lastLoginSet)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, sessions, _ := newTestService(t)

	_, err := svc.Login(context.Background(), "gerente", "senha-errada", "", "")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)
	require.Empty(t, sessions.all(), "failed login must not create a session")
}

func TestRefreshRotatesAndPreservesIdentity(t *testing.T) {
	svc, sessions, _ := newTestService(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, "gerente", "segredo123", "ua-test", "10.0.0.1")
	require.NoError(t, err)
	before := sessions.all()[0]

	res, err := svc.Refresh(ctx, login.RefreshSecret, login.CSRFNonce, login.CSRFNonce, "other-ua", "10.9.9.9")
	require.NoError(t, err)
	require.NotEmpty(t, res.AccessToken)
	require.NotEqual(t, login.RefreshSecret, res.RefreshSecret)

	rows := sessions.all()
	require.Len(t, rows, 2)

	old := sessions.byID(before.ID)
	require.NotNil(t, old.RevokedAt, "rotated-from session must be revoked")
	require.NotNil(t, old.ReplacedBy)

	next := sessions.byID(*old.ReplacedBy)
	require.Equal(t, before.UserID, next.UserID)
	require.Equal(t, before.UserAgent, next.UserAgent, "user agent carried forward from creation, not from the refresh request")
	require.Equal(t, before.IP, next.IP)
	require.True(t, next.ExpiresAt.After(before.ExpiresAt), "expiry is recomputed, not inherited")
}

func TestRefreshReplayDetected(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, "gerente", "segredo123", "", "")
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, login.RefreshSecret, login.CSRFNonce, login.CSRFNonce, "", "")
	require.NoError(t, err)

	// Replaying the already-rotated secret is the theft signal.
	_, err = svc.Refresh(ctx, login.RefreshSecret, login.CSRFNonce, login.CSRFNonce, "", "")
	require.ErrorIs(t, err, service.ErrInvalidSession)
}

func TestRefreshCSRFMismatchTouchesNothing(t *testing.T) {
	svc, sessions, _ := newTestService(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, "gerente", "segredo123", "", "")
	require.NoError(t, err)
	sessions.resetCalls()

	tests := []struct {
		name   string
		cookie string
		header string
	}{
		{"missing header", login.CSRFNonce, ""},
		{"missing cookie", "", login.CSRFNonce},
		{"mismatched", login.CSRFNonce, "forged-value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Refresh(ctx, login.RefreshSecret, tt.cookie, tt.header, "", "")
			require.ErrorIs(t, err, service.ErrCSRFMismatch)
		})
	}

	require.Zero(t, sessions.calls(), "csrf failures must not touch the session store")
	require.Len(t, sessions.all(), 1)
	require.Nil(t, sessions.all()[0].RevokedAt)
}

func TestRefreshWithoutCookie(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Refresh(context.Background(), "", "nonce", "nonce", "", "")
	require.ErrorIs(t, err, service.ErrInvalidSession)
}

func TestLogoutIdempotent(t *testing.T) {
	svc, sessions, _ := newTestService(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, "gerente", "segredo123", "", "")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, login.RefreshSecret, login.CSRFNonce, login.CSRFNonce))
	require.NotNil(t, sessions.all()[0].RevokedAt)

	// Second logout with cleared cookies: already logged out, still success.
	require.NoError(t, svc.Logout(ctx, "", "", ""))

	// And revoking the already-revoked session again is a no-op, not an error.
	require.NoError(t, svc.Logout(ctx, login.RefreshSecret, login.CSRFNonce, login.CSRFNonce))
}

func TestLogoutCSRFMismatch(t *testing.T) {
	svc, sessions, _ := newTestService(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, "gerente", "segredo123", "", "")
	require.NoError(t, err)

	err = svc.Logout(ctx, login.RefreshSecret, login.CSRFNonce, "forged")
	require.ErrorIs(t, err, service.ErrCSRFMismatch)
	require.Nil(t, sessions.all()[0].RevokedAt, "csrf failure must not revoke")
}

// End-to-end: login -> refresh -> replay old secret.
func TestLoginRefreshReplayScenario(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, "gerente", "segredo123", "ua", "ip")
	require.NoError(t, err)
	t0, r0, c0 := login.AccessToken, login.RefreshSecret, login.CSRFNonce

	refreshed, err := svc.Refresh(ctx, r0, c0, c0, "ua", "ip")
	require.NoError(t, err)
	require.NotEqual(t, t0, refreshed.AccessToken)
	require.NotEqual(t, r0, refreshed.RefreshSecret)

	_, err = svc.Refresh(ctx, r0, c0, c0, "ua", "ip")
	require.ErrorIs(t, err, service.ErrInvalidSession)

	// The rotated-to secret still works.
	_, err = svc.Refresh(ctx, refreshed.RefreshSecret, c0, c0, "ua", "ip")
	require.NoError(t, err)
}

func TestExpiredSessionRejected(t *testing.T) {
	svc, sessions, _ := newTestService(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, "gerente", "segredo123", "", "")
	require.NoError(t, err)

	sessions.expire(sessions.all()[0].ID)

	_, err = svc.Refresh(ctx, login.RefreshSecret, login.CSRFNonce, login.CSRFNonce, "", "")
	require.ErrorIs(t, err, service.ErrInvalidSession)
}

// --- fakes ---

type memoryCredentials struct {
	username string
	password string
	user     domain.PublicUser
}

func (m *memoryCredentials) Verify(_ context.Context, username, plaintext string) (*domain.PublicUser, error) {
	if username != m.username || plaintext != m.password {
		return nil, nil
	}
	u := m.user
	return &u, nil
}

type memoryUserRepo struct {
	users        map[string]domain.AdminUser
	lastLoginSet bool
}

func (m *memoryUserRepo) GetByID(_ context.Context, id string) (domain.AdminUser, error) {
	u, ok := m.users[id]
	if !ok {
		return domain.AdminUser{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (m *memoryUserRepo) SetLastLogin(_ context.Context, id string) error {
	m.lastLoginSet = true
	return nil
}

// memorySessionRepo mirrors the Postgres semantics, including the conditional
// revoke inside Rotate.
type memorySessionRepo struct {
	mu       sync.Mutex
	rows     map[string]*domain.Session
	mutating int
}

var _ repository.SessionRepository = (*memorySessionRepo)(nil)

func newMemorySessionRepo() *memorySessionRepo {
	return &memorySessionRepo{rows: map[string]*domain.Session{}}
}

func (m *memorySessionRepo) Create(_ context.Context, userID, refreshHash, userAgent, ip string) (domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mutating++
	s := &domain.Session{
		ID:          uuid.NewString(),
		UserID:      userID,
		RefreshHash: refreshHash,
		UserAgent:   userAgent,
		IP:          ip,
		ExpiresAt:   time.Now().Add(7 * 24 * time.Hour),
		CreatedAt:   time.Now(),
	}
	m.rows[s.ID] = s
	return *s, nil
}

func (m *memorySessionRepo) FindActiveByHash(_ context.Context, hash string) (domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.rows {
		if s.RefreshHash == hash && s.Active(time.Now()) {
			return *s, nil
		}
	}
	return domain.Session{}, repository.ErrSessionNotFound
}

func (m *memorySessionRepo) Rotate(_ context.Context, old domain.Session, newHash string) (domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mutating++
	row, ok := m.rows[old.ID]
	if !ok || row.RevokedAt != nil {
		return domain.Session{}, repository.ErrSessionNotFound
	}
	// Rotation happens a tick after creation so expiry comparisons are strict.
	now := time.Now().Add(time.Millisecond)
	next := &domain.Session{
		ID:          uuid.NewString(),
		UserID:      old.UserID,
		RefreshHash: newHash,
		UserAgent:   old.UserAgent,
		IP:          old.IP,
		ExpiresAt:   now.Add(7 * 24 * time.Hour),
		CreatedAt:   now,
	}
	row.RevokedAt = &now
	row.ReplacedBy = &next.ID
	m.rows[next.ID] = next
	return *next, nil
}

func (m *memorySessionRepo) Revoke(_ context.Context, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mutating++
	now := time.Now()
	for _, s := range m.rows {
		if s.RefreshHash == hash && s.RevokedAt == nil {
			s.RevokedAt = &now
		}
	}
	return nil
}

func (m *memorySessionRepo) DeleteExpired(_ context.Context) (int64, error) { return 0, nil }

func (m *memorySessionRepo) all() []domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Session, 0, len(m.rows))
	for _, s := range m.rows {
		out = append(out, *s)
	}
	return out
}

func (m *memorySessionRepo) byID(id string) domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.rows[id]
}

func (m *memorySessionRepo) expire(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[id].ExpiresAt = time.Now().Add(-time.Minute)
}

func (m *memorySessionRepo) resetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mutating = 0
}

func (m *memorySessionRepo) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mutating
}
