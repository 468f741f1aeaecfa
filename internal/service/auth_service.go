// Package service contains the login/refresh/logout protocol. The protocol
// itself is stateless: every call re-derives session state from the store, so
// any replica can serve any request.
package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/sueliob/backend-pizza/internal/domain"
	"github.com/sueliob/backend-pizza/internal/repository"
	"github.com/sueliob/backend-pizza/internal/token"
)

// Expected protocol outcomes; the handler maps them to HTTP statuses. Storage
// faults are anything else and are never shown to the caller verbatim.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrCSRFMismatch       = errors.New("csrf token mismatch")
)

// refreshSecretBytes is the entropy of the opaque refresh secret. 256 bits
// makes hash collisions across sessions a non-concern.
const refreshSecretBytes = 32

// CredentialVerifier is the password gateway as the protocol sees it: a nil
// user with a nil error means the credentials were wrong or the account is
// inactive; an error means the gateway itself failed.
type CredentialVerifier interface {
	Verify(ctx context.Context, username, plaintext string) (*domain.PublicUser, error)
}

// UserDirectory is the slice of the user store the protocol needs.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (domain.AdminUser, error)
	SetLastLogin(ctx context.Context, id string) error
}

// LoginResult carries everything the HTTP layer needs to answer a successful
// login: the bearer token and user for the body, the refresh secret and CSRF
// nonce for Set-Cookie headers.
type LoginResult struct {
	AccessToken   string
	User          domain.PublicUser
	RefreshSecret string
	CSRFNonce     string
}

// RefreshResult carries a reissued access token and the rotated refresh
// secret. The CSRF value is carried forward by the caller, not rotated here.
type RefreshResult struct {
	AccessToken   string
	RefreshSecret string
}

// AuthService orchestrates credentials, sessions, tokens and CSRF into the
// three user-facing operations.
type AuthService struct {
	credentials CredentialVerifier
	users       UserDirectory
	sessions    repository.SessionRepository
	codec       *token.Codec
	logger      *zap.Logger
}

// NewAuthService wires the protocol's collaborators.
func NewAuthService(
	credentials CredentialVerifier,
	users UserDirectory,
	sessions repository.SessionRepository,
	codec *token.Codec,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		credentials: credentials,
		users:       users,
		sessions:    sessions,
		codec:       codec,
		logger:      logger,
	}
}

// Login verifies credentials, opens a refresh session and issues the first
// access token. Recording last_login is best-effort: a failure there is
// logged and the login still succeeds.
func (s *AuthService) Login(ctx context.Context, username, plaintext, userAgent, ip string) (*LoginResult, error) {
	ctx, span := s.startSpan(ctx, "AuthService.Login")
	defer span.End()

	user, err := s.credentials.Verify(ctx, username, plaintext)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("verify credentials: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	secret, hash, err := newRefreshSecret()
	if err != nil {
		return nil, err
	}

	if _, err := s.sessions.Create(ctx, user.ID, hash, userAgent, ip); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("create session: %w", err)
	}

	access, err := s.codec.Issue(*user)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	if err := s.users.SetLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("set last login failed", zap.String("user_id", user.ID), zap.Error(err))
	}

	return &LoginResult{
		AccessToken:   access,
		User:          *user,
		RefreshSecret: secret,
		CSRFNonce:     uuid.NewString(),
	}, nil
}

// Refresh validates the CSRF pair, then atomically rotates the session named
// by the incoming refresh secret and reissues an access token. A secret whose
// session was already rotated resolves to ErrInvalidSession: that is the
// built-in replay detector.
func (s *AuthService) Refresh(ctx context.Context, refreshSecret, csrfCookie, csrfHeader, userAgent, ip string) (*RefreshResult, error) {
	ctx, span := s.startSpan(ctx, "AuthService.Refresh")
	defer span.End()

	if refreshSecret == "" {
		return nil, ErrInvalidSession
	}
	// CSRF is checked before the store is touched at all.
	if csrfHeader == "" || csrfCookie == "" || csrfHeader != csrfCookie {
		return nil, ErrCSRFMismatch
	}

	sess, err := s.sessions.FindActiveByHash(ctx, hashSecret(refreshSecret))
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil, ErrInvalidSession
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("find session: %w", err)
	}

	newSecret, newHash, err := newRefreshSecret()
	if err != nil {
		return nil, err
	}

	if _, err := s.sessions.Rotate(ctx, sess, newHash); err != nil {
		// A concurrent refresh may have revoked the row between lookup and
		// rotation; the loser of that race sees an invalid session.
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrInvalidSession
		}
		span.RecordError(err)
		return nil, fmt.Errorf("rotate session: %w", err)
	}

	user, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("load session user: %w", err)
	}

	access, err := s.codec.Issue(user.Public())
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	return &RefreshResult{AccessToken: access, RefreshSecret: newSecret}, nil
}

// Logout revokes the session named by the refresh secret. Without a refresh
// cookie the caller is already logged out and Logout succeeds; with one, the
// CSRF pair must match before the store is touched.
func (s *AuthService) Logout(ctx context.Context, refreshSecret, csrfCookie, csrfHeader string) error {
	ctx, span := s.startSpan(ctx, "AuthService.Logout")
	defer span.End()

	if refreshSecret == "" {
		return nil
	}
	if csrfHeader == "" || csrfHeader != csrfCookie {
		return ErrCSRFMismatch
	}

	if err := s.sessions.Revoke(ctx, hashSecret(refreshSecret)); err != nil {
		span.RecordError(err)
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (s *AuthService) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return otel.Tracer("backend-pizza/service").Start(ctx, name)
}

// newRefreshSecret draws a fresh 256-bit secret and returns it with its
// storage hash. Only the hash is ever persisted.
func newRefreshSecret() (secret, hash string, err error) {
	buf := make([]byte, refreshSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("generate refresh secret: %w", err)
	}
	secret = base64.RawURLEncoding.EncodeToString(buf)
	return secret, hashSecret(secret), nil
}

// hashSecret is the one-way mapping from refresh secret to the stored lookup
// key: SHA-256, hex encoded.
func hashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
