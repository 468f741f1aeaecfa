// Package token signs and verifies the short-lived access tokens presented on
// every admin API call. Tokens are HS256 JWTs with issuer and audience pinned
// to configured values; there is no introspection or revocation for access
// tokens, their exposure window is bounded by the 15-minute TTL.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sueliob/backend-pizza/internal/domain"
)

// Verification failures, mapped from the jwt parser so callers never depend
// on the library's error values.
var (
	ErrExpired          = errors.New("access token expired")
	ErrInvalidSignature = errors.New("access token signature invalid")
	ErrIssuerMismatch   = errors.New("access token issuer mismatch")
	ErrAudienceMismatch = errors.New("access token audience mismatch")
	ErrMalformed        = errors.New("access token malformed")
)

// Claims is the fixed payload carried by an access token. Identity fields are
// compile-time struct members; arbitrary claim maps are not accepted.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Codec issues and verifies access tokens with a single symmetric key.
type Codec struct {
	key      []byte
	issuer   string
	audience string
	ttl      time.Duration

	now func() time.Time
}

// NewCodec returns a Codec signing with key and pinning issuer/audience.
func NewCodec(key []byte, issuer, audience string, ttl time.Duration) *Codec {
	return &Codec{key: key, issuer: issuer, audience: audience, ttl: ttl, now: time.Now}
}

// Issue signs a token for the given user, valid for the codec's TTL.
func (c *Codec) Issue(user domain.PublicUser) (string, error) {
	now := c.now()
	claims := Claims{
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    c.issuer,
			Audience:  jwt.ClaimStrings{c.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token and returns its claims. All failures
// are reported through the package sentinel errors.
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithAudience(c.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)

	var claims Claims
	_, err := parser.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		return c.key, nil
	})
	if err != nil {
		return nil, mapParseError(err)
	}
	return &claims, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrIssuerMismatch
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return ErrAudienceMismatch
	default:
		return ErrMalformed
	}
}
