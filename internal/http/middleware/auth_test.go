package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/sueliob/backend-pizza/internal/domain"
	"github.com/sueliob/backend-pizza/internal/http/middleware"
	"github.com/sueliob/backend-pizza/internal/token"
)

func newGuardedRouter(codec *token.Codec) *gin.Engine {
	gin.SetMode(gin.TestMode)
	auth := &middleware.Auth{Codec: codec}

	r := gin.New()
	r.GET("/guarded", auth.ValidateJWT, func(c *gin.Context) {
		claims, ok := middleware.GetAccessClaims(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no claims"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"username": claims.Username})
	})
	return r
}

func TestValidateJWTAcceptsBearer(t *testing.T) {
	codec := token.NewCodec([]byte("k"), "backend-pizzaria", "pizzaria-spa", time.Minute)
	r := newGuardedRouter(codec)

	access, err := codec.Issue(domain.PublicUser{ID: "u-1", Username: "admin", Role: "admin"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "admin")
}

func TestValidateJWTRejections(t *testing.T) {
	codec := token.NewCodec([]byte("k"), "backend-pizzaria", "pizzaria-spa", time.Minute)
	other := token.NewCodec([]byte("other-key"), "backend-pizzaria", "pizzaria-spa", time.Minute)
	r := newGuardedRouter(codec)

	forged, err := other.Issue(domain.PublicUser{ID: "u-1", Username: "admin", Role: "admin"})
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not.a.jwt"},
		{"wrong key", "Bearer " + forged},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, http.StatusUnauthorized, w.Code)
			require.Contains(t, w.Body.String(), "invalid_token")
		})
	}
}
