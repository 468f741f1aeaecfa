package cookie

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func written(t *testing.T, write func(http.ResponseWriter)) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	write(w)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestRefreshCookieAttributes(t *testing.T) {
	p := NewPolicy(true, "lax", ".curiooso.com.br", "/api/admin")

	c := written(t, func(w http.ResponseWriter) { p.SetRefresh(w, "secret-value") })
	require.Equal(t, RefreshName, c.Name)
	require.Equal(t, "secret-value", c.Value)
	require.True(t, c.HttpOnly, "refresh cookie must be HttpOnly")
	require.True(t, c.Secure)
	require.Equal(t, http.SameSiteLaxMode, c.SameSite)
	require.Equal(t, "curiooso.com.br", c.Domain)
	require.Equal(t, "/api/admin", c.Path)
	require.Equal(t, int(RefreshTTL.Seconds()), c.MaxAge)
}

func TestCSRFCookieReadableByScript(t *testing.T) {
	p := NewPolicy(true, "lax", "", "/api/admin")

	c := written(t, func(w http.ResponseWriter) { p.SetCSRF(w, "nonce") })
	require.Equal(t, CSRFName, c.Name)
	require.False(t, c.HttpOnly, "csrf cookie must be readable so the client can mirror it into x-csrf")
	require.Equal(t, int(CSRFTTL.Seconds()), c.MaxAge)
}

func TestClearingKeepsAttributes(t *testing.T) {
	p := NewPolicy(true, "none", ".curiooso.com.br", "/api/admin")

	set := written(t, func(w http.ResponseWriter) { p.SetRefresh(w, "v") })
	cleared := written(t, p.ClearRefresh)

	require.Equal(t, set.Domain, cleared.Domain)
	require.Equal(t, set.Path, cleared.Path)
	require.Equal(t, set.SameSite, cleared.SameSite)
	require.Equal(t, set.Secure, cleared.Secure)
	require.Empty(t, cleared.Value)
	require.Less(t, cleared.MaxAge, 0, "clear must expire the cookie immediately")
}

func TestSameSiteNoneRequiresSecure(t *testing.T) {
	p := NewPolicy(false, "none", "", "")

	c := written(t, func(w http.ResponseWriter) { p.SetCSRF(w, "n") })
	require.Equal(t, http.SameSiteLaxMode, c.SameSite, "None without Secure must downgrade to Lax")
}

func TestDefaultPath(t *testing.T) {
	p := NewPolicy(false, "", "", "")

	c := written(t, func(w http.ResponseWriter) { p.SetRefresh(w, "v") })
	require.Equal(t, "/api/admin", c.Path)
	require.False(t, c.Secure)
}
