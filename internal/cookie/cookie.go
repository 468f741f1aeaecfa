// Package cookie centralizes the security attributes of the two auth cookies.
//
// The refresh cookie is HttpOnly; the CSRF cookie deliberately is not, because
// the double-submit defense requires client script to read it and mirror it
// into the x-csrf request header. Both are scoped to the admin path prefix so
// they never ride along on storefront requests.
package cookie

import (
	"net/http"
	"strings"
	"time"
)

// Cookie names on the wire.
const (
	RefreshName = "refresh_token"
	CSRFName    = "csrf_token"
)

// Artifact lifetimes.
const (
	RefreshTTL = 7 * 24 * time.Hour
	CSRFTTL    = 30 * time.Minute
)

// Policy produces the Set-Cookie headers for the auth artifacts. A single
// Policy is built from config at startup and shared by all handlers, so
// setting and clearing always agree on Domain, Path and SameSite; browsers
// refuse to overwrite a cookie whose attributes differ.
type Policy struct {
	secure   bool
	sameSite http.SameSite
	domain   string
	path     string
}

// NewPolicy builds a Policy. sameSite accepts "lax", "strict" or "none"
// (case-insensitive); anything else falls back to Lax. SameSite=None without
// Secure is rejected by browsers, so that combination is downgraded to Lax.
// domain may be empty for host-only cookies; cross-subdomain deployments set
// it to the shared parent domain.
func NewPolicy(secure bool, sameSite, domain, path string) Policy {
	ss := parseSameSite(sameSite)
	if ss == http.SameSiteNoneMode && !secure {
		ss = http.SameSiteLaxMode
	}
	if path == "" {
		path = "/api/admin"
	}
	return Policy{secure: secure, sameSite: ss, domain: domain, path: path}
}

// SetRefresh writes the HttpOnly refresh cookie with a 7-day lifetime.
func (p Policy) SetRefresh(w http.ResponseWriter, secret string) {
	http.SetCookie(w, p.build(RefreshName, secret, int(RefreshTTL.Seconds()), true))
}

// ClearRefresh expires the refresh cookie using the same attributes it was
// set with.
func (p Policy) ClearRefresh(w http.ResponseWriter) {
	http.SetCookie(w, p.build(RefreshName, "", 0, true))
}

// SetCSRF writes the script-readable CSRF cookie with a 30-minute lifetime.
func (p Policy) SetCSRF(w http.ResponseWriter, nonce string) {
	http.SetCookie(w, p.build(CSRFName, nonce, int(CSRFTTL.Seconds()), false))
}

// ClearCSRF expires the CSRF cookie.
func (p Policy) ClearCSRF(w http.ResponseWriter) {
	http.SetCookie(w, p.build(CSRFName, "", 0, false))
}

func (p Policy) build(name, value string, maxAge int, httpOnly bool) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     p.path,
		Domain:   p.domain,
		HttpOnly: httpOnly,
		Secure:   p.secure,
		SameSite: p.sameSite,
		MaxAge:   maxAge,
	}
	if maxAge == 0 {
		// MaxAge 0 means "unset" to net/http; -1 emits Max-Age=0 on the wire.
		c.MaxAge = -1
	}
	return c
}

func parseSameSite(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "none":
		return http.SameSiteNoneMode
	case "strict":
		return http.SameSiteStrictMode
	default:
		return http.SameSiteLaxMode
	}
}
