package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sueliob/backend-pizza/internal/cookie"
	"github.com/sueliob/backend-pizza/internal/service"
)

// csrfHeaderName is the request header the SPA mirrors the CSRF cookie into.
const csrfHeaderName = "x-csrf"

// AuthHandler adapts the login/refresh/logout protocol to HTTP: request
// bodies and cookies in, JSON bodies and Set-Cookie headers out.
type AuthHandler struct {
	Auth   *service.AuthService
	Policy cookie.Policy
	Logger *zap.Logger
}

// NewAuthHandler creates the handler set.
func NewAuthHandler(auth *service.AuthService, policy cookie.Policy, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{Auth: auth, Policy: policy, Logger: logger}
}

// Login exchanges credentials for an access token plus the refresh and CSRF
// cookies.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	result, err := h.Auth.Login(c.Request.Context(), req.Username, req.Password, c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	h.Policy.SetRefresh(c.Writer, result.RefreshSecret)
	h.Policy.SetCSRF(c.Writer, result.CSRFNonce)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   result.AccessToken,
		"user":    result.User,
	})
}

// Refresh rotates the refresh session and reissues an access token. The CSRF
// cookie's value is carried forward with a renewed lifetime; only the refresh
// secret rotates.
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshSecret, _ := c.Cookie(cookie.RefreshName)
	csrfCookie, _ := c.Cookie(cookie.CSRFName)
	csrfHeader := c.GetHeader(csrfHeaderName)

	result, err := h.Auth.Refresh(c.Request.Context(), refreshSecret, csrfCookie, csrfHeader, c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	h.Policy.SetRefresh(c.Writer, result.RefreshSecret)
	h.Policy.SetCSRF(c.Writer, csrfCookie)
	c.JSON(http.StatusOK, gin.H{"accessToken": result.AccessToken})
}

// Logout revokes the current session and expires both cookies. Cookies are
// cleared even when revocation fails so the browser ends up signed out
// regardless.
func (h *AuthHandler) Logout(c *gin.Context) {
	refreshSecret, _ := c.Cookie(cookie.RefreshName)
	csrfCookie, _ := c.Cookie(cookie.CSRFName)
	csrfHeader := c.GetHeader(csrfHeaderName)

	err := h.Auth.Logout(c.Request.Context(), refreshSecret, csrfCookie, csrfHeader)

	h.Policy.ClearRefresh(c.Writer)
	h.Policy.ClearCSRF(c.Writer)

	if err != nil {
		h.respondAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// respondAuthError maps protocol outcomes to statuses. Anything that is not
// an expected outcome is logged in full and answered with a body that leaks
// nothing.
func (h *AuthHandler) respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
	case errors.Is(err, service.ErrInvalidSession):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_session"})
	case errors.Is(err, service.ErrCSRFMismatch):
		c.JSON(http.StatusForbidden, gin.H{"error": "csrf_mismatch"})
	default:
		h.Logger.Error("auth request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
	}
}
