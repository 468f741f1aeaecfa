package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sueliob/backend-pizza/internal/password"
	"github.com/sueliob/backend-pizza/internal/repository"
)

// DebugHandler provisions the first admin account on a fresh deployment.
// Its routes are only registered when DEBUG_ENDPOINTS is set and creation is
// refused once any admin exists.
type DebugHandler struct {
	Users    repository.UserRepository
	Gateway  *password.Gateway
	HashCost int
	Logger   *zap.Logger
}

func NewDebugHandler(users repository.UserRepository, gateway *password.Gateway, hashCost int, logger *zap.Logger) *DebugHandler {
	return &DebugHandler{Users: users, Gateway: gateway, HashCost: hashCost, Logger: logger}
}

// AdminCount reports how many admin accounts exist.
func (h *DebugHandler) AdminCount(c *gin.Context) {
	count, err := h.Users.Count(c.Request.Context())
	if err != nil {
		h.Logger.Error("count admins failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// CreateAdmin bootstraps the first admin account.
func (h *DebugHandler) CreateAdmin(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	count, err := h.Users.Count(c.Request.Context())
	if err != nil {
		h.Logger.Error("count admins failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "admin_exists"})
		return
	}

	hash, err := h.Gateway.Hash(c.Request.Context(), req.Password, h.HashCost)
	if err != nil {
		h.Logger.Error("hash password failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
		return
	}

	user, err := h.Users.Create(c.Request.Context(), req.Username, req.Email, hash, "admin")
	if err != nil {
		h.Logger.Error("create admin failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user.Public()})
}
