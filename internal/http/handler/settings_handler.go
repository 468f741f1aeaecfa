package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sueliob/backend-pizza/internal/repository"
)

// SettingsHandler serves the section -> document configuration store. The
// documents are owned by the frontend; the backend only keys them by section.
type SettingsHandler struct {
	Settings repository.SettingsRepository
	Logger   *zap.Logger
}

func NewSettingsHandler(settings repository.SettingsRepository, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{Settings: settings, Logger: logger}
}

// PublicSettings returns every section keyed by name. The business_hours
// section is additionally exposed under the aliases older frontend builds
// read ("businessHours" and "hours").
func (h *SettingsHandler) PublicSettings(c *gin.Context) {
	all, err := h.Settings.GetAll(c.Request.Context())
	if err != nil {
		h.Logger.Error("load settings failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
		return
	}

	out := make(map[string]json.RawMessage, len(all))
	for _, s := range all {
		out[s.Section] = s.Data
		if s.Section == "business_hours" {
			out["businessHours"] = s.Data
			out["hours"] = s.Data
		}
	}
	c.JSON(http.StatusOK, out)
}

// PublicContact returns just the contact section for the storefront footer.
func (h *SettingsHandler) PublicContact(c *gin.Context) {
	s, err := h.Settings.GetSection(c.Request.Context(), "contact")
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	if err != nil {
		h.Logger.Error("load contact failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
		return
	}
	c.Data(http.StatusOK, "application/json", s.Data)
}

// AdminSettings returns all sections with update timestamps.
func (h *SettingsHandler) AdminSettings(c *gin.Context) {
	all, err := h.Settings.GetAll(c.Request.Context())
	if err != nil {
		h.Logger.Error("load settings failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
		return
	}
	c.JSON(http.StatusOK, all)
}

// UpdateSettings upserts one or more sections in a single call. The request
// body is an object keyed by section name.
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req map[string]json.RawMessage
	if err := c.ShouldBindJSON(&req); err != nil || len(req) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	for section, data := range req {
		if err := h.Settings.Upsert(c.Request.Context(), section, data); err != nil {
			h.Logger.Error("upsert setting failed", zap.String("section", section), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
