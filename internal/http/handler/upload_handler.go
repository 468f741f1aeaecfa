package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sueliob/backend-pizza/internal/upload"
)

// UploadHandler pushes images to Cloudinary. The public route exists for
// payment receipts attached to orders; the admin route backs product photos.
type UploadHandler struct {
	Uploader *upload.Cloudinary
	Logger   *zap.Logger
}

func NewUploadHandler(uploader *upload.Cloudinary, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{Uploader: uploader, Logger: logger}
}

// Upload accepts a base64 data URL and returns the hosted image URL.
func (h *UploadHandler) Upload(c *gin.Context) {
	if !h.Uploader.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "upload_unavailable"})
		return
	}

	var req struct {
		Image string `json:"image" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	result, err := h.Uploader.UploadDataURL(c.Request.Context(), req.Image)
	if err != nil {
		h.Logger.Error("image upload failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "upload_failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}
