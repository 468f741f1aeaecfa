package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sueliob/backend-pizza/internal/domain"
	"github.com/sueliob/backend-pizza/internal/repository"
)

// CatalogHandler serves the menu. Public routes only return available items;
// the admin routes see and manage everything.
type CatalogHandler struct {
	Catalog repository.CatalogRepository
	Logger  *zap.Logger
}

func NewCatalogHandler(catalog repository.CatalogRepository, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{Catalog: catalog, Logger: logger}
}

// PublicFlavors lists available flavors for the storefront.
func (h *CatalogHandler) PublicFlavors(c *gin.Context) {
	flavors, err := h.Catalog.ListFlavors(c.Request.Context(), true)
	if err != nil {
		h.respondStorageError(c, "list flavors", err)
		return
	}
	c.JSON(http.StatusOK, emptyAsList(flavors))
}

// PublicFlavorsByCategory lists available flavors in one category.
func (h *CatalogHandler) PublicFlavorsByCategory(c *gin.Context) {
	flavors, err := h.Catalog.ListFlavorsByCategory(c.Request.Context(), c.Param("category"))
	if err != nil {
		h.respondStorageError(c, "list flavors by category", err)
		return
	}
	c.JSON(http.StatusOK, emptyAsList(flavors))
}

// PublicExtras lists available extras.
func (h *CatalogHandler) PublicExtras(c *gin.Context) {
	extras, err := h.Catalog.ListExtras(c.Request.Context(), true)
	if err != nil {
		h.respondStorageError(c, "list extras", err)
		return
	}
	c.JSON(http.StatusOK, emptyAsList(extras))
}

// PublicDoughTypes lists available dough types.
func (h *CatalogHandler) PublicDoughTypes(c *gin.Context) {
	doughs, err := h.Catalog.ListDoughTypes(c.Request.Context(), true)
	if err != nil {
		h.respondStorageError(c, "list dough types", err)
		return
	}
	c.JSON(http.StatusOK, emptyAsList(doughs))
}

// AdminFlavors lists every flavor including unavailable ones.
func (h *CatalogHandler) AdminFlavors(c *gin.Context) {
	flavors, err := h.Catalog.ListFlavors(c.Request.Context(), false)
	if err != nil {
		h.respondStorageError(c, "list flavors", err)
		return
	}
	c.JSON(http.StatusOK, emptyAsList(flavors))
}

// CreateFlavor adds a flavor.
func (h *CatalogHandler) CreateFlavor(c *gin.Context) {
	var f domain.Flavor
	if err := c.ShouldBindJSON(&f); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	created, err := h.Catalog.CreateFlavor(c.Request.Context(), f)
	if err != nil {
		h.respondStorageError(c, "create flavor", err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateFlavor replaces a flavor's fields.
func (h *CatalogHandler) UpdateFlavor(c *gin.Context) {
	var f domain.Flavor
	if err := c.ShouldBindJSON(&f); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	updated, err := h.Catalog.UpdateFlavor(c.Request.Context(), c.Param("id"), f)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	if err != nil {
		h.respondStorageError(c, "update flavor", err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// AdminExtras lists every extra.
func (h *CatalogHandler) AdminExtras(c *gin.Context) {
	extras, err := h.Catalog.ListExtras(c.Request.Context(), false)
	if err != nil {
		h.respondStorageError(c, "list extras", err)
		return
	}
	c.JSON(http.StatusOK, emptyAsList(extras))
}

// CreateExtra adds an extra.
func (h *CatalogHandler) CreateExtra(c *gin.Context) {
	var e domain.Extra
	if err := c.ShouldBindJSON(&e); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	created, err := h.Catalog.CreateExtra(c.Request.Context(), e)
	if err != nil {
		h.respondStorageError(c, "create extra", err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateExtra replaces an extra's fields.
func (h *CatalogHandler) UpdateExtra(c *gin.Context) {
	var e domain.Extra
	if err := c.ShouldBindJSON(&e); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	updated, err := h.Catalog.UpdateExtra(c.Request.Context(), c.Param("id"), e)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	if err != nil {
		h.respondStorageError(c, "update extra", err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// AdminDoughTypes lists every dough type.
func (h *CatalogHandler) AdminDoughTypes(c *gin.Context) {
	doughs, err := h.Catalog.ListDoughTypes(c.Request.Context(), false)
	if err != nil {
		h.respondStorageError(c, "list dough types", err)
		return
	}
	c.JSON(http.StatusOK, emptyAsList(doughs))
}

// CreateDoughType adds a dough type.
func (h *CatalogHandler) CreateDoughType(c *gin.Context) {
	var d domain.DoughType
	if err := c.ShouldBindJSON(&d); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	created, err := h.Catalog.CreateDoughType(c.Request.Context(), d)
	if err != nil {
		h.respondStorageError(c, "create dough type", err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateDoughType replaces a dough type's fields.
func (h *CatalogHandler) UpdateDoughType(c *gin.Context) {
	var d domain.DoughType
	if err := c.ShouldBindJSON(&d); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	updated, err := h.Catalog.UpdateDoughType(c.Request.Context(), c.Param("id"), d)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	if err != nil {
		h.respondStorageError(c, "update dough type", err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// BulkImport loads a whole menu in one call, used when seeding a fresh
// deployment from the frontend's bundled menu.
func (h *CatalogHandler) BulkImport(c *gin.Context) {
	var req struct {
		Flavors    []domain.Flavor    `json:"flavors"`
		Extras     []domain.Extra     `json:"extras"`
		DoughTypes []domain.DoughType `json:"doughTypes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	ctx := c.Request.Context()
	flavors, err := h.Catalog.BulkInsertFlavors(ctx, req.Flavors)
	if err != nil {
		h.respondStorageError(c, "bulk insert flavors", err)
		return
	}
	extras, err := h.Catalog.BulkInsertExtras(ctx, req.Extras)
	if err != nil {
		h.respondStorageError(c, "bulk insert extras", err)
		return
	}
	doughs, err := h.Catalog.BulkInsertDoughTypes(ctx, req.DoughTypes)
	if err != nil {
		h.respondStorageError(c, "bulk insert dough types", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"imported": gin.H{"flavors": flavors, "extras": extras, "doughTypes": doughs},
	})
}

func (h *CatalogHandler) respondStorageError(c *gin.Context, op string, err error) {
	h.Logger.Error(op+" failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
}

// emptyAsList keeps JSON arrays as [] instead of null for empty results.
func emptyAsList[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
