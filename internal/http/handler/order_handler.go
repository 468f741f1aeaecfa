package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sueliob/backend-pizza/internal/delivery"
	"github.com/sueliob/backend-pizza/internal/domain"
	"github.com/sueliob/backend-pizza/internal/repository"
)

// OrderHandler takes storefront orders and serves the admin dashboard.
type OrderHandler struct {
	Orders    repository.OrderRepository
	Catalog   repository.CatalogRepository
	Estimator *delivery.Estimator
	Logger    *zap.Logger
}

func NewOrderHandler(orders repository.OrderRepository, catalog repository.CatalogRepository, estimator *delivery.Estimator, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{Orders: orders, Catalog: catalog, Estimator: estimator, Logger: logger}
}

// Create records a storefront order. No authentication: customers are
// anonymous and the order doubles as the lead.
func (h *OrderHandler) Create(c *gin.Context) {
	var o domain.Order
	if err := c.ShouldBindJSON(&o); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	if o.CustomerName == "" || o.CustomerPhone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	created, err := h.Orders.Create(c.Request.Context(), o)
	if err != nil {
		h.Logger.Error("create order failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// CalculateDistance estimates the delivery fee and time for an address
// before the customer commits to the order.
func (h *OrderHandler) CalculateDistance(c *gin.Context) {
	var req struct {
		Address  string               `json:"address"`
		Fallback delivery.Coordinates `json:"coordinates"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	fallback := req.Fallback
	if fallback.Lat == 0 && fallback.Lng == 0 {
		fallback = delivery.DefaultDestination
	}

	c.JSON(http.StatusOK, h.Estimator.Estimate(c.Request.Context(), req.Address, fallback))
}

// Dashboard aggregates the admin landing page numbers.
func (h *OrderHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	todayOrders, err := h.Orders.CountSince(ctx, midnight)
	if err != nil {
		h.respondStatsError(c, err)
		return
	}
	revenue, err := h.Orders.SumTotals(ctx)
	if err != nil {
		h.respondStatsError(c, err)
		return
	}
	products, err := h.Catalog.CountProducts(ctx)
	if err != nil {
		h.respondStatsError(c, err)
		return
	}
	recent, err := h.Orders.ListRecent(ctx, 10)
	if err != nil {
		h.respondStatsError(c, err)
		return
	}
	if recent == nil {
		recent = []domain.Order{}
	}

	c.JSON(http.StatusOK, domain.DashboardStats{
		TodayOrders:    todayOrders,
		MonthlyRevenue: revenue,
		TotalProducts:  products,
		RecentOrders:   recent,
	})
}

func (h *OrderHandler) respondStatsError(c *gin.Context, err error) {
	h.Logger.Error("dashboard stats failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
}
