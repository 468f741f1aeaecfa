package domain

import (
	"encoding/json"
	"time"
)

// Order statuses move forward only; there is no state machine here beyond the
// string column, matching the storefront's needs.
const (
	OrderStatusPending   = "pending"
	OrderStatusPreparing = "preparing"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// Order is a storefront order. Items is the cart as submitted, stored as
// jsonb. Monetary fields are decimal strings to avoid float drift.
type Order struct {
	ID             string          `json:"id"`
	CustomerName   string          `json:"customerName"`
	CustomerPhone  string          `json:"customerPhone"`
	DeliveryMethod string          `json:"deliveryMethod"`
	Address        *string         `json:"address"`
	PaymentMethod  string          `json:"paymentMethod"`
	Items          json.RawMessage `json:"items"`
	Subtotal       string          `json:"subtotal"`
	DeliveryFee    string          `json:"deliveryFee"`
	Total          string          `json:"total"`
	Notes          *string         `json:"notes"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// DashboardStats feeds the admin landing page.
type DashboardStats struct {
	TodayOrders    int     `json:"todayOrders"`
	MonthlyRevenue float64 `json:"monthlyRevenue"`
	TotalProducts  int     `json:"totalProducts"`
	RecentOrders   []Order `json:"recentOrders"`
}
