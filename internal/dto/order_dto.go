package dto

import "github.com/google/uuid"

type CreateOrderRequest struct {
	// UserID is absent for guest checkout; a guest account is created.
	UserID    *uuid.UUID             `json:"userId"`
	Reference string                 `json:"reference" validate:"required"`
	CartItems []CartItemInput        `json:"cartItems" validate:"required,min=1,dive"`
	Shipping  map[string]interface{} `json:"shipping"`
}

type AnalyticsSummary struct {
	TotalSales        float64 `json:"totalSales"`
	PendingOrders     int64   `json:"pendingOrders"`
	LowStockItems     int64   `json:"lowStockItems"`
	TotalProductsSold int64   `json:"totalProductsSold"`
	SalesGrowth       float64 `json:"salesGrowth"`
	ProductsGrowth    float64 `json:"productsGrowth"`
}
