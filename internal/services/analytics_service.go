package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/opal-spaces/opal-backend/internal/dto"
	"github.com/opal-spaces/opal-backend/internal/models"
)

const lowStockThreshold = 5

type AnalyticsService struct {
	db *gorm.DB
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: db}
}

// Summary aggregates the dashboard numbers: delivered sales, pending orders,
// low stock, units sold, and month-over-month growth.
func (s *AnalyticsService) Summary(ctx context.Context) (*dto.AnalyticsSummary, error) {
	db := s.db.WithContext(ctx)

	var totalSales float64
	err := db.Model(&models.Order{}).
		Where("status = ?", models.OrderDelivered).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&totalSales).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum sales: %w", err)
	}

	var pendingOrders int64
	if err := db.Model(&models.Order{}).Where("status = ?", models.OrderPending).Count(&pendingOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to count pending orders: %w", err)
	}

	var lowStock int64
	if err := db.Model(&models.Product{}).Where("stock < ?", lowStockThreshold).Count(&lowStock).Error; err != nil {
		return nil, fmt.Errorf("failed to count low stock items: %w", err)
	}

	var unitsSold int64
	err = db.Model(&models.OrderItem{}).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&unitsSold).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum units sold: %w", err)
	}

	now := time.Now()
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lastMonth := thisMonth.AddDate(0, -1, 0)

	salesThisMonth, err := s.deliveredSalesBetween(ctx, thisMonth, now)
	if err != nil {
		return nil, err
	}
	salesLastMonth, err := s.deliveredSalesBetween(ctx, lastMonth, thisMonth)
	if err != nil {
		return nil, err
	}

	unitsThisMonth, err := s.deliveredUnitsBetween(ctx, thisMonth, now)
	if err != nil {
		return nil, err
	}
	unitsLastMonth, err := s.deliveredUnitsBetween(ctx, lastMonth, thisMonth)
	if err != nil {
		return nil, err
	}

	summary := &dto.AnalyticsSummary{
		TotalSales:        totalSales,
		PendingOrders:     pendingOrders,
		LowStockItems:     lowStock,
		TotalProductsSold: unitsSold,
	}
	if salesLastMonth > 0 {
		summary.SalesGrowth = (salesThisMonth - salesLastMonth) / salesLastMonth
	}
	if unitsLastMonth > 0 {
		summary.ProductsGrowth = float64(unitsThisMonth-unitsLastMonth) / float64(unitsLastMonth)
	}
	return summary, nil
}

func (s *AnalyticsService) deliveredSalesBetween(ctx context.Context, from, to time.Time) (float64, error) {
	var sum float64
	err := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("status = ? AND created_at >= ? AND created_at < ?", models.OrderDelivered, from, to).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&sum).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum monthly sales: %w", err)
	}
	return sum, nil
}

func (s *AnalyticsService) deliveredUnitsBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var sum int64
	err := s.db.WithContext(ctx).Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status = ? AND orders.created_at >= ? AND orders.created_at < ?", models.OrderDelivered, from, to).
		Select("COALESCE(SUM(order_items.quantity), 0)").
		Scan(&sum).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum monthly units: %w", err)
	}
	return sum, nil
}
