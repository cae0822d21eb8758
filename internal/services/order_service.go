package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/opal-spaces/opal-backend/internal/dto"
	"github.com/opal-spaces/opal-backend/internal/models"
)

var (
	ErrPaymentNotSuccessful = errors.New("payment not successful")
	ErrAmountMismatch       = errors.New("amount mismatch")
	ErrOrderProductMissing  = errors.New("one or more products not found")
)

// Flat shipping fee added to every order total.
const shippingFee = 3000

type OrderService struct {
	db       *gorm.DB
	payments PaymentVerifier
}

func NewOrderService(db *gorm.DB, payments PaymentVerifier) *OrderService {
	return &OrderService{db: db, payments: payments}
}

// Create verifies the payment reference with the gateway, prices the cart
// server-side, and records the order. The gateway-reported amount must equal
// the computed total. A nil userID places a guest order under a synthetic
// guest account.
func (s *OrderService) Create(ctx context.Context, userID *uuid.UUID, req *dto.CreateOrderRequest) (*models.Order, error) {
	result, err := s.payments.Verify(ctx, req.Reference)
	if err != nil {
		return nil, fmt.Errorf("payment verification failed: %w", err)
	}
	if result.Status != "success" {
		return nil, ErrPaymentNotSuccessful
	}

	productIDs := make([]uuid.UUID, 0, len(req.CartItems))
	for _, item := range req.CartItems {
		productIDs = append(productIDs, item.ProductID)
	}

	var products []models.Product
	if err := s.db.WithContext(ctx).Where("id IN ?", productIDs).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	if len(products) != len(req.CartItems) {
		return nil, ErrOrderProductMissing
	}

	byID := make(map[uuid.UUID]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	total := float64(shippingFee)
	items := make([]models.OrderItem, 0, len(req.CartItems))
	for _, item := range req.CartItems {
		product := byID[item.ProductID]
		subtotal := product.Price * float64(item.Quantity)
		total += subtotal
		items = append(items, models.OrderItem{
			ID:        uuid.New(),
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
			Subtotal:  subtotal,
		})
	}

	if result.Amount != total {
		return nil, ErrAmountMismatch
	}

	var shipping datatypes.JSON
	if req.Shipping != nil {
		b, err := json.Marshal(req.Shipping)
		if err != nil {
			return nil, fmt.Errorf("failed to encode shipping details: %w", err)
		}
		shipping = datatypes.JSON(b)
	}

	order := models.Order{
		ID:          uuid.New(),
		TotalAmount: total,
		Status:      models.OrderPaid,
		Reference:   req.Reference,
		Shipping:    shipping,
		Items:       items,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if userID == nil {
			guest, err := s.createGuestUser(tx)
			if err != nil {
				return err
			}
			order.UserID = guest.ID
		} else {
			order.UserID = *userID
		}

		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for _, item := range order.Items {
			err := tx.Model(&models.Product{}).
				Where("id = ?", item.ProductID).
				Update("amount_sold", gorm.Expr("amount_sold + ?", item.Quantity)).Error
			if err != nil {
				return fmt.Errorf("failed to update units sold: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var created models.Order
	err = s.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		First(&created, "id = ?", order.ID).Error
	if err != nil {
		return nil, fmt.Errorf("failed to reload order: %w", err)
	}
	return &created, nil
}

func (s *OrderService) createGuestUser(tx *gorm.DB) (*models.User, error) {
	guest := models.User{
		ID:        uuid.New(),
		Email:     fmt.Sprintf("guest_%s@opalspaces.com", uuid.NewString()),
		FirstName: "Guest",
		LastName:  "User",
		Role:      models.RoleUser,
	}
	if err := tx.Create(&guest).Error; err != nil {
		return nil, fmt.Errorf("failed to create guest user: %w", err)
	}
	return &guest, nil
}
