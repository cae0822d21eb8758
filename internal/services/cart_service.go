package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opal-spaces/opal-backend/internal/dto"
	"github.com/opal-spaces/opal-backend/internal/models"
)

type CartService struct {
	db *gorm.DB
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

// Get returns the user's cart items, or an empty slice when no cart exists.
func (s *CartService) Get(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	cart, err := s.findCart(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return []models.CartItem{}, nil
	}
	return cart.Items, nil
}

// Replace swaps the cart's contents for the given items.
func (s *CartService) Replace(ctx context.Context, userID uuid.UUID, items []dto.CartItemInput) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := s.findOrCreateCart(ctx, tx, userID)
		if err != nil {
			return err
		}
		return s.setItems(tx, cart, items)
	})
}

// Merge folds a guest cart into the user's cart, summing quantities per
// product, and returns the merged items with product details.
func (s *CartService) Merge(ctx context.Context, userID uuid.UUID, guestItems []dto.CartItemInput) ([]models.CartItem, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := s.findOrCreateCart(ctx, tx, userID)
		if err != nil {
			return err
		}

		quantities := make(map[uuid.UUID]int)
		order := make([]uuid.UUID, 0, len(cart.Items)+len(guestItems))
		for _, item := range cart.Items {
			if _, seen := quantities[item.ProductID]; !seen {
				order = append(order, item.ProductID)
			}
			quantities[item.ProductID] = item.Quantity
		}
		for _, item := range guestItems {
			if _, seen := quantities[item.ProductID]; !seen {
				order = append(order, item.ProductID)
			}
			quantities[item.ProductID] += item.Quantity
		}

		merged := make([]dto.CartItemInput, 0, len(order))
		for _, productID := range order {
			merged = append(merged, dto.CartItemInput{
				ProductID: productID,
				Quantity:  quantities[productID],
			})
		}
		return s.setItems(tx, cart, merged)
	})
	if err != nil {
		return nil, err
	}

	cart, err := s.findCart(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	return cart.Items, nil
}

// Clear empties the cart without deleting it.
func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) error {
	cart, err := s.findCart(ctx, s.db, userID)
	if err != nil || cart == nil {
		return err
	}
	if err := s.db.WithContext(ctx).Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (s *CartService) findCart(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Preload("Items.Product.Images").
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch cart: %w", err)
	}
	return &cart, nil
}

func (s *CartService) findOrCreateCart(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.findCart(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if cart != nil {
		return cart, nil
	}

	created := models.Cart{ID: uuid.New(), UserID: userID}
	if err := tx.Create(&created).Error; err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return &created, nil
}

func (s *CartService) setItems(tx *gorm.DB, cart *models.Cart, items []dto.CartItemInput) error {
	if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart items: %w", err)
	}
	for _, item := range items {
		row := models.CartItem{
			ID:        uuid.New(),
			CartID:    cart.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("failed to store cart item: %w", err)
		}
	}
	return nil
}
