package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opal-spaces/opal-backend/internal/dto"
	"github.com/opal-spaces/opal-backend/internal/models"
)

func testCatalogDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := testDB(t)
	err := db.AutoMigrate(
		&models.Category{}, &models.Product{}, &models.ProductImage{},
		&models.Cart{}, &models.CartItem{},
	)
	if err != nil {
		t.Fatalf("migrate catalog: %v", err)
	}
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price float64) models.Product {
	t.Helper()
	category := models.Category{ID: uuid.New(), Name: "cat-" + name}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	product := models.Product{
		ID:          uuid.New(),
		Name:        name,
		Description: name,
		Price:       price,
		Stock:       10,
		CategoryID:  category.ID,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func TestCartGetWithoutCart(t *testing.T) {
	db := testCatalogDB(t)
	svc := NewCartService(db)

	items, err := svc.Get(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty cart, got %d items", len(items))
	}
}

func TestCartReplace(t *testing.T) {
	db := testCatalogDB(t)
	svc := NewCartService(db)
	userID := uuid.New()
	lamp := seedProduct(t, db, "lamp", 1500)
	vase := seedProduct(t, db, "vase", 800)

	err := svc.Replace(context.Background(), userID, []dto.CartItemInput{
		{ProductID: lamp.ID, Quantity: 1},
		{ProductID: vase.ID, Quantity: 2},
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}

	// A second replace swaps the contents instead of appending.
	err = svc.Replace(context.Background(), userID, []dto.CartItemInput{
		{ProductID: lamp.ID, Quantity: 3},
	})
	if err != nil {
		t.Fatalf("second replace: %v", err)
	}

	items, err := svc.Get(context.Background(), userID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].ProductID != lamp.ID || items[0].Quantity != 3 {
		t.Fatalf("unexpected item %+v", items[0])
	}
	if items[0].Product.Name != "lamp" {
		t.Fatal("expected product details to be loaded")
	}
}

func TestCartMergeSumsQuantities(t *testing.T) {
	db := testCatalogDB(t)
	svc := NewCartService(db)
	userID := uuid.New()
	lamp := seedProduct(t, db, "lamp", 1500)
	vase := seedProduct(t, db, "vase", 800)

	err := svc.Replace(context.Background(), userID, []dto.CartItemInput{
		{ProductID: lamp.ID, Quantity: 2},
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}

	merged, err := svc.Merge(context.Background(), userID, []dto.CartItemInput{
		{ProductID: lamp.ID, Quantity: 1},
		{ProductID: vase.ID, Quantity: 4},
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}

	quantities := make(map[uuid.UUID]int, len(merged))
	for _, item := range merged {
		quantities[item.ProductID] = item.Quantity
	}
	if quantities[lamp.ID] != 3 {
		t.Fatalf("expected lamp quantity 3, got %d", quantities[lamp.ID])
	}
	if quantities[vase.ID] != 4 {
		t.Fatalf("expected vase quantity 4, got %d", quantities[vase.ID])
	}
}

func TestCartMergeIntoEmptyCart(t *testing.T) {
	db := testCatalogDB(t)
	svc := NewCartService(db)
	userID := uuid.New()
	lamp := seedProduct(t, db, "lamp", 1500)

	merged, err := svc.Merge(context.Background(), userID, []dto.CartItemInput{
		{ProductID: lamp.ID, Quantity: 2},
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if len(merged) != 1 || merged[0].Quantity != 2 {
		t.Fatalf("unexpected merged items %+v", merged)
	}
}

func TestCartClear(t *testing.T) {
	db := testCatalogDB(t)
	svc := NewCartService(db)
	userID := uuid.New()
	lamp := seedProduct(t, db, "lamp", 1500)

	err := svc.Replace(context.Background(), userID, []dto.CartItemInput{
		{ProductID: lamp.ID, Quantity: 1},
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}

	if err := svc.Clear(context.Background(), userID); err != nil {
		t.Fatalf("clear: %v", err)
	}

	items, err := svc.Get(context.Background(), userID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty cart after clear, got %d items", len(items))
	}

	// Clearing a user with no cart is a no-op.
	if err := svc.Clear(context.Background(), uuid.New()); err != nil {
		t.Fatalf("clear without cart: %v", err)
	}
}
