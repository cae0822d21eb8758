package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opal-spaces/opal-backend/internal/dto"
	"github.com/opal-spaces/opal-backend/internal/models"
)

type fakePayments struct {
	result *PaymentResult
	err    error
}

func (p *fakePayments) Verify(context.Context, string) (*PaymentResult, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.result, nil
}

func testOrderDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := testCatalogDB(t)
	if err := db.AutoMigrate(&models.Order{}, &models.OrderItem{}); err != nil {
		t.Fatalf("migrate orders: %v", err)
	}
	return db
}

func orderRequest(lamp models.Product, quantity int) *dto.CreateOrderRequest {
	return &dto.CreateOrderRequest{
		Reference: "ref-" + uuid.NewString(),
		CartItems: []dto.CartItemInput{
			{ProductID: lamp.ID, Quantity: quantity},
		},
		Shipping: map[string]interface{}{
			"address": "12 Marina Road",
			"city":    "Lagos",
		},
	}
}

func TestOrderCreateChargesServerSidePrice(t *testing.T) {
	db := testOrderDB(t)
	lamp := seedProduct(t, db, "lamp", 1500)
	userID := uuid.New()

	// 2 * 1500 + flat shipping fee.
	payments := &fakePayments{result: &PaymentResult{Status: "success", Amount: 6000}}
	svc := NewOrderService(db, payments)

	order, err := svc.Create(context.Background(), &userID, orderRequest(lamp, 2))
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.Status != models.OrderPaid {
		t.Fatalf("expected status PAID, got %s", order.Status)
	}
	if order.TotalAmount != 6000 {
		t.Fatalf("expected total 6000, got %v", order.TotalAmount)
	}
	if order.UserID != userID {
		t.Fatalf("expected order for %s, got %s", userID, order.UserID)
	}
	if len(order.Items) != 1 || order.Items[0].Subtotal != 3000 {
		t.Fatalf("unexpected order items %+v", order.Items)
	}

	var sold models.Product
	if err := db.First(&sold, "id = ?", lamp.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if sold.AmountSold != 2 {
		t.Fatalf("expected amount_sold 2, got %d", sold.AmountSold)
	}
}

func TestOrderCreateGuestCheckout(t *testing.T) {
	db := testOrderDB(t)
	lamp := seedProduct(t, db, "lamp", 1500)

	payments := &fakePayments{result: &PaymentResult{Status: "success", Amount: 4500}}
	svc := NewOrderService(db, payments)

	order, err := svc.Create(context.Background(), nil, orderRequest(lamp, 1))
	if err != nil {
		t.Fatalf("create guest order: %v", err)
	}

	var guest models.User
	if err := db.First(&guest, "id = ?", order.UserID).Error; err != nil {
		t.Fatalf("load guest user: %v", err)
	}
	if !strings.HasPrefix(guest.Email, "guest_") {
		t.Fatalf("expected a synthetic guest account, got %q", guest.Email)
	}
}

func TestOrderCreateRejectsAmountMismatch(t *testing.T) {
	db := testOrderDB(t)
	lamp := seedProduct(t, db, "lamp", 1500)
	userID := uuid.New()

	payments := &fakePayments{result: &PaymentResult{Status: "success", Amount: 100}}
	svc := NewOrderService(db, payments)

	_, err := svc.Create(context.Background(), &userID, orderRequest(lamp, 2))
	if !errors.Is(err, ErrAmountMismatch) {
		t.Fatalf("expected ErrAmountMismatch, got %v", err)
	}

	var count int64
	db.Model(&models.Order{}).Count(&count)
	if count != 0 {
		t.Fatal("no order must be recorded on a mismatch")
	}
}

func TestOrderCreateRejectsFailedPayment(t *testing.T) {
	db := testOrderDB(t)
	lamp := seedProduct(t, db, "lamp", 1500)
	userID := uuid.New()

	payments := &fakePayments{result: &PaymentResult{Status: "abandoned", Amount: 4500}}
	svc := NewOrderService(db, payments)

	_, err := svc.Create(context.Background(), &userID, orderRequest(lamp, 1))
	if !errors.Is(err, ErrPaymentNotSuccessful) {
		t.Fatalf("expected ErrPaymentNotSuccessful, got %v", err)
	}
}

func TestOrderCreateRejectsUnknownProduct(t *testing.T) {
	db := testOrderDB(t)
	userID := uuid.New()

	payments := &fakePayments{result: &PaymentResult{Status: "success", Amount: 4500}}
	svc := NewOrderService(db, payments)

	req := &dto.CreateOrderRequest{
		Reference: "ref-" + uuid.NewString(),
		CartItems: []dto.CartItemInput{
			{ProductID: uuid.New(), Quantity: 1},
		},
	}
	_, err := svc.Create(context.Background(), &userID, req)
	if !errors.Is(err, ErrOrderProductMissing) {
		t.Fatalf("expected ErrOrderProductMissing, got %v", err)
	}
}
