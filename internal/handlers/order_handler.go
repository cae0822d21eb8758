package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/opal-spaces/opal-backend/internal/dto"
	"github.com/opal-spaces/opal-backend/internal/services"
)

type OrderHandler struct {
	orders   *services.OrderService
	validate *validator.Validate
}

func NewOrderHandler(orders *services.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders, validate: validator.New()}
}

// Create verifies the payment reference and places the order. The route is
// public so guests can check out without an account.
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return badRequest(c, "Reference and cart items are required")
	}

	order, err := h.orders.Create(c.UserContext(), req.UserID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPaymentNotSuccessful):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false, "message": "Payment not successful",
			})
		case errors.Is(err, services.ErrOrderProductMissing):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false, "message": "One or more products not found",
			})
		case errors.Is(err, services.ErrAmountMismatch):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false, "message": "Amount mismatch",
			})
		default:
			return serverError(c, "CreateOrder", err)
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Payment verified, order placed",
		"order":   order,
	})
}
