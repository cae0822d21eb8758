package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/opal-spaces/opal-backend/internal/dto"
	"github.com/opal-spaces/opal-backend/internal/middleware"
	"github.com/opal-spaces/opal-backend/internal/services"
)

type CartHandler struct {
	carts    *services.CartService
	validate *validator.Validate
}

func NewCartHandler(carts *services.CartService) *CartHandler {
	return &CartHandler{carts: carts, validate: validator.New()}
}

func (h *CartHandler) Get(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	items, err := h.carts.Get(c.UserContext(), userID)
	if err != nil {
		return serverError(c, "GetCart", err)
	}
	return c.JSON(fiber.Map{"items": items})
}

func (h *CartHandler) Update(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.UpdateCartRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return badRequest(c, "Invalid cart items")
	}

	if err := h.carts.Replace(c.UserContext(), userID, req.Items); err != nil {
		return serverError(c, "UpdateCart", err)
	}
	return c.JSON(dto.MessageResponse{Message: "Cart updated"})
}

func (h *CartHandler) Merge(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.MergeCartRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return badRequest(c, "Invalid cart items")
	}

	items, err := h.carts.Merge(c.UserContext(), userID, req.GuestItems)
	if err != nil {
		return serverError(c, "MergeCart", err)
	}
	return c.JSON(fiber.Map{"message": "Cart merged successfully", "items": items})
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	if err := h.carts.Clear(c.UserContext(), userID); err != nil {
		return serverError(c, "ClearCart", err)
	}
	return c.JSON(dto.MessageResponse{Message: "Cart cleared"})
}
