package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/opal-spaces/opal-backend/internal/dto"
	"github.com/opal-spaces/opal-backend/internal/services"
)

type ReviewHandler struct {
	reviews  *services.ReviewService
	validate *validator.Validate
}

func NewReviewHandler(reviews *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, validate: validator.New()}
}

func (h *ReviewHandler) Add(c *fiber.Ctx) error {
	productID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid product id")
	}

	var req dto.ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return badRequest(c, "Rating must be between 1 and 5")
	}

	review, err := h.reviews.Add(c.UserContext(), productID, req.Rating, req.Comment)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Product not found",
			})
		}
		return serverError(c, "AddReview", err)
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

func (h *ReviewHandler) ListByProduct(c *fiber.Ctx) error {
	productID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid product id")
	}

	reviews, err := h.reviews.ListByProduct(c.UserContext(), productID)
	if err != nil {
		return serverError(c, "ListReviews", err)
	}
	return c.JSON(reviews)
}
