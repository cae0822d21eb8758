package handlers

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/opal-spaces/opal-backend/internal/dto"
	"github.com/opal-spaces/opal-backend/internal/services"
)

type ProductHandler struct {
	products *services.ProductService
	validate *validator.Validate
}

func NewProductHandler(products *services.ProductService) *ProductHandler {
	return &ProductHandler{products: products, validate: validator.New()}
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))

	result, err := h.products.List(c.UserContext(), page, limit)
	if err != nil {
		return serverError(c, "ListProducts", err)
	}
	return c.JSON(result)
}

func (h *ProductHandler) Featured(c *fiber.Ctx) error {
	products, err := h.products.Featured(c.UserContext())
	if err != nil {
		return serverError(c, "FeaturedProducts", err)
	}
	return c.JSON(fiber.Map{"success": true, "products": products})
}

func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid product id")
	}

	product, err := h.products.Get(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Product not found",
			})
		}
		return serverError(c, "GetProduct", err)
	}
	return c.JSON(product)
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var req dto.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return badRequest(c, "Please fill all required fields")
	}

	if _, err := h.products.Create(c.UserContext(), &req); err != nil {
		if errors.Is(err, services.ErrCategoryNotFound) {
			return badRequest(c, "Invalid category provided")
		}
		return serverError(c, "CreateProduct", err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MessageResponse{Message: "Product created successfully"})
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid product id")
	}

	var req dto.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return badRequest(c, "Please fill all required fields")
	}

	if err := h.products.Update(c.UserContext(), id, &req); err != nil {
		switch {
		case errors.Is(err, services.ErrCategoryNotFound):
			return badRequest(c, "Invalid category provided")
		case errors.Is(err, services.ErrProductNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Product not found",
			})
		default:
			return serverError(c, "UpdateProduct", err)
		}
	}
	return c.JSON(dto.MessageResponse{Message: "Product updated successfully"})
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid product id")
	}

	if err := h.products.Delete(c.UserContext(), id); err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Product not found",
			})
		}
		return serverError(c, "DeleteProduct", err)
	}
	return c.JSON(dto.MessageResponse{Message: "Product deleted"})
}
