package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/opal-spaces/opal-backend/internal/dto"
)

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: "Unauthorized",
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: message,
	})
}

// serverError logs the underlying failure and returns an opaque 500. Internal
// detail never crosses the HTTP boundary.
func serverError(c *fiber.Ctx, action string, err error) error {
	slog.Error("request failed",
		"route", c.Path(),
		"action", action,
		"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
		"error", err.Error(),
	)
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}
