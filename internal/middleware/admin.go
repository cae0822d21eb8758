package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/opal-spaces/opal-backend/internal/dto"
	"github.com/opal-spaces/opal-backend/internal/models"
)

// RequireAdmin allows ADMIN only. It must run after Protected.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if UserRole(c) != models.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Forbidden: Admin access required",
			})
		}
		return c.Next()
	}
}

// RequireStaff allows ADMIN or EMPLOYEE, except that EMPLOYEE is denied on
// the user-management sub-routes, which stay admin-only.
func RequireStaff(userRoutePrefix string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := UserRole(c)
		if role != models.RoleAdmin && role != models.RoleEmployee {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Forbidden: Admin or Employee access required",
			})
		}

		if role == models.RoleEmployee && strings.HasPrefix(c.Path(), userRoutePrefix) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Forbidden: Only Admins can access the users route",
			})
		}

		return c.Next()
	}
}
