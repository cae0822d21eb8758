package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/opal-spaces/opal-backend/internal/dto"
	"github.com/opal-spaces/opal-backend/internal/services"
)

type EmployeeHandler struct {
	employees *services.EmployeeService
}

func NewEmployeeHandler(employees *services.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employees: employees}
}

func (h *EmployeeHandler) FindUserByEmail(c *fiber.Ctx) error {
	email := c.Query("email")
	if email == "" {
		return badRequest(c, "Email query parameter is required")
	}

	user, err := h.employees.FindUserByEmail(c.UserContext(), email)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "User not found",
			})
		}
		return serverError(c, "FindUserByEmail", err)
	}
	return c.JSON(fiber.Map{"user": userResponse(user)})
}

func (h *EmployeeHandler) Promote(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid user id")
	}

	user, err := h.employees.Promote(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "User not found",
			})
		}
		return serverError(c, "PromoteUser", err)
	}
	return c.JSON(fiber.Map{"message": "User promoted to EMPLOYEE", "user": userResponse(user)})
}

func (h *EmployeeHandler) Demote(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid user id")
	}

	user, err := h.employees.Demote(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "User not found",
			})
		}
		return serverError(c, "DemoteUser", err)
	}
	return c.JSON(fiber.Map{"message": "User demoted to USER", "user": userResponse(user)})
}

func (h *EmployeeHandler) List(c *fiber.Ctx) error {
	users, err := h.employees.ListEmployees(c.UserContext())
	if err != nil {
		return serverError(c, "ListEmployees", err)
	}

	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, userResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"users": out})
}

func (h *EmployeeHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid user id")
	}

	if err := h.employees.DeleteUser(c.UserContext(), id); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "User not found",
			})
		}
		return serverError(c, "DeleteUser", err)
	}
	return c.JSON(dto.MessageResponse{Message: "User deleted"})
}
