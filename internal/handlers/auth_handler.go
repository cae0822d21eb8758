package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/opal-spaces/opal-backend/internal/config"
	"github.com/opal-spaces/opal-backend/internal/dto"
	"github.com/opal-spaces/opal-backend/internal/middleware"
	"github.com/opal-spaces/opal-backend/internal/models"
	"github.com/opal-spaces/opal-backend/internal/services"
)

const refreshCookie = "refreshToken"

type AuthHandler struct {
	authService *services.AuthService
	captcha     *services.CaptchaVerifier
	cfg         *config.Config
	validate    *validator.Validate
}

func NewAuthHandler(authService *services.AuthService, captcha *services.CaptchaVerifier, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		captcha:     captcha,
		cfg:         cfg,
		validate:    validator.New(),
	}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return badRequest(c, "Please fill in all fields")
	}
	if !h.captcha.Verify(c.UserContext(), req.CaptchaToken) {
		return badRequest(c, "CAPTCHA verification failed")
	}

	if err := h.authService.Register(c.UserContext(), &req); err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: "User already exists with this email",
			})
		}
		return serverError(c, "Register", err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.MessageResponse{
		Message: "User registered successfully. Please verify your email.",
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return badRequest(c, "Please fill in all fields")
	}
	if !h.captcha.Verify(c.UserContext(), req.CaptchaToken) {
		return badRequest(c, "CAPTCHA verification failed")
	}

	session, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "User not found",
			})
		case errors.Is(err, services.ErrNotVerified):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Please verify your email before logging in",
			})
		case errors.Is(err, services.ErrInvalidCredentials):
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid email or password",
			})
		default:
			return serverError(c, "Login", err)
		}
	}

	h.setRefreshCookie(c, session.RefreshToken)
	return c.JSON(dto.AuthResponse{
		Message:     "Login successful",
		AccessToken: session.AccessToken,
		User:        userResponse(session.User),
	})
}

func (h *AuthHandler) GoogleLogin(c *fiber.Ctx) error {
	var req dto.GoogleLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return badRequest(c, "Credential is required")
	}
	if !h.captcha.Verify(c.UserContext(), req.CaptchaToken) {
		return badRequest(c, "CAPTCHA verification failed")
	}

	session, err := h.authService.GoogleLogin(c.UserContext(), req.Credential)
	if err != nil {
		var conflict *services.ProviderConflictError
		switch {
		case errors.Is(err, services.ErrAssertionInvalid):
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid Google credential",
			})
		case errors.As(err, &conflict):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: conflict.Error(),
			})
		default:
			return serverError(c, "GoogleLogin", err)
		}
	}

	h.setRefreshCookie(c, session.RefreshToken)
	return c.JSON(dto.AuthResponse{
		Message:     "Login successful",
		AccessToken: session.AccessToken,
		User:        userResponse(session.User),
	})
}

func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	token := c.Params("token")

	if err := h.authService.VerifyEmail(c.UserContext(), token); err != nil {
		switch {
		case errors.Is(err, services.ErrTokenInvalid), errors.Is(err, services.ErrTokenExpired):
			return badRequest(c, "Invalid or expired verification link")
		case errors.Is(err, services.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "User not found",
			})
		case errors.Is(err, services.ErrAlreadyVerified):
			return badRequest(c, "Email already verified")
		default:
			return serverError(c, "VerifyEmail", err)
		}
	}

	return c.JSON(dto.MessageResponse{Message: "Email verified successfully"})
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	token := c.Cookies(refreshCookie)
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "No refresh token provided",
		})
	}

	access, err := h.authService.Refresh(c.UserContext(), token)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTokenInvalid),
			errors.Is(err, services.ErrTokenExpired),
			errors.Is(err, services.ErrRefreshMismatch):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid refresh token",
			})
		default:
			return serverError(c, "Refresh", err)
		}
	}

	return c.JSON(dto.RefreshResponse{AccessToken: access})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	if err := h.authService.Logout(c.UserContext(), userID); err != nil {
		return serverError(c, "Logout", err)
	}

	h.clearRefreshCookie(c)
	return c.JSON(dto.MessageResponse{Message: "Logged out successfully"})
}

func (h *AuthHandler) setRefreshCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cfg.JWTRefreshExpiry.Seconds()),
		HTTPOnly: true,
		Secure:   h.cfg.Production(),
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   h.cfg.Production(),
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

func userResponse(u *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role,
	}
}
