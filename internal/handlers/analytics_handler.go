package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/opal-spaces/opal-backend/internal/services"
)

type AnalyticsHandler struct {
	analytics *services.AnalyticsService
}

func NewAnalyticsHandler(analytics *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

func (h *AnalyticsHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.analytics.Summary(c.UserContext())
	if err != nil {
		return serverError(c, "AnalyticsSummary", err)
	}
	return c.JSON(summary)
}
