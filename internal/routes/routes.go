package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/opal-spaces/opal-backend/internal/config"
	"github.com/opal-spaces/opal-backend/internal/handlers"
	"github.com/opal-spaces/opal-backend/internal/middleware"
)

// EMPLOYEE-role staff are denied on everything under this prefix; those
// routes stay admin-only.
const userManagementPrefix = "/api/employees/users"

func Setup(
	app *fiber.App,
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	productHandler *handlers.ProductHandler,
	reviewHandler *handlers.ReviewHandler,
	cartHandler *handlers.CartHandler,
	orderHandler *handlers.OrderHandler,
	employeeHandler *handlers.EmployeeHandler,
	analyticsHandler *handlers.AnalyticsHandler,
	healthHandler *handlers.HealthHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth is public, with a stricter limit: 10 req per 5 min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        5 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/google", authHandler.GoogleLogin)
	auth.Get("/verify-email/:token", authHandler.VerifyEmail)
	auth.Post("/refresh", authHandler.Refresh)

	// Logout needs the caller's identity, so it sits behind the gate.
	api.Post("/auth/logout", middleware.Protected(cfg), authHandler.Logout)

	protected := middleware.Protected(cfg)
	staffOnly := middleware.RequireStaff(userManagementPrefix)

	// Catalog reads are public, writes are staff-only
	api.Get("/products", productHandler.List)
	api.Get("/products/featured", productHandler.Featured)
	api.Get("/products/:id", productHandler.Get)
	api.Post("/products", protected, staffOnly, productHandler.Create)
	api.Put("/products/:id", protected, staffOnly, productHandler.Update)
	api.Delete("/products/:id", protected, staffOnly, productHandler.Delete)

	// Reviews
	api.Get("/products/:id/reviews", reviewHandler.ListByProduct)
	api.Post("/products/:id/reviews", reviewHandler.Add)

	// Cart is always scoped to the authenticated user
	cart := api.Group("/cart", protected)
	cart.Get("/", cartHandler.Get)
	cart.Put("/", cartHandler.Update)
	cart.Post("/merge", cartHandler.Merge)
	cart.Delete("/", cartHandler.Clear)

	// Orders stay public so guests can check out
	api.Post("/orders", orderHandler.Create)

	// Employee admin panel. The staff gate denies EMPLOYEE on the
	// /users sub-routes via the prefix exception.
	employees := api.Group("/employees", protected, staffOnly)
	employees.Get("/", employeeHandler.List)
	employees.Get("/users", employeeHandler.FindUserByEmail)
	employees.Post("/users/:id/promote", employeeHandler.Promote)
	employees.Post("/users/:id/demote", employeeHandler.Demote)
	employees.Delete("/users/:id", employeeHandler.Delete)

	// Analytics dashboard
	api.Get("/analytics/summary", protected, staffOnly, analyticsHandler.Summary)
}
