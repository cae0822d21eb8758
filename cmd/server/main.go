package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/opal-spaces/opal-backend/internal/config"
	"github.com/opal-spaces/opal-backend/internal/database"
	"github.com/opal-spaces/opal-backend/internal/handlers"
	"github.com/opal-spaces/opal-backend/internal/logging"
	"github.com/opal-spaces/opal-backend/internal/middleware"
	"github.com/opal-spaces/opal-backend/internal/routes"
	"github.com/opal-spaces/opal-backend/internal/services"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	for name, value := range map[string]string{
		"JWT_ACCESS_SECRET":  cfg.JWTAccessSecret,
		"JWT_REFRESH_SECRET": cfg.JWTRefreshSecret,
		"JWT_EMAIL_SECRET":   cfg.JWTEmailSecret,
		"DB_PASSWORD":        cfg.DBPassword,
	} {
		if value == "" {
			slog.Error("required environment variable is missing", "name", name)
			os.Exit(1)
		}
	}

	// Database
	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	if err := database.Migrate(db); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// Persist ERROR+ records alongside stdout
	dbLogHandler := logging.NewDBHandler(db)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		dbLogHandler,
	)))

	cleanupDone := make(chan struct{})
	logging.StartCleanup(db, cfg.LogRetentionDays, cleanupDone)

	// External collaborators
	mailer, err := services.NewSMTPMailer(cfg)
	if err != nil {
		slog.Error("SMTP client setup failed", "error", err)
		os.Exit(1)
	}
	googleVerifier := services.NewGoogleVerifier(cfg.GoogleClientID, cfg.ExternalTimeout)
	captcha := services.NewCaptchaVerifier(cfg.RecaptchaSecret, cfg.ExternalTimeout)
	payments := services.NewPaystackClient(cfg.PaystackSecret, cfg.ExternalTimeout)

	// Services
	tokenService := services.NewTokenService(cfg)
	authService := services.NewAuthService(db, cfg, tokenService, mailer, googleVerifier)
	productService := services.NewProductService(db)
	reviewService := services.NewReviewService(db)
	cartService := services.NewCartService(db)
	orderService := services.NewOrderService(db, payments)
	employeeService := services.NewEmployeeService(db)
	analyticsService := services.NewAnalyticsService(db)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, captcha, cfg)
	productHandler := handlers.NewProductHandler(productService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(orderService)
	employeeHandler := handlers.NewEmployeeHandler(employeeService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	healthHandler := handlers.NewHealthHandler(db)

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.Timeout(cfg.RequestTimeout))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		return c.Next()
	})

	routes.Setup(app, cfg,
		authHandler, productHandler, reviewHandler, cartHandler,
		orderHandler, employeeHandler, analyticsHandler, healthHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(cleanupDone)
	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if err := database.Close(db); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose detail for client errors, never for server errors.
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
