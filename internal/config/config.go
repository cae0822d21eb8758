package config

import (
	"os"
	"time"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT: one secret per token kind so a leak of one does not
	// compromise the others
	JWTAccessSecret  string
	JWTRefreshSecret string
	JWTEmailSecret   string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration
	JWTEmailExpiry   time.Duration

	// SMTP
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	EmailFrom    string

	// External collaborators
	GoogleClientID   string
	RecaptchaSecret  string
	PaystackSecret   string
	ExternalTimeout  time.Duration
	RequestTimeout   time.Duration
	LogRetentionDays int

	// Server
	AppEnv      string
	Port        string
	CORSOrigins string
	FrontendURL string
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "opal_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTAccessSecret:  getEnv("JWT_ACCESS_SECRET", ""),
		JWTRefreshSecret: getEnv("JWT_REFRESH_SECRET", ""),
		JWTEmailSecret:   getEnv("JWT_EMAIL_SECRET", ""),
		JWTAccessExpiry:  parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m"), 15*time.Minute),
		JWTRefreshExpiry: parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h"), 168*time.Hour),
		JWTEmailExpiry:   parseDuration(getEnv("JWT_EMAIL_EXPIRY", "24h"), 24*time.Hour),

		SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		EmailFrom:    getEnv("EMAIL_FROM", "Opal Spaces <no-reply@opalspaces.com>"),

		GoogleClientID:   getEnv("GOOGLE_CLIENT_ID", ""),
		RecaptchaSecret:  getEnv("RECAPTCHA_SECRET", ""),
		PaystackSecret:   getEnv("PAYSTACK_SECRET_KEY", ""),
		ExternalTimeout:  parseDuration(getEnv("EXTERNAL_TIMEOUT", "10s"), 10*time.Second),
		RequestTimeout:   parseDuration(getEnv("REQUEST_TIMEOUT", "30s"), 30*time.Second),
		LogRetentionDays: 30,

		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "5000"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// Production reports whether the server runs with production hardening
// (secure cookies).
func (c *Config) Production() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
