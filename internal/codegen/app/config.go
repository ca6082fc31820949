package app

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env       string // Environment (dev, staging, prod) (default: dev)
	LogLevel  string // Log level (debug, info, warn, error) (default: info)
	LogFormat string // Log format (json, text) (default: json)
	Port      int    // HTTP server port (default: 8080)

	StoreDriver  string // Storage driver (sqlite, memory) (default: sqlite)
	DatabaseFile string // Path to SQLite database file (default: ./codegen.db)

	SessionKeyFile string // Path to the Ed25519 session signing key (default: ./session.key)
	SessionIssuer  string // Issuer claim stamped into session tokens

	GeminiAPIKey string // Required: upstream generation API key

	GoogleClientID     string // Optional: enables federated login when set with the secret
	GoogleClientSecret string
	BaseURL            string // Public base URL, used to build the federation callback

	QuotaCeiling         int           // Per-account generation allowance (default: 50)
	QuotaResetInterval   time.Duration // Fixed-window reset cadence (default: 1m)
	ShareTTL             time.Duration // Shared-artifact retention (default: 720h)
	HousekeepingInterval time.Duration // Expiry sweep cadence (default: 1h)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	// A local .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg := Config{
		Env:       getEnvOrDefault("ENV", "dev"),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),
		Port:      getEnvIntOrDefault("PORT", 8080),

		StoreDriver:  getEnvOrDefault("STORE_DRIVER", "sqlite"),
		DatabaseFile: getEnvOrDefault("DATABASE_FILE", "codegen.db"),

		SessionKeyFile: getEnvOrDefault("SESSION_KEY_FILE", "session.key"),
		SessionIssuer:  getEnvOrDefault("SESSION_ISSUER", "web-code-generator"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		BaseURL:            getEnvOrDefault("BASE_URL", "http://localhost:8080"),

		QuotaCeiling:         getEnvIntOrDefault("QUOTA_CEILING", 50),
		QuotaResetInterval:   getEnvDurationOrDefault("QUOTA_RESET_INTERVAL", time.Minute),
		ShareTTL:             getEnvDurationOrDefault("SHARE_TTL", 30*24*time.Hour),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
