// Package config loads application configuration from the environment,
// reading a .env file first when one is present.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort string

	// StorageBackend selects the adapter family: "sql" or "local"
	StorageBackend string

	// SQL backend settings
	DatabaseType   string // sqlite, postgres or mysql
	DatabaseURL    string // DSN for postgres and mysql
	DatabasePath   string // file path for sqlite
	MigrationsPath string

	// Local backend settings
	DataDir string

	JWTSecret string
	TokenTTL  time.Duration

	RateLimitRequests int
	RateLimitWindow   time.Duration

	CORSOrigin string
	AppBaseURL string

	// Amazon SES, disabled when SESFromEmail is empty
	AWSRegion    string
	SESFromEmail string
	SESFromName  string

	// OAuth, disabled per provider when its client id is empty
	GoogleClientID       string
	GoogleClientSecret   string
	FacebookClientID     string
	FacebookClientSecret string
	OAuthBaseURL         string
}

// Load reads configuration from the environment with sensible defaults
func Load() *Config {
	// A missing .env file is fine; the environment alone is enough
	_ = godotenv.Load()

	return &Config{
		ServerPort:     getEnv("PORT", "8080"),
		StorageBackend: getEnv("STORAGE_BACKEND", "sql"),

		DatabaseType:   getEnv("DB_TYPE", "sqlite"),
		DatabaseURL:    getEnv("DB_URL", ""),
		DatabasePath:   getEnv("DB_PATH", "./cogniplay.db"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),

		DataDir: getEnv("DATA_DIR", "./data"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		TokenTTL:  getDuration("TOKEN_TTL", 24*time.Hour),

		RateLimitRequests: getInt("RATE_LIMIT_REQUESTS", 20),
		RateLimitWindow:   getDuration("RATE_LIMIT_WINDOW", time.Minute),

		CORSOrigin: getEnv("CORS_ORIGIN", ""),
		AppBaseURL: getEnv("APP_BASE_URL", "http://localhost:5173"),

		AWSRegion:    getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail: getEnv("SES_FROM_EMAIL", ""),
		SESFromName:  getEnv("SES_FROM_NAME", "CogniPlay"),

		GoogleClientID:       getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:   getEnv("GOOGLE_CLIENT_SECRET", ""),
		FacebookClientID:     getEnv("FACEBOOK_CLIENT_ID", ""),
		FacebookClientSecret: getEnv("FACEBOOK_CLIENT_SECRET", ""),
		OAuthBaseURL:         getEnv("OAUTH_BASE_URL", ""),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
