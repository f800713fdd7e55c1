package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string
	BaseURL    string

	// Database
	DatabaseURL string

	// OIDC
	OIDCIssuer       string
	OIDCClientID     string
	OIDCClientSecret string
	OIDCRedirectURL  string

	// Session
	SessionSecret string // Used for signing cookies (min 32 chars)

	// CORS
	CORSOrigins string // Comma-separated allowed origins

	// News provider
	NewsAPIKey          string
	NewsAPIBaseURL      string
	NewsClientTimeout   time.Duration
	NewsPageSize        int
	NewsDefaultLanguage string // applied to articles the provider returns without one

	// Background refresh
	BatchRefreshInterval time.Duration
	BatchRefreshWorkers  int

	// Quota defaults for new user profiles
	DefaultKeywordQuota int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Env:              getEnv("ENV", "development"),
		ServerAddr:       getEnv("SERVER_ADDR", ":3000"),
		BaseURL:          getEnv("BASE_URL", "http://localhost:3000"),
		DatabaseURL:      getEnv("DATABASE_URL", "postgres://localhost:5432/newstrack?sslmode=disable"),
		OIDCIssuer:       getEnv("OIDC_ISSUER", ""),
		OIDCClientID:     getEnv("OIDC_CLIENT_ID", ""),
		OIDCClientSecret: getEnv("OIDC_CLIENT_SECRET", ""),
		OIDCRedirectURL:  getEnv("OIDC_REDIRECT_URL", "http://localhost:3000/auth/callback"),
		SessionSecret:    getEnv("SESSION_SECRET", "change-me-in-production-min-32-chars"),
		CORSOrigins:      getEnv("CORS_ORIGINS", ""),

		NewsAPIKey:          getEnv("NEWS_API_KEY", ""),
		NewsAPIBaseURL:      getEnv("NEWS_API_BASE_URL", "https://newsapi.org"),
		NewsClientTimeout:   getEnvDuration("NEWS_CLIENT_TIMEOUT", 10*time.Second),
		NewsPageSize:        getEnvInt("NEWS_PAGE_SIZE", 100),
		NewsDefaultLanguage: getEnv("NEWS_DEFAULT_LANGUAGE", "en"),

		BatchRefreshInterval: getEnvDuration("BATCH_REFRESH_INTERVAL", time.Hour),
		BatchRefreshWorkers:  getEnvInt("BATCH_REFRESH_WORKERS", 4),

		DefaultKeywordQuota: getEnvInt("DEFAULT_KEYWORD_QUOTA", 10),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid value for %s: %q, using default %d", key, value, fallback)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Invalid value for %s: %q, using default %v", key, value, fallback)
		return fallback
	}
	return d
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}
