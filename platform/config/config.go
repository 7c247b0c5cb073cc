// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
}

// TallyConfig provides shared-secret settings for the Tally webhook endpoints.
// An empty secret disables authentication for that endpoint.
type TallyConfig interface {
	GetTallyWebhookSecret() string
	GetTallyCWebhookSecret() string
}

// SolapiConfig provides settings for the Solapi SMS/LMS client.
type SolapiConfig interface {
	GetSolapiAPIKey() string
	GetSolapiAPISecret() string
	GetSolapiSenderPhone() string
	GetSolapiBaseURL() string
}

// RedisConfig provides settings for the Redis cache.
type RedisConfig interface {
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	IsRedisEnabled() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                 string
	HTTPAddr            string
	DatabaseURL         string
	CORSAllowAll        bool
	CORSOrigins         []string
	TallyWebhookSecret  string
	TallyCWebhookSecret string
	SolapiAPIKey        string
	SolapiAPISecret     string
	SolapiSenderPhone   string
	SolapiBaseURL       string
	RedisAddr           string
	RedisPassword       string
	RedisDB             int
	DashboardCacheTTL   time.Duration
}

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }

// TallyConfig implementation
func (c *Config) GetTallyWebhookSecret() string  { return c.TallyWebhookSecret }
func (c *Config) GetTallyCWebhookSecret() string { return c.TallyCWebhookSecret }

// SolapiConfig implementation
func (c *Config) GetSolapiAPIKey() string      { return c.SolapiAPIKey }
func (c *Config) GetSolapiAPISecret() string   { return c.SolapiAPISecret }
func (c *Config) GetSolapiSenderPhone() string { return c.SolapiSenderPhone }
func (c *Config) GetSolapiBaseURL() string     { return c.SolapiBaseURL }

// RedisConfig implementation
func (c *Config) GetRedisAddr() string     { return c.RedisAddr }
func (c *Config) GetRedisPassword() string { return c.RedisPassword }
func (c *Config) GetRedisDB() int          { return c.RedisDB }
func (c *Config) IsRedisEnabled() bool     { return c.RedisAddr != "" }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                 getEnv("APP_ENV", "development"),
		HTTPAddr:            getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		CORSAllowAll:        corsAllowAll,
		CORSOrigins:         corsOrigins,
		TallyWebhookSecret:  getEnv("TALLY_WEBHOOK_SECRET", ""),
		TallyCWebhookSecret: getEnv("TALLY_C_WEBHOOK_SECRET", ""),
		SolapiAPIKey:        getEnv("SOLAPI_API_KEY", ""),
		SolapiAPISecret:     getEnv("SOLAPI_API_SECRET", ""),
		SolapiSenderPhone:   getEnv("SOLAPI_SENDER_PHONE", ""),
		SolapiBaseURL:       getEnv("SOLAPI_BASE_URL", "https://api.solapi.com"),
		RedisAddr:           getEnv("REDIS_ADDR", ""),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
		RedisDB:             mustInt(getEnv("REDIS_DB", "0")),
		DashboardCacheTTL:   mustDuration(getEnv("DASHBOARD_CACHE_TTL", "5m")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
