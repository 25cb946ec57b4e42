package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/moredevelopers26/chattest/internal/store"
)

// Config holds all configuration for the application.
type Config struct {
	Port string
	Env  string

	// Storage
	StoreBackend string // memory, sqlite, bolt, redis, postgres
	SQLitePath   string
	BoltPath     string
	DatabaseURL  string
	RedisURL     string
	StoreQuota   int // bytes; <= 0 disables the budget

	// Assistant
	GeminiAPIKey string
	GeminiModel  string

	// Timers
	TypingIdle time.Duration
	EchoDelay  time.Duration

	// Rate limiting
	RateLimitPerMinute int
	RateLimitWhitelist []string // IPs or CIDRs exempt from rate limiting
	AutoBlockEnabled   bool     // Enable auto-blocking after repeated violations
}

// Load reads configuration from environment variables.
// In development, it loads from .env file if present.
// In production, it panics when the selected backend has no locator.
func Load() *Config {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		StoreBackend:       getEnv("STORE_BACKEND", "memory"),
		SQLitePath:         getEnv("SQLITE_PATH", "./data/chat.db"),
		BoltPath:           getEnv("BOLT_PATH", "./data/chat.bolt"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           os.Getenv("REDIS_URL"),
		StoreQuota:         getEnvInt("STORE_QUOTA_BYTES", store.DefaultQuota),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-3-flash-preview"),
		TypingIdle:         time.Duration(getEnvInt("TYPING_IDLE_MS", 1500)) * time.Millisecond,
		EchoDelay:          time.Duration(getEnvInt("ECHO_DELAY_MS", 600)) * time.Millisecond,
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		AutoBlockEnabled:   getEnv("AUTO_BLOCK_ENABLED", "false") == "true",
	}

	// Parse whitelist (comma-separated IPs or CIDRs)
	if whitelist := os.Getenv("RATE_LIMIT_WHITELIST"); whitelist != "" {
		for _, entry := range strings.Split(whitelist, ",") {
			entry = strings.TrimSpace(entry)
			if entry != "" {
				cfg.RateLimitWhitelist = append(cfg.RateLimitWhitelist, entry)
			}
		}
	}

	// In production, require the locator of the chosen backend
	if cfg.Env == "production" {
		switch cfg.StoreBackend {
		case "postgres":
			if cfg.DatabaseURL == "" {
				panic("DATABASE_URL is required in production")
			}
		case "redis":
			if cfg.RedisURL == "" {
				panic("REDIS_URL is required in production")
			}
		}
	}

	return cfg
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// StoreOptions returns the backend selection for store.Open.
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Backend:     c.StoreBackend,
		SQLitePath:  c.SQLitePath,
		BoltPath:    c.BoltPath,
		DatabaseURL: c.DatabaseURL,
		RedisURL:    c.RedisURL,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
