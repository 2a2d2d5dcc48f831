// Package config handles application configuration.
//
// Go Pattern: Configuration via environment variables with sensible defaults.
// In Go, we typically use structs to hold configuration, and a function to
// load values from environment variables. Everything stays explicit — no
// global config object, the struct is passed to whoever needs it.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
// Go Pattern: We use exported (capitalized) fields so other packages can
// read them. The struct is built once in main and handed down.
type Config struct {
	// Server settings
	Port    string
	GinMode string // "debug", "release", or "test"

	// OpenRouter settings for the extraction oracle
	OpenRouterAPIKey  string
	OpenRouterModel   string // Model used to normalize billing rows
	OpenRouterBaseURL string // Override for tests / self-hosted gateways

	// Job registry settings
	JobRetentionMinutes int // How long finished (or stuck) jobs stay queryable

	// Pipeline settings
	MaxConcurrentJobs int // Extraction pipelines allowed to run at once
	MaxUploadMB       int // Upload size cap enforced before reading the body

	// Rate limiting (per client IP, POST /extract only)
	RateLimitRPS   int
	RateLimitBurst int

	// CORS
	AllowedOrigins []string
}

// Load reads configuration from environment variables with sensible defaults.
//
// Go Pattern: Functions that can fail return (value, error). This is Go's
// alternative to exceptions — the caller MUST handle the error. You'll see
// this pattern everywhere in Go: `result, err := doSomething()`.
func Load() (*Config, error) {
	_ = godotenv.Load() // Ignore error if .env doesn't exist

	cfg := &Config{
		// Server defaults
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		// OpenRouter — the key is required in production, optional in dev
		// so the service can still boot for route-level work.
		OpenRouterAPIKey:  getEnv("OPENROUTER_API_KEY", ""),
		OpenRouterModel:   getEnv("OPENROUTER_MODEL", "openai/gpt-4o-mini"),
		OpenRouterBaseURL: getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),

		// Jobs are queryable for 30 minutes after creation, then evicted.
		JobRetentionMinutes: getEnvInt("JOB_RETENTION_MINUTES", 30),

		// Pipeline defaults
		MaxConcurrentJobs: getEnvInt("MAX_CONCURRENT_JOBS", 4),
		MaxUploadMB:       getEnvInt("MAX_UPLOAD_MB", 25),

		// Rate limiting defaults
		RateLimitRPS:   getEnvInt("RATE_LIMIT_RPS", 2),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 5),

		// CORS — in production, set this to your frontend URL
		AllowedOrigins: []string{
			getEnv("CORS_ORIGIN", "http://localhost:5173"), // Vite dev server default
		},
	}

	// Security: the oracle key MUST be set in production mode. In release
	// mode we refuse to start without it — every upload would fail anyway.
	if cfg.GinMode == "release" && cfg.OpenRouterAPIKey == "" {
		return nil, fmt.Errorf("OPENROUTER_API_KEY must be set in production; extraction cannot run without it")
	}

	if cfg.JobRetentionMinutes <= 0 {
		return nil, fmt.Errorf("JOB_RETENTION_MINUTES must be positive, got %d", cfg.JobRetentionMinutes)
	}
	if cfg.MaxConcurrentJobs <= 0 {
		return nil, fmt.Errorf("MAX_CONCURRENT_JOBS must be positive, got %d", cfg.MaxConcurrentJobs)
	}
	// A zero upload cap or an empty token bucket would turn away every
	// single upload — refuse to boot in that state.
	if cfg.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", cfg.MaxUploadMB)
	}
	if cfg.RateLimitRPS <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_RPS must be positive, got %d", cfg.RateLimitRPS)
	}
	if cfg.RateLimitBurst <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_BURST must be positive, got %d", cfg.RateLimitBurst)
	}

	return cfg, nil
}

// getEnv reads an environment variable with a fallback default.
// Go Pattern: Small helper functions are idiomatic. Go favors simple,
// composable functions over complex frameworks.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getEnvInt reads an integer environment variable with a fallback.
func getEnvInt(key string, fallback int) int {
	str := getEnv(key, "")
	if str == "" {
		return fallback
	}
	// strconv.Atoi converts a string to an int — like parseInt() in JavaScript
	val, err := strconv.Atoi(str)
	if err != nil {
		return fallback
	}
	return val
}
