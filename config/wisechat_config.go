package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"wisechat_server/core/service/sentiment"
	"wisechat_server/pkg/apperr"
)

// generateWorkerID creates a unique worker ID using hostname and PID
func generateWorkerID() string {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "worker"
	}
	return fmt.Sprintf("%s-%d", hostname, os.Getpid())
}

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	// Database
	DatabaseURL string
	RedisURL    string

	// JWT
	JWTSecret string

	// OpenAI
	OpenAIAPIKey   string
	OpenAIBaseURL  string
	LLMModel       string
	LLMMaxTokens   int
	LLMTemperature float64
	LLMTimeoutSec  int

	// Classification
	LexiconMatchMode string

	// Cache
	AggregateCacheTTLMin int

	// Worker
	WorkerID     string
	AlertWorkers int

	// CORS
	AllowedOrigins []string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// Database
		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", ""),

		// OpenAI
		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:  getEnv("OPENAI_BASE_URL", ""),
		LLMModel:       getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMMaxTokens:   getEnvInt("LLM_MAX_TOKENS", 512),
		LLMTemperature: getEnvFloat("LLM_TEMPERATURE", 0.4),
		LLMTimeoutSec:  getEnvInt("LLM_TIMEOUT_SEC", 10),

		// Classification
		LexiconMatchMode: getEnv("LEXICON_MATCH_MODE", string(sentiment.MatchSubstring)),

		// Cache
		AggregateCacheTTLMin: getEnvInt("AGGREGATE_CACHE_TTL_MIN", 30),

		// Worker
		WorkerID:     getEnv("WORKER_ID", generateWorkerID()),
		AlertWorkers: getEnvInt("ALERT_WORKERS", 4),

		// CORS
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.LLMTimeoutSec < 1 || c.LLMTimeoutSec > 60 {
		return apperr.ConfigError(fmt.Sprintf("LLM_TIMEOUT_SEC must be between 1 and 60, got %d", c.LLMTimeoutSec))
	}
	if c.LLMTemperature < 0 || c.LLMTemperature > 2 {
		return apperr.ConfigError(fmt.Sprintf("LLM_TEMPERATURE must be between 0 and 2, got %g", c.LLMTemperature))
	}
	if _, err := sentiment.ParseMatchMode(c.LexiconMatchMode); err != nil {
		return apperr.ConfigError(err.Error())
	}
	if c.AlertWorkers < 1 {
		return apperr.ConfigError(fmt.Sprintf("ALERT_WORKERS must be positive, got %d", c.AlertWorkers))
	}
	if c.IsProduction() && c.JWTSecret == "" {
		return apperr.ConfigError("JWT_SECRET is required in production")
	}
	return nil
}

func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeoutSec) * time.Second
}

func (c *Config) AggregateCacheTTL() time.Duration {
	return time.Duration(c.AggregateCacheTTLMin) * time.Minute
}

// MatchMode returns the validated lexicon match mode.
func (c *Config) MatchMode() sentiment.MatchMode {
	mode, err := sentiment.ParseMatchMode(c.LexiconMatchMode)
	if err != nil {
		return sentiment.MatchSubstring
	}
	return mode
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return defaultValue
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
