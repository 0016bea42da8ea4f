// Package config loads application configuration from the environment,
// optionally seeded by a .env file and overridden by a YAML config
// file named in CONFIG_FILE.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Backend names accepted in STORAGE_BACKEND.
const (
	BackendPostgres = "postgres"
	BackendRedis    = "redisdoc"
)

// Config holds application configuration
type Config struct {
	StorageBackend  string        `yaml:"storage_backend"`
	DatabaseURL     string        `yaml:"database_url"`
	RedisURL        string        `yaml:"redis_url"`
	ServerPort      string        `yaml:"server_port"`
	FrontendURL     string        `yaml:"frontend_url"`
	OpenAIKey       string        `yaml:"openai_api_key"`
	AIModel         string        `yaml:"ai_model"`
	AIBaseURL       string        `yaml:"ai_base_url"`
	JWTSecret       string        `yaml:"jwt_secret"`
	TokenTTL        time.Duration `yaml:"token_ttl"`
	RateLimit       string        `yaml:"rate_limit"`
	RateLimitOn     bool          `yaml:"rate_limit_enabled"`
	EnableHSTS      bool          `yaml:"enable_hsts"`
	ServerDebugMode bool          `yaml:"server_debug_mode"`
	OTELEnabled     bool          `yaml:"otel_enabled"`
	OTELEndpoint    string        `yaml:"otel_endpoint"`
}

// Load loads configuration. Precedence, lowest to highest: .env file,
// process environment, YAML file named by CONFIG_FILE.
func Load() (*Config, error) {
	// Missing .env is fine; explicit env vars are never overwritten.
	_ = godotenv.Load()

	cfg := &Config{
		StorageBackend:  getEnv("STORAGE_BACKEND", BackendPostgres),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		RedisURL:        getEnv("REDIS_URL", "redis://localhost:6379/0"),
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		FrontendURL:     getEnv("FRONTEND_URL", "http://localhost:3000"),
		OpenAIKey:       getEnv("OPENAI_API_KEY", ""),
		AIModel:         getEnv("AI_MODEL", ""),
		AIBaseURL:       getEnv("AI_BASE_URL", ""),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		TokenTTL:        getEnvDuration("TOKEN_TTL", 30*time.Minute),
		RateLimit:       getEnv("RATE_LIMIT", "5-S"),
		RateLimitOn:     getEnvBool("RATE_LIMIT_ENABLED", true),
		EnableHSTS:      getEnvBool("ENABLE_HSTS", false),
		ServerDebugMode: getEnvBool("SERVER_DEBUG_MODE", false),
		OTELEnabled:     getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) validate() error {
	switch c.StorageBackend {
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	case BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the redisdoc backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q (use %q or %q)", c.StorageBackend, BackendPostgres, BackendRedis)
	}

	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
