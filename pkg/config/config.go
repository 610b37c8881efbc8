package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/propdocs/propdocs/pkg/observability"
	"github.com/propdocs/propdocs/pkg/ratelimit"
	"github.com/propdocs/propdocs/pkg/storage"
	"github.com/propdocs/propdocs/pkg/subscriptions"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	Auth          AuthConfig
	Stripe        StripeConfig
	Storage       storage.Config
	Trials        subscriptions.TrialLimits
	RateLimits    RateLimitConfig
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// DatabaseConfig holds PostgreSQL settings
type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
}

// RedisConfig holds Redis settings. An empty address disables the
// distributed rate limiter and the process falls back to the in-memory one.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AuthConfig holds token settings
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// StripeConfig holds payment provider settings
type StripeConfig struct {
	SecretKey string
	Timeout   time.Duration
}

// RateLimitConfig holds the per-resource-class limits
type RateLimitConfig struct {
	PublicDocuments ratelimit.Policy
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("PROPDOCS_HOST", "0.0.0.0"),
			Port:            getEnv("PROPDOCS_PORT", "8080"),
			ReadTimeout:     getEnvDuration("PROPDOCS_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("PROPDOCS_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("PROPDOCS_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("PROPDOCS_SHUTDOWN_TIMEOUT", 30*time.Second),
			HealthPort:      getEnv("PROPDOCS_HEALTH_PORT", "9090"),
		},
		Database: DatabaseConfig{
			URL:          getEnv("PROPDOCS_DATABASE_URL", "postgres://localhost/propdocs?sslmode=disable"),
			MaxOpenConns: getEnvInt("PROPDOCS_DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns: getEnvInt("PROPDOCS_DB_MAX_IDLE_CONNS", 5),
		},
		Redis: RedisConfig{
			Addr:     getEnv("PROPDOCS_REDIS_ADDR", ""),
			Password: getEnv("PROPDOCS_REDIS_PASSWORD", ""),
			DB:       getEnvInt("PROPDOCS_REDIS_DB", 0),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("PROPDOCS_JWT_SECRET", ""),
			TokenTTL:  getEnvDuration("PROPDOCS_TOKEN_TTL", 24*time.Hour),
		},
		Stripe: StripeConfig{
			SecretKey: getEnv("PROPDOCS_STRIPE_SECRET_KEY", ""),
			Timeout:   getEnvDuration("PROPDOCS_STRIPE_TIMEOUT", 10*time.Second),
		},
		Storage: storage.Config{
			Bucket:       getEnv("PROPDOCS_S3_BUCKET", "propdocs-documents"),
			Region:       getEnv("PROPDOCS_S3_REGION", "us-east-1"),
			Endpoint:     getEnv("PROPDOCS_S3_ENDPOINT", ""),
			AccessKey:    getEnv("PROPDOCS_S3_ACCESS_KEY", ""),
			SecretKey:    getEnv("PROPDOCS_S3_SECRET_KEY", ""),
			UsePathStyle: getEnvBool("PROPDOCS_S3_PATH_STYLE", false),
			PresignTTL:   getEnvDuration("PROPDOCS_S3_PRESIGN_TTL", 15*time.Minute),
		},
		Trials: subscriptions.TrialLimits{
			SelfServiceMinDays: getEnvInt("PROPDOCS_TRIAL_SELF_MIN_DAYS", 1),
			SelfServiceMaxDays: getEnvInt("PROPDOCS_TRIAL_SELF_MAX_DAYS", 14),
			AdminMinDays:       getEnvInt("PROPDOCS_TRIAL_ADMIN_MIN_DAYS", 1),
			AdminMaxDays:       getEnvInt("PROPDOCS_TRIAL_ADMIN_MAX_DAYS", 180),
		},
		RateLimits: RateLimitConfig{
			PublicDocuments: ratelimit.Policy{
				MaxRequests: getEnvInt("PROPDOCS_PUBLIC_DOC_MAX_REQUESTS", 20),
				Window:      getEnvDuration("PROPDOCS_PUBLIC_DOC_WINDOW", 60*time.Second),
			},
		},
		Observability: ObservabilityConfig{
			LogLevel:       observability.ParseLogLevel(getEnv("PROPDOCS_LOG_LEVEL", "info")),
			MetricsEnabled: getEnvBool("PROPDOCS_METRICS_ENABLED", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("database URL is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("PROPDOCS_JWT_SECRET is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must differ")
	}
	if c.Trials.SelfServiceMinDays < 1 || c.Trials.SelfServiceMaxDays < c.Trials.SelfServiceMinDays {
		return fmt.Errorf("invalid self-service trial bounds: %d-%d",
			c.Trials.SelfServiceMinDays, c.Trials.SelfServiceMaxDays)
	}
	if c.Trials.AdminMinDays < 1 || c.Trials.AdminMaxDays < c.Trials.AdminMinDays {
		return fmt.Errorf("invalid admin trial bounds: %d-%d",
			c.Trials.AdminMinDays, c.Trials.AdminMaxDays)
	}
	if c.RateLimits.PublicDocuments.MaxRequests < 1 {
		return fmt.Errorf("public document rate limit must allow at least one request")
	}
	if c.RateLimits.PublicDocuments.Window <= 0 {
		return fmt.Errorf("public document rate limit window must be positive")
	}
	return nil
}

// getEnv returns an environment variable or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
