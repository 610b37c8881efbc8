package config

import (
	"testing"
	"time"

	"github.com/propdocs/propdocs/pkg/ratelimit"
	"github.com/propdocs/propdocs/pkg/subscriptions"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("TEST_VAR", "custom")

	if got := getEnv("TEST_VAR", "default"); got != "custom" {
		t.Errorf("expected custom, got %s", got)
	}
	if got := getEnv("TEST_VAR_NOT_SET", "default"); got != "default" {
		t.Errorf("expected default, got %s", got)
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_INT_BAD", "forty-two")

	if got := getEnvInt("TEST_INT", 7); got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
	if got := getEnvInt("TEST_INT_BAD", 7); got != 7 {
		t.Errorf("malformed value should fall back, got %d", got)
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("TEST_DUR", "90s")

	if got := getEnvDuration("TEST_DUR", time.Minute); got != 90*time.Second {
		t.Errorf("expected 90s, got %v", got)
	}
	if got := getEnvDuration("TEST_DUR_NOT_SET", time.Minute); got != time.Minute {
		t.Errorf("expected fallback, got %v", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("TEST_BOOL_TRUE", "TRUE")
	t.Setenv("TEST_BOOL_ONE", "1")
	t.Setenv("TEST_BOOL_FALSE", "no")

	if !getEnvBool("TEST_BOOL_TRUE", false) || !getEnvBool("TEST_BOOL_ONE", false) {
		t.Error("expected true")
	}
	if getEnvBool("TEST_BOOL_FALSE", true) {
		t.Error("expected false")
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("PROPDOCS_JWT_SECRET", "secret")
	t.Setenv("PROPDOCS_TRIAL_SELF_MAX_DAYS", "10")
	t.Setenv("PROPDOCS_PUBLIC_DOC_MAX_REQUESTS", "50")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Trials.SelfServiceMaxDays != 10 {
		t.Errorf("expected trial override, got %d", cfg.Trials.SelfServiceMaxDays)
	}
	if cfg.RateLimits.PublicDocuments.MaxRequests != 50 {
		t.Errorf("expected rate limit override, got %d", cfg.RateLimits.PublicDocuments.MaxRequests)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port, got %s", cfg.Server.Port)
	}
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	t.Setenv("PROPDOCS_JWT_SECRET", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected validation error without JWT secret")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: "8080", HealthPort: "9090"},
			Database: DatabaseConfig{URL: "postgres://localhost/propdocs"},
			Auth:     AuthConfig{JWTSecret: "secret"},
			Trials: subscriptions.TrialLimits{
				SelfServiceMinDays: 1, SelfServiceMaxDays: 14,
				AdminMinDays: 1, AdminMaxDays: 180,
			},
			RateLimits: RateLimitConfig{
				PublicDocuments: ratelimit.Policy{MaxRequests: 20, Window: time.Minute},
			},
		}
	}

	if err := base().Validate(); err != nil {
		t.Fatalf("valid config should pass: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing database", func(c *Config) { c.Database.URL = "" }},
		{"port collision", func(c *Config) { c.Server.HealthPort = "8080" }},
		{"inverted trial bounds", func(c *Config) { c.Trials.SelfServiceMaxDays = 0 }},
		{"zero rate limit", func(c *Config) { c.RateLimits.PublicDocuments.MaxRequests = 0 }},
		{"zero window", func(c *Config) { c.RateLimits.PublicDocuments.Window = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
