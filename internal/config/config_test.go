package config

import (
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	cfg := Load()

	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Port)
	}
	if !strings.Contains(cfg.DatabaseURL, "brgy_assets") {
		t.Fatalf("unexpected default DSN %q", cfg.DatabaseURL)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("expected 2 default origins, got %v", cfg.CORSOrigins)
	}
	if cfg.JWTExpiry != 24*time.Hour {
		t.Fatalf("expected 24h expiry, got %v", cfg.JWTExpiry)
	}
	if cfg.RedisAddr != "" || len(cfg.KafkaBrokers) != 0 {
		t.Fatal("optional integrations should default to off")
	}
	if !cfg.EnableMetrics {
		t.Fatal("metrics should default to on")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_EXPIRY", "2h")
	t.Setenv("AVAILABILITY_CACHE_TTL", "5s")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("ENABLE_METRICS", "false")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Fatalf("expected port 9090, got %q", cfg.Port)
	}
	if cfg.JWTExpiry != 2*time.Hour {
		t.Fatalf("expected 2h expiry, got %v", cfg.JWTExpiry)
	}
	if cfg.AvailabilityTTL != 5*time.Second {
		t.Fatalf("expected 5s ttl, got %v", cfg.AvailabilityTTL)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "kafka-2:9092" {
		t.Fatalf("unexpected brokers %v", cfg.KafkaBrokers)
	}
	if cfg.EnableMetrics {
		t.Fatal("expected metrics disabled")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing secret",
			mutate:  func(c *Config) { c.JWTSecret = "" },
			wantErr: "JWT_SECRET",
		},
		{
			name:    "short secret",
			mutate:  func(c *Config) { c.JWTSecret = "short" },
			wantErr: "32 bytes",
		},
		{
			name:    "missing dsn",
			mutate:  func(c *Config) { c.DatabaseURL = "" },
			wantErr: "DATABASE_URL",
		},
		{
			name:    "negative expiry",
			mutate:  func(c *Config) { c.JWTExpiry = -time.Hour },
			wantErr: "JWT_EXPIRY",
		},
		{
			name: "brokers without topic",
			mutate: func(c *Config) {
				c.KafkaBrokers = []string{"kafka-1:9092"}
				c.KafkaTopic = ""
			},
			wantErr: "KAFKA_TOPIC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", testSecret)
			cfg := Load()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error about %s, got %v", tt.wantErr, err)
			}
		})
	}
}
