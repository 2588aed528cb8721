package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("LoadWith returned error: %v", err)
	}
	if cfg.Port != "8080" || !cfg.IsDevelopment() {
		t.Fatalf("unexpected defaults: port=%s env=%s", cfg.Port, cfg.Env)
	}
	if cfg.Session.CookieName != "sellos_bid" || cfg.Session.Store != StoreRedis {
		t.Fatalf("unexpected session defaults: %+v", cfg.Session)
	}
	if cfg.Session.IdleTTL != 30*time.Minute || cfg.TokenTTL != 24*time.Hour {
		t.Fatalf("unexpected durations: idle=%s token=%s", cfg.Session.IdleTTL, cfg.TokenTTL)
	}
	if cfg.JWTSecret == "" {
		t.Fatalf("development should fall back to a local secret")
	}
}

func TestLoadWith_Overrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"ENV":              "production",
		"JWT_SECRET":       "s3cret",
		"SESSION_STORE":    "memory",
		"SESSION_IDLE_TTL": "5m",
		"REDIS_DB":         "3",
	}))
	if err != nil {
		t.Fatalf("LoadWith returned error: %v", err)
	}
	if cfg.IsDevelopment() || cfg.JWTSecret != "s3cret" {
		t.Fatalf("unexpected env/secret: %s %s", cfg.Env, cfg.JWTSecret)
	}
	if cfg.Session.Store != StoreMemory || cfg.Session.IdleTTL != 5*time.Minute || cfg.Redis.DB != 3 {
		t.Fatalf("overrides not applied: %+v %+v", cfg.Session, cfg.Redis)
	}
}

func TestLoadWith_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"missing secret in production": {"ENV": "production"},
		"unknown store":                {"SESSION_STORE": "cookie"},
		"half seed":                    {"SEED_ADMIN_EMAIL": "root@sellos.mx"},
		"bad duration":                 {"TOKEN_TTL": "forever"},
	}

	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadWith(context.Background(), envconfig.MapLookuper(env)); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}
