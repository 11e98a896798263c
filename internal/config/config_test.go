package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("PORT", "")
	t.Setenv("UPSTREAM_TIMEOUT", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("CORS_ORIGINS", "")
	t.Setenv("CLIENT_URL", "")

	cfg := Load()
	if cfg.Port != "4000" {
		t.Errorf("Port = %q, want 4000", cfg.Port)
	}
	if cfg.UpstreamTimeout != 15*time.Second {
		t.Errorf("UpstreamTimeout = %s, want 15s", cfg.UpstreamTimeout)
	}
	if cfg.SessionTTL != time.Hour {
		t.Errorf("SessionTTL = %s, want 1h", cfg.SessionTTL)
	}
	if cfg.CORSOrigins != "*" {
		t.Errorf("CORSOrigins = %q, want *", cfg.CORSOrigins)
	}
	if !cfg.IsProduction() {
		t.Error("expected production environment")
	}
}

func TestLoad_ClientURLFallback(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("CORS_ORIGINS", "")
	t.Setenv("CLIENT_URL", "http://localhost:3000")

	if got := Load().CORSOrigins; got != "http://localhost:3000" {
		t.Errorf("CORSOrigins = %q, want CLIENT_URL value", got)
	}
}

func TestGetEnvDuration_Invalid(t *testing.T) {
	t.Setenv("X_TEST_DURATION", "soon")
	if got := getEnvDuration("X_TEST_DURATION", 3*time.Second); got != 3*time.Second {
		t.Errorf("got %s, want fallback 3s", got)
	}
}
