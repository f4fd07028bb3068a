package config

import (
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	t.Setenv("PUPUSAPOS_API_URL", "http://localhost:5000/api")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.API.BaseURL != "http://localhost:5000/api" {
		t.Fatalf("unexpected api url %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 30*time.Second {
		t.Fatalf("expected default 30s timeout, got %v", cfg.API.Timeout)
	}
	if cfg.Store.Path != "pupusapos.db" {
		t.Fatalf("unexpected store path %q", cfg.Store.Path)
	}
	if cfg.App.LogLevel != "info" {
		t.Fatalf("unexpected log level %q", cfg.App.LogLevel)
	}
}

func TestLoad_MissingBaseURL(t *testing.T) {
	t.Setenv("PUPUSAPOS_API_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when api url is absent")
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	t.Setenv("PUPUSAPOS_API_URL", "not a url")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed base url")
	}

	t.Setenv("PUPUSAPOS_API_URL", "http://localhost:5000/api")
	t.Setenv("PUPUSAPOS_API_TIMEOUT", "-1s")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-positive timeout")
	}
}
