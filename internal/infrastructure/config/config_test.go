package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.API.URL != "http://localhost:8081" {
		t.Errorf("API.URL = %q", cfg.API.URL)
	}
	if cfg.API.TokenHeader != "Jwt-Token" {
		t.Errorf("API.TokenHeader = %q", cfg.API.TokenHeader)
	}
	if cfg.API.Timeout != 30*time.Second {
		t.Errorf("API.Timeout = %v", cfg.API.Timeout)
	}
	if cfg.Store.Driver != StoreFile {
		t.Errorf("Store.Driver = %q", cfg.Store.Driver)
	}
	if !cfg.IsDevelopment() {
		t.Errorf("expected development by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"CONSOLE_ENV":  "production",
		"API_URL":      "https://users.example.com/api/",
		"TOKEN_HEADER": "X-Auth",
		"STORE_DRIVER": "REDIS",
		"REDIS_PREFIX": "ops:",
		"REDIS_DB":     "3",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.API.URL != "https://users.example.com/api" {
		t.Errorf("trailing slash not trimmed: %q", cfg.API.URL)
	}
	if cfg.Store.Driver != StoreRedis || cfg.Redis.Prefix != "ops:" || cfg.Redis.DB != 3 {
		t.Errorf("unexpected store config: %+v %+v", cfg.Store, cfg.Redis)
	}
	if cfg.IsDevelopment() {
		t.Errorf("production must not be development")
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown driver": {"STORE_DRIVER": "sqlite"},
		"bad url":        {"API_URL": "not a url"},
		"bad timeout":    {"API_TIMEOUT": "soon"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFrom(context.Background(), envconfig.MapLookuper(env))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.HasPrefix(err.Error(), "config:") {
				t.Fatalf("error not wrapped: %v", err)
			}
		})
	}
}
