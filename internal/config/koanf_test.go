// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Recommend.CacheTTL != time.Hour {
		t.Errorf("Recommend.CacheTTL = %v, want 1h", cfg.Recommend.CacheTTL)
	}
	if cfg.Recommend.AlgorithmVersion != "v2" {
		t.Errorf("Recommend.AlgorithmVersion = %q, want v2", cfg.Recommend.AlgorithmVersion)
	}
	if cfg.Recommend.DefaultCount != 6 || cfg.Recommend.CategoryCount != 4 || cfg.Recommend.AuthorCount != 3 {
		t.Errorf("default counts = %d/%d/%d, want 6/4/3",
			cfg.Recommend.DefaultCount, cfg.Recommend.CategoryCount, cfg.Recommend.AuthorCount)
	}
	if cfg.Recommend.OversampleFactor != 2 {
		t.Errorf("Recommend.OversampleFactor = %d, want 2", cfg.Recommend.OversampleFactor)
	}
	if cfg.Recommend.DiversityEnabled {
		t.Error("Recommend.DiversityEnabled should be false by default")
	}
	if cfg.Cache.Backend != "memory" {
		t.Errorf("Cache.Backend = %q, want memory", cfg.Cache.Backend)
	}
	if cfg.Warm.PopularLimit != 10 {
		t.Errorf("Warm.PopularLimit = %d, want 10", cfg.Warm.PopularLimit)
	}
	if cfg.Events.Enabled {
		t.Error("Events.Enabled should be false by default")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFile_NoFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFile("")
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Database.Path != "/data/devblog.duckdb" {
		t.Errorf("Database.Path = %q, want default", cfg.Database.Path)
	}
}

func TestLoadFile_YAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "devblog.yaml")
	content := `
logging:
  level: debug
database:
  path: /tmp/blog.duckdb
cache:
  backend: badger
  badger_dir: /tmp/related
recommend:
  cache_ttl: 2h
  diversity_enabled: true
  diversity_lambda: 0.5
warm:
  popular_limit: 25
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Database.Path != "/tmp/blog.duckdb" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.Cache.Backend != "badger" || cfg.Cache.BadgerDir != "/tmp/related" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Recommend.CacheTTL != 2*time.Hour {
		t.Errorf("Recommend.CacheTTL = %v, want 2h", cfg.Recommend.CacheTTL)
	}
	if !cfg.Recommend.DiversityEnabled || cfg.Recommend.DiversityLambda != 0.5 {
		t.Errorf("diversity = %v/%v", cfg.Recommend.DiversityEnabled, cfg.Recommend.DiversityLambda)
	}
	if cfg.Warm.PopularLimit != 25 {
		t.Errorf("Warm.PopularLimit = %d, want 25", cfg.Warm.PopularLimit)
	}
	// untouched values keep their defaults
	if cfg.Recommend.DefaultCount != 6 {
		t.Errorf("Recommend.DefaultCount = %d, want 6", cfg.Recommend.DefaultCount)
	}
}

func TestLoadFile_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "devblog.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("RELATED_CACHE_TTL", "90m")
	t.Setenv("RELATED_DEBUG", "true")
	t.Setenv("DUCKDB_PATH", ":memory:")
	t.Setenv("UNRELATED_VARIABLE", "ignored")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}
	if cfg.Recommend.CacheTTL != 90*time.Minute {
		t.Errorf("Recommend.CacheTTL = %v, want 90m", cfg.Recommend.CacheTTL)
	}
	if !cfg.Recommend.Debug {
		t.Error("Recommend.Debug should be true from env")
	}
	if cfg.Database.Path != ":memory:" {
		t.Errorf("Database.Path = %q, want :memory:", cfg.Database.Path)
	}
}

func TestLoadFile_MissingFile(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadFile() expected error for missing file")
	}
}

func TestFindConfigFile_EnvVar(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(path, []byte("{}\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(ConfigPathEnvVar, path)
	if got := findConfigFile(); got != path {
		t.Errorf("findConfigFile() = %q, want %q", got, path)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"LOG_LEVEL", "logging.level"},
		{"CACHE_BACKEND", "cache.backend"},
		{"RELATED_CACHE_TTL", "recommend.cache_ttl"},
		{"NATS_EMBEDDED", "events.embedded_server"},
		{"OPS_ADDR", "server.addr"},
		{"HOME", ""},
		{"PATH", ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := envTransformFunc(tt.key); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "Logging.Level"},
		{"bad backend", func(c *Config) { c.Cache.Backend = "redis" }, "Cache.Backend"},
		{"badger without dir", func(c *Config) {
			c.Cache.Backend = "badger"
			c.Cache.BadgerDir = ""
		}, "badger_dir"},
		{"ttl too short", func(c *Config) { c.Recommend.CacheTTL = time.Second }, "cache_ttl"},
		{"zero count", func(c *Config) { c.Recommend.DefaultCount = 0 }, "Recommend.DefaultCount"},
		{"lambda above one", func(c *Config) { c.Recommend.DiversityLambda = 1.5 }, "Recommend.DiversityLambda"},
		{"oversample zero", func(c *Config) { c.Recommend.OversampleFactor = 0 }, "Recommend.OversampleFactor"},
		{"missing algorithm version", func(c *Config) { c.Recommend.AlgorithmVersion = "" }, "Recommend.AlgorithmVersion"},
		{"warm interval too short", func(c *Config) { c.Warm.Interval = time.Second }, "warm.interval"},
		{"embedded server without nats", func(c *Config) {
			c.Events.Enabled = true
			c.Events.EmbeddedServer = true
			c.Events.Transport = "channel"
		}, "embedded_server"},
		{"nats without url", func(c *Config) {
			c.Events.Enabled = true
			c.Events.Transport = "nats"
			c.Events.URL = ""
		}, "events.url"},
		{"bad ops addr", func(c *Config) { c.Server.Addr = "not an address" }, "Server.Addr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}
