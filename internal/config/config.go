// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/devblog/internal/validation"
)

// Config is the complete application configuration.
type Config struct {
	Logging   LoggingConfig   `koanf:"logging"`
	Database  DatabaseConfig  `koanf:"database"`
	Cache     CacheConfig     `koanf:"cache"`
	Recommend RecommendConfig `koanf:"recommend"`
	Warm      WarmConfig      `koanf:"warm"`
	Events    EventsConfig    `koanf:"events"`
	Server    ServerConfig    `koanf:"server"`
}

// LoggingConfig controls the zerolog output.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// DatabaseConfig configures the DuckDB post store.
type DatabaseConfig struct {
	// Path is the DuckDB file. ":memory:" keeps everything in RAM.
	Path      string `koanf:"path" validate:"required"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads" validate:"gte=0"` // 0 = DuckDB default
}

// CacheConfig selects and tunes the related-posts result cache.
type CacheConfig struct {
	// Backend is memory (process-local) or badger (persistent, survives restarts).
	Backend         string        `koanf:"backend" validate:"oneof=memory badger"`
	BadgerDir       string        `koanf:"badger_dir"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
	Breaker         BreakerConfig `koanf:"breaker"`
}

// BreakerConfig configures the circuit breaker in front of the cache backend.
type BreakerConfig struct {
	Enabled          bool          `koanf:"enabled"`
	FailureThreshold uint32        `koanf:"failure_threshold" validate:"gte=1"`
	MaxRequests      uint32        `koanf:"max_requests" validate:"gte=1"`
	Interval         time.Duration `koanf:"interval"`
	Timeout          time.Duration `koanf:"timeout"`
}

// RecommendConfig configures the related-posts engine.
type RecommendConfig struct {
	CacheTTL         time.Duration `koanf:"cache_ttl"`
	AlgorithmVersion string        `koanf:"algorithm_version" validate:"required"`
	Debug            bool          `koanf:"debug"`
	DefaultCount     int           `koanf:"default_count" validate:"gte=1,lte=50"`
	CategoryCount    int           `koanf:"category_count" validate:"gte=1,lte=50"`
	AuthorCount      int           `koanf:"author_count" validate:"gte=1,lte=50"`
	OversampleFactor int           `koanf:"oversample_factor" validate:"gte=1,lte=10"`
	DiversityEnabled bool          `koanf:"diversity_enabled"`
	DiversityLambda  float64       `koanf:"diversity_lambda" validate:"gte=0,lte=1"`
}

// WarmConfig schedules precomputation for popular posts.
type WarmConfig struct {
	Enabled       bool          `koanf:"enabled"`
	OnStartup     bool          `koanf:"on_startup"`
	Interval      time.Duration `koanf:"interval"`
	PopularLimit  int           `koanf:"popular_limit" validate:"gte=1,lte=1000"`
	RatePerSecond float64       `koanf:"rate_per_second" validate:"gt=0"`
}

// EventsConfig wires post mutation events to cache invalidation.
type EventsConfig struct {
	Enabled bool `koanf:"enabled"`
	// Transport is channel (in-process) or nats.
	Transport      string        `koanf:"transport" validate:"oneof=channel nats"`
	URL            string        `koanf:"url"`
	EmbeddedServer bool          `koanf:"embedded_server"`
	EmbeddedPort   int           `koanf:"embedded_port" validate:"gte=0,lte=65535"`
	Topic          string        `koanf:"topic" validate:"required"`
	QueueGroup     string        `koanf:"queue_group"`
	RetryCount     int           `koanf:"retry_count" validate:"gte=0,lte=20"`
	RetryInterval  time.Duration `koanf:"retry_interval"`
	CloseTimeout   time.Duration `koanf:"close_timeout"`
}

// ServerConfig configures the operational HTTP listener (/metrics, /healthz).
type ServerConfig struct {
	Enabled   bool          `koanf:"enabled"`
	Addr      string        `koanf:"addr" validate:"required,hostname_port"`
	Timeout   time.Duration `koanf:"timeout"`
	RateLimit int           `koanf:"rate_limit" validate:"gte=0"` // requests per minute per client, 0 = off
}

// defaultConfig returns the built-in defaults. They are applied first and
// overridden by the config file and then by environment variables.
func defaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Database: DatabaseConfig{
			Path:      "/data/devblog.duckdb",
			MaxMemory: "512MB",
		},
		Cache: CacheConfig{
			Backend:         "memory",
			BadgerDir:       "/data/related-cache",
			CleanupInterval: 5 * time.Minute,
			Breaker: BreakerConfig{
				Enabled:          true,
				FailureThreshold: 5,
				MaxRequests:      1,
				Interval:         time.Minute,
				Timeout:          30 * time.Second,
			},
		},
		Recommend: RecommendConfig{
			CacheTTL:         time.Hour,
			AlgorithmVersion: "v2",
			DefaultCount:     6,
			CategoryCount:    4,
			AuthorCount:      3,
			OversampleFactor: 2,
			DiversityEnabled: false,
			DiversityLambda:  0.7,
		},
		Warm: WarmConfig{
			Enabled:       true,
			OnStartup:     true,
			Interval:      30 * time.Minute,
			PopularLimit:  10,
			RatePerSecond: 5,
		},
		Events: EventsConfig{
			Enabled:        false,
			Transport:      "channel",
			URL:            "nats://127.0.0.1:4222",
			EmbeddedServer: false,
			EmbeddedPort:   4222,
			Topic:          "blog.posts",
			QueueGroup:     "related-posts",
			RetryCount:     3,
			RetryInterval:  100 * time.Millisecond,
			CloseTimeout:   10 * time.Second,
		},
		Server: ServerConfig{
			Enabled:   true,
			Addr:      "127.0.0.1:9464",
			Timeout:   10 * time.Second,
			RateLimit: 120,
		},
	}
}

// Validate checks struct tags and the rules that span fields.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}

	if c.Recommend.CacheTTL < time.Minute {
		return fmt.Errorf("recommend.cache_ttl must be at least 1m, got %v", c.Recommend.CacheTTL)
	}
	if c.Cache.Backend == "badger" && strings.TrimSpace(c.Cache.BadgerDir) == "" {
		return fmt.Errorf("cache.badger_dir is required when cache.backend is badger")
	}
	if c.Cache.CleanupInterval <= 0 {
		return fmt.Errorf("cache.cleanup_interval must be positive, got %v", c.Cache.CleanupInterval)
	}
	if c.Cache.Breaker.Enabled && c.Cache.Breaker.Timeout <= 0 {
		return fmt.Errorf("cache.breaker.timeout must be positive, got %v", c.Cache.Breaker.Timeout)
	}
	if c.Warm.Enabled && c.Warm.Interval < time.Minute {
		return fmt.Errorf("warm.interval must be at least 1m, got %v", c.Warm.Interval)
	}
	if c.Events.Enabled && c.Events.Transport == "nats" && !c.Events.EmbeddedServer && c.Events.URL == "" {
		return fmt.Errorf("events.url is required for the nats transport without an embedded server")
	}
	if c.Events.EmbeddedServer && c.Events.Transport != "nats" {
		return fmt.Errorf("events.embedded_server requires events.transport nats")
	}
	if c.Server.Enabled && c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %v", c.Server.Timeout)
	}
	return nil
}
