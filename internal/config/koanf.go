// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order; the first existing file wins.
var DefaultConfigPaths = []string{
	"devblog.yaml",
	"devblog.yml",
	"/etc/devblog/config.yaml",
	"/etc/devblog/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// Load builds the configuration from three layers, later layers winning:
//  1. built-in defaults
//  2. optional YAML file (CONFIG_PATH or DefaultConfigPaths)
//  3. environment variables listed in envMappings
func Load() (*Config, error) {
	return LoadFile(findConfigFile())
}

// LoadFile is Load with an explicit config file path. An empty path skips
// the file layer.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns the first config file that exists, or "".
func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Variables not listed here are ignored.
var envMappings = map[string]string{
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	"cache_backend":                   "cache.backend",
	"cache_badger_dir":                "cache.badger_dir",
	"cache_cleanup_interval":          "cache.cleanup_interval",
	"cache_breaker_enabled":           "cache.breaker.enabled",
	"cache_breaker_failure_threshold": "cache.breaker.failure_threshold",
	"cache_breaker_timeout":           "cache.breaker.timeout",

	"related_cache_ttl":         "recommend.cache_ttl",
	"related_algorithm_version": "recommend.algorithm_version",
	"related_debug":             "recommend.debug",
	"related_default_count":     "recommend.default_count",
	"related_category_count":    "recommend.category_count",
	"related_author_count":      "recommend.author_count",
	"related_oversample_factor": "recommend.oversample_factor",
	"related_diversity_enabled": "recommend.diversity_enabled",
	"related_diversity_lambda":  "recommend.diversity_lambda",

	"warm_enabled":         "warm.enabled",
	"warm_on_startup":      "warm.on_startup",
	"warm_interval":        "warm.interval",
	"warm_popular_limit":   "warm.popular_limit",
	"warm_rate_per_second": "warm.rate_per_second",

	"events_enabled":     "events.enabled",
	"events_transport":   "events.transport",
	"nats_url":           "events.url",
	"nats_embedded":      "events.embedded_server",
	"nats_embedded_port": "events.embedded_port",
	"events_topic":       "events.topic",
	"events_queue_group": "events.queue_group",

	"ops_enabled":    "server.enabled",
	"ops_addr":       "server.addr",
	"ops_timeout":    "server.timeout",
	"ops_rate_limit": "server.rate_limit",
}

// envTransformFunc maps an environment variable to its koanf path, or ""
// to skip it.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
