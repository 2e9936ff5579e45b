// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

/*
Package config loads devblog configuration with koanf.

Sources, lowest to highest precedence:
  - built-in defaults (defaultConfig)
  - a YAML file: $CONFIG_PATH, ./devblog.yaml or /etc/devblog/config.yaml
  - environment variables

Example file:

	logging:
	  level: debug
	database:
	  path: /var/lib/devblog/blog.duckdb
	cache:
	  backend: badger
	  badger_dir: /var/lib/devblog/related-cache
	recommend:
	  cache_ttl: 1h
	  diversity_enabled: true
	events:
	  enabled: true
	  transport: nats
	  embedded_server: true

Environment variables (selection):
  - LOG_LEVEL, LOG_FORMAT
  - DUCKDB_PATH
  - CACHE_BACKEND, CACHE_BADGER_DIR
  - RELATED_CACHE_TTL, RELATED_DEBUG, RELATED_DIVERSITY_ENABLED
  - WARM_ENABLED, WARM_INTERVAL, WARM_POPULAR_LIMIT
  - EVENTS_ENABLED, EVENTS_TRANSPORT, NATS_URL, NATS_EMBEDDED
  - OPS_ADDR

Validation combines go-playground/validator struct tags with cross-field
checks in Config.Validate.
*/
package config
