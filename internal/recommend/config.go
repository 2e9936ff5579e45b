// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

package recommend

import (
	"fmt"
	"time"
)

// Config contains all configuration for the related-posts engine.
type Config struct {
	// Cache contains result caching parameters.
	Cache CacheConfig `json:"cache"`

	// Limits contains default and maximum list sizes.
	Limits LimitsConfig `json:"limits"`

	// Diversity configures the optional reranking of the oversampled pool.
	Diversity DiversityConfig `json:"diversity"`

	// Enrichment tunes the display metadata added to each related post.
	Enrichment EnrichmentConfig `json:"enrichment"`

	// Debug adds per-entry score breakdowns to freshly computed results.
	Debug bool `json:"debug"`
}

// CacheConfig contains caching parameters.
type CacheConfig struct {
	// TTL is how long a computed related list stays cached.
	// Fallback lists (by category, by author) use TTL/2.
	// Default: 1h.
	TTL time.Duration `json:"ttl"`

	// AlgorithmVersion is mixed into cache keys. Changing it orphans every
	// previously cached list.
	// Default: "v2".
	AlgorithmVersion string `json:"algorithm_version"`
}

// LimitsConfig contains default and maximum list sizes.
type LimitsConfig struct {
	// DefaultCount is the related list size callers use when none is
	// requested, and the size WarmPopular computes. Default: 6.
	DefaultCount int `json:"default_count"`

	// CategoryCount is the default size for GetRelatedByCategory. Default: 4.
	CategoryCount int `json:"category_count"`

	// AuthorCount is the default size for GetMoreFromAuthor. Default: 3.
	AuthorCount int `json:"author_count"`

	// MaxCount caps any requested count. Default: 50.
	MaxCount int `json:"max_count"`

	// OversampleFactor sizes the ranked pool as count*OversampleFactor.
	// Default: 2.
	OversampleFactor int `json:"oversample_factor"`

	// WarmPopular is the number of popular posts WarmPopular precomputes. Default: 10.
	WarmPopular int `json:"warm_popular"`
}

// DiversityConfig contains parameters for diversity reranking.
type DiversityConfig struct {
	// Enabled turns on reranking of the oversampled pool.
	Enabled bool `json:"enabled"`

	// Lambda balances relevance (1.0) against diversity (0.0). Default: 0.7.
	Lambda float64 `json:"lambda"`
}

// EnrichmentConfig tunes display metadata.
type EnrichmentConfig struct {
	// WordsPerMinute drives the reading-time estimate. Default: 200.
	WordsPerMinute int `json:"words_per_minute"`

	// MaxHints caps the engagement hints per post. Default: 3.
	MaxHints int `json:"max_hints"`
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		Cache: CacheConfig{
			TTL:              time.Hour,
			AlgorithmVersion: "v2",
		},
		Limits: LimitsConfig{
			DefaultCount:     6,
			CategoryCount:    4,
			AuthorCount:      3,
			MaxCount:         50,
			OversampleFactor: 2,
			WarmPopular:      10,
		},
		Diversity: DiversityConfig{
			Enabled: false,
			Lambda:  0.7,
		},
		Enrichment: EnrichmentConfig{
			WordsPerMinute: 200,
			MaxHints:       3,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive, got %v", c.Cache.TTL)
	}
	if c.Cache.AlgorithmVersion == "" {
		return fmt.Errorf("algorithm version must not be empty")
	}
	if c.Limits.DefaultCount <= 0 {
		return fmt.Errorf("default count must be positive, got %d", c.Limits.DefaultCount)
	}
	if c.Limits.CategoryCount <= 0 {
		return fmt.Errorf("category count must be positive, got %d", c.Limits.CategoryCount)
	}
	if c.Limits.AuthorCount <= 0 {
		return fmt.Errorf("author count must be positive, got %d", c.Limits.AuthorCount)
	}
	if c.Limits.MaxCount < c.Limits.DefaultCount {
		return fmt.Errorf("max count (%d) must be >= default count (%d)", c.Limits.MaxCount, c.Limits.DefaultCount)
	}
	if c.Limits.OversampleFactor < 1 {
		return fmt.Errorf("oversample factor must be at least 1, got %d", c.Limits.OversampleFactor)
	}
	if c.Limits.WarmPopular <= 0 {
		return fmt.Errorf("warm popular must be positive, got %d", c.Limits.WarmPopular)
	}
	if c.Diversity.Lambda < 0 || c.Diversity.Lambda > 1 {
		return fmt.Errorf("diversity lambda must be in [0, 1], got %f", c.Diversity.Lambda)
	}
	if c.Enrichment.WordsPerMinute <= 0 {
		return fmt.Errorf("words per minute must be positive, got %d", c.Enrichment.WordsPerMinute)
	}
	if c.Enrichment.MaxHints <= 0 {
		return fmt.Errorf("max hints must be positive, got %d", c.Enrichment.MaxHints)
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// FallbackTTL is the TTL for category and author lists.
func (c *Config) FallbackTTL() time.Duration {
	return c.Cache.TTL / 2
}
