// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// Note: This package has no dependencies on other internal packages. The
// repository, cache, scorer and metrics are all injected through the
// interfaces in types.go.

// DefaultLayout is used when GetRelatedPosts receives an empty layout type.
const DefaultLayout = "default"

// Engine ranks related posts for a source post and caches the results.
// It is safe for concurrent use. Concurrent misses on the same key may
// compute the same list twice; the last write wins.
type Engine struct {
	config *Config
	logger zerolog.Logger

	repo   PostRepository
	cache  Cache
	scorer Scorer
	enrich enricher

	// Optional collaborators, guarded by optMu.
	optMu       sync.RWMutex
	reranker    Reranker
	observer    Observer
	warmLimiter Limiter
	now         func() time.Time

	requestCount  atomic.Int64
	cacheHits     atomic.Int64
	cacheMisses   atomic.Int64
	cacheErrors   atomic.Int64
	repoErrors    atomic.Int64
	invalidations atomic.Int64
}

// cachedResult is the payload stored under RelatedKey.
type cachedResult struct {
	Posts       []RelatedPost `json:"posts"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// cachedList is the payload stored under CategoryKey and AuthorKey.
// Requested records the count the list was computed for: a shorter list
// computed for a larger request means no more posts existed.
type cachedList struct {
	Posts       []RelatedPost `json:"posts"`
	Requested   int           `json:"requested"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// NewEngine creates a related-posts engine. A nil cache disables caching.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, repo PostRepository, cache Cache, scorer Scorer, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if repo == nil {
		return nil, fmt.Errorf("post repository is required")
	}
	if scorer == nil {
		return nil, fmt.Errorf("scorer is required")
	}
	if cache == nil {
		cache = nopCache{}
	}

	return &Engine{
		config: cfg,
		logger: logger.With().Str("component", "related-posts").Logger(),
		repo:   repo,
		cache:  cache,
		scorer: scorer,
		enrich: enricher{
			wordsPerMinute: cfg.Enrichment.WordsPerMinute,
			maxHints:       cfg.Enrichment.MaxHints,
		},
		observer: nopObserver{},
		now:      time.Now,
	}, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// SetReranker installs a reranker that picks the final list from the
// oversampled pool. Pass nil to restore pure score order.
func (e *Engine) SetReranker(rr Reranker) {
	e.optMu.Lock()
	defer e.optMu.Unlock()

	e.reranker = rr
	if rr != nil {
		e.logger.Info().Str("reranker", rr.Name()).Msg("registered reranker")
	}
}

// SetObserver installs a metrics observer.
func (e *Engine) SetObserver(o Observer) {
	e.optMu.Lock()
	defer e.optMu.Unlock()

	if o == nil {
		o = nopObserver{}
	}
	e.observer = o
}

// SetWarmLimiter paces WarmPopular. Pass nil to warm without pacing.
func (e *Engine) SetWarmLimiter(l Limiter) {
	e.optMu.Lock()
	defer e.optMu.Unlock()

	e.warmLimiter = l
}

// SetClock overrides the time source used for generated_at and post age.
func (e *Engine) SetClock(now func() time.Time) {
	e.optMu.Lock()
	defer e.optMu.Unlock()

	if now == nil {
		now = time.Now
	}
	e.now = now
}

func (e *Engine) options() (Reranker, Observer, Limiter, func() time.Time) {
	e.optMu.RLock()
	defer e.optMu.RUnlock()
	return e.reranker, e.observer, e.warmLimiter, e.now
}

// GetRelatedPosts returns up to count posts most similar to source.
//
// Only ErrInvalidInput is returned as an error. Repository and cache
// failures degrade to an empty or uncached result.
func (e *Engine) GetRelatedPosts(ctx context.Context, source *Post, count int, layoutType string) (*Result, error) {
	if err := validateRequest(source, count); err != nil {
		return nil, err
	}
	count = e.capCount(count)
	if layoutType == "" {
		layoutType = DefaultLayout
	}

	reranker, observer, _, now := e.options()
	start := time.Now()
	e.requestCount.Add(1)

	logger := e.logger.With().
		Int64("post_id", source.ID).
		Int("count", count).
		Logger()

	key := RelatedKey(source.ID, source.UpdatedAt, e.config.Cache.AlgorithmVersion)

	var cached cachedResult
	if e.cacheGet(ctx, key, &cached, observer) && len(cached.Posts) >= count {
		e.cacheHits.Add(1)
		observer.ObserveRequest(OpRelated, true)
		logger.Debug().Msg("cache hit")
		return &Result{
			SourceID:    source.ID,
			Posts:       cached.Posts[:count],
			LayoutType:  layoutType,
			CacheHit:    true,
			GeneratedAt: cached.GeneratedAt,
		}, nil
	}
	e.cacheMisses.Add(1)
	observer.ObserveRequest(OpRelated, false)

	generatedAt := now()
	result := &Result{
		SourceID:    source.ID,
		Posts:       []RelatedPost{},
		LayoutType:  layoutType,
		GeneratedAt: generatedAt,
	}

	candidates, err := e.repo.GetPublishedExcluding(ctx, source.ID)
	if err != nil {
		e.repositoryError(OpRelated, err, logger, observer)
		return result, nil
	}
	if len(candidates) == 0 {
		logger.Debug().Msg("no candidates available")
		return result, nil
	}

	ranked := e.rank(ctx, source, candidates, count, reranker)

	result.Posts = make([]RelatedPost, 0, len(ranked))
	for i := range ranked {
		result.Posts = append(result.Posts, e.enrich.enrich(&ranked[i].Post, ranked[i].Score, generatedAt))
	}
	if e.config.Debug {
		result.AlgorithmScores = debugScores(ranked)
	}

	if len(result.Posts) > 0 {
		e.cacheSet(ctx, key, cachedResult{Posts: result.Posts, GeneratedAt: generatedAt}, e.config.Cache.TTL, observer)
	}

	elapsed := time.Since(start)
	observer.ObserveCompute(OpRelated, elapsed, len(candidates))
	logger.Debug().
		Int("candidates", len(candidates)).
		Int("returned", len(result.Posts)).
		Dur("elapsed", elapsed).
		Msg("related posts computed")

	return result, nil
}

// rank scores every candidate against source, orders them by score
// descending with id ascending as the tie-break, and selects count entries
// from the top count*OversampleFactor.
func (e *Engine) rank(ctx context.Context, source *Post, candidates []Post, count int, reranker Reranker) []ScoredCandidate {
	sourceFeatures := e.scorer.Features(source)

	scored := make([]ScoredCandidate, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		if c.ID == source.ID || !c.Published {
			continue
		}
		features := e.scorer.Features(c)
		total, components := e.scorer.Score(&sourceFeatures, &features)
		scored = append(scored, ScoredCandidate{Post: *c, Score: total, Components: components})
	}

	sortScored(scored)

	if pool := count * e.config.Limits.OversampleFactor; len(scored) > pool {
		scored = scored[:pool]
	}
	if reranker != nil {
		scored = reranker.Rerank(ctx, scored, count)
	}
	if len(scored) > count {
		scored = scored[:count]
	}
	return scored
}

func sortScored(scored []ScoredCandidate) {
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Post.ID < scored[j].Post.ID
	})
}

func debugScores(ranked []ScoredCandidate) []DebugScore {
	out := make([]DebugScore, 0, len(ranked))
	for i := range ranked {
		c := &ranked[i]
		out = append(out, DebugScore{
			PostID:     c.Post.ID,
			PostTitle:  c.Post.Title,
			TotalScore: round3(c.Score),
			Scores: ComponentScores{
				Content:  round3(c.Components.Content),
				Tag:      round3(c.Components.Tag),
				Category: round3(c.Components.Category),
				Author:   round3(c.Components.Author),
				Temporal: round3(c.Components.Temporal),
			},
		})
	}
	return out
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// GetRelatedByCategory returns up to count published posts sharing at least
// one category with source, ordered by shared-category count then recency.
// A source without categories yields an empty list.
func (e *Engine) GetRelatedByCategory(ctx context.Context, source *Post, count int) ([]RelatedPost, error) {
	if err := validateRequest(source, count); err != nil {
		return nil, err
	}
	if len(source.Categories) == 0 {
		return []RelatedPost{}, nil
	}
	count = e.capCount(count)

	return e.fallback(ctx, OpByCategory, source, CategoryKey(source.ID), count, func() ([]Post, error) {
		posts, err := e.repo.GetPublishedByCategory(ctx, source.Categories, source.ID, count)
		if err != nil {
			return nil, err
		}
		orderBySharedCategories(posts, source.Categories)
		return posts, nil
	})
}

// GetMoreFromAuthor returns up to count other published posts by the
// source's author, newest first.
func (e *Engine) GetMoreFromAuthor(ctx context.Context, source *Post, count int) ([]RelatedPost, error) {
	if err := validateRequest(source, count); err != nil {
		return nil, err
	}
	count = e.capCount(count)

	return e.fallback(ctx, OpByAuthor, source, AuthorKey(source.ID), count, func() ([]Post, error) {
		posts, err := e.repo.GetPublishedByAuthor(ctx, source.AuthorID, source.ID, count)
		if err != nil {
			return nil, err
		}
		sort.SliceStable(posts, func(i, j int) bool {
			if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
				return posts[i].CreatedAt.After(posts[j].CreatedAt)
			}
			return posts[i].ID < posts[j].ID
		})
		return posts, nil
	})
}

// fallback serves a secondary list from the cache or computes it with fetch.
func (e *Engine) fallback(ctx context.Context, op string, source *Post, key string, count int, fetch func() ([]Post, error)) ([]RelatedPost, error) {
	_, observer, _, now := e.options()
	start := time.Now()
	e.requestCount.Add(1)

	logger := e.logger.With().
		Str("operation", op).
		Int64("post_id", source.ID).
		Int("count", count).
		Logger()

	var cached cachedList
	if e.cacheGet(ctx, key, &cached, observer) && (len(cached.Posts) >= count || cached.Requested >= count) {
		e.cacheHits.Add(1)
		observer.ObserveRequest(op, true)
		if len(cached.Posts) > count {
			cached.Posts = cached.Posts[:count]
		}
		return cached.Posts, nil
	}
	e.cacheMisses.Add(1)
	observer.ObserveRequest(op, false)

	posts, err := fetch()
	if err != nil {
		e.repositoryError(op, err, logger, observer)
		return []RelatedPost{}, nil
	}

	generatedAt := now()
	sourceFeatures := e.scorer.Features(source)
	out := make([]RelatedPost, 0, count)
	for i := range posts {
		p := &posts[i]
		if p.ID == source.ID || !p.Published {
			continue
		}
		if len(out) == count {
			break
		}
		features := e.scorer.Features(p)
		score, _ := e.scorer.Score(&sourceFeatures, &features)
		out = append(out, e.enrich.enrich(p, score, generatedAt))
	}

	e.cacheSet(ctx, key, cachedList{Posts: out, Requested: count, GeneratedAt: generatedAt}, e.config.FallbackTTL(), observer)
	observer.ObserveCompute(op, time.Since(start), len(posts))

	return out, nil
}

// orderBySharedCategories sorts posts by the number of categories shared
// with source (descending), then newest first, then id.
func orderBySharedCategories(posts []Post, source []string) {
	want := make(map[string]struct{}, len(source))
	for _, c := range source {
		want[normalizeName(c)] = struct{}{}
	}
	shared := make(map[int64]int, len(posts))
	for i := range posts {
		n := 0
		for _, c := range posts[i].Categories {
			if _, ok := want[normalizeName(c)]; ok {
				n++
			}
		}
		shared[posts[i].ID] = n
	}

	sort.SliceStable(posts, func(i, j int) bool {
		si, sj := shared[posts[i].ID], shared[posts[j].ID]
		if si != sj {
			return si > sj
		}
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID < posts[j].ID
	})
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Invalidate drops every cached list computed for postID: all versions of
// its related list and both fallback lists. It returns the number of
// related-list entries removed.
func (e *Engine) Invalidate(ctx context.Context, postID int64) (int, error) {
	if postID <= 0 {
		return 0, fmt.Errorf("%w: post id must be positive, got %d", ErrInvalidInput, postID)
	}
	_, observer, _, _ := e.options()

	removed, err := e.cache.DeletePrefix(ctx, RelatedKeyPrefix(postID))
	if err != nil {
		e.cacheError("delete_prefix", err, observer)
		return 0, fmt.Errorf("invalidate related posts for %d: %w", postID, err)
	}
	for _, key := range []string{CategoryKey(postID), AuthorKey(postID)} {
		if err := e.cache.Delete(ctx, key); err != nil {
			e.cacheError("delete", err, observer)
			return removed, fmt.Errorf("invalidate %s: %w", key, err)
		}
	}

	e.invalidations.Add(1)
	observer.ObserveInvalidation("post", removed)
	e.logger.Debug().Int64("post_id", postID).Int("removed", removed).Msg("invalidated related posts")
	return removed, nil
}

// InvalidateAll drops every cached list. Hosts call it when shared taxonomy
// changes or a post is removed, since either can alter every other post's list.
func (e *Engine) InvalidateAll(ctx context.Context) (int, error) {
	_, observer, _, _ := e.options()

	removed, err := e.cache.DeletePrefix(ctx, KeyPrefix)
	if err != nil {
		e.cacheError("delete_prefix", err, observer)
		return 0, fmt.Errorf("invalidate all related posts: %w", err)
	}

	e.invalidations.Add(1)
	observer.ObserveInvalidation("all", removed)
	e.logger.Info().Int("removed", removed).Msg("invalidated all related posts")
	return removed, nil
}

// WarmPopular precomputes related lists for up to limit popular posts
// (featured, most shared, newest). A limit <= 0 uses the configured
// default. It returns how many lists were computed before ctx ended or the
// popular posts ran out.
func (e *Engine) WarmPopular(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		limit = e.config.Limits.WarmPopular
	}
	_, observer, limiter, _ := e.options()
	start := time.Now()

	posts, err := e.repo.GetPopular(ctx, limit)
	if err != nil {
		e.repositoryError("warm", err, e.logger, observer)
		return 0, fmt.Errorf("load popular posts: %w", err)
	}

	warmed := 0
	for i := range posts {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				observer.ObserveWarm(warmed, time.Since(start))
				return warmed, fmt.Errorf("warm popular posts: %w", err)
			}
		} else if err := ctx.Err(); err != nil {
			observer.ObserveWarm(warmed, time.Since(start))
			return warmed, fmt.Errorf("warm popular posts: %w", err)
		}

		if _, err := e.GetRelatedPosts(ctx, &posts[i], e.config.Limits.DefaultCount, DefaultLayout); err != nil {
			e.logger.Warn().Err(err).Int64("post_id", posts[i].ID).Msg("skipping post during cache warm")
			continue
		}
		warmed++
	}

	elapsed := time.Since(start)
	observer.ObserveWarm(warmed, elapsed)
	e.logger.Info().
		Int("warmed", warmed).
		Int("popular", len(posts)).
		Dur("elapsed", elapsed).
		Msg("warmed related posts cache")
	return warmed, nil
}

// Stats returns a snapshot of engine counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Requests:         e.requestCount.Load(),
		CacheHits:        e.cacheHits.Load(),
		CacheMisses:      e.cacheMisses.Load(),
		CacheErrors:      e.cacheErrors.Load(),
		RepositoryErrors: e.repoErrors.Load(),
		Invalidations:    e.invalidations.Load(),
	}
}

func validateRequest(source *Post, count int) error {
	switch {
	case source == nil:
		return fmt.Errorf("%w: source post is nil", ErrInvalidInput)
	case source.ID <= 0:
		return fmt.Errorf("%w: source post id must be positive, got %d", ErrInvalidInput, source.ID)
	case source.UpdatedAt.IsZero():
		return fmt.Errorf("%w: source post %d has no updated_at", ErrInvalidInput, source.ID)
	case !source.Published:
		return fmt.Errorf("%w: source post %d is not published", ErrInvalidInput, source.ID)
	case count <= 0:
		return fmt.Errorf("%w: count must be positive, got %d", ErrInvalidInput, count)
	}
	return nil
}

func (e *Engine) capCount(count int) int {
	if count > e.config.Limits.MaxCount {
		return e.config.Limits.MaxCount
	}
	return count
}

// cacheGet decodes the entry at key into dst. Errors and corrupt entries
// count as misses.
func (e *Engine) cacheGet(ctx context.Context, key string, dst any, observer Observer) bool {
	data, ok, err := e.cache.Get(ctx, key)
	if err != nil {
		e.cacheError("get", err, observer)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		e.logger.Warn().Err(err).Str("key", key).Msg("discarding undecodable cache entry")
		return false
	}
	return true
}

func (e *Engine) cacheSet(ctx context.Context, key string, value any, ttl time.Duration, observer Observer) {
	data, err := json.Marshal(value)
	if err != nil {
		e.logger.Warn().Err(err).Str("key", key).Msg("failed to encode cache entry")
		return
	}
	if err := e.cache.Set(ctx, key, data, ttl); err != nil {
		e.cacheError("set", err, observer)
	}
}

func (e *Engine) cacheError(op string, err error, observer Observer) {
	e.cacheErrors.Add(1)
	observer.ObserveCacheError(op)
	e.logger.Warn().Err(err).Str("cache_op", op).Msg("cache unavailable, continuing without it")
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) repositoryError(op string, err error, logger zerolog.Logger, observer Observer) {
	e.repoErrors.Add(1)
	observer.ObserveRepositoryError(op)
	logger.Warn().Err(err).Str("operation", op).Msg("post repository failed, returning empty result")
}

type nopCache struct{}

func (nopCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (nopCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (nopCache) Delete(context.Context, string) error { return nil }
func (nopCache) DeletePrefix(context.Context, string) (int, error) { return 0, nil }
