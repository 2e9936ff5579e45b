// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

package recommend

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidInput is returned for requests the engine cannot serve: a nil or
// unpublished source, a missing id or update timestamp, or a non-positive count.
var ErrInvalidInput = errors.New("invalid input")

// Post is a blog post as seen by the engine.
type Post struct {
	ID      int64  `json:"id"`
	Slug    string `json:"slug"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Excerpt string `json:"excerpt,omitempty"`

	AuthorID   int64  `json:"author_id"`
	AuthorName string `json:"author_name,omitempty"`

	Categories []string `json:"categories"`
	Tags       []string `json:"tags"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ShareCount int  `json:"share_count"`
	Published  bool `json:"published"`
	Featured   bool `json:"featured"`
}

// FeatureSet is the comparable view of a post used by a Scorer. It is
// derived per scoring pass and never stored.
type FeatureSet struct {
	// Words maps each meaningful content word to its frequency.
	Words map[string]int

	// Tags and Categories are normalized name sets.
	Tags       map[string]struct{}
	Categories map[string]struct{}

	AuthorID  int64
	CreatedAt time.Time
}

// ComponentScores holds the per-factor similarity values, each in [0, 1].
type ComponentScores struct {
	Content  float64 `json:"content_similarity"`
	Tag      float64 `json:"tag_similarity"`
	Category float64 `json:"category_similarity"`
	Author   float64 `json:"author_similarity"`
	Temporal float64 `json:"temporal_proximity"`
}

// ScoredCandidate is a candidate post with its weighted total and the
// component breakdown that produced it.
type ScoredCandidate struct {
	Post       Post            `json:"post"`
	Score      float64         `json:"score"`
	Components ComponentScores `json:"components"`
}

// RelatedPost is an enriched entry in a related-posts list.
type RelatedPost struct {
	ID         int64     `json:"id"`
	Slug       string    `json:"slug"`
	Title      string    `json:"title"`
	Excerpt    string    `json:"excerpt,omitempty"`
	AuthorID   int64     `json:"author_id"`
	AuthorName string    `json:"author_name,omitempty"`
	Categories []string  `json:"categories"`
	Tags       []string  `json:"tags"`
	CreatedAt  time.Time `json:"created_at"`

	SimilarityScore    float64  `json:"similarity_score"`
	ReadingTimeMinutes int      `json:"reading_time"`
	EngagementHints    []string `json:"engagement_hints"`
	ReadingContext     []string `json:"reading_context"`
	PrimaryCategory    string   `json:"primary_category,omitempty"`
	TagCount           int      `json:"tag_count"`
	IsRecent           bool     `json:"is_recent"`
	ShareCount         int      `json:"share_popularity"`
}

// DebugScore explains one ranked entry. Values are rounded to 3 decimals.
type DebugScore struct {
	PostID     int64           `json:"post_id"`
	PostTitle  string          `json:"post_title"`
	TotalScore float64         `json:"total_score"`
	Scores     ComponentScores `json:"scores"`
}

// Result is the response of GetRelatedPosts.
type Result struct {
	SourceID    int64         `json:"source_id"`
	Posts       []RelatedPost `json:"posts"`
	LayoutType  string        `json:"layout_type"`
	CacheHit    bool          `json:"cache_hit"`
	GeneratedAt time.Time     `json:"generated_at"`

	// AlgorithmScores is populated only in debug mode and only on a cache miss.
	AlgorithmScores []DebugScore `json:"algorithm_scores,omitempty"`
}

// PostRepository supplies posts to the engine. Every method returns only
// published posts.
type PostRepository interface {
	// GetPublishedExcluding returns all published posts except excludeID.
	GetPublishedExcluding(ctx context.Context, excludeID int64) ([]Post, error)

	// GetPublishedByCategory returns published posts sharing at least one of
	// categories, excluding excludeID, ordered by shared-category count then
	// recency. limit <= 0 means no limit.
	GetPublishedByCategory(ctx context.Context, categories []string, excludeID int64, limit int) ([]Post, error)

	// GetPublishedByAuthor returns the author's other published posts, newest first.
	GetPublishedByAuthor(ctx context.Context, authorID, excludeID int64, limit int) ([]Post, error)

	// GetPopular returns featured published posts ordered by shares then recency.
	GetPopular(ctx context.Context, limit int) ([]Post, error)
}

// Cache is the result cache collaborator. Implementations must be safe for
// concurrent use. Errors are never fatal to the engine.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}

// Scorer computes similarity between posts.
type Scorer interface {
	// Name identifies the scoring algorithm.
	Name() string

	// Features derives the comparable view of a post.
	Features(p *Post) FeatureSet

	// Score compares a candidate to the source. The returned total is the
	// weighted sum of the components and lies in [0, 1].
	Score(source, candidate *FeatureSet) (float64, ComponentScores)
}

// Reranker reorders a scored pool and returns at most k entries.
type Reranker interface {
	Name() string
	Rerank(ctx context.Context, pool []ScoredCandidate, k int) []ScoredCandidate
}

// Limiter paces cache warming. *rate.Limiter satisfies it.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Observer receives engine events for metrics.
type Observer interface {
	ObserveRequest(operation string, cacheHit bool)
	ObserveCompute(operation string, d time.Duration, candidates int)
	ObserveRepositoryError(operation string)
	ObserveCacheError(operation string)
	ObserveInvalidation(scope string, keys int)
	ObserveWarm(warmed int, d time.Duration)
}

// Operation names reported to the Observer.
const (
	OpRelated    = "related"
	OpByCategory = "by_category"
	OpByAuthor   = "by_author"
)

type nopObserver struct{}

func (nopObserver) ObserveRequest(string, bool) {}
func (nopObserver) ObserveCompute(string, time.Duration, int) {}
func (nopObserver) ObserveRepositoryError(string) {}
func (nopObserver) ObserveCacheError(string) {}
func (nopObserver) ObserveInvalidation(string, int) {}
func (nopObserver) ObserveWarm(int, time.Duration) {}

// Stats is a snapshot of engine counters.
type Stats struct {
	Requests         int64 `json:"requests"`
	CacheHits        int64 `json:"cache_hits"`
	CacheMisses      int64 `json:"cache_misses"`
	CacheErrors      int64 `json:"cache_errors"`
	RepositoryErrors int64 `json:"repository_errors"`
	Invalidations    int64 `json:"invalidations"`
}
