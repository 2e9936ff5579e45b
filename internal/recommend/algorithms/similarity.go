// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

package algorithms

import (
	"fmt"
	"math"
	"time"

	"github.com/tomtom215/devblog/internal/recommend"
)

// Weights are the factor weights of WeightedSimilarity.
type Weights struct {
	Content  float64 `json:"content"`
	Tag      float64 `json:"tag"`
	Category float64 `json:"category"`
	Author   float64 `json:"author"`
	Temporal float64 `json:"temporal"`
}

// DefaultWeights returns the production factor weights. They sum to 1.0.
func DefaultWeights() Weights {
	return Weights{
		Content:  0.35,
		Tag:      0.30,
		Category: 0.20,
		Author:   0.10,
		Temporal: 0.05,
	}
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Content + w.Tag + w.Category + w.Author + w.Temporal
}

// Normalize scales weights so they sum to 1.0.
func (w Weights) Normalize() Weights {
	total := w.Sum()
	if total <= 0 {
		return w
	}
	return Weights{
		Content:  w.Content / total,
		Tag:      w.Tag / total,
		Category: w.Category / total,
		Author:   w.Author / total,
		Temporal: w.Temporal / total,
	}
}

const (
	tagMatchBonus    = 0.1
	tagMatchBonusCap = 0.3
)

// WeightedSimilarity scores a candidate post against a source post as a
// weighted sum of five factors, each in [0, 1]:
//
//	score = 0.35 * cosine(word frequencies)
//	      + 0.30 * min(jaccard(tags) + min(0.1 * |shared tags|, 0.3), 1)
//	      + 0.20 * jaccard(categories)
//	      + 0.10 * (same author ? 1 : 0)
//	      + 0.05 * temporal proximity
//
// It holds no mutable state and is safe for concurrent use.
type WeightedSimilarity struct {
	weights Weights
}

// NewWeightedSimilarity creates a scorer with DefaultWeights.
func NewWeightedSimilarity() *WeightedSimilarity {
	return &WeightedSimilarity{weights: DefaultWeights()}
}

// NewWeightedSimilarityWithWeights creates a scorer with custom weights,
// normalized to sum to 1.0.
func NewWeightedSimilarityWithWeights(w Weights) (*WeightedSimilarity, error) {
	if w.Content < 0 || w.Tag < 0 || w.Category < 0 || w.Author < 0 || w.Temporal < 0 {
		return nil, fmt.Errorf("weights must be non-negative: %+v", w)
	}
	if w.Sum() <= 0 {
		return nil, fmt.Errorf("at least one weight must be positive")
	}
	return &WeightedSimilarity{weights: w.Normalize()}, nil
}

// Name returns the scorer identifier.
func (s *WeightedSimilarity) Name() string {
	return "weighted_similarity"
}

// Weights returns the active weights.
func (s *WeightedSimilarity) Weights() Weights {
	return s.weights
}

// Features derives the comparable view of a post.
func (s *WeightedSimilarity) Features(p *recommend.Post) recommend.FeatureSet {
	return NewFeatureSet(p)
}

// Score compares candidate to source.
func (s *WeightedSimilarity) Score(source, candidate *recommend.FeatureSet) (float64, recommend.ComponentScores) {
	c := recommend.ComponentScores{
		Content:  ContentSimilarity(source.Words, candidate.Words),
		Tag:      TagSimilarity(source.Tags, candidate.Tags),
		Category: CategorySimilarity(source.Categories, candidate.Categories),
		Author:   AuthorMatch(source.AuthorID, candidate.AuthorID),
		Temporal: TemporalProximity(source.CreatedAt, candidate.CreatedAt),
	}

	total := s.weights.Content*c.Content +
		s.weights.Tag*c.Tag +
		s.weights.Category*c.Category +
		s.weights.Author*c.Author +
		s.weights.Temporal*c.Temporal

	return clamp01(total), c
}

// ContentSimilarity is the cosine similarity of two word-frequency vectors.
// It is 0 when either side is empty or no word is shared.
func ContentSimilarity(a, b map[string]int) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	var dot float64
	for w, fa := range a {
		if fb, ok := b[w]; ok {
			dot += float64(fa * fb)
		}
	}
	if dot == 0 {
		return 0
	}

	normA := magnitude(a)
	normB := magnitude(b)
	if normA == 0 || normB == 0 {
		return 0
	}
	return clamp01(dot / (normA * normB))
}

func magnitude(freq map[string]int) float64 {
	var sum float64
	for _, f := range freq {
		sum += float64(f * f)
	}
	return math.Sqrt(sum)
}

// TagSimilarity is the Jaccard index of two tag sets plus a bonus of 0.1
// per shared tag (at most 0.3), capped at 1.
func TagSimilarity(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	shared, union := overlap(a, b)
	jaccard := float64(shared) / float64(union)
	bonus := math.Min(float64(shared)*tagMatchBonus, tagMatchBonusCap)
	return math.Min(jaccard+bonus, 1)
}

// CategorySimilarity is the Jaccard index of two category sets.
func CategorySimilarity(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	shared, union := overlap(a, b)
	return float64(shared) / float64(union)
}

// AuthorMatch is 1 when both posts have the same known author.
func AuthorMatch(a, b int64) float64 {
	if a != 0 && a == b {
		return 1
	}
	return 0
}

// TemporalProximity buckets the whole-day distance between two creation
// times: within a week 1.0, a month 0.7, a quarter 0.4, otherwise 0.1.
// It is 0 when either time is unknown.
func TemporalProximity(a, b time.Time) float64 {
	if a.IsZero() || b.IsZero() {
		return 0
	}
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	days := int(diff / (24 * time.Hour))

	switch {
	case days <= 7:
		return 1.0
	case days <= 30:
		return 0.7
	case days <= 90:
		return 0.4
	default:
		return 0.1
	}
}

// overlap returns the intersection and union sizes of two sets.
func overlap(a, b map[string]struct{}) (shared, union int) {
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	for k := range small {
		if _, ok := large[k]; ok {
			shared++
		}
	}
	return shared, len(a) + len(b) - shared
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
