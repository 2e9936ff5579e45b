// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

package recommend

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"time"
)

var htmlTagPattern = regexp.MustCompile(`<[^>]+>`)

// Engagement hint labels.
const (
	HintQuickRead  = "Quick read"
	HintMediumRead = "Medium read"
	HintInDepth    = "In-depth read"
	HintPopular    = "Popular"
	HintShared     = "Well-shared"
	HintRecent     = "Recent"
	HintThisMonth  = "This month"
	HintTutorial   = "Tutorial"
	HintReview     = "Review"
	HintNews       = "News"
)

const recentDays = 7

// enricher turns ranked posts into display records.
type enricher struct {
	wordsPerMinute int
	maxHints       int
}

// ReadingTime estimates minutes to read content: words / wpm rounded up,
// never less than one minute.
func ReadingTime(content string, wordsPerMinute int) int {
	if wordsPerMinute <= 0 {
		wordsPerMinute = 200
	}
	words := len(strings.Fields(htmlTagPattern.ReplaceAllString(content, " ")))
	minutes := int(math.Ceil(float64(words) / float64(wordsPerMinute)))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// PrimaryCategory returns the alphabetically first category, or "".
func PrimaryCategory(categories []string) string {
	if len(categories) == 0 {
		return ""
	}
	sorted := append([]string(nil), categories...)
	sort.Strings(sorted)
	return sorted[0]
}

// daysBetween returns the whole days elapsed from then to now.
func daysBetween(then, now time.Time) int {
	if then.IsZero() {
		return math.MaxInt32
	}
	d := now.Sub(then)
	if d < 0 {
		d = -d
	}
	return int(d / (24 * time.Hour))
}

func (en enricher) enrich(p *Post, score float64, now time.Time) RelatedPost {
	readingTime := ReadingTime(p.Content, en.wordsPerMinute)
	age := daysBetween(p.CreatedAt, now)

	return RelatedPost{
		ID:                 p.ID,
		Slug:               p.Slug,
		Title:              p.Title,
		Excerpt:            p.Excerpt,
		AuthorID:           p.AuthorID,
		AuthorName:         p.AuthorName,
		Categories:         copyStrings(p.Categories),
		Tags:               copyStrings(p.Tags),
		CreatedAt:          p.CreatedAt,
		SimilarityScore:    score,
		ReadingTimeMinutes: readingTime,
		EngagementHints:    en.hints(p, readingTime, age),
		ReadingContext:     readingContext(len(p.Content), readingTime),
		PrimaryCategory:    PrimaryCategory(p.Categories),
		TagCount:           len(p.Tags),
		IsRecent:           age <= recentDays,
		ShareCount:         p.ShareCount,
	}
}

// hints collects engagement hints in a fixed order and keeps the first maxHints.
func (en enricher) hints(p *Post, readingTime, age int) []string {
	hints := make([]string, 0, 4)

	switch {
	case readingTime <= 3:
		hints = append(hints, HintQuickRead)
	case readingTime <= 7:
		hints = append(hints, HintMediumRead)
	default:
		hints = append(hints, HintInDepth)
	}

	switch {
	case p.ShareCount > 10:
		hints = append(hints, HintPopular)
	case p.ShareCount > 5:
		hints = append(hints, HintShared)
	}

	switch {
	case age <= recentDays:
		hints = append(hints, HintRecent)
	case age <= 30:
		hints = append(hints, HintThisMonth)
	}

	if hint := categoryHint(p.Categories); hint != "" {
		hints = append(hints, hint)
	}

	if len(hints) > en.maxHints {
		hints = hints[:en.maxHints]
	}
	return hints
}

func categoryHint(categories []string) string {
	names := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		names[strings.ToLower(strings.TrimSpace(c))] = struct{}{}
	}
	has := func(candidates ...string) bool {
		for _, c := range candidates {
			if _, ok := names[c]; ok {
				return true
			}
		}
		return false
	}

	switch {
	case has("tutorial", "guide", "how-to"):
		return HintTutorial
	case has("review", "comparison"):
		return HintReview
	case has("news", "update"):
		return HintNews
	}
	return ""
}

// readingContext pairs a content-length bucket with a reading occasion.
func readingContext(contentLength, readingTime int) []string {
	var size string
	switch {
	case contentLength > 5000:
		size = "Comprehensive guide"
	case contentLength > 2000:
		size = "Detailed article"
	default:
		size = "Focused topic"
	}

	var occasion string
	switch {
	case readingTime <= 2:
		occasion = "Perfect for a coffee break"
	case readingTime <= 5:
		occasion = "Great for commute reading"
	default:
		occasion = "Set aside some time"
	}

	return []string{size, occasion}
}

func copyStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return append([]string(nil), s...)
}
