// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

package recommend

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func TestReadingTime(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"empty is one minute", "", 1},
		{"short", words(50), 1},
		{"exactly one minute", words(200), 1},
		{"rounds up", words(201), 2},
		{"markup ignored", "<div><p>" + words(400) + "</p></div>", 2},
		{"long", words(1500), 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReadingTime(tt.content, 200); got != tt.want {
				t.Errorf("ReadingTime() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPrimaryCategory(t *testing.T) {
	if got := PrimaryCategory([]string{"Tutorial", "Go", "Databases"}); got != "Databases" {
		t.Errorf("PrimaryCategory() = %q, want Databases", got)
	}
	if got := PrimaryCategory(nil); got != "" {
		t.Errorf("PrimaryCategory(nil) = %q, want empty", got)
	}

	in := []string{"b", "a"}
	PrimaryCategory(in)
	if in[0] != "b" {
		t.Error("PrimaryCategory() reordered its input")
	}
}

func TestEnricher_Hints(t *testing.T) {
	en := enricher{wordsPerMinute: 200, maxHints: 3}

	tests := []struct {
		name        string
		post        Post
		readingTime int
		age         int
		want        []string
	}{
		{
			name:        "quick read only",
			post:        Post{},
			readingTime: 2,
			age:         100,
			want:        []string{HintQuickRead},
		},
		{
			name:        "medium, well shared, this month",
			post:        Post{ShareCount: 6},
			readingTime: 5,
			age:         20,
			want:        []string{HintMediumRead, HintShared, HintThisMonth},
		},
		{
			name:        "capped at three",
			post:        Post{ShareCount: 50, Categories: []string{"Tutorial"}},
			readingTime: 12,
			age:         1,
			want:        []string{HintInDepth, HintPopular, HintRecent},
		},
		{
			name:        "category hint",
			post:        Post{Categories: []string{"Product Review", "comparison"}},
			readingTime: 1,
			age:         400,
			want:        []string{HintQuickRead, HintReview},
		},
		{
			name:        "tutorial wins over news",
			post:        Post{Categories: []string{"news", "how-to"}},
			readingTime: 1,
			age:         400,
			want:        []string{HintQuickRead, HintTutorial},
		},
		{
			name:        "news",
			post:        Post{Categories: []string{" Update "}},
			readingTime: 1,
			age:         400,
			want:        []string{HintQuickRead, HintNews},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := en.hints(&tt.post, tt.readingTime, tt.age)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("hints() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadingContext(t *testing.T) {
	tests := []struct {
		length, minutes int
		want            []string
	}{
		{100, 1, []string{"Focused topic", "Perfect for a coffee break"}},
		{2500, 4, []string{"Detailed article", "Great for commute reading"}},
		{6000, 9, []string{"Comprehensive guide", "Set aside some time"}},
		{2000, 2, []string{"Focused topic", "Perfect for a coffee break"}},
		{5000, 5, []string{"Detailed article", "Great for commute reading"}},
	}

	for _, tt := range tests {
		if got := readingContext(tt.length, tt.minutes); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("readingContext(%d, %d) = %v, want %v", tt.length, tt.minutes, got, tt.want)
		}
	}
}

func TestEnricher_Enrich(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	en := enricher{wordsPerMinute: 200, maxHints: 3}

	p := &Post{
		ID:         7,
		Slug:       "ownership",
		Title:      "Ownership",
		Content:    words(450),
		AuthorID:   3,
		Categories: []string{"Rust", "Guide"},
		Tags:       []string{"rust", "memory"},
		CreatedAt:  now.Add(-3 * 24 * time.Hour),
		ShareCount: 4,
	}

	rp := en.enrich(p, 0.42, now)

	if rp.ID != 7 || rp.Slug != "ownership" || rp.SimilarityScore != 0.42 {
		t.Errorf("identity fields = %+v", rp)
	}
	if rp.ReadingTimeMinutes != 3 {
		t.Errorf("ReadingTimeMinutes = %d, want 3", rp.ReadingTimeMinutes)
	}
	if rp.PrimaryCategory != "Guide" {
		t.Errorf("PrimaryCategory = %q, want Guide", rp.PrimaryCategory)
	}
	if rp.TagCount != 2 || !rp.IsRecent || rp.ShareCount != 4 {
		t.Errorf("TagCount=%d IsRecent=%v ShareCount=%d", rp.TagCount, rp.IsRecent, rp.ShareCount)
	}
	wantHints := []string{HintQuickRead, HintRecent, HintTutorial}
	if !reflect.DeepEqual(rp.EngagementHints, wantHints) {
		t.Errorf("EngagementHints = %v, want %v", rp.EngagementHints, wantHints)
	}
	if len(rp.ReadingContext) != 2 {
		t.Errorf("ReadingContext = %v, want a pair", rp.ReadingContext)
	}

	rp.Tags[0] = "changed"
	if p.Tags[0] != "rust" {
		t.Error("enrich() shares the tag slice with the post")
	}
}
