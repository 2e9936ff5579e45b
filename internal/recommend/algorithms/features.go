// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

package algorithms

import (
	"regexp"
	"strings"

	"github.com/tomtom215/devblog/internal/recommend"
)

var (
	htmlTagPattern = regexp.MustCompile(`<[^>]+>`)
	// RE2 word boundaries are ASCII only, so Unicode word runs are found
	// first and then filtered. "článek" is one run and yields nothing.
	wordRunPattern = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]+`)
	asciiWord      = regexp.MustCompile(`^[a-z]{3,}$`)
)

// stopWords are common English words that carry no topical signal.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {}, "at": {}, "to": {},
	"for": {}, "of": {}, "with": {}, "by": {}, "from": {}, "up": {}, "about": {},
	"into": {}, "through": {}, "during": {}, "before": {}, "after": {}, "above": {},
	"below": {}, "between": {}, "among": {}, "under": {}, "within": {}, "this": {},
	"that": {}, "these": {}, "those": {}, "his": {}, "her": {}, "its": {}, "our": {},
	"your": {}, "their": {}, "you": {}, "they": {}, "them": {}, "are": {}, "was": {},
	"were": {}, "been": {}, "have": {}, "has": {}, "had": {}, "will": {}, "would": {},
	"could": {}, "should": {}, "may": {}, "might": {}, "can": {}, "must": {},
	"shall": {}, "not": {}, "yes": {}, "all": {}, "any": {}, "both": {}, "each": {},
	"few": {}, "more": {}, "most": {}, "other": {}, "some": {}, "such": {}, "than": {},
	"too": {}, "very": {},
}

// IsStopWord reports whether word is excluded from content similarity.
func IsStopWord(word string) bool {
	_, ok := stopWords[word]
	return ok
}

// ExtractWords returns the meaningful words of content in order: markup is
// removed, text is lowercased, only word runs made entirely of three or more
// ASCII letters are kept and stop words are dropped. Runs containing digits,
// underscores or non-ASCII letters are skipped whole. No stemming is applied.
func ExtractWords(content string) []string {
	if content == "" {
		return nil
	}

	text := strings.ToLower(htmlTagPattern.ReplaceAllString(content, " "))
	runs := wordRunPattern.FindAllString(text, -1)

	words := runs[:0]
	for _, w := range runs {
		if !asciiWord.MatchString(w) || IsStopWord(w) {
			continue
		}
		words = append(words, w)
	}
	return words
}

// WordFrequencies counts the meaningful words of content.
func WordFrequencies(content string) map[string]int {
	words := ExtractWords(content)
	freq := make(map[string]int, len(words))
	for _, w := range words {
		freq[w]++
	}
	return freq
}

// NormalizeNames lowercases and trims tag or category names into a set,
// skipping blanks.
func NormalizeNames(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		set[n] = struct{}{}
	}
	return set
}

// NewFeatureSet derives the comparable view of a post.
func NewFeatureSet(p *recommend.Post) recommend.FeatureSet {
	if p == nil {
		return recommend.FeatureSet{}
	}
	return recommend.FeatureSet{
		Words:      WordFrequencies(p.Content),
		Tags:       NormalizeNames(p.Tags),
		Categories: NormalizeNames(p.Categories),
		AuthorID:   p.AuthorID,
		CreatedAt:  p.CreatedAt,
	}
}
