// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

// Package algorithms implements similarity scorers for the related-posts
// engine.
//
// WeightedSimilarity implements recommend.Scorer by combining five factors:
//
//   - Content: cosine similarity over word frequencies (weight 0.35)
//   - Tags: Jaccard index with a shared-tag bonus (weight 0.30)
//   - Categories: Jaccard index (weight 0.20)
//   - Author: exact match (weight 0.10)
//   - Temporal: bucketed distance between creation dates (weight 0.05)
//
// Content words are extracted by stripping markup, lowercasing, keeping
// alphabetic runs of at least three letters and removing a fixed English
// stop-word list. Tag and category names are compared case-insensitively.
//
// All functions are pure. The same inputs always produce the same score.
package algorithms
