// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

// Package reranking implements diversity reranking for related-posts lists.
//
// The engine scores candidates and keeps an oversampled pool of
// count*OversampleFactor posts. A reranker chooses the final count from that
// pool:
//
//	Scorer -> Ranked Pool -> Reranker -> Final List
//	(relevance)               (diversity)
//
// # MMR Algorithm
//
// Maximal Marginal Relevance iteratively selects posts that are both
// relevant to the source and dissimilar to already-selected posts:
//
//	MMR = argmax[lambda * score(i) - (1-lambda) * max_similarity(i, selected)]
//
// Similarity between two candidates is the Jaccard index of their combined
// tag and category sets, so a list of five posts that all share the same
// tags gives way to posts covering neighbouring topics.
//
// Lambda Guidelines:
//   - 0.9-1.0: Mostly relevance, minimal diversity
//   - 0.7-0.9: Balanced (default 0.7)
//   - 0.0-0.7: Diversity-focused (may sacrifice relevance)
//
// # Thread Safety
//
// MMR is stateless and safe for concurrent use.
package reranking
