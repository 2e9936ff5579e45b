// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

// Package recommend implements the related-posts engine.
//
// # Ranking
//
// For a published source post the engine scores every other published post
// with a Scorer (see the algorithms subpackage), orders candidates by total
// score descending with the lower post id winning ties, and keeps the top
// count*OversampleFactor as a pool. An optional Reranker (see the reranking
// subpackage) picks the final count from that pool; without one the pool is
// truncated. The winners are enriched with display metadata:
//
//   - reading time (words / 200 per minute, rounded up, minimum 1)
//   - up to three engagement hints ("Quick read", "Popular", "Recent", ...)
//   - a reading context pair (content size, reading occasion)
//   - primary category, tag count, recency flag and share count
//
// # Caching
//
// Results are cached under a key derived from the source post id, its
// updated_at timestamp and the algorithm version, so editing a post or
// changing the algorithm rotates the key. The id is also kept in clear text
// in the key so that Invalidate can remove every version of a post's list:
//
//	related_posts:<id>:<hash>       related list, TTL 1h
//	related_posts_category:<id>     same-category list, TTL 30m
//	related_posts_author:<id>       more-from-author list, TTL 30m
//
// InvalidateAll removes every key under the related_posts prefix. Hosts call
// Invalidate from post edit hooks and InvalidateAll when a post is deleted or
// shared taxonomy changes.
//
// # Failure Handling
//
// Only ErrInvalidInput is returned to callers of the read operations.
// Repository failures produce empty results and cache failures are treated
// as misses, both logged and reported to the Observer.
//
// # Usage
//
//	engine, err := recommend.NewEngine(cfg, repo, store, algorithms.NewWeightedSimilarity(), logger)
//	if err != nil {
//	    return err
//	}
//	result, err := engine.GetRelatedPosts(ctx, post, 6, recommend.DefaultLayout)
package recommend
