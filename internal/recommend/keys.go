// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

package recommend

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// KeyPrefix starts every cache key written by the engine.
const KeyPrefix = "related_posts"

// RelatedKey is the cache key for a post's related list. It embeds the
// post id in clear text, so Invalidate can drop every version of it, and a
// hash of (id, updated_at, algorithm version), so an edit or an algorithm
// change rotates the key.
func RelatedKey(postID int64, updatedAt time.Time, version string) string {
	var ts int64
	if !updatedAt.IsZero() {
		ts = updatedAt.UnixMicro()
	}
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d_%d_%s", postID, ts, version)))
	return fmt.Sprintf("%s:%d:%x", KeyPrefix, postID, sum[:8])
}

// RelatedKeyPrefix matches every RelatedKey for postID.
func RelatedKeyPrefix(postID int64) string {
	return fmt.Sprintf("%s:%d:", KeyPrefix, postID)
}

// CategoryKey is the cache key for a post's same-category fallback list.
func CategoryKey(postID int64) string {
	return fmt.Sprintf("%s_category:%d", KeyPrefix, postID)
}

// AuthorKey is the cache key for a post's more-from-author list.
func AuthorKey(postID int64) string {
	return fmt.Sprintf("%s_author:%d", KeyPrefix, postID)
}
