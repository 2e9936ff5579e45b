// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

package reranking

import (
	"context"
	"math"
	"strings"

	"github.com/tomtom215/devblog/internal/recommend"
)

// maxRerankSize limits slice allocations; k is also bounded by len(pool).
const maxRerankSize = 10000

// MMR implements Maximal Marginal Relevance reranking.
// It balances relevance and diversity by iteratively selecting posts
// that are both relevant and dissimilar to already selected posts.
//
// The MMR formula is:
//
//	MMR = argmax[lambda * score(i) - (1-lambda) * max(sim(i, s)) for s in selected]
//
// Where:
//   - lambda: balance parameter (1.0 = pure relevance, 0.0 = pure diversity)
//   - score(i): similarity of post i to the source post
//   - sim(i, s): topic overlap between post i and selected post s
//
// Reference:
// Carbonell, J., & Goldstein, J. (1998). "The Use of MMR, Diversity-Based
// Reranking for Reordering Documents and Producing Summaries." SIGIR 1998.
type MMR struct {
	// Lambda balances relevance vs. diversity (0.0 to 1.0)
	lambda float64
}

// NewMMR creates a new MMR reranker.
func NewMMR(lambda float64) *MMR {
	if lambda < 0 {
		lambda = 0
	}
	if lambda > 1 {
		lambda = 1
	}
	return &MMR{lambda: lambda}
}

// Name returns the reranker identifier.
func (m *MMR) Name() string {
	return "mmr"
}

// Lambda returns the relevance/diversity balance.
func (m *MMR) Lambda() float64 {
	return m.lambda
}

// Rerank selects up to k candidates from pool. The pool is expected in
// descending score order; on equal MMR values the earlier candidate wins,
// so the result is deterministic.
func (m *MMR) Rerank(ctx context.Context, pool []recommend.ScoredCandidate, k int) []recommend.ScoredCandidate {
	if len(pool) == 0 || k <= 0 {
		return pool
	}

	if k > maxRerankSize {
		k = maxRerankSize
	}
	if k > len(pool) {
		k = len(pool)
	}

	if m.lambda >= 1.0 {
		return pool[:k]
	}

	similarities := buildSimilarityMatrix(pool)

	selected := make([]recommend.ScoredCandidate, 0, k)
	selectedIndices := make([]int, 0, k)
	taken := make([]bool, len(pool))

	for len(selected) < k {
		if ctx.Err() != nil {
			break
		}

		bestIdx := -1
		bestMMR := math.Inf(-1)

		for i := range pool {
			if taken[i] {
				continue
			}

			maxSim := 0.0
			for _, j := range selectedIndices {
				if sim := similarities[i][j]; sim > maxSim {
					maxSim = sim
				}
			}

			mmrScore := m.lambda*pool[i].Score - (1-m.lambda)*maxSim
			if mmrScore > bestMMR {
				bestMMR = mmrScore
				bestIdx = i
			}
		}

		if bestIdx < 0 {
			break
		}

		selected = append(selected, pool[bestIdx])
		selectedIndices = append(selectedIndices, bestIdx)
		taken[bestIdx] = true
	}

	// A cancelled context still yields a full list in score order.
	for i := 0; len(selected) < k && i < len(pool); i++ {
		if !taken[i] {
			selected = append(selected, pool[i])
			taken[i] = true
		}
	}

	return selected
}

// buildSimilarityMatrix computes pairwise topic similarity.
func buildSimilarityMatrix(pool []recommend.ScoredCandidate) [][]float64 {
	n := len(pool)
	topics := make([]map[string]struct{}, n)
	for i := range pool {
		topics[i] = topicSet(&pool[i].Post)
	}

	similarities := make([][]float64, n)
	for i := range similarities {
		similarities[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sim := jaccard(topics[i], topics[j])
			similarities[i][j] = sim
			similarities[j][i] = sim
		}
	}

	return similarities
}

// topicSet merges a post's tags and categories into one lowercase set.
func topicSet(p *recommend.Post) map[string]struct{} {
	set := make(map[string]struct{}, len(p.Tags)+len(p.Categories))
	for _, names := range [][]string{p.Tags, p.Categories} {
		for _, n := range names {
			if n = strings.ToLower(strings.TrimSpace(n)); n != "" {
				set[n] = struct{}{}
			}
		}
	}
	return set
}

// jaccard computes Jaccard similarity between two sets.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	intersection := 0
	for s := range a {
		if _, ok := b[s]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}

	return float64(intersection) / float64(union)
}

// Ensure MMR implements the interface.
var _ recommend.Reranker = (*MMR)(nil)
