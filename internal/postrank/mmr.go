// Package postrank implements maximal marginal relevance re-ranking of
// the source set, run after the Critic and immediately before the
// Writer composes, so CoV never verifies against a reranked (and
// therefore potentially reordered-away) source. The reranked order is
// returned in the pipeline's result; the Writer's prompt does not
// include the source list.
package postrank

import (
	"math"

	"researchengine/internal/config"
	"researchengine/internal/obslog"
	"researchengine/internal/schema"
)

// Rerank applies MMR over items using relevance (cosine similarity to the
// query vector) traded off against diversity (distance from already
// selected items), per cfg. If MMR is disabled, there are fewer than two
// items, or no item's relevance reaches cfg.Threshold, items are returned
// unchanged in their original order. cfg.Threshold is a relevance floor;
// the number of items is not compared against it.
func Rerank(items []schema.SourceItem, queryVector []float32, cfg config.MMRParams, logger obslog.QueryLogger) []schema.SourceItem {
	if !cfg.Enabled || len(items) < 2 {
		return items
	}

	relevance := make([]float64, len(items))
	for i, it := range items {
		relevance[i] = cosineSimilarity(queryVector, it.Vector)
	}

	maxRelevance := 0.0
	for _, r := range relevance {
		if r > maxRelevance {
			maxRelevance = r
		}
	}
	if maxRelevance < cfg.Threshold {
		return items
	}

	selected := make([]bool, len(items))
	order := make([]int, 0, len(items))

	for len(order) < len(items) {
		best := -1
		bestScore := math.Inf(-1)
		for i := range items {
			if selected[i] {
				continue
			}
			diversityPenalty := 0.0
			for _, j := range order {
				sim := cosineSimilarity(items[i].Vector, items[j].Vector)
				if sim > diversityPenalty {
					diversityPenalty = sim
				}
			}
			score := cfg.Lambda*relevance[i] - (1-cfg.Lambda)*diversityPenalty
			if score > bestScore {
				bestScore = score
				best = i
			}
		}
		selected[best] = true
		order = append(order, best)
		if logger != nil {
			logger.MMRScore(items[best].URL, len(order)-1, bestScore)
		}
	}

	out := make([]schema.SourceItem, len(items))
	for pos, idx := range order {
		out[pos] = items[idx]
	}
	return out
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// StripVectors removes the Vector field from every item before the set is
// rendered into an LLM prompt — embeddings have no business in a text
// prompt and needlessly balloon it.
func StripVectors(items []schema.SourceItem) []schema.SourceItem {
	out := make([]schema.SourceItem, len(items))
	for i, it := range items {
		it.Vector = nil
		out[i] = it
	}
	return out
}
