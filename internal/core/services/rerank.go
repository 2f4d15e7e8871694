package services

import (
	"context"
	"sort"

	"github.com/glossa-labs/glossa-cli/internal/core/domain"
	"github.com/glossa-labs/glossa-cli/internal/core/ports/driven"
	"github.com/glossa-labs/glossa-cli/internal/logger"
)

// Reranker re-scores fused candidates against the original question
// and keeps the best few. Scoring goes through the RelevanceScorer in
// one batch to bound latency.
//
// Failure policy: a failed or partial scoring call preserves the
// incoming fusion order for whatever went unscored. Reranking never
// crashes the pipeline and never returns fewer results than a plain
// truncation would.
type Reranker struct {
	scorer driven.RelevanceScorer
	cfg    domain.RetrievalSettings
}

// NewReranker creates a new reranker. A nil scorer disables
// re-scoring; candidates pass through in fusion order.
func NewReranker(scorer driven.RelevanceScorer, cfg domain.RetrievalSettings) *Reranker {
	return &Reranker{scorer: scorer, cfg: cfg}
}

// Rerank reorders results by scored relevance and truncates to
// kFinal. kFinal <= 0 uses the configured default.
func (r *Reranker) Rerank(
	ctx context.Context, query string, results []domain.RetrievalResult, kFinal int,
) []domain.RetrievalResult {
	if kFinal <= 0 {
		kFinal = r.cfg.TopK
	}
	if len(results) == 0 {
		return results
	}

	// Nothing to reorder when the candidate set already fits.
	if !r.cfg.EnableRerank || r.scorer == nil || len(results) <= kFinal {
		return truncateResults(results, kFinal)
	}

	logger.Debug("Reranking %d candidates with %s", len(results), r.scorer.Name())

	passages := make([]string, len(results))
	for i, res := range results {
		passages[i] = res.Content
	}

	scores, err := r.scorer.ScoreBatch(ctx, query, passages)
	if err != nil {
		logger.Warn("Rerank scoring failed: %v (keeping fusion order)", err)
		return truncateResults(results, kFinal)
	}

	scoredN := len(scores)
	if scoredN > len(results) {
		scoredN = len(results)
	}

	// Scored candidates are reordered by the new score; anything the
	// scorer did not cover follows in its fusion order.
	scored := make([]domain.RetrievalResult, scoredN)
	copy(scored, results[:scoredN])
	for i := range scored {
		scored[i].Score = scores[i]
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	out := append(scored, results[scoredN:]...)
	return truncateResults(out, kFinal)
}

// truncateResults caps the slice without reordering.
func truncateResults(results []domain.RetrievalResult, k int) []domain.RetrievalResult {
	if len(results) > k {
		return results[:k]
	}
	return results
}
