package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/glossa-labs/glossa-cli/internal/core/domain"
	"github.com/glossa-labs/glossa-cli/internal/core/ports/driven"
	"github.com/glossa-labs/glossa-cli/internal/logger"
)

// rrfConstant dampens the influence of top ranks in reciprocal rank
// fusion. 60 is the value from the original RRF paper.
const rrfConstant = 60

// legHit is an intermediate scored chunk reference, before hydration.
type legHit struct {
	chunkID string
	score   float64
}

// HybridRetriever runs dense and sparse retrieval and fuses the two
// ranked lists into one. This is the computational core of the
// pipeline: everything else stages data into or out of it.
//
// Failure policy: a failed or empty leg degrades the search to the
// other leg. Both legs failing yields an empty result set. Only
// context cancellation surfaces as an error.
type HybridRetriever struct {
	embedder driven.EmbeddingService
	vectors  driven.VectorStore
	sparse   driven.SparseIndex
	chunks   driven.ChunkStore
	cfg      domain.RetrievalSettings
}

// NewHybridRetriever creates a new hybrid retriever.
// The embedder and vectors may be nil, degrading to sparse-only
// retrieval; sparse may be nil, degrading to dense-only.
func NewHybridRetriever(
	embedder driven.EmbeddingService,
	vectors driven.VectorStore,
	sparse driven.SparseIndex,
	chunks driven.ChunkStore,
	cfg domain.RetrievalSettings,
) *HybridRetriever {
	return &HybridRetriever{
		embedder: embedder,
		vectors:  vectors,
		sparse:   sparse,
		chunks:   chunks,
		cfg:      cfg,
	}
}

// Retrieve runs one hybrid search and returns at most k fused results,
// highest score first, ties broken by chunk ID. k <= 0 uses the
// configured default.
func (r *HybridRetriever) Retrieve(
	ctx context.Context, query string, filter domain.Filter, k int,
) ([]domain.RetrievalResult, error) {
	hits, err := r.retrieveFused(ctx, query, filter, k)
	if err != nil {
		return nil, err
	}
	return r.hydrate(ctx, hits)
}

// RetrieveMulti retrieves each query concurrently, merges the fused
// sets by chunk ID keeping the maximum score, and truncates to k.
// One query's failure never aborts the merge; its contribution is
// simply empty.
func (r *HybridRetriever) RetrieveMulti(
	ctx context.Context, queries []string, filter domain.Filter, k int,
) ([]domain.RetrievalResult, error) {
	if k <= 0 {
		k = r.cfg.TopK
	}
	if len(queries) == 0 {
		return []domain.RetrievalResult{}, nil
	}
	if len(queries) == 1 {
		return r.Retrieve(ctx, queries[0], filter, k)
	}

	logger.Debug("Retrieving %d sub-queries concurrently", len(queries))

	// One slot per query keeps the merge independent of completion
	// order.
	sets := make([][]legHit, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	for i, q := range queries {
		g.Go(func() error {
			hits, err := r.retrieveFused(gctx, q, filter, k)
			if err != nil {
				return err
			}
			sets[i] = hits
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("sub-query retrieval: %w", err)
	}

	merged := mergeByMaxScore(sets)
	sortHits(merged)
	if len(merged) > k {
		merged = merged[:k]
	}

	logger.Debug("Merged %d sub-query sets into %d results", len(queries), len(merged))
	return r.hydrate(ctx, merged)
}

// retrieveFused runs both legs for one query and fuses their lists.
func (r *HybridRetriever) retrieveFused(
	ctx context.Context, query string, filter domain.Filter, k int,
) ([]legHit, error) {
	if k <= 0 {
		k = r.cfg.TopK
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	// Oversample per leg so fusion has something to reorder.
	m := k * 2

	var denseHits, sparseHits []legHit
	var denseErr, sparseErr error

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		denseHits, denseErr = r.denseSearch(ctx, query, filter, m)
	}()

	go func() {
		defer wg.Done()
		sparseHits, sparseErr = r.sparseSearch(ctx, query, filter, m)
	}()

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// A failed leg is an empty leg. Both failing is an empty result,
	// not an error: the caller cannot do anything useful with the
	// distinction, and empty corpora look exactly the same.
	if denseErr != nil {
		logger.Warn("Dense search degraded to empty: %v", denseErr)
		denseHits = nil
	}
	if sparseErr != nil {
		logger.Warn("Sparse search degraded to empty: %v", sparseErr)
		sparseHits = nil
	}

	logger.Debug("Legs: dense=%d sparse=%d", len(denseHits), len(sparseHits))

	var fused []legHit
	switch r.cfg.FusionMethod {
	case domain.FusionRRF:
		fused = fuseRRF(denseHits, sparseHits)
	default:
		fused = fuseWeighted(denseHits, sparseHits, r.cfg.DenseWeight, r.cfg.SparseWeight)
	}

	sortHits(fused)
	if len(fused) > k {
		fused = fused[:k]
	}
	return fused, nil
}

// denseSearch embeds the query and searches the vector store.
func (r *HybridRetriever) denseSearch(
	ctx context.Context, query string, filter domain.Filter, m int,
) ([]legHit, error) {
	if r.embedder == nil || r.vectors == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	vector, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := r.vectors.Search(ctx, vector, filter, m)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	out := make([]legHit, len(hits))
	for i, h := range hits {
		out[i] = legHit{chunkID: h.ChunkID, score: h.Similarity}
	}
	return out, nil
}

// sparseSearch queries the BM25 index.
func (r *HybridRetriever) sparseSearch(
	ctx context.Context, query string, filter domain.Filter, m int,
) ([]legHit, error) {
	if !r.cfg.EnableSparse || r.sparse == nil {
		return nil, nil
	}

	hits, err := r.sparse.Search(ctx, query, filter, m)
	if err != nil {
		return nil, fmt.Errorf("sparse search: %w", err)
	}

	out := make([]legHit, len(hits))
	for i, h := range hits {
		out[i] = legHit{chunkID: h.ChunkID, score: h.Score}
	}
	return out, nil
}

// fuseWeighted min-max normalises each leg's scores to [0, 1], then
// combines per chunk as wDense*dense + wSparse*sparse. A chunk found
// by only one leg contributes zero for the missing leg; it stays
// eligible. Cosine and BM25 scores are not comparable raw, which is
// why normalisation comes first.
func fuseWeighted(dense, sparse []legHit, wDense, wSparse float64) []legHit {
	normDense := minMaxNormalise(dense)
	normSparse := minMaxNormalise(sparse)

	scores := make(map[string]float64, len(normDense)+len(normSparse))
	for id, s := range normDense {
		scores[id] += s * wDense
	}
	for id, s := range normSparse {
		scores[id] += s * wSparse
	}

	return hitsFromScores(scores)
}

// fuseRRF combines the legs by reciprocal rank: 1/(k+rank+1) per
// list, summed per chunk. Rank-based, so no normalisation is needed.
func fuseRRF(dense, sparse []legHit) []legHit {
	scores := make(map[string]float64, len(dense)+len(sparse))
	for rank, h := range dense {
		scores[h.chunkID] += 1.0 / float64(rrfConstant+rank+1)
	}
	for rank, h := range sparse {
		scores[h.chunkID] += 1.0 / float64(rrfConstant+rank+1)
	}
	return hitsFromScores(scores)
}

// minMaxNormalise maps a leg's scores onto [0, 1]. An empty leg yields
// an empty map, never a division by zero. A constant leg (including a
// single hit) normalises to 1.0: its members are that leg's best
// evidence and should count fully.
func minMaxNormalise(hits []legHit) map[string]float64 {
	if len(hits) == 0 {
		return map[string]float64{}
	}

	minScore, maxScore := hits[0].score, hits[0].score
	for _, h := range hits[1:] {
		if h.score < minScore {
			minScore = h.score
		}
		if h.score > maxScore {
			maxScore = h.score
		}
	}

	norm := make(map[string]float64, len(hits))
	if maxScore == minScore {
		for _, h := range hits {
			norm[h.chunkID] = 1.0
		}
		return norm
	}

	span := maxScore - minScore
	for _, h := range hits {
		norm[h.chunkID] = (h.score - minScore) / span
	}
	return norm
}

// hitsFromScores flattens a score map into an unsorted hit slice.
func hitsFromScores(scores map[string]float64) []legHit {
	out := make([]legHit, 0, len(scores))
	for id, s := range scores {
		out = append(out, legHit{chunkID: id, score: s})
	}
	return out
}

// mergeByMaxScore collapses several fused sets by chunk ID, keeping
// the maximum score a chunk achieved in any set. Order-independent:
// the result is the same whatever order the sets arrive in.
func mergeByMaxScore(sets [][]legHit) []legHit {
	best := make(map[string]float64)
	for _, set := range sets {
		for _, h := range set {
			if cur, ok := best[h.chunkID]; !ok || h.score > cur {
				best[h.chunkID] = h.score
			}
		}
	}
	return hitsFromScores(best)
}

// sortHits orders by score descending, ties by chunk ID ascending,
// which keeps result order deterministic for equal scores.
func sortHits(hits []legHit) {
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].chunkID < hits[j].chunkID
	})
}

// hydrate resolves hit IDs against the chunk store and builds the
// final results. Chunks deleted since indexing are skipped.
func (r *HybridRetriever) hydrate(ctx context.Context, hits []legHit) ([]domain.RetrievalResult, error) {
	if len(hits) == 0 {
		return []domain.RetrievalResult{}, nil
	}

	ids := make([]string, len(hits))
	scores := make(map[string]float64, len(hits))
	for i, h := range hits {
		ids[i] = h.chunkID
		scores[h.chunkID] = h.score
	}

	chunks, err := r.chunks.GetChunksByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("hydrate results: %w", err)
	}

	results := make([]domain.RetrievalResult, 0, len(chunks))
	for _, c := range chunks {
		results = append(results, domain.RetrievalResult{
			ChunkID:    c.ID,
			DocumentID: c.DocumentID,
			Content:    c.Content,
			Score:      scores[c.ID],
			Method:     domain.RetrievalFused,
			Page:       c.Page,
			Language:   c.Language,
			Metadata:   c.Metadata,
		})
	}
	return results, nil
}
