package domain

// RetrievalMethod identifies which retrieval leg produced a result.
type RetrievalMethod string

// Available retrieval methods.
const (
	// RetrievalDense is vector similarity search.
	RetrievalDense RetrievalMethod = "dense"

	// RetrievalSparse is BM25 keyword search.
	RetrievalSparse RetrievalMethod = "sparse"

	// RetrievalFused marks a result produced by score fusion
	// of the dense and sparse legs.
	RetrievalFused RetrievalMethod = "fused"
)

// String returns the string representation.
func (m RetrievalMethod) String() string {
	return string(m)
}

// RetrievalResult is a single retrieval hit. Every retrieval leg and
// every fusion stage returns this same shape, so results from any
// method can be merged, reranked and cited uniformly.
type RetrievalResult struct {
	// ChunkID identifies the matched chunk.
	ChunkID string

	// DocumentID identifies the parent document.
	DocumentID string

	// Content is the chunk text.
	Content string

	// Score is the relevance score. Raw method score before fusion,
	// fused score after, reranker score after reranking.
	Score float64

	// Method records which leg produced the hit.
	Method RetrievalMethod

	// Page is the 1-based page the chunk starts on.
	Page int

	// Language is the chunk's language.
	Language Language

	// Metadata carries any further chunk metadata.
	Metadata map[string]any
}

// FusedResultSet is the merged output of hybrid retrieval for one
// question, after fusion across methods and sub-queries.
type FusedResultSet struct {
	// Query is the question the set answers (post filter extraction).
	Query string

	// SubQueries are the decomposed queries that were retrieved for,
	// original first.
	SubQueries []string

	// Filter is the metadata filter applied during retrieval.
	Filter Filter

	// Results is ordered by fused score descending, ties broken by
	// chunk ID ascending. No chunk ID appears twice.
	Results []RetrievalResult
}

// ChunkIDs returns the result chunk IDs in order.
func (s FusedResultSet) ChunkIDs() []string {
	ids := make([]string, len(s.Results))
	for i, r := range s.Results {
		ids[i] = r.ChunkID
	}
	return ids
}
