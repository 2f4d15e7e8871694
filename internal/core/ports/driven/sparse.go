package driven

import (
	"context"

	"github.com/glossa-labs/glossa-cli/internal/core/domain"
)

// SparseIndex provides BM25 keyword search over the owned in-process
// index. The index is derived state: it can always be rebuilt from the
// chunk store, and a search reflects the corpus as of the last rebuild.
type SparseIndex interface {
	// Rebuild constructs a fresh index from the chunk store and
	// publishes it atomically. Searches running concurrently keep
	// reading the previous snapshot.
	Rebuild(ctx context.Context) error

	// Search performs a BM25 keyword search. Chunks failing the
	// filter are excluded before ranking. Results are ordered by
	// score descending. An index that has never been built returns
	// domain.ErrSparseIndexEmpty.
	Search(ctx context.Context, query string, filter domain.Filter, limit int) ([]SparseHit, error)

	// DocCount returns the number of chunks in the current snapshot.
	DocCount() int

	// Close releases resources.
	Close() error
}

// SparseHit represents a keyword search result.
type SparseHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Score is the BM25 relevance score. Unbounded above zero.
	Score float64
}
