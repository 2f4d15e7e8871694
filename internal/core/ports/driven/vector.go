package driven

import (
	"context"

	"github.com/glossa-labs/glossa-cli/internal/core/domain"
)

// VectorStore provides dense vector storage and similarity search.
// Backed by Qdrant; an in-memory implementation exists for tests and
// offline runs.
type VectorStore interface {
	// EnsureCollection creates the collection if missing and verifies
	// its dimensionality. A dimension conflict with an existing
	// collection returns domain.ErrDimensionMismatch.
	EnsureCollection(ctx context.Context, dimensions int) error

	// Upsert inserts or replaces vectors for the given chunks.
	// Chunks must carry embeddings of the collection's dimensionality.
	Upsert(ctx context.Context, chunks []domain.Chunk) error

	// Search finds the k nearest neighbours of the query vector.
	// The filter is pushed down to the store; only matching chunks
	// are considered. Results are ordered by similarity descending.
	Search(ctx context.Context, query []float32, filter domain.Filter, k int) ([]VectorHit, error)

	// Count returns the number of stored vectors.
	Count(ctx context.Context) (int, error)

	// DeleteByDocument removes all vectors belonging to a document.
	DeleteByDocument(ctx context.Context, documentID string) error

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Similarity is the cosine similarity score (0-1).
	Similarity float64
}
