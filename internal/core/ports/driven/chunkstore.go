package driven

import (
	"context"

	"github.com/glossa-labs/glossa-cli/internal/core/domain"
)

// ChunkStore persists documents and chunks.
// Backed by SQLite for metadata storage. It is the source of truth the
// sparse index rebuilds from.
type ChunkStore interface {
	// SaveDocument stores or updates a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// SaveChunks stores chunks for a document.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetChunk retrieves a specific chunk by ID.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// GetChunksByIDs retrieves chunks in the order of the given IDs.
	// Unknown IDs are skipped, not errored.
	GetChunksByIDs(ctx context.Context, ids []string) ([]domain.Chunk, error)

	// GetChunks retrieves all chunks for a document, in position order.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// IterChunks streams every stored chunk to fn. Iteration stops on
	// the first error. Used by the sparse index rebuild.
	IterChunks(ctx context.Context, fn func(domain.Chunk) error) error

	// DeleteDocument removes a document and its chunks.
	DeleteDocument(ctx context.Context, id string) error

	// ListDocuments returns all documents, optionally restricted to a
	// language. Pass the zero Language for all.
	ListDocuments(ctx context.Context, lang domain.Language) ([]domain.Document, error)

	// CountChunks returns the total number of stored chunks.
	CountChunks(ctx context.Context) (int, error)
}
