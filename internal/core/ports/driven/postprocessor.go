package driven

import (
	"context"

	"github.com/glossa-labs/glossa-cli/internal/core/domain"
)

// PageProcessor transforms extracted pages before chunking.
// Processors are chained in a pipeline (e.g., whitespace cleanup,
// LLM-backed OCR repair).
type PageProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes the pages of a document and returns them
	// transformed. Page numbers must be preserved.
	Process(ctx context.Context, doc *domain.Document, pages []domain.PageText) ([]domain.PageText, error)
}

// IngestPipeline runs page processors in order, then splits the result
// into chunks.
type IngestPipeline interface {
	// Process runs the pages through all processors and the chunker.
	// Returns the final chunks, without embeddings.
	Process(ctx context.Context, doc *domain.Document, pages []domain.PageText) ([]domain.Chunk, error)
}
