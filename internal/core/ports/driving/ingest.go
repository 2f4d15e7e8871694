package driving

import (
	"context"

	"github.com/glossa-labs/glossa-cli/internal/core/domain"
)

// IngestOrchestrator coordinates document ingestion into the corpus.
type IngestOrchestrator interface {
	// IngestFile processes a single PDF end to end: extraction,
	// cleanup, chunking, embedding, indexing.
	IngestFile(ctx context.Context, path string, lang domain.Language) (*domain.Document, error)

	// ScanIncoming enqueues every unprocessed file under the incoming
	// directory tree and drains the queue. Failures are recorded per
	// job; the scan itself only fails on infrastructure errors.
	ScanIncoming(ctx context.Context) error

	// Watch blocks, processing files as they appear under
	// incoming/<lang>/. Returns when the context is cancelled.
	Watch(ctx context.Context) error

	// Reindex rebuilds the sparse index from the chunk store.
	Reindex(ctx context.Context) error

	// Status summarises the job queue.
	Status(ctx context.Context) (*IngestStatus, error)
}

// IngestStatus summarises the ingestion queue state.
type IngestStatus struct {
	// Pending is the number of jobs waiting.
	Pending int

	// Processing is the number of jobs in flight.
	Processing int

	// Completed is the number of finished jobs.
	Completed int

	// Failed is the number of failed jobs.
	Failed int

	// Documents is the number of ingested documents.
	Documents int

	// Chunks is the number of stored chunks.
	Chunks int
}
