package driven

import (
	"context"

	"github.com/glossa-labs/glossa-cli/internal/core/domain"
)

// JobStore persists the ingestion job queue.
// One bad document never blocks the queue: jobs fail individually.
type JobStore interface {
	// Enqueue stores a new pending job.
	Enqueue(ctx context.Context, job *domain.IngestJob) error

	// NextPending claims the oldest pending job and marks it
	// processing. Returns domain.ErrJobQueueEmpty when none is left.
	NextPending(ctx context.Context) (*domain.IngestJob, error)

	// SetStatus updates a job's lifecycle state. errMsg is stored for
	// failed jobs and ignored otherwise.
	SetStatus(ctx context.Context, id string, status domain.JobStatus, errMsg string) error

	// Get retrieves a job by ID.
	Get(ctx context.Context, id string) (*domain.IngestJob, error)

	// List returns jobs newest first, optionally restricted to a
	// status. Pass the zero JobStatus for all.
	List(ctx context.Context, status domain.JobStatus, limit int) ([]domain.IngestJob, error)
}
