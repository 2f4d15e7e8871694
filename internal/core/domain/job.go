package domain

import "time"

// JobStatus is the lifecycle state of an ingestion job.
type JobStatus string

// Available job statuses.
const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// IsValid returns true if the status is recognised.
func (s JobStatus) IsValid() bool {
	switch s {
	case JobPending, JobProcessing, JobCompleted, JobFailed:
		return true
	default:
		return false
	}
}

// IsTerminal returns true once the job will not change state again.
func (s JobStatus) IsTerminal() bool {
	return s == JobCompleted || s == JobFailed
}

// String returns the string representation.
func (s JobStatus) String() string {
	return string(s)
}

// IngestJob tracks one document through the ingestion queue.
type IngestJob struct {
	// ID is the unique job identifier.
	ID string

	// DocumentID is the document the job will produce.
	DocumentID string

	// SourcePath is the file being ingested.
	SourcePath string

	// Language is the declared document language.
	Language Language

	// Status is the current lifecycle state.
	Status JobStatus

	// Error holds the failure message for failed jobs.
	Error string

	// CreatedAt is when the job was enqueued.
	CreatedAt time.Time

	// UpdatedAt is when the status last changed.
	UpdatedAt time.Time
}
