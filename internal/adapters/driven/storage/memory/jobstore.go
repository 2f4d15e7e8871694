package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/glossa-labs/glossa-cli/internal/core/domain"
	"github.com/glossa-labs/glossa-cli/internal/core/ports/driven"
)

// Ensure JobStore implements the interface.
var _ driven.JobStore = (*JobStore)(nil)

// JobStore is an in-memory implementation of driven.JobStore for testing.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]domain.IngestJob
}

// NewJobStore creates a new in-memory job store.
func NewJobStore() *JobStore {
	return &JobStore{
		jobs: make(map[string]domain.IngestJob),
	}
}

// Enqueue stores a new pending job.
func (s *JobStore) Enqueue(_ context.Context, job *domain.IngestJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *job
	if stored.Status == "" {
		stored.Status = domain.JobPending
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = stored.CreatedAt
	}
	s.jobs[stored.ID] = stored
	return nil
}

// NextPending claims the oldest pending job and marks it processing.
func (s *JobStore) NextPending(_ context.Context) (*domain.IngestJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var oldest *domain.IngestJob
	for id := range s.jobs {
		job := s.jobs[id]
		if job.Status != domain.JobPending {
			continue
		}
		if oldest == nil || job.CreatedAt.Before(oldest.CreatedAt) ||
			(job.CreatedAt.Equal(oldest.CreatedAt) && job.ID < oldest.ID) {
			oldest = &job
		}
	}
	if oldest == nil {
		return nil, domain.ErrJobQueueEmpty
	}
	oldest.Status = domain.JobProcessing
	oldest.UpdatedAt = time.Now().UTC()
	s.jobs[oldest.ID] = *oldest
	return oldest, nil
}

// SetStatus updates a job's lifecycle state.
func (s *JobStore) SetStatus(_ context.Context, id string, status domain.JobStatus, errMsg string) error {
	if !status.IsValid() {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return domain.ErrNotFound
	}
	job.Status = status
	if status == domain.JobFailed {
		job.Error = errMsg
	} else {
		job.Error = ""
	}
	job.UpdatedAt = time.Now().UTC()
	s.jobs[id] = job
	return nil
}

// Get retrieves a job by ID.
func (s *JobStore) Get(_ context.Context, id string) (*domain.IngestJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &job, nil
}

// List returns jobs newest first, optionally restricted to a status.
func (s *JobStore) List(_ context.Context, status domain.JobStatus, limit int) ([]domain.IngestJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []domain.IngestJob
	for id := range s.jobs {
		job := s.jobs[id]
		if status != "" && job.Status != status {
			continue
		}
		result = append(result, job)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
