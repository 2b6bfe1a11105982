package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/octobees/contact-extractor/api/internal/entity"
)

// MemoryJobStore keeps jobs in process memory. It is the default store when
// no database is configured and the store used throughout the tests.
type MemoryJobStore struct {
	mu   sync.RWMutex
	jobs map[string]*entity.Job
	now  func() time.Time
}

// NewMemoryJobStore returns an empty in-memory store.
func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{jobs: make(map[string]*entity.Job), now: time.Now}
}

var _ JobStore = (*MemoryJobStore)(nil)

// Create stores a copy of the job.
func (s *MemoryJobStore) Create(ctx context.Context, job entity.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[job.ID]; ok {
		return ErrDuplicateJob
	}
	stored := job.Clone()
	s.jobs[job.ID] = &stored
	return nil
}

// Get returns a snapshot of the job that is safe to mutate.
func (s *MemoryJobStore) Get(ctx context.Context, jobID string) (*entity.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}
	snapshot := job.Clone()
	return &snapshot, nil
}

// UpdateResult overwrites the record stored for url.
func (s *MemoryJobStore) UpdateResult(ctx context.Context, jobID, url string, record entity.ResultRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return ErrJobNotFound
	}
	if _, ok := job.Results[url]; !ok {
		return ErrResultNotFound
	}
	record.URL = url
	job.Results[url] = record.Clone()
	job.UpdatedAt = s.now()
	return nil
}

// SetJobStatus records the overall job status.
func (s *MemoryJobStore) SetJobStatus(ctx context.Context, jobID string, status entity.JobStatus, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return ErrJobNotFound
	}
	now := s.now()
	job.Status = status
	job.Message = message
	job.UpdatedAt = now
	if status.IsTerminal() && job.CompletedAt == nil {
		job.CompletedAt = &now
	}
	return nil
}

// ListStale returns jobs in status not updated since before, oldest first.
func (s *MemoryJobStore) ListStale(ctx context.Context, status entity.JobStatus, before time.Time) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stale []*entity.Job
	for _, job := range s.jobs {
		if job.Status == status && job.UpdatedAt.Before(before) {
			stale = append(stale, job)
		}
	}
	sort.Slice(stale, func(i, j int) bool { return stale[i].UpdatedAt.Before(stale[j].UpdatedAt) })

	ids := make([]string, 0, len(stale))
	for _, job := range stale {
		ids = append(ids, job.ID)
	}
	return ids, nil
}

// DeleteCreatedBefore drops jobs created before cutoff.
func (s *MemoryJobStore) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, job := range s.jobs {
		if job.CreatedAt.Before(cutoff) {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed, nil
}
