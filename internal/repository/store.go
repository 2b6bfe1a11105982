package repository

import (
	"context"
	"errors"
	"time"

	"github.com/octobees/contact-extractor/api/internal/entity"
)

var (
	// ErrJobNotFound is returned when no job matches the identifier.
	ErrJobNotFound = errors.New("job not found")
	// ErrResultNotFound is returned when the URL is not part of the job.
	ErrResultNotFound = errors.New("url not part of job")
	// ErrDuplicateJob is returned by Create when the job id already exists.
	ErrDuplicateJob = errors.New("job already exists")
)

// JobStore is the single source of truth for job state and per-URL progress.
// Writes to a (job, url) record are atomic; the store does not police
// status transitions, callers do.
type JobStore interface {
	Create(ctx context.Context, job entity.Job) error
	Get(ctx context.Context, jobID string) (*entity.Job, error)
	UpdateResult(ctx context.Context, jobID, url string, record entity.ResultRecord) error
	SetJobStatus(ctx context.Context, jobID string, status entity.JobStatus, message string) error

	// ListStale returns ids of jobs in status whose last update is older than before.
	ListStale(ctx context.Context, status entity.JobStatus, before time.Time) ([]string, error)
	// DeleteCreatedBefore removes jobs created before cutoff and reports how many went.
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int, error)
}
