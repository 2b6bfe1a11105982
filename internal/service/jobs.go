package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/octobees/contact-extractor/api/internal/dto"
	"github.com/octobees/contact-extractor/api/internal/entity"
	"github.com/octobees/contact-extractor/api/internal/repository"
)

// Dispatcher signals the external runner that a pending job is waiting.
type Dispatcher interface {
	Dispatch(ctx context.Context, job entity.Job) error
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, job entity.Job) error

// Dispatch implements Dispatcher.
func (f DispatcherFunc) Dispatch(ctx context.Context, job entity.Job) error {
	return f(ctx, job)
}

// JobService owns the job lifecycle: submission, runner progress and the
// derived terminal status.
type JobService struct {
	store      repository.JobStore
	dispatcher Dispatcher
	logger     logrus.FieldLogger
	now        func() time.Time
	newID      func() string
	locks      *jobLocks
}

// JobServiceOption configures optional collaborators.
type JobServiceOption func(*JobService)

// WithDispatcher sets the runner signal used after submission.
func WithDispatcher(d Dispatcher) JobServiceOption {
	return func(s *JobService) {
		if d != nil {
			s.dispatcher = d
		}
	}
}

// WithLogger overrides the default logrus logger.
func WithLogger(logger logrus.FieldLogger) JobServiceOption {
	return func(s *JobService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) JobServiceOption {
	return func(s *JobService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides uuid job ids.
func WithIDGenerator(newID func() string) JobServiceOption {
	return func(s *JobService) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// NewJobService wires the lifecycle service around a store.
func NewJobService(store repository.JobStore, opts ...JobServiceOption) *JobService {
	s := &JobService{
		store: store,
		dispatcher: DispatcherFunc(func(ctx context.Context, job entity.Job) error {
			return nil
		}),
		logger: logrus.StandardLogger(),
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
		locks:  newJobLocks(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit creates a pending job for the distinct, non-empty URLs and signals the runner.
func (s *JobService) Submit(ctx context.Context, owner string, urls []string) (string, error) {
	normalized := NormalizeURLs(urls)
	if len(normalized) == 0 {
		return "", fmt.Errorf("%w: at least one url is required", ErrInvalidInput)
	}

	job := entity.NewJob(s.newID(), strings.TrimSpace(owner), normalized, s.now().UTC())
	if err := s.store.Create(ctx, job); err != nil {
		return "", err
	}

	log := s.logger.WithFields(logrus.Fields{"job_id": job.ID, "urls": len(job.URLs)})
	if err := s.dispatcher.Dispatch(ctx, job); err != nil {
		log.WithError(err).Warn("runner dispatch failed; job left pending")
	} else {
		log.Info("job submitted")
	}
	return job.ID, nil
}

// Get returns the current job snapshot.
func (s *JobService) Get(ctx context.Context, jobID string) (*entity.Job, error) {
	return s.store.Get(ctx, jobID)
}

// Status builds the status view served to pollers.
func (s *JobService) Status(ctx context.Context, jobID string) (*dto.JobStatusResponse, error) {
	job, err := s.store.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}

	progress := make(map[string]dto.ProgressEntry, len(job.Results))
	for url, rec := range job.Results {
		progress[url] = dto.ProgressEntry{Status: rec.Status, Message: rec.Message}
	}

	resp := &dto.JobStatusResponse{
		JobID:       job.ID,
		Status:      job.Status,
		URLs:        job.URLs,
		Progress:    progress,
		Summary:     Summarize(job.OrderedResults()),
		CreatedAt:   job.CreatedAt,
		CompletedAt: job.CompletedAt,
	}
	switch job.Status {
	case entity.JobCompleted:
		resp.Results = job.Results
	case entity.JobFailed:
		resp.Message = job.Message
	}
	return resp, nil
}

// ApplyResult records runner progress for one URL. The first update moves a
// pending job to processing. Terminal records and terminal jobs are immutable.
func (s *JobService) ApplyResult(ctx context.Context, jobID string, record entity.ResultRecord) (entity.ResultRecord, error) {
	url := strings.TrimSpace(record.URL)
	if url == "" {
		return entity.ResultRecord{}, fmt.Errorf("%w: url is required", ErrInvalidInput)
	}
	if !record.Status.Valid() {
		return entity.ResultRecord{}, fmt.Errorf("%w: unknown record status %q", ErrInvalidInput, record.Status)
	}

	unlock := s.locks.lock(jobID)
	defer unlock()

	job, err := s.store.Get(ctx, jobID)
	if err != nil {
		return entity.ResultRecord{}, err
	}
	if job.Status.IsTerminal() {
		return entity.ResultRecord{}, fmt.Errorf("%w: job is %s", ErrInvalidTransition, job.Status)
	}
	current, ok := job.Results[url]
	if !ok {
		return entity.ResultRecord{}, ErrURLNotFound
	}
	if current.Status.IsTerminal() {
		return entity.ResultRecord{}, fmt.Errorf("%w: %s is %s", ErrTerminalRecord, url, current.Status)
	}
	if !current.Status.CanTransitionTo(record.Status) {
		return entity.ResultRecord{}, fmt.Errorf("%w: record %s -> %s", ErrInvalidTransition, current.Status, record.Status)
	}

	record = normalizeRecord(record)
	record.URL = url
	if record.Timestamp.IsZero() {
		record.Timestamp = s.now().UTC()
	}
	// A terminal record must never sit under a pending job.
	if job.Status == entity.JobPending {
		if err := s.store.SetJobStatus(ctx, jobID, entity.JobProcessing, ""); err != nil {
			return entity.ResultRecord{}, err
		}
	}
	if err := s.store.UpdateResult(ctx, jobID, url, record); err != nil {
		return entity.ResultRecord{}, err
	}
	return record, nil
}

// SetStatus applies an explicit job status from the runner. completed is only
// accepted once every record finished without failure; failed is accepted from
// any non-terminal state.
func (s *JobService) SetStatus(ctx context.Context, jobID string, status entity.JobStatus, message string) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown job status %q", ErrInvalidInput, status)
	}

	unlock := s.locks.lock(jobID)
	defer unlock()

	job, err := s.store.Get(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status == entity.JobProcessing && status == entity.JobProcessing {
		return nil
	}
	if !job.Status.CanTransitionTo(status) {
		return fmt.Errorf("%w: job %s -> %s", ErrInvalidTransition, job.Status, status)
	}
	if status == entity.JobCompleted {
		derived, failed, ok := entity.DeriveStatus(job.OrderedResults())
		if !ok {
			return fmt.Errorf("%w: records still in progress", ErrInvalidTransition)
		}
		if derived != entity.JobCompleted {
			return fmt.Errorf("%w: %d records failed", ErrInvalidTransition, failed)
		}
	}

	if err := s.store.SetJobStatus(ctx, jobID, status, strings.TrimSpace(message)); err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{"job_id": jobID, "status": status}).Info("job status updated")
	return nil
}

// Finish derives the terminal status from the records once all are done or failed.
func (s *JobService) Finish(ctx context.Context, jobID string) (entity.JobStatus, error) {
	unlock := s.locks.lock(jobID)
	defer unlock()

	job, err := s.store.Get(ctx, jobID)
	if err != nil {
		return "", err
	}
	if job.Status.IsTerminal() {
		return job.Status, fmt.Errorf("%w: job is already %s", ErrInvalidTransition, job.Status)
	}

	records := job.OrderedResults()
	derived, failed, ok := entity.DeriveStatus(records)
	if !ok {
		return job.Status, fmt.Errorf("%w: records still in progress", ErrInvalidTransition)
	}
	if !job.Status.CanTransitionTo(derived) {
		return job.Status, fmt.Errorf("%w: job %s -> %s", ErrInvalidTransition, job.Status, derived)
	}

	message := ""
	if derived == entity.JobFailed {
		message = fmt.Sprintf("%d of %d sites failed", failed, len(records))
	}
	if err := s.store.SetJobStatus(ctx, jobID, derived, message); err != nil {
		return job.Status, err
	}
	s.logger.WithFields(logrus.Fields{"job_id": jobID, "status": derived, "failed": failed}).Info("job finished")
	return derived, nil
}

// Results projects the job's records for the results browser.
func (s *JobService) Results(ctx context.Context, jobID string, filter dto.ResultsFilter) (dto.ResultsPage, error) {
	job, err := s.store.Get(ctx, jobID)
	if err != nil {
		return dto.ResultsPage{}, err
	}
	return Project(job.OrderedResults(), filter.Q, filter.Page, filter.PerPage), nil
}
