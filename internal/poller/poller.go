// Package poller watches a job until it reaches a terminal state.
//
// Each Watch runs one goroutine that reads the job status once per interval.
// Reads never overlap: ticks that arrive while a read is outstanding are
// dropped by the ticker. Exactly one of OnComplete or OnError is delivered
// unless the watch is stopped first, and nothing is delivered after Stop
// returns.
package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/octobees/contact-extractor/api/internal/dto"
	"github.com/octobees/contact-extractor/api/internal/entity"
)

const (
	// DefaultInterval is the delay between two status reads.
	DefaultInterval = 5 * time.Second
	// DefaultMaxAttempts bounds a watch to one hour at the default interval.
	DefaultMaxAttempts = 720

	trackingFailureMessage = "Failed to track job progress"
	jobFailedMessage       = "Job failed"
)

var (
	// ErrTrackingFailure marks a status read that failed or returned garbage.
	ErrTrackingFailure = errors.New("tracking failure")
	// ErrTrackingTimeout marks a watch that ran out of attempts.
	ErrTrackingTimeout = errors.New("tracking timeout")
	// ErrJobFailed marks a job the runner reported as failed.
	ErrJobFailed = errors.New("job failed")
)

// Error is passed to OnError. Error() is the human readable message; use
// errors.Is with the sentinels above to classify it.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string { return e.Message }

// Unwrap exposes both the kind and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// StatusReader fetches the current status view of a job.
type StatusReader interface {
	JobStatus(ctx context.Context, jobID string) (*dto.JobStatusResponse, error)
}

// Ticker is the subset of *time.Ticker the poller needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory builds the ticker driving a watch.
type TickerFactory func(d time.Duration) Ticker

type timeTicker struct {
	t *time.Ticker
}

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// NewTimeTicker is the default TickerFactory.
func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// Config tunes a Poller. Zero values take the defaults.
type Config struct {
	Interval    time.Duration
	MaxAttempts int
	NewTicker   TickerFactory
	Logger      logrus.FieldLogger
}

// Callbacks receive watch events. Any of them may be nil. Callbacks run on
// the watch goroutine; to stop watching from inside a callback cancel the
// context given to Watch instead of calling Handle.Stop.
type Callbacks struct {
	OnProgress func(Progress)
	OnComplete func(results map[string]entity.ResultRecord)
	OnError    func(err error)
}

// Progress is the locally held view of the last successful read.
type Progress struct {
	JobID    string
	Status   entity.JobStatus
	Progress map[string]dto.ProgressEntry
	Summary  dto.ProgressSummary
	Attempts int
}

// Poller starts watches against one StatusReader.
type Poller struct {
	reader StatusReader
	cfg    Config
}

// New builds a Poller.
func New(reader StatusReader, cfg Config) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.NewTicker == nil {
		cfg.NewTicker = NewTimeTicker
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	return &Poller{reader: reader, cfg: cfg}
}

// Watch starts observing jobID. The first read happens one interval after the call.
func (p *Poller) Watch(ctx context.Context, jobID string, cb Callbacks) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
		view:   Progress{JobID: jobID},
	}
	ticker := p.cfg.NewTicker(p.cfg.Interval)
	go p.run(h, jobID, ticker, cb)
	return h
}

func (p *Poller) run(h *Handle, jobID string, ticker Ticker, cb Callbacks) {
	defer close(h.done)
	defer h.cancel()
	defer ticker.Stop()

	log := p.cfg.Logger.WithField("job_id", jobID)
	for attempt := 1; ; attempt++ {
		select {
		case <-h.ctx.Done():
			return
		case <-ticker.C():
		}

		status, err := p.reader.JobStatus(h.ctx, jobID)
		if h.ctx.Err() != nil {
			return
		}
		if err == nil {
			err = validate(status, jobID)
		}
		if err != nil {
			log.WithError(err).Warn("job status read failed")
			h.deliverError(cb, &Error{Kind: ErrTrackingFailure, Message: trackingFailureMessage, Cause: err})
			return
		}

		view := Progress{
			JobID:    jobID,
			Status:   status.Status,
			Progress: status.Progress,
			Summary:  status.Summary,
			Attempts: attempt,
		}
		h.setProgress(view)
		if cb.OnProgress != nil {
			h.deliver(func() { cb.OnProgress(view) })
		}

		switch status.Status {
		case entity.JobCompleted:
			results := status.Results
			if results == nil {
				results = map[string]entity.ResultRecord{}
			}
			if cb.OnComplete != nil {
				h.deliver(func() { cb.OnComplete(results) })
			}
			return
		case entity.JobFailed:
			msg := status.Message
			if msg == "" {
				msg = jobFailedMessage
			}
			h.deliverError(cb, &Error{Kind: ErrJobFailed, Message: msg})
			return
		}

		if attempt >= p.cfg.MaxAttempts {
			log.WithField("attempts", attempt).Warn("giving up on job")
			h.deliverError(cb, &Error{
				Kind:    ErrTrackingTimeout,
				Message: fmt.Sprintf("Job did not finish after %d status checks", attempt),
			})
			return
		}
	}
}

func validate(status *dto.JobStatusResponse, jobID string) error {
	if status == nil {
		return errors.New("empty status response")
	}
	if status.JobID != "" && status.JobID != jobID {
		return fmt.Errorf("status response for job %s, want %s", status.JobID, jobID)
	}
	if !status.Status.Valid() {
		return fmt.Errorf("unknown job status %q", status.Status)
	}
	return nil
}

// Handle controls one watch.
type Handle struct {
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	stopped bool

	viewMu sync.RWMutex
	view   Progress
}

// Stop cancels the watch and any in-flight read. Once Stop returns no
// callback will run. It must not be called from inside a callback.
func (h *Handle) Stop() {
	h.cancel()
	h.mu.Lock()
	h.stopped = true
	h.mu.Unlock()
}

// Done is closed when the watch goroutine exits.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Progress returns the view from the most recent successful read.
func (h *Handle) Progress() Progress {
	h.viewMu.RLock()
	defer h.viewMu.RUnlock()
	return h.view
}

func (h *Handle) setProgress(p Progress) {
	h.viewMu.Lock()
	h.view = p
	h.viewMu.Unlock()
}

func (h *Handle) deliver(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped || h.ctx.Err() != nil {
		return
	}
	fn()
}

func (h *Handle) deliverError(cb Callbacks, err error) {
	if cb.OnError == nil {
		return
	}
	h.deliver(func() { cb.OnError(err) })
}
