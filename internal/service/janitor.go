package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/octobees/contact-extractor/api/internal/entity"
	"github.com/octobees/contact-extractor/api/internal/repository"
)

const staleJobMessage = "runner did not pick up the job"

// JanitorConfig controls the periodic sweep. A zero StaleAfter or Retention
// disables that half of the sweep.
type JanitorConfig struct {
	Interval   time.Duration
	StaleAfter time.Duration
	Retention  time.Duration
}

// SweepResult reports what a single sweep changed.
type SweepResult struct {
	Failed  int
	Deleted int
}

// Janitor fails jobs the runner never picked up and purges expired jobs.
type Janitor struct {
	jobs   *JobService
	store  repository.JobStore
	cfg    JanitorConfig
	logger logrus.FieldLogger
	now    func() time.Time

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewJanitor builds a janitor for the given lifecycle service and store.
func NewJanitor(jobs *JobService, store repository.JobStore, cfg JanitorConfig, logger logrus.FieldLogger) *Janitor {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Janitor{
		jobs:   jobs,
		store:  store,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Sweep runs one pass over the store.
func (j *Janitor) Sweep(ctx context.Context) (SweepResult, error) {
	var result SweepResult
	now := j.now().UTC()

	if j.cfg.StaleAfter > 0 {
		ids, err := j.store.ListStale(ctx, entity.JobPending, now.Add(-j.cfg.StaleAfter))
		if err != nil {
			return result, fmt.Errorf("list stale jobs: %w", err)
		}
		for _, id := range ids {
			err := j.jobs.SetStatus(ctx, id, entity.JobFailed, staleJobMessage)
			if err != nil {
				// The runner may have started or the job was purged meanwhile.
				j.logger.WithError(err).WithField("job_id", id).Debug("skip stale job")
				continue
			}
			result.Failed++
		}
	}

	if j.cfg.Retention > 0 {
		deleted, err := j.store.DeleteCreatedBefore(ctx, now.Add(-j.cfg.Retention))
		if err != nil {
			return result, fmt.Errorf("purge expired jobs: %w", err)
		}
		result.Deleted = deleted
	}
	return result, nil
}

// Start runs Sweep every Interval until Stop is called or ctx ends.
func (j *Janitor) Start(ctx context.Context) {
	if j.cfg.StaleAfter <= 0 && j.cfg.Retention <= 0 {
		close(j.done)
		return
	}
	go func() {
		defer close(j.done)
		ticker := time.NewTicker(j.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-j.stop:
				return
			case <-ticker.C:
				res, err := j.Sweep(ctx)
				if err != nil {
					j.logger.WithError(err).Error("janitor sweep failed")
					continue
				}
				if res.Failed > 0 || res.Deleted > 0 {
					j.logger.WithFields(logrus.Fields{"failed": res.Failed, "deleted": res.Deleted}).Info("janitor sweep")
				}
			}
		}
	}()
}

// Stop halts the loop and waits for it to exit. Start must have been called.
func (j *Janitor) Stop() {
	j.stopOnce.Do(func() { close(j.stop) })
	<-j.done
}
