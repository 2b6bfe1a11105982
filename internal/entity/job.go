package entity

import "time"

// JobStatus is the overall state of a submitted batch.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Valid reports whether the status is one of the known job states.
func (s JobStatus) Valid() bool {
	switch s {
	case JobPending, JobProcessing, JobCompleted, JobFailed:
		return true
	}
	return false
}

// IsTerminal reports whether the job has reached completed or failed.
func (s JobStatus) IsTerminal() bool {
	return s == JobCompleted || s == JobFailed
}

// CanTransitionTo implements pending -> processing -> {completed, failed}.
// A pending job may also fail outright; processing -> processing is allowed as a no-op.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	switch s {
	case JobPending:
		return next == JobProcessing || next == JobFailed
	case JobProcessing:
		return next == JobProcessing || next == JobCompleted || next == JobFailed
	}
	return false
}

// Job is one batch submission tracked from pending to a terminal outcome.
type Job struct {
	ID          string                  `json:"job_id"`
	Owner       string                  `json:"owner,omitempty"`
	URLs        []string                `json:"urls"`
	Status      JobStatus               `json:"status"`
	Message     string                  `json:"message,omitempty"`
	Results     map[string]ResultRecord `json:"results"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
	CompletedAt *time.Time              `json:"completed_at,omitempty"`
}

// NewJob builds a pending job with one pending record per URL.
// urls must already be normalised and deduplicated.
func NewJob(id, owner string, urls []string, now time.Time) Job {
	results := make(map[string]ResultRecord, len(urls))
	for _, u := range urls {
		results[u] = NewPendingRecord(u, now)
	}
	return Job{
		ID:        id,
		Owner:     owner,
		URLs:      append([]string{}, urls...),
		Status:    JobPending,
		Results:   results,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy of the job.
func (j Job) Clone() Job {
	out := j
	out.URLs = append([]string{}, j.URLs...)
	out.Results = make(map[string]ResultRecord, len(j.Results))
	for k, v := range j.Results {
		out.Results[k] = v.Clone()
	}
	if j.CompletedAt != nil {
		ts := *j.CompletedAt
		out.CompletedAt = &ts
	}
	return out
}

// OrderedResults returns the records in submission order.
func (j Job) OrderedResults() []ResultRecord {
	out := make([]ResultRecord, 0, len(j.URLs))
	for _, u := range j.URLs {
		if rec, ok := j.Results[u]; ok {
			out = append(out, rec)
		}
	}
	return out
}

// DeriveStatus applies the job/record derivation rule: completed iff every
// record is terminal and none failed, failed when every record is terminal
// and at least one failed. ok is false while any record is still open.
func DeriveStatus(records []ResultRecord) (status JobStatus, failed int, ok bool) {
	for _, rec := range records {
		if !rec.Status.IsTerminal() {
			return "", 0, false
		}
		if rec.Status == RecordFailed {
			failed++
		}
	}
	if failed > 0 {
		return JobFailed, failed, true
	}
	return JobCompleted, 0, true
}
