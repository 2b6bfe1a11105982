package dto

import (
	"time"

	"github.com/octobees/contact-extractor/api/internal/entity"
)

// SubmitRequest is the payload accepted by the job submission endpoint.
type SubmitRequest struct {
	URLs []string `json:"urls"`
}

// SubmitResponse returns the identifier of the created job.
type SubmitResponse struct {
	JobID string `json:"job_id"`
}

// ProgressEntry is the per-URL slice of a status response.
type ProgressEntry struct {
	Status  entity.RecordStatus `json:"status"`
	Message string              `json:"message,omitempty"`
}

// ProgressSummary aggregates record states for a job.
type ProgressSummary struct {
	Total       int `json:"total"`
	Pending     int `json:"pending"`
	Processing  int `json:"processing"`
	Done        int `json:"done"`
	Failed      int `json:"failed"`
	WithEmails  int `json:"with_emails"`
	WithSocials int `json:"with_socials"`
	Percent     int `json:"percent"`
}

// JobStatusResponse is the status view of a job. Results is only set once
// the job has completed, Message only when it failed.
type JobStatusResponse struct {
	JobID       string                         `json:"job_id"`
	Status      entity.JobStatus               `json:"status"`
	URLs        []string                       `json:"urls"`
	Progress    map[string]ProgressEntry       `json:"progress"`
	Summary     ProgressSummary                `json:"summary"`
	Results     map[string]entity.ResultRecord `json:"results,omitempty"`
	Message     string                         `json:"message,omitempty"`
	CreatedAt   time.Time                      `json:"created_at"`
	CompletedAt *time.Time                     `json:"completed_at,omitempty"`
}

// StatusUpdateRequest is sent by the runner to move the overall job status.
type StatusUpdateRequest struct {
	Status  entity.JobStatus `json:"status"`
	Message string           `json:"message,omitempty"`
}

// StatusChangeResponse reports a job's status after a runner update or finish.
type StatusChangeResponse struct {
	JobID  string           `json:"job_id"`
	Status entity.JobStatus `json:"status"`
}

// UploadResponse lists the URLs extracted from an uploaded file.
type UploadResponse struct {
	URLs []string `json:"urls"`
}
