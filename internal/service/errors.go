package service

import (
	"errors"
	"fmt"

	"github.com/octobees/contact-extractor/api/internal/export"
	"github.com/octobees/contact-extractor/api/internal/repository"
)

var (
	// ErrInvalidInput indicates an empty or malformed request.
	ErrInvalidInput = errors.New("invalid input")
	// ErrJobNotFound is returned for unknown job identifiers.
	ErrJobNotFound = repository.ErrJobNotFound
	// ErrURLNotFound is returned when a record update names a URL outside the job.
	ErrURLNotFound = repository.ErrResultNotFound
	// ErrDuplicateJob is returned when a job id collides with an existing job.
	ErrDuplicateJob = repository.ErrDuplicateJob
	// ErrJobNotReady indicates the job has not completed yet.
	ErrJobNotReady = errors.New("job not ready")
	// ErrUnsupportedFormat is returned for unknown export format tokens.
	ErrUnsupportedFormat = export.ErrUnsupportedFormat
	// ErrInvalidTransition rejects job status changes the state machine forbids.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrTerminalRecord rejects updates to records that are already done or failed.
	ErrTerminalRecord = errors.New("record already terminal")
	// ErrUploadTooLarge indicates the uploaded file exceeds the configured limit.
	ErrUploadTooLarge = errors.New("upload too large")
	// ErrUploadFailed indicates the upload could not be parsed into URLs.
	ErrUploadFailed = errors.New("upload failed")
	// ErrInvalidCredentials is returned when client authentication fails.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ExportError reports a renderer failure for a given job and format.
type ExportError struct {
	JobID  string
	Format export.Format
	Err    error
}

// Error implements the error interface.
func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s as %s: %v", e.JobID, e.Format, e.Err)
}

// Unwrap exposes the renderer error.
func (e *ExportError) Unwrap() error {
	return e.Err
}
