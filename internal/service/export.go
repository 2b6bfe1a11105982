package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/octobees/contact-extractor/api/internal/entity"
	"github.com/octobees/contact-extractor/api/internal/export"
	"github.com/octobees/contact-extractor/api/internal/repository"
)

// ExportService renders completed jobs into downloadable artifacts.
type ExportService struct {
	store     repository.JobStore
	renderers map[export.Format]export.Renderer
	logger    logrus.FieldLogger
}

// NewExportService builds an export service with the default renderers.
func NewExportService(store repository.JobStore, logger logrus.FieldLogger) *ExportService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ExportService{store: store, renderers: export.Renderers(), logger: logger}
}

// Export renders the job in the format named by token.
func (s *ExportService) Export(ctx context.Context, jobID, token string) (*export.Artifact, error) {
	format, err := export.ParseFormat(token)
	if err != nil {
		return nil, err
	}

	job, err := s.store.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != entity.JobCompleted {
		return nil, ErrJobNotReady
	}

	renderer, ok := s.renderers[format]
	if !ok {
		return nil, ErrUnsupportedFormat
	}
	content, err := renderer.Render(*job)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{"job_id": jobID, "format": format}).Error("export failed")
		return nil, &ExportError{JobID: jobID, Format: format, Err: err}
	}

	return &export.Artifact{
		Content:   content,
		MediaType: format.MediaType(),
		Filename:  export.Filename(jobID, format),
	}, nil
}
