package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/octobees/contact-extractor/api/internal/dto"
	"github.com/octobees/contact-extractor/api/internal/middleware"
	"github.com/octobees/contact-extractor/api/internal/service"
)

// JobsHandler serves the client-facing job endpoints.
type JobsHandler struct {
	jobs    *service.JobService
	exports *service.ExportService
}

// NewJobsHandler wires the job lifecycle and export services.
func NewJobsHandler(jobs *service.JobService, exports *service.ExportService) *JobsHandler {
	return &JobsHandler{jobs: jobs, exports: exports}
}

// Submit handles POST /jobs requests.
func (h *JobsHandler) Submit(c echo.Context) error {
	var req dto.SubmitRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid_input", "invalid payload")
	}

	jobID, err := h.jobs.Submit(c.Request().Context(), middleware.ClientIDFromContext(c), req.URLs)
	if err != nil {
		return serviceError(c, err)
	}

	return Success(c, http.StatusAccepted, "job accepted", dto.SubmitResponse{JobID: jobID})
}

// Status handles GET /jobs/:job_id requests.
func (h *JobsHandler) Status(c echo.Context) error {
	status, err := h.jobs.Status(c.Request().Context(), c.Param("job_id"))
	if err != nil {
		return serviceError(c, err)
	}
	return Success(c, http.StatusOK, "job status retrieved", status)
}

// maxPerPage bounds the per_page query parameter.
const maxPerPage = 100

// Results handles GET /jobs/:job_id/results requests.
func (h *JobsHandler) Results(c echo.Context) error {
	filter := dto.ResultsFilter{
		Q:       strings.TrimSpace(c.QueryParam("q")),
		Page:    parseIntDefault(c.QueryParam("page"), 1),
		PerPage: parseIntDefault(c.QueryParam("per_page"), 0),
	}
	if filter.PerPage > maxPerPage {
		filter.PerPage = maxPerPage
	}

	page, err := h.jobs.Results(c.Request().Context(), c.Param("job_id"), filter)
	if err != nil {
		return serviceError(c, err)
	}
	return Success(c, http.StatusOK, "results retrieved", page)
}

// Export handles GET /jobs/:job_id/export requests. The format defaults to csv.
func (h *JobsHandler) Export(c echo.Context) error {
	format := c.QueryParam("format")
	if strings.TrimSpace(format) == "" {
		format = "csv"
	}

	artifact, err := h.exports.Export(c.Request().Context(), c.Param("job_id"), format)
	if err != nil {
		return serviceError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", artifact.Filename))
	return c.Blob(http.StatusOK, artifact.MediaType, artifact.Content)
}

func parseIntDefault(input string, fallback int) int {
	if input == "" {
		return fallback
	}
	if value, err := strconv.Atoi(input); err == nil {
		return value
	}
	return fallback
}
