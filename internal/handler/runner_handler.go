package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/contact-extractor/api/internal/dto"
	"github.com/octobees/contact-extractor/api/internal/entity"
	"github.com/octobees/contact-extractor/api/internal/service"
)

// RunnerHandler receives progress callbacks from the extraction runner.
type RunnerHandler struct {
	jobs *service.JobService
}

// NewRunnerHandler constructs a RunnerHandler.
func NewRunnerHandler(jobs *service.JobService) *RunnerHandler {
	return &RunnerHandler{jobs: jobs}
}

// UpdateResult handles PUT /jobs/:job_id/results requests.
func (h *RunnerHandler) UpdateResult(c echo.Context) error {
	var record entity.ResultRecord
	if err := c.Bind(&record); err != nil {
		return Error(c, http.StatusBadRequest, "invalid_input", "invalid payload")
	}

	stored, err := h.jobs.ApplyResult(c.Request().Context(), c.Param("job_id"), record)
	if err != nil {
		return serviceError(c, err)
	}
	return Success(c, http.StatusOK, "result recorded", stored)
}

// UpdateStatus handles PUT /jobs/:job_id/status requests.
func (h *RunnerHandler) UpdateStatus(c echo.Context) error {
	var req dto.StatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid_input", "invalid payload")
	}

	jobID := c.Param("job_id")
	if err := h.jobs.SetStatus(c.Request().Context(), jobID, req.Status, req.Message); err != nil {
		return serviceError(c, err)
	}
	return Success(c, http.StatusOK, "job status updated", dto.StatusChangeResponse{JobID: jobID, Status: req.Status})
}

// Finish handles POST /jobs/:job_id/finish requests.
func (h *RunnerHandler) Finish(c echo.Context) error {
	jobID := c.Param("job_id")
	status, err := h.jobs.Finish(c.Request().Context(), jobID)
	if err != nil {
		return serviceError(c, err)
	}
	return Success(c, http.StatusOK, "job finished", dto.StatusChangeResponse{JobID: jobID, Status: status})
}
