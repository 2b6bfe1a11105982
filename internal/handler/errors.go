package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/contact-extractor/api/internal/middleware"
	"github.com/octobees/contact-extractor/api/internal/service"
)

// serviceError maps a service error onto an HTTP status and error code.
func serviceError(c echo.Context, err error) error {
	var exportErr *service.ExportError
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return Error(c, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, service.ErrJobNotFound):
		return Error(c, http.StatusNotFound, "not_found", "job not found")
	case errors.Is(err, service.ErrURLNotFound):
		return Error(c, http.StatusNotFound, "not_found", "url is not part of the job")
	case errors.Is(err, service.ErrDuplicateJob):
		return Error(c, http.StatusConflict, "duplicate_job", "job already exists")
	case errors.Is(err, service.ErrJobNotReady):
		return Error(c, http.StatusConflict, "job_not_ready", "job has not completed yet")
	case errors.Is(err, service.ErrUnsupportedFormat):
		return Error(c, http.StatusBadRequest, "unsupported_format", err.Error())
	case errors.As(err, &exportErr):
		return Error(c, http.StatusInternalServerError, "export_failed", "unable to export results")
	case errors.Is(err, service.ErrTerminalRecord):
		return Error(c, http.StatusConflict, "terminal_record", err.Error())
	case errors.Is(err, service.ErrInvalidTransition):
		return Error(c, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, service.ErrUploadTooLarge):
		return Error(c, http.StatusRequestEntityTooLarge, "upload_too_large", "file exceeds the upload limit")
	case errors.Is(err, service.ErrUploadFailed):
		return Error(c, http.StatusBadRequest, "upload_failed", err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		return Error(c, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
	default:
		c.Set(middleware.ContextKeyError, err)
		return Error(c, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
