package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/contact-extractor/api/internal/dto"
	"github.com/octobees/contact-extractor/api/internal/service"
)

// UploadHandler turns an uploaded URL list into a clean URL slice that the
// caller can review before submitting.
type UploadHandler struct {
	maxBytes int64
}

// NewUploadHandler builds an upload handler limited to maxBytes per file.
func NewUploadHandler(maxBytes int64) *UploadHandler {
	if maxBytes <= 0 {
		maxBytes = service.DefaultUploadLimit
	}
	return &UploadHandler{maxBytes: maxBytes}
}

// Upload handles POST /uploads requests.
func (h *UploadHandler) Upload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return Error(c, http.StatusBadRequest, "upload_failed", "missing file")
	}
	if fileHeader.Size > h.maxBytes {
		return serviceError(c, service.ErrUploadTooLarge)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return Error(c, http.StatusBadRequest, "upload_failed", "unable to open file")
	}
	defer file.Close()

	urls, err := service.ParseURLList(fileHeader.Filename, file, h.maxBytes)
	if err != nil {
		return serviceError(c, err)
	}

	return Success(c, http.StatusOK, "urls extracted", dto.UploadResponse{URLs: urls})
}
