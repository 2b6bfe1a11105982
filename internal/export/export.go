// Package export renders completed jobs into downloadable artifacts.
package export

import (
	"errors"
	"fmt"
	"strings"

	"github.com/octobees/contact-extractor/api/internal/entity"
)

// Format identifies an export flavour.
type Format string

const (
	CSV         Format = "csv"
	Spreadsheet Format = "spreadsheet"
	Document    Format = "document"
)

// ErrUnsupportedFormat is returned for any token outside the known set.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ParseFormat maps request tokens such as "excel" or "pdf" to a Format.
func ParseFormat(token string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "csv":
		return CSV, nil
	case "excel", "xlsx", "spreadsheet":
		return Spreadsheet, nil
	case "pdf", "document":
		return Document, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, token)
}

// Extension returns the file extension used for the format.
func (f Format) Extension() string {
	switch f {
	case Spreadsheet:
		return "xlsx"
	case Document:
		return "pdf"
	}
	return "csv"
}

// MediaType returns the Content-Type of rendered artifacts.
func (f Format) MediaType() string {
	switch f {
	case Spreadsheet:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case Document:
		return "application/pdf"
	}
	return "text/csv; charset=utf-8"
}

// Artifact is a rendered export ready to be streamed to a client.
type Artifact struct {
	Content   []byte
	MediaType string
	Filename  string
}

// Filename builds the suggested download name for a job export.
func Filename(jobID string, f Format) string {
	return fmt.Sprintf("contact-extraction-%s.%s", jobID, f.Extension())
}

// Renderer turns a job snapshot into the bytes of one format.
type Renderer interface {
	Render(job entity.Job) ([]byte, error)
}

// Renderers returns the default renderer for every supported format.
func Renderers() map[Format]Renderer {
	return map[Format]Renderer{
		CSV:         CSVRenderer{},
		Spreadsheet: SpreadsheetRenderer{},
		Document:    DocumentRenderer{},
	}
}

var header = []string{"URL", "Emails", "Facebook", "Instagram", "TikTok", "Screenshot"}

// rows flattens the job's records in submission order, joining list values with sep.
func rows(job entity.Job, sep string) [][]string {
	records := job.OrderedResults()
	out := make([][]string, 0, len(records))
	for _, rec := range records {
		screenshot := ""
		if rec.HasScreenshot() {
			screenshot = *rec.ScreenshotRef
		}
		out = append(out, []string{
			rec.URL,
			strings.Join(rec.Emails, sep),
			strings.Join(rec.Facebook, sep),
			strings.Join(rec.Instagram, sep),
			strings.Join(rec.TikTok, sep),
			screenshot,
		})
	}
	return out
}
