package dto

import (
	"time"

	"github.com/octobees/contact-extractor/api/internal/entity"
)

// ResultsFilter contains query parameters for the results browser.
type ResultsFilter struct {
	Q       string
	Page    int
	PerPage int
}

// ResultRow is the flattened view of one site.
type ResultRow struct {
	URL           string              `json:"url"`
	Emails        []string            `json:"emails"`
	Facebook      []string            `json:"facebook"`
	Instagram     []string            `json:"instagram"`
	TikTok        []string            `json:"tiktok"`
	ScreenshotRef *string             `json:"screenshot_ref,omitempty"`
	HasScreenshot bool                `json:"has_screenshot"`
	Status        entity.RecordStatus `json:"status"`
	Message       string              `json:"message,omitempty"`
	Timestamp     time.Time           `json:"timestamp"`
}

// ResultsPage is one page of projected rows plus pagination metadata.
type ResultsPage struct {
	Rows        []ResultRow `json:"rows"`
	CurrentPage int         `json:"current_page"`
	PageSize    int         `json:"page_size"`
	TotalPages  int         `json:"total_pages"`
	TotalCount  int         `json:"total_count"`
}
