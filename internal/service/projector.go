package service

import (
	"strings"

	"github.com/octobees/contact-extractor/api/internal/dto"
	"github.com/octobees/contact-extractor/api/internal/entity"
)

const defaultPageSize = 10

// Project flattens records into rows, keeps those matching filter
// (case-insensitive substring of the URL, an email or a social link) and
// returns the requested page. page is clamped into [1, TotalPages]; an empty
// match yields page 1 of 0. pageSize <= 0 selects the default; there is no
// upper bound here. records is not modified.
func Project(records []entity.ResultRecord, filter string, page, pageSize int) dto.ResultsPage {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	needle := strings.ToLower(strings.TrimSpace(filter))
	matched := make([]entity.ResultRecord, 0, len(records))
	for _, rec := range records {
		if needle == "" || recordMatches(rec, needle) {
			matched = append(matched, rec)
		}
	}

	total := len(matched)
	totalPages := (total + pageSize - 1) / pageSize
	if page < 1 || totalPages == 0 {
		page = 1
	} else if page > totalPages {
		page = totalPages
	}

	result := dto.ResultsPage{
		Rows:        []dto.ResultRow{},
		CurrentPage: page,
		PageSize:    pageSize,
		TotalPages:  totalPages,
		TotalCount:  total,
	}
	if total == 0 {
		return result
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if end > total {
		end = total
	}
	for _, rec := range matched[start:end] {
		result.Rows = append(result.Rows, toRow(rec))
	}
	return result
}

func recordMatches(rec entity.ResultRecord, needle string) bool {
	if strings.Contains(strings.ToLower(rec.URL), needle) {
		return true
	}
	for _, email := range rec.Emails {
		if strings.Contains(strings.ToLower(email), needle) {
			return true
		}
	}
	for _, link := range rec.SocialLinks() {
		if strings.Contains(strings.ToLower(link), needle) {
			return true
		}
	}
	return false
}

func toRow(rec entity.ResultRecord) dto.ResultRow {
	clone := rec.Clone()
	return dto.ResultRow{
		URL:           clone.URL,
		Emails:        clone.Emails,
		Facebook:      clone.Facebook,
		Instagram:     clone.Instagram,
		TikTok:        clone.TikTok,
		ScreenshotRef: clone.ScreenshotRef,
		HasScreenshot: clone.HasScreenshot(),
		Status:        clone.Status,
		Message:       clone.Message,
		Timestamp:     clone.Timestamp,
	}
}
