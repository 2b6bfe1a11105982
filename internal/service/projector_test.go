package service

import (
	"fmt"
	"testing"

	"github.com/octobees/contact-extractor/api/internal/entity"
)

func projectorRecords(n int) []entity.ResultRecord {
	records := make([]entity.ResultRecord, n)
	for i := range records {
		records[i] = entity.ResultRecord{
			URL:    fmt.Sprintf("https://site-%02d.com", i),
			Emails: []string{fmt.Sprintf("info@site-%02d.com", i)},
			Status: entity.RecordDone,
		}
	}
	return records
}

func TestProject_Pagination(t *testing.T) {
	records := projectorRecords(25)

	tests := map[string]struct {
		page       int
		pageSize   int
		expectPage int
		expectRows int
		expectSize int
		firstURL   string
	}{
		"first page":        {page: 1, pageSize: 10, expectPage: 1, expectRows: 10, expectSize: 10, firstURL: "https://site-00.com"},
		"last partial page": {page: 3, pageSize: 10, expectPage: 3, expectRows: 5, expectSize: 10, firstURL: "https://site-20.com"},
		"beyond last page":  {page: 4, pageSize: 10, expectPage: 3, expectRows: 5, expectSize: 10, firstURL: "https://site-20.com"},
		"page zero":         {page: 0, pageSize: 10, expectPage: 1, expectRows: 10, expectSize: 10, firstURL: "https://site-00.com"},
		"default size":      {page: 2, pageSize: 0, expectPage: 2, expectRows: 10, expectSize: 10, firstURL: "https://site-10.com"},
		"large size":        {page: 1, pageSize: 1000, expectPage: 1, expectRows: 25, expectSize: 1000, firstURL: "https://site-00.com"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			page := Project(records, "", tt.page, tt.pageSize)
			if page.CurrentPage != tt.expectPage || len(page.Rows) != tt.expectRows || page.PageSize != tt.expectSize {
				t.Fatalf("unexpected page: current=%d rows=%d size=%d", page.CurrentPage, len(page.Rows), page.PageSize)
			}
			if page.TotalCount != 25 {
				t.Fatalf("expected total 25, got %d", page.TotalCount)
			}
			if page.Rows[0].URL != tt.firstURL {
				t.Fatalf("expected first row %s, got %s", tt.firstURL, page.Rows[0].URL)
			}
		})
	}
}

func TestProject_TotalPages(t *testing.T) {
	records := projectorRecords(25)
	if got := Project(records, "", 1, 10).TotalPages; got != 3 {
		t.Fatalf("expected 3 pages, got %d", got)
	}
	if got := Project(records[:20], "", 1, 10).TotalPages; got != 2 {
		t.Fatalf("expected 2 pages, got %d", got)
	}

	page := Project(projectorRecords(250), "", 1, 200)
	if page.TotalPages != 2 || page.PageSize != 200 || len(page.Rows) != 200 {
		t.Fatalf("expected 2 pages of 200, got pages=%d size=%d rows=%d", page.TotalPages, page.PageSize, len(page.Rows))
	}
}

func TestProject_Filter(t *testing.T) {
	shot := "shots/b.png"
	records := []entity.ResultRecord{
		{URL: "https://a.com", Emails: []string{"info@a.com"}, Status: entity.RecordDone},
		{URL: "https://b.com", Instagram: []string{"https://instagram.com/bee"}, ScreenshotRef: &shot, Status: entity.RecordDone},
		{URL: "https://c.com", TikTok: []string{"https://tiktok.com/@sea"}, Status: entity.RecordFailed},
	}

	tests := map[string]struct {
		filter string
		expect []string
	}{
		"empty filter":       {filter: "", expect: []string{"https://a.com", "https://b.com", "https://c.com"}},
		"url match":          {filter: "B.COM", expect: []string{"https://b.com"}},
		"email match":        {filter: "info@", expect: []string{"https://a.com"}},
		"social match":       {filter: "@sea", expect: []string{"https://c.com"}},
		"whitespace trimmed": {filter: "  instagram ", expect: []string{"https://b.com"}},
		"no match":           {filter: "zzz", expect: nil},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			page := Project(records, tt.filter, 1, 10)
			if len(page.Rows) != len(tt.expect) || page.TotalCount != len(tt.expect) {
				t.Fatalf("expected %d rows, got %d", len(tt.expect), len(page.Rows))
			}
			for i, url := range tt.expect {
				if page.Rows[i].URL != url {
					t.Fatalf("row %d: expected %s, got %s", i, url, page.Rows[i].URL)
				}
			}
		})
	}
}

func TestProject_EmptyResult(t *testing.T) {
	page := Project(nil, "zzz", 5, 10)
	if page.CurrentPage != 1 || page.TotalPages != 0 || page.TotalCount != 0 {
		t.Fatalf("unexpected empty page: %+v", page)
	}
	if page.Rows == nil || len(page.Rows) != 0 {
		t.Fatalf("expected empty non-nil rows")
	}
}

func TestProject_RowShape(t *testing.T) {
	shot := "shots/a.png"
	records := []entity.ResultRecord{{
		URL:           "https://a.com",
		Emails:        []string{"info@a.com"},
		Facebook:      []string{"https://facebook.com/a"},
		ScreenshotRef: &shot,
		Status:        entity.RecordDone,
		Timestamp:     testNow,
	}}

	row := Project(records, "", 1, 10).Rows[0]
	if !row.HasScreenshot || row.ScreenshotRef == nil || *row.ScreenshotRef != shot {
		t.Fatalf("expected screenshot to carry through: %+v", row)
	}
	if !row.Timestamp.Equal(testNow) || row.Status != entity.RecordDone || row.Facebook[0] != "https://facebook.com/a" {
		t.Fatalf("unexpected row: %+v", row)
	}

	row.Emails[0] = "changed@a.com"
	*row.ScreenshotRef = "changed"
	if records[0].Emails[0] != "info@a.com" || *records[0].ScreenshotRef != "shots/a.png" {
		t.Fatalf("projection must not alias the input records")
	}
}

func TestSummarize(t *testing.T) {
	records := []entity.ResultRecord{
		{URL: "https://a.com", Status: entity.RecordDone, Emails: []string{"info@a.com"}},
		{URL: "https://b.com", Status: entity.RecordFailed},
		{URL: "https://c.com", Status: entity.RecordProcessing, Instagram: []string{"https://instagram.com/c"}},
		{URL: "https://d.com", Status: entity.RecordPending},
	}

	s := Summarize(records)
	if s.Total != 4 || s.Done != 1 || s.Failed != 1 || s.Processing != 1 || s.Pending != 1 {
		t.Fatalf("unexpected counts: %+v", s)
	}
	if s.WithEmails != 1 || s.WithSocials != 1 || s.Percent != 50 {
		t.Fatalf("unexpected contact counts: %+v", s)
	}
	if empty := Summarize(nil); empty.Percent != 0 || empty.Total != 0 {
		t.Fatalf("unexpected empty summary: %+v", empty)
	}
}
