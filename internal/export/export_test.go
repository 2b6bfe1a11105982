package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/octobees/contact-extractor/api/internal/entity"
)

func completedJob() entity.Job {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	job := entity.NewJob("job-1", "client", []string{"https://b.com", "https://a.com"}, created)
	shot := "screens/b.png"

	b := job.Results["https://b.com"]
	b.Status = entity.RecordDone
	b.Emails = []string{"hello@b.com", "sales@b.com"}
	b.Facebook = []string{"https://facebook.com/b"}
	b.ScreenshotRef = &shot
	job.Results["https://b.com"] = b

	a := job.Results["https://a.com"]
	a.Status = entity.RecordDone
	a.Instagram = []string{"https://instagram.com/a"}
	a.TikTok = []string{"https://tiktok.com/@a"}
	job.Results["https://a.com"] = a

	job.Status = entity.JobCompleted
	return job
}

func TestParseFormat(t *testing.T) {
	tests := map[string]struct {
		token  string
		expect Format
		err    bool
	}{
		"csv":         {token: "csv", expect: CSV},
		"excel":       {token: "excel", expect: Spreadsheet},
		"xlsx":        {token: "XLSX", expect: Spreadsheet},
		"spreadsheet": {token: "spreadsheet", expect: Spreadsheet},
		"pdf":         {token: " pdf ", expect: Document},
		"document":    {token: "document", expect: Document},
		"unknown":     {token: "docx", err: true},
		"empty":       {token: "", err: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseFormat(tt.token)
			if tt.err {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expect {
				t.Fatalf("expected %s, got %s", tt.expect, got)
			}
		})
	}
}

func TestFilename(t *testing.T) {
	if got := Filename("job-1", Spreadsheet); got != "contact-extraction-job-1.xlsx" {
		t.Fatalf("unexpected filename %s", got)
	}
	if got := Filename("job-1", Document); got != "contact-extraction-job-1.pdf" {
		t.Fatalf("unexpected filename %s", got)
	}
	if got := Filename("job-1", CSV); got != "contact-extraction-job-1.csv" {
		t.Fatalf("unexpected filename %s", got)
	}
}

func TestCSVRenderer(t *testing.T) {
	job := completedJob()
	out, err := CSVRenderer{}.Render(job)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(records))
	}
	if strings.Join(records[0], "|") != "URL|Emails|Facebook|Instagram|TikTok|Screenshot" {
		t.Fatalf("unexpected header %v", records[0])
	}
	if records[1][0] != "https://b.com" || records[2][0] != "https://a.com" {
		t.Fatalf("rows not in submission order: %v", records)
	}
	if records[1][1] != "hello@b.com, sales@b.com" {
		t.Fatalf("unexpected emails cell %q", records[1][1])
	}
	if records[1][5] != "screens/b.png" || records[2][5] != "" {
		t.Fatalf("unexpected screenshot cells %q %q", records[1][5], records[2][5])
	}

	again, _ := CSVRenderer{}.Render(job)
	if !bytes.Equal(out, again) {
		t.Fatalf("expected identical output on repeated export")
	}
}

func TestSpreadsheetRenderer(t *testing.T) {
	job := completedJob()
	out, err := SpreadsheetRenderer{}.Render(job)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	again, err := SpreadsheetRenderer{}.Render(job)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(out, again) {
		t.Fatalf("expected byte identical workbook for the same job")
	}

	f, err := excelize.OpenReader(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[1][1] != "hello@b.com\nsales@b.com" {
		t.Fatalf("expected newline joined emails, got %q", rows[1][1])
	}
	if rows[2][3] != "https://instagram.com/a" {
		t.Fatalf("unexpected instagram cell %q", rows[2][3])
	}

	props, err := f.GetDocProps()
	if err != nil {
		t.Fatalf("read doc props: %v", err)
	}
	if props.Created != "2024-05-01T12:00:00Z" {
		t.Fatalf("expected created pinned to job creation, got %q", props.Created)
	}
}

func TestDocumentRenderer(t *testing.T) {
	job := completedJob()
	out, err := DocumentRenderer{}.Render(job)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("expected pdf header")
	}

	again, err := DocumentRenderer{}.Render(job)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(out, again) {
		t.Fatalf("expected byte identical pdf for the same job")
	}
}

func TestRenderers(t *testing.T) {
	renderers := Renderers()
	for _, f := range []Format{CSV, Spreadsheet, Document} {
		if _, ok := renderers[f]; !ok {
			t.Fatalf("missing renderer for %s", f)
		}
	}
}
