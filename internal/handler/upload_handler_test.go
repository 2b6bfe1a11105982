package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/octobees/contact-extractor/api/internal/dto"
)

func TestUploadHandler_MissingFile(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/uploads", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	_ = NewUploadHandler(0).Upload(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if payload := decodeResponse(t, rec); payload.Code != "upload_failed" {
		t.Fatalf("unexpected code %q", payload.Code)
	}
}

func TestUploadHandler_Upload(t *testing.T) {
	tests := map[string]struct {
		filename   string
		content    string
		maxBytes   int64
		expectCode int
		expectErr  string
		expectURLs []string
	}{
		"csv with header": {
			filename:   "sites.csv",
			content:    "url,name\nexample.com,Example\nhttps://b.com,B\nexample.com,Again\n",
			expectCode: http.StatusOK,
			expectURLs: []string{"https://example.com", "https://b.com"},
		},
		"json object": {
			filename:   "sites.json",
			content:    `{"urls": ["a.com", "http://b.com"]}`,
			expectCode: http.StatusOK,
			expectURLs: []string{"https://a.com", "http://b.com"},
		},
		"plain text": {
			filename:   "sites.txt",
			content:    "a.com, b.com\n\nc.com\n",
			expectCode: http.StatusOK,
			expectURLs: []string{"https://a.com", "https://b.com", "https://c.com"},
		},
		"no urls": {
			filename:   "empty.txt",
			content:    "\n \n",
			expectCode: http.StatusBadRequest,
			expectErr:  "upload_failed",
		},
		"too large": {
			filename:   "big.txt",
			content:    strings.Repeat("a.com\n", 20),
			maxBytes:   16,
			expectCode: http.StatusRequestEntityTooLarge,
			expectErr:  "upload_too_large",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			e := echo.New()
			req, rec := multipartRequest(t, "file", tt.filename, tt.content)
			c := e.NewContext(req, rec)

			if err := NewUploadHandler(tt.maxBytes).Upload(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Code != tt.expectCode {
				t.Fatalf("expected %d, got %d: %s", tt.expectCode, rec.Code, rec.Body.String())
			}
			payload := decodeResponse(t, rec)
			if payload.Code != tt.expectErr {
				t.Fatalf("expected code %q, got %q", tt.expectErr, payload.Code)
			}
			if tt.expectErr != "" {
				return
			}

			var resp dto.UploadResponse
			if err := json.Unmarshal(payload.Data, &resp); err != nil {
				t.Fatalf("decode data: %v", err)
			}
			if strings.Join(resp.URLs, " ") != strings.Join(tt.expectURLs, " ") {
				t.Fatalf("expected %v, got %v", tt.expectURLs, resp.URLs)
			}
		})
	}
}
