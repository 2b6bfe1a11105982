package runner

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/octobees/contact-extractor/api/internal/entity"
	"github.com/octobees/contact-extractor/api/internal/logging"
)

func TestNewClient_Validation(t *testing.T) {
	if _, err := NewClient(http.DefaultClient, "  "); err == nil {
		t.Fatalf("expected error for empty base url")
	}
}

func TestClient_PostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Request-ID") != "req-1" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"status": "queued"}})
	}))
	defer server.Close()

	client, err := NewClient(server.Client(), server.URL+"/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := client.PostJSON(context.Background(), "/test", map[string]string{"foo": "bar"}, "req-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data["status"] != "queued" {
		t.Fatalf("expected queued, got %v", data)
	}
}

func TestClient_PostJSONErrors(t *testing.T) {
	tests := map[string]struct {
		status int
		body   string
		expect string
	}{
		"status with error field": {status: http.StatusBadGateway, body: `{"error":"busy"}`, expect: "busy"},
		"status with raw body":    {status: http.StatusInternalServerError, body: "boom", expect: "boom"},
		"ok with error field":     {status: http.StatusOK, body: `{"error":"rejected"}`, expect: "rejected"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client, _ := NewClient(server.Client(), server.URL)
			_, err := client.PostJSON(context.Background(), "/jobs", nil, "")
			if err == nil || !strings.Contains(err.Error(), tt.expect) {
				t.Fatalf("expected error containing %q, got %v", tt.expect, err)
			}
		})
	}
}

func TestClient_Dispatch(t *testing.T) {
	var (
		gotPath string
		gotRID  string
		payload struct {
			JobID string   `json:"job_id"`
			URLs  []string `json:"urls"`
		}
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRID = r.Header.Get("X-Request-ID")
		json.NewDecoder(r.Body).Decode(&payload)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client, _ := NewClient(server.Client(), server.URL)
	job := entity.NewJob("job-1", "client", []string{"https://a.com", "https://b.com"}, time.Now())
	ctx := logging.WithRequestID(context.Background(), "rid-9")
	if err := client.Dispatch(ctx, job); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/jobs" || gotRID != "rid-9" {
		t.Fatalf("unexpected request path=%s rid=%s", gotPath, gotRID)
	}
	if payload.JobID != "job-1" || len(payload.URLs) != 2 || payload.URLs[1] != "https://b.com" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}
