package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/octobees/contact-extractor/api/internal/dto"
	"github.com/octobees/contact-extractor/api/internal/entity"
)

func runnerContext(e *echo.Echo, method, target, body, jobID string) (echo.Context, *httptest.ResponseRecorder) {
	req, rec := jsonRequest(method, target, body)
	c := e.NewContext(req, rec)
	c.SetParamNames("job_id")
	c.SetParamValues(jobID)
	return c, rec
}

func TestRunnerHandler_UpdateResult(t *testing.T) {
	env := newTestEnv()
	h := NewRunnerHandler(env.jobs)
	jobID, _ := env.jobs.Submit(context.Background(), "client-a", []string{"https://a.com", "https://b.com"})

	tests := []struct {
		name       string
		jobID      string
		body       string
		expectCode int
		expectErr  string
	}{
		{name: "malformed", jobID: jobID, body: `{"url":`, expectCode: http.StatusBadRequest, expectErr: "invalid_input"},
		{name: "unknown status", jobID: jobID, body: `{"url":"https://a.com","status":"exploded"}`, expectCode: http.StatusBadRequest, expectErr: "invalid_input"},
		{name: "unknown job", jobID: "missing", body: `{"url":"https://a.com","status":"done"}`, expectCode: http.StatusNotFound, expectErr: "not_found"},
		{name: "unknown url", jobID: jobID, body: `{"url":"https://zzz.com","status":"done"}`, expectCode: http.StatusNotFound, expectErr: "not_found"},
		{name: "done", jobID: jobID, body: `{"url":"https://a.com","status":"done","emails":["Info@A.com","info@a.com"]}`, expectCode: http.StatusOK},
		{name: "terminal record", jobID: jobID, body: `{"url":"https://a.com","status":"processing"}`, expectCode: http.StatusConflict, expectErr: "terminal_record"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := runnerContext(echo.New(), http.MethodPut, "/jobs/"+tt.jobID+"/results", tt.body, tt.jobID)
			if err := h.UpdateResult(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Code != tt.expectCode {
				t.Fatalf("expected %d, got %d: %s", tt.expectCode, rec.Code, rec.Body.String())
			}
			if payload := decodeResponse(t, rec); payload.Code != tt.expectErr {
				t.Fatalf("expected code %q, got %q", tt.expectErr, payload.Code)
			}
		})
	}

	job, _ := env.store.Get(context.Background(), jobID)
	if job.Status != entity.JobProcessing {
		t.Fatalf("expected first update to move job to processing, got %s", job.Status)
	}
	rec := job.Results["https://a.com"]
	if rec.Status != entity.RecordDone || len(rec.Emails) != 1 || rec.Emails[0] != "info@a.com" {
		t.Fatalf("unexpected stored record: %+v", rec)
	}
}

func TestRunnerHandler_UpdateStatus(t *testing.T) {
	env := newTestEnv()
	h := NewRunnerHandler(env.jobs)
	jobID, _ := env.jobs.Submit(context.Background(), "client-a", []string{"https://a.com"})

	c, rec := runnerContext(echo.New(), http.MethodPut, "/jobs/"+jobID+"/status", `{"status":"completed"}`, jobID)
	_ = h.UpdateStatus(c)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected completed to be rejected while records are open, got %d", rec.Code)
	}
	if payload := decodeResponse(t, rec); payload.Code != "invalid_transition" {
		t.Fatalf("unexpected code %q", payload.Code)
	}

	c, rec = runnerContext(echo.New(), http.MethodPut, "/jobs/"+jobID+"/status", `{"status":"failed","message":"browser crashed"}`, jobID)
	if err := h.UpdateStatus(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp dto.StatusChangeResponse
	if err := json.Unmarshal(decodeResponse(t, rec).Data, &resp); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if resp.Status != entity.JobFailed || resp.JobID != jobID {
		t.Fatalf("unexpected response: %+v", resp)
	}

	job, _ := env.store.Get(context.Background(), jobID)
	if job.Status != entity.JobFailed || job.Message != "browser crashed" {
		t.Fatalf("unexpected job: %+v", job)
	}
}

func TestRunnerHandler_Finish(t *testing.T) {
	env := newTestEnv()
	h := NewRunnerHandler(env.jobs)
	ctx := context.Background()
	jobID, _ := env.jobs.Submit(ctx, "client-a", []string{"https://a.com", "https://b.com"})

	c, rec := runnerContext(echo.New(), http.MethodPost, "/jobs/"+jobID+"/finish", "", jobID)
	_ = h.Finish(c)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 while records are pending, got %d", rec.Code)
	}

	_, _ = env.jobs.ApplyResult(ctx, jobID, entity.ResultRecord{URL: "https://a.com", Status: entity.RecordDone})
	_, _ = env.jobs.ApplyResult(ctx, jobID, entity.ResultRecord{URL: "https://b.com", Status: entity.RecordFailed, Message: "timeout"})

	c, rec = runnerContext(echo.New(), http.MethodPost, "/jobs/"+jobID+"/finish", "", jobID)
	if err := h.Finish(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp dto.StatusChangeResponse
	if err := json.Unmarshal(decodeResponse(t, rec).Data, &resp); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if resp.Status != entity.JobFailed {
		t.Fatalf("expected derived failed status, got %s", resp.Status)
	}
}
