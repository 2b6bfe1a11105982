// Package runner signals the external extraction runner over HTTP.
package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/idtoken"

	"github.com/octobees/contact-extractor/api/internal/entity"
	"github.com/octobees/contact-extractor/api/internal/logging"
)

const dispatchPath = "/jobs"

// Poster posts JSON payloads to runner endpoints.
type Poster interface {
	PostJSON(ctx context.Context, path string, payload any, requestID string) (map[string]any, error)
}

// Client talks to the runner service.
type Client struct {
	client  *http.Client
	baseURL string
}

// NewClient builds a runner client, auto-configuring an ID token client when
// no http.Client is supplied.
func NewClient(client *http.Client, baseURL string) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("runner base url must not be empty")
	}
	if client == nil {
		idc, err := idtoken.NewClient(context.Background(), baseURL)
		if err != nil {
			client = &http.Client{Timeout: 10 * time.Second}
		} else {
			idc.Timeout = 10 * time.Second
			client = idc
		}
	}
	return &Client{client: client, baseURL: baseURL}, nil
}

// PostJSON posts the payload to the runner and returns the "data" object.
func (c *Client) PostJSON(ctx context.Context, path string, payload any, requestID string) (map[string]any, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create runner request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("runner request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("runner error (%d): %s", resp.StatusCode, extractError(resp.Body))
	}

	var runnerResp struct {
		Data  map[string]any `json:"data"`
		Error string         `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&runnerResp); err != nil && err != io.EOF {
		return nil, fmt.Errorf("could not decode runner response: %w", err)
	}
	if runnerResp.Error != "" {
		return nil, fmt.Errorf("runner error: %s", runnerResp.Error)
	}
	return runnerResp.Data, nil
}

// Dispatch asks the runner to start processing the job.
func (c *Client) Dispatch(ctx context.Context, job entity.Job) error {
	payload := map[string]any{
		"job_id": job.ID,
		"urls":   job.URLs,
	}
	_, err := c.PostJSON(ctx, dispatchPath, payload, logging.RequestID(ctx))
	return err
}

func extractError(body io.Reader) string {
	data, err := io.ReadAll(body)
	if err != nil || len(data) == 0 {
		return "runner returned an error"
	}

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return string(data)
}

var _ Poster = (*Client)(nil)
