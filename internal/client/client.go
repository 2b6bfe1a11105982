// Package client is a typed HTTP client for the contact extraction API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/octobees/contact-extractor/api/internal/dto"
	"github.com/octobees/contact-extractor/api/internal/entity"
	"github.com/octobees/contact-extractor/api/internal/export"
)

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

type envelope struct {
	Status  string          `json:"status"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client calls the API on behalf of one caller.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// New builds a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the bearer token.
func (c *Client) SetToken(token string) {
	c.token = token
}

// IssueToken exchanges client credentials for an access token.
func (c *Client) IssueToken(ctx context.Context, clientID, secret string) (string, error) {
	var resp dto.TokenResponse
	req := dto.TokenRequest{ClientID: clientID, ClientSecret: secret}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/token", req, &resp); err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

// Submit creates a job and returns its id.
func (c *Client) Submit(ctx context.Context, urls []string) (string, error) {
	var resp dto.SubmitResponse
	if err := c.doJSON(ctx, http.MethodPost, "/jobs", dto.SubmitRequest{URLs: urls}, &resp); err != nil {
		return "", err
	}
	return resp.JobID, nil
}

// Upload sends a URL list file and returns the URLs the server extracted.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) ([]string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("copy upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/uploads", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var resp dto.UploadResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return resp.URLs, nil
}

// JobStatus fetches the status view of a job.
func (c *Client) JobStatus(ctx context.Context, jobID string) (*dto.JobStatusResponse, error) {
	var resp dto.JobStatusResponse
	if err := c.doJSON(ctx, http.MethodGet, "/jobs/"+url.PathEscape(jobID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Results fetches one page of projected results.
func (c *Client) Results(ctx context.Context, jobID string, filter dto.ResultsFilter) (*dto.ResultsPage, error) {
	q := url.Values{}
	if filter.Q != "" {
		q.Set("q", filter.Q)
	}
	if filter.Page > 0 {
		q.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(filter.PerPage))
	}
	path := "/jobs/" + url.PathEscape(jobID) + "/results"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var resp dto.ResultsPage
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Export downloads a rendered export.
func (c *Client) Export(ctx context.Context, jobID, format string) (*export.Artifact, error) {
	path := "/jobs/" + url.PathEscape(jobID) + "/export?format=" + url.QueryEscape(format)
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("export request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, decodeError(resp)
	}
	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}

	filename := ""
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		filename = params["filename"]
	}
	return &export.Artifact{
		Content:   content,
		MediaType: resp.Header.Get("Content-Type"),
		Filename:  filename,
	}, nil
}

// ReportResult sends one record update for a job. Requires a runner token.
func (c *Client) ReportResult(ctx context.Context, jobID string, record entity.ResultRecord) (*entity.ResultRecord, error) {
	var resp entity.ResultRecord
	if err := c.doJSON(ctx, http.MethodPut, "/jobs/"+url.PathEscape(jobID)+"/results", record, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetStatus moves the overall job status. Requires a runner token.
func (c *Client) SetStatus(ctx context.Context, jobID string, status entity.JobStatus, message string) error {
	req := dto.StatusUpdateRequest{Status: status, Message: message}
	return c.doJSON(ctx, http.MethodPut, "/jobs/"+url.PathEscape(jobID)+"/status", req, nil)
}

// Finish asks the server to derive the terminal status from the records.
func (c *Client) Finish(ctx context.Context, jobID string) (entity.JobStatus, error) {
	var resp dto.StatusChangeResponse
	if err := c.doJSON(ctx, http.MethodPost, "/jobs/"+url.PathEscape(jobID)+"/finish", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	raw, err := io.ReadAll(resp.Body)
	if err != nil || len(raw) == 0 {
		return apiErr
	}
	var env struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		apiErr.Message = strings.TrimSpace(string(raw))
		return apiErr
	}
	apiErr.Code = env.Code
	switch {
	case env.Message != "":
		apiErr.Message = env.Message
	case env.Error != "":
		apiErr.Message = env.Error
	}
	return apiErr
}
