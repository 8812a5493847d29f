// Package daemonctl provides the HTTP client the CLI uses to control a
// running mailsift daemon.
package daemonctl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mailsift/internal/api"
)

const defaultRequestTimeout = 30 * time.Second

// Client talks to the daemon's HTTP API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New constructs a client for the daemon bound at addr (host:port). An empty
// token disables the Authorization header.
func New(addr, token string) *Client {
	addr = strings.TrimSpace(addr)
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		addr = "http://" + addr
	}
	return &Client{
		baseURL:    strings.TrimRight(addr, "/"),
		token:      strings.TrimSpace(token),
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
	}
}

// Health reports whether the daemon answers its liveness probe.
func (c *Client) Health(ctx context.Context) error {
	var resp api.HealthResponse
	return c.get(ctx, "/health", &resp)
}

// WaitForDaemon polls the health endpoint until the daemon responds or the
// timeout elapses.
func (c *Client) WaitForDaemon(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		if lastErr = c.Health(ctx); lastErr == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
	return fmt.Errorf("daemon not reachable: %w", lastErr)
}

// Status fetches daemon runtime information.
func (c *Client) Status(ctx context.Context) (api.DaemonStatus, error) {
	var resp api.DaemonStatus
	err := c.get(ctx, "/api/status", &resp)
	return resp, err
}

// Senders fetches the configured sender list.
func (c *Client) Senders(ctx context.Context) ([]api.SenderInfo, error) {
	var resp api.SendersResponse
	if err := c.get(ctx, "/api/senders", &resp); err != nil {
		return nil, err
	}
	return resp.Senders, nil
}

// Analyze starts an analysis run for a sender.
func (c *Client) Analyze(ctx context.Context, req api.AnalyzeRequest) (api.AnalyzeResponse, error) {
	var resp api.AnalyzeResponse
	err := c.post(ctx, "/api/analyze", req, &resp)
	return resp, err
}

// Tasks fetches the task list view.
func (c *Client) Tasks(ctx context.Context) ([]api.TaskSummary, error) {
	var resp api.TaskListResponse
	if err := c.get(ctx, "/api/tasks", &resp); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

// Task fetches one full task record.
func (c *Client) Task(ctx context.Context, id string) (api.TaskResponse, error) {
	var resp api.TaskResponse
	err := c.get(ctx, "/api/tasks/"+strings.TrimSpace(id), &resp)
	return resp, err
}

// Evict runs an on-demand eviction sweep.
func (c *Client) Evict(ctx context.Context) (api.EvictResponse, error) {
	var resp api.EvictResponse
	err := c.post(ctx, "/api/tasks/evict", nil, &resp)
	return resp, err
}

func (c *Client) get(ctx context.Context, path string, target any) error {
	return c.do(ctx, http.MethodGet, path, nil, target)
}

func (c *Client) post(ctx context.Context, path string, payload, target any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}
	return c.do(ctx, http.MethodPost, path, body, target)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, target any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("daemon request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr api.ErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			return fmt.Errorf("daemon: %s (http %d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("daemon: http %d for %s", resp.StatusCode, path)
	}
	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
