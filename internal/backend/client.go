// Package backend implements the HTTP contract of the assistant backend:
// POST /api/parse for voice parsing and POST /api/{collection} for mirroring
// saved items. Requests authenticate with a static X-API-KEY header.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/habitcards/assistant/internal/models"
	"go.uber.org/zap"
)

// DefaultTimeout bounds backend requests when no timeout is supplied.
const DefaultTimeout = 15 * time.Second

// Client talks to the assistant backend.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a backend client. An empty baseURL yields an unconfigured
// client; callers check Configured before use.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Configured reports whether a backend endpoint is configured.
func (c *Client) Configured() bool { return c.baseURL != "" }

// parseRequest is the /api/parse request body.
type parseRequest struct {
	Text string `json:"text"`
	Mode string `json:"mode"`
}

// Parse sends transcript text to the backend parser and returns the raw
// structured-result body. Non-2xx statuses are errors; the caller decodes the
// body and treats a self-reported error field as a tier failure.
func (c *Client) Parse(ctx context.Context, mode models.Mode, text string) ([]byte, error) {
	body, err := c.post(ctx, "/api/parse", parseRequest{Text: text, Mode: mode.String()})
	if err != nil {
		return nil, fmt.Errorf("backend parse: %w", err)
	}
	return body, nil
}

// Push mirrors an item to the backend collection. Used by the mirror worker.
func (c *Client) Push(ctx context.Context, collection string, item any) error {
	if _, err := c.post(ctx, "/api/"+collection, item); err != nil {
		return fmt.Errorf("backend push %s: %w", collection, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("backend endpoint not configured")
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", c.apiKey)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Debug("failed_to_close_response_body", zap.Error(closeErr))
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("backend_request",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return body, nil
}
