// Package scoreclient calls a running landpower server's POST /scores.
package scoreclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Request is the POST /scores body.
type Request struct {
	Space     string          `json:"space,omitempty"`
	Network   string          `json:"network,omitempty"`
	Addresses []string        `json:"addresses"`
	Options   json.RawMessage `json:"options,omitempty"`
	// Snapshot is a block height; nil asks for the latest state.
	Snapshot *uint64 `json:"snapshot,omitempty"`
}

// Result is a successful POST /scores answer.
type Result struct {
	Scores       map[string]float64 `json:"scores"`
	InvocationID string             `json:"invocation_id"`
}

// APIError is a non-200 answer from the server.
type APIError struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("scores: status %d %s: %s", e.Status, e.Code, e.Message)
}

// Client posts scoring requests.
type Client struct {
	baseURL string
	hc      *http.Client
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: timeout},
	}
}

// Scores posts req and decodes the answer.
func (c *Client) Scores(ctx context.Context, req Request) (Result, error) {
	if req.Addresses == nil {
		req.Addresses = []string{}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return Result{}, fmt.Errorf("marshal request: %w", err)
	}
	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/scores", bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("create request: %w", err)
	}
	hreq.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(hreq)
	if err != nil {
		return Result{}, fmt.Errorf("post scores: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{Status: resp.StatusCode}
		if jerr := json.Unmarshal(data, apiErr); jerr != nil {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return Result{}, apiErr
	}

	var out Result
	if err := json.Unmarshal(data, &out); err != nil {
		return Result{}, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}
