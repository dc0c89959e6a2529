package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// APIError is a structured error returned by the server.
type APIError struct {
	HTTPStatus int
	Kind       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("HTTP %d: %s", e.HTTPStatus, e.Message)
}

// Client is a thin HTTP client for the lab intelligence API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a Client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		// Asks block on the model, so the client waits well past typical
		// API latencies.
		HTTPClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

// AskResult is the response to an ask request.
type AskResult struct {
	Answer    string     `json:"answer"`
	Table     *TableJSON `json:"table,omitempty"`
	RowCount  int        `json:"row_count"`
	Truncated bool       `json:"truncated"`
}

// TableJSON mirrors the server's tabular payload.
type TableJSON struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// SchemaTable describes one queryable table.
type SchemaTable struct {
	Table   string `json:"table"`
	Columns []struct {
		Name     string `json:"name"`
		Type     string `json:"type"`
		Nullable bool   `json:"nullable"`
	} `json:"columns"`
}

// HistoryEntry is one logged ask.
type HistoryEntry struct {
	ID          int64  `json:"id"`
	Question    string `json:"question"`
	Statement   string `json:"statement,omitempty"`
	Status      string `json:"status"`
	FailureKind string `json:"failure_kind,omitempty"`
	RowCount    int    `json:"row_count"`
	Truncated   bool   `json:"truncated"`
	DurationMs  int64  `json:"duration_ms"`
	CreatedAt   string `json:"created_at"`
}

// Ask submits a natural-language question.
func (c *Client) Ask(ctx context.Context, question string) (*AskResult, error) {
	body, _ := json.Marshal(map[string]string{"question": question})
	var out AskResult
	if err := c.do(ctx, http.MethodPost, "/v1/ask", nil, bytes.NewReader(body), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Schema fetches the queryable schema.
func (c *Client) Schema(ctx context.Context) ([]SchemaTable, error) {
	var out struct {
		Tables []SchemaTable `json:"tables"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/schema", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Tables, nil
}

// History fetches the most recent logged asks.
func (c *Client) History(ctx context.Context, limit int) ([]HistoryEntry, error) {
	var query url.Values
	if limit > 0 {
		query = url.Values{"limit": []string{strconv.Itoa(limit)}}
	}
	var out struct {
		Entries []HistoryEntry `json:"entries"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/history", query, nil, &out); err != nil {
		return nil, err
	}
	return out.Entries, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, out interface{}) error {
	u, err := url.JoinPath(c.BaseURL, path)
	if err != nil {
		return fmt.Errorf("build URL: %w", err)
	}
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{HTTPStatus: resp.StatusCode, Message: string(data)}
		var envelope struct {
			Kind    string `json:"kind"`
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &envelope) == nil && envelope.Message != "" {
			apiErr.Kind = envelope.Kind
			apiErr.Message = envelope.Message
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
