// Package yarsdash is a Go client for the dashboard server's REST API.
package yarsdash

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"yarsdash/internal/dashboard"
	"yarsdash/internal/httpapi"
	"yarsdash/internal/store"
)

// Client provides a Go SDK for interacting with the dashboard server API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new dashboard API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Health retrieves the server health.
func (c *Client) Health(ctx context.Context) (httpapi.HealthResponse, error) {
	var out httpapi.HealthResponse
	err := c.do(ctx, http.MethodGet, "/healthz", nil, &out)
	return out, err
}

// Dashboard retrieves the full dashboard view as raw JSON.
func (c *Client) Dashboard(ctx context.Context) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.do(ctx, http.MethodGet, "/api/dashboard", nil, &out)
	return out, err
}

// TopPosts retrieves the top posts table sorted by score or num_comments.
func (c *Client) TopPosts(ctx context.Context, sort dashboard.PostSort) (httpapi.PostsResponse, error) {
	var out httpapi.PostsResponse
	err := c.do(ctx, http.MethodGet, "/api/posts?sort="+url.QueryEscape(string(sort)), nil, &out)
	return out, err
}

// SelectTicker toggles the selection with a click on ticker.
func (c *Client) SelectTicker(ctx context.Context, selected, ticker string) (dashboard.DetailSelection, error) {
	q := url.Values{"ticker": {ticker}}
	if selected != "" {
		q.Set("selected", selected)
	}
	var out dashboard.DetailSelection
	err := c.do(ctx, http.MethodGet, "/api/ticker-detail?"+q.Encode(), nil, &out)
	return out, err
}

// MentionHistory retrieves archived mention counts for symbol.
func (c *Client) MentionHistory(ctx context.Context, symbol string) ([]store.MentionPoint, error) {
	var out httpapi.HistoryResponse
	err := c.do(ctx, http.MethodGet, "/api/tickers/"+url.PathEscape(symbol)+"/history", nil, &out)
	return out.Points, err
}

// Analyze forwards prompt to the server's analysis action.
func (c *Client) Analyze(ctx context.Context, prompt string) (string, error) {
	var out httpapi.AnalyzeResponse
	err := c.do(ctx, http.MethodPost, "/api/analyze", httpapi.AnalyzeRequest{Prompt: prompt}, &out)
	return out.Analysis, err
}

// TriggerScrape starts the remote scrape workflow.
func (c *Client) TriggerScrape(ctx context.Context) (httpapi.TriggerResponse, error) {
	var out httpapi.TriggerResponse
	err := c.do(ctx, http.MethodPost, "/api/trigger-scrape", nil, &out)
	return out, err
}

// Actions lists the most recent proxy actions.
func (c *Client) Actions(ctx context.Context, limit int) ([]store.Action, error) {
	var out httpapi.ActionsResponse
	err := c.do(ctx, http.MethodGet, "/api/actions?limit="+strconv.Itoa(limit), nil, &out)
	return out.Actions, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var e struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(data, &e) != nil || e.Error == "" {
			e.Error = strings.TrimSpace(string(data))
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
