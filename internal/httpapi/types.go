// Package httpapi provides the dashboard's HTTP REST API: view-models for
// the current snapshot, archived history, news, and the two proxy actions.
package httpapi

import (
	"yarsdash/internal/dashboard"
	"yarsdash/internal/news"
	"yarsdash/internal/store"
)

// PostsResponse is the response for GET /api/posts.
type PostsResponse struct {
	Sort  dashboard.PostSort  `json:"sort"`
	Posts []dashboard.PostRow `json:"posts"`
}

// HistoryResponse is the response for GET /api/tickers/{symbol}/history.
type HistoryResponse struct {
	Symbol string               `json:"symbol"`
	Points []store.MentionPoint `json:"points"`
}

// NewsResponse is the response for GET /api/tickers/{symbol}/news.
type NewsResponse struct {
	Symbol   string         `json:"symbol"`
	Articles []news.Article `json:"articles"`
}

// DatesResponse is the response for GET /api/archive/dates.
type DatesResponse struct {
	Dates []string `json:"dates"`
}

// ActionsResponse is the response for GET /api/actions.
type ActionsResponse struct {
	Actions []store.Action `json:"actions"`
}

// AnalyzeRequest is the body of POST /api/analyze. Prompt is left untyped so
// a non-string value can be rejected like a missing one.
type AnalyzeRequest struct {
	Prompt any `json:"prompt"`
}

// AnalyzeResponse is the success response for POST /api/analyze.
type AnalyzeResponse struct {
	Analysis string `json:"analysis"`
}

// TriggerResponse is the success response for POST /api/trigger-scrape.
type TriggerResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// HealthResponse is the response for GET /healthz.
type HealthResponse struct {
	Status   string `json:"status"`
	Snapshot bool   `json:"snapshot"`
}
