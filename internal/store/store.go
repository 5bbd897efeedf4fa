// Package store defines storage for data the dashboard keeps beyond a single
// snapshot: the dated parquet archive of scraped snapshots and the SQLite
// log of triggered actions.
package store

import (
	"context"
	"time"

	"yarsdash/internal/snapshot"
)

// ArchiveStore persists snapshots by scrape date and reads them back.
type ArchiveStore interface {
	// WriteSnapshot archives the snapshot's posts and mention counts under the
	// UTC date of its scraped_at and returns that date.
	WriteSnapshot(ctx context.Context, snap *snapshot.Snapshot) (string, error)

	// ListDates returns archived dates (YYYY-MM-DD) in ascending order.
	ListDates(ctx context.Context) ([]string, error)

	// ReadMentions returns every mention record archived for date.
	ReadMentions(ctx context.Context, date string) ([]MentionRecord, error)

	// MentionHistory returns the corpus-wide mention count of symbol for
	// every archived scrape, oldest first.
	MentionHistory(ctx context.Context, symbol string) ([]MentionPoint, error)
}

// ActionStore records proxy actions triggered from the dashboard.
type ActionStore interface {
	// RecordAction inserts a new action. An empty ID or zero CreatedAt is
	// filled in.
	RecordAction(ctx context.Context, a *Action) error

	// ListActions returns the most recent actions, newest first, up to limit.
	ListActions(ctx context.Context, limit int) ([]Action, error)
}

// ActionKind names a proxy action.
type ActionKind string

const (
	ActionAnalyze       ActionKind = "analyze"
	ActionTriggerScrape ActionKind = "trigger-scrape"
)

// Action is one invocation of a proxy action and its outcome.
type Action struct {
	ID        string     `json:"id"`
	Kind      ActionKind `json:"kind"`
	Success   bool       `json:"success"`
	Status    int        `json:"status"`
	Message   string     `json:"message"`
	CreatedAt time.Time  `json:"created_at"`
}

// MentionPoint is a ticker's total mentions in one archived scrape.
type MentionPoint struct {
	Date      string    `json:"date"`
	ScrapedAt time.Time `json:"scraped_at"`
	Mentions  int       `json:"mentions"`
}
