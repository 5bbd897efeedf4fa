package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"yarsdash/internal/snapshot"
)

func decode(t *testing.T, js string) *snapshot.Snapshot {
	t.Helper()
	snap, err := snapshot.Decode(strings.NewReader(js))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return snap
}

func TestParquetStorePath(t *testing.T) {
	ps := NewParquetStore("/data")

	want := filepath.Join("/data", "archive", "2024-06-15", "posts.parquet")
	if got := ps.postsPath("2024-06-15"); got != want {
		t.Errorf("postsPath mismatch:\n  got  %s\n  want %s", got, want)
	}
	want = filepath.Join("/data", "archive", "2024-06-15", "mentions.parquet")
	if got := ps.mentionsPath("2024-06-15"); got != want {
		t.Errorf("mentionsPath mismatch:\n  got  %s\n  want %s", got, want)
	}
}

func TestParquetStoreWriteReadSnapshot(t *testing.T) {
	dir := t.TempDir()
	ps := NewParquetStore(dir)
	ctx := context.Background()

	morning := decode(t, `{
		"scraped_at": "2024-06-15T09:00:00+00:00",
		"subreddits": ["stocks"],
		"posts": [{"subreddit": "stocks", "title": "AAPL", "score": 10, "num_comments": 2,
			"created_utc": 1718441000, "permalink": "/p1", "tickers": ["AAPL"]}],
		"ticker_mentions": {"AAPL": 4, "TSLA": 1},
		"subreddit_tickers": {"stocks": {"AAPL": 4}}
	}`)
	evening := decode(t, `{
		"scraped_at": "2024-06-15T21:00:00+00:00",
		"subreddits": ["stocks"],
		"posts": [],
		"ticker_mentions": {"TSLA": 7}
	}`)
	nextDay := decode(t, `{
		"scraped_at": "2024-06-16T08:30:00.5+00:00",
		"ticker_mentions": {"AAPL": 9}
	}`)

	for _, snap := range []*snapshot.Snapshot{morning, evening, nextDay} {
		if _, err := ps.WriteSnapshot(ctx, snap); err != nil {
			t.Fatalf("WriteSnapshot(%s): %v", snap.ScrapedAt, err)
		}
	}
	// Re-archiving the same scrape must not duplicate its records.
	date, err := ps.WriteSnapshot(ctx, morning)
	if err != nil {
		t.Fatalf("WriteSnapshot again: %v", err)
	}
	if date != "2024-06-15" {
		t.Errorf("date = %s", date)
	}

	dates, err := ps.ListDates(ctx)
	if err != nil {
		t.Fatalf("ListDates: %v", err)
	}
	if strings.Join(dates, ",") != "2024-06-15,2024-06-16" {
		t.Errorf("dates = %v", dates)
	}

	recs, err := ps.ReadMentions(ctx, "2024-06-15")
	if err != nil {
		t.Fatalf("ReadMentions: %v", err)
	}
	// morning: AAPL, TSLA totals + stocks/AAPL; evening: TSLA total.
	if len(recs) != 4 {
		t.Errorf("records = %d, want 4: %+v", len(recs), recs)
	}

	history, err := ps.MentionHistory(ctx, "aapl")
	if err != nil {
		t.Fatalf("MentionHistory: %v", err)
	}
	var got []int
	for _, p := range history {
		got = append(got, p.Mentions)
	}
	if len(got) != 3 || got[0] != 4 || got[1] != 0 || got[2] != 9 {
		t.Errorf("history = %+v", history)
	}
	if history[2].Date != "2024-06-16" || !history[2].ScrapedAt.Equal(time.Date(2024, 6, 16, 8, 30, 0, 500e6, time.UTC)) {
		t.Errorf("last point = %+v", history[2])
	}
}

func TestParquetStoreEmpty(t *testing.T) {
	ps := NewParquetStore(t.TempDir())
	ctx := context.Background()

	dates, err := ps.ListDates(ctx)
	if err != nil || len(dates) != 0 {
		t.Errorf("ListDates = %v, %v", dates, err)
	}
	history, err := ps.MentionHistory(ctx, "AAPL")
	if err != nil || history == nil || len(history) != 0 {
		t.Errorf("MentionHistory = %v, %v", history, err)
	}
	if _, err := ps.ReadMentions(ctx, "../etc"); err == nil {
		t.Error("expected error for invalid date")
	}
	if _, err := ps.WriteSnapshot(ctx, &snapshot.Snapshot{ScrapedAt: "yesterday"}); err == nil {
		t.Error("expected error for unparseable scraped_at")
	}
}

func TestParquetStoreWriteSnapshotUnreadableArchive(t *testing.T) {
	ps := NewParquetStore(t.TempDir())
	ctx := context.Background()

	first := decode(t, `{"scraped_at": "2024-06-15T09:00:00+00:00", "ticker_mentions": {"AAPL": 5}}`)
	second := decode(t, `{"scraped_at": "2024-06-15T21:00:00+00:00", "ticker_mentions": {"TSLA": 2}}`)

	if _, err := ps.WriteSnapshot(ctx, first); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}
	path := ps.mentionsPath("2024-06-15")
	if err := os.WriteFile(path, []byte("not parquet"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := ps.WriteSnapshot(ctx, second); err == nil {
		t.Fatal("expected error when the existing mentions file is unreadable")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "not parquet" {
		t.Error("unreadable mentions file was overwritten")
	}
}

func TestMergePostRecords(t *testing.T) {
	existing := []PostRecord{
		{ScrapedAt: 1, Permalink: "/a", Score: 1},
		{ScrapedAt: 2, Permalink: "/a", Score: 2},
	}
	incoming := []PostRecord{{ScrapedAt: 2, Permalink: "/a", Score: 3}}

	merged := mergePostRecords(existing, incoming)
	if len(merged) != 2 || merged[1].Score != 3 {
		t.Errorf("merged = %+v", merged)
	}
}

func TestSQLiteStoreActions(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "actions.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	base := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	inputs := []Action{
		{Kind: ActionAnalyze, Success: true, Status: 200, Message: "ok", CreatedAt: base},
		{Kind: ActionTriggerScrape, Success: false, Status: 404, Message: "GitHub API returned 404: nope", CreatedAt: base.Add(time.Minute)},
		{Kind: ActionTriggerScrape, Success: true, Status: 200, Message: "Scraper triggered", CreatedAt: base.Add(2 * time.Minute)},
	}
	for i := range inputs {
		if err := s.RecordAction(ctx, &inputs[i]); err != nil {
			t.Fatalf("RecordAction: %v", err)
		}
		if inputs[i].ID == "" {
			t.Error("RecordAction should assign an ID")
		}
	}

	got, err := s.ListActions(ctx, 2)
	if err != nil {
		t.Fatalf("ListActions: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Message != "Scraper triggered" || got[1].Status != 404 || got[1].Success {
		t.Errorf("actions = %+v", got)
	}
	if got[0].ID != inputs[2].ID || !got[0].CreatedAt.Equal(inputs[2].CreatedAt) {
		t.Errorf("round trip = %+v, want %+v", got[0], inputs[2])
	}

	all, err := s.ListActions(ctx, 0)
	if err != nil || len(all) != 3 {
		t.Errorf("ListActions(0) = %d, %v", len(all), err)
	}
}
