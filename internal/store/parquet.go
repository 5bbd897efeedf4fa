package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/parquet-go/parquet-go"
	"golang.org/x/sync/errgroup"

	"yarsdash/internal/snapshot"
)

// Compile-time interface check.
var _ ArchiveStore = (*ParquetStore)(nil)

// ParquetStore implements ArchiveStore using Parquet files on disk.
type ParquetStore struct {
	DataDir string

	// readers bounds concurrent file reads in MentionHistory.
	readers int
}

// NewParquetStore creates a new ParquetStore rooted at the given data directory.
func NewParquetStore(dataDir string) *ParquetStore {
	return &ParquetStore{DataDir: dataDir, readers: 8}
}

// ---------------------------------------------------------------------------
// Parquet record types (on-disk schema)
// ---------------------------------------------------------------------------

// PostRecord is the Parquet schema for an archived post.
type PostRecord struct {
	ScrapedAt   int64    `parquet:"scraped_at,timestamp(millisecond)"` // Unix ms
	Subreddit   string   `parquet:"subreddit"`
	Title       string   `parquet:"title"`
	Score       int64    `parquet:"score"`
	NumComments int64    `parquet:"num_comments"`
	CreatedUTC  int64    `parquet:"created_utc"` // Unix s, 0 when unknown
	Author      string   `parquet:"author"`
	Permalink   string   `parquet:"permalink"`
	Tickers     []string `parquet:"tickers,list"`
}

// MentionRecord is the Parquet schema for one mention count. Subreddit is
// empty for the corpus-wide total.
type MentionRecord struct {
	ScrapedAt int64  `parquet:"scraped_at,timestamp(millisecond)"` // Unix ms
	Ticker    string `parquet:"ticker"`
	Subreddit string `parquet:"subreddit"`
	Mentions  int64  `parquet:"mentions"`
}

// ---------------------------------------------------------------------------
// ArchiveStore implementation
// ---------------------------------------------------------------------------

// WriteSnapshot archives snap at:
//
//	<DataDir>/archive/<YYYY-MM-DD>/posts.parquet
//	<DataDir>/archive/<YYYY-MM-DD>/mentions.parquet
//
// Records from an earlier scrape on the same date are kept; re-archiving the
// same scrape replaces its records.
func (s *ParquetStore) WriteSnapshot(ctx context.Context, snap *snapshot.Snapshot) (string, error) {
	scraped := snap.ScrapedTime()
	if scraped.IsZero() {
		return "", fmt.Errorf("archiving snapshot: unparseable scraped_at %q", snap.ScrapedAt)
	}
	scraped = scraped.UTC()
	date := scraped.Format("2006-01-02")
	ts := scraped.UnixMilli()

	posts := make([]PostRecord, 0, len(snap.Posts))
	for _, p := range snap.Posts {
		posts = append(posts, PostRecord{
			ScrapedAt:   ts,
			Subreddit:   p.Subreddit,
			Title:       p.Title,
			Score:       int64(p.Score),
			NumComments: int64(p.NumComments),
			CreatedUTC:  int64(p.CreatedUTC),
			Author:      p.Author,
			Permalink:   p.Permalink,
			Tickers:     p.Tickers,
		})
	}

	var mentions []MentionRecord
	for _, e := range snap.TickerMentions.Entries() {
		mentions = append(mentions, MentionRecord{ScrapedAt: ts, Ticker: e.Key, Mentions: int64(e.Value)})
	}
	for _, sub := range snap.SubredditTickers.Entries() {
		for _, e := range sub.Value.Entries() {
			mentions = append(mentions, MentionRecord{ScrapedAt: ts, Ticker: e.Key, Subreddit: sub.Key, Mentions: int64(e.Value)})
		}
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		path := s.postsPath(date)
		existing, err := readExisting[PostRecord](path)
		if err != nil {
			return fmt.Errorf("reading posts for %s: %w", date, err)
		}
		if err := writeParquetFile(path, mergePostRecords(existing, posts)); err != nil {
			return fmt.Errorf("writing posts for %s: %w", date, err)
		}
		return nil
	})
	g.Go(func() error {
		path := s.mentionsPath(date)
		existing, err := readExisting[MentionRecord](path)
		if err != nil {
			return fmt.Errorf("reading mentions for %s: %w", date, err)
		}
		if err := writeParquetFile(path, mergeMentionRecords(existing, mentions, ts)); err != nil {
			return fmt.Errorf("writing mentions for %s: %w", date, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return "", err
	}
	return date, nil
}

var dateDirRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ListDates lists archived dates that have a mentions file.
func (s *ParquetStore) ListDates(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.DataDir, "archive"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("reading archive dir: %w", err)
	}

	dates := []string{}
	for _, e := range entries {
		if !e.IsDir() || !dateDirRe.MatchString(e.Name()) {
			continue
		}
		if _, err := os.Stat(s.mentionsPath(e.Name())); err == nil {
			dates = append(dates, e.Name())
		}
	}
	sort.Strings(dates)
	return dates, nil
}

// ReadMentions reads the mention records archived for date.
func (s *ParquetStore) ReadMentions(_ context.Context, date string) ([]MentionRecord, error) {
	if !dateDirRe.MatchString(date) {
		return nil, fmt.Errorf("invalid archive date %q", date)
	}
	path := s.mentionsPath(date)
	records, err := readParquetFile[MentionRecord](path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return records, nil
}

// MentionHistory reads every archived date concurrently and collects the
// corpus-wide total for symbol. Scrapes in which symbol was not mentioned
// report 0.
func (s *ParquetStore) MentionHistory(ctx context.Context, symbol string) ([]MentionPoint, error) {
	dates, err := s.ListDates(ctx)
	if err != nil {
		return nil, err
	}
	symbol = strings.ToUpper(symbol)

	var (
		mu     sync.Mutex
		points []MentionPoint
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.readers)
	for _, date := range dates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			records, err := s.ReadMentions(gctx, date)
			if err != nil {
				return err
			}

			byScrape := make(map[int64]int)
			for _, r := range records {
				if _, ok := byScrape[r.ScrapedAt]; !ok {
					byScrape[r.ScrapedAt] = 0
				}
				if r.Subreddit == "" && strings.EqualFold(r.Ticker, symbol) {
					byScrape[r.ScrapedAt] += int(r.Mentions)
				}
			}

			mu.Lock()
			defer mu.Unlock()
			for ts, n := range byScrape {
				points = append(points, MentionPoint{
					Date:      date,
					ScrapedAt: time.UnixMilli(ts).UTC(),
					Mentions:  n,
				})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].ScrapedAt.Before(points[j].ScrapedAt)
	})
	if points == nil {
		points = []MentionPoint{}
	}
	return points, nil
}

// ---------------------------------------------------------------------------
// Path helpers
// ---------------------------------------------------------------------------

// postsPath returns the path of a date's posts file.
// Layout: <dataDir>/archive/<YYYY-MM-DD>/posts.parquet
func (s *ParquetStore) postsPath(date string) string {
	return filepath.Join(s.DataDir, "archive", date, "posts.parquet")
}

// mentionsPath returns the path of a date's mentions file.
// Layout: <dataDir>/archive/<YYYY-MM-DD>/mentions.parquet
func (s *ParquetStore) mentionsPath(date string) string {
	return filepath.Join(s.DataDir, "archive", date, "mentions.parquet")
}

// ---------------------------------------------------------------------------
// Parquet file helpers
// ---------------------------------------------------------------------------

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// readExisting reads the records already archived at path. A missing file is
// empty; any other failure is returned so a merge never overwrites data it
// could not read.
func readExisting[T any](path string) ([]T, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return readParquetFile[T](path)
}

// mergePostRecords deduplicates post records by (scraped_at, permalink),
// preferring new records over existing ones. Results are sorted by scrape
// time, keeping input order within a scrape.
func mergePostRecords(existing, incoming []PostRecord) []PostRecord {
	type key struct {
		ts        int64
		permalink string
	}
	replaced := make(map[key]bool, len(incoming))
	for _, r := range incoming {
		replaced[key{r.ScrapedAt, r.Permalink}] = true
	}

	merged := make([]PostRecord, 0, len(existing)+len(incoming))
	for _, r := range existing {
		if !replaced[key{r.ScrapedAt, r.Permalink}] {
			merged = append(merged, r)
		}
	}
	merged = append(merged, incoming...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].ScrapedAt < merged[j].ScrapedAt
	})
	return merged
}

// mergeMentionRecords drops existing records from scrape ts, which incoming
// replaces wholesale, and sorts the result by scrape time.
func mergeMentionRecords(existing, incoming []MentionRecord, ts int64) []MentionRecord {
	merged := make([]MentionRecord, 0, len(existing)+len(incoming))
	for _, r := range existing {
		if r.ScrapedAt != ts {
			merged = append(merged, r)
		}
	}
	merged = append(merged, incoming...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].ScrapedAt < merged[j].ScrapedAt
	})
	return merged
}
