// Package dashboard turns a loaded snapshot into the view models rendered by
// the dashboard: ticker ranking, subreddit charts, engagement, timeline,
// ticker-by-subreddit matrix, sectors, top posts and the ticker detail view.
// Every function here is pure; misses and degenerate input resolve to
// zero values rather than errors.
package dashboard

import (
	"sort"
	"strings"

	"yarsdash/internal/snapshot"
)

const (
	tickerMarker    = "$"
	subredditMarker = "r/"
)

// DisplayTicker formats a plain symbol for display, e.g. "AAPL" -> "$AAPL".
func DisplayTicker(sym string) string {
	return tickerMarker + sym
}

// PlainTicker strips the display marker, if any.
func PlainTicker(display string) string {
	return strings.TrimPrefix(display, tickerMarker)
}

// DisplaySubreddit formats a community name for display.
func DisplaySubreddit(name string) string {
	return subredditMarker + name
}

// TickerCount is one row of the ticker ranking.
type TickerCount struct {
	Ticker   string `json:"ticker"`
	Mentions int    `json:"mentions"`
}

// rankCounts sorts counts descending; equal counts keep their mapping order.
func rankCounts(c snapshot.Counts) []snapshot.Entry[int] {
	entries := c.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Value > entries[j].Value
	})
	return entries
}

// TickerRanking returns at most limit tickers ordered by mentions. A
// non-positive limit returns every ticker.
func TickerRanking(mentions snapshot.Counts, limit int) []TickerCount {
	ranked := rankCounts(mentions)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]TickerCount, 0, len(ranked))
	for _, e := range ranked {
		out = append(out, TickerCount{Ticker: DisplayTicker(e.Key), Mentions: e.Value})
	}
	return out
}
