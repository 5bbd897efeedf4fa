package dashboard

import (
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"yarsdash/internal/snapshot"
)

// DefaultMatrixTickers is the number of tickers cross-tabulated by subreddit.
const DefaultMatrixTickers = 10

// SubredditCount is one cell of the matrix.
type SubredditCount struct {
	Subreddit string
	Mentions  int
}

// MatrixRow holds one ticker's mentions in each subreddit, in canonical
// subreddit order. It encodes as a flat object:
// {"ticker":"$AAPL","stocks":5,"options":0}.
type MatrixRow struct {
	Ticker string
	Counts []SubredditCount
}

// Mentions returns the count for a subreddit, 0 when absent.
func (r MatrixRow) Mentions(subreddit string) int {
	for _, c := range r.Counts {
		if c.Subreddit == subreddit {
			return c.Mentions
		}
	}
	return 0
}

func (r MatrixRow) MarshalJSON() ([]byte, error) {
	m := orderedmap.New[string, any](orderedmap.WithCapacity[string, any](len(r.Counts) + 1))
	m.Set("ticker", r.Ticker)
	for _, c := range r.Counts {
		m.Set(c.Subreddit, c.Mentions)
	}
	return json.Marshal(m)
}

// SubredditTickerMatrix cross-tabulates the top limit tickers against every
// subreddit. Row order follows the ticker ranking.
func SubredditTickerMatrix(mentions snapshot.Counts, subreddits []string, bySub snapshot.Ordered[snapshot.Counts], limit int) []MatrixRow {
	ranked := rankCounts(mentions)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]MatrixRow, 0, len(ranked))
	for _, e := range ranked {
		row := MatrixRow{Ticker: DisplayTicker(e.Key), Counts: make([]SubredditCount, 0, len(subreddits))}
		for _, sub := range subreddits {
			row.Counts = append(row.Counts, SubredditCount{
				Subreddit: sub,
				Mentions:  bySub.Value(sub).Value(e.Key),
			})
		}
		out = append(out, row)
	}
	return out
}
