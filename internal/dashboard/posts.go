package dashboard

import (
	"sort"

	"yarsdash/internal/snapshot"
)

// DefaultTopPosts is the size of the top posts table.
const DefaultTopPosts = 25

const shownTickers = 3

// PostSort selects the column the top posts table is ordered by.
type PostSort string

const (
	SortByScore    PostSort = "score"
	SortByComments PostSort = "num_comments"
)

// ParsePostSort maps a query value to a PostSort, defaulting to score.
func ParsePostSort(s string) PostSort {
	if PostSort(s) == SortByComments {
		return SortByComments
	}
	return SortByScore
}

// PostRow is one row of the top posts table.
type PostRow struct {
	Rank            int      `json:"rank"`
	Title           string   `json:"title"`
	URL             string   `json:"url"`
	Subreddit       string   `json:"subreddit"`
	Score           int      `json:"score"`
	NumComments     int      `json:"num_comments"`
	ScoreDisplay    string   `json:"score_display"`
	CommentsDisplay string   `json:"comments_display"`
	Tickers         []string `json:"tickers"`
	MoreTickers     int      `json:"more_tickers"`
}

// TopPosts returns the limit highest posts by the chosen column. Ties keep
// input order.
func TopPosts(posts []snapshot.Post, by PostSort, limit int) []PostRow {
	sorted := make([]snapshot.Post, len(posts))
	copy(sorted, posts)
	key := func(p snapshot.Post) int {
		if by == SortByComments {
			return p.NumComments
		}
		return p.Score
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return key(sorted[i]) > key(sorted[j])
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	out := make([]PostRow, 0, len(sorted))
	for i, p := range sorted {
		row := PostRow{
			Rank:            i + 1,
			Title:           p.Title,
			URL:             PostURL(p.Permalink),
			Subreddit:       p.Subreddit,
			Score:           p.Score,
			NumComments:     p.NumComments,
			ScoreDisplay:    FormatInt(p.Score),
			CommentsDisplay: FormatInt(p.NumComments),
			Tickers:         []string{},
		}
		for j, t := range p.Tickers {
			if j == shownTickers {
				row.MoreTickers = len(p.Tickers) - shownTickers
				break
			}
			row.Tickers = append(row.Tickers, DisplayTicker(t))
		}
		out = append(out, row)
	}
	return out
}

// PostURL builds the public link for a permalink.
func PostURL(permalink string) string {
	return "https://reddit.com" + permalink
}
