package dashboard

import (
	"math"

	"yarsdash/internal/snapshot"
)

// RadarPoint is a subreddit's metrics scaled to 0-100 against the busiest
// subreddit for each metric.
type RadarPoint struct {
	Subreddit string `json:"subreddit"`
	Score     int    `json:"score"`
	Comments  int    `json:"comments"`
	Activity  int    `json:"activity"`
}

// SubredditRadar normalizes avg_score, avg_comments and post_count per
// subreddit. A metric whose maximum is not positive normalizes to 0.
func SubredditRadar(stats snapshot.Ordered[snapshot.SubredditStats]) []RadarPoint {
	entries := stats.Entries()
	var maxScore, maxComments, maxPosts float64
	for _, e := range entries {
		maxScore = math.Max(maxScore, e.Value.AvgScore)
		maxComments = math.Max(maxComments, e.Value.AvgComments)
		maxPosts = math.Max(maxPosts, float64(e.Value.PostCount))
	}

	out := make([]RadarPoint, 0, len(entries))
	for _, e := range entries {
		out = append(out, RadarPoint{
			Subreddit: DisplaySubreddit(e.Key),
			Score:     normalize(e.Value.AvgScore, maxScore),
			Comments:  normalize(e.Value.AvgComments, maxComments),
			Activity:  normalize(float64(e.Value.PostCount), maxPosts),
		})
	}
	return out
}

func normalize(v, peak float64) int {
	if peak <= 0 {
		return 0
	}
	return int(math.Round(v / peak * 100))
}

// ActivityBar is a subreddit's raw engagement, rounded for display.
type ActivityBar struct {
	Subreddit   string `json:"subreddit"`
	AvgUpvotes  int    `json:"avg_upvotes"`
	AvgComments int    `json:"avg_comments"`
	PostCount   int    `json:"post_count"`
	Color       string `json:"color"`
}

// SubredditActivity lists raw per-subreddit engagement in stats order.
func SubredditActivity(stats snapshot.Ordered[snapshot.SubredditStats], p Palette) []ActivityBar {
	entries := stats.Entries()
	out := make([]ActivityBar, 0, len(entries))
	for _, e := range entries {
		out = append(out, ActivityBar{
			Subreddit:   DisplaySubreddit(e.Key),
			AvgUpvotes:  int(math.Round(e.Value.AvgScore)),
			AvgComments: int(math.Round(e.Value.AvgComments)),
			PostCount:   e.Value.PostCount,
			Color:       p.Color(e.Key),
		})
	}
	return out
}
