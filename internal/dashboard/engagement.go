package dashboard

import "yarsdash/internal/snapshot"

// DefaultTitleLength is the number of characters kept from a post title in
// the engagement scatter.
const DefaultTitleLength = 40

// EngagementPoint is one post projected onto score/comments.
type EngagementPoint struct {
	Title     string `json:"title"`
	Score     int    `json:"score"`
	Comments  int    `json:"comments"`
	Subreddit string `json:"subreddit"`
}

// Engagement projects each post 1:1, in input order. Titles are cut to
// titleLen characters without an ellipsis.
func Engagement(posts []snapshot.Post, titleLen int) []EngagementPoint {
	out := make([]EngagementPoint, 0, len(posts))
	for _, p := range posts {
		out = append(out, EngagementPoint{
			Title:     truncate(p.Title, titleLen),
			Score:     p.Score,
			Comments:  p.NumComments,
			Subreddit: p.Subreddit,
		})
	}
	return out
}

func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// EngagementGroup holds the scatter points of one subreddit.
type EngagementGroup struct {
	Subreddit string            `json:"subreddit"`
	Color     string            `json:"color"`
	Points    []EngagementPoint `json:"points"`
}

// GroupEngagement splits points by subreddit in canonical order. Points from
// subreddits not listed are left out of the groups.
func GroupEngagement(points []EngagementPoint, subreddits []string, p Palette) []EngagementGroup {
	idx := make(map[string]int, len(subreddits))
	out := make([]EngagementGroup, 0, len(subreddits))
	for _, s := range subreddits {
		if _, dup := idx[s]; dup {
			continue
		}
		idx[s] = len(out)
		out = append(out, EngagementGroup{Subreddit: s, Color: p.Color(s), Points: []EngagementPoint{}})
	}
	for _, pt := range points {
		if i, ok := idx[pt.Subreddit]; ok {
			out[i].Points = append(out[i].Points, pt)
		}
	}
	return out
}
