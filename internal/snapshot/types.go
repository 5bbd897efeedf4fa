// Package snapshot defines the dashboard snapshot produced by the external
// scraping pipeline and the loader that reads it from disk.
package snapshot

// Snapshot is the full dashboard payload. It is read fresh for every render
// and never mutated afterwards.
type Snapshot struct {
	ScrapedAt        string                  `json:"scraped_at"`
	Subreddits       []string                `json:"subreddits"`
	Posts            []Post                  `json:"posts"`
	Comments         []Comment               `json:"comments"`
	TickerMentions   Counts                  `json:"ticker_mentions"`
	SubredditTickers Ordered[Counts]         `json:"subreddit_tickers"`
	SubredditStats   Ordered[SubredditStats] `json:"subreddit_stats"`
	AIAnalysis       *AIAnalysis             `json:"ai_analysis"`
	TickerDetails    map[string]TickerDetail `json:"ticker_details,omitempty"`
}

// Post is a single scraped Reddit submission.
type Post struct {
	Subreddit   string   `json:"subreddit"`
	Title       string   `json:"title"`
	Body        string   `json:"body"`
	Score       int      `json:"score"`
	NumComments int      `json:"num_comments"`
	CreatedUTC  float64  `json:"created_utc"` // epoch seconds, 0 when unknown
	Author      string   `json:"author"`
	Permalink   string   `json:"permalink"`
	Tickers     []string `json:"tickers"`
}

// Comment is a single scraped comment on one of the top posts.
type Comment struct {
	PostTitle string   `json:"post_title"`
	Subreddit string   `json:"subreddit"`
	Comment   string   `json:"comment"`
	Score     int      `json:"score"`
	Author    string   `json:"author"`
	Tickers   []string `json:"tickers"`
}

// SubredditStats holds per-community post statistics.
type SubredditStats struct {
	PostCount   int     `json:"post_count"`
	AvgScore    float64 `json:"avg_score"`
	AvgComments float64 `json:"avg_comments"`
	TotalScore  int     `json:"total_score"`
}

// Sentiment is the categorical market-mood verdict.
type Sentiment string

const (
	SentimentBullish Sentiment = "bullish"
	SentimentBearish Sentiment = "bearish"
	SentimentNeutral Sentiment = "neutral"
)

// Known reports whether s is one of the three defined verdicts.
func (s Sentiment) Known() bool {
	switch s {
	case SentimentBullish, SentimentBearish, SentimentNeutral:
		return true
	}
	return false
}

// OrNeutral returns s, or neutral for anything unrecognised.
func (s Sentiment) OrNeutral() Sentiment {
	if s.Known() {
		return s
	}
	return SentimentNeutral
}

// OverallSentiment is the headline verdict with its confidence (0-100).
type OverallSentiment struct {
	Overall    Sentiment `json:"overall"`
	Confidence float64   `json:"confidence"`
	Reasoning  string    `json:"reasoning"`
}

// TickerToWatch is a ticker singled out by the analysis.
type TickerToWatch struct {
	Ticker    string    `json:"ticker"`
	Sentiment Sentiment `json:"sentiment"`
	Reason    string    `json:"reason"`
}

// AIAnalysis is the language-model summary of the snapshot.
type AIAnalysis struct {
	Sentiment       OverallSentiment `json:"sentiment"`
	Themes          []Insight        `json:"themes"`
	TickersToWatch  []TickerToWatch  `json:"tickers_to_watch"`
	RiskFactors     []Insight        `json:"risk_factors"`
	ContrarianViews []Insight        `json:"contrarian_views"`
	SectorBreakdown Counts           `json:"sector_breakdown"`
}

// FallbackAnalysis mirrors what the pipeline writes when the model call
// failed.
func FallbackAnalysis() *AIAnalysis {
	return &AIAnalysis{
		Sentiment: OverallSentiment{
			Overall:    SentimentNeutral,
			Confidence: 0,
			Reasoning:  "AI analysis unavailable",
		},
		Themes:          []Insight{},
		TickersToWatch:  []TickerToWatch{},
		RiskFactors:     []Insight{},
		ContrarianViews: []Insight{},
	}
}

// FactorType is the direction of a sentiment factor.
type FactorType string

const (
	FactorPositive FactorType = "positive"
	FactorNegative FactorType = "negative"
)

// TickerFactor is one discussion driver for a ticker; intensity is in
// [-10, 10].
type TickerFactor struct {
	Factor    string     `json:"factor"`
	Type      FactorType `json:"type"`
	Intensity float64    `json:"intensity"`
}

// TickerDetail is the per-ticker community summary.
type TickerDetail struct {
	Summary      string         `json:"summary"`
	MentionCount int            `json:"mention_count"`
	Factors      []TickerFactor `json:"factors"`
}
