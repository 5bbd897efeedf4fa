package dashboard

import (
	"time"

	"yarsdash/internal/snapshot"
)

// Options controls view sizes and presentation. Zero fields take the
// dashboard defaults.
type Options struct {
	TopTickers    int
	MatrixTickers int
	TopPosts      int
	TitleLength   int
	Location      *time.Location
	Palette       Palette
}

// DefaultTopTickers is the length of the ticker ranking.
const DefaultTopTickers = 15

func (o Options) withDefaults() Options {
	if o.TopTickers <= 0 {
		o.TopTickers = DefaultTopTickers
	}
	if o.MatrixTickers <= 0 {
		o.MatrixTickers = DefaultMatrixTickers
	}
	if o.TopPosts <= 0 {
		o.TopPosts = DefaultTopPosts
	}
	if o.TitleLength <= 0 {
		o.TitleLength = DefaultTitleLength
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Palette.Subreddits == nil && o.Palette.Default == "" {
		o.Palette = DefaultPalette()
	}
	return o
}

// HeaderView summarizes the snapshot for the page header.
type HeaderView struct {
	ScrapedAt      string `json:"scraped_at"`
	PostCount      int    `json:"post_count"`
	CommentCount   int    `json:"comment_count"`
	SubredditCount int    `json:"subreddit_count"`
}

// Header counts the snapshot's posts, comments and subreddits.
func Header(s *snapshot.Snapshot) HeaderView {
	return HeaderView{
		ScrapedAt:      s.ScrapedAt,
		PostCount:      len(s.Posts),
		CommentCount:   len(s.Comments),
		SubredditCount: len(s.Subreddits),
	}
}

// WatchView is a ticker to watch with its display symbol.
type WatchView struct {
	Ticker    string             `json:"ticker"`
	Sentiment snapshot.Sentiment `json:"sentiment"`
	Reason    string             `json:"reason"`
}

// InsightsView is the AI analysis with unknown sentiments mapped to neutral.
type InsightsView struct {
	Sentiment       snapshot.Sentiment `json:"sentiment"`
	Confidence      float64            `json:"confidence"`
	Reasoning       string             `json:"reasoning"`
	Themes          []snapshot.Insight `json:"themes"`
	TickersToWatch  []WatchView        `json:"tickers_to_watch"`
	RiskFactors     []snapshot.Insight `json:"risk_factors"`
	ContrarianViews []snapshot.Insight `json:"contrarian_views"`
}

// Insights normalizes the analysis for display. A nil analysis renders as
// the producer's fallback.
func Insights(a *snapshot.AIAnalysis) InsightsView {
	if a == nil {
		a = snapshot.FallbackAnalysis()
	}
	v := InsightsView{
		Sentiment:       a.Sentiment.Overall.OrNeutral(),
		Confidence:      a.Sentiment.Confidence,
		Reasoning:       a.Sentiment.Reasoning,
		Themes:          nonNil(a.Themes),
		TickersToWatch:  make([]WatchView, 0, len(a.TickersToWatch)),
		RiskFactors:     nonNil(a.RiskFactors),
		ContrarianViews: nonNil(a.ContrarianViews),
	}
	for _, t := range a.TickersToWatch {
		v.TickersToWatch = append(v.TickersToWatch, WatchView{
			Ticker:    DisplayTicker(t.Ticker),
			Sentiment: t.Sentiment.OrNeutral(),
			Reason:    t.Reason,
		})
	}
	return v
}

func nonNil(in []snapshot.Insight) []snapshot.Insight {
	if in == nil {
		return []snapshot.Insight{}
	}
	return in
}

// View is every chart and table of the dashboard page.
type View struct {
	Header          HeaderView        `json:"header"`
	Legend          []LegendEntry     `json:"legend"`
	TickerRanking   []TickerCount     `json:"ticker_ranking"`
	Radar           []RadarPoint      `json:"radar"`
	Activity        []ActivityBar     `json:"activity"`
	Engagement      []EngagementGroup `json:"engagement"`
	Timeline        []TimelinePoint   `json:"timeline"`
	Matrix          []MatrixRow       `json:"matrix"`
	Sectors         []SectorShare     `json:"sectors"`
	TopPosts        []PostRow         `json:"top_posts"`
	Insights        InsightsView      `json:"insights"`
	DetailedTickers []string          `json:"detailed_tickers"`
}

// Build derives the full page view from a snapshot.
func Build(s *snapshot.Snapshot, opts Options) View {
	opts = opts.withDefaults()

	var sectors snapshot.Counts
	if s.AIAnalysis != nil {
		sectors = s.AIAnalysis.SectorBreakdown
	}

	return View{
		Header:          Header(s),
		Legend:          Legend(s.Subreddits, opts.Palette),
		TickerRanking:   TickerRanking(s.TickerMentions, opts.TopTickers),
		Radar:           SubredditRadar(s.SubredditStats),
		Activity:        SubredditActivity(s.SubredditStats, opts.Palette),
		Engagement:      GroupEngagement(Engagement(s.Posts, opts.TitleLength), s.Subreddits, opts.Palette),
		Timeline:        Timeline(s.Posts, opts.Location),
		Matrix:          SubredditTickerMatrix(s.TickerMentions, s.Subreddits, s.SubredditTickers, opts.MatrixTickers),
		Sectors:         SectorBreakdown(sectors, opts.Palette),
		TopPosts:        TopPosts(s.Posts, SortByScore, opts.TopPosts),
		Insights:        Insights(s.AIAnalysis),
		DetailedTickers: detailedTickers(s),
	}
}

// detailedTickers lists ranked tickers that resolve to a detail record, so
// the page can mark them as clickable.
func detailedTickers(s *snapshot.Snapshot) []string {
	out := []string{}
	if len(s.TickerDetails) == 0 {
		return out
	}
	for _, e := range rankCounts(s.TickerMentions) {
		if _, ok := ResolveTickerDetail(s.TickerDetails, DisplayTicker(e.Key)); ok {
			out = append(out, DisplayTicker(e.Key))
		}
	}
	return out
}
