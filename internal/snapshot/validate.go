package snapshot

import (
	"fmt"
	"sort"
)

// Issue is a non-fatal inconsistency found in a snapshot. Issues are logged
// by the loader's caller and never prevent a render.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	return i.Field + ": " + i.Message
}

// Validate checks the snapshot against the producer's contract and returns
// every violation found.
func Validate(s *Snapshot) []Issue {
	var issues []Issue
	add := func(field, format string, args ...any) {
		issues = append(issues, Issue{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if s.ScrapedAt != "" && s.ScrapedTime().IsZero() {
		add("scraped_at", "unparseable timestamp %q", s.ScrapedAt)
	}

	for _, e := range s.TickerMentions.Entries() {
		if e.Value < 0 {
			add("ticker_mentions."+e.Key, "negative count %d", e.Value)
		}
	}

	known := make(map[string]bool, len(s.Subreddits))
	for _, sub := range s.Subreddits {
		known[sub] = true
	}
	for _, sub := range s.SubredditStats.Keys() {
		if !known[sub] {
			add("subreddit_stats."+sub, "subreddit not listed in subreddits")
		}
	}
	for _, e := range s.SubredditTickers.Entries() {
		if !known[e.Key] {
			add("subreddit_tickers."+e.Key, "subreddit not listed in subreddits")
		}
		for _, c := range e.Value.Entries() {
			if c.Value < 0 {
				add("subreddit_tickers."+e.Key+"."+c.Key, "negative count %d", c.Value)
			}
		}
	}

	if a := s.AIAnalysis; a != nil {
		if !a.Sentiment.Overall.Known() {
			add("ai_analysis.sentiment.overall", "unknown sentiment %q", a.Sentiment.Overall)
		}
		if a.Sentiment.Confidence < 0 || a.Sentiment.Confidence > 100 {
			add("ai_analysis.sentiment.confidence", "%v outside 0-100", a.Sentiment.Confidence)
		}
		for i, t := range a.TickersToWatch {
			if !t.Sentiment.Known() {
				add(fmt.Sprintf("ai_analysis.tickers_to_watch[%d]", i), "unknown sentiment %q", t.Sentiment)
			}
		}
		for _, e := range a.SectorBreakdown.Entries() {
			if e.Value < 0 {
				add("ai_analysis.sector_breakdown."+e.Key, "negative count %d", e.Value)
			}
		}
	}

	syms := make([]string, 0, len(s.TickerDetails))
	for sym := range s.TickerDetails {
		syms = append(syms, sym)
	}
	sort.Strings(syms)
	for _, sym := range syms {
		d := s.TickerDetails[sym]
		if d.MentionCount < 0 {
			add("ticker_details."+sym+".mention_count", "negative count %d", d.MentionCount)
		}
		for i, f := range d.Factors {
			field := fmt.Sprintf("ticker_details.%s.factors[%d]", sym, i)
			if f.Type != FactorPositive && f.Type != FactorNegative {
				add(field, "unknown factor type %q", f.Type)
			}
			if f.Intensity < -10 || f.Intensity > 10 {
				add(field, "intensity %v outside [-10, 10]", f.Intensity)
			}
		}
	}

	return issues
}
