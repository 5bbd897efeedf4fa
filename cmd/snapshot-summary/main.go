// Prints a console summary of the current dashboard snapshot: header counts,
// the ticker ranking, sector shares and the sentiment verdict.
//
// Usage:
//
//	go run cmd/snapshot-summary/main.go [-n 15] [-f data/dashboard_data.json]
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"yarsdash/internal/config"
	"yarsdash/internal/dashboard"
	"yarsdash/internal/snapshot"
	"yarsdash/internal/util"
)

// Styles.
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6"))
	tickerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	bullishStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	bearishStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	neutralStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("245"))
)

func sentimentStyle(s snapshot.Sentiment) lipgloss.Style {
	switch s {
	case snapshot.SentimentBullish:
		return bullishStyle
	case snapshot.SentimentBearish:
		return bearishStyle
	default:
		return neutralStyle
	}
}

func main() {
	n := flag.Int("n", dashboard.DefaultTopTickers, "number of tickers to list")
	file := flag.String("f", "", "snapshot file (default from config)")
	flag.Parse()

	cfgPath := "config/yarsdash.yaml"
	if p := os.Getenv("YARSDASH_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = config.FromEnv()
	} else if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLoggerTo(os.Stderr, cfg.Logging.Level, "text")

	path := cfg.Storage.SnapshotPath
	if *file != "" {
		path = *file
	}
	snap, err := snapshot.Load(path)
	if err != nil {
		log.Fatalf("error: %v", err)
	}
	for _, is := range snapshot.Validate(snap) {
		logger.Warn("snapshot issue", "field", is.Field, "message", is.Message)
	}

	render(os.Stdout, snap, *n, time.Now())
}

// render writes the summary for snap to w.
func render(w io.Writer, snap *snapshot.Snapshot, n int, now time.Time) {
	v := dashboard.Build(snap, dashboard.Options{TopTickers: n})

	fmt.Fprintln(w, titleStyle.Render("Reddit Stock Sentiment"))
	fmt.Fprintf(w, "%s  %s posts, %s comments from %d subreddits\n",
		dimStyle.Render("scraped "+dashboard.FormatAge(snap.ScrapedTime(), now)),
		dashboard.FormatInt(v.Header.PostCount),
		dashboard.FormatInt(v.Header.CommentCount),
		v.Header.SubredditCount,
	)
	if len(snap.Subreddits) > 0 {
		subs := make([]string, len(snap.Subreddits))
		for i, s := range snap.Subreddits {
			subs[i] = dashboard.DisplaySubreddit(s)
		}
		fmt.Fprintln(w, dimStyle.Render(strings.Join(subs, "  ")))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, sectionStyle.Render(fmt.Sprintf(" TOP %d TICKERS ", n)))
	if len(v.TickerRanking) == 0 {
		fmt.Fprintln(w, dimStyle.Render("  no ticker mentions"))
	}
	for i, t := range v.TickerRanking {
		fmt.Fprintf(w, "%2d. %s - %s mentions\n", i+1, tickerStyle.Render(fmt.Sprintf("%-8s", t.Ticker)), dashboard.FormatInt(t.Mentions))
	}
	fmt.Fprintln(w)

	if len(v.Sectors) > 0 {
		fmt.Fprintln(w, sectionStyle.Render(" SECTORS "))
		for _, s := range v.Sectors {
			swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color)).Render("■")
			fmt.Fprintf(w, "  %s %-24s %6s  (%s)\n", swatch, s.Sector, dashboard.FormatShare(s.Share), dashboard.FormatInt(s.Count))
		}
		fmt.Fprintln(w)
	}

	in := v.Insights
	fmt.Fprintln(w, sectionStyle.Render(" SENTIMENT "))
	fmt.Fprintf(w, "  %s  %s confidence\n",
		sentimentStyle(in.Sentiment).Render(strings.ToUpper(string(in.Sentiment))),
		dashboard.FormatConfidence(in.Confidence),
	)
	if in.Reasoning != "" {
		fmt.Fprintf(w, "  %s\n", in.Reasoning)
	}
	for _, t := range in.TickersToWatch {
		fmt.Fprintf(w, "  %s %s %s\n", tickerStyle.Render(t.Ticker), sentimentStyle(t.Sentiment).Render(string(t.Sentiment)), dimStyle.Render(t.Reason))
	}
	for _, r := range in.RiskFactors {
		fmt.Fprintf(w, "  %s %s\n", warnStyle.Render("risk:"), r.Title)
	}
}
