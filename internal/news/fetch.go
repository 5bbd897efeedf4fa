// Package news fetches recent headlines for a ticker from Alpaca's news API,
// falling back to Google News RSS.
package news

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"yarsdash/internal/config"
)

const (
	// DefaultWindow is how far back headlines are collected.
	DefaultWindow = 72 * time.Hour
	// DefaultLimit caps the number of headlines returned.
	DefaultLimit = 10

	googleNewsURL = "https://news.google.com/rss/search"
)

// Article is a single news article from any source.
type Article struct {
	Time     time.Time `json:"time"`
	Source   string    `json:"source"`
	Headline string    `json:"headline"`
	Content  string    `json:"content,omitempty"`
	URL      string    `json:"url,omitempty"`
}

// AlpacaNews is the part of the Alpaca marketdata client used here.
type AlpacaNews interface {
	GetNews(req marketdata.GetNewsRequest) ([]marketdata.News, error)
}

// Fetcher collects headlines for a symbol.
type Fetcher struct {
	alpaca     AlpacaNews
	googleURL  string
	httpClient *http.Client
	log        *slog.Logger

	Window time.Duration
	Limit  int
	now    func() time.Time
}

// NewFetcher creates a Fetcher. Alpaca is used only when an API key is
// configured.
func NewFetcher(cfg config.Alpaca, log *slog.Logger) *Fetcher {
	f := &Fetcher{
		googleURL:  googleNewsURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log.With("component", "news"),
		Window:     DefaultWindow,
		Limit:      DefaultLimit,
		now:        time.Now,
	}
	if cfg.APIKey != "" {
		f.alpaca = marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    cfg.APIKey,
			APISecret: cfg.APISecret,
			BaseURL:   cfg.DataURL,
		})
	}
	return f
}

// Headlines returns the newest articles about symbol within the window,
// newest first. Upstream failures are logged and yield an empty list.
func (f *Fetcher) Headlines(ctx context.Context, symbol string) []Article {
	end := f.now()
	start := end.Add(-f.Window)

	var articles []Article
	if f.alpaca != nil {
		a, err := FetchAlpacaNews(f.alpaca, symbol, start, end)
		if err != nil {
			f.log.Warn("alpaca news failed", "symbol", symbol, "error", err)
		}
		articles = a
	}
	if len(articles) == 0 {
		a, err := f.fetchGoogleNews(ctx, symbol, start, end)
		if err != nil {
			f.log.Warn("google news failed", "symbol", symbol, "error", err)
		}
		articles = a
	}

	articles = dedupe(articles)
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].Time.After(articles[j].Time)
	})
	if f.Limit > 0 && len(articles) > f.Limit {
		articles = articles[:f.Limit]
	}
	if articles == nil {
		articles = []Article{}
	}
	return articles
}

func dedupe(in []Article) []Article {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, a := range in {
		k := strings.ToLower(a.Headline)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, a)
	}
	return out
}

// --- Alpaca ---

// FetchAlpacaNews fetches news from the Alpaca marketdata API.
func FetchAlpacaNews(mdc AlpacaNews, symbol string, start, end time.Time) ([]Article, error) {
	alpacaNews, err := mdc.GetNews(marketdata.GetNewsRequest{
		Symbols:            []string{symbol},
		Start:              start,
		End:                end,
		TotalLimit:         50,
		IncludeContent:     true,
		ExcludeContentless: false,
		Sort:               marketdata.SortDesc,
	})
	if err != nil {
		return nil, err
	}

	articles := make([]Article, 0, len(alpacaNews))
	for _, a := range alpacaNews {
		body := ""
		if a.Summary != "" {
			body = a.Summary
		} else if a.Content != "" {
			body = ExtractSymbolContent(a.Content, symbol)
		}
		articles = append(articles, Article{
			Time:     a.CreatedAt,
			Source:   "alpaca",
			Headline: a.Headline,
			Content:  body,
			URL:      a.URL,
		})
	}
	return articles, nil
}

// --- Google News RSS ---

type rssResponse struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	PubDate string `xml:"pubDate"`
	Desc    string `xml:"description"`
}

// fetchGoogleNews fetches news from Google News RSS.
func (f *Fetcher) fetchGoogleNews(ctx context.Context, symbol string, start, end time.Time) ([]Article, error) {
	q := url.Values{}
	q.Set("q", symbol+" stock")
	q.Set("hl", "en-US")
	q.Set("gl", "US")
	q.Set("ceid", "US:en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.googleURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google news status %d", resp.StatusCode)
	}

	var rss rssResponse
	if err := xml.NewDecoder(resp.Body).Decode(&rss); err != nil {
		return nil, err
	}

	var articles []Article
	for _, item := range rss.Channel.Items {
		t, err := time.Parse(time.RFC1123Z, item.PubDate)
		if err != nil {
			t, err = time.Parse(time.RFC1123, item.PubDate)
			if err != nil {
				continue
			}
		}
		if t.Before(start) || t.After(end) {
			continue
		}
		headline := item.Title
		if idx := strings.LastIndex(headline, " - "); idx > 0 {
			headline = headline[:idx]
		}
		articles = append(articles, Article{
			Time:     t,
			Source:   "google",
			Headline: headline,
			Content:  StripHTML(item.Desc),
			URL:      item.Link,
		})
	}
	return articles, nil
}

// --- HTML helpers ---

var htmlTagRe = regexp.MustCompile(`<[^>]*>`)
var htmlParaRe = regexp.MustCompile(`(?i)</?(p|br|div|li|h[1-6])\b[^>]*>`)

// StripHTML removes HTML tags and normalizes whitespace.
func StripHTML(s string) string {
	s = htmlTagRe.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

// ExtractSymbolContent extracts paragraphs mentioning the symbol from HTML content.
// Falls back to full stripped HTML if no paragraphs mention the symbol.
func ExtractSymbolContent(rawHTML, symbol string) string {
	chunks := htmlParaRe.Split(rawHTML, -1)
	var matched []string
	upper := strings.ToUpper(symbol)
	for _, chunk := range chunks {
		plain := StripHTML(chunk)
		if plain == "" {
			continue
		}
		if strings.Contains(strings.ToUpper(plain), upper) {
			matched = append(matched, plain)
		}
	}
	if len(matched) > 0 {
		return strings.Join(matched, " ")
	}
	return StripHTML(rawHTML)
}
