package dashboard

// Palette assigns display colors to subreddits and sectors. It is passed into
// the view builders rather than read from package state.
type Palette struct {
	Subreddits map[string]string
	Default    string
	Sectors    []string
}

// DefaultPalette returns the stock dashboard colors.
func DefaultPalette() Palette {
	return Palette{
		Subreddits: map[string]string{
			"wallstreetbets": "#8b5cf6",
			"stocks":         "#3b82f6",
			"investing":      "#10b981",
			"options":        "#f59e0b",
			"StockMarket":    "#ef4444",
		},
		Default: "#6b7280",
		Sectors: []string{
			"#8b5cf6",
			"#3b82f6",
			"#10b981",
			"#f59e0b",
			"#ef4444",
			"#ec4899",
			"#06b6d4",
		},
	}
}

// Color returns the color for a subreddit, falling back to the default.
func (p Palette) Color(subreddit string) string {
	if c, ok := p.Subreddits[subreddit]; ok {
		return c
	}
	return p.Default
}

// SectorColor cycles through the sector colors by rank.
func (p Palette) SectorColor(i int) string {
	if len(p.Sectors) == 0 {
		return p.Default
	}
	return p.Sectors[i%len(p.Sectors)]
}

// LegendEntry is one subreddit in a chart legend.
type LegendEntry struct {
	Subreddit string `json:"subreddit"`
	Label     string `json:"label"`
	Color     string `json:"color"`
}

// Legend lists the subreddits in their canonical order with their colors.
func Legend(subreddits []string, p Palette) []LegendEntry {
	out := make([]LegendEntry, 0, len(subreddits))
	for _, s := range subreddits {
		out = append(out, LegendEntry{Subreddit: s, Label: DisplaySubreddit(s), Color: p.Color(s)})
	}
	return out
}
