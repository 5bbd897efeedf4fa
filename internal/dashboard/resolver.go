package dashboard

import (
	"fmt"
	"sort"
	"strings"

	"yarsdash/internal/snapshot"
)

const compoundSeparator = "/"

// lowMentionThreshold marks summaries that lean on general market context.
const lowMentionThreshold = 2

// Selection is the currently selected display ticker, or "" for none. The
// caller owns it; the resolver only reads it.
type Selection string

// Toggle applies a click on ticker: clicking the selected ticker clears the
// selection, clicking another ticker replaces it.
func (s Selection) Toggle(ticker string) Selection {
	if ticker == "" || Selection(ticker) == s {
		return ""
	}
	return Selection(ticker)
}

// ResolveTickerDetail finds the detail record for a display ticker. A
// compound ticker such as "$V/MA" falls back to its first component. A miss
// returns ok=false.
func ResolveTickerDetail(details map[string]snapshot.TickerDetail, ticker string) (snapshot.TickerDetail, bool) {
	sym := PlainTicker(ticker)
	if sym == "" {
		return snapshot.TickerDetail{}, false
	}
	if d, ok := details[sym]; ok {
		return d, true
	}
	if head, _, found := strings.Cut(sym, compoundSeparator); found {
		if d, ok := details[head]; ok {
			return d, true
		}
	}
	return snapshot.TickerDetail{}, false
}

// TickerDetailView is the resolved detail shaped for display.
type TickerDetailView struct {
	Ticker       string                  `json:"ticker"`
	Summary      string                  `json:"summary"`
	MentionCount int                     `json:"mention_count"`
	MentionLabel string                  `json:"mention_label"`
	LowMentions  bool                    `json:"low_mentions"`
	Factors      []snapshot.TickerFactor `json:"factors"`
}

// DetailSelection is the outcome of a ticker click: the new selection and,
// when something is selected and found, its detail.
type DetailSelection struct {
	Selected string            `json:"selected"`
	Detail   *TickerDetailView `json:"detail"`
}

// SelectTicker toggles the selection with a click on ticker and resolves the
// detail of whatever ends up selected.
func SelectTicker(details map[string]snapshot.TickerDetail, current Selection, ticker string) DetailSelection {
	next := current.Toggle(ticker)
	out := DetailSelection{Selected: string(next)}
	if next != "" {
		out.Detail = DetailView(details, string(next))
	}
	return out
}

// DetailView resolves ticker and shapes it for display, or returns nil.
func DetailView(details map[string]snapshot.TickerDetail, ticker string) *TickerDetailView {
	d, ok := ResolveTickerDetail(details, ticker)
	if !ok {
		return nil
	}

	factors := make([]snapshot.TickerFactor, len(d.Factors))
	copy(factors, d.Factors)
	sort.SliceStable(factors, func(i, j int) bool {
		return factors[i].Intensity > factors[j].Intensity
	})

	return &TickerDetailView{
		Ticker:       ticker,
		Summary:      d.Summary,
		MentionCount: d.MentionCount,
		MentionLabel: mentionLabel(d.MentionCount),
		LowMentions:  d.MentionCount <= lowMentionThreshold,
		Factors:      factors,
	}
}

func mentionLabel(n int) string {
	if n == 1 {
		return "1 mention"
	}
	return fmt.Sprintf("%s mentions", FormatInt(n))
}
