package dashboard

import "yarsdash/internal/snapshot"

// SectorShare is one sector's mention count and its share of the total.
type SectorShare struct {
	Sector string  `json:"sector"`
	Count  int     `json:"count"`
	Share  float64 `json:"share"`
	Color  string  `json:"color"`
}

// SectorBreakdown orders sectors by count, ties in mapping order. Share is a
// percentage of the summed counts, 0 when the sum is 0.
func SectorBreakdown(sectors snapshot.Counts, p Palette) []SectorShare {
	ranked := rankCounts(sectors)
	total := 0
	for _, e := range ranked {
		total += e.Value
	}
	out := make([]SectorShare, 0, len(ranked))
	for i, e := range ranked {
		s := SectorShare{Sector: e.Key, Count: e.Value, Color: p.SectorColor(i)}
		if total > 0 {
			s.Share = float64(e.Value) / float64(total) * 100
		}
		out = append(out, s)
	}
	return out
}
