package dashboard

import (
	"math"
	"sort"
	"time"

	"yarsdash/internal/snapshot"
)

// TimelineLayout is the bucket label format, e.g. "01/15 10:00".
const TimelineLayout = "01/02 15:00"

// TimelinePoint is one hour of posting activity.
type TimelinePoint struct {
	Time     string    `json:"time"`
	Start    time.Time `json:"start"`
	Posts    int       `json:"posts"`
	AvgScore int       `json:"avgScore"`
}

// Timeline buckets posts by the hour they were created in, in loc. Posts
// without a creation time are skipped. Buckets are ordered by start time,
// which matches label order within a single year. The label carries no year,
// so posts a year apart produce separate points with the same Time.
func Timeline(posts []snapshot.Post, loc *time.Location) []TimelinePoint {
	if loc == nil {
		loc = time.Local
	}

	type bucket struct {
		start time.Time
		count int
		sum   int
	}
	buckets := make(map[int64]*bucket)
	for _, p := range posts {
		if p.CreatedUTC == 0 || math.IsNaN(p.CreatedUTC) {
			continue
		}
		sec, frac := math.Modf(p.CreatedUTC)
		t := time.Unix(int64(sec), int64(frac*1e9)).In(loc)
		start := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, loc)

		b, ok := buckets[start.Unix()]
		if !ok {
			b = &bucket{start: start}
			buckets[start.Unix()] = b
		}
		b.count++
		b.sum += p.Score
	}

	out := make([]TimelinePoint, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, TimelinePoint{
			Time:     b.start.Format(TimelineLayout),
			Start:    b.start,
			Posts:    b.count,
			AvgScore: int(math.Round(float64(b.sum) / float64(b.count))),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out
}
