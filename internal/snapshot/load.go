package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"
)

// ErrNotFound is returned by Load when the snapshot file does not exist.
var ErrNotFound = errors.New("snapshot not found")

// Load reads and parses the snapshot file at path. A missing file or
// malformed JSON is an error; missing optional sections are filled with
// their defaults.
func Load(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	snap, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return snap, nil
}

// Decode parses a snapshot from r.
func Decode(r io.Reader) (*Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{}
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, err
	}
	snap.applyDefaults()
	return snap, nil
}

func (s *Snapshot) applyDefaults() {
	if s.AIAnalysis == nil {
		s.AIAnalysis = FallbackAnalysis()
	}
	if s.Subreddits == nil {
		s.Subreddits = []string{}
	}
	if s.Posts == nil {
		s.Posts = []Post{}
	}
	if s.Comments == nil {
		s.Comments = []Comment{}
	}
}

// ScrapedTime parses ScrapedAt. The pipeline writes ISO-8601 with an offset;
// a zero time is returned if the field is empty or unparseable.
func (s *Snapshot) ScrapedTime() time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s.ScrapedAt); err == nil {
			return t
		}
	}
	return time.Time{}
}
