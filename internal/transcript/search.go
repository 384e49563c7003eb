package transcript

import (
	"sort"
	"strings"
)

// Match is one transcript entry containing the query, with its surrounding context.
type Match struct {
	VideoID     string  `json:"video_id"`
	Timestamp   float64 `json:"timestamp"`
	Duration    float64 `json:"duration"`
	MatchedText string  `json:"matched_text"`
	Context     string  `json:"context"`
	Index       int     `json:"index"`
}

// Search returns every entry whose text contains query, case-insensitively.
// Each match carries the texts of up to window entries on either side.
// Results are ordered by video ID, then by timestamp.
func Search(videos []*Video, query string, window int) ([]Match, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, ErrInvalidQuery
	}
	if window < 0 {
		window = 0
	}

	var matches []Match
	for _, v := range videos {
		for i, e := range v.Transcript {
			if !strings.Contains(strings.ToLower(e.Text), q) {
				continue
			}
			matches = append(matches, Match{
				VideoID:     v.ID,
				Timestamp:   e.Start,
				Duration:    e.Duration,
				MatchedText: e.Text,
				Context:     contextText(v.Transcript, i, window),
				Index:       i,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.VideoID != b.VideoID {
			return a.VideoID < b.VideoID
		}
		if a.Timestamp != b.Timestamp {
			return a.Timestamp < b.Timestamp
		}
		return a.Index < b.Index
	})
	return matches, nil
}

func contextText(entries []Entry, i, window int) string {
	lo := max(0, i-window)
	hi := min(len(entries), i+window+1)
	parts := make([]string, 0, hi-lo)
	for _, e := range entries[lo:hi] {
		parts = append(parts, e.Text)
	}
	return strings.Join(parts, " ")
}
