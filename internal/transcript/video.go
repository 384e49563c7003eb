// Package transcript holds the in-memory transcript index: reference resolution,
// the video store, substring search with context, and the Service that composes
// them into the operations exposed over MCP.
package transcript

import "fmt"

// WatchURL returns the canonical watch URL for a video ID.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

// TimestampURL returns a watch URL that starts playback at the given offset.
func TimestampURL(id string, seconds float64) string {
	return fmt.Sprintf("%s&t=%ds", WatchURL(id), int(seconds))
}

// Caption is one cue as delivered by a Fetcher, timed in milliseconds.
type Caption struct {
	Text       string  `json:"text"`
	OffsetMs   float64 `json:"offset_ms"`
	DurationMs float64 `json:"duration_ms"`
}

// Entry is one transcript line, timed in seconds.
type Entry struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// Video is a stored transcript record. It is built once by NewVideo and
// must not be mutated afterwards.
type Video struct {
	ID            string  `json:"id"`
	URL           string  `json:"url"`
	Title         string  `json:"title"`
	Language      string  `json:"language"`
	Transcript    []Entry `json:"transcript"`
	TotalDuration float64 `json:"total_duration"`
}

// NewVideo builds a record from fetched captions, converting milliseconds to seconds.
func NewVideo(id, language string, captions []Caption) *Video {
	entries := make([]Entry, 0, len(captions))
	for _, c := range captions {
		entries = append(entries, Entry{
			Text:     c.Text,
			Start:    nonNegative(c.OffsetMs) / 1000,
			Duration: nonNegative(c.DurationMs) / 1000,
		})
	}

	var total float64
	if n := len(entries); n > 0 {
		total = entries[n-1].Start + entries[n-1].Duration
	}

	return &Video{
		ID:            id,
		URL:           WatchURL(id),
		Title:         "YouTube Video " + id,
		Language:      language,
		Transcript:    entries,
		TotalDuration: total,
	}
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
