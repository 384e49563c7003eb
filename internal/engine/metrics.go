package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the server.
var metrics struct {
	VideosAdded           atomic.Int64
	AddAlreadyLoaded      atomic.Int64
	AddErrors             atomic.Int64
	VideosRemoved         atomic.Int64
	Searches              atomic.Int64
	SearchMatches         atomic.Int64
	TranscriptFetches     atomic.Int64
	TranscriptFetchErrors atomic.Int64
	YouTubeRequests       atomic.Int64
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"videos_added":            metrics.VideosAdded.Load(),
		"add_already_loaded":      metrics.AddAlreadyLoaded.Load(),
		"add_errors":              metrics.AddErrors.Load(),
		"videos_removed":          metrics.VideosRemoved.Load(),
		"searches":                metrics.Searches.Load(),
		"search_matches":          metrics.SearchMatches.Load(),
		"transcript_fetches":      metrics.TranscriptFetches.Load(),
		"transcript_fetch_errors": metrics.TranscriptFetchErrors.Load(),
		"youtube_requests":        metrics.YouTubeRequests.Load(),
		"cache_hits":              hits,
		"cache_misses":            misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"videos_added", "add_already_loaded", "add_errors", "videos_removed",
		"searches", "search_matches",
		"transcript_fetches", "transcript_fetch_errors", "youtube_requests",
		"cache_hits", "cache_misses",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for the tool layer.
func IncrVideosAdded()        { metrics.VideosAdded.Add(1) }
func IncrAddAlreadyLoaded()   { metrics.AddAlreadyLoaded.Add(1) }
func IncrAddErrors()          { metrics.AddErrors.Add(1) }
func IncrVideosRemoved(n int) { metrics.VideosRemoved.Add(int64(n)) }

// IncrSearch records one search and the number of matches it produced.
func IncrSearch(matches int) {
	metrics.Searches.Add(1)
	metrics.SearchMatches.Add(int64(matches))
}

// Incrementors for sources/ sub-package.
func IncrTranscriptFetch()      { metrics.TranscriptFetches.Add(1) }
func IncrTranscriptFetchError() { metrics.TranscriptFetchErrors.Add(1) }
func IncrYouTubeRequest()       { metrics.YouTubeRequests.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
