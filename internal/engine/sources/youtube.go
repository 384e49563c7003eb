package sources

// YouTube caption fetching is split across two files by responsibility:
//   youtube_innertube.go:  Innertube API types, constants, and low-level HTTP primitives
//   youtube_transcript.go: the Fetcher: watch-page scrape, engagement panel and
//                           ANDROID player fallbacks, track selection, timedtext parsing
