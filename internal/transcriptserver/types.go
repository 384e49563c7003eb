package transcriptserver

// TranscribeInput is the input for transcribe_youtube.
type TranscribeInput struct {
	Command  string `json:"command" jsonschema:"Natural-language request containing a YouTube URL, e.g. 'transcribe https://youtu.be/VIDEO_ID'"`
	Language string `json:"language,omitempty" jsonschema:"Caption language code (default: en)"`
}

// AddVideoInput is the input for add_youtube_video.
type AddVideoInput struct {
	URL      string `json:"url" jsonschema:"YouTube URL (watch, youtu.be or embed) or 11-character video ID"`
	Language string `json:"language,omitempty" jsonschema:"Caption language code (default: en)"`
}

// SearchInput is the input for search_transcripts.
type SearchInput struct {
	Query        string   `json:"query" jsonschema:"Text to find, case-insensitive"`
	VideoIDs     []string `json:"videoIds,omitempty" jsonschema:"Restrict the search to these video IDs or URLs (default: all loaded videos)"`
	ContextWords *int     `json:"contextWords,omitempty" jsonschema:"Transcript entries to include on each side of a match (default: 5)"`
}

// VideoInput is the input for get_video_transcript.
type VideoInput struct {
	VideoID string `json:"videoId" jsonschema:"Video ID or URL of a loaded video"`
	Format  string `json:"format,omitempty" jsonschema:"Output format: text (timestamped lines, default) or json"`
}

// RemoveInput is the input for remove_video.
type RemoveInput struct {
	VideoID string `json:"videoId" jsonschema:"Video ID or URL of a loaded video"`
}

// NoInput is the input for tools without arguments.
type NoInput struct{}
