package transcriptserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/toolutil"
	"github.com/anatolykoptev/go_transcript/internal/transcript"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// maxContextRunes caps each search context in text output.
const maxContextRunes = 500

const urlHint = "Include a YouTube link such as https://www.youtube.com/watch?v=VIDEO_ID or https://youtu.be/VIDEO_ID."

// formatClock renders seconds as M:SS, or H:MM:SS from one hour up.
func formatClock(seconds float64) string {
	total := int(max(0, seconds))
	h, m, s := total/3600, total%3600/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}

func formatAdd(res transcript.AddResult) *mcp.CallToolResult {
	switch res.Status {
	case transcript.StatusAlreadyLoaded:
		v := res.Video
		return toolutil.TextResult(fmt.Sprintf("Video %s is already loaded (%q, %s). Use search_transcripts to query it.",
			v.ID, v.Title, plural(len(v.Transcript), "entry", "entries")))
	case transcript.StatusError:
		if errors.Is(res.Err, transcript.ErrURLNotFound) {
			return toolutil.ErrorResult(fmt.Errorf("%w. %s", res.Err, urlHint))
		}
		return toolutil.ErrorResult(res.Err)
	}

	v := res.Video
	var sb strings.Builder
	fmt.Fprintf(&sb, "Added %q (%s)\n", v.Title, v.ID)
	fmt.Fprintf(&sb, "Entries: %d\n", len(v.Transcript))
	fmt.Fprintf(&sb, "Duration: %s\n", formatClock(v.TotalDuration))
	fmt.Fprintf(&sb, "Language: %s\n", v.Language)
	fmt.Fprintf(&sb, "URL: %s", v.URL)
	return toolutil.TextResult(sb.String())
}

func formatSearch(res transcript.SearchResult) *mcp.CallToolResult {
	if res.Status == transcript.StatusError {
		return toolutil.ErrorResult(res.Err)
	}

	var sb strings.Builder
	if len(res.Matches) == 0 {
		fmt.Fprintf(&sb, "No matches for %q in %s.", res.Query, plural(res.Searched, "video", "videos"))
	} else {
		fmt.Fprintf(&sb, "Found %s for %q in %s.\n",
			plural(len(res.Matches), "match", "matches"), res.Query, plural(res.Searched, "video", "videos"))
		for i, m := range res.Matches {
			fmt.Fprintf(&sb, "\n%d. %s at %s\n", i+1, m.VideoID, formatClock(m.Timestamp))
			fmt.Fprintf(&sb, "   %s\n", transcript.TimestampURL(m.VideoID, m.Timestamp))
			fmt.Fprintf(&sb, "   Match: %s\n", m.MatchedText)
			fmt.Fprintf(&sb, "   Context: %s\n", engine.TruncateRunes(m.Context, maxContextRunes, "..."))
		}
	}
	if len(res.Missing) > 0 {
		fmt.Fprintf(&sb, "\nNot loaded: %s", strings.Join(res.Missing, ", "))
	}
	return toolutil.TextResult(strings.TrimRight(sb.String(), "\n"))
}

func formatList(res transcript.ListResult) *mcp.CallToolResult {
	if res.Status == transcript.StatusError {
		return toolutil.ErrorResult(res.Err)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Loaded videos (%d):\n", len(res.Videos))
	for i, v := range res.Videos {
		fmt.Fprintf(&sb, "\n%d. %s (%s)\n", i+1, v.Title, v.ID)
		fmt.Fprintf(&sb, "   %s | %s | %s\n", plural(len(v.Transcript), "entry", "entries"), formatClock(v.TotalDuration), v.Language)
		fmt.Fprintf(&sb, "   %s", v.URL)
	}
	return toolutil.TextResult(sb.String())
}

func formatTranscript(res transcript.TranscriptResult) *mcp.CallToolResult {
	if res.Status == transcript.StatusError {
		return toolutil.ErrorResult(res.Err)
	}
	v := res.Video
	if res.Format == transcript.FormatJSON {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return toolutil.ErrorResult(fmt.Errorf("encode transcript: %w", err))
		}
		return toolutil.TextResult(string(data))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Transcript of %q (%s), %s, %s, language %s:\n",
		v.Title, v.ID, plural(len(v.Transcript), "entry", "entries"), formatClock(v.TotalDuration), v.Language)
	for _, e := range v.Transcript {
		fmt.Fprintf(&sb, "\n[%s] %s", formatClock(e.Start), e.Text)
	}
	return toolutil.TextResult(sb.String())
}

func formatRemove(res transcript.RemoveResult) *mcp.CallToolResult {
	if res.Status == transcript.StatusError {
		return toolutil.ErrorResult(res.Err)
	}
	return toolutil.TextResult(fmt.Sprintf("Removed %q (%s).", res.Video.Title, res.Video.ID))
}

func formatClear(res transcript.ClearResult) *mcp.CallToolResult {
	return toolutil.TextResult(fmt.Sprintf("Cleared %s.", plural(res.Removed, "video", "videos")))
}
