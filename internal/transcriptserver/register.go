// Package transcriptserver exposes the transcript index as MCP tools.
package transcriptserver

import (
	"github.com/anatolykoptev/go_transcript/internal/transcript"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolCount is the number of tools RegisterTools adds.
const ToolCount = 7

// RegisterTools registers the transcript tools on the given MCP server:
// transcribe_youtube, add_youtube_video, search_transcripts, list_videos,
// get_video_transcript, remove_video, clear_all_videos.
func RegisterTools(server *mcp.Server, svc *transcript.Service) {
	registerTranscribe(server, svc)
	registerAddVideo(server, svc)
	registerSearch(server, svc)
	registerListVideos(server, svc)
	registerGetTranscript(server, svc)
	registerRemoveVideo(server, svc)
	registerClearAll(server, svc)
}
