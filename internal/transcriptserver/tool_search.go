package transcriptserver

import (
	"context"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/toolutil"
	"github.com/anatolykoptev/go_transcript/internal/transcript"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerSearch(server *mcp.Server, svc *transcript.Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_transcripts",
		Description: "Case-insensitive text search across loaded transcripts. Every matching transcript entry is returned with surrounding context and a timestamped YouTube link, ordered by video ID then time.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(_ context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, any, error) {
		return toolutil.Guard("search_transcripts", func() *mcp.CallToolResult {
			window := -1
			if input.ContextWords != nil {
				window = max(0, *input.ContextWords)
			}
			res := svc.SearchTranscripts(input.Query, input.VideoIDs, window)
			if res.Status == transcript.StatusSuccess {
				engine.IncrSearch(len(res.Matches))
			}
			return formatSearch(res)
		}), nil, nil
	})
}
