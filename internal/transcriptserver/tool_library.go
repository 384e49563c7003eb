package transcriptserver

import (
	"context"
	"strings"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/toolutil"
	"github.com/anatolykoptev/go_transcript/internal/transcript"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerListVideos(server *mcp.Server, svc *transcript.Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_videos",
		Description: "List every loaded video with its entry count, duration and language, in the order they were added.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(_ context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
		return toolutil.Guard("list_videos", func() *mcp.CallToolResult {
			return formatList(svc.ListVideos())
		}), nil, nil
	})
}

func registerGetTranscript(server *mcp.Server, svc *transcript.Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_video_transcript",
		Description: "Return the full transcript of a loaded video, either as timestamped text lines (default) or as JSON.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(_ context.Context, _ *mcp.CallToolRequest, input VideoInput) (*mcp.CallToolResult, any, error) {
		return toolutil.Guard("get_video_transcript", func() *mcp.CallToolResult {
			format := transcript.Format(strings.ToLower(strings.TrimSpace(input.Format)))
			return formatTranscript(svc.GetTranscript(input.VideoID, format))
		}), nil, nil
	})
}

func registerRemoveVideo(server *mcp.Server, svc *transcript.Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "remove_video",
		Description: "Remove one video and its transcript from the index.",
	}, func(_ context.Context, _ *mcp.CallToolRequest, input RemoveInput) (*mcp.CallToolResult, any, error) {
		return toolutil.Guard("remove_video", func() *mcp.CallToolResult {
			res := svc.RemoveVideo(input.VideoID)
			if res.Status == transcript.StatusSuccess {
				engine.IncrVideosRemoved(1)
			}
			return formatRemove(res)
		}), nil, nil
	})
}

func registerClearAll(server *mcp.Server, svc *transcript.Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "clear_all_videos",
		Description: "Remove every loaded video from the index. Always succeeds and reports how many were removed.",
		Annotations: &mcp.ToolAnnotations{DestructiveHint: ptr(true)},
	}, func(_ context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
		return toolutil.Guard("clear_all_videos", func() *mcp.CallToolResult {
			res := svc.ClearAll()
			engine.IncrVideosRemoved(res.Removed)
			return formatClear(res)
		}), nil, nil
	})
}

func ptr[T any](v T) *T { return &v }
