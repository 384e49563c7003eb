package transcriptserver

import (
	"context"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/toolutil"
	"github.com/anatolykoptev/go_transcript/internal/transcript"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerTranscribe(server *mcp.Server, svc *transcript.Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "transcribe_youtube",
		Description: "Find a YouTube link in a natural-language command (e.g. 'please transcribe https://youtu.be/VIDEO_ID') and load its transcript into the index. Same result as add_youtube_video.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input TranscribeInput) (*mcp.CallToolResult, any, error) {
		return toolutil.Guard("transcribe_youtube", func() *mcp.CallToolResult {
			lang := toolutil.NormLang(input.Language, engine.Cfg.DefaultLanguage)
			return addResult(svc.TranscribeFromCommand(ctx, input.Command, lang))
		}), nil, nil
	})
}

func registerAddVideo(server *mcp.Server, svc *transcript.Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_youtube_video",
		Description: "Fetch the time-coded transcript of a YouTube video and add it to the in-memory index. Accepts watch, youtu.be and embed URLs or a bare 11-character video ID. Re-adding a loaded video is a no-op.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input AddVideoInput) (*mcp.CallToolResult, any, error) {
		return toolutil.Guard("add_youtube_video", func() *mcp.CallToolResult {
			lang := toolutil.NormLang(input.Language, engine.Cfg.DefaultLanguage)
			return addResult(svc.AddVideo(ctx, input.URL, lang))
		}), nil, nil
	})
}

func addResult(res transcript.AddResult) *mcp.CallToolResult {
	switch res.Status {
	case transcript.StatusSuccess:
		engine.IncrVideosAdded()
	case transcript.StatusAlreadyLoaded:
		engine.IncrAddAlreadyLoaded()
	default:
		engine.IncrAddErrors()
	}
	return formatAdd(res)
}
