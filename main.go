// go_transcript: YouTube transcript MCP server.
//
// Loads time-coded YouTube captions into an in-memory index and exposes
// seven MCP tools to add, search, inspect and remove them.
// Runs as HTTP MCP server or stdio transport.
package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/sources"
	"github.com/anatolykoptev/go_transcript/internal/transcript"
	"github.com/anatolykoptev/go_transcript/internal/transcriptserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8893")
)

func main() {
	initEngine()

	slog.Info("starting go_transcript",
		slog.String("port", mcpPort),
		slog.String("language", engine.Cfg.DefaultLanguage),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_transcript",
		Version: version,
	}, nil)

	svc := transcript.NewService(transcript.NewStore(), sources.NewYouTubeFetcher(), transcript.Options{
		FetchTimeout:    engine.Cfg.FetchTimeout,
		DefaultLanguage: engine.Cfg.DefaultLanguage,
		DefaultContext:  engine.Cfg.DefaultContext,
	})

	transcriptserver.RegisterTools(server, svc)
	slog.Info("tools registered", slog.Int("count", transcriptserver.ToolCount))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_transcript",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 120 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initEngine() {
	c := engine.Config{
		FetchTimeout:         env.Duration("FETCH_TIMEOUT", 20*time.Second),
		FetchRPS:             env.Float("YT_FETCH_RPS", 2),
		FetchBurst:           env.Int("YT_FETCH_BURST", 4),
		DefaultLanguage:      env.Str("DEFAULT_LANGUAGE", "en"),
		DefaultContext:       env.Int("DEFAULT_CONTEXT", transcript.DefaultContextWindow),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 200),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 5*time.Minute),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}
	engine.Init(c)

	cacheTTL := env.Duration("CACHE_TTL", time.Hour)
	engine.InitCache(env.Str("REDIS_URL", ""), cacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)
}
