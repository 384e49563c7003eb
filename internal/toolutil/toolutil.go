// Package toolutil provides shared helper functions for go_transcript MCP tools.
package toolutil

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NormLang normalises a language field: empty string → def.
func NormLang(lang, def string) string {
	if lang = strings.TrimSpace(lang); lang == "" {
		return def
	}
	return lang
}

// TextResult wraps plain text into a tool result.
func TextResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// ErrorResult reports an expected failure as text prefixed with "Error: ".
func ErrorResult(err error) *mcp.CallToolResult {
	res := TextResult("Error: " + err.Error())
	res.IsError = true
	return res
}

// Guard runs a tool body and turns a panic into a generic error result,
// so the dispatch layer always receives text.
func Guard(tool string, fn func() *mcp.CallToolResult) (res *mcp.CallToolResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("tool panicked", slog.String("tool", tool), slog.Any("panic", r))
			res = ErrorResult(fmt.Errorf("internal error in %s", tool))
		}
	}()
	return fn()
}
