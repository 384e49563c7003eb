package engine

import (
	"strings"

	"github.com/anatolykoptev/go-kit/strutil"
	"golang.org/x/net/html"
)

// UserAgentChrome is sent on web-client (watch page, WEB innertube) requests.
const UserAgentChrome = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// CleanCaption strips markup (<font>, <i>, ...) and HTML entities from a caption
// cue and collapses whitespace. Cues often arrive double-escaped ("&amp;#39;").
func CleanCaption(s string) string {
	for i := 0; i < 2 && strings.ContainsAny(s, "<&"); i++ {
		s = textContent(s)
	}
	return strings.Join(strings.Fields(s), " ")
}

func textContent(s string) string {
	var sb strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return sb.String()
		case html.TextToken:
			sb.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			sb.WriteByte(' ')
		}
	}
}

// TruncateRunes caps s at limit runes, appending suffix if truncated.
// Pass suffix="" for no suffix. Safe for UTF-8 (Cyrillic, CJK, emoji).
func TruncateRunes(s string, limit int, suffix string) string {
	return strutil.TruncateWith(s, limit, suffix)
}
