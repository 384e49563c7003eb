package transcript

import (
	"regexp"
	"strings"
	"unicode"
)

var videoIDRE = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// hostBoundary keeps "notyoutube.com" or "evil.com/youtube.com" from matching:
// the host must start the input or follow whitespace or punctuation other than '/' and '.'.
const hostBoundary = `(?:^|[^\w./-])`

// urlShapes are tried in priority order. Group 1 spans the URL up to the end of
// the ID, group 2 captures the ID. Whatever follows the ID is not part of the match.
var urlShapes = []*regexp.Regexp{
	regexp.MustCompile(hostBoundary + `((?:https?://)?(?:[\w-]+\.)?youtube\.com/watch\?(?:[^\s#]*?&)?v=([A-Za-z0-9_-]{11}))`),
	regexp.MustCompile(hostBoundary + `((?:https?://)?youtu\.be/([A-Za-z0-9_-]{11}))`),
	regexp.MustCompile(hostBoundary + `((?:https?://)?(?:[\w-]+\.)?youtube\.com/embed/([A-Za-z0-9_-]{11}))`),
}

// IsVideoID reports whether s is a bare 11-character video ID.
func IsVideoID(s string) bool {
	return videoIDRE.MatchString(s)
}

// ResolveVideoID extracts a video ID from a bare ID or a watch, youtu.be or embed URL.
// Extra query parameters are ignored.
func ResolveVideoID(input string) (string, bool) {
	input = strings.TrimSpace(input)
	if IsVideoID(input) {
		return input, true
	}
	for _, re := range urlShapes {
		if m := firstMatch(re, input); m != nil {
			return input[m[4]:m[5]], true
		}
	}
	return "", false
}

// ExtractURLSpan finds the first YouTube URL in free text and returns the URL
// itself, for re-parsing with ResolveVideoID.
func ExtractURLSpan(text string) (string, bool) {
	for _, re := range urlShapes {
		if m := firstMatch(re, text); m != nil {
			end := m[3]
			if i := strings.IndexFunc(text[end:], unicode.IsSpace); i >= 0 {
				end += i
			} else {
				end = len(text)
			}
			return strings.TrimRight(text[m[2]:end], ".,;:!?)]}>\"'"), true
		}
	}
	return "", false
}

// firstMatch returns the submatch indexes of the first occurrence whose ID is not
// immediately followed by another ID character (a 12+ char token is not an ID).
// A rejected occurrence ends at its ID, so a URL glued after it is still found.
func firstMatch(re *regexp.Regexp, s string) []int {
	for _, m := range re.FindAllStringSubmatchIndex(s, -1) {
		end := m[5]
		if end < len(s) && isIDChar(s[end]) {
			continue
		}
		return m
	}
	return nil
}

func isIDChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-'
}
