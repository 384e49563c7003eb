package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveVideoID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"bare id", "P2DfG5JEAmA", "P2DfG5JEAmA", true},
		{"bare id padded", "  P2DfG5JEAmA \n", "P2DfG5JEAmA", true},
		{"watch", "https://www.youtube.com/watch?v=P2DfG5JEAmA", "P2DfG5JEAmA", true},
		{"watch with timestamp", "https://www.youtube.com/watch?v=P2DfG5JEAmA&t=447s", "P2DfG5JEAmA", true},
		{"watch v not first", "https://www.youtube.com/watch?feature=share&v=P2DfG5JEAmA", "P2DfG5JEAmA", true},
		{"watch no scheme", "youtube.com/watch?v=P2DfG5JEAmA", "P2DfG5JEAmA", true},
		{"mobile watch", "https://m.youtube.com/watch?v=P2DfG5JEAmA", "P2DfG5JEAmA", true},
		{"short", "https://youtu.be/P2DfG5JEAmA", "P2DfG5JEAmA", true},
		{"short with params", "https://youtu.be/P2DfG5JEAmA?si=abc&t=12", "P2DfG5JEAmA", true},
		{"embed", "https://www.youtube.com/embed/P2DfG5JEAmA", "P2DfG5JEAmA", true},
		{"embed with params", "https://www.youtube.com/embed/P2DfG5JEAmA?start=30", "P2DfG5JEAmA", true},
		{"id too short", "P2DfG5JEAm", "", false},
		{"id too long", "P2DfG5JEAmAx", "", false},
		{"bad alphabet", "P2DfG5JE$mA", "", false},
		{"short url id too long", "https://youtu.be/P2DfG5JEAmAxx", "", false},
		{"other site", "https://vimeo.com/123456789", "", false},
		{"lookalike host", "https://notyoutube.com/watch?v=P2DfG5JEAmA", "", false},
		{"lookalike short host", "https://notyoutu.be/P2DfG5JEAmA", "", false},
		{"youtube in path", "https://evil.com/youtube.com/watch?v=P2DfG5JEAmA", "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveVideoID(tt.input)
			assert.Equal(t, tt.ok, ok, "ResolveVideoID(%q)", tt.input)
			assert.Equal(t, tt.want, got, "ResolveVideoID(%q)", tt.input)
		})
	}
}

func TestExtractURLSpan(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{"embedded short", "please transcribe: https://youtu.be/P2DfG5JEAmA", "https://youtu.be/P2DfG5JEAmA", true},
		{"trailing punctuation", "watch https://www.youtube.com/watch?v=P2DfG5JEAmA&t=5s.", "https://www.youtube.com/watch?v=P2DfG5JEAmA&t=5s", true},
		{"watch wins over short", "https://youtu.be/AAAAAAAAAAA then https://www.youtube.com/watch?v=BBBBBBBBBBB", "https://www.youtube.com/watch?v=BBBBBBBBBBB", true},
		{"first of same shape", "https://youtu.be/AAAAAAAAAAA and https://youtu.be/BBBBBBBBBBB", "https://youtu.be/AAAAAAAAAAA", true},
		{"embed", "look at youtube.com/embed/P2DfG5JEAmA please", "youtube.com/embed/P2DfG5JEAmA", true},
		{"glued after a 12-char id", "see https://youtu.be/AAAAAAAAAAAA,https://youtu.be/BBBBBBBBBBB", "https://youtu.be/BBBBBBBBBBB", true},
		{"in parentheses", "(https://youtu.be/P2DfG5JEAmA)", "https://youtu.be/P2DfG5JEAmA", true},
		{"lookalike host", "transcribe https://notyoutube.com/watch?v=P2DfG5JEAmA", "", false},
		{"no url", "invalid command without url", "", false},
		{"bare id is not a url", "transcribe P2DfG5JEAmA", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractURLSpan(tt.text)
			assert.Equal(t, tt.ok, ok, "ExtractURLSpan(%q)", tt.text)
			assert.Equal(t, tt.want, got, "ExtractURLSpan(%q)", tt.text)
			if ok {
				_, resolved := ResolveVideoID(got)
				assert.True(t, resolved, "span %q does not resolve to an ID", got)
			}
		})
	}
}

func TestTimestampURL(t *testing.T) {
	assert.Equal(t, "https://www.youtube.com/watch?v=P2DfG5JEAmA&t=447s", TimestampURL("P2DfG5JEAmA", 447.9))
}
