package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_Context(t *testing.T) {
	v := testVideo("AAAAAAAAAAA", "a cat", "ran fast", "a dog")

	matches, err := Search([]*Video{v}, "a", 1)
	require.NoError(t, err)

	// "ran fast" contains "a" too: matching is per-entry substring.
	require.Len(t, matches, 3)
	assert.Equal(t, 0, matches[0].Index)
	assert.Equal(t, "a cat ran fast", matches[0].Context)
	assert.Equal(t, 1, matches[1].Index)
	assert.Equal(t, "a cat ran fast a dog", matches[1].Context)
	assert.Equal(t, 2, matches[2].Index)
	assert.Equal(t, "ran fast a dog", matches[2].Context)
}

func TestSearch_CaseInsensitive(t *testing.T) {
	v := testVideo("AAAAAAAAAAA", "The Go Gopher", "nothing here", "GOROUTINES everywhere")

	matches, err := Search([]*Video{v}, "  gO ", 0)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "The Go Gopher", matches[0].MatchedText)
	assert.Equal(t, "The Go Gopher", matches[0].Context)
	assert.Equal(t, "GOROUTINES everywhere", matches[1].MatchedText)
	assert.InDelta(t, 4.0, matches[1].Timestamp, 1e-9)
	assert.InDelta(t, 2.0, matches[1].Duration, 1e-9)
}

func TestSearch_WindowClamped(t *testing.T) {
	v := testVideo("AAAAAAAAAAA", "one", "two", "three")

	matches, err := Search([]*Video{v}, "two", 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "one two three", matches[0].Context)

	matches, err = Search([]*Video{v}, "two", -3)
	require.NoError(t, err)
	assert.Equal(t, "two", matches[0].Context)
}

func TestSearch_Ordering(t *testing.T) {
	b := NewVideo("BBBBBBBBBBB", "en", []Caption{
		{Text: "late key", OffsetMs: 9000, DurationMs: 1000},
		{Text: "early key", OffsetMs: 1000, DurationMs: 1000},
	})
	a := testVideo("AAAAAAAAAAA", "key one", "skip", "key two")

	matches, err := Search([]*Video{b, a}, "key", 0)
	require.NoError(t, err)
	require.Len(t, matches, 4)

	got := make([]string, len(matches))
	for i, m := range matches {
		got[i] = m.VideoID + ":" + m.MatchedText
	}
	assert.Equal(t, []string{
		"AAAAAAAAAAA:key one",
		"AAAAAAAAAAA:key two",
		"BBBBBBBBBBB:early key",
		"BBBBBBBBBBB:late key",
	}, got)
}

func TestSearch_NoMatches(t *testing.T) {
	v := testVideo("AAAAAAAAAAA", "hello")
	matches, err := Search([]*Video{v}, "absent", 5)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestSearch_EmptyQuery(t *testing.T) {
	v := testVideo("AAAAAAAAAAA", "hello")
	for _, q := range []string{"", "   ", "\t\n"} {
		_, err := Search([]*Video{v}, q, 5)
		assert.ErrorIs(t, err, ErrInvalidQuery, "query %q", q)
	}
}
