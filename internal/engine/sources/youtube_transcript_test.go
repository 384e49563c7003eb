package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

func init() {
	engine.Init(engine.Config{})
	engine.FetchRetryWait = time.Millisecond
}

func TestParseTimedText(t *testing.T) {
	t.Run("legacy seconds", func(t *testing.T) {
		body := `<?xml version="1.0" encoding="utf-8" ?><transcript>
<text start="0.5" dur="2.25">hello &amp;#39;world&amp;#39;</text>
<text start="2.75" dur="1">   </text>
<text start="3" dur="1.5">second
line</text>
</transcript>`
		caps, err := parseTimedText([]byte(body))
		if err != nil {
			t.Fatalf("parseTimedText: %v", err)
		}
		if len(caps) != 2 {
			t.Fatalf("got %d captions, want 2 (empty cue dropped)", len(caps))
		}
		if caps[0].Text != "hello 'world'" || caps[0].OffsetMs != 500 || caps[0].DurationMs != 2250 {
			t.Errorf("caps[0] = %+v", caps[0])
		}
		if caps[1].Text != "second line" || caps[1].OffsetMs != 3000 {
			t.Errorf("caps[1] = %+v", caps[1])
		}
	})

	t.Run("srv3 milliseconds", func(t *testing.T) {
		body := `<timedtext format="3"><body>
<p t="1200" d="3400"><s>going</s><s t="400"> concurrent</s></p>
<p t="4600" d="1000"></p>
</body></timedtext>`
		caps, err := parseTimedText([]byte(body))
		if err != nil {
			t.Fatalf("parseTimedText: %v", err)
		}
		if len(caps) != 1 {
			t.Fatalf("got %d captions, want 1", len(caps))
		}
		if caps[0].Text != "going concurrent" || caps[0].OffsetMs != 1200 || caps[0].DurationMs != 3400 {
			t.Errorf("caps[0] = %+v", caps[0])
		}
	})

	t.Run("invalid xml", func(t *testing.T) {
		if _, err := parseTimedText([]byte("<transcript><text")); err == nil {
			t.Error("expected error for truncated XML")
		}
	})
}

func TestPickTrackURL(t *testing.T) {
	tracks := []captionTrack{
		{BaseURL: "https://x/asr-en", LanguageCode: "en", Kind: "asr"},
		{BaseURL: "https://x/manual-en", LanguageCode: "en"},
		{BaseURL: "https://x/pt-BR", LanguageCode: "pt-BR", IsTranslatable: true},
		{BaseURL: "https://x/blocked&exp=xpe", LanguageCode: "de"},
	}
	tests := []struct {
		name    string
		tracks  []captionTrack
		lang    string
		want    string
		wantErr error
	}{
		{"manual preferred", tracks, "en", "https://x/manual-en", nil},
		{"case insensitive", tracks, "EN", "https://x/manual-en", nil},
		{"regional variant", tracks, "pt", "https://x/pt-BR", nil},
		{"base of request", tracks, "en-GB", "https://x/manual-en", nil},
		{"translation", tracks, "de", "https://x/pt-BR&tlang=de", nil},
		{"asr only", tracks[:1], "en", "https://x/asr-en", nil},
		{"unavailable", tracks[:2], "ja", "", ErrLanguageUnavailable},
		{"potoken only", tracks[3:], "de", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pickTrackURL(tt.tracks, tt.lang)
			if tt.want == "" {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
					t.Errorf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("pickTrackURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractJSON(t *testing.T) {
	in := `{"a":"brace } in \"string\"","b":{"c":1}};var next = {}`
	got := string(extractJSON([]byte(in)))
	want := `{"a":"brace } in \"string\"","b":{"c":1}}`
	if got != want {
		t.Errorf("extractJSON() = %q, want %q", got, want)
	}
	if extractJSON([]byte("nope")) != nil {
		t.Error("expected nil for non-object input")
	}
	if extractJSON([]byte(`{"open":`)) != nil {
		t.Error("expected nil for unterminated object")
	}
}

func TestExtractTranscriptToken(t *testing.T) {
	data := []byte(`{"x":[{"getTranscriptEndpoint":{"params":"CgtQMkRm%3D%3D"}}]}`)
	token, err := extractTranscriptToken(data)
	if err != nil {
		t.Fatalf("extractTranscriptToken: %v", err)
	}
	if token != "CgtQMkRm==" {
		t.Errorf("token = %q", token)
	}
	if _, err := extractTranscriptToken([]byte(`{}`)); err == nil {
		t.Error("expected error when token is missing")
	}
}

// youtubeStub serves a fake watch page, Innertube endpoints and timedtext.
type youtubeStub struct {
	srv        *httptest.Server
	watchBody  func(base string) string
	nextBody   string
	segments   string
	playerBody func(base string) string
	calls      map[string]*atomic.Int32
}

func newYouTubeStub(t *testing.T) *youtubeStub {
	t.Helper()
	s := &youtubeStub{calls: map[string]*atomic.Int32{}}
	for _, p := range []string{"/watch", "/youtubei/v1/next", "/youtubei/v1/get_transcript", "/youtubei/v1/player", "/api/timedtext"} {
		s.calls[p] = &atomic.Int32{}
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		s.calls["/watch"].Add(1)
		io.WriteString(w, s.watchBody(s.srv.URL))
	})
	mux.HandleFunc("/youtubei/v1/next", func(w http.ResponseWriter, r *http.Request) {
		s.calls["/youtubei/v1/next"].Add(1)
		io.WriteString(w, s.nextBody)
	})
	mux.HandleFunc("/youtubei/v1/get_transcript", func(w http.ResponseWriter, r *http.Request) {
		s.calls["/youtubei/v1/get_transcript"].Add(1)
		io.WriteString(w, s.segments)
	})
	mux.HandleFunc("/youtubei/v1/player", func(w http.ResponseWriter, r *http.Request) {
		s.calls["/youtubei/v1/player"].Add(1)
		if r.Header.Get("X-Youtube-Client-Name") != "3" {
			t.Errorf("player called without ANDROID client header")
		}
		io.WriteString(w, s.playerBody(s.srv.URL))
	})
	mux.HandleFunc("/api/timedtext", func(w http.ResponseWriter, r *http.Request) {
		s.calls["/api/timedtext"].Add(1)
		io.WriteString(w, `<transcript><text start="1" dur="2">first cue</text><text start="3" dur="2.5">second cue</text></transcript>`)
	})
	s.srv = httptest.NewServer(mux)
	t.Cleanup(s.srv.Close)
	return s
}

func (s *youtubeStub) fetcher() *YouTubeFetcher {
	return &YouTubeFetcher{WatchURL: s.srv.URL + "/watch?v=", InnertubeBase: s.srv.URL + "/youtubei/v1"}
}

func playerJSON(base, lang string) string {
	return fmt.Sprintf(`{"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[{"baseUrl":"%s/api/timedtext?v=x&lang=%s","languageCode":"%s"}]}}}`, base, lang, lang)
}

func TestFetchTranscript_PageScrape(t *testing.T) {
	engine.InitCache("", time.Minute, 100, time.Minute)
	stub := newYouTubeStub(t)
	stub.watchBody = func(base string) string {
		return `<html><script>var ytInitialPlayerResponse = ` + playerJSON(base, "en") + `;var meta = {};</script></html>`
	}

	caps, err := stub.fetcher().FetchTranscript(context.Background(), "scrapeAAAAA", "en")
	if err != nil {
		t.Fatalf("FetchTranscript: %v", err)
	}
	if len(caps) != 2 || caps[1].Text != "second cue" || caps[1].OffsetMs != 3000 || caps[1].DurationMs != 2500 {
		t.Errorf("caps = %+v", caps)
	}

	// Second call is served from the fetch cache.
	if _, err := stub.fetcher().FetchTranscript(context.Background(), "scrapeAAAAA", "en"); err != nil {
		t.Fatalf("cached FetchTranscript: %v", err)
	}
	if n := stub.calls["/watch"].Load(); n != 1 {
		t.Errorf("watch page fetched %d times, want 1", n)
	}
}

func TestFetchTranscript_EngagementPanelFallback(t *testing.T) {
	engine.InitCache("", time.Minute, 100, time.Minute)
	stub := newYouTubeStub(t)
	stub.watchBody = func(string) string { return "<html>consent wall</html>" }
	stub.nextBody = `{"engagementPanels":[{"getTranscriptEndpoint":{"params":"dG9rZW4%3D"}}]}`
	stub.segments = `{"actions":[{"updateEngagementPanelAction":{"content":{"transcriptRenderer":{"content":{"transcriptSearchPanelRenderer":{"body":{"transcriptSegmentListRenderer":{"initialSegments":[
		{"transcriptSegmentRenderer":{"startMs":"0","endMs":"1500","snippet":{"runs":[{"text":"panel "},{"text":"one"}]}}},
		{"transcriptSectionHeaderRenderer":{}},
		{"transcriptSegmentRenderer":{"startMs":"1500","endMs":"4000","snippet":{"runs":[{"text":"panel two"}]}}}
	]}}}}}}}}]}`

	caps, err := stub.fetcher().FetchTranscript(context.Background(), "panelAAAAAA", "en")
	if err != nil {
		t.Fatalf("FetchTranscript: %v", err)
	}
	if len(caps) != 2 {
		t.Fatalf("got %d captions, want 2", len(caps))
	}
	if caps[0].Text != "panel one" || caps[1].OffsetMs != 1500 || caps[1].DurationMs != 2500 {
		t.Errorf("caps = %+v", caps)
	}
	if stub.calls["/youtubei/v1/player"].Load() != 0 {
		t.Error("player should not be called when the engagement panel succeeds")
	}
}

func TestFetchTranscript_PlayerFallback(t *testing.T) {
	engine.InitCache("", time.Minute, 100, time.Minute)
	stub := newYouTubeStub(t)
	stub.watchBody = func(string) string { return "<html>no player here</html>" }
	stub.nextBody = `{}`
	stub.playerBody = func(base string) string { return playerJSON(base, "de") }

	caps, err := stub.fetcher().FetchTranscript(context.Background(), "playerAAAAA", "de")
	if err != nil {
		t.Fatalf("FetchTranscript: %v", err)
	}
	if len(caps) != 2 || caps[0].Text != "first cue" {
		t.Errorf("caps = %+v", caps)
	}
}

func TestFetchTranscript_LanguageUnavailable(t *testing.T) {
	engine.InitCache("", time.Minute, 100, time.Minute)
	stub := newYouTubeStub(t)
	stub.watchBody = func(base string) string {
		return `<script>var ytInitialPlayerResponse = ` + playerJSON(base, "fr") + `;</script>`
	}

	_, err := stub.fetcher().FetchTranscript(context.Background(), "langAAAAAAA", "ja")
	if !errors.Is(err, ErrLanguageUnavailable) {
		t.Fatalf("err = %v, want ErrLanguageUnavailable", err)
	}
	if !strings.Contains(err.Error(), "fr") {
		t.Errorf("error should list available languages: %v", err)
	}
	if stub.calls["/youtubei/v1/next"].Load() != 0 || stub.calls["/youtubei/v1/player"].Load() != 0 {
		t.Error("fallbacks should be skipped for a language miss")
	}
}

func TestFetchTranscript_NoCaptions(t *testing.T) {
	engine.InitCache("", time.Minute, 100, time.Minute)
	stub := newYouTubeStub(t)
	stub.watchBody = func(string) string {
		return `<script>var ytInitialPlayerResponse = {"playabilityStatus":{"status":"LOGIN_REQUIRED","reason":"Sign in to confirm you're not a bot"}};</script>`
	}
	stub.nextBody = `{}`
	stub.playerBody = func(string) string {
		return `{"playabilityStatus":{"status":"ERROR","reason":"Video unavailable"}}`
	}

	_, err := stub.fetcher().FetchTranscript(context.Background(), "goneAAAAAAA", "en")
	if !errors.Is(err, ErrNoCaptions) {
		t.Fatalf("err = %v, want ErrNoCaptions", err)
	}
	if !strings.Contains(err.Error(), "Video unavailable") {
		t.Errorf("error should carry the playability reason: %v", err)
	}
}

func TestFetchTranscript_CancelledSkipsFallbacks(t *testing.T) {
	engine.InitCache("", time.Minute, 100, time.Minute)
	stub := newYouTubeStub(t)
	stub.watchBody = func(string) string { return "<html></html>" }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := stub.fetcher().FetchTranscript(ctx, "cancelAAAAA", "en")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	for path, n := range stub.calls {
		if n.Load() != 0 {
			t.Errorf("%s called %d times after cancellation", path, n.Load())
		}
	}
}
