package sources

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/transcript"
)

// YouTube caption fetching.
// Primary:  scrape watch page ytInitialPlayerResponse → caption track → timedtext XML
// Fallback: engagement panel /next → /get_transcript  (works from datacenter IPs)
// Fallback: ANDROID Innertube /player → captionTracks

var (
	// ErrNoCaptions reports a video without usable captions.
	ErrNoCaptions = errors.New("captions unavailable")
	// ErrLanguageUnavailable reports captions that exist, but not in the requested language.
	ErrLanguageUnavailable = fmt.Errorf("%w: language unavailable", ErrNoCaptions)
)

// YouTubeFetcher implements transcript.Fetcher against YouTube.
// The URL fields exist so tests can point it at a local server.
type YouTubeFetcher struct {
	WatchURL      string // prefix the video ID is appended to
	InnertubeBase string // base of /player, /next, /get_transcript
}

var _ transcript.Fetcher = (*YouTubeFetcher)(nil)

// NewYouTubeFetcher returns a fetcher for the public YouTube endpoints.
func NewYouTubeFetcher() *YouTubeFetcher {
	return &YouTubeFetcher{WatchURL: ytWatchURL, InnertubeBase: ytInnertubeBase}
}

// FetchTranscript returns the time-coded captions of videoID in language.
// Successful results are cached by (videoID, language).
func (f *YouTubeFetcher) FetchTranscript(ctx context.Context, videoID, language string) ([]transcript.Caption, error) {
	key := engine.CacheKey("captions", videoID, language)
	if caps, ok := engine.CacheLoadJSON[[]transcript.Caption](ctx, key); ok {
		return caps, nil
	}

	engine.IncrTranscriptFetch()
	var caps []transcript.Caption
	err := engine.TrackOperation(ctx, "youtube_transcript", func(ctx context.Context) error {
		var err error
		caps, err = f.fetch(ctx, videoID, language)
		return err
	})
	if err != nil {
		engine.IncrTranscriptFetchError()
		return nil, err
	}

	engine.CacheStoreJSON(ctx, key, caps)
	return caps, nil
}

func (f *YouTubeFetcher) fetch(ctx context.Context, videoID, language string) ([]transcript.Caption, error) {
	caps, err := f.viaPageScrape(ctx, videoID, language)
	if err == nil {
		return caps, nil
	}
	// A definitive "not in this language" answer is not worth two more round trips.
	if errors.Is(err, ErrLanguageUnavailable) || ctx.Err() != nil {
		return nil, err
	}
	slog.Warn("youtube: page scrape failed, trying engagement panel",
		slog.String("id", videoID), slog.Any("err", err))

	caps, err = f.viaEngagementPanel(ctx, videoID, language)
	if err == nil {
		return caps, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}
	slog.Warn("youtube: engagement panel failed, trying player",
		slog.String("id", videoID), slog.Any("err", err))

	return f.viaPlayer(ctx, videoID, language)
}

// ytInitialPlayerResponseMarker marks the start of the player response JSON in watch page HTML.
const ytInitialPlayerResponseMarker = "ytInitialPlayerResponse = "

// viaPageScrape scrapes the watch page and follows the caption track found in
// ytInitialPlayerResponse. Works from any IP.
func (f *YouTubeFetcher) viaPageScrape(ctx context.Context, videoID, language string) ([]transcript.Caption, error) {
	body, err := engine.FetchBody(ctx, f.WatchURL+videoID, map[string]string{
		"Accept-Language": language + ",en;q=0.8",
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	}, 6*1024*1024)
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}

	idx := strings.Index(string(body), ytInitialPlayerResponseMarker)
	if idx < 0 {
		return nil, errors.New("ytInitialPlayerResponse not found in watch page")
	}
	jsonData := extractJSON(body[idx+len(ytInitialPlayerResponseMarker):])
	if jsonData == nil {
		return nil, errors.New("failed to extract ytInitialPlayerResponse JSON")
	}

	var playerResp innertubePlayerResp
	if err := json.Unmarshal(jsonData, &playerResp); err != nil {
		return nil, fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	return f.fromPlayerResponse(ctx, playerResp, language)
}

// viaPlayer uses the ANDROID Innertube /player endpoint.
// Works from non-blocked (residential/cloud) IP addresses.
func (f *YouTubeFetcher) viaPlayer(ctx context.Context, videoID, language string) ([]transcript.Caption, error) {
	data, err := postInnerTube(ctx, f.InnertubeBase+ytPlayerPath, innertubeReq{
		VideoID: videoID,
		Context: innertubeCtx{
			Client: innertubeClient{
				ClientName:        "ANDROID",
				ClientVersion:     ytAndroidVersion,
				AndroidSdkVersion: 30,
				Hl:                language,
				Gl:                "US",
			},
		},
		RacyCheckOk:    true,
		ContentCheckOk: true,
	}, androidHeaders())
	if err != nil {
		return nil, fmt.Errorf("android player: %w", err)
	}

	var playerResp innertubePlayerResp
	if err := json.Unmarshal(data, &playerResp); err != nil {
		return nil, fmt.Errorf("decode player: %w", err)
	}
	return f.fromPlayerResponse(ctx, playerResp, language)
}

func (f *YouTubeFetcher) fromPlayerResponse(ctx context.Context, playerResp innertubePlayerResp, language string) ([]transcript.Caption, error) {
	if playerResp.Captions == nil {
		if ps := playerResp.PlayabilityStatus; ps != nil && ps.Reason != "" {
			return nil, fmt.Errorf("%w: %s", ErrNoCaptions, ps.Reason)
		}
		return nil, fmt.Errorf("%w: no caption tracks", ErrNoCaptions)
	}
	tracks := playerResp.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w: no caption tracks", ErrNoCaptions)
	}

	trackURL, err := pickTrackURL(tracks, language)
	if err != nil {
		return nil, err
	}
	return fetchTimedText(ctx, trackURL)
}

// needsPoToken reports whether a caption track URL requires a PoToken (browser-only).
// Tracks with &exp=xpe cannot be fetched server-side.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// pickTrackURL selects the caption URL for language, in order of preference:
// manual track, auto-generated track, the same two for the base language
// ("en-GB" → "en"), then machine translation of a translatable track.
// Skips tracks that require a PoToken.
func pickTrackURL(tracks []captionTrack, language string) (string, error) {
	usable := make([]captionTrack, 0, len(tracks))
	for _, t := range tracks {
		if !needsPoToken(t.BaseURL) {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return "", errors.New("all caption tracks require PoToken")
	}

	lang := strings.ToLower(language)
	base := baseLanguage(lang)
	matchers := []func(captionTrack) bool{
		func(t captionTrack) bool { return strings.EqualFold(t.LanguageCode, lang) && t.Kind != "asr" },
		func(t captionTrack) bool { return strings.EqualFold(t.LanguageCode, lang) },
		func(t captionTrack) bool { return baseLanguage(t.LanguageCode) == base && t.Kind != "asr" },
		func(t captionTrack) bool { return baseLanguage(t.LanguageCode) == base },
	}
	for _, match := range matchers {
		for _, t := range usable {
			if match(t) {
				return t.BaseURL, nil
			}
		}
	}
	for _, t := range usable {
		if t.IsTranslatable {
			return t.BaseURL + "&tlang=" + url.QueryEscape(language), nil
		}
	}

	available := make([]string, 0, len(usable))
	for _, t := range usable {
		available = append(available, t.LanguageCode)
	}
	sort.Strings(available)
	return "", fmt.Errorf("%w: no track for %q (available: %s)",
		ErrLanguageUnavailable, language, strings.Join(available, ", "))
}

func baseLanguage(code string) string {
	return strings.SplitN(strings.ToLower(code), "-", 2)[0]
}

// fetchTimedText downloads and parses a timedtext caption URL.
func fetchTimedText(ctx context.Context, trackURL string) ([]transcript.Caption, error) {
	body, err := engine.FetchBody(ctx, trackURL, nil, 2*1024*1024)
	if err != nil {
		return nil, fmt.Errorf("fetch timedtext: %w", err)
	}
	caps, err := parseTimedText(body)
	if err != nil {
		return nil, err
	}
	if len(caps) == 0 {
		return nil, fmt.Errorf("%w: empty caption track", ErrNoCaptions)
	}
	return caps, nil
}

// parseTimedText converts timedtext XML into captions timed in milliseconds.
// Cues that are empty after markup cleanup are dropped.
func parseTimedText(body []byte) ([]transcript.Caption, error) {
	var tt ytTimedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return nil, fmt.Errorf("parse timedtext XML: %w", err)
	}

	caps := make([]transcript.Caption, 0, len(tt.Texts)+len(tt.Body.Paras))
	for _, c := range tt.Texts {
		text := engine.CleanCaption(c.Text)
		if text == "" {
			continue
		}
		caps = append(caps, transcript.Caption{
			Text:       text,
			OffsetMs:   parseNumber(c.Start) * 1000,
			DurationMs: parseNumber(c.Dur) * 1000,
		})
	}
	for _, p := range tt.Body.Paras {
		text := engine.CleanCaption(p.Inner)
		if text == "" {
			continue
		}
		caps = append(caps, transcript.Caption{
			Text:       text,
			OffsetMs:   parseNumber(p.T),
			DurationMs: parseNumber(p.D),
		})
	}
	return caps, nil
}

func parseNumber(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// getTranscriptRE extracts the continuation token from a raw /next JSON response.
var getTranscriptRE = regexp.MustCompile(`"getTranscriptEndpoint":\{"params":"([^"]+)"`)

func extractTranscriptToken(data []byte) (string, error) {
	if m := getTranscriptRE.FindSubmatch(data); len(m) >= 2 {
		// The params value in the /next JSON response is URL-encoded.
		// /get_transcript expects the decoded (raw base64) form.
		decoded, err := url.QueryUnescape(string(m[1]))
		if err != nil {
			return string(m[1]), nil
		}
		return decoded, nil
	}
	return "", errors.New("getTranscriptEndpoint not found in engagement panels")
}

// parseTranscriptSegments extracts timed segments from a /get_transcript response.
func parseTranscriptSegments(resp ytGetTranscriptResp) []transcript.Caption {
	var caps []transcript.Caption
	for _, action := range resp.Actions {
		if action.UpdateEngagementPanelAction == nil {
			continue
		}
		segs := action.UpdateEngagementPanelAction.Content.
			TranscriptRenderer.Content.
			TranscriptSearchPanelRenderer.Body.
			TranscriptSegmentListRenderer.InitialSegments
		for _, seg := range segs {
			r := seg.TranscriptSegmentRenderer
			if r == nil {
				continue
			}
			var sb strings.Builder
			for _, run := range r.Snippet.Runs {
				sb.WriteString(run.Text)
			}
			text := engine.CleanCaption(sb.String())
			if text == "" {
				continue
			}
			start, end := parseNumber(r.StartMs), parseNumber(r.EndMs)
			caps = append(caps, transcript.Caption{
				Text:       text,
				OffsetMs:   start,
				DurationMs: max(0, end-start),
			})
		}
	}
	return caps
}

// viaEngagementPanel fetches a transcript via:
//  1. POST /next → engagementPanels containing the transcript continuation token
//  2. POST /get_transcript with the token → JSON segments
//
// This approach works from datacenter IPs where /player returns LOGIN_REQUIRED.
func (f *YouTubeFetcher) viaEngagementPanel(ctx context.Context, videoID, language string) ([]transcript.Caption, error) {
	visitor := newVisitorID()
	webCtx := newYTWebContext(visitor, language)

	nextData, err := postInnerTube(ctx, f.InnertubeBase+ytNextPath,
		ytWebRequest{VideoID: videoID, Context: webCtx}, webHeaders(visitor))
	if err != nil {
		return nil, fmt.Errorf("/next: %w", err)
	}

	token, err := extractTranscriptToken(nextData)
	if err != nil {
		return nil, fmt.Errorf("token: %w", err)
	}

	transcriptData, err := postInnerTube(ctx, f.InnertubeBase+ytGetTranscriptPath,
		ytWebRequest{Params: token, Context: webCtx}, webHeaders(visitor))
	if err != nil {
		return nil, fmt.Errorf("/get_transcript: %w", err)
	}

	var transcriptResp ytGetTranscriptResp
	if err := json.Unmarshal(transcriptData, &transcriptResp); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}

	caps := parseTranscriptSegments(transcriptResp)
	if len(caps) == 0 {
		return nil, errors.New("empty transcript segments")
	}
	return caps, nil
}

// extractJSON extracts a complete JSON object starting at b[0] == '{' by tracking brace depth.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	escaped := false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}
