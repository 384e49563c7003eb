package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// Innertube wire types and the POST helper shared by the /player, /next and
// /get_transcript fallbacks in youtube_transcript.go.

const (
	ytWatchURL      = "https://www.youtube.com/watch?v="
	ytInnertubeBase = "https://www.youtube.com/youtubei/v1"

	ytPlayerPath        = "/player"
	ytNextPath          = "/next"
	ytGetTranscriptPath = "/get_transcript"

	ytWebVersion     = "2.20250222.10.00"
	ytAndroidVersion = "20.10.38"
	ytAndroidUA      = "com.google.android.youtube/" + ytAndroidVersion + " (Linux; U; Android 11) gzip"
)

// --- ANDROID client types (/player endpoint) ---

type innertubeReq struct {
	VideoID        string       `json:"videoId"`
	Context        innertubeCtx `json:"context"`
	RacyCheckOk    bool         `json:"racyCheckOk"`
	ContentCheckOk bool         `json:"contentCheckOk"`
}

type innertubeCtx struct {
	Client innertubeClient `json:"client"`
}

type innertubeClient struct {
	ClientName        string `json:"clientName"`
	ClientVersion     string `json:"clientVersion"`
	AndroidSdkVersion int    `json:"androidSdkVersion,omitempty"`
	Hl                string `json:"hl,omitempty"`
	Gl                string `json:"gl,omitempty"`
}

type innertubePlayerResp struct {
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

type captionTrack struct {
	BaseURL        string `json:"baseUrl"`
	LanguageCode   string `json:"languageCode"`
	Kind           string `json:"kind"` // "asr" = auto-generated
	IsTranslatable bool   `json:"isTranslatable"`
}

// --- WEB client types (/next and /get_transcript endpoints) ---

// ytWebRequest is the body of /next (VideoID set) and /get_transcript (Params set).
type ytWebRequest struct {
	VideoID string       `json:"videoId,omitempty"`
	Params  string       `json:"params,omitempty"`
	Context ytWebContext `json:"context"`
}

type ytWebContext struct {
	Client struct {
		ClientName    string `json:"clientName"`
		ClientVersion string `json:"clientVersion"`
		VisitorData   string `json:"visitorData,omitempty"`
		Hl            string `json:"hl,omitempty"`
		Gl            string `json:"gl,omitempty"`
	} `json:"client"`
	Request struct {
		UseSsl bool `json:"useSsl"`
	} `json:"request"`
}

func newYTWebContext(visitorData, hl string) ytWebContext {
	var c ytWebContext
	c.Client.ClientName = "WEB"
	c.Client.ClientVersion = ytWebVersion
	c.Client.VisitorData = visitorData
	c.Client.Hl = hl
	c.Client.Gl = "US"
	c.Request.UseSsl = true
	return c
}

// --- Timedtext XML types ---

// ytTimedText accepts both timedtext shapes:
//
//	<transcript><text start="1.2" dur="3.4">..</text></transcript>   (seconds)
//	<timedtext format="3"><body><p t="1200" d="3400">..</p></body>  (milliseconds)
type ytTimedText struct {
	Texts []ytTextCue `xml:"text"`
	Body  struct {
		Paras []ytPara `xml:"p"`
	} `xml:"body"`
}

type ytTextCue struct {
	Start string `xml:"start,attr"`
	Dur   string `xml:"dur,attr"`
	Text  string `xml:",chardata"`
}

type ytPara struct {
	T     string `xml:"t,attr"`
	D     string `xml:"d,attr"`
	Inner string `xml:",innerxml"`
}

// --- /get_transcript response ---

type ytSegmentRenderer struct {
	StartMs string `json:"startMs"`
	EndMs   string `json:"endMs"`
	Snippet struct {
		Runs []struct {
			Text string `json:"text"`
		} `json:"runs"`
	} `json:"snippet"`
}

type ytGetTranscriptResp struct {
	Actions []struct {
		UpdateEngagementPanelAction *struct {
			Content struct {
				TranscriptRenderer struct {
					Content struct {
						TranscriptSearchPanelRenderer struct {
							Body struct {
								TranscriptSegmentListRenderer struct {
									InitialSegments []struct {
										TranscriptSegmentRenderer *ytSegmentRenderer `json:"transcriptSegmentRenderer"`
									} `json:"initialSegments"`
								} `json:"transcriptSegmentListRenderer"`
							} `json:"body"`
						} `json:"transcriptSearchPanelRenderer"`
					} `json:"content"`
				} `json:"transcriptRenderer"`
			} `json:"content"`
		} `json:"updateEngagementPanelAction"`
	} `json:"actions"`
}

// newVisitorID returns a random visitor ID in the 11-char base64url alphabet.
func newVisitorID() string {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	id := make([]byte, 11)
	for i := range id {
		id[i] = alphabet[rand.IntN(len(alphabet))] //nolint:gosec // not a secret
	}
	return string(id)
}

// postInnerTube POSTs payload as JSON and returns at most 3 MiB of the response body.
func postInnerTube(ctx context.Context, endpoint string, payload any, headers map[string]string) ([]byte, error) {
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"?prettyPrint=false", bytes.NewReader(bodyBytes))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "*/*")
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		return engine.Cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("innertube [%s]: %w", endpoint, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("innertube [%s]: status %d: %s", endpoint, resp.StatusCode, bytes.TrimSpace(snippet))
	}
	return io.ReadAll(io.LimitReader(resp.Body, 3*1024*1024))
}

// webHeaders returns WEB client headers for /next and /get_transcript.
func webHeaders(visitorData string) map[string]string {
	return map[string]string{
		"User-Agent":               engine.UserAgentChrome,
		"X-Youtube-Client-Name":    "1",
		"X-Youtube-Client-Version": ytWebVersion,
		"X-Goog-Visitor-Id":        visitorData,
		"Origin":                   "https://www.youtube.com",
		"Referer":                  "https://www.youtube.com/",
	}
}

// androidHeaders returns ANDROID client headers for /player.
func androidHeaders() map[string]string {
	return map[string]string{
		"User-Agent":               ytAndroidUA,
		"X-Youtube-Client-Name":    "3",
		"X-Youtube-Client-Version": ytAndroidVersion,
	}
}
