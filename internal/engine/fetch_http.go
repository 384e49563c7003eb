package engine

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// FetchRetryWait is the initial backoff interval of FetchBody.
var FetchRetryWait = 1 * time.Second

// FetchBody performs a GET with exponential backoff and returns at most limit bytes
// of the (gzip-decoded) body. Retries on 429/5xx; other non-200 statuses are final.
func FetchBody(ctx context.Context, fetchURL string, headers map[string]string, limit int64) ([]byte, error) {
	operation := func() ([]byte, error) {
		if err := WaitTurn(ctx); err != nil {
			return nil, backoff.Permanent(err)
		}
		IncrYouTubeRequest()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", RandomUserAgent())
		req.Header.Set("Accept-Encoding", "gzip")
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := Cfg.HTTPClient.Do(req)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		defer resp.Body.Close()

		if IsRetryableStatus(resp.StatusCode) {
			return nil, fmt.Errorf("status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, backoff.Permanent(fmt.Errorf("status %d", resp.StatusCode))
		}
		return readResponseBody(resp, limit)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = FetchRetryWait
	bo.MaxInterval = 10 * FetchRetryWait

	return backoff.Retry(ctx, operation, backoff.WithBackOff(bo), backoff.WithMaxTries(3), backoff.WithMaxElapsedTime(30*time.Second))
}

// readResponseBody reads the response body, handling gzip decompression if needed.
func readResponseBody(resp *http.Response, limit int64) ([]byte, error) {
	var r io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		defer gz.Close()
		r = gz
	}
	body, err := io.ReadAll(io.LimitReader(r, limit))
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	return body, nil
}
