package engine

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	FetchTimeout         time.Duration // budget for one transcript fetch, all fallbacks included
	FetchRPS             float64       // outbound YouTube requests per second (0 = unlimited)
	FetchBurst           int
	DefaultLanguage      string
	DefaultContext       int
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration
	HTTPClient           *http.Client
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (sources).
// Always points to the current cfg value.
var Cfg = &cfg

// limiter throttles outbound YouTube requests. nil = unlimited.
var limiter *rate.Limiter

// Init initializes the engine with the given configuration.
func Init(c Config) {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	cfg = c
	Cfg = &cfg

	limiter = nil
	if c.FetchRPS > 0 {
		burst := c.FetchBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(c.FetchRPS), burst)
	}
}

// WaitTurn blocks until the outbound rate limiter admits one request.
func WaitTurn(ctx context.Context) error {
	if limiter == nil {
		return ctx.Err()
	}
	return limiter.Wait(ctx)
}
