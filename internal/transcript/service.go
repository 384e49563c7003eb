package transcript

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultContextWindow is the number of neighbouring entries shown around a match.
const DefaultContextWindow = 5

// Fetcher retrieves the time-coded captions of a video in the given language.
type Fetcher interface {
	FetchTranscript(ctx context.Context, videoID, language string) ([]Caption, error)
}

// Status is the outcome of a Service operation.
type Status int

const (
	StatusSuccess Status = iota
	StatusAlreadyLoaded
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusAlreadyLoaded:
		return "already_loaded"
	case StatusError:
		return "error"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Outcome is embedded in every result. Err is set only when Status is StatusError.
type Outcome struct {
	Status Status
	Err    error
}

func failed(err error) Outcome { return Outcome{Status: StatusError, Err: err} }

// AddResult is returned by AddVideo and TranscribeFromCommand.
type AddResult struct {
	Outcome
	Reference string // the URL or ID that was resolved
	Video     *Video
}

// SearchResult is returned by SearchTranscripts. An empty Matches slice with
// StatusSuccess means nothing matched.
type SearchResult struct {
	Outcome
	Query    string
	Searched int
	Missing  []string
	Matches  []Match
}

// ListResult is returned by ListVideos.
type ListResult struct {
	Outcome
	Videos []*Video
}

// Format selects how GetTranscript output is rendered.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// TranscriptResult is returned by GetTranscript.
type TranscriptResult struct {
	Outcome
	Format Format
	Video  *Video
}

// RemoveResult is returned by RemoveVideo.
type RemoveResult struct {
	Outcome
	Video *Video
}

// ClearResult is returned by ClearAll.
type ClearResult struct {
	Outcome
	Removed int
}

// Options tune a Service. Zero values select defaults.
type Options struct {
	FetchTimeout    time.Duration
	DefaultLanguage string
	DefaultContext  int
}

// Service implements the transcript operations on top of a Store and a Fetcher.
// Expected failures are reported in the returned result, never as Go errors.
type Service struct {
	store   *Store
	fetcher Fetcher
	opts    Options
	adds    singleflight.Group
}

// NewService wires a store and fetcher together.
func NewService(store *Store, fetcher Fetcher, opts Options) *Service {
	if opts.DefaultLanguage == "" {
		opts.DefaultLanguage = "en"
	}
	if opts.DefaultContext <= 0 {
		opts.DefaultContext = DefaultContextWindow
	}
	return &Service{store: store, fetcher: fetcher, opts: opts}
}

// Store returns the underlying store.
func (s *Service) Store() *Store { return s.store }

// AddVideo resolves reference, fetches its transcript and stores it.
// Re-adding a loaded video reports StatusAlreadyLoaded without fetching.
func (s *Service) AddVideo(ctx context.Context, reference, language string) AddResult {
	res := AddResult{Reference: reference}

	id, ok := ResolveVideoID(reference)
	if !ok {
		res.Outcome = failed(fmt.Errorf("%w: %q", ErrInvalidReference, reference))
		return res
	}
	if language = strings.TrimSpace(language); language == "" {
		language = s.opts.DefaultLanguage
	}

	if v, ok := s.store.Get(id); ok {
		res.Outcome = Outcome{Status: StatusAlreadyLoaded}
		res.Video = v
		return res
	}

	// Concurrent adds of the same ID share one fetch. The fetch runs detached from
	// any single caller, so a caller that gives up does not fail the others; the
	// first caller to collect a fresh video reports success.
	ch := s.adds.DoChan(id, func() (any, error) {
		v, err := s.fetchAndInsert(context.WithoutCancel(ctx), id, language)
		return &sharedAdd{video: v}, err
	})

	var r singleflight.Result
	select {
	case r = <-ch:
	case <-ctx.Done():
		res.Outcome = failed(&ProviderError{VideoID: id, Language: language, Err: ctx.Err()})
		return res
	}
	shared, _ := r.Val.(*sharedAdd)
	if shared != nil {
		res.Video = shared.video
	}

	switch {
	case errors.Is(r.Err, ErrAlreadyExists):
		res.Outcome = Outcome{Status: StatusAlreadyLoaded}
	case r.Err != nil:
		res.Outcome = failed(r.Err)
	case !shared.claimed.CompareAndSwap(false, true):
		res.Outcome = Outcome{Status: StatusAlreadyLoaded}
	default:
		res.Outcome = Outcome{Status: StatusSuccess}
		slog.Info("transcript: video added",
			slog.String("id", id),
			slog.String("language", language),
			slog.Int("entries", len(res.Video.Transcript)),
		)
	}
	return res
}

// sharedAdd is the value every caller of one in-flight add receives.
type sharedAdd struct {
	video   *Video
	claimed atomic.Bool
}

func (s *Service) fetchAndInsert(ctx context.Context, id, language string) (*Video, error) {
	if v, ok := s.store.Get(id); ok {
		return v, ErrAlreadyExists
	}

	fetchCtx := ctx
	if s.opts.FetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.opts.FetchTimeout)
		defer cancel()
	}

	captions, err := s.fetcher.FetchTranscript(fetchCtx, id, language)
	if err != nil {
		slog.Warn("transcript: fetch failed", slog.String("id", id), slog.Any("error", err))
		return nil, &ProviderError{VideoID: id, Language: language, Err: err}
	}

	v := NewVideo(id, language, captions)
	if err := s.store.Insert(v); err != nil {
		existing, _ := s.store.Get(id)
		return existing, err
	}
	return v, nil
}

// TranscribeFromCommand finds a YouTube URL in free text and adds it.
func (s *Service) TranscribeFromCommand(ctx context.Context, command, language string) AddResult {
	span, ok := ExtractURLSpan(command)
	if !ok {
		return AddResult{Outcome: failed(ErrURLNotFound)}
	}
	return s.AddVideo(ctx, span, language)
}

// SearchTranscripts searches the given videos, or every loaded video when ids is
// empty. A negative window selects the configured default.
func (s *Service) SearchTranscripts(query string, ids []string, window int) SearchResult {
	res := SearchResult{Query: query}

	if s.store.Len() == 0 {
		res.Outcome = failed(ErrEmptyStore)
		return res
	}
	if strings.TrimSpace(query) == "" {
		res.Outcome = failed(ErrInvalidQuery)
		return res
	}
	if window < 0 {
		window = s.opts.DefaultContext
	}

	var candidates []*Video
	if len(ids) == 0 {
		candidates = s.store.List()
	} else {
		seen := make(map[string]bool, len(ids))
		for _, ref := range ids {
			id, ok := ResolveVideoID(ref)
			if !ok {
				id = strings.TrimSpace(ref)
			}
			if seen[id] {
				continue
			}
			seen[id] = true
			v, ok := s.store.Get(id)
			if !ok {
				res.Missing = append(res.Missing, ref)
				continue
			}
			candidates = append(candidates, v)
		}
		if len(candidates) == 0 {
			res.Outcome = failed(fmt.Errorf("%w: %s", ErrNotFound, strings.Join(res.Missing, ", ")))
			return res
		}
	}

	matches, err := Search(candidates, query, window)
	if err != nil {
		res.Outcome = failed(err)
		return res
	}
	res.Searched = len(candidates)
	res.Matches = matches
	return res
}

// ListVideos returns every loaded video in insertion order.
func (s *Service) ListVideos() ListResult {
	videos := s.store.List()
	if len(videos) == 0 {
		return ListResult{Outcome: failed(ErrEmptyStore)}
	}
	return ListResult{Videos: videos}
}

// GetTranscript returns the stored transcript of one video. An empty format means text.
func (s *Service) GetTranscript(id string, format Format) TranscriptResult {
	if format == "" {
		format = FormatText
	}
	res := TranscriptResult{Format: format}
	if format != FormatText && format != FormatJSON {
		res.Outcome = failed(fmt.Errorf("%w, got %q", ErrInvalidFormat, format))
		return res
	}
	v, ok := s.lookup(id)
	if !ok {
		res.Outcome = failed(fmt.Errorf("%w: %s", ErrNotFound, id))
		return res
	}
	res.Video = v
	return res
}

// RemoveVideo deletes one video from the store.
func (s *Service) RemoveVideo(id string) RemoveResult {
	key := strings.TrimSpace(id)
	if resolved, ok := ResolveVideoID(id); ok {
		key = resolved
	}
	v, err := s.store.Remove(key)
	if err != nil {
		return RemoveResult{Outcome: failed(fmt.Errorf("%w: %s", err, id))}
	}
	slog.Info("transcript: video removed", slog.String("id", v.ID))
	return RemoveResult{Video: v}
}

// ClearAll removes every loaded video. It always succeeds.
func (s *Service) ClearAll() ClearResult {
	n := s.store.Clear()
	slog.Info("transcript: store cleared", slog.Int("removed", n))
	return ClearResult{Removed: n}
}

func (s *Service) lookup(ref string) (*Video, bool) {
	if id, ok := ResolveVideoID(ref); ok {
		return s.store.Get(id)
	}
	return s.store.Get(strings.TrimSpace(ref))
}
