package transcript

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidReference = errors.New("invalid YouTube URL or video ID")
	ErrURLNotFound      = errors.New("no YouTube URL found in command")
	ErrAlreadyExists    = errors.New("video already loaded")
	ErrNotFound         = errors.New("video not found")
	ErrEmptyStore       = errors.New("no videos loaded")
	ErrInvalidQuery     = errors.New("search query must not be empty")
	ErrInvalidFormat    = errors.New("format must be \"json\" or \"text\"")
)

// ProviderError reports a failed caption fetch (network, quota, missing captions, timeout).
type ProviderError struct {
	VideoID  string
	Language string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("fetch transcript %s (%s): %v", e.VideoID, e.Language, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
