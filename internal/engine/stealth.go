package engine

import (
	stealth "github.com/anatolykoptev/go-stealth"
)

// Re-export stealth helpers for engine consumers.
func RandomUserAgent() string         { return stealth.RandomUserAgent() }
func IsRetryableStatus(code int) bool { return stealth.IsRetryableStatus(code) }
