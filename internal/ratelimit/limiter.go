// Package ratelimit meters how many identifiers a client may mint.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

// ErrQuotaExceeded is returned when a client has used up its identifier quota.
var ErrQuotaExceeded = errors.New("identifier quota exceeded")

// Result contains the outcome of a quota check.
type Result struct {
	Allowed    bool          // Whether the identifiers may be minted
	Remaining  int           // Identifiers left in the current window
	ResetAfter time.Duration // Time until the oldest charge expires
	RetryAfter time.Duration // Suggested retry time (if blocked)
	Limit      int           // The configured quota
}

// Limiter meters identifier minting per client key.
type Limiter interface {
	// Allow charges cost identifiers to key if they fit in its quota. A
	// rejected call charges nothing.
	Allow(ctx context.Context, key string, cost int) (*Result, error)

	// Reset clears the quota state for a key.
	Reset(ctx context.Context, key string) error

	// Close releases any resources held by the limiter.
	Close() error
}

// Config holds quota configuration.
type Config struct {
	IDs    int           // Maximum identifiers per window
	Window time.Duration // Sliding window size
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		IDs:    10000,
		Window: time.Minute,
	}
}
