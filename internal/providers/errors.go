package providers

import (
	"errors"
	"fmt"
	"time"
)

// ErrProviderUnavailable signals a missing or unconfigured upstream. It is never retried.
var ErrProviderUnavailable = errors.New("provider unavailable")

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = errors.New("upstream circuit open")

// RateLimitError captures throttled upstream responses.
type RateLimitError struct {
	Upstream   string
	StatusCode int
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "upstream rate limited"
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (status=%d)", msg, e.StatusCode)
	}
	return msg
}

// AsRateLimitError attempts to unwrap an error into a RateLimitError.
func AsRateLimitError(err error) (*RateLimitError, bool) {
	var rlErr *RateLimitError
	if errors.As(err, &rlErr) {
		return rlErr, true
	}
	return nil, false
}

// StatusError is a non-success HTTP response from an upstream.
type StatusError struct {
	Upstream   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Upstream, e.StatusCode)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Upstream, e.StatusCode, e.Body)
}

// TransientUpstreamError is returned once every retry attempt has failed.
// Err is the last observed failure.
type TransientUpstreamError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *TransientUpstreamError) Error() string {
	return fmt.Sprintf("%s failed after %d attempts: %v", e.Op, e.Attempts, e.Err)
}

func (e *TransientUpstreamError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is an exhausted retry sequence.
func IsTransient(err error) bool {
	var te *TransientUpstreamError
	return errors.As(err, &te)
}
