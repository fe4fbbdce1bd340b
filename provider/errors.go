package provider

import (
	"errors"
	"fmt"
	"time"
)

// AuthError indicates the backend rejected the configured credentials.
// It is never retried.
type AuthError struct {
	Provider string
	Message  string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s authentication failed: %s", e.Provider, e.Message)
}

// RateLimitError indicates the backend throttled the request. RetryAfter
// is zero when the backend did not say how long to wait.
type RateLimitError struct {
	Provider   string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s rate limited, retry after %s", e.Provider, e.RetryAfter)
	}
	return fmt.Sprintf("%s rate limited", e.Provider)
}

// UnreachableError indicates the backend could not be reached or returned
// a server-side failure.
type UnreachableError struct {
	Provider string
	Cause    error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("%s unreachable: %v", e.Provider, e.Cause)
}

func (e *UnreachableError) Unwrap() error {
	return e.Cause
}

// MalformedResponseError indicates the backend replied with a payload that
// could not be interpreted. It is never retried.
type MalformedResponseError struct {
	Provider string
	Cause    error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s returned a malformed response: %v", e.Provider, e.Cause)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Cause
}

// Retryable reports whether err is a transient failure worth retrying.
// Only rate limiting and unreachability qualify.
func Retryable(err error) bool {
	var rl *RateLimitError
	var un *UnreachableError
	return errors.As(err, &rl) || errors.As(err, &un)
}
