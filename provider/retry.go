package provider

import (
	"context"
	"errors"
	"time"
)

// RetryPolicy bounds how transient failures are retried.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy retries transient failures twice with exponential
// backoff starting at half a second.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts: 3,
	BaseDelay:   500 * time.Millisecond,
	MaxDelay:    8 * time.Second,
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultRetryPolicy.BaseDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = DefaultRetryPolicy.MaxDelay
	}
	return p
}

// delay returns the backoff before attempt n (0-based) is retried.
func (p RetryPolicy) delay(n int) time.Duration {
	d := p.BaseDelay << n
	if d > p.MaxDelay || d <= 0 {
		return p.MaxDelay
	}
	return d
}

// Generate calls p.Generate, retrying rate-limited and unreachable
// failures per policy. Auth and malformed-response failures propagate
// immediately. A RateLimitError's RetryAfter hint overrides the computed
// backoff when longer.
func Generate(ctx context.Context, p Provider, req *Request, policy RetryPolicy) (*Response, error) {
	policy = policy.normalized()

	var lastErr error
	for attempt := 0; attempt < policy.MaxAttempts; attempt++ {
		resp, err := p.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		if !Retryable(err) {
			return nil, err
		}
		lastErr = err

		if attempt == policy.MaxAttempts-1 {
			break
		}

		wait := policy.delay(attempt)
		var rl *RateLimitError
		if errors.As(err, &rl) && rl.RetryAfter > wait {
			wait = rl.RetryAfter
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, lastErr
}
