package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// RetryProvider is a decorator that bounds each generation attempt with a
// deadline and retries transient failures with exponential backoff. A hung
// provider must not pin a teacher's chat: when the per-attempt deadline
// fires while the caller's context is still live, the attempt is surfaced
// as ErrProviderUnavailable and retried like any other outage.
type RetryProvider struct {
	inner   Provider
	config  RetryConfig
	timeout time.Duration
}

// WithRetry wraps a Provider with per-attempt deadlines and retry logic.
// timeout bounds a single attempt; zero disables the bound.
func WithRetry(p Provider, cfg RetryConfig, timeout time.Duration) Provider {
	return &RetryProvider{inner: p, config: cfg, timeout: timeout}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	var lastErr error
	invalidRetried := false

	for attempt := range r.config.MaxAttempts {
		resp, err := r.attempt(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !r.shouldRetry(err, &invalidRetried) {
			return nil, err
		}

		// Last attempt — don't sleep, just return the error.
		if attempt == r.config.MaxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.backoff(attempt, err)):
		}
	}

	return nil, lastErr
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// attempt runs one generation under the per-attempt deadline. A deadline
// hit on the attempt context is reported as a provider outage so the retry
// policy treats it as transient; the caller's own context errors pass
// through untouched.
func (r *RetryProvider) attempt(ctx context.Context, req Request) (*Response, error) {
	attemptCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	resp, err := r.inner.Generate(attemptCtx, req)
	if err != nil && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return nil, &ErrProviderUnavailable{
			Err: fmt.Errorf("generation timed out after %s: %w", r.timeout, err),
		}
	}
	return resp, err
}

// shouldRetry determines if an error is retryable.
func (r *RetryProvider) shouldRetry(err error, invalidRetried *bool) bool {
	var (
		maxTok  *ErrMaxTokensExceeded
		invResp *ErrInvalidResponse
		rl      *ErrRateLimit
		unavail *ErrProviderUnavailable
	)
	switch {
	case errors.As(err, &maxTok):
		// Truncation is a request-shape problem; retrying reproduces it.
		return false

	case errors.As(err, &invResp):
		// Invalid response gets one retry.
		if *invalidRetried {
			return false
		}
		*invalidRetried = true
		return true

	case errors.As(err, &rl), errors.As(err, &unavail):
		return true

	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// The caller's own context gave up. Per-attempt deadline hits
		// never reach here: attempt wraps them in ErrProviderUnavailable.
		return false
	}

	// Other errors (network, etc.) are treated as transient.
	return true
}

// backoff computes the wait duration for the given attempt.
func (r *RetryProvider) backoff(attempt int, err error) time.Duration {
	// Respect RetryAfter for rate limits, capped at the configured maximum.
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		if rl.RetryAfter > r.config.MaxWait {
			return r.config.MaxWait
		}
		return rl.RetryAfter
	}

	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt))
	if wait > float64(r.config.MaxWait) {
		wait = float64(r.config.MaxWait)
	}

	// Add ±20% jitter.
	jitter := wait * 0.2 * (2*rand.Float64() - 1)
	wait += jitter

	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}
