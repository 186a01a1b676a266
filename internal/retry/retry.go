package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"
)

// Doer is the subset of *http.Client used by the API client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RetryDoer is a decorator that retries idempotent requests on transient
// failures with exponential backoff and jitter. Non-idempotent requests pass
// straight through so a POST is never sent twice.
type RetryDoer struct {
	inner      Doer
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger
}

// NewRetryDoer wraps a Doer with retry logic.
// maxRetries is the number of additional attempts after the first failure.
// baseDelay is the delay before the first retry, doubled on each subsequent retry.
func NewRetryDoer(inner Doer, maxRetries int, baseDelay time.Duration, logger *slog.Logger) *RetryDoer {
	return &RetryDoer{
		inner:      inner,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     logger,
	}
}

// Do sends the request, retrying GET and HEAD on 5xx, 429 and network errors.
// The last response is returned unchanged when retries are exhausted so the
// caller can decode the error body.
func (d *RetryDoer) Do(req *http.Request) (*http.Response, error) {
	if !idempotent(req.Method) || d.maxRetries <= 0 {
		return d.inner.Do(req)
	}

	ctx := req.Context()
	resp, err := d.inner.Do(req)
	for attempt := 1; attempt <= d.maxRetries; attempt++ {
		if !isRetryable(resp, err) {
			return resp, err
		}

		delay := d.backoffDelay(attempt, resp)
		d.logger.Warn("retrying after transient error",
			"method", req.Method,
			"path", req.URL.Path,
			"attempt", attempt,
			"max_retries", d.maxRetries,
			"delay", delay,
			"status", statusOf(resp),
			"error", err,
		)
		drain(resp)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}

		resp, err = d.inner.Do(req.Clone(ctx))
	}
	return resp, err
}

// backoffDelay computes the delay for a given attempt with ±30% jitter.
// A Retry-After header (HTTP 429/503) takes precedence.
func (d *RetryDoer) backoffDelay(attempt int, resp *http.Response) time.Duration {
	if resp != nil {
		if ra := parseRetryAfter(resp.Header.Get("Retry-After")); ra > 0 {
			return ra
		}
	}

	// Exponential: baseDelay * 2^(attempt-1)
	delay := d.baseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
	}

	jitter := float64(delay) * 0.3
	return time.Duration(float64(delay) + (rand.Float64()*2-1)*jitter)
}

// isRetryable returns true if the outcome represents a transient failure.
func isRetryable(resp *http.Response, err error) bool {
	if err != nil {
		// Context cancellation: never retry.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return false
		}
		// Network, DNS, connection reset: retryable.
		return true
	}
	if resp == nil {
		return false
	}
	return resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
}

func idempotent(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}

// ParseRetryAfter parses the Retry-After header value (seconds form).
// Returns zero if absent or unparseable.
func ParseRetryAfter(value string) time.Duration {
	return parseRetryAfter(value)
}

func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func statusOf(resp *http.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}

func drain(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
