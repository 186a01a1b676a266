package retry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockDoer calls a function on each invocation, tracking call count.
type mockDoer struct {
	calls int
	fn    func(attempt int) (*http.Response, error)
}

func (m *mockDoer) Do(_ *http.Request) (*http.Response, error) {
	m.calls++
	return m.fn(m.calls)
}

func response(status int) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader("{}")),
	}
}

func newRequest(t *testing.T, ctx context.Context, method string) *http.Request {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, method, "http://api.test/jobs", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	return req
}

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	mock := &mockDoer{fn: func(_ int) (*http.Response, error) {
		return response(http.StatusOK), nil
	}}

	d := NewRetryDoer(mock, 2, 10*time.Millisecond, discardLogger())
	resp, err := d.Do(newRequest(t, context.Background(), http.MethodGet))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call, got %d", mock.calls)
	}
}

func TestRetry_RetriesOn5xx_SucceedsOnSecondAttempt(t *testing.T) {
	mock := &mockDoer{fn: func(attempt int) (*http.Response, error) {
		if attempt == 1 {
			return response(http.StatusServiceUnavailable), nil
		}
		return response(http.StatusOK), nil
	}}

	d := NewRetryDoer(mock, 2, 10*time.Millisecond, discardLogger())
	resp, err := d.Do(newRequest(t, context.Background(), http.MethodGet))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if mock.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.calls)
	}
}

func TestRetry_DoesNotRetryOn4xx(t *testing.T) {
	mock := &mockDoer{fn: func(_ int) (*http.Response, error) {
		return response(http.StatusNotFound), nil
	}}

	d := NewRetryDoer(mock, 2, 10*time.Millisecond, discardLogger())
	resp, err := d.Do(newRequest(t, context.Background(), http.MethodGet))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call (no retry), got %d", mock.calls)
	}
}

func TestRetry_DoesNotRetryPost(t *testing.T) {
	mock := &mockDoer{fn: func(_ int) (*http.Response, error) {
		return response(http.StatusInternalServerError), nil
	}}

	d := NewRetryDoer(mock, 3, 10*time.Millisecond, discardLogger())
	resp, err := d.Do(newRequest(t, context.Background(), http.MethodPost))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call for POST, got %d", mock.calls)
	}
}

func TestRetry_GivesUpAfterMaxRetries(t *testing.T) {
	mock := &mockDoer{fn: func(_ int) (*http.Response, error) {
		return nil, errors.New("connection reset")
	}}

	d := NewRetryDoer(mock, 2, 10*time.Millisecond, discardLogger())
	_, err := d.Do(newRequest(t, context.Background(), http.MethodGet))
	if err == nil {
		t.Fatal("expected error after max retries, got nil")
	}
	// 1 initial + 2 retries = 3
	if mock.calls != 3 {
		t.Fatalf("expected 3 calls (1 + 2 retries), got %d", mock.calls)
	}
}

func TestRetry_RespectsContextCancellation(t *testing.T) {
	mock := &mockDoer{fn: func(_ int) (*http.Response, error) {
		return response(http.StatusInternalServerError), nil
	}}

	ctx, cancel := context.WithCancel(context.Background())
	// Cancel immediately so the backoff sleep is interrupted.
	cancel()

	d := NewRetryDoer(mock, 2, time.Second, discardLogger())
	_, err := d.Do(newRequest(t, ctx, http.MethodGet))
	if err == nil {
		t.Fatal("expected error from context cancellation, got nil")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call before cancellation, got %d", mock.calls)
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", 0},
		{"120", 120 * time.Second},
		{"soon", 0},
		{"-3", 0},
	}
	for _, tc := range tests {
		if got := ParseRetryAfter(tc.in); got != tc.want {
			t.Errorf("ParseRetryAfter(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
