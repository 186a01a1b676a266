package model

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// ErrUnauthorized is returned when there is no usable session, or the
	// server rejected the token and a refresh did not help.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned for 403 responses and for actions the signed-in
	// role may not take.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.New("not found")
	// ErrValidation marks client-side form validation failures.
	ErrValidation = errors.New("validation failed")
)

// APIError wraps a non-2xx response so callers and retry logic can inspect it.
type APIError struct {
	StatusCode int
	Message    string        // "message" field of the response envelope, may be empty
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *APIError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	default:
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
}

// Unwrap exposes ErrUnauthorized, ErrForbidden and ErrNotFound for the matching status codes
// so callers can use errors.Is without looking at StatusCode.
func (e *APIError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

// Transient reports whether the failure is worth retrying (5xx or 429).
func (e *APIError) Transient() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}
