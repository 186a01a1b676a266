// Package api is the service layer: a base client that speaks the platform's
// REST conventions and one service type per backend resource.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/amishk599/jobdesk/internal/model"
	"github.com/amishk599/jobdesk/internal/retry"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 10 << 20

// Doer sends HTTP requests. *http.Client and *retry.RetryDoer satisfy it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TokenSource supplies and rotates the bearer tokens. The session implements it.
type TokenSource interface {
	AccessToken() string
	RefreshToken() string
	AccessTokenExpired() bool
	SetTokens(ctx context.Context, tokens model.Tokens) error
	Clear(ctx context.Context) error
}

// Client is the base of every service. It builds URLs, attaches credentials,
// decodes the response envelope and refreshes expired sessions.
type Client struct {
	baseURL string
	http    Doer
	tokens  TokenSource
	logger  *slog.Logger

	refreshMu sync.Mutex
}

// NewClient creates a client for the API rooted at baseURL. tokens may be nil
// for unauthenticated use.
func NewClient(baseURL string, doer Doer, tokens TokenSource, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    doer,
		tokens:  tokens,
		logger:  logger,
	}
}

// envelope is the platform's response wrapper.
type envelope struct {
	Success *bool           `json:"success,omitempty"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
	anonymous   bool // skip Authorization and refresh handling
}

// do sends r and decodes the envelope's data into out (nil to discard).
func (c *Client) do(ctx context.Context, r request, out any) error {
	authed := !r.anonymous && c.tokens != nil && c.tokens.AccessToken() != ""

	if authed && c.tokens.AccessTokenExpired() && c.tokens.RefreshToken() != "" {
		if err := c.refresh(ctx, c.tokens.AccessToken()); err != nil {
			return err
		}
	}

	sentWith := ""
	if authed {
		sentWith = c.tokens.AccessToken()
	}
	resp, err := c.send(ctx, r, sentWith)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized && authed && c.tokens.RefreshToken() != "" {
		resp.Body.Close()
		if err := c.refresh(ctx, sentWith); err != nil {
			return err
		}
		resp, err = c.send(ctx, r, c.tokens.AccessToken())
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	return decodeResponse(resp, out)
}

func (c *Client) send(ctx context.Context, r request, token string) (*http.Response, error) {
	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, u, body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", r.method, r.path, err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("api request failed", "method", r.method, "path", r.path, "request_id", requestID, "error", err)
		return nil, fmt.Errorf("%s %s: %w", r.method, r.path, err)
	}
	c.logger.Debug("api request",
		"method", r.method,
		"path", r.path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start),
	)
	return resp, nil
}

// refresh exchanges the refresh token for a new pair. stale is the access
// token the failed request used; if another goroutine already rotated it,
// there is nothing to do.
func (c *Client) refresh(ctx context.Context, stale string) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	if cur := c.tokens.AccessToken(); cur != stale && cur != "" && !c.tokens.AccessTokenExpired() {
		return nil
	}

	tokens, err := c.refreshTokens(ctx, c.tokens.RefreshToken())
	if err != nil {
		c.logger.Info("session refresh failed, signing out", "error", err)
		if clearErr := c.tokens.Clear(ctx); clearErr != nil {
			c.logger.Warn("clearing session", "error", clearErr)
		}
		return fmt.Errorf("refresh session: %w", errors.Join(model.ErrUnauthorized, err))
	}
	if err := c.tokens.SetTokens(ctx, tokens); err != nil {
		return fmt.Errorf("refresh session: %w", err)
	}
	c.logger.Debug("session refreshed")
	return nil
}

func (c *Client) refreshTokens(ctx context.Context, refreshToken string) (model.Tokens, error) {
	var tokens model.Tokens
	body, err := json.Marshal(map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return tokens, fmt.Errorf("encode refresh request: %w", err)
	}
	r := request{
		method:      http.MethodPost,
		path:        "/auth/refresh-token",
		body:        body,
		contentType: "application/json",
		anonymous:   true,
	}
	resp, err := c.send(ctx, r, "")
	if err != nil {
		return tokens, err
	}
	defer resp.Body.Close()
	if err := decodeResponse(resp, &tokens); err != nil {
		return tokens, err
	}
	if tokens.AccessToken == "" {
		return tokens, errors.New("refresh response has no access token")
	}
	return tokens, nil
}

// decodeResponse turns non-2xx responses and envelopes with success=false
// into *model.APIError and otherwise unmarshals data into out.
func decodeResponse(resp *http.Response, out any) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	envErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &model.APIError{
			StatusCode: resp.StatusCode,
			RetryAfter: retry.ParseRetryAfter(resp.Header.Get("Retry-After")),
		}
		if envErr == nil {
			apiErr.Message = env.Message
		}
		return apiErr
	}

	if envErr == nil && env.Success != nil && !*env.Success {
		return &model.APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if envErr != nil {
		return fmt.Errorf("decode response: %w", envErr)
	}

	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func jsonBody(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return b, nil
}

// get issues GET path?query and decodes data into T.
func get[T any](ctx context.Context, c *Client, path string, query url.Values) (T, error) {
	var out T
	err := c.do(ctx, request{method: http.MethodGet, path: path, query: query}, &out)
	return out, err
}

// sendJSON issues method path with a JSON body and decodes data into T.
func sendJSON[T any](ctx context.Context, c *Client, method, path string, in any) (T, error) {
	var out T
	body, err := jsonBody(in)
	if err != nil {
		return out, err
	}
	r := request{method: method, path: path, body: body}
	if body != nil {
		r.contentType = "application/json"
	}
	err = c.do(ctx, r, &out)
	return out, err
}

func post[T any](ctx context.Context, c *Client, path string, in any) (T, error) {
	return sendJSON[T](ctx, c, http.MethodPost, path, in)
}

func put[T any](ctx context.Context, c *Client, path string, in any) (T, error) {
	return sendJSON[T](ctx, c, http.MethodPut, path, in)
}

func del(ctx context.Context, c *Client, path string) error {
	return exec(ctx, c, http.MethodDelete, path, nil)
}

// exec issues method path with an optional JSON body and discards the data.
func exec(ctx context.Context, c *Client, method, path string, in any) error {
	body, err := jsonBody(in)
	if err != nil {
		return err
	}
	r := request{method: method, path: path, body: body}
	if body != nil {
		r.contentType = "application/json"
	}
	return c.do(ctx, r, nil)
}

// anonJSON is sendJSON without credentials, for the signup and sign-in flows.
func anonJSON[T any](ctx context.Context, c *Client, method, path string, in any) (T, error) {
	var out T
	body, err := jsonBody(in)
	if err != nil {
		return out, err
	}
	r := request{method: method, path: path, body: body, contentType: "application/json", anonymous: true}
	err = c.do(ctx, r, &out)
	return out, err
}

// pathf builds a path with escaped segments: pathf("/jobs/%s/save", id).
func pathf(format string, ids ...string) string {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = url.PathEscape(id)
	}
	return fmt.Sprintf(format, args...)
}
