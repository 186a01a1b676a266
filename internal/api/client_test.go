package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/amishk599/jobdesk/internal/model"
)

// fakeTokens is an in-memory TokenSource.
type fakeTokens struct {
	mu      sync.Mutex
	access  string
	refresh string
	expired bool
	cleared bool
}

func (f *fakeTokens) AccessToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.access
}

func (f *fakeTokens) RefreshToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refresh
}

func (f *fakeTokens) AccessTokenExpired() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.expired
}

func (f *fakeTokens) SetTokens(_ context.Context, t model.Tokens) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.access = t.AccessToken
	if t.RefreshToken != "" {
		f.refresh = t.RefreshToken
	}
	f.expired = false
	return nil
}

func (f *fakeTokens) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.access, f.refresh, f.cleared = "", "", true
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, h http.HandlerFunc, tokens TokenSource) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", srv.Client(), tokens, testLogger())
}

func writeEnvelope(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	env := map[string]any{"success": status < 300, "message": message}
	if data != nil {
		env["data"] = data
	}
	json.NewEncoder(w).Encode(env)
}

func TestClient_DecodesEnvelopeAndSetsHeaders(t *testing.T) {
	var got *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		writeEnvelope(w, http.StatusOK, "", map[string]any{"id": "u1", "first_name": "Ada"})
	}, &fakeTokens{access: "tok"})

	user, err := get[model.User](context.Background(), c, "/users/me", nil)
	require.NoError(t, err)
	require.Equal(t, "u1", user.ID)
	require.Equal(t, "Ada", user.FirstName)

	require.Equal(t, "/users/me", got.URL.Path)
	require.Equal(t, "application/json", got.Header.Get("Accept"))
	require.Equal(t, "Bearer tok", got.Header.Get("Authorization"))
	require.Len(t, got.Header.Get("X-Request-ID"), 36)
}

func TestClient_NoAuthorizationWithoutSession(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Empty(t, r.Header.Get("Authorization"))
		writeEnvelope(w, http.StatusOK, "", []any{})
	}, nil)

	_, err := get[[]model.Job](context.Background(), c, "/jobs/saved", nil)
	require.NoError(t, err)
}

func TestClient_ErrorResponses(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		message    string
		wantIs     error
		wantStatus int
	}{
		{name: "not found", status: http.StatusNotFound, message: "Job not found", wantIs: model.ErrNotFound, wantStatus: 404},
		{name: "unauthorized without refresh token", status: http.StatusUnauthorized, message: "Invalid credentials", wantIs: model.ErrUnauthorized, wantStatus: 401},
		{name: "validation", status: http.StatusUnprocessableEntity, message: "Title is required", wantStatus: 422},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeEnvelope(w, tt.status, tt.message, nil)
			}, &fakeTokens{access: "tok"})

			_, err := get[model.Job](context.Background(), c, "/jobs/1", nil)
			require.Error(t, err)

			var apiErr *model.APIError
			require.True(t, errors.As(err, &apiErr))
			require.Equal(t, tt.wantStatus, apiErr.StatusCode)
			require.Equal(t, tt.message, apiErr.Message)
			if tt.wantIs != nil {
				require.ErrorIs(t, err, tt.wantIs)
			}
		})
	}
}

func TestClient_SuccessFalseIsError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"message":"Email already registered"}`))
	}, nil)

	_, err := post[model.User](context.Background(), c, "/auth/signup", map[string]string{"email": "a@b.c"})
	var apiErr *model.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "Email already registered", apiErr.Message)
}

func TestClient_RefreshesOn401AndReplays(t *testing.T) {
	var calls, refreshes int
	var bodies []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/refresh-token":
			refreshes++
			var in map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			require.Equal(t, "refresh-1", in["refresh_token"])
			require.Empty(t, r.Header.Get("Authorization"))
			writeEnvelope(w, http.StatusOK, "", map[string]string{"access_token": "new", "refresh_token": "refresh-2"})
		case "/jobs":
			calls++
			b, _ := io.ReadAll(r.Body)
			bodies = append(bodies, string(b))
			if r.Header.Get("Authorization") != "Bearer new" {
				writeEnvelope(w, http.StatusUnauthorized, "expired", nil)
				return
			}
			writeEnvelope(w, http.StatusCreated, "", map[string]string{"id": "j1"})
		}
	}, nil)
	tokens := &fakeTokens{access: "old", refresh: "refresh-1"}
	c.tokens = tokens

	job, err := post[model.Job](context.Background(), c, "/jobs", model.Job{Title: "Go Dev"})
	require.NoError(t, err)
	require.Equal(t, "j1", job.ID)
	require.Equal(t, 2, calls)
	require.Equal(t, 1, refreshes)
	require.Equal(t, bodies[0], bodies[1], "replayed body differs")
	require.Equal(t, "refresh-2", tokens.RefreshToken())
}

func TestClient_RefreshesExpiredTokenBeforeSending(t *testing.T) {
	var refreshes int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/refresh-token" {
			refreshes++
			writeEnvelope(w, http.StatusOK, "", map[string]string{"access_token": "fresh"})
			return
		}
		require.Equal(t, "Bearer fresh", r.Header.Get("Authorization"))
		writeEnvelope(w, http.StatusOK, "", map[string]string{"id": "u1"})
	}, nil)
	tokens := &fakeTokens{access: "stale", refresh: "r", expired: true}
	c.tokens = tokens

	_, err := get[model.User](context.Background(), c, "/users/me", nil)
	require.NoError(t, err)
	require.Equal(t, 1, refreshes)
	require.Equal(t, "r", tokens.RefreshToken(), "empty refresh in response keeps the old one")
}

func TestClient_FailedRefreshClearsSession(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/refresh-token" {
			writeEnvelope(w, http.StatusUnauthorized, "refresh token revoked", nil)
			return
		}
		writeEnvelope(w, http.StatusUnauthorized, "expired", nil)
	}, nil)
	tokens := &fakeTokens{access: "old", refresh: "revoked"}
	c.tokens = tokens

	_, err := get[model.User](context.Background(), c, "/users/me", nil)
	require.ErrorIs(t, err, model.ErrUnauthorized)
	require.True(t, tokens.cleared)
	require.Empty(t, tokens.AccessToken())
}

func TestClient_ContextCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		writeEnvelope(w, http.StatusOK, "", nil)
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := get[model.User](ctx, c, "/users/me", nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestUpload_Multipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "Backend CV", r.FormValue("title"))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		b, _ := io.ReadAll(f)
		require.Equal(t, "cv.pdf", hdr.Filename)
		require.Equal(t, "%PDF-1.4", string(b))

		writeEnvelope(w, http.StatusCreated, "", map[string]any{"id": "r1", "title": "Backend CV"})
	}, &fakeTokens{access: "tok"})

	svc := NewProfileService(c)
	res, err := svc.UploadResume(context.Background(), "Backend CV", File{Name: "/tmp/cv.pdf", Reader: strings.NewReader("%PDF-1.4")})
	require.NoError(t, err)
	require.Equal(t, "r1", res.ID)
}

func TestUpload_TooLarge(t *testing.T) {
	c := NewClient("http://unused", http.DefaultClient, nil, testLogger())
	big := strings.NewReader(strings.Repeat("x", maxUploadBytes+1))

	_, err := upload[model.User](context.Background(), c, "/users/me/avatar", "file", File{Name: "a.png", Reader: big}, nil)
	require.ErrorContains(t, err, "upload limit")
}

func TestQuery_OmitsEmptyValues(t *testing.T) {
	q := NewQuery().Set("search", "go").Set("location", "").SetInt("page", 0).SetInt("limit", 20)
	require.Equal(t, "limit=20&search=go", q.Encode())
}
