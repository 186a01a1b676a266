// Package session holds the authenticated user for the lifetime of the
// process and persists it to local storage between runs.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/amishk599/jobdesk/internal/model"
	"github.com/amishk599/jobdesk/internal/store"
)

// Storage keys, shared with the web client's local storage layout.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyUser         = "user"
)

// expirySkew treats tokens that expire within this window as already expired,
// so a request does not race the deadline.
const expirySkew = 30 * time.Second

// Session is safe for concurrent use; TUI screens call services from
// background commands while the UI goroutine reads login state.
type Session struct {
	mu      sync.RWMutex
	storage store.LocalStorage
	logger  *slog.Logger
	now     func() time.Time

	user    *model.User
	access  string
	refresh string
}

// New returns an empty session backed by storage. Call Load to restore a
// previous login.
func New(storage store.LocalStorage, logger *slog.Logger) *Session {
	return &Session{
		storage: storage,
		logger:  logger,
		now:     time.Now,
	}
}

// Load restores tokens and user from storage. A corrupt user record is
// treated as logged out rather than an error.
func (s *Session) Load(ctx context.Context) error {
	access, _, err := s.storage.Get(ctx, KeyAccessToken)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	refresh, _, err := s.storage.Get(ctx, KeyRefreshToken)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	rawUser, ok, err := s.storage.Get(ctx, KeyUser)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	var user *model.User
	if ok && rawUser != "" {
		var u model.User
		if err := json.Unmarshal([]byte(rawUser), &u); err != nil {
			s.logger.Warn("discarding unreadable stored user", "error", err)
		} else {
			user = &u
		}
	}

	s.mu.Lock()
	s.access, s.refresh, s.user = access, refresh, user
	s.mu.Unlock()

	s.logger.Debug("session loaded", "logged_in", s.IsLoggedIn())
	return nil
}

// Login stores the token pair and user, in memory and in storage.
func (s *Session) Login(ctx context.Context, tokens model.Tokens, user model.User) error {
	if err := s.SetTokens(ctx, tokens); err != nil {
		return err
	}
	return s.SetUser(ctx, user)
}

// SetUser replaces the stored user, e.g. after a profile update.
func (s *Session) SetUser(ctx context.Context, user model.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.storage.Set(ctx, KeyUser, string(raw)); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	return nil
}

// SetTokens stores a new token pair. An empty refresh token keeps the old one,
// since some refresh endpoints only rotate the access token.
func (s *Session) SetTokens(ctx context.Context, tokens model.Tokens) error {
	if err := s.storage.Set(ctx, KeyAccessToken, tokens.AccessToken); err != nil {
		return fmt.Errorf("save access token: %w", err)
	}
	if tokens.RefreshToken != "" {
		if err := s.storage.Set(ctx, KeyRefreshToken, tokens.RefreshToken); err != nil {
			return fmt.Errorf("save refresh token: %w", err)
		}
	}

	s.mu.Lock()
	s.access = tokens.AccessToken
	if tokens.RefreshToken != "" {
		s.refresh = tokens.RefreshToken
	}
	s.mu.Unlock()
	return nil
}

// Logout forgets the user and tokens.
func (s *Session) Logout(ctx context.Context) error {
	return s.Clear(ctx)
}

// Clear removes every session key from memory and storage.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.user, s.access, s.refresh = nil, "", ""
	s.mu.Unlock()

	if err := s.storage.Remove(ctx, KeyAccessToken, KeyRefreshToken, KeyUser); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// User returns the signed-in user, if any.
func (s *Session) User() (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return model.User{}, false
	}
	return *s.user, true
}

// Role returns the signed-in user's role, empty when signed out.
func (s *Session) Role() model.Role {
	u, ok := s.User()
	if !ok {
		return ""
	}
	return u.Role
}

// IsLoggedIn is true when a user is present and the session can still
// authenticate: the access token is valid or a refresh token exists.
func (s *Session) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil || s.access == "" {
		return false
	}
	return !s.expiredLocked() || s.refresh != ""
}

func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

// AccessTokenExpired reports whether the access token is missing or expires
// within the skew window.
func (s *Session) AccessTokenExpired() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiredLocked()
}

func (s *Session) expiredLocked() bool {
	if s.access == "" {
		return true
	}
	exp, ok := TokenExpiry(s.access)
	if !ok {
		// Opaque token: let the server decide.
		return false
	}
	return !s.now().Add(expirySkew).Before(exp)
}

// TokenExpiry reads the exp claim of a JWT without verifying its signature;
// the server verifies, the client only needs to know when to refresh.
func TokenExpiry(token string) (time.Time, bool) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
