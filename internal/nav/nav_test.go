package nav

import (
	"context"
	"errors"
	"testing"
)

type fakeAuth bool

func (f fakeAuth) IsLoggedIn() bool { return bool(f) }

type fakeSaver struct {
	saved []string
	err   error
}

func (f *fakeSaver) Save(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, id)
	return nil
}

func TestLoginRedirect(t *testing.T) {
	tests := []struct {
		current string
		want    string
	}{
		{"/jobs/42", "/login?returnUrl=%2Fjobs%2F42"},
		{"/jobs?search=go&page=2", "/login?returnUrl=%2Fjobs%3Fsearch%3Dgo%26page%3D2"},
		{"", "/login"},
		{"/login", "/login"},
	}
	for _, tt := range tests {
		if got := LoginRedirect(tt.current); got != tt.want {
			t.Errorf("LoginRedirect(%q) = %q, want %q", tt.current, got, tt.want)
		}
	}
}

func TestReturnURL(t *testing.T) {
	tests := []struct {
		name     string
		loginURL string
		want     string
	}{
		{"round trip", LoginRedirect("/jobs?search=go&page=2"), "/jobs?search=go&page=2"},
		{"missing", "/login", "/"},
		{"absolute url", "/login?returnUrl=https%3A%2F%2Fevil.com%2F", "/"},
		{"protocol relative", "/login?returnUrl=%2F%2Fevil.com", "/"},
		{"relative path", "/login?returnUrl=jobs", "/"},
		{"unparseable", "%zz", "/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReturnURL(tt.loginURL); got != tt.want {
				t.Errorf("ReturnURL(%q) = %q, want %q", tt.loginURL, got, tt.want)
			}
		})
	}
}

func TestSaveJob_SignedOutRedirects(t *testing.T) {
	saver := &fakeSaver{}
	current := Job("42")

	redirect, err := SaveJob(context.Background(), fakeAuth(false), saver, "42", current)
	if err != nil {
		t.Fatalf("SaveJob: %v", err)
	}
	if redirect != "/login?returnUrl=%2Fjobs%2F42" {
		t.Errorf("redirect = %q", redirect)
	}
	if len(saver.saved) != 0 {
		t.Errorf("saved %v while signed out", saver.saved)
	}
	if ReturnURL(redirect) != current {
		t.Errorf("ReturnURL(redirect) = %q, want %q", ReturnURL(redirect), current)
	}
}

func TestSaveJob_SignedIn(t *testing.T) {
	saver := &fakeSaver{}
	redirect, err := SaveJob(context.Background(), fakeAuth(true), saver, "42", "/jobs/42")
	if err != nil {
		t.Fatalf("SaveJob: %v", err)
	}
	if redirect != "" {
		t.Errorf("redirect = %q, want none", redirect)
	}
	if len(saver.saved) != 1 || saver.saved[0] != "42" {
		t.Errorf("saved = %v", saver.saved)
	}

	saver.err = errors.New("boom")
	if _, err := SaveJob(context.Background(), fakeAuth(true), saver, "7", "/jobs/7"); err == nil {
		t.Error("SaveJob swallowed the service error")
	}
}

func TestRequireLogin(t *testing.T) {
	if got := RequireLogin(fakeAuth(true), Dashboard); got != "" {
		t.Errorf("RequireLogin(signed in) = %q", got)
	}
	if got := RequireLogin(fakeAuth(false), Dashboard); got != "/login?returnUrl=%2Fdashboard" {
		t.Errorf("RequireLogin(signed out) = %q", got)
	}
}
