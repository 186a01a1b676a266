// Package nav names the app's routes and implements the login redirect
// that protected actions fall back to.
package nav

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

const (
	Home      = "/"
	Login     = "/login"
	Signup    = "/signup"
	Jobs      = "/jobs"
	Companies = "/companies"
	Events    = "/events"
	Dashboard = "/dashboard"
	Profile   = "/profile"
)

const returnParam = "returnUrl"

// Job returns the route of one job's detail page.
func Job(id string) string {
	return Jobs + "/" + url.PathEscape(id)
}

func Company(id string) string {
	return Companies + "/" + url.PathEscape(id)
}

func Event(id string) string {
	return Events + "/" + url.PathEscape(id)
}

// LoginRedirect returns the login route carrying current as returnUrl.
func LoginRedirect(current string) string {
	if current == "" || current == Login {
		return Login
	}
	return Login + "?" + url.Values{returnParam: {current}}.Encode()
}

// ReturnURL extracts where to go after signing in from a login route. It
// defaults to Home and never leaves the app.
func ReturnURL(loginURL string) string {
	u, err := url.Parse(loginURL)
	if err != nil {
		return Home
	}
	target := u.Query().Get(returnParam)
	if !isLocal(target) {
		return Home
	}
	return target
}

// isLocal accepts absolute paths only: "/jobs/1" but not "//evil.com",
// "https://evil.com" or "jobs".
func isLocal(target string) bool {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return false
	}
	u, err := url.Parse(target)
	return err == nil && u.Scheme == "" && u.Host == ""
}

// AuthChecker reports whether a user is signed in.
type AuthChecker interface {
	IsLoggedIn() bool
}

// JobSaver bookmarks jobs.
type JobSaver interface {
	Save(ctx context.Context, id string) error
}

// SaveJob bookmarks jobID for a signed-in user. A signed-out user gets the
// login redirect back to currentURL instead and nothing is sent.
func SaveJob(ctx context.Context, auth AuthChecker, jobs JobSaver, jobID, currentURL string) (redirect string, err error) {
	if !auth.IsLoggedIn() {
		return LoginRedirect(currentURL), nil
	}
	if err := jobs.Save(ctx, jobID); err != nil {
		return "", fmt.Errorf("save job %s: %w", jobID, err)
	}
	return "", nil
}

// RequireLogin returns the login redirect for a signed-out user, or "".
func RequireLogin(auth AuthChecker, currentURL string) string {
	if auth.IsLoggedIn() {
		return ""
	}
	return LoginRedirect(currentURL)
}
