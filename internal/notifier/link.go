package notifier

import (
	"net/url"

	"github.com/amishk599/jobdesk/internal/model"
	"github.com/amishk599/jobdesk/internal/nav"
)

// LinkFunc returns where a job can be opened.
type LinkFunc func(model.Job) string

// WebLink builds job links on the origin of the API base URL, e.g.
// https://api.example.com/api/v1 gives https://api.example.com/jobs/42.
// It returns nil when baseURL has no origin.
func WebLink(baseURL string) LinkFunc {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil
	}
	origin := u.Scheme + "://" + u.Host
	return func(j model.Job) string {
		return origin + nav.Job(j.ID)
	}
}
