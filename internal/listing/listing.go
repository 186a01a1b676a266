// Package listing builds job search queries and applies the same criteria to
// jobs held locally.
package listing

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/amishk599/jobdesk/internal/model"
)

// JobQuery is the job board's search form.
type JobQuery struct {
	Search          string                `yaml:"search"`
	Location        string                `yaml:"location"`
	JobType         model.JobType         `yaml:"job_type"`
	ExperienceLevel model.ExperienceLevel `yaml:"experience_level"`
	Page            int                   `yaml:"-"`
	Limit           int                   `yaml:"-"`
}

// Values encodes the non-empty criteria as query parameters.
func (q JobQuery) Values() url.Values {
	v := url.Values{}
	set := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			v.Set(key, value)
		}
	}
	set("search", q.Search)
	set("location", q.Location)
	set("job_type", string(q.JobType))
	set("experience_level", string(q.ExperienceLevel))
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

// Next returns the query for the following page.
func (q JobQuery) Next() JobQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	q.Page++
	return q
}

// Filter matches jobs against a JobQuery locally. Matching is
// case-insensitive; empty criteria match everything.
type Filter struct {
	search   string
	location string
	jobType  model.JobType
	level    model.ExperienceLevel
}

var _ model.JobFilter = (*Filter)(nil)

func NewFilter(q JobQuery) *Filter {
	return &Filter{
		search:   strings.ToLower(strings.TrimSpace(q.Search)),
		location: strings.ToLower(strings.TrimSpace(q.Location)),
		jobType:  q.JobType,
		level:    q.ExperienceLevel,
	}
}

// Match reports whether job satisfies every criterion. Search looks at the
// title, company name, skills, description and requirements, the same
// fields the server searches.
func (f *Filter) Match(job model.Job) bool {
	if f.search != "" && !f.matchSearch(job) {
		return false
	}
	if f.location != "" && !strings.Contains(strings.ToLower(job.Location), f.location) {
		if !(f.location == "remote" && job.IsRemote) {
			return false
		}
	}
	if f.jobType != "" && job.JobType != f.jobType {
		return false
	}
	if f.level != "" && job.ExperienceLevel != f.level {
		return false
	}
	return true
}

func (f *Filter) matchSearch(job model.Job) bool {
	for _, s := range []string{job.Title, job.CompanyName, job.Description, job.Requirements} {
		if strings.Contains(strings.ToLower(s), f.search) {
			return true
		}
	}
	for _, s := range job.Skills {
		if strings.Contains(strings.ToLower(s), f.search) {
			return true
		}
	}
	return false
}

// Apply returns the jobs that match, preserving order.
func Apply(f model.JobFilter, jobs []model.Job) []model.Job {
	var out []model.Job
	for _, j := range jobs {
		if f.Match(j) {
			out = append(out, j)
		}
	}
	return out
}
