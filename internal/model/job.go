package model

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type JobType string

const (
	JobTypeFullTime   JobType = "full_time"
	JobTypePartTime   JobType = "part_time"
	JobTypeContract   JobType = "contract"
	JobTypeInternship JobType = "internship"
	JobTypeRemote     JobType = "remote"
)

// JobTypes lists every job type in display order.
var JobTypes = []JobType{JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeInternship, JobTypeRemote}

func (t JobType) Valid() bool {
	for _, v := range JobTypes {
		if v == t {
			return true
		}
	}
	return false
}

func (t JobType) Label() string {
	return humanize(string(t))
}

type ExperienceLevel string

const (
	LevelEntry  ExperienceLevel = "entry"
	LevelMid    ExperienceLevel = "mid"
	LevelSenior ExperienceLevel = "senior"
	LevelLead   ExperienceLevel = "lead"
)

// ExperienceLevels lists every level in display order.
var ExperienceLevels = []ExperienceLevel{LevelEntry, LevelMid, LevelSenior, LevelLead}

func (l ExperienceLevel) Valid() bool {
	for _, v := range ExperienceLevels {
		if v == l {
			return true
		}
	}
	return false
}

func (l ExperienceLevel) Label() string {
	return humanize(string(l))
}

// Job is a posting as returned by the jobs endpoints.
type Job struct {
	ID              string          `json:"id"`
	CompanyID       string          `json:"company_id"`
	CompanyName     string          `json:"company_name"`
	Title           string          `json:"title"`
	Description     string          `json:"description,omitempty"`
	Requirements    string          `json:"requirements,omitempty"`
	Location        string          `json:"location"`
	JobType         JobType         `json:"job_type"`
	ExperienceLevel ExperienceLevel `json:"experience_level"`
	SalaryMin       int64           `json:"salary_min,omitempty"`
	SalaryMax       int64           `json:"salary_max,omitempty"`
	Currency        string          `json:"currency,omitempty"`
	Skills          []string        `json:"skills,omitempty"`
	IsRemote        bool            `json:"is_remote"`
	IsSaved         bool            `json:"is_saved"`
	ApplicantCount  int             `json:"applicant_count,omitempty"`
	Deadline        *Date           `json:"deadline,omitempty"`
	PostedAt        *time.Time      `json:"posted_at,omitempty"` // nullable
}

// SalaryRange formats the salary bounds, e.g. "USD 50,000 - 75,000".
// Empty when neither bound is set.
func (j Job) SalaryRange() string {
	if j.SalaryMin == 0 && j.SalaryMax == 0 {
		return ""
	}
	currency := j.Currency
	if currency == "" {
		currency = "USD"
	}
	switch {
	case j.SalaryMin == 0:
		return fmt.Sprintf("%s up to %s", currency, groupThousands(j.SalaryMax))
	case j.SalaryMax == 0:
		return fmt.Sprintf("%s from %s", currency, groupThousands(j.SalaryMin))
	default:
		return fmt.Sprintf("%s %s - %s", currency, groupThousands(j.SalaryMin), groupThousands(j.SalaryMax))
	}
}

// Expired reports whether the application deadline has passed.
func (j Job) Expired(now time.Time) bool {
	if j.Deadline == nil || j.Deadline.IsZero() {
		return false
	}
	return j.Deadline.AddDate(0, 0, 1).Before(now)
}

// JobFetcher fetches job listings for one saved search.
type JobFetcher interface {
	FetchJobs(ctx context.Context) ([]Job, error)
}

// JobStore tracks which job IDs have been seen for alert deduplication.
type JobStore interface {
	HasSeen(jobID string) (bool, error)
	MarkSeen(jobID string) error
	Cleanup(olderThan time.Duration) error
	IsEmpty() (bool, error)
}

// Notifier sends notifications for new job matches.
type Notifier interface {
	Notify(jobs []Job) error
}

// JobFilter decides whether a job matches the user's criteria.
type JobFilter interface {
	Match(job Job) bool
}

func groupThousands(n int64) string {
	s := fmt.Sprintf("%d", n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// humanize turns "full_time" into "Full Time".
func humanize(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
