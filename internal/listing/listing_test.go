package listing

import (
	"testing"

	"github.com/amishk599/jobdesk/internal/model"
)

func job(title, company, location string) model.Job {
	return model.Job{Title: title, CompanyName: company, Location: location}
}

func TestJobQuery_Values(t *testing.T) {
	q := JobQuery{
		Search:  " golang ",
		JobType: model.JobTypeFullTime,
		Page:    2,
		Limit:   20,
	}
	got := q.Values().Encode()
	want := "job_type=full_time&limit=20&page=2&search=golang"
	if got != want {
		t.Errorf("Values() = %q, want %q", got, want)
	}

	if enc := (JobQuery{}).Values().Encode(); enc != "" {
		t.Errorf("empty query encoded to %q, want empty", enc)
	}
}

func TestJobQuery_Next(t *testing.T) {
	if got := (JobQuery{}).Next().Page; got != 2 {
		t.Errorf("Next() from unset page = %d, want 2", got)
	}
	if got := (JobQuery{Page: 3}).Next().Page; got != 4 {
		t.Errorf("Next() from page 3 = %d, want 4", got)
	}
}

func TestFilter_Match(t *testing.T) {
	tests := []struct {
		name      string
		query     JobQuery
		job       model.Job
		wantMatch bool
	}{
		{
			name:      "search matches title",
			query:     JobQuery{Search: "backend"},
			job:       job("Senior Backend Engineer", "Acme", "Berlin"),
			wantMatch: true,
		},
		{
			name:      "search matches company case insensitive",
			query:     JobQuery{Search: "ACME"},
			job:       job("Designer", "Acme Corp", "Berlin"),
			wantMatch: true,
		},
		{
			name:      "search matches skill",
			query:     JobQuery{Search: "kubernetes"},
			job:       model.Job{Title: "SRE", Skills: []string{"Go", "Kubernetes"}},
			wantMatch: true,
		},
		{
			name:      "search matches description",
			query:     JobQuery{Search: "golang"},
			job:       model.Job{Title: "Backend Engineer", Description: "Services written in Golang."},
			wantMatch: true,
		},
		{
			name:      "search matches requirements",
			query:     JobQuery{Search: "postgres"},
			job:       model.Job{Title: "Backend Engineer", Requirements: "3 years of PostgreSQL"},
			wantMatch: true,
		},
		{
			name:      "search miss",
			query:     JobQuery{Search: "rust"},
			job:       job("Frontend Engineer", "Acme", "Berlin"),
			wantMatch: false,
		},
		{
			name:      "location miss",
			query:     JobQuery{Location: "london"},
			job:       job("Engineer", "Acme", "New York, NY"),
			wantMatch: false,
		},
		{
			name:      "remote flag satisfies remote location",
			query:     JobQuery{Location: "Remote"},
			job:       model.Job{Title: "Engineer", Location: "Anywhere", IsRemote: true},
			wantMatch: true,
		},
		{
			name:      "job type must be exact",
			query:     JobQuery{JobType: model.JobTypeContract},
			job:       model.Job{Title: "Engineer", JobType: model.JobTypeFullTime},
			wantMatch: false,
		},
		{
			name:      "experience level matches",
			query:     JobQuery{ExperienceLevel: model.LevelSenior},
			job:       model.Job{Title: "Engineer", ExperienceLevel: model.LevelSenior},
			wantMatch: true,
		},
		{
			name:      "empty query passes all",
			query:     JobQuery{},
			job:       job("Any Role", "Anyone", "Anywhere"),
			wantMatch: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewFilter(tt.query).Match(tt.job)
			if got != tt.wantMatch {
				t.Errorf("Match() = %v, want %v", got, tt.wantMatch)
			}
		})
	}
}

func TestApply(t *testing.T) {
	jobs := []model.Job{
		job("Go Developer", "A", "Remote"),
		job("Java Developer", "B", "Remote"),
		job("Go Lead", "C", "Paris"),
	}
	got := Apply(NewFilter(JobQuery{Search: "go"}), jobs)
	if len(got) != 2 {
		t.Fatalf("Apply() returned %d jobs, want 2", len(got))
	}
	if got[0].CompanyName != "A" || got[1].CompanyName != "C" {
		t.Errorf("Apply() order = %s,%s, want A,C", got[0].CompanyName, got[1].CompanyName)
	}
}
