package view

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/amishk599/jobdesk/internal/dashboard"
	"github.com/amishk599/jobdesk/internal/model"
)

func TestEmptyStates(t *testing.T) {
	tests := []struct {
		name   string
		render func(*bytes.Buffer)
		want   string
	}{
		{"jobs", func(b *bytes.Buffer) { Jobs(b, nil) }, NoJobs},
		{"companies", func(b *bytes.Buffer) { Companies(b, nil) }, NoCompanies},
		{"events", func(b *bytes.Buffer) { Events(b, []model.Event{}) }, NoEvents},
		{"applications", func(b *bytes.Buffer) { Applications(b, nil) }, NoApplications},
		{"users", func(b *bytes.Buffer) { Users(b, nil) }, NoUsers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.render(&buf)
			if got := strings.TrimSpace(buf.String()); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestJobsTable(t *testing.T) {
	jobs := []model.Job{
		{ID: "j1", Title: "Backend Engineer", CompanyName: "Acme", Location: "Berlin",
			JobType: model.JobTypeFullTime, SalaryMin: 50000, SalaryMax: 75000, Currency: "EUR"},
		{ID: "j2", Title: "Intern", CompanyName: "Globex", JobType: model.JobTypeInternship, IsSaved: true},
	}

	var buf bytes.Buffer
	Jobs(&buf, jobs)
	out := buf.String()

	for _, want := range []string{"Backend Engineer", "Acme", "Full Time", "EUR 50,000 - 75,000", "★ Intern", "─"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if lines := strings.Count(out, "\n"); lines != 4 {
		t.Errorf("expected header, rule and 2 rows, got %d lines", lines)
	}
}

func TestJobDetail(t *testing.T) {
	deadline := model.NewDate(2026, time.January, 10)
	job := model.Job{
		Title:       "SRE",
		CompanyName: "Acme",
		Location:    "Lisbon",
		IsRemote:    true,
		Skills:      []string{"go", "k8s"},
		Deadline:    &deadline,
		Description: "Keep things up.",
	}

	var buf bytes.Buffer
	Job(&buf, job, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC))
	out := buf.String()

	for _, want := range []string{"Lisbon (remote friendly)", "go, k8s", "Jan 10, 2026 (closed)", "Description\nKeep things up."} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Salary:") {
		t.Errorf("empty salary should be omitted:\n%s", out)
	}
}

func TestEventsTable(t *testing.T) {
	events := []model.Event{
		{ID: "e1", Title: "Career Fair", IsOnline: true, Capacity: 10, RegisteredCount: 10},
		{ID: "e2", Title: "Meetup", Location: "Paris", RegisteredCount: 3, IsRegistered: true},
	}

	var buf bytes.Buffer
	Events(&buf, events)
	out := buf.String()

	for _, want := range []string{"Online", "10/10", "full", "3 going", "registered"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestProfileSections(t *testing.T) {
	start := model.NewDate(2020, time.March, 1)
	p := model.Profile{
		User: model.User{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", EmailVerified: true},
		Experience: []model.WorkExperience{
			{ID: "x1", Title: "Engineer", Company: "Acme", DateRange: model.DateRange{StartDate: start, IsCurrent: true}},
		},
		Resumes: []model.Resume{{ID: "r1", Title: "CV", IsDefault: true}},
	}

	var buf bytes.Buffer
	Profile(&buf, p)
	out := buf.String()

	for _, want := range []string{
		"Ada Lovelace",
		"ada@example.com ✓",
		"Engineer at Acme (Mar 2020 - Present)",
		"Education\n  none",
		"CV (default)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestEmployerDashboardWithoutPostings(t *testing.T) {
	var buf bytes.Buffer
	EmployerDashboard(&buf, dashboard.EmployerSummary{})
	if !strings.HasSuffix(strings.TrimSpace(buf.String()), NoJobs) {
		t.Errorf("expected empty state, got:\n%s", buf.String())
	}
}

func TestPageFooter(t *testing.T) {
	var buf bytes.Buffer
	Page(&buf, model.Page[model.Job]{Items: make([]model.Job, 20), Total: 45, Page: 1, Limit: 20})
	if !strings.Contains(buf.String(), "showing 20 of 45 · next: --page 2") {
		t.Errorf("unexpected footer %q", buf.String())
	}

	buf.Reset()
	Page(&buf, model.Page[model.Job]{})
	if buf.Len() != 0 {
		t.Errorf("empty page should print nothing, got %q", buf.String())
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("héllo wörld", 6); got != "héllo…" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "validation",
			err:  fmt.Errorf("%w: Title is required", model.ErrValidation),
			want: "Title is required",
		},
		{
			name: "server message",
			err:  fmt.Errorf("create job: %w", &model.APIError{StatusCode: 409, Message: "Job already exists"}),
			want: "Job already exists",
		},
		{
			name: "timeout",
			err:  fmt.Errorf("list jobs: %w", context.DeadlineExceeded),
			want: "The server took too long to respond. Please try again.",
		},
		{
			name: "expired session",
			err:  &model.APIError{StatusCode: 401},
			want: "Your session has expired. Please log in again.",
		},
		{
			name: "fallback",
			err:  errors.New("dial tcp: connection refused"),
			want: "Could not load jobs.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err, "Could not load jobs."); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
