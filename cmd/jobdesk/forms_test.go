package main

import (
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobdesk/internal/config"
	"github.com/amishk599/jobdesk/internal/form"
	"github.com/amishk599/jobdesk/internal/listing"
	"github.com/amishk599/jobdesk/internal/model"
	"github.com/amishk599/jobdesk/internal/store"
)

func TestBindFormRegistersFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "add"}
	f := form.EducationForm()
	bindForm(cmd, f)

	for _, name := range []string{"institution", "start-date", "end-date", "field-of-study"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("flag --%s not registered", name)
		}
	}
	if got := cmd.Flags().Lookup("is-current").Value.Type(); got != "bool" {
		t.Errorf("is-current type = %s, want bool", got)
	}
}

func TestFormValuesOnlyChangedFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "add"}
	f := form.EducationForm()
	bindForm(cmd, f)

	if err := cmd.ParseFlags([]string{"--institution", "MIT", "--start-date", "2020-09-01", "--is-current"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	v := formValues(cmd, f)

	want := form.Values{"institution": "MIT", "start_date": "2020-09-01", "is_current": "true"}
	if len(v) != len(want) {
		t.Fatalf("got %v, want %v", v, want)
	}
	for k, w := range want {
		if v[k] != w {
			t.Errorf("%s = %q, want %q", k, v[k], w)
		}
	}
}

func TestFormValuesSubmitCurrentEducation(t *testing.T) {
	cmd := &cobra.Command{Use: "add"}
	f := form.EducationForm()
	bindForm(cmd, f)
	args := []string{"--institution", "MIT", "--degree", "BSc", "--start-date", "2020-09-01",
		"--is-current", "--end-date", "2024-06-01"}
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	in, err := form.NewEducationController(nil).Validate(formValues(cmd, f))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	got := in.Education()
	if !got.IsCurrent || got.EndDate != nil {
		t.Errorf("current education should carry no end date, got %+v", got.DateRange)
	}
}

func TestRouteID(t *testing.T) {
	tests := []struct {
		route, prefix, want string
	}{
		{"/jobs/42", "/jobs", "42"},
		{"/events/7", "/events", "7"},
		{"/jobs", "/jobs", ""},
		{"/", "/jobs", ""},
		{"/companies/3", "/jobs", ""},
	}
	for _, tt := range tests {
		if got := routeID(tt.route, tt.prefix); got != tt.want {
			t.Errorf("routeID(%q, %q) = %q, want %q", tt.route, tt.prefix, got, tt.want)
		}
	}
}

func TestJobRow(t *testing.T) {
	title, sub := jobRow(model.Job{
		Title:       "Go Developer",
		CompanyName: "Acme",
		Location:    "Berlin",
		JobType:     model.JobTypeFullTime,
		IsSaved:     true,
	})
	if title != "★ Go Developer" {
		t.Errorf("title = %q", title)
	}
	if sub != "Acme · Berlin · Full Time" {
		t.Errorf("subtitle = %q", sub)
	}
}

func TestBuildPollersSkipsDisabledSearches(t *testing.T) {
	cfg := &config.Config{
		UI: config.UIConfig{PageSize: 20},
		Alerts: config.AlertsConfig{Searches: []config.SearchConfig{
			{Name: "go", Enabled: true, JobQuery: listing.JobQuery{Search: "golang"}},
			{Name: "rust", Enabled: false},
			{Name: "remote", Enabled: true, JobQuery: listing.JobQuery{Location: "remote"}},
		}},
	}
	pollers := buildPollers(cfg, nil, store.NewNopStore(), nil, discardLogger())
	if len(pollers) != 2 {
		t.Fatalf("got %d pollers, want 2", len(pollers))
	}
	if pollers[0].Name != "go" || pollers[1].Name != "remote" {
		t.Errorf("names = %s, %s", pollers[0].Name, pollers[1].Name)
	}
}

func TestJobUpdateKeepsUnsetFields(t *testing.T) {
	deadline := model.NewDate(2026, time.December, 31)
	current := model.Job{
		Title:           "Go Developer",
		Description:     "Build services.",
		Location:        "Berlin",
		JobType:         model.JobTypeFullTime,
		ExperienceLevel: model.LevelMid,
		SalaryMin:       60000,
		SalaryMax:       80000,
		Currency:        "EUR",
		Skills:          []string{"Go", "SQL"},
		IsRemote:        true,
		Deadline:        &deadline,
	}
	cmd := &cobra.Command{Use: "update"}
	f := form.JobForm()
	bindForm(cmd, f)
	if err := cmd.ParseFlags([]string{"--salary-max", "90000", "--experience-level", "senior"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	in, err := form.NewJobController(nil).Validate(mergeValues(jobValues(current), cmd, f))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	got := in.Job()
	if got.SalaryMax != 90000 || got.ExperienceLevel != model.LevelSenior {
		t.Errorf("overrides not applied: %+v", got)
	}
	if got.Title != current.Title || got.SalaryMin != 60000 || got.Currency != "EUR" || !got.IsRemote {
		t.Errorf("unset fields changed: %+v", got)
	}
	if len(got.Skills) != 2 || got.Skills[1] != "SQL" {
		t.Errorf("skills = %v", got.Skills)
	}
	if got.Deadline == nil || got.Deadline.String() != "2026-12-31" {
		t.Errorf("deadline = %v", got.Deadline)
	}
}

func TestCompanyValuesOmitsZeroFoundedYear(t *testing.T) {
	v := companyValues(model.Company{Name: "Acme", Size: "11-50"})
	if _, ok := v["founded_year"]; ok {
		t.Errorf("founded_year should be unset, got %q", v["founded_year"])
	}
	if v["name"] != "Acme" || v["size"] != "11-50" {
		t.Errorf("values = %v", v)
	}
}
