// Package view renders records as plain text for the CLI and holds the
// messages shared with the TUI.
package view

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/amishk599/jobdesk/internal/model"
)

// Empty-state messages.
const (
	NoJobs         = "No jobs found"
	NoEvents       = "No events found"
	NoCompanies    = "No companies found"
	NoApplications = "No applications yet"
	NoUsers        = "No users found"
	NoSavedJobs    = "No saved jobs yet"
)

const dateTimeLayout = "Jan 2, 2006 15:04"

func rule(w io.Writer, width int) {
	fmt.Fprintln(w, strings.Repeat("─", width))
}

// truncate shortens s to n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// Jobs prints a job table, or NoJobs.
func Jobs(w io.Writer, jobs []model.Job) {
	if len(jobs) == 0 {
		fmt.Fprintln(w, NoJobs)
		return
	}
	fmt.Fprintf(w, "%-10s %-32s %-20s %-18s %-11s %s\n", "ID", "Title", "Company", "Location", "Type", "Salary")
	rule(w, 110)
	for _, j := range jobs {
		title := j.Title
		if j.IsSaved {
			title = "★ " + title
		}
		fmt.Fprintf(w, "%-10s %-32s %-20s %-18s %-11s %s\n",
			truncate(j.ID, 10),
			truncate(title, 32),
			truncate(j.CompanyName, 20),
			truncate(j.Location, 18),
			j.JobType.Label(),
			orDash(j.SalaryRange()),
		)
	}
}

// Page prints the paging footer for a list.
func Page[T any](w io.Writer, p model.Page[T]) {
	if p.Total == 0 {
		return
	}
	fmt.Fprintf(w, "\nPage %d · showing %d of %d", max(p.Page, 1), len(p.Items), p.Total)
	if p.HasNext() {
		fmt.Fprintf(w, " · next: --page %d", max(p.Page, 1)+1)
	}
	fmt.Fprintln(w)
}

// Job prints one job in full.
func Job(w io.Writer, j model.Job, now time.Time) {
	fmt.Fprintln(w, j.Title)
	rule(w, max(utf8.RuneCountInString(j.Title), 20))
	field(w, "Company", j.CompanyName)
	loc := j.Location
	if j.IsRemote && !strings.Contains(strings.ToLower(loc), "remote") {
		loc += " (remote friendly)"
	}
	field(w, "Location", loc)
	field(w, "Type", j.JobType.Label())
	field(w, "Level", j.ExperienceLevel.Label())
	field(w, "Salary", j.SalaryRange())
	if len(j.Skills) > 0 {
		field(w, "Skills", strings.Join(j.Skills, ", "))
	}
	if j.PostedAt != nil {
		field(w, "Posted", j.PostedAt.Format("Jan 2, 2006"))
	}
	if j.Deadline != nil && !j.Deadline.IsZero() {
		d := j.Deadline.Format("Jan 2, 2006")
		if j.Expired(now) {
			d += " (closed)"
		}
		field(w, "Apply by", d)
	}
	if j.ApplicantCount > 0 {
		field(w, "Applicants", fmt.Sprint(j.ApplicantCount))
	}
	if j.IsSaved {
		field(w, "Saved", "yes")
	}
	section(w, "Description", j.Description)
	section(w, "Requirements", j.Requirements)
}

func field(w io.Writer, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(w, "%-12s %s\n", label+":", value)
}

func section(w io.Writer, title, body string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	fmt.Fprintf(w, "\n%s\n%s\n", title, strings.TrimSpace(body))
}

// Companies prints a company table, or NoCompanies.
func Companies(w io.Writer, companies []model.Company) {
	if len(companies) == 0 {
		fmt.Fprintln(w, NoCompanies)
		return
	}
	fmt.Fprintf(w, "%-10s %-28s %-20s %-20s %-9s %s\n", "ID", "Name", "Industry", "Location", "Size", "Verified")
	rule(w, 100)
	for _, c := range companies {
		verified := ""
		if c.IsVerified {
			verified = "✓"
		}
		fmt.Fprintf(w, "%-10s %-28s %-20s %-20s %-9s %s\n",
			truncate(c.ID, 10),
			truncate(c.Name, 28),
			truncate(orDash(c.Industry), 20),
			truncate(orDash(c.Location), 20),
			orDash(c.Size),
			verified,
		)
	}
}

// Company prints one company and its open jobs.
func Company(w io.Writer, c model.Company, jobs []model.Job) {
	name := c.Name
	if c.IsVerified {
		name += " ✓"
	}
	fmt.Fprintln(w, name)
	rule(w, max(utf8.RuneCountInString(name), 20))
	field(w, "Industry", c.Industry)
	field(w, "Location", c.Location)
	field(w, "Size", c.Size)
	if c.FoundedYear > 0 {
		field(w, "Founded", fmt.Sprint(c.FoundedYear))
	}
	field(w, "Website", c.Website)
	section(w, "About", c.Description)
	fmt.Fprintf(w, "\nOpen positions\n")
	Jobs(w, jobs)
}

// Events prints an event table, or NoEvents.
func Events(w io.Writer, events []model.Event) {
	if len(events) == 0 {
		fmt.Fprintln(w, NoEvents)
		return
	}
	fmt.Fprintf(w, "%-10s %-32s %-18s %-20s %-10s %s\n", "ID", "Title", "Starts", "Where", "Seats", "")
	rule(w, 100)
	for _, e := range events {
		fmt.Fprintf(w, "%-10s %-32s %-18s %-20s %-10s %s\n",
			truncate(e.ID, 10),
			truncate(e.Title, 32),
			e.StartsAt.Local().Format(dateTimeLayout),
			truncate(where(e), 20),
			seats(e),
			registration(e),
		)
	}
}

// Event prints one event in full.
func Event(w io.Writer, e model.Event) {
	fmt.Fprintln(w, e.Title)
	rule(w, max(utf8.RuneCountInString(e.Title), 20))
	field(w, "Organizer", e.Organizer)
	field(w, "Starts", e.StartsAt.Local().Format(dateTimeLayout))
	if !e.EndsAt.IsZero() {
		field(w, "Ends", e.EndsAt.Local().Format(dateTimeLayout))
	}
	field(w, "Where", where(e))
	field(w, "Seats", seats(e))
	field(w, "Status", registration(e))
	section(w, "Details", e.Description)
}

func where(e model.Event) string {
	if e.IsOnline {
		return "Online"
	}
	return orDash(e.Location)
}

func seats(e model.Event) string {
	if e.Capacity <= 0 {
		return fmt.Sprintf("%d going", e.RegisteredCount)
	}
	return fmt.Sprintf("%d/%d", e.RegisteredCount, e.Capacity)
}

func registration(e model.Event) string {
	switch {
	case e.IsRegistered:
		return "registered"
	case e.Full():
		return "full"
	}
	return ""
}

// Applications prints a seeker's or employer's application table, or
// NoApplications.
func Applications(w io.Writer, apps []model.JobApplication) {
	if len(apps) == 0 {
		fmt.Fprintln(w, NoApplications)
		return
	}
	fmt.Fprintf(w, "%-10s %-28s %-20s %-20s %-12s %s\n", "ID", "Job", "Company", "Applicant", "Status", "Applied")
	rule(w, 106)
	for _, a := range apps {
		fmt.Fprintf(w, "%-10s %-28s %-20s %-20s %-12s %s\n",
			truncate(a.ID, 10),
			truncate(orDash(a.JobTitle), 28),
			truncate(orDash(a.CompanyName), 20),
			truncate(orDash(a.ApplicantName), 20),
			a.Status.Label(),
			a.AppliedAt.Local().Format("Jan 2, 2006"),
		)
	}
}

// Users prints the admin user table, or NoUsers.
func Users(w io.Writer, users []model.User) {
	if len(users) == 0 {
		fmt.Fprintln(w, NoUsers)
		return
	}
	fmt.Fprintf(w, "%-10s %-24s %-30s %-11s %s\n", "ID", "Name", "Email", "Role", "Active")
	rule(w, 86)
	for _, u := range users {
		active := "yes"
		if !u.IsActive {
			active = "no"
		}
		fmt.Fprintf(w, "%-10s %-24s %-30s %-11s %s\n",
			truncate(u.ID, 10),
			truncate(u.FullName(), 24),
			truncate(u.Email, 30),
			u.Role.Label(),
			active,
		)
	}
}

// User prints the signed-in account.
func User(w io.Writer, u model.User) {
	fmt.Fprintln(w, u.FullName())
	rule(w, max(utf8.RuneCountInString(u.FullName()), 20))
	field(w, "Email", verified(u.Email, u.EmailVerified))
	field(w, "Mobile", verified(u.Mobile, u.MobileVerified))
	field(w, "Role", u.Role.Label())
	if u.ExperienceType != "" {
		field(w, "Experience", string(u.ExperienceType))
	}
	field(w, "Headline", u.Headline)
	field(w, "Location", u.Location)
}

func verified(value string, ok bool) string {
	if value == "" || !ok {
		return value
	}
	return value + " ✓"
}

// Profile prints every profile section.
func Profile(w io.Writer, p model.Profile) {
	User(w, p.User)

	fmt.Fprintf(w, "\nEducation\n")
	if len(p.Education) == 0 {
		fmt.Fprintln(w, "  none")
	}
	for _, e := range p.Education {
		fmt.Fprintf(w, "  [%s] %s, %s (%s)\n", e.ID, e.Degree, e.Institution, e.Period())
	}

	fmt.Fprintf(w, "\nExperience\n")
	if len(p.Experience) == 0 {
		fmt.Fprintln(w, "  none")
	}
	for _, e := range p.Experience {
		fmt.Fprintf(w, "  [%s] %s at %s (%s)\n", e.ID, e.Title, e.Company, e.Period())
	}

	fmt.Fprintf(w, "\nProjects\n")
	if len(p.Projects) == 0 {
		fmt.Fprintln(w, "  none")
	}
	for _, pr := range p.Projects {
		line := fmt.Sprintf("  [%s] %s", pr.ID, pr.Title)
		if len(pr.Technologies) > 0 {
			line += " · " + strings.Join(pr.Technologies, ", ")
		}
		fmt.Fprintln(w, line)
	}

	fmt.Fprintf(w, "\nSkills\n")
	if len(p.Skills) == 0 {
		fmt.Fprintln(w, "  none")
	}
	for _, s := range p.Skills {
		if s.Level != "" {
			fmt.Fprintf(w, "  [%s] %s (%s)\n", s.ID, s.Name, s.Level)
		} else {
			fmt.Fprintf(w, "  [%s] %s\n", s.ID, s.Name)
		}
	}

	fmt.Fprintf(w, "\nResumes\n")
	if len(p.Resumes) == 0 {
		fmt.Fprintln(w, "  none")
	}
	for _, r := range p.Resumes {
		def := ""
		if r.IsDefault {
			def = " (default)"
		}
		fmt.Fprintf(w, "  [%s] %s%s\n", r.ID, r.Title, def)
	}
}
