package view

import (
	"fmt"
	"io"

	"github.com/amishk599/jobdesk/internal/dashboard"
)

func SeekerDashboard(w io.Writer, s dashboard.SeekerSummary) {
	fmt.Fprintf(w, "Applications: %d   Saved jobs: %d   Upcoming events: %d\n",
		s.Applications, s.SavedJobs, len(s.UpcomingEvents))
	statusCounts(w, s.ByStatus)

	fmt.Fprintf(w, "\nRecent applications\n")
	Applications(w, s.Recent)

	fmt.Fprintf(w, "\nUpcoming events\n")
	Events(w, s.UpcomingEvents)
}

func EmployerDashboard(w io.Writer, s dashboard.EmployerSummary) {
	fmt.Fprintf(w, "Companies: %d   Postings: %d (%d open)   Applicants: %d\n",
		len(s.Companies), s.Postings, s.OpenPostings, s.Applicants)
	statusCounts(w, s.ByStatus)

	fmt.Fprintf(w, "\nApplicants per posting\n")
	if len(s.PerJob) == 0 {
		fmt.Fprintln(w, NoJobs)
		return
	}
	for _, pj := range s.PerJob {
		fmt.Fprintf(w, "  %-40s %d\n", truncate(pj.Job.Title, 40), pj.Applicants)
	}
}

func AdminDashboard(w io.Writer, s dashboard.AdminSummary) {
	fmt.Fprintf(w, "Users: %d   Companies: %d   Awaiting verification: %d\n",
		s.Users, s.Companies, len(s.Unverified))
	for _, rc := range s.ByRole {
		fmt.Fprintf(w, "  %-12s %d\n", rc.Role.Label(), rc.Count)
	}

	fmt.Fprintf(w, "\nAwaiting verification\n")
	Companies(w, s.Unverified)
}

func statusCounts(w io.Writer, counts []dashboard.StatusCount) {
	for _, sc := range counts {
		fmt.Fprintf(w, "  %-12s %d\n", sc.Status.Label(), sc.Count)
	}
}
