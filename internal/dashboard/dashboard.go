// Package dashboard builds the per-role home screen summaries. Everything is
// derived by counting what the services return.
package dashboard

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/amishk599/jobdesk/internal/api"
	"github.com/amishk599/jobdesk/internal/model"
)

const (
	pageLimit = 100
	maxPages  = 10
	recentN   = 5
)

type Applications interface {
	Mine(ctx context.Context) ([]model.JobApplication, error)
	ForJob(ctx context.Context, jobID string) ([]model.JobApplication, error)
}

type SavedJobs interface {
	Saved(ctx context.Context) ([]model.Job, error)
}

type Events interface {
	List(ctx context.Context, q api.PageQuery) (model.Page[model.Event], error)
}

type Companies interface {
	List(ctx context.Context, q api.PageQuery) (model.Page[model.Company], error)
	Jobs(ctx context.Context, id string) ([]model.Job, error)
}

type Users interface {
	List(ctx context.Context, q api.UserQuery) (model.Page[model.User], error)
}

// StatusCount is one row of an applications-by-status breakdown.
type StatusCount struct {
	Status model.ApplicationStatus
	Count  int
}

type SeekerSummary struct {
	Applications   int
	ByStatus       []StatusCount
	Recent         []model.JobApplication
	SavedJobs      int
	UpcomingEvents []model.Event
}

// JobApplicants is one posting with its applicant count.
type JobApplicants struct {
	Job        model.Job
	Applicants int
}

type EmployerSummary struct {
	Companies    []model.Company
	Postings     int
	OpenPostings int
	Applicants   int
	ByStatus     []StatusCount
	PerJob       []JobApplicants
}

type RoleCount struct {
	Role  model.Role
	Count int
}

type AdminSummary struct {
	Users      int
	ByRole     []RoleCount
	Companies  int
	Unverified []model.Company
}

type Service struct {
	apps      Applications
	saved     SavedJobs
	events    Events
	companies Companies
	users     Users
	now       func() time.Time
}

func New(apps Applications, saved SavedJobs, events Events, companies Companies, users Users) *Service {
	return &Service{
		apps:      apps,
		saved:     saved,
		events:    events,
		companies: companies,
		users:     users,
		now:       time.Now,
	}
}

// Seeker summarises a job seeker's applications, bookmarks and the upcoming
// events they registered for.
func (s *Service) Seeker(ctx context.Context) (SeekerSummary, error) {
	var (
		sum    SeekerSummary
		apps   []model.JobApplication
		saved  []model.Job
		events []model.Event
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if apps, err = s.apps.Mine(ctx); err != nil {
			return fmt.Errorf("load applications: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if saved, err = s.saved.Saved(ctx); err != nil {
			return fmt.Errorf("load saved jobs: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		page, err := s.events.List(ctx, api.PageQuery{Limit: pageLimit})
		if err != nil {
			return fmt.Errorf("load events: %w", err)
		}
		events = page.Items
		return nil
	})
	if err := g.Wait(); err != nil {
		return sum, err
	}

	sum.Applications = len(apps)
	sum.ByStatus = countStatuses(apps)
	sum.Recent = recent(apps, recentN)
	sum.SavedJobs = len(saved)

	now := s.now()
	for _, e := range events {
		if e.IsRegistered && e.Upcoming(now) {
			sum.UpcomingEvents = append(sum.UpcomingEvents, e)
		}
	}
	sort.Slice(sum.UpcomingEvents, func(i, j int) bool {
		return sum.UpcomingEvents[i].StartsAt.Before(sum.UpcomingEvents[j].StartsAt)
	})
	return sum, nil
}

// Employer summarises the postings of the companies user owns and their
// applicants.
func (s *Service) Employer(ctx context.Context, user model.User) (EmployerSummary, error) {
	var sum EmployerSummary

	companies, err := s.allCompanies(ctx)
	if err != nil {
		return sum, err
	}
	for _, c := range companies {
		if c.OwnerID == user.ID {
			sum.Companies = append(sum.Companies, c)
		}
	}

	var jobs []model.Job
	for _, c := range sum.Companies {
		cj, err := s.companies.Jobs(ctx, c.ID)
		if err != nil {
			return sum, fmt.Errorf("load jobs of %s: %w", c.Name, err)
		}
		jobs = append(jobs, cj...)
	}

	var (
		mu      sync.Mutex
		allApps []model.JobApplication
	)
	sum.PerJob = make([]JobApplicants, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, j := range jobs {
		g.Go(func() error {
			apps, err := s.apps.ForJob(gctx, j.ID)
			if err != nil {
				return fmt.Errorf("load applicants of %s: %w", j.Title, err)
			}
			sum.PerJob[i] = JobApplicants{Job: j, Applicants: len(apps)}
			mu.Lock()
			allApps = append(allApps, apps...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return sum, err
	}

	now := s.now()
	sum.Postings = len(jobs)
	for _, j := range jobs {
		if !j.Expired(now) {
			sum.OpenPostings++
		}
	}
	sum.Applicants = len(allApps)
	sum.ByStatus = countStatuses(allApps)
	sort.SliceStable(sum.PerJob, func(i, k int) bool {
		return sum.PerJob[i].Applicants > sum.PerJob[k].Applicants
	})
	return sum, nil
}

// Admin counts users per role and lists companies awaiting verification.
func (s *Service) Admin(ctx context.Context) (AdminSummary, error) {
	var sum AdminSummary

	roles := []model.Role{model.RoleJobSeeker, model.RoleEmployer, model.RoleAdmin}
	sum.ByRole = make([]RoleCount, len(roles))
	g, gctx := errgroup.WithContext(ctx)
	for i, r := range roles {
		g.Go(func() error {
			page, err := s.users.List(gctx, api.UserQuery{Role: r, PageQuery: api.PageQuery{Page: 1, Limit: 1}})
			if err != nil {
				return fmt.Errorf("count %s users: %w", r, err)
			}
			sum.ByRole[i] = RoleCount{Role: r, Count: page.Total}
			return nil
		})
	}
	var companies []model.Company
	g.Go(func() error {
		var err error
		companies, err = s.allCompanies(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return sum, err
	}

	for _, rc := range sum.ByRole {
		sum.Users += rc.Count
	}
	sum.Companies = len(companies)
	for _, c := range companies {
		if !c.IsVerified {
			sum.Unverified = append(sum.Unverified, c)
		}
	}
	return sum, nil
}

func (s *Service) allCompanies(ctx context.Context) ([]model.Company, error) {
	var out []model.Company
	for p := 1; p <= maxPages; p++ {
		page, err := s.companies.List(ctx, api.PageQuery{Page: p, Limit: pageLimit})
		if err != nil {
			return nil, fmt.Errorf("load companies: %w", err)
		}
		out = append(out, page.Items...)
		if !page.HasNext() {
			break
		}
	}
	return out, nil
}

// countStatuses returns a row per known status, in pipeline order, omitting
// zero counts.
func countStatuses(apps []model.JobApplication) []StatusCount {
	counts := make(map[model.ApplicationStatus]int)
	for _, a := range apps {
		counts[a.Status]++
	}
	var out []StatusCount
	for _, st := range model.ApplicationStatuses {
		if n := counts[st]; n > 0 {
			out = append(out, StatusCount{Status: st, Count: n})
		}
	}
	return out
}

// recent returns the n most recently updated applications.
func recent(apps []model.JobApplication, n int) []model.JobApplication {
	sorted := make([]model.JobApplication, len(apps))
	copy(sorted, apps)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UpdatedAt.After(sorted[j].UpdatedAt)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
