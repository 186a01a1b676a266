// Package alerts polls saved job searches and notifies about postings that
// have not been seen before.
package alerts

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/amishk599/jobdesk/internal/listing"
	"github.com/amishk599/jobdesk/internal/model"
	"github.com/amishk599/jobdesk/internal/ratelimit"
)

// limiterKey is shared by every search so requests are spaced out globally.
const limiterKey = "alerts"

// maxPages bounds how far back one poll looks.
const maxPages = 3

// JobLister is the part of the jobs service the fetcher needs.
type JobLister interface {
	List(ctx context.Context, q listing.JobQuery) (model.Page[model.Job], error)
}

// SearchFetcher runs a saved search against the jobs endpoint.
type SearchFetcher struct {
	jobs    JobLister
	query   listing.JobQuery
	limiter *ratelimit.Limiter
}

var _ model.JobFetcher = (*SearchFetcher)(nil)

func NewSearchFetcher(jobs JobLister, query listing.JobQuery, limiter *ratelimit.Limiter) *SearchFetcher {
	return &SearchFetcher{jobs: jobs, query: query, limiter: limiter}
}

// FetchJobs returns up to maxPages of results, newest first as the server
// orders them.
func (f *SearchFetcher) FetchJobs(ctx context.Context) ([]model.Job, error) {
	var jobs []model.Job
	q := f.query
	for range maxPages {
		if err := f.limiter.Wait(ctx, limiterKey); err != nil {
			return nil, err
		}
		page, err := f.jobs.List(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("list jobs page %d: %w", max(q.Page, 1), err)
		}
		jobs = append(jobs, page.Items...)
		if !page.HasNext() {
			break
		}
		q = q.Next()
	}
	return jobs, nil
}

// SearchPoller owns the full pipeline for one saved search:
// fetch → filter → dedup → notify → mark seen.
type SearchPoller struct {
	Name     string
	fetcher  model.JobFetcher
	filter   model.JobFilter
	store    model.JobStore
	notifier model.Notifier
	logger   *slog.Logger
}

func NewSearchPoller(
	name string,
	fetcher model.JobFetcher,
	filter model.JobFilter,
	store model.JobStore,
	notifier model.Notifier,
	logger *slog.Logger,
) *SearchPoller {
	return &SearchPoller{
		Name:     name,
		fetcher:  fetcher,
		filter:   filter,
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// Poll runs one cycle. When the store is empty it seeds instead, so the
// first run does not flood the notifier with every open posting.
func (p *SearchPoller) Poll(ctx context.Context) error {
	empty, err := p.store.IsEmpty()
	if err != nil {
		return fmt.Errorf("polling %s: checking store: %w", p.Name, err)
	}
	return p.run(ctx, empty)
}

// Seed marks every current match as seen without notifying.
func (p *SearchPoller) Seed(ctx context.Context) error {
	return p.run(ctx, true)
}

func (p *SearchPoller) run(ctx context.Context, seed bool) error {
	jobs, err := p.fetcher.FetchJobs(ctx)
	if err != nil {
		return fmt.Errorf("polling %s: %w", p.Name, err)
	}

	var matched []model.Job
	for _, job := range jobs {
		if p.filter.Match(job) {
			matched = append(matched, job)
		}
	}

	var newJobs []model.Job
	for _, job := range matched {
		seen, err := p.store.HasSeen(job.ID)
		if err != nil {
			return fmt.Errorf("polling %s: checking seen status: %w", p.Name, err)
		}
		if !seen {
			newJobs = append(newJobs, job)
		}
	}

	if len(newJobs) > 0 && !seed {
		if err := p.notifier.Notify(newJobs); err != nil {
			return fmt.Errorf("polling %s: notifying: %w", p.Name, err)
		}
	}

	for _, job := range newJobs {
		if err := p.store.MarkSeen(job.ID); err != nil {
			return fmt.Errorf("polling %s: marking seen: %w", p.Name, err)
		}
	}

	p.logger.Info("polled search",
		"search", p.Name,
		"fetched", len(jobs),
		"matched", len(matched),
		"new", len(newJobs),
		"seeded", seed,
	)
	return nil
}
