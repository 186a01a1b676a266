package alerts

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/amishk599/jobdesk/internal/listing"
	"github.com/amishk599/jobdesk/internal/model"
	"github.com/amishk599/jobdesk/internal/ratelimit"
)

// --- Fakes ---

// MockFetcher returns a canned slice of jobs or an error.
type MockFetcher struct {
	Jobs []model.Job
	Err  error
}

func (m *MockFetcher) FetchJobs(_ context.Context) ([]model.Job, error) {
	return m.Jobs, m.Err
}

// InMemoryStore is a map-based store for testing dedup.
type InMemoryStore struct {
	seen map[string]bool
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{seen: make(map[string]bool)}
}

func (s *InMemoryStore) HasSeen(jobID string) (bool, error) { return s.seen[jobID], nil }
func (s *InMemoryStore) MarkSeen(jobID string) error {
	s.seen[jobID] = true
	return nil
}
func (s *InMemoryStore) Cleanup(_ time.Duration) error { return nil }
func (s *InMemoryStore) IsEmpty() (bool, error)        { return len(s.seen) == 0, nil }

// RecordingNotifier records which jobs were sent to Notify.
type RecordingNotifier struct {
	Notified []model.Job
	Err      error
}

func (n *RecordingNotifier) Notify(jobs []model.Job) error {
	if n.Err != nil {
		return n.Err
	}
	n.Notified = append(n.Notified, jobs...)
	return nil
}

type AcceptAllFilter struct{}

func (f *AcceptAllFilter) Match(_ model.Job) bool { return true }

// pagedLister serves jobs in pages of two and records the queries it got.
type pagedLister struct {
	jobs    []model.Job
	queries []listing.JobQuery
}

func (l *pagedLister) List(_ context.Context, q listing.JobQuery) (model.Page[model.Job], error) {
	l.queries = append(l.queries, q)
	page := max(q.Page, 1)
	start := min((page-1)*2, len(l.jobs))
	end := min(start+2, len(l.jobs))
	return model.Page[model.Job]{Items: l.jobs[start:end], Total: len(l.jobs), Page: page, Limit: 2}, nil
}

// --- Helpers ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func makeJobs(ids ...string) []model.Job {
	jobs := make([]model.Job, len(ids))
	for i, id := range ids {
		jobs[i] = model.Job{
			ID:          id,
			CompanyName: "testco",
			Title:       "Software Engineer",
			Location:    "Remote",
		}
	}
	return jobs
}

// nonEmptyStore returns a store with a dummy entry so it is not treated as a first run.
func nonEmptyStore() *InMemoryStore {
	s := NewInMemoryStore()
	s.MarkSeen("__seed__")
	return s
}

func newPoller(fetcher model.JobFetcher, filter model.JobFilter, store model.JobStore, n model.Notifier) *SearchPoller {
	return NewSearchPoller("go-remote", fetcher, filter, store, n, discardLogger())
}

// --- Tests ---

func TestPoll_FilterAndDedup(t *testing.T) {
	store := nonEmptyStore()
	store.MarkSeen("2")

	notifier := &RecordingNotifier{}
	p := newPoller(&MockFetcher{Jobs: makeJobs("1", "2", "3", "4", "5")}, &AcceptAllFilter{}, store, notifier)

	if err := p.Poll(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := len(notifier.Notified); got != 4 {
		t.Errorf("notified = %d, want 4", got)
	}
	for _, id := range []string{"1", "2", "3", "4", "5"} {
		if seen, _ := store.HasSeen(id); !seen {
			t.Errorf("job %s should be marked seen", id)
		}
	}
}

func TestPoll_AppliesSearchFilter(t *testing.T) {
	jobs := makeJobs("1", "2", "3", "4")
	jobs[1].Title = "Golang Developer"
	jobs[2].Skills = []string{"golang"}
	jobs[3].Description = "Our platform team writes Golang services."

	notifier := &RecordingNotifier{}
	filter := listing.NewFilter(listing.JobQuery{Search: "golang"})
	p := newPoller(&MockFetcher{Jobs: jobs}, filter, nonEmptyStore(), notifier)

	if err := p.Poll(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifier.Notified) != 3 {
		t.Fatalf("notified = %d, want 3", len(notifier.Notified))
	}
	for i, want := range []string{"2", "3", "4"} {
		if got := notifier.Notified[i].ID; got != want {
			t.Errorf("notified[%d] = %s, want %s", i, got, want)
		}
	}
}

func TestPoll_FetchError(t *testing.T) {
	notifier := &RecordingNotifier{}
	p := newPoller(&MockFetcher{Err: errors.New("boom")}, &AcceptAllFilter{}, nonEmptyStore(), notifier)

	if err := p.Poll(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if len(notifier.Notified) != 0 {
		t.Error("notifier should not be called on fetch error")
	}
}

func TestPoll_NotifyErrorLeavesJobsUnseen(t *testing.T) {
	store := nonEmptyStore()
	p := newPoller(&MockFetcher{Jobs: makeJobs("1")}, &AcceptAllFilter{}, store, &RecordingNotifier{Err: errors.New("slack down")})

	if err := p.Poll(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if seen, _ := store.HasSeen("1"); seen {
		t.Error("job should stay unseen so the next poll retries it")
	}
}

func TestPoll_FirstRunSeedsWithoutNotifying(t *testing.T) {
	store := NewInMemoryStore() // empty = first run
	notifier := &RecordingNotifier{}
	p := newPoller(&MockFetcher{Jobs: makeJobs("1", "2", "3")}, &AcceptAllFilter{}, store, notifier)

	if err := p.Poll(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifier.Notified) != 0 {
		t.Error("notifier should not be called on first run (seeding)")
	}
	for _, id := range []string{"1", "2", "3"} {
		if seen, _ := store.HasSeen(id); !seen {
			t.Errorf("job %s should be marked seen after seeding", id)
		}
	}
}

func TestSeed_NonEmptyStore(t *testing.T) {
	store := nonEmptyStore()
	notifier := &RecordingNotifier{}
	p := newPoller(&MockFetcher{Jobs: makeJobs("1")}, &AcceptAllFilter{}, store, notifier)

	if err := p.Seed(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifier.Notified) != 0 {
		t.Error("Seed should never notify")
	}
	if seen, _ := store.HasSeen("1"); !seen {
		t.Error("job should be marked seen")
	}
}

func TestSearchFetcher_Pages(t *testing.T) {
	lister := &pagedLister{jobs: makeJobs("1", "2", "3", "4", "5", "6", "7", "8")}
	query := listing.JobQuery{Search: "go", Limit: 2}
	f := NewSearchFetcher(lister, query, ratelimit.NewLimiter(0))

	jobs, err := f.FetchJobs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 2*maxPages {
		t.Errorf("fetched %d jobs, want %d", len(jobs), 2*maxPages)
	}
	if len(lister.queries) != maxPages {
		t.Fatalf("made %d requests, want %d", len(lister.queries), maxPages)
	}
	for i, q := range lister.queries {
		if q.Search != "go" {
			t.Errorf("request %d search = %q", i, q.Search)
		}
		if i > 0 && q.Page != i+1 {
			t.Errorf("request %d page = %d, want %d", i, q.Page, i+1)
		}
	}
}

func TestSearchFetcher_StopsOnLastPage(t *testing.T) {
	lister := &pagedLister{jobs: makeJobs("1", "2", "3")}
	f := NewSearchFetcher(lister, listing.JobQuery{}, ratelimit.NewLimiter(0))

	jobs, err := f.FetchJobs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 3 || len(lister.queries) != 2 {
		t.Errorf("jobs = %d requests = %d, want 3 and 2", len(jobs), len(lister.queries))
	}
}

func TestSearchFetcher_CancelledWhileWaiting(t *testing.T) {
	limiter := ratelimit.NewLimiter(time.Hour)
	limiter.Allow(limiterKey)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewSearchFetcher(&pagedLister{}, listing.JobQuery{}, limiter)
	if _, err := f.FetchJobs(ctx); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
