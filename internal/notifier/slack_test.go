package notifier

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amishk599/jobdesk/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func timePtr(t time.Time) *time.Time { return &t }

func sampleJob(title, company string) model.Job {
	return model.Job{
		ID:          "123",
		CompanyName: company,
		Title:       title,
		Location:    "Remote, US",
		JobType:     model.JobTypeFullTime,
		PostedAt:    timePtr(time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)),
	}
}

func newTestSlack(srv *httptest.Server, link LinkFunc) *SlackNotifier {
	n := NewSlackNotifier(srv.URL, srv.Client(), link, discardLogger())
	n.sleep = func(time.Duration) {}
	return n
}

func staticLink(j model.Job) string { return "https://jobs.example.com/jobs/" + j.ID }

func TestSlackNotifier_EmptyJobs(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := newTestSlack(srv, nil)
	if err := n.Notify(nil); err != nil {
		t.Errorf("Notify(nil) = %v, want nil", err)
	}
	if err := n.Notify([]model.Job{}); err != nil {
		t.Errorf("Notify([]) = %v, want nil", err)
	}
	if c := calls.Load(); c != 0 {
		t.Errorf("expected 0 HTTP calls, got %d", c)
	}
}

func TestSlackNotifier_SingleJob(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := newTestSlack(srv, staticLink)
	if err := n.Notify([]model.Job{sampleJob("Backend Engineer", "Acme Corp")}); err != nil {
		t.Fatalf("Notify() = %v, want nil", err)
	}

	var payload slackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}

	if got := payload.Blocks[0].Text.Text; got != "🚀 Acme Corp: Backend Engineer" {
		t.Errorf("header text = %q, want company: title", got)
	}
	if got := payload.Blocks[1].Fields[0].Text; got != "*Company:*\nAcme Corp" {
		t.Errorf("company field = %q", got)
	}
	if got := payload.Blocks[2].Fields[1].Text; got != "*Type:*\nFull Time" {
		t.Errorf("type field = %q", got)
	}
	if got := payload.Blocks[3].Elements[0].URL; got != "https://jobs.example.com/jobs/123" {
		t.Errorf("action URL = %q", got)
	}
}

func TestSlackNotifier_MultipleJobs(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := newTestSlack(srv, nil)
	jobs := []model.Job{
		sampleJob("Engineer 1", "A"),
		sampleJob("Engineer 2", "B"),
		sampleJob("Engineer 3", "C"),
	}
	if err := n.Notify(jobs); err != nil {
		t.Fatalf("Notify() = %v, want nil", err)
	}
	if c := calls.Load(); c != 3 {
		t.Errorf("expected 3 HTTP calls, got %d", c)
	}
}

func TestSlackNotifier_AllFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := newTestSlack(srv, nil)
	jobs := []model.Job{
		sampleJob("A", "X"),
		sampleJob("B", "Y"),
		sampleJob("C", "Z"),
	}
	if err := n.Notify(jobs); err == nil {
		t.Error("expected error when all messages fail, got nil")
	}
}

func TestSlackNotifier_PartialFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := newTestSlack(srv, nil)
	jobs := []model.Job{
		sampleJob("Fails", "A"),
		sampleJob("Succeeds", "B"),
	}
	if err := n.Notify(jobs); err != nil {
		t.Errorf("expected nil (partial success), got %v", err)
	}
}

func TestSlackNotifier_RateLimited(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := newTestSlack(srv, nil)
	var slept []time.Duration
	n.sleep = func(d time.Duration) { slept = append(slept, d) }

	if err := n.Notify([]model.Job{sampleJob("Rate Limited Job", "Test")}); err != nil {
		t.Fatalf("expected nil after retry, got %v", err)
	}
	if c := calls.Load(); c != 2 {
		t.Errorf("expected 2 HTTP calls (initial + retry), got %d", c)
	}
	if len(slept) != 1 || slept[0] != time.Second {
		t.Errorf("slept = %v, want [1s]", slept)
	}
}

func TestSlackNotifier_RateLimitedTwiceFails(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	n := newTestSlack(srv, nil)
	if err := n.Notify([]model.Job{sampleJob("Job", "Test")}); err == nil {
		t.Fatal("expected error")
	}
	if c := calls.Load(); c != 2 {
		t.Errorf("expected 2 HTTP calls, got %d", c)
	}
}

func TestSlackNotifier_PayloadFormat(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := newTestSlack(srv, staticLink)
	job := model.Job{
		ID:          "456",
		CompanyName: "TestCo",
		Title:       "SRE",
		Location:    "NYC",
		SalaryMin:   120000,
		Currency:    "USD",
		Skills:      []string{"go", "terraform"},
		// PostedAt is nil, shown as "Just detected"
	}
	if err := n.Notify([]model.Job{job}); err != nil {
		t.Fatalf("Notify() = %v", err)
	}

	var payload slackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(payload.Blocks) != 6 {
		t.Fatalf("expected 6 blocks, got %d", len(payload.Blocks))
	}
	if payload.Blocks[0].Type != "header" {
		t.Errorf("block[0] type = %q, want header", payload.Blocks[0].Type)
	}
	if payload.Blocks[1].Type != "section" || len(payload.Blocks[1].Fields) != 2 {
		t.Errorf("block[1] not a 2-field section")
	}
	if got := payload.Blocks[2].Fields[0].Text; got != "*Posted:*\nJust detected" {
		t.Errorf("posted field = %q, want 'Just detected' for nil PostedAt", got)
	}
	if got := payload.Blocks[2].Fields[1].Text; got != "*Type:*\nn/a" {
		t.Errorf("type field = %q", got)
	}
	if got := payload.Blocks[3].Text.Text; got != "*Salary:* USD from 120,000\n*Skills:* go, terraform" {
		t.Errorf("details = %q", got)
	}
	if payload.Blocks[4].Type != "actions" || payload.Blocks[4].Elements[0].Style != "primary" {
		t.Errorf("block[4] not a primary button")
	}
	if payload.Blocks[5].Type != "divider" {
		t.Errorf("block[5] type = %q, want divider", payload.Blocks[5].Type)
	}
}

func TestSlackNotifier_NoLinkNoButton(t *testing.T) {
	n := NewSlackNotifier("https://hooks.slack.com/x", http.DefaultClient, nil, discardLogger())
	payload := n.buildPayload(sampleJob("SRE", "Acme"))
	for _, b := range payload.Blocks {
		if b.Type == "actions" {
			t.Fatal("no button expected without a link")
		}
	}
}
