package swr

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newCache(maxAge time.Duration) (*Cache, *clock) {
	clk := &clock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := New(maxAge, slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.now = clk.now
	return c, clk
}

func counter(calls *atomic.Int32, value string) func(context.Context) (string, error) {
	return func(context.Context) (string, error) {
		n := calls.Add(1)
		return value + string(rune('0'+n)), nil
	}
}

func TestGet_ServesFreshValue(t *testing.T) {
	c, clk := newCache(30 * time.Second)
	var calls atomic.Int32
	ctx := context.Background()

	v, err := Get(ctx, c, "jobs?page=1", counter(&calls, "v"))
	if err != nil || v != "v1" {
		t.Fatalf("Get = %q, %v", v, err)
	}
	clk.advance(10 * time.Second)
	if v, _ := Get(ctx, c, "jobs?page=1", counter(&calls, "v")); v != "v1" {
		t.Errorf("fresh Get = %q, want cached v1", v)
	}
	clk.advance(30 * time.Second)
	if v, _ := Get(ctx, c, "jobs?page=1", counter(&calls, "v")); v != "v2" {
		t.Errorf("stale Get = %q, want refetched v2", v)
	}
	if calls.Load() != 2 {
		t.Errorf("fetches = %d, want 2", calls.Load())
	}
}

func TestGet_ErrorNotCached(t *testing.T) {
	c, _ := newCache(time.Minute)
	boom := errors.New("boom")

	_, err := Get(context.Background(), c, "k", func(context.Context) (int, error) { return 0, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	v, err := Get(context.Background(), c, "k", func(context.Context) (int, error) { return 7, nil })
	if err != nil || v != 7 {
		t.Errorf("Get after error = %d, %v", v, err)
	}
}

func TestGetStale_ReturnsStaleAndRevalidates(t *testing.T) {
	c, clk := newCache(time.Second)
	ctx := context.Background()
	c.Mutate("events", "old")
	clk.advance(2 * time.Second)

	done := make(chan struct{})
	v, stale, err := GetStale(ctx, c, "events", func(context.Context) (string, error) {
		defer close(done)
		return "new", nil
	})
	if err != nil || v != "old" || !stale {
		t.Fatalf("GetStale = %q, stale=%v, err=%v; want old, true, nil", v, stale, err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("background revalidation did not run")
	}
	// The write happens right after fetch returns.
	deadline := time.Now().Add(time.Second)
	for {
		if v, _, _ := lookup[string](c, "events"); v == "new" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("revalidated value never stored")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestGetStale_EmptyFetches(t *testing.T) {
	c, _ := newCache(time.Minute)
	v, stale, err := GetStale(context.Background(), c, "k", func(context.Context) (string, error) { return "x", nil })
	if err != nil || v != "x" || stale {
		t.Errorf("GetStale = %q, %v, %v", v, stale, err)
	}
}

func TestGet_ConcurrentCallsShareFetch(t *testing.T) {
	c, _ := newCache(time.Minute)
	var calls atomic.Int32
	release := make(chan struct{})
	fetch := func(context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "v", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if v, err := Get(context.Background(), c, "k", fetch); err != nil || v != "v" {
				t.Errorf("Get = %q, %v", v, err)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("fetches = %d, want 1", calls.Load())
	}
}

func TestInvalidate(t *testing.T) {
	c, _ := newCache(time.Hour)
	c.Mutate("jobs?page=1", 1)
	c.Mutate("jobs?page=2", 2)
	c.Mutate("events", 3)

	c.Invalidate("jobs")

	if _, _, ok := lookup[int](c, "jobs?page=1"); ok {
		t.Error("jobs?page=1 survived Invalidate(jobs)")
	}
	if _, _, ok := lookup[int](c, "jobs?page=2"); ok {
		t.Error("jobs?page=2 survived Invalidate(jobs)")
	}
	if v, _, ok := lookup[int](c, "events"); !ok || v != 3 {
		t.Error("events dropped by Invalidate(jobs)")
	}

	c.Invalidate("")
	if _, _, ok := lookup[int](c, "events"); ok {
		t.Error("Invalidate(\"\") left entries")
	}
}
