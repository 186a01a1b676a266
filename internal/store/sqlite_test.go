package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMarkSeenThenHasSeen(t *testing.T) {
	s := newTestStore(t)

	if err := s.MarkSeen("job-123"); err != nil {
		t.Fatalf("MarkSeen: %v", err)
	}

	seen, err := s.HasSeen("job-123")
	if err != nil {
		t.Fatalf("HasSeen: %v", err)
	}
	if !seen {
		t.Error("expected HasSeen to return true after MarkSeen")
	}
}

func TestHasSeenUnknownReturnsFalse(t *testing.T) {
	s := newTestStore(t)

	seen, err := s.HasSeen("does-not-exist")
	if err != nil {
		t.Fatalf("HasSeen: %v", err)
	}
	if seen {
		t.Error("expected HasSeen to return false for unknown job ID")
	}
}

func TestMarkSeenIdempotent(t *testing.T) {
	s := newTestStore(t)

	if err := s.MarkSeen("job-456"); err != nil {
		t.Fatalf("first MarkSeen: %v", err)
	}
	if err := s.MarkSeen("job-456"); err != nil {
		t.Fatalf("second MarkSeen (duplicate): %v", err)
	}

	seen, err := s.HasSeen("job-456")
	if err != nil {
		t.Fatalf("HasSeen: %v", err)
	}
	if !seen {
		t.Error("expected HasSeen to return true after duplicate MarkSeen")
	}
}

func TestCleanupRemovesOldKeepsFresh(t *testing.T) {
	s := newTestStore(t)

	// Insert an "old" entry by writing directly with a past timestamp.
	_, err := s.db.Exec(
		"INSERT INTO seen_jobs (job_id, first_seen) VALUES (?, ?)",
		"old-job", time.Now().Add(-48*time.Hour),
	)
	if err != nil {
		t.Fatalf("inserting old job: %v", err)
	}

	// Insert a fresh entry via the normal API (timestamp = now).
	if err := s.MarkSeen("fresh-job"); err != nil {
		t.Fatalf("MarkSeen fresh: %v", err)
	}

	// Cleanup anything older than 24 hours.
	if err := s.Cleanup(24 * time.Hour); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}

	// Old job should be gone.
	seen, err := s.HasSeen("old-job")
	if err != nil {
		t.Fatalf("HasSeen old: %v", err)
	}
	if seen {
		t.Error("expected old job to be cleaned up")
	}

	// Fresh job should remain.
	seen, err = s.HasSeen("fresh-job")
	if err != nil {
		t.Fatalf("HasSeen fresh: %v", err)
	}
	if !seen {
		t.Error("expected fresh job to survive cleanup")
	}
}

func TestLocalStorage_SetGetRemove(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "accessToken"); err != nil || ok {
		t.Fatalf("Get on empty store = ok %v, err %v; want false, nil", ok, err)
	}

	if err := s.Set(ctx, "accessToken", "a1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, "accessToken", "a2"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}

	v, ok, err := s.Get(ctx, "accessToken")
	if err != nil || !ok {
		t.Fatalf("Get = ok %v, err %v", ok, err)
	}
	if v != "a2" {
		t.Errorf("value = %q, want a2", v)
	}

	if err := s.Remove(ctx, "accessToken", "missing"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "accessToken"); ok {
		t.Error("expected key to be removed")
	}
}

func TestLocalStorage_SurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "session.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	if err := s.Set(ctx, "user", `{"id":"u1"}`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	s.Close()

	reopened, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	v, ok, err := reopened.Get(ctx, "user")
	if err != nil || !ok || v != `{"id":"u1"}` {
		t.Fatalf("Get after reopen = %q, %v, %v", v, ok, err)
	}
}

func TestMemoryStorage(t *testing.T) {
	m := NewMemoryStorage()
	ctx := context.Background()

	_ = m.Set(ctx, "refreshToken", "r1")
	if v, ok, _ := m.Get(ctx, "refreshToken"); !ok || v != "r1" {
		t.Fatalf("Get = %q, %v", v, ok)
	}
	_ = m.Remove(ctx, "refreshToken")
	if _, ok, _ := m.Get(ctx, "refreshToken"); ok {
		t.Fatal("expected key to be removed")
	}
}

func TestIsEmpty(t *testing.T) {
	s := newTestStore(t)

	empty, err := s.IsEmpty()
	if err != nil || !empty {
		t.Fatalf("IsEmpty on new store = %v, %v", empty, err)
	}
	_ = s.MarkSeen("job-1")
	empty, err = s.IsEmpty()
	if err != nil || empty {
		t.Fatalf("IsEmpty after MarkSeen = %v, %v", empty, err)
	}
}
