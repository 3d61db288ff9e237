package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAppendAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	runs := []Run{
		{ID: "run-1", StartedAt: base, FinishedAt: base.Add(time.Second), Status: "DONE", Attempts: 1, SystemName: "Cruise"},
		{ID: "run-2", StartedAt: base.Add(time.Minute), FinishedAt: base.Add(2 * time.Minute), Status: "FAILED", Attempts: 3, SystemName: "", Error: "all 3 attempts failed"},
	}
	for _, run := range runs {
		if err := s.Append(ctx, run); err != nil {
			t.Fatalf("append %s: %v", run.ID, err)
		}
	}

	got, err := s.List(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(got))
	}

	// Newest first.
	if got[0].ID != "run-2" || got[1].ID != "run-1" {
		t.Errorf("wrong order: %s, %s", got[0].ID, got[1].ID)
	}
	if got[0].Error != "all 3 attempts failed" {
		t.Errorf("error lost: %q", got[0].Error)
	}
	if !got[1].StartedAt.Equal(base) {
		t.Errorf("timestamp mangled: %v", got[1].StartedAt)
	}
	if got[1].Attempts != 1 || got[1].SystemName != "Cruise" {
		t.Errorf("fields lost: %+v", got[1])
	}
}

func TestListLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		err := s.Append(ctx, Run{
			ID:        string(rune('a' + i)),
			StartedAt: base.Add(time.Duration(i) * time.Second),
			Status:    "DONE",
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.List(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Errorf("expected 3 runs, got %d", len(got))
	}
}

func TestListEmpty(t *testing.T) {
	s := openTestStore(t)
	got, err := s.List(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected no runs, got %d", len(got))
	}
}

func TestDuplicateIDRejected(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run := Run{ID: "dup", StartedAt: time.Now(), Status: "DONE"}
	if err := s.Append(ctx, run); err != nil {
		t.Fatal(err)
	}
	if err := s.Append(ctx, run); err == nil {
		t.Error("expected primary-key violation for duplicate run ID")
	}
}

func TestReopenPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Append(context.Background(), Run{ID: "persisted", StartedAt: time.Now(), Status: "DONE"}); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()

	got, err := s2.List(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "persisted" {
		t.Errorf("run lost across reopen: %v", got)
	}
}
