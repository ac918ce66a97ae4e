package journal

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestRunLifecycle(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)

	run, err := j.BeginRun(ctx, Run{Folder: "/data/study", BaseURL: "https://example.org/api", User: "u", ProjectLabel: "study"})
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if run.ID == "" {
		t.Fatal("expected generated run id")
	}
	if run.Status != StatusRunning {
		t.Fatalf("status = %q, want %q", run.Status, StatusRunning)
	}

	entities := []Entity{
		{RunID: run.ID, Kind: "project", Label: "study", RemoteID: "p1"},
		{RunID: run.ID, Kind: "session", Label: "S1", RemoteID: "s1", ParentID: "p1", SubjectKey: "S1"},
		{RunID: run.ID, Kind: "acquisition", Label: "scan_01", RemoteID: "a1", ParentID: "s1", SubjectKey: "S1"},
	}
	for _, e := range entities {
		if err := j.Record(ctx, e); err != nil {
			t.Fatalf("Record %s: %v", e.Kind, err)
		}
	}
	if err := j.FinishRun(ctx, run.ID, nil); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	got, err := j.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Status != StatusSucceeded || got.ProjectID != "p1" || got.FinishedAt.IsZero() {
		t.Fatalf("unexpected run: %+v", got)
	}
	if got.Error != "" {
		t.Fatalf("expected no error, got %q", got.Error)
	}

	stored, err := j.Entities(ctx, run.ID)
	if err != nil {
		t.Fatalf("Entities: %v", err)
	}
	if len(stored) != len(entities) {
		t.Fatalf("entities = %d, want %d", len(stored), len(entities))
	}
	for i, e := range stored {
		if e.Kind != entities[i].Kind || e.RemoteID != entities[i].RemoteID || e.ParentID != entities[i].ParentID {
			t.Fatalf("entity %d = %+v, want %+v", i, e, entities[i])
		}
		if e.CreatedAt.IsZero() {
			t.Fatalf("entity %d missing created_at", i)
		}
	}
	if stored[0].ParentID != "" || stored[0].SubjectKey != "" {
		t.Fatalf("project entity should have no parent or subject: %+v", stored[0])
	}
}

func TestFinishRunFailure(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)

	run, err := j.BeginRun(ctx, Run{ID: "run-1", ProjectLabel: "study"})
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if run.ID != "run-1" {
		t.Fatalf("run id = %q, want caller-supplied id", run.ID)
	}
	if err := j.FinishRun(ctx, run.ID, errors.New("POST sessions returned 500 Internal Server Error")); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}
	got, err := j.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Status != StatusFailed {
		t.Fatalf("status = %q, want %q", got.Status, StatusFailed)
	}
	if got.Error != "POST sessions returned 500 Internal Server Error" {
		t.Fatalf("error = %q", got.Error)
	}
}

func TestFinishRunUnknown(t *testing.T) {
	j := openTestJournal(t)
	if err := j.FinishRun(context.Background(), "missing", nil); err == nil {
		t.Fatal("expected error for unknown run")
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		if _, err := j.BeginRun(ctx, Run{ID: id, StartedAt: base.Add(time.Duration(i) * time.Minute)}); err != nil {
			t.Fatalf("BeginRun %s: %v", id, err)
		}
	}

	runs, err := j.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "c" || runs[1].ID != "b" {
		t.Fatalf("unexpected runs: %+v", runs)
	}
	if !runs[0].StartedAt.Equal(base.Add(2 * time.Minute)) {
		t.Fatalf("started_at = %v", runs[0].StartedAt)
	}

	all, err := j.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("runs = %d, want 3", len(all))
	}
}

func TestListRunsOrdersWithinSecond(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	if _, err := j.BeginRun(ctx, Run{ID: "later", StartedAt: base.Add(100 * time.Millisecond)}); err != nil {
		t.Fatalf("BeginRun later: %v", err)
	}
	if _, err := j.BeginRun(ctx, Run{ID: "whole-second", StartedAt: base}); err != nil {
		t.Fatalf("BeginRun whole-second: %v", err)
	}

	runs, err := j.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "later" || runs[1].ID != "whole-second" {
		t.Fatalf("unexpected order: %+v", runs)
	}
	if !runs[1].StartedAt.Equal(base) {
		t.Fatalf("started_at = %v, want %v", runs[1].StartedAt, base)
	}
}

func TestOpenLocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	first, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer first.Close()

	if _, err := Open(context.Background(), path); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}

	reader, err := OpenReader(context.Background(), path)
	if err != nil {
		t.Fatalf("OpenReader while locked: %v", err)
	}
	_ = reader.Close()
}

func TestOpenReaderMissing(t *testing.T) {
	if _, err := OpenReader(context.Background(), filepath.Join(t.TempDir(), "none.db")); err == nil {
		t.Fatal("expected error for missing journal")
	}
}

func TestReopenKeepsRuns(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := j.BeginRun(ctx, Run{ID: "kept"}); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	j, err = Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer j.Close()
	if _, err := j.GetRun(ctx, "kept"); err != nil {
		t.Fatalf("GetRun after reopen: %v", err)
	}
}

func TestSchemaMismatch(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_ = j.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = db.Close()

	if _, err := Open(ctx, path); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}
