package storage

import (
	"context"
	"path/filepath"
	"testing"

	"glptrack/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "glptrack.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestAppendAndListInjections(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	got, err := repo.ListInjections(ctx)
	if err != nil || len(got) != 0 {
		t.Fatalf("fresh table should be empty: %v err=%v", got, err)
	}

	rec := core.InjectionRecord{
		Date:   core.NewDate(2024, 1, 1),
		Time:   core.NewTimeOfDay(8, 0),
		Dosage: core.Decimal{Hundredths: 25},
		Weight: core.Decimal{Hundredths: 18000},
		Notes:  "first dose",
	}
	ref, err := repo.AppendInjection(ctx, rec)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if ref != "1" {
		t.Fatalf("unexpected ref %q", ref)
	}

	got, err = repo.ListInjections(ctx)
	if err != nil || len(got) != 1 {
		t.Fatalf("list: %v err=%v", got, err)
	}
	if got[0] != rec {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got[0], rec)
	}
}

func TestAppendRejectsInvalid(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	bad := core.InjectionRecord{Date: core.NewDate(2024, 1, 1)} // no dosage/weight
	if _, err := repo.AppendInjection(ctx, bad); err == nil {
		t.Fatalf("expected validation error")
	}
	got, _ := repo.ListInjections(ctx)
	if len(got) != 0 {
		t.Fatalf("rejected append must not insert: %v", got)
	}
}

func TestPendingSyncLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.AppendInjection(ctx, core.InjectionRecord{
		Date:   core.NewDate(2024, 1, 1),
		Dosage: core.Decimal{Hundredths: 25},
		Weight: core.Decimal{Hundredths: 18000},
	}); err != nil {
		t.Fatalf("append injection: %v", err)
	}
	if _, err := repo.AppendSideEffect(ctx, core.SideEffectRecord{
		Date:        core.NewDate(2024, 1, 2),
		Description: "nausea",
	}); err != nil {
		t.Fatalf("append side effect: %v", err)
	}

	pending, err := repo.GetPendingSyncRecords(ctx, 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending, got %d", len(pending))
	}

	if err := repo.MarkSynced(ctx, TableInjections, 1); err != nil {
		t.Fatalf("mark synced: %v", err)
	}
	if err := repo.MarkSyncError(ctx, TableSideEffects, 1); err != nil {
		t.Fatalf("mark sync error: %v", err)
	}

	pending, err = repo.GetPendingSyncRecords(ctx, 10)
	if err != nil {
		t.Fatalf("pending after marks: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending after marks, got %v", pending)
	}
}

func TestGetRecordForWorker(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rec := core.SideEffectRecord{
		Date:        core.NewDate(2024, 1, 2),
		Description: "nausea",
		Severity:    "mild",
	}
	if _, err := repo.AppendSideEffect(ctx, rec); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := repo.GetSideEffectRecord(ctx, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != rec {
		t.Fatalf("mismatch:\n got %+v\nwant %+v", got, rec)
	}

	if _, err := repo.GetSideEffectRecord(ctx, 99); err == nil {
		t.Fatalf("expected error for missing row")
	}
}
