package worker

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"glptrack/internal/amqp"
	"glptrack/internal/core"
	"glptrack/internal/storage"
)

type fakeSheet struct {
	injections  []core.InjectionRecord
	sideEffects []core.SideEffectRecord
	failNext    bool
}

func (f *fakeSheet) AppendInjection(ctx context.Context, r core.InjectionRecord) (string, error) {
	if f.failNext {
		f.failNext = false
		return "", errors.New("sheets down")
	}
	f.injections = append(f.injections, r)
	return fmt.Sprintf("injections!A%d", len(f.injections)+1), nil
}

func (f *fakeSheet) AppendSideEffect(ctx context.Context, r core.SideEffectRecord) (string, error) {
	if f.failNext {
		f.failNext = false
		return "", errors.New("sheets down")
	}
	f.sideEffects = append(f.sideEffects, r)
	return fmt.Sprintf("side_effects!A%d", len(f.sideEffects)+1), nil
}

func newTestRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testInjection(t *testing.T) core.InjectionRecord {
	t.Helper()
	dosage, err := core.ParseDecimal("0.25")
	if err != nil {
		t.Fatalf("ParseDecimal: %v", err)
	}
	weight, err := core.ParseDecimal("180")
	if err != nil {
		t.Fatalf("ParseDecimal: %v", err)
	}
	return core.InjectionRecord{
		Date:   core.NewDate(2024, 1, 1),
		Dosage: dosage,
		Weight: weight,
	}
}

func TestHandleSyncMessage_Injection(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	sheet := &fakeSheet{}
	w := NewSyncWorker(repo, sheet, sheet, 10)

	ref, err := repo.AppendInjection(ctx, testInjection(t))
	if err != nil {
		t.Fatalf("AppendInjection: %v", err)
	}

	msg := amqp.NewRecordSyncMessage(storage.TableInjections, 1)
	if err := w.HandleSyncMessage(ctx, msg); err != nil {
		t.Fatalf("HandleSyncMessage: %v", err)
	}
	if len(sheet.injections) != 1 {
		t.Fatalf("expected 1 synced injection, got %d (ref=%s)", len(sheet.injections), ref)
	}

	pending, err := repo.GetPendingSyncRecords(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingSyncRecords: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending records after sync, got %d", len(pending))
	}
}

func TestHandleSyncMessage_UnknownTable(t *testing.T) {
	repo := newTestRepo(t)
	sheet := &fakeSheet{}
	w := NewSyncWorker(repo, sheet, sheet, 10)

	msg := amqp.NewRecordSyncMessage("nope", 1)
	if err := w.HandleSyncMessage(context.Background(), msg); err == nil {
		t.Fatalf("expected error for unknown table")
	}
}

func TestProcessPendingRecords(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	sheet := &fakeSheet{}
	w := NewSyncWorker(repo, sheet, sheet, 10)

	if _, err := repo.AppendInjection(ctx, testInjection(t)); err != nil {
		t.Fatalf("AppendInjection: %v", err)
	}
	if _, err := repo.AppendSideEffect(ctx, core.SideEffectRecord{
		Date:        core.NewDate(2024, 1, 2),
		Description: "mild nausea",
		Severity:    "mild",
	}); err != nil {
		t.Fatalf("AppendSideEffect: %v", err)
	}

	if err := w.ProcessPendingRecords(ctx); err != nil {
		t.Fatalf("ProcessPendingRecords: %v", err)
	}
	if len(sheet.injections) != 1 || len(sheet.sideEffects) != 1 {
		t.Fatalf("expected both records synced, got %d injections %d side effects",
			len(sheet.injections), len(sheet.sideEffects))
	}

	pending, err := repo.GetPendingSyncRecords(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingSyncRecords: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending records, got %d", len(pending))
	}
}

func TestSyncFailureMarksError(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	sheet := &fakeSheet{failNext: true}
	w := NewSyncWorker(repo, sheet, sheet, 10)

	if _, err := repo.AppendInjection(ctx, testInjection(t)); err != nil {
		t.Fatalf("AppendInjection: %v", err)
	}

	msg := amqp.NewRecordSyncMessage(storage.TableInjections, 1)
	if err := w.HandleSyncMessage(ctx, msg); err == nil {
		t.Fatalf("expected error when sheet append fails")
	}

	// Errored records leave the pending set until manually retried.
	pending, err := repo.GetPendingSyncRecords(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingSyncRecords: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected record marked errored and out of pending, got %d", len(pending))
	}
}

func TestStartupSyncCheck(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	sheet := &fakeSheet{}
	w := NewSyncWorker(repo, sheet, sheet, 2)

	for i := 0; i < 3; i++ {
		if _, err := repo.AppendInjection(ctx, testInjection(t)); err != nil {
			t.Fatalf("AppendInjection: %v", err)
		}
	}

	if err := w.StartupSyncCheck(ctx); err != nil {
		t.Fatalf("StartupSyncCheck: %v", err)
	}
	if len(sheet.injections) != 3 {
		t.Fatalf("expected all 3 injections synced, got %d", len(sheet.injections))
	}
}
