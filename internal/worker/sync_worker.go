package worker

import (
	"context"
	"fmt"
	"log/slog"

	"glptrack/internal/amqp"
	"glptrack/internal/storage"
	"glptrack/internal/store"
)

// SyncWorker mirrors records from SQLite to Google Sheets.
type SyncWorker struct {
	storage     *storage.SQLiteRepository
	injections  store.InjectionAppender
	sideEffects store.SideEffectAppender
	batchSize   int
}

func NewSyncWorker(storage *storage.SQLiteRepository, injections store.InjectionAppender, sideEffects store.SideEffectAppender, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:     storage,
		injections:  injections,
		sideEffects: sideEffects,
		batchSize:   batchSize,
	}
}

// HandleSyncMessage processes a single record sync message from AMQP
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.RecordSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"table", msg.Table,
		"id", msg.ID)

	return w.syncRecord(ctx, storage.PendingRecord{Table: msg.Table, ID: msg.ID})
}

// ProcessPendingRecords processes any records that haven't been synced yet.
// This is a backup mechanism in case AMQP messages are lost.
func (w *SyncWorker) ProcessPendingRecords(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncRecords(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending records: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending records", "count", len(pending))

	for _, p := range pending {
		if err := w.syncRecord(ctx, p); err != nil {
			slog.ErrorContext(ctx, "Failed to sync record",
				"table", p.Table, "id", p.ID, "error", err)
			continue
		}
	}

	return nil
}

// StartupSyncCheck verifies and syncs any pending records at worker startup.
// This is useful to recover from missed AMQP messages or worker downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	// Get a larger batch for startup check
	pending, err := w.storage.GetPendingSyncRecords(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending records for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending records found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending records on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0

	for _, p := range pending {
		if err := w.syncRecord(ctx, p); err != nil {
			slog.ErrorContext(ctx, "Failed to sync record during startup",
				"table", p.Table, "id", p.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", successCount,
		"errors", errorCount)

	return nil
}

func (w *SyncWorker) syncRecord(ctx context.Context, p storage.PendingRecord) error {
	var ref string
	var err error

	switch p.Table {
	case storage.TableInjections:
		record, getErr := w.storage.GetInjectionRecord(ctx, p.ID)
		if getErr != nil {
			w.markError(ctx, p)
			return fmt.Errorf("get injection record: %w", getErr)
		}
		ref, err = w.injections.AppendInjection(ctx, record)
	case storage.TableSideEffects:
		record, getErr := w.storage.GetSideEffectRecord(ctx, p.ID)
		if getErr != nil {
			w.markError(ctx, p)
			return fmt.Errorf("get side effect record: %w", getErr)
		}
		ref, err = w.sideEffects.AppendSideEffect(ctx, record)
	default:
		return fmt.Errorf("unknown sync table: %s", p.Table)
	}

	if err != nil {
		w.markError(ctx, p)
		return fmt.Errorf("append to sheets: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, p.Table, p.ID); err != nil {
		// Don't fail here, the sync actually worked
		slog.ErrorContext(ctx, "Failed to mark as synced",
			"table", p.Table, "id", p.ID, "error", err)
	}

	slog.InfoContext(ctx, "Successfully synced record",
		"table", p.Table,
		"id", p.ID,
		"sheets_ref", ref)

	return nil
}

func (w *SyncWorker) markError(ctx context.Context, p storage.PendingRecord) {
	if err := w.storage.MarkSyncError(ctx, p.Table, p.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to mark sync error",
			"table", p.Table, "id", p.ID, "error", err)
	}
}
