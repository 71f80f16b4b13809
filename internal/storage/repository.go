package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"glptrack/internal/core"
	"glptrack/internal/store"

	_ "modernc.org/sqlite"
)

// SQLiteRepository implements the record store ports on a local SQLite
// database. Rows additionally carry sync bookkeeping consumed by the
// sheet-sync worker.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("%w: create db directory: %v", store.ErrUnavailable, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite database: %v", store.ErrUnavailable, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping database: %v", store.ErrUnavailable, err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, queries: New(db)}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// AppendInjection implements store.InjectionAppender.
func (r *SQLiteRepository) AppendInjection(ctx context.Context, rec core.InjectionRecord) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", err
	}
	id, err := r.queries.CreateInjection(ctx, CreateInjectionParams{
		Date:             rec.Date.String(),
		Time:             rec.Time.String(),
		DosageHundredths: rec.Dosage.Hundredths,
		WeightHundredths: rec.Weight.Hundredths,
		Notes:            rec.Notes,
	})
	if err != nil {
		return "", fmt.Errorf("create injection: %w", err)
	}

	slog.InfoContext(ctx, "Injection saved to SQLite",
		"id", id, "date", rec.Date.String(), "dosage_mg", rec.Dosage.String())

	return strconv.FormatInt(id, 10), nil
}

// AppendSideEffect implements store.SideEffectAppender.
func (r *SQLiteRepository) AppendSideEffect(ctx context.Context, rec core.SideEffectRecord) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", err
	}
	id, err := r.queries.CreateSideEffect(ctx, CreateSideEffectParams{
		Date:        rec.Date.String(),
		Description: rec.Description,
		Severity:    rec.Severity,
	})
	if err != nil {
		return "", fmt.Errorf("create side effect: %w", err)
	}

	slog.InfoContext(ctx, "Side effect saved to SQLite", "id", id, "date", rec.Date.String())

	return strconv.FormatInt(id, 10), nil
}

// ListInjections implements store.InjectionLister.
func (r *SQLiteRepository) ListInjections(ctx context.Context) ([]core.InjectionRecord, error) {
	rows, err := r.queries.ListInjections(ctx)
	if err != nil {
		return nil, fmt.Errorf("list injections: %w", err)
	}
	out := make([]core.InjectionRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := injectionFromRow(row)
		if err != nil {
			slog.WarnContext(ctx, "Skipping unreadable injection row", "id", row.ID, "error", err)
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// ListSideEffects implements store.SideEffectLister.
func (r *SQLiteRepository) ListSideEffects(ctx context.Context) ([]core.SideEffectRecord, error) {
	rows, err := r.queries.ListSideEffects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list side effects: %w", err)
	}
	out := make([]core.SideEffectRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := sideEffectFromRow(row)
		if err != nil {
			slog.WarnContext(ctx, "Skipping unreadable side-effect row", "id", row.ID, "error", err)
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// GetInjectionRecord returns one injection by ID, for the sync worker.
func (r *SQLiteRepository) GetInjectionRecord(ctx context.Context, id int64) (core.InjectionRecord, error) {
	row, err := r.queries.GetInjection(ctx, id)
	if err != nil {
		return core.InjectionRecord{}, fmt.Errorf("get injection %d: %w", id, err)
	}
	return injectionFromRow(row)
}

// GetSideEffectRecord returns one side effect by ID, for the sync worker.
func (r *SQLiteRepository) GetSideEffectRecord(ctx context.Context, id int64) (core.SideEffectRecord, error) {
	row, err := r.queries.GetSideEffect(ctx, id)
	if err != nil {
		return core.SideEffectRecord{}, fmt.Errorf("get side effect %d: %w", id, err)
	}
	return sideEffectFromRow(row)
}

// PendingRecord is the minimal row identity the sync worker needs.
type PendingRecord struct {
	Table string
	ID    int64
}

// GetPendingSyncRecords returns rows not yet mirrored to the sheet, across
// both tables, up to limit each.
func (r *SQLiteRepository) GetPendingSyncRecords(ctx context.Context, limit int) ([]PendingRecord, error) {
	var out []PendingRecord

	injs, err := r.queries.GetPendingSyncInjections(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("get pending injections: %w", err)
	}
	for _, i := range injs {
		out = append(out, PendingRecord{Table: TableInjections, ID: i.ID})
	}

	ses, err := r.queries.GetPendingSyncSideEffects(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("get pending side effects: %w", err)
	}
	for _, s := range ses {
		out = append(out, PendingRecord{Table: TableSideEffects, ID: s.ID})
	}

	return out, nil
}

// Table names shared with the sync messages.
const (
	TableInjections  = "injections"
	TableSideEffects = "side_effects"
)

// MarkSynced marks a record as successfully mirrored to the sheet.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, table string, id int64) error {
	var err error
	switch table {
	case TableInjections:
		err = r.queries.MarkInjectionSynced(ctx, id)
	case TableSideEffects:
		err = r.queries.MarkSideEffectSynced(ctx, id)
	default:
		return fmt.Errorf("unknown table: %s", table)
	}
	if err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}
	slog.InfoContext(ctx, "Record marked as synced", "table", table, "id", id)
	return nil
}

// MarkSyncError flags a record whose sheet mirror failed.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, table string, id int64) error {
	var err error
	switch table {
	case TableInjections:
		err = r.queries.MarkInjectionSyncError(ctx, id)
	case TableSideEffects:
		err = r.queries.MarkSideEffectSyncError(ctx, id)
	default:
		return fmt.Errorf("unknown table: %s", table)
	}
	if err != nil {
		return fmt.Errorf("mark sync error: %w", err)
	}
	slog.WarnContext(ctx, "Record marked with sync error", "table", table, "id", id)
	return nil
}

func injectionFromRow(row Injection) (core.InjectionRecord, error) {
	date, err := core.ParseDate(row.Date)
	if err != nil {
		return core.InjectionRecord{}, fmt.Errorf("row %d: %w", row.ID, err)
	}
	tod, err := core.ParseTimeOfDay(row.Time)
	if err != nil {
		tod = core.TimeOfDay{}
	}
	return core.InjectionRecord{
		Date:   date,
		Time:   tod,
		Dosage: core.Decimal{Hundredths: row.DosageHundredths},
		Weight: core.Decimal{Hundredths: row.WeightHundredths},
		Notes:  row.Notes,
	}, nil
}

func sideEffectFromRow(row SideEffect) (core.SideEffectRecord, error) {
	date, err := core.ParseDate(row.Date)
	if err != nil {
		return core.SideEffectRecord{}, fmt.Errorf("row %d: %w", row.ID, err)
	}
	return core.SideEffectRecord{
		Date:        date,
		Description: row.Description,
		Severity:    row.Severity,
	}, nil
}
