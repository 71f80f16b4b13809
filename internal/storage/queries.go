package storage

import (
	"context"
	"database/sql"
	"time"
)

// Queries wraps the raw SQL statements against the record tables.
type Queries struct {
	db *sql.DB
}

func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

type Injection struct {
	ID               int64
	Date             string
	Time             string
	DosageHundredths int64
	WeightHundredths int64
	Notes            string
	Synced           bool
	SyncError        bool
	CreatedAt        time.Time
}

type SideEffect struct {
	ID          int64
	Date        string
	Description string
	Severity    string
	Synced      bool
	SyncError   bool
	CreatedAt   time.Time
}

type CreateInjectionParams struct {
	Date             string
	Time             string
	DosageHundredths int64
	WeightHundredths int64
	Notes            string
}

func (q *Queries) CreateInjection(ctx context.Context, p CreateInjectionParams) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO injections (date, time, dosage_hundredths, weight_hundredths, notes)
		 VALUES (?, ?, ?, ?, ?)`,
		p.Date, p.Time, p.DosageHundredths, p.WeightHundredths, p.Notes)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (q *Queries) GetInjection(ctx context.Context, id int64) (Injection, error) {
	var i Injection
	err := q.db.QueryRowContext(ctx,
		`SELECT id, date, time, dosage_hundredths, weight_hundredths, notes, synced, sync_error, created_at
		 FROM injections WHERE id = ?`, id).
		Scan(&i.ID, &i.Date, &i.Time, &i.DosageHundredths, &i.WeightHundredths,
			&i.Notes, &i.Synced, &i.SyncError, &i.CreatedAt)
	return i, err
}

// ListInjections returns every row in insertion order.
func (q *Queries) ListInjections(ctx context.Context) ([]Injection, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, date, time, dosage_hundredths, weight_hundredths, notes, synced, sync_error, created_at
		 FROM injections ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Injection
	for rows.Next() {
		var i Injection
		if err := rows.Scan(&i.ID, &i.Date, &i.Time, &i.DosageHundredths, &i.WeightHundredths,
			&i.Notes, &i.Synced, &i.SyncError, &i.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (q *Queries) GetPendingSyncInjections(ctx context.Context, limit int64) ([]Injection, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, date, time, dosage_hundredths, weight_hundredths, notes, synced, sync_error, created_at
		 FROM injections WHERE synced = 0 AND sync_error = 0 ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Injection
	for rows.Next() {
		var i Injection
		if err := rows.Scan(&i.ID, &i.Date, &i.Time, &i.DosageHundredths, &i.WeightHundredths,
			&i.Notes, &i.Synced, &i.SyncError, &i.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (q *Queries) MarkInjectionSynced(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE injections SET synced = 1, sync_error = 0 WHERE id = ?`, id)
	return err
}

func (q *Queries) MarkInjectionSyncError(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE injections SET sync_error = 1 WHERE id = ?`, id)
	return err
}

type CreateSideEffectParams struct {
	Date        string
	Description string
	Severity    string
}

func (q *Queries) CreateSideEffect(ctx context.Context, p CreateSideEffectParams) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO side_effects (date, description, severity) VALUES (?, ?, ?)`,
		p.Date, p.Description, p.Severity)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (q *Queries) GetSideEffect(ctx context.Context, id int64) (SideEffect, error) {
	var s SideEffect
	err := q.db.QueryRowContext(ctx,
		`SELECT id, date, description, severity, synced, sync_error, created_at
		 FROM side_effects WHERE id = ?`, id).
		Scan(&s.ID, &s.Date, &s.Description, &s.Severity, &s.Synced, &s.SyncError, &s.CreatedAt)
	return s, err
}

func (q *Queries) ListSideEffects(ctx context.Context) ([]SideEffect, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, date, description, severity, synced, sync_error, created_at
		 FROM side_effects ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SideEffect
	for rows.Next() {
		var s SideEffect
		if err := rows.Scan(&s.ID, &s.Date, &s.Description, &s.Severity,
			&s.Synced, &s.SyncError, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (q *Queries) GetPendingSyncSideEffects(ctx context.Context, limit int64) ([]SideEffect, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, date, description, severity, synced, sync_error, created_at
		 FROM side_effects WHERE synced = 0 AND sync_error = 0 ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SideEffect
	for rows.Next() {
		var s SideEffect
		if err := rows.Scan(&s.ID, &s.Date, &s.Description, &s.Severity,
			&s.Synced, &s.SyncError, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (q *Queries) MarkSideEffectSynced(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE side_effects SET synced = 1, sync_error = 0 WHERE id = ?`, id)
	return err
}

func (q *Queries) MarkSideEffectSyncError(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE side_effects SET sync_error = 1 WHERE id = ?`, id)
	return err
}
