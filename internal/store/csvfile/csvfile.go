// Package csvfile is the default record backend: one CSV file per table
// under a data directory, created with a header row on first append and only
// ever appended to afterwards.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"glptrack/internal/core"
	"glptrack/internal/store"
)

const (
	injectionsFile  = "injections.csv"
	sideEffectsFile = "side_effects.csv"
)

var (
	injectionHeader  = []string{"date", "time", "dosage", "weight", "notes"}
	sideEffectHeader = []string{"date", "description", "severity"}
)

// Store reads and writes the two record tables. The mutex only guards
// against overlapping appends from concurrent requests in this process;
// multi-writer access across processes is out of scope.
type Store struct {
	mu  sync.Mutex
	dir string
}

func New(dir string) *Store {
	return &Store{dir: dir}
}

// AppendInjection implements store.InjectionAppender.
func (s *Store) AppendInjection(ctx context.Context, r core.InjectionRecord) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	row := []string{r.Date.String(), r.Time.String(), r.Dosage.String(), r.Weight.String(), r.Notes}
	n, err := s.appendRow(injectionsFile, injectionHeader, row)
	if err != nil {
		return "", err
	}
	slog.InfoContext(ctx, "Injection appended",
		"file", injectionsFile, "row", n, "date", r.Date.String(), "dosage_mg", r.Dosage.String())
	return fmt.Sprintf("%s:%d", injectionsFile, n), nil
}

// AppendSideEffect implements store.SideEffectAppender.
func (s *Store) AppendSideEffect(ctx context.Context, r core.SideEffectRecord) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	row := []string{r.Date.String(), r.Description, r.Severity}
	n, err := s.appendRow(sideEffectsFile, sideEffectHeader, row)
	if err != nil {
		return "", err
	}
	slog.InfoContext(ctx, "Side effect appended",
		"file", sideEffectsFile, "row", n, "date", r.Date.String())
	return fmt.Sprintf("%s:%d", sideEffectsFile, n), nil
}

// ListInjections implements store.InjectionLister. A missing table is an
// empty slice, not an error. Rows that fail to parse are skipped.
func (s *Store) ListInjections(ctx context.Context) ([]core.InjectionRecord, error) {
	rows, err := s.readRows(injectionsFile)
	if err != nil {
		return nil, err
	}
	var out []core.InjectionRecord
	for _, cols := range rows {
		if len(cols) < 4 {
			continue
		}
		date, err := core.ParseDate(cols[0])
		if err != nil {
			continue
		}
		tod, err := core.ParseTimeOfDay(cols[1])
		if err != nil {
			tod = core.TimeOfDay{}
		}
		dosage, err := core.ParseDecimal(cols[2])
		if err != nil {
			continue
		}
		weight, err := core.ParseDecimal(cols[3])
		if err != nil {
			continue
		}
		notes := ""
		if len(cols) >= 5 {
			notes = cols[4]
		}
		out = append(out, core.InjectionRecord{
			Date: date, Time: tod, Dosage: dosage, Weight: weight, Notes: notes,
		})
	}
	return out, nil
}

// ListSideEffects implements store.SideEffectLister.
func (s *Store) ListSideEffects(ctx context.Context) ([]core.SideEffectRecord, error) {
	rows, err := s.readRows(sideEffectsFile)
	if err != nil {
		return nil, err
	}
	var out []core.SideEffectRecord
	for _, cols := range rows {
		if len(cols) < 2 {
			continue
		}
		date, err := core.ParseDate(cols[0])
		if err != nil {
			continue
		}
		severity := ""
		if len(cols) >= 3 {
			severity = cols[2]
		}
		out = append(out, core.SideEffectRecord{Date: date, Description: cols[1], Severity: severity})
	}
	return out, nil
}

// appendRow writes one row, creating the file with its header first when it
// does not exist yet. Returns the 1-based data row number of the new row.
func (s *Store) appendRow(name string, header, row []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return 0, fmt.Errorf("%w: create data directory %s: %v", store.ErrUnavailable, s.dir, err)
	}
	path := filepath.Join(s.dir, name)

	existing, err := s.countDataRows(path)
	if err != nil {
		return 0, err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("%w: open %s: %v", store.ErrUnavailable, name, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if existing < 0 {
		if err := w.Write(header); err != nil {
			return 0, fmt.Errorf("write header to %s: %w", name, err)
		}
		existing = 0
	}
	if err := w.Write(row); err != nil {
		return 0, fmt.Errorf("write row to %s: %w", name, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, fmt.Errorf("flush %s: %w", name, err)
	}
	return existing + 1, nil
}

// countDataRows returns the number of data rows in the file, or -1 when the
// file does not exist yet.
func (s *Store) countDataRows(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return -1, nil
		}
		return 0, fmt.Errorf("%w: open %s: %v", store.ErrUnavailable, filepath.Base(path), err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	n := 0
	for {
		_, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed line; csv.Reader still advances, keep counting.
			continue
		}
		n++
	}
	if n == 0 {
		// Empty file: treat like a fresh table so the header gets written.
		return -1, nil
	}
	return n - 1, nil
}

// readRows returns every data row of the table, skipping the header.
func (s *Store) readRows(name string) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: open %s: %v", store.ErrUnavailable, name, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	var rows [][]string
	first := true
	for {
		cols, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		if first {
			first = false
			continue
		}
		rows = append(rows, cols)
	}
	return rows, nil
}
