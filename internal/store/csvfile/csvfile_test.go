package csvfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"glptrack/internal/core"
)

func TestListOnMissingTablesIsEmpty(t *testing.T) {
	s := New(t.TempDir())
	inj, err := s.ListInjections(context.Background())
	if err != nil {
		t.Fatalf("list injections: %v", err)
	}
	if len(inj) != 0 {
		t.Fatalf("expected empty, got %v", inj)
	}
	se, err := s.ListSideEffects(context.Background())
	if err != nil || len(se) != 0 {
		t.Fatalf("expected empty side effects, got %v err=%v", se, err)
	}
}

func TestAppendThenLoadReturnsAppendedRecord(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	first := core.InjectionRecord{
		Date:   core.NewDate(2024, 1, 1),
		Time:   core.NewTimeOfDay(8, 0),
		Dosage: core.Decimal{Hundredths: 25},
		Weight: core.Decimal{Hundredths: 18000},
	}
	ref, err := s.AppendInjection(context.Background(), first)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if ref != "injections.csv:1" {
		t.Fatalf("unexpected ref %q", ref)
	}

	second := core.InjectionRecord{
		Date:   core.NewDate(2024, 1, 8),
		Dosage: core.Decimal{Hundredths: 50},
		Weight: core.Decimal{Hundredths: 17850},
		Notes:  "slight headache",
	}
	if _, err := s.AppendInjection(context.Background(), second); err != nil {
		t.Fatalf("append second: %v", err)
	}

	got, err := s.ListInjections(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	last := got[len(got)-1]
	if last != second {
		t.Fatalf("last row mismatch:\n got %+v\nwant %+v", last, second)
	}

	// Header written exactly once, rows in entry order.
	raw, err := os.ReadFile(filepath.Join(dir, "injections.csv"))
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 3 || lines[0] != "date,time,dosage,weight,notes" {
		t.Fatalf("unexpected file contents:\n%s", raw)
	}
}

func TestInvalidRecordNotAppended(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	valid := core.InjectionRecord{
		Date:   core.NewDate(2024, 1, 1),
		Dosage: core.Decimal{Hundredths: 25},
		Weight: core.Decimal{Hundredths: 18000},
	}
	if _, err := s.AppendInjection(context.Background(), valid); err != nil {
		t.Fatalf("append: %v", err)
	}

	invalid := valid
	invalid.Dosage = core.Decimal{} // missing dosage
	if _, err := s.AppendInjection(context.Background(), invalid); err == nil {
		t.Fatalf("expected validation error")
	}

	got, err := s.ListInjections(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("table length changed after rejected append: %d", len(got))
	}
}

func TestSideEffectRoundTrip(t *testing.T) {
	s := New(t.TempDir())

	rec := core.SideEffectRecord{
		Date:        core.NewDate(2024, 1, 2),
		Description: "nausea, mostly in the morning",
		Severity:    "mild",
	}
	if _, err := s.AppendSideEffect(context.Background(), rec); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := s.ListSideEffects(context.Background())
	if err != nil || len(got) != 1 {
		t.Fatalf("list: %v err=%v", got, err)
	}
	if got[0] != rec {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got[0], rec)
	}
}

func TestListSkipsMalformedRows(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	rec := core.InjectionRecord{
		Date:   core.NewDate(2024, 1, 1),
		Dosage: core.Decimal{Hundredths: 25},
		Weight: core.Decimal{Hundredths: 18000},
	}
	if _, err := s.AppendInjection(context.Background(), rec); err != nil {
		t.Fatalf("append: %v", err)
	}

	// Hand-edited garbage row.
	f, err := os.OpenFile(filepath.Join(dir, "injections.csv"), os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := f.WriteString("not-a-date,,huh,??,\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	f.Close()

	got, err := s.ListInjections(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected malformed row skipped, got %d rows", len(got))
	}
}
