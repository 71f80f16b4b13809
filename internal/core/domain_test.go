package core

import (
	"strings"
	"testing"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-08")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.String() != "2024-01-08" {
		t.Fatalf("unexpected round trip: %q", d.String())
	}

	for _, bad := range []string{"", "08/01/2024", "2024-13-01", "yesterday"} {
		if _, err := ParseDate(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestParseTimeOfDay(t *testing.T) {
	tt, err := ParseTimeOfDay("08:00")
	if err != nil || !tt.Set || tt.String() != "08:00" {
		t.Fatalf("unexpected: %v %v", tt, err)
	}

	// Empty means "not recorded", not an error.
	tt, err = ParseTimeOfDay("")
	if err != nil || tt.Set {
		t.Fatalf("empty time should be unset: %v %v", tt, err)
	}

	for _, bad := range []string{"25:00", "10:75", "noon"} {
		if _, err := ParseTimeOfDay(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestInjectionRecordValidate(t *testing.T) {
	good := InjectionRecord{
		Date:   NewDate(2024, 1, 1),
		Time:   NewTimeOfDay(8, 0),
		Dosage: Decimal{Hundredths: 25},
		Weight: Decimal{Hundredths: 18000},
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []InjectionRecord{
		{Dosage: Decimal{Hundredths: 25}, Weight: Decimal{Hundredths: 18000}}, // zero date
		{Date: NewDate(2024, 1, 1), Weight: Decimal{Hundredths: 18000}},       // zero dosage
		{Date: NewDate(2024, 1, 1), Dosage: Decimal{Hundredths: 25}},          // zero weight
		{Date: NewDate(2024, 1, 1), Dosage: Decimal{Hundredths: -25}, Weight: Decimal{Hundredths: 18000}},
		{Date: NewDate(2024, 1, 1), Dosage: Decimal{Hundredths: 25}, Weight: Decimal{Hundredths: 18000},
			Notes: strings.Repeat("x", 501)},
	}
	for i, r := range bads {
		if err := r.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestSideEffectRecordValidate(t *testing.T) {
	good := SideEffectRecord{Date: NewDate(2024, 1, 2), Description: "nausea"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	// Severity is optional.
	good.Severity = "mild"
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok with severity, got %v", err)
	}

	bads := []SideEffectRecord{
		{Description: "nausea"},                   // zero date
		{Date: NewDate(2024, 1, 2)},               // empty description
		{Date: NewDate(2024, 1, 2), Description: "   "},
	}
	for i, r := range bads {
		if err := r.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}
