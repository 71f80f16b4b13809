package core

import (
	"math"
	"testing"
)

func inj(date Date, dosage, weight int64) InjectionRecord {
	return InjectionRecord{
		Date:   date,
		Dosage: Decimal{Hundredths: dosage},
		Weight: Decimal{Hundredths: weight},
	}
}

func TestWeightTrendSortedAndStable(t *testing.T) {
	// Entered out of date order, with two records on the same date.
	recs := []InjectionRecord{
		inj(NewDate(2024, 1, 8), 50, 17850),
		inj(NewDate(2024, 1, 1), 25, 18000),
		inj(NewDate(2024, 1, 8), 50, 17840), // same date, entered later
	}
	got := WeightTrend(recs)
	if len(got) != 3 {
		t.Fatalf("expected 3 points, got %d", len(got))
	}
	if got[0].Date.String() != "2024-01-01" {
		t.Fatalf("not sorted ascending: %v", got)
	}
	// Ties keep insertion order.
	if got[1].Value.Hundredths != 17850 || got[2].Value.Hundredths != 17840 {
		t.Fatalf("tie order not stable: %v", got)
	}
}

func TestTrendScenario(t *testing.T) {
	recs := []InjectionRecord{
		{Date: NewDate(2024, 1, 1), Time: NewTimeOfDay(8, 0),
			Dosage: Decimal{Hundredths: 25}, Weight: Decimal{Hundredths: 18000}},
		{Date: NewDate(2024, 1, 8),
			Dosage: Decimal{Hundredths: 50}, Weight: Decimal{Hundredths: 17850}},
	}

	wt := WeightTrend(recs)
	if len(wt) != 2 ||
		wt[0].Date.String() != "2024-01-01" || wt[0].Value.Float64() != 180.0 ||
		wt[1].Date.String() != "2024-01-08" || wt[1].Value.Float64() != 178.5 {
		t.Fatalf("unexpected weight trend: %v", wt)
	}

	s := Summarize(recs, nil)
	if !s.HasDosage || s.AverageDosageMg != 0.375 {
		t.Fatalf("average dosage: got %v (has=%v), want 0.375", s.AverageDosageMg, s.HasDosage)
	}
	if !s.HasWeight || s.LatestWeight.Float64() != 178.5 {
		t.Fatalf("latest weight: got %v", s.LatestWeight)
	}
	if !s.HasChange || s.WeightChange.Hundredths != -150 {
		t.Fatalf("weight change: got %v", s.WeightChange)
	}
	if !s.HasRange || s.From.String() != "2024-01-01" || s.To.String() != "2024-01-08" {
		t.Fatalf("date range: %v .. %v", s.From, s.To)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, nil)
	if s.Injections != 0 || s.SideEffects != 0 {
		t.Fatalf("expected zero counts: %+v", s)
	}
	if s.HasDosage || s.HasWeight || s.HasChange || s.HasRange {
		t.Fatalf("empty dataset must report no data: %+v", s)
	}
}

func TestTimelineWithoutInjections(t *testing.T) {
	se := []SideEffectRecord{{Date: NewDate(2024, 1, 2), Description: "nausea"}}
	tl := SideEffectTimeline(se)
	if len(tl) != 1 || tl[0].Date.String() != "2024-01-02" || tl[0].Description != "nausea" {
		t.Fatalf("unexpected timeline: %v", tl)
	}

	s := Summarize(nil, se)
	if s.SideEffects != 1 {
		t.Fatalf("expected one side effect, got %d", s.SideEffects)
	}
	if s.HasDosage || s.HasWeight {
		t.Fatalf("injection stats must report no data: %+v", s)
	}
	// The side-effect date still defines the covered range.
	if !s.HasRange || s.From.String() != "2024-01-02" || s.To.String() != "2024-01-02" {
		t.Fatalf("date range: %v .. %v", s.From, s.To)
	}
}

func TestRollingAverage(t *testing.T) {
	pts := []TrendPoint{
		{Value: Decimal{Hundredths: 18000}},
		{Value: Decimal{Hundredths: 17800}},
		{Value: Decimal{Hundredths: 17600}},
	}
	got := RollingAverage(pts, 2)
	want := []float64{180.0, 179.0, 177.0}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("index %d: got %v, want %v", i, got[i], want[i])
		}
	}

	// min one sample: first element is always its own mean
	got = RollingAverage(pts, 15)
	if got[0] != 180.0 {
		t.Fatalf("got %v, want 180", got[0])
	}
}

func TestLinearTrend(t *testing.T) {
	pts := []TrendPoint{
		{Value: Decimal{Hundredths: 18000}},
		{Value: Decimal{Hundredths: 17900}},
		{Value: Decimal{Hundredths: 17800}},
	}
	slope, intercept, ok := LinearTrend(pts)
	if !ok {
		t.Fatalf("expected fit")
	}
	if math.Abs(slope-(-1.0)) > 1e-9 || math.Abs(intercept-180.0) > 1e-9 {
		t.Fatalf("got slope=%v intercept=%v", slope, intercept)
	}

	if _, _, ok := LinearTrend(pts[:1]); ok {
		t.Fatalf("single point must not fit")
	}
	flat := []TrendPoint{{Value: Decimal{Hundredths: 100}}, {Value: Decimal{Hundredths: 100}}}
	if _, _, ok := LinearTrend(flat); ok {
		t.Fatalf("zero-variance series must not fit")
	}
}
