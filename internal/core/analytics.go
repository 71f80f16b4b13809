package core

import "sort"

// All analytics are pure functions of the loaded record slices and are
// recomputed from scratch on every request; there is no cached or
// incremental state anywhere.

type (
	// TrendPoint is one (date, value) sample of a plottable series.
	TrendPoint struct {
		Date  Date
		Value Decimal
	}

	// Marker is one side-effect occurrence for the timeline overlay.
	Marker struct {
		Date        Date
		Description string
		Severity    string
	}

	// Summary holds the dashboard statistics. Each optional value carries a
	// Has flag; templates render a placeholder when the flag is false.
	Summary struct {
		Injections  int
		SideEffects int

		LatestWeight Decimal
		HasWeight    bool

		// Exact mean in milligrams; fixed-point would lose odd halves
		// (0.25 and 0.5 average to 0.375).
		AverageDosageMg float64
		HasDosage       bool

		WeightChange Decimal
		HasChange    bool

		From     Date
		To       Date
		HasRange bool
	}
)

// WeightTrend returns (date, weight) pairs sorted by date ascending.
// Records sharing a date keep their insertion order.
func WeightTrend(recs []InjectionRecord) []TrendPoint {
	pts := make([]TrendPoint, 0, len(recs))
	for _, r := range recs {
		pts = append(pts, TrendPoint{Date: r.Date, Value: r.Weight})
	}
	sortByDate(pts)
	return pts
}

// DosageTrend returns (date, dosage) pairs sorted by date ascending.
func DosageTrend(recs []InjectionRecord) []TrendPoint {
	pts := make([]TrendPoint, 0, len(recs))
	for _, r := range recs {
		pts = append(pts, TrendPoint{Date: r.Date, Value: r.Dosage})
	}
	sortByDate(pts)
	return pts
}

// SideEffectTimeline returns (date, description) markers sorted by date
// ascending, for co-plotting against the injection trends. No statistical
// correlation is computed.
func SideEffectTimeline(recs []SideEffectRecord) []Marker {
	ms := make([]Marker, 0, len(recs))
	for _, r := range recs {
		ms = append(ms, Marker{Date: r.Date, Description: r.Description, Severity: r.Severity})
	}
	sort.SliceStable(ms, func(i, j int) bool { return ms[i].Date.Before(ms[j].Date.Time) })
	return ms
}

// Summarize computes the dashboard statistics over both record sets.
// Empty inputs produce a Summary with the Has flags false, never an error.
func Summarize(inj []InjectionRecord, se []SideEffectRecord) Summary {
	s := Summary{Injections: len(inj), SideEffects: len(se)}

	if len(inj) > 0 {
		var totalDosage int64
		for _, r := range inj {
			totalDosage += r.Dosage.Hundredths
		}
		s.AverageDosageMg = float64(totalDosage) / float64(len(inj)) / 100.0
		s.HasDosage = true

		weights := WeightTrend(inj)
		s.LatestWeight = weights[len(weights)-1].Value
		s.HasWeight = true
		if len(weights) > 1 {
			s.WeightChange = weights[len(weights)-1].Value.Sub(weights[0].Value)
			s.HasChange = true
		}
	}

	for _, r := range inj {
		s.extendRange(r.Date)
	}
	for _, r := range se {
		s.extendRange(r.Date)
	}
	return s
}

func (s *Summary) extendRange(d Date) {
	if !s.HasRange {
		s.From, s.To = d, d
		s.HasRange = true
		return
	}
	if d.Before(s.From.Time) {
		s.From = d
	}
	if d.After(s.To.Time) {
		s.To = d
	}
}

// RollingAverage returns the trailing mean of the series values over the
// given window, with a minimum of one sample (the first points average over
// whatever precedes them). The dashboard uses a 15-sample window over the
// weight series.
func RollingAverage(pts []TrendPoint, window int) []float64 {
	if window < 1 {
		window = 1
	}
	out := make([]float64, len(pts))
	var sum int64
	for i, p := range pts {
		sum += p.Value.Hundredths
		if i >= window {
			sum -= pts[i-window].Value.Hundredths
		}
		n := i + 1
		if n > window {
			n = window
		}
		out[i] = float64(sum) / float64(n) / 100.0
	}
	return out
}

// LinearTrend fits a least-squares line over the sample index (0..n-1) and
// returns slope and intercept in display units. ok is false when fewer than
// two points exist or the series has no variance.
func LinearTrend(pts []TrendPoint) (slope, intercept float64, ok bool) {
	n := len(pts)
	if n < 2 {
		return 0, 0, false
	}
	var sumX, sumY, sumXY, sumXX float64
	varying := false
	for i, p := range pts {
		x := float64(i)
		y := p.Value.Float64()
		if p.Value.Hundredths != pts[0].Value.Hundredths {
			varying = true
		}
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	if !varying {
		return 0, 0, false
	}
	fn := float64(n)
	den := fn*sumXX - sumX*sumX
	if den == 0 {
		return 0, 0, false
	}
	slope = (fn*sumXY - sumX*sumY) / den
	intercept = (sumY - slope*sumX) / fn
	return slope, intercept, true
}

func sortByDate(pts []TrendPoint) {
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].Date.Before(pts[j].Date.Time) })
}
