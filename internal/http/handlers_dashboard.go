package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"glptrack/internal/core"
	"glptrack/internal/store"
)

// weightRollingWindow matches the dashboard's smoothing of the weight series.
const weightRollingWindow = 15

type trendRow struct {
	Date    string
	Value   string
	Rolling string
}

type markerRow struct {
	Date        string
	Description string
	Severity    string
}

type dashboardData struct {
	Summary core.Summary

	AverageDosage string
	LatestWeight  string
	WeightChange  string
	From, To      string

	WeightRows []trendRow
	DosageRows []trendRow
	Markers    []markerRow

	TrendSlope     string
	TrendIntercept string
	HasTrend       bool
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	inj, err := s.records.ListInjections(r.Context())
	if err != nil {
		s.renderStorageError(w, r, err)
		return
	}
	se, err := s.records.ListSideEffects(r.Context())
	if err != nil {
		s.renderStorageError(w, r, err)
		return
	}

	data := buildDashboardData(inj, se)
	if err := s.templates.ExecuteTemplate(w, "dashboard.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Dashboard template execution failed", "error", err, "template", "dashboard.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func buildDashboardData(inj []core.InjectionRecord, se []core.SideEffectRecord) dashboardData {
	summary := core.Summarize(inj, se)
	weights := core.WeightTrend(inj)
	rolling := core.RollingAverage(weights, weightRollingWindow)
	dosages := core.DosageTrend(inj)
	markers := core.SideEffectTimeline(se)
	slope, intercept, hasTrend := core.LinearTrend(weights)

	data := dashboardData{
		Summary:  summary,
		HasTrend: hasTrend,
	}
	if summary.HasDosage {
		data.AverageDosage = formatFloat(summary.AverageDosageMg)
	}
	if summary.HasWeight {
		data.LatestWeight = summary.LatestWeight.String()
	}
	if summary.HasChange {
		data.WeightChange = summary.WeightChange.String()
	}
	if summary.HasRange {
		data.From = summary.From.String()
		data.To = summary.To.String()
	}
	if hasTrend {
		data.TrendSlope = formatFloat(slope)
		data.TrendIntercept = formatFloat(intercept)
	}

	for i, p := range weights {
		data.WeightRows = append(data.WeightRows, trendRow{
			Date:    p.Date.String(),
			Value:   p.Value.String(),
			Rolling: formatFloat(rolling[i]),
		})
	}
	for _, p := range dosages {
		data.DosageRows = append(data.DosageRows, trendRow{
			Date:  p.Date.String(),
			Value: p.Value.String(),
		})
	}
	for _, m := range markers {
		data.Markers = append(data.Markers, markerRow{
			Date:        m.Date.String(),
			Description: m.Description,
			Severity:    m.Severity,
		})
	}
	return data
}

// trendsResponse is the JSON shape served by /api/trends.
type trendsResponse struct {
	Weight struct {
		Points  []jsonPoint `json:"points"`
		Rolling []float64   `json:"rolling"`
		Trend   *jsonTrend  `json:"trend,omitempty"`
	} `json:"weight"`
	Dosage struct {
		Points []jsonPoint `json:"points"`
	} `json:"dosage"`
	SideEffects []jsonMarker `json:"side_effects"`
	Summary     jsonSummary  `json:"summary"`
}

type jsonPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

type jsonTrend struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

type jsonMarker struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Severity    string `json:"severity,omitempty"`
}

type jsonSummary struct {
	Injections      int      `json:"injections"`
	SideEffects     int      `json:"side_effects"`
	LatestWeight    *float64 `json:"latest_weight,omitempty"`
	AverageDosageMg *float64 `json:"average_dosage_mg,omitempty"`
	WeightChange    *float64 `json:"weight_change,omitempty"`
	From            string   `json:"from,omitempty"`
	To              string   `json:"to,omitempty"`
}

func (s *Server) handleTrendsAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	inj, err := s.records.ListInjections(r.Context())
	if err != nil {
		s.jsonStorageError(w, r, err)
		return
	}
	se, err := s.records.ListSideEffects(r.Context())
	if err != nil {
		s.jsonStorageError(w, r, err)
		return
	}

	var resp trendsResponse
	weights := core.WeightTrend(inj)
	resp.Weight.Points = toJSONPoints(weights)
	resp.Weight.Rolling = core.RollingAverage(weights, weightRollingWindow)
	if slope, intercept, ok := core.LinearTrend(weights); ok {
		resp.Weight.Trend = &jsonTrend{Slope: slope, Intercept: intercept}
	}
	resp.Dosage.Points = toJSONPoints(core.DosageTrend(inj))
	for _, m := range core.SideEffectTimeline(se) {
		resp.SideEffects = append(resp.SideEffects, jsonMarker{
			Date:        m.Date.String(),
			Description: m.Description,
			Severity:    m.Severity,
		})
	}

	summary := core.Summarize(inj, se)
	resp.Summary = jsonSummary{
		Injections:  summary.Injections,
		SideEffects: summary.SideEffects,
	}
	if summary.HasWeight {
		v := summary.LatestWeight.Float64()
		resp.Summary.LatestWeight = &v
	}
	if summary.HasDosage {
		v := summary.AverageDosageMg
		resp.Summary.AverageDosageMg = &v
	}
	if summary.HasChange {
		v := summary.WeightChange.Float64()
		resp.Summary.WeightChange = &v
	}
	if summary.HasRange {
		resp.Summary.From = summary.From.String()
		resp.Summary.To = summary.To.String()
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.ErrorContext(r.Context(), "Trends encode error", "error", err)
	}
}

func toJSONPoints(pts []core.TrendPoint) []jsonPoint {
	out := make([]jsonPoint, 0, len(pts))
	for _, p := range pts {
		out = append(out, jsonPoint{Date: p.Date.String(), Value: p.Value.Float64()})
	}
	return out
}

func (s *Server) renderStorageError(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "Record load error", "error", err, "url", r.URL.Path)
	w.WriteHeader(http.StatusInternalServerError)
	if errors.Is(err, store.ErrUnavailable) {
		_, _ = w.Write([]byte(`<div class="error">Storage is unavailable, please retry</div>`))
		return
	}
	_, _ = w.Write([]byte(`<div class="error">Failed to load records</div>`))
}

func (s *Server) jsonStorageError(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "Record load error", "error", err, "url", r.URL.Path)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	msg := "failed to load records"
	if errors.Is(err, store.ErrUnavailable) {
		msg = "storage unavailable"
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
