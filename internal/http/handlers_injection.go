package http

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"sort"

	"glptrack/internal/core"
	"glptrack/internal/store"
)

const recentListLimit = 10

func (s *Server) handleInjections(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderInjectionsPage(w, r)
	case http.MethodPost:
		s.handleCreateInjection(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) renderInjectionsPage(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	records, err := s.records.ListInjections(r.Context())
	if err != nil {
		s.renderStorageError(w, r, err)
		return
	}

	type row struct {
		Date   string
		Time   string
		Dosage string
		Weight string
		Notes  string
	}
	data := struct {
		Recent []row
	}{}
	for _, rec := range recentInjections(records) {
		data.Recent = append(data.Recent, row{
			Date:   rec.Date.String(),
			Time:   rec.Time.String(),
			Dosage: rec.Dosage.String(),
			Weight: rec.Weight.String(),
			Notes:  rec.Notes,
		})
	}

	if err := s.templates.ExecuteTemplate(w, "injections.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Injections template execution failed", "error", err, "template", "injections.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleCreateInjection(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "method", r.Method, "url", r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`<div class="error">Invalid request format</div>`))
		return
	}

	date, err := core.ParseDate(r.Form.Get("date"))
	if err != nil {
		writeValidationError(w, err)
		return
	}
	timeOfDay, err := core.ParseTimeOfDay(r.Form.Get("time"))
	if err != nil {
		writeValidationError(w, err)
		return
	}
	dosage, err := core.ParseDecimal(r.Form.Get("dosage"))
	if err != nil {
		writeValidationError(w, core.ErrInvalidDosage)
		return
	}
	weight, err := core.ParseDecimal(r.Form.Get("weight"))
	if err != nil {
		writeValidationError(w, core.ErrInvalidWeight)
		return
	}

	rec := core.InjectionRecord{
		Date:   date,
		Time:   timeOfDay,
		Dosage: dosage,
		Weight: weight,
		Notes:  sanitizeInput(r.Form.Get("notes")),
	}
	if err := rec.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	ref, err := s.records.AppendInjection(r.Context(), rec)
	if err != nil {
		slog.ErrorContext(r.Context(), "Injection append error", "error", err,
			"date", rec.Date.String(), "dosage", rec.Dosage.String())
		w.WriteHeader(http.StatusInternalServerError)
		if errors.Is(err, store.ErrUnavailable) {
			_, _ = w.Write([]byte(`<div class="error">Storage is unavailable, please retry</div>`))
			return
		}
		_, _ = w.Write([]byte(`<div class="error">Failed to save record</div>`))
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Injection logged (#` + template.HTMLEscapeString(ref) + `): ` +
		template.HTMLEscapeString(rec.Date.String()) +
		` — ` + template.HTMLEscapeString(rec.Dosage.String()) + ` mg at ` +
		template.HTMLEscapeString(rec.Weight.String()) + ` lbs</div>`))
}

// recentInjections returns up to the last 10 records, newest date first.
// Records sharing a date keep their insertion order relative to each other.
func recentInjections(records []core.InjectionRecord) []core.InjectionRecord {
	sorted := make([]core.InjectionRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.After(sorted[j].Date.Time) })
	if len(sorted) > recentListLimit {
		sorted = sorted[:recentListLimit]
	}
	return sorted
}

func writeValidationError(w http.ResponseWriter, err error) {
	w.WriteHeader(http.StatusUnprocessableEntity)
	_, _ = w.Write([]byte(`<div class="error">` + template.HTMLEscapeString(validationMessage(err)) + `</div>`))
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidDate):
		return "Invalid date, use YYYY-MM-DD"
	case errors.Is(err, core.ErrInvalidTime):
		return "Invalid time, use HH:MM"
	case errors.Is(err, core.ErrInvalidDosage):
		return "Dosage must be a positive number"
	case errors.Is(err, core.ErrInvalidWeight):
		return "Weight must be a positive number"
	case errors.Is(err, core.ErrEmptyDescription):
		return "Description cannot be empty"
	case errors.Is(err, core.ErrTextTooLong):
		return "Text too long (max 500 characters)"
	default:
		return "Invalid input: " + err.Error()
	}
}
