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

func (s *Server) handleSideEffects(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderSideEffectsPage(w, r)
	case http.MethodPost:
		s.handleCreateSideEffect(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) renderSideEffectsPage(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	records, err := s.records.ListSideEffects(r.Context())
	if err != nil {
		s.renderStorageError(w, r, err)
		return
	}

	type row struct {
		Date        string
		Description string
		Severity    string
	}
	data := struct {
		Recent []row
	}{}
	for _, rec := range recentSideEffects(records) {
		data.Recent = append(data.Recent, row{
			Date:        rec.Date.String(),
			Description: rec.Description,
			Severity:    rec.Severity,
		})
	}

	if err := s.templates.ExecuteTemplate(w, "side_effects.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Side effects template execution failed", "error", err, "template", "side_effects.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleCreateSideEffect(w http.ResponseWriter, r *http.Request) {
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

	rec := core.SideEffectRecord{
		Date:        date,
		Description: sanitizeInput(r.Form.Get("description")),
		Severity:    sanitizeInput(r.Form.Get("severity")),
	}
	if err := rec.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	ref, err := s.records.AppendSideEffect(r.Context(), rec)
	if err != nil {
		slog.ErrorContext(r.Context(), "Side effect append error", "error", err,
			"date", rec.Date.String())
		w.WriteHeader(http.StatusInternalServerError)
		if errors.Is(err, store.ErrUnavailable) {
			_, _ = w.Write([]byte(`<div class="error">Storage is unavailable, please retry</div>`))
			return
		}
		_, _ = w.Write([]byte(`<div class="error">Failed to save record</div>`))
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Side effect logged (#` + template.HTMLEscapeString(ref) + `): ` +
		template.HTMLEscapeString(rec.Date.String()) +
		` — ` + template.HTMLEscapeString(rec.Description) + `</div>`))
}

// recentSideEffects returns up to the last 10 records, newest date first.
func recentSideEffects(records []core.SideEffectRecord) []core.SideEffectRecord {
	sorted := make([]core.SideEffectRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.After(sorted[j].Date.Time) })
	if len(sorted) > recentListLimit {
		sorted = sorted[:recentListLimit]
	}
	return sorted
}
