package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-boletim/internal/boletim"
	"github.com/mind-engage/mindengage-boletim/internal/grading"
	"github.com/mind-engage/mindengage-boletim/internal/sheets"

	authmw "github.com/mind-engage/mindengage-boletim/internal/auth/middleware"
)

// GET /students/{registration}  (staff)
func StudentHandler(g *Gradebook, ev *grading.Evaluator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reg := chi.URLParam(r, "registration")
		if reg == "" {
			writeError(w, http.StatusBadRequest, "registration required")
			return
		}
		info, subjects, err := g.Student(r.Context(), authmw.SessionFromContext(r.Context()), reg)
		if err != nil {
			gradebookError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"student":  info,
			"subjects": subjectViews(ev, subjects),
			"totals":   boletim.ComputeTotals(subjects),
			"summary":  boletim.Summarize(ev, subjects),
		})
	}
}

// GET /sheets?user=  (admin) snapshot headers for one user
func ListSheetsHandler(store sheets.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := r.URL.Query().Get("user")
		if user == "" {
			writeError(w, http.StatusBadRequest, "user required")
			return
		}
		out, err := store.ListSheets(r.Context(), user)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if out == nil {
			out = []sheets.Sheet{}
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GET /sheets/events?since=0&limit=100  (admin)
func SheetEventsHandler(events *sheets.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		since, _ := strconv.ParseInt(q.Get("since"), 10, 64)
		limit, _ := strconv.Atoi(q.Get("limit"))
		out, err := events.Since(r.Context(), since, limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if out == nil {
			out = []sheets.Event{}
		}
		writeJSON(w, http.StatusOK, out)
	}
}
