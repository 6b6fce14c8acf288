package http

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/spf13/cast"

	"github.com/mind-engage/mindengage-boletim/internal/boletim"
	"github.com/mind-engage/mindengage-boletim/internal/grading"
	"github.com/mind-engage/mindengage-boletim/internal/suap"

	authmw "github.com/mind-engage/mindengage-boletim/internal/auth/middleware"
)

type subjectView struct {
	boletim.Subject
	Evaluation EvaluationDTO  `json:"evaluation"`
	Discipline map[string]any `json:"discipline,omitempty"`
}

type dashboardResponse struct {
	Periods     []suap.Period    `json:"periods"`
	Period      suap.Period      `json:"period"`
	Subjects    []subjectView    `json:"subjects"`
	Disciplines []map[string]any `json:"disciplines"`
	Totals      boletim.Totals   `json:"totals"`
	Summary     boletim.Summary  `json:"summary"`
	FetchedAt   time.Time        `json:"fetched_at"`
	Cached      bool             `json:"cached"`
}

// attachDisciplines copies each diary's "disciplina" object onto the subject
// with the same name.
func attachDisciplines(views []subjectView, diaries []map[string]any) {
	byName := make(map[string]map[string]any, len(diaries))
	for _, d := range diaries {
		disc := cast.ToStringMap(d["disciplina"])
		if name := cast.ToString(disc["nome"]); name != "" {
			byName[name] = disc
		}
	}
	for i := range views {
		if disc, ok := byName[views[i].Name]; ok {
			views[i].Discipline = disc
		}
	}
}

func subjectViews(ev *grading.Evaluator, subjects []boletim.Subject) []subjectView {
	out := make([]subjectView, 0, len(subjects))
	for _, s := range subjects {
		out = append(out, subjectView{Subject: s, Evaluation: toDTO(s.Kind(), boletim.Evaluate(ev, s))})
	}
	return out
}

// gradebookError maps Gradebook failures to status codes.
func gradebookError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNoSession), errors.Is(err, suap.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "SUAP session expired, sign in again")
	case errors.Is(err, suap.ErrNoPeriods):
		writeError(w, http.StatusNotFound, "no academic periods")
	default:
		log.Printf("gradebook: %v", err)
		writeError(w, http.StatusBadGateway, "SUAP unavailable")
	}
}

// GET /dashboard?ano=2024&periodo=1
// Without a term the request is redirected to the most recent one.
func DashboardHandler(g *Gradebook, ev *grading.Evaluator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid := authmw.SessionFromContext(r.Context())
		periods, err := g.Periods(r.Context(), sid)
		if err != nil {
			gradebookError(w, err)
			return
		}
		year, period := r.URL.Query().Get("ano"), r.URL.Query().Get("periodo")
		if year == "" || period == "" {
			if len(periods) == 0 {
				gradebookError(w, suap.ErrNoPeriods)
				return
			}
			q := url.Values{"ano": {periods[0].Year}, "periodo": {periods[0].Period}}
			http.Redirect(w, r, r.URL.Path+"?"+q.Encode(), http.StatusFound)
			return
		}

		book, err := g.Load(r.Context(), sid, year, period)
		if err != nil {
			gradebookError(w, err)
			return
		}
		// diaries only decorate the boletim; a failure leaves them empty
		diaries, err := g.Diaries(r.Context(), sid, book.Period)
		if err != nil {
			log.Printf("dashboard: diaries %s: %v", book.Period.Semester(), err)
		}
		if diaries == nil {
			diaries = []map[string]any{}
		}
		views := subjectViews(ev, book.Subjects)
		attachDisciplines(views, diaries)

		writeJSON(w, http.StatusOK, dashboardResponse{
			Periods:     periods,
			Period:      book.Period,
			Subjects:    views,
			Disciplines: diaries,
			Totals:      boletim.ComputeTotals(book.Subjects),
			Summary:     boletim.Summarize(ev, book.Subjects),
			FetchedAt:   book.FetchedAt,
			Cached:      book.Cached,
		})
	}
}

// GET /periods
func PeriodsHandler(g *Gradebook) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ps, err := g.Periods(r.Context(), authmw.SessionFromContext(r.Context()))
		if err != nil {
			gradebookError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ps)
	}
}
