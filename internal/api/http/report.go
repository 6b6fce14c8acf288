package http

import (
	"fmt"
	"log"
	"net/http"

	"github.com/mind-engage/mindengage-boletim/internal/boletim"
	"github.com/mind-engage/mindengage-boletim/internal/grading"

	authmw "github.com/mind-engage/mindengage-boletim/internal/auth/middleware"
)

// GET /report?ano=&periodo=  (latest term when omitted)
func ReportHandler(g *Gradebook, ev *grading.Evaluator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		book, err := g.Load(r.Context(), authmw.SessionFromContext(r.Context()), q.Get("ano"), q.Get("periodo"))
		if err != nil {
			gradebookError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"period":  book.Period,
			"rows":    boletim.ReportRows(ev, book.Subjects),
			"totals":  boletim.ComputeTotals(book.Subjects),
			"summary": boletim.Summarize(ev, book.Subjects),
		})
	}
}

// GET /report/export.csv?ano=&periodo=
func ReportCSVHandler(g *Gradebook, ev *grading.Evaluator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		book, err := g.Load(r.Context(), authmw.SessionFromContext(r.Context()), q.Get("ano"), q.Get("periodo"))
		if err != nil {
			gradebookError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="boletim_%s_%s.csv"`, book.Period.Year, book.Period.Period))
		if err := boletim.WriteCSV(w, boletim.ReportRows(ev, book.Subjects)); err != nil {
			log.Printf("report csv: %v", err)
		}
	}
}
