package boletim

import (
	"math"

	"github.com/mind-engage/mindengage-boletim/internal/grading"
)

// Totals aggregates class hours and absences over a term.
type Totals struct {
	Classes      int     `json:"total_classes"`
	ClassesGiven int     `json:"total_classes_given"`
	Absences     int     `json:"total_absences"`
	Frequency    float64 `json:"total_frequency"` // percent, 2 decimals
}

// Summary counts subjects by standing.
type Summary struct {
	Subjects int `json:"total_subjects"`
	Approved int `json:"approved_subjects"`
	AtRisk   int `json:"at_risk_subjects"`
}

// ComputeTotals sums hours and absences. Frequency is measured against the
// hours already given and is 0 while none are.
func ComputeTotals(subjects []Subject) Totals {
	var t Totals
	for _, s := range subjects {
		t.Classes += s.Hours
		t.ClassesGiven += s.HoursGiven
		t.Absences += s.Absences
	}
	if t.ClassesGiven > 0 {
		f := float64(t.ClassesGiven-t.Absences) / float64(t.ClassesGiven) * 100
		t.Frequency = math.Round(f*100) / 100
	}
	return t
}

// Summarize counts approved subjects against the evaluator's approval
// threshold; everything else is at risk.
func Summarize(ev *grading.Evaluator, subjects []Subject) Summary {
	sum := Summary{Subjects: len(subjects)}
	for _, s := range subjects {
		if s.Approved(ev.ApprovalThreshold()) {
			sum.Approved++
		} else {
			sum.AtRisk++
		}
	}
	return sum
}

// ReportRow is one line of the term report.
type ReportRow struct {
	Subject           string   `json:"disciplina"`
	N1                float64  `json:"nota1"`
	N2                float64  `json:"nota2"`
	Average           float64  `json:"media"`
	Final             float64  `json:"final"`
	FinalAverage      float64  `json:"media_final"`
	Status            string   `json:"situacao"`
	Absences          int      `json:"faltas"`
	MaxAbsences       float64  `json:"max_faltas"`
	RemainingAbsences float64  `json:"faltas_restantes"`
	Hours             int      `json:"carga_horaria"`
	Outcome           string   `json:"resultado"`
	RequiredFinal     *float64 `json:"nota_necessaria_final,omitempty"`
}

const defaultStatus = "Cursando"

// ReportRows builds the report lines. MaxAbsences is the raw share of hours
// given by the evaluator's absence ratio and RemainingAbsences stops at zero
// once the limit is reached.
func ReportRows(ev *grading.Evaluator, subjects []Subject) []ReportRow {
	rows := make([]ReportRow, 0, len(subjects))
	for _, s := range subjects {
		limit := float64(s.Hours) * ev.AbsenceRatio()
		remaining := 0.0
		if float64(s.Absences) < limit {
			remaining = limit - float64(s.Absences)
		}
		status := s.Status
		if status == "" {
			status = defaultStatus
		}
		res := Evaluate(ev, s)
		rows = append(rows, ReportRow{
			Subject:           s.Name,
			N1:                deref(s.Stages[0]),
			N2:                deref(s.Stages[1]),
			Average:           deref(s.Average),
			Final:             deref(s.Final),
			FinalAverage:      deref(s.FinalAverage),
			Status:            status,
			Absences:          s.Absences,
			MaxAbsences:       limit,
			RemainingAbsences: remaining,
			Hours:             s.Hours,
			Outcome:           string(res.Outcome),
			RequiredFinal:     res.RequiredFinalScore,
		})
	}
	return rows
}
