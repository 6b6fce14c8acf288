package boletim

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"

	"github.com/mind-engage/mindengage-boletim/internal/grading"
)

// Subject is one line of a SUAP boletim with numbers coerced. Nil score
// pointers mean "not recorded yet".
type Subject struct {
	Diary       string  `json:"diary,omitempty"`
	Name        string  `json:"name"`
	Hours       int     `json:"hours"`
	HoursGiven  int     `json:"hours_given"`
	Absences    int     `json:"absences"`
	Frequency   float64 `json:"frequency"`
	Status      string  `json:"status"`
	Evaluations int     `json:"evaluations"`

	Stages       [4]*float64 `json:"stages"`
	Average      *float64    `json:"average,omitempty"`
	Final        *float64    `json:"final,omitempty"`
	FinalAverage *float64    `json:"final_average,omitempty"`
}

const statusApproved = "Aprovado"

// ParseSubjects decodes the boletim JSON array. Field values may be
// numbers, numeric strings (dot or comma decimals) or null.
func ParseSubjects(data []byte) ([]Subject, error) {
	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("boletim: %w", err)
	}
	return FromRecords(raw), nil
}

// FromRecords converts already-decoded boletim entries.
func FromRecords(raw []map[string]any) []Subject {
	out := make([]Subject, 0, len(raw))
	for _, r := range raw {
		s := Subject{
			Diary:        cast.ToString(r["codigo_diario"]),
			Name:         cast.ToString(r["disciplina"]),
			Hours:        toInt(r["carga_horaria"]),
			HoursGiven:   toInt(r["carga_horaria_cumprida"]),
			Absences:     toInt(r["numero_faltas"]),
			Frequency:    deref(toOptFloat(r["percentual_carga_horaria_frequentada"])),
			Status:       cast.ToString(r["situacao"]),
			Evaluations:  toInt(r["quantidade_avaliacoes"]),
			Average:      toOptFloat(r["media_disciplina"]),
			Final:        nested(r, "nota_avaliacao_final"),
			FinalAverage: toOptFloat(r["media_final_disciplina"]),
		}
		for i := range s.Stages {
			s.Stages[i] = nested(r, fmt.Sprintf("nota_etapa_%d", i+1))
		}
		out = append(out, s)
	}
	return out
}

// Kind picks the weighting scheme: four evaluations means a technical
// course.
func (s Subject) Kind() grading.Kind {
	if s.Evaluations >= 4 || s.Stages[2] != nil || s.Stages[3] != nil {
		return grading.KindTechnical
	}
	return grading.KindStandard
}

func (s Subject) Profile() grading.Profile { return grading.ProfileFor(s.Kind()) }

// Scores returns the recorded stage scores.
func (s Subject) Scores() grading.Scores {
	return grading.FromOptional(s.Stages[0], s.Stages[1], s.Stages[2], s.Stages[3])
}

func (s Subject) Attendance() grading.AttendanceRecord {
	return grading.AttendanceRecord{AbsencesTaken: s.Absences, ScheduledHours: float64(s.Hours)}
}

// Approved follows the dashboard rule: SUAP already says so, or both
// stage scores are in and the average reached threshold.
func (s Subject) Approved(threshold float64) bool {
	if s.Status == statusApproved {
		return true
	}
	return s.Stages[0] != nil && s.Stages[1] != nil && deref(s.Average) >= threshold
}

// Evaluate runs the evaluator over the subject's scores and attendance.
func Evaluate(ev *grading.Evaluator, s Subject) grading.Result {
	return ev.Evaluate(s.Profile(), s.Scores(), s.Attendance())
}

func nested(r map[string]any, key string) *float64 {
	m, ok := r[key].(map[string]any)
	if !ok {
		return nil
	}
	return toOptFloat(m["nota"])
}

func toOptFloat(v any) *float64 {
	if v == nil {
		return nil
	}
	if str, ok := v.(string); ok {
		str = strings.TrimSpace(strings.ReplaceAll(str, ",", "."))
		if str == "" || str == "-" || str == "--" {
			return nil
		}
		v = str
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func toInt(v any) int {
	if f := toOptFloat(v); f != nil {
		return int(*f)
	}
	return 0
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
