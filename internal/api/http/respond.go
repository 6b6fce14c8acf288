package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"math"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mind-engage/mindengage-boletim/internal/grading"
)

// writeJSON encodes fully before writing; an encode failure is a 500.
func writeJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
		http.Error(w, "encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeValidation reports validator failures as {"error": ..., "fields": {field: tag}}.
func writeValidation(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[strings.ToLower(fe.Field())] = fe.Tag()
	}
	writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid input", "fields": fields})
}

// EvaluationDTO is the wire form of grading.Result. Averages are rounded to
// one decimal; the required final score is already a whole number.
type EvaluationDTO struct {
	Kind                string   `json:"kind"`
	PartialAverage      float64  `json:"partial_average"`
	Outcome             string   `json:"outcome"`
	AttendanceMargin    int      `json:"attendance_margin"`
	AttendanceStatus    string   `json:"attendance_status"`
	AllowedAbsences     int      `json:"allowed_absences"`
	Frequency           *float64 `json:"frequency"`
	RequiredFinalScore  *float64 `json:"required_final_score,omitempty"`
	FinalAchievable     *bool    `json:"final_achievable,omitempty"`
	RequiredSecondScore *float64 `json:"required_second_score,omitempty"`
}

func toDTO(k grading.Kind, r grading.Result) EvaluationDTO {
	out := EvaluationDTO{
		Kind:               string(k),
		PartialAverage:     grading.DisplayAverage(r.PartialAverage),
		Outcome:            string(r.Outcome),
		AttendanceMargin:   r.AttendanceMargin,
		AttendanceStatus:   string(grading.StatusOf(r.AttendanceMargin)),
		AllowedAbsences:    r.AllowedAbsences,
		RequiredFinalScore: r.RequiredFinalScore,
	}
	if !math.IsNaN(r.Frequency) {
		f := math.Round(r.Frequency*100) / 100
		out.Frequency = &f
	}
	if r.RequiredFinalScore != nil {
		ok := r.FinalAchievable
		out.FinalAchievable = &ok
	}
	if r.RequiredSecondScore != nil {
		v := grading.DisplayAverage(*r.RequiredSecondScore)
		out.RequiredSecondScore = &v
	}
	return out
}
