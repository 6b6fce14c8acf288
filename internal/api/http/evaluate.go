package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/mind-engage/mindengage-boletim/internal/grading"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type evaluateRequest struct {
	Kind     string              `json:"kind" validate:"omitempty,max=32"`
	Scores   map[string]*float64 `json:"scores" validate:"dive,keys,oneof=n1 n2 n3 n4,endkeys,omitempty,gte=0,lte=100"`
	Hours    float64             `json:"hours" validate:"gte=0,lte=1000"`
	Absences int                 `json:"absences" validate:"gte=0"`
}

// POST /evaluate  { "kind": "technical", "scores": {"n1": 70, "n2": null}, "hours": 80, "absences": 4 }
func EvaluateHandler(ev *grading.Evaluator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req evaluateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeValidation(w, err)
			return
		}
		p := grading.ProfileFor(grading.ParseKind(req.Kind))
		s := grading.Scores{}
		for k, v := range req.Scores {
			if v != nil {
				s[grading.Slot(k)] = *v
			}
		}
		att := grading.AttendanceRecord{AbsencesTaken: req.Absences, ScheduledHours: req.Hours}
		writeJSON(w, http.StatusOK, toDTO(p.Kind, ev.Evaluate(p, s, att)))
	}
}

// simulateRequest mirrors the simulator form: four optional stage scores,
// the course load and the absences taken so far.
type simulateRequest struct {
	Kind     string   `json:"kind" validate:"omitempty,max=32"`
	N1       *float64 `json:"n1" validate:"omitempty,gte=0,lte=100"`
	N2       *float64 `json:"n2" validate:"omitempty,gte=0,lte=100"`
	N3       *float64 `json:"n3" validate:"omitempty,gte=0,lte=100"`
	N4       *float64 `json:"n4" validate:"omitempty,gte=0,lte=100"`
	Hours    int      `json:"hours" validate:"gte=0,lte=1000"`
	Absences int      `json:"absences" validate:"gte=0,ltefield=Hours"`
}

func (s simulateRequest) kind() grading.Kind {
	if s.Kind != "" {
		return grading.ParseKind(s.Kind)
	}
	if s.N3 != nil || s.N4 != nil {
		return grading.KindTechnical
	}
	return grading.KindStandard
}

// POST /simulate
func SimulateHandler(ev *grading.Evaluator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req simulateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeValidation(w, err)
			return
		}
		p := grading.ProfileFor(req.kind())
		s := grading.FromOptional(req.N1, req.N2, req.N3, req.N4)
		att := grading.AttendanceRecord{AbsencesTaken: req.Absences, ScheduledHours: float64(req.Hours)}
		writeJSON(w, http.StatusOK, toDTO(p.Kind, ev.Evaluate(p, s, att)))
	}
}
