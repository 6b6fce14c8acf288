package grading

import "math"

// AttendanceRecord is a course's absence count against its scheduled hours.
// AbsencesTaken may exceed ScheduledHours; the overage is reported, not
// rejected.
type AttendanceRecord struct {
	AbsencesTaken  int
	ScheduledHours float64
}

type AttendanceStatus string

const (
	WithinLimit   AttendanceStatus = "within_limit"
	AtLimit       AttendanceStatus = "at_limit"
	LimitExceeded AttendanceStatus = "limit_exceeded"
)

// AllowedAbsences is floor(hours × absence ratio).
func (e *Evaluator) AllowedAbsences(a AttendanceRecord) int {
	return int(math.Floor(a.ScheduledHours * e.cfg.AbsenceRatio))
}

// AttendanceMargin is AllowedAbsences minus absences taken. It is not
// clamped: negative means the limit has been exceeded.
func (e *Evaluator) AttendanceMargin(a AttendanceRecord) int {
	return e.AllowedAbsences(a) - a.AbsencesTaken
}

// StatusOf classifies an attendance margin.
func StatusOf(margin int) AttendanceStatus {
	switch {
	case margin > 0:
		return WithinLimit
	case margin == 0:
		return AtLimit
	default:
		return LimitExceeded
	}
}

// Frequency is the attended share of scheduled hours as a percentage.
// It returns NaN when no hours are scheduled.
func Frequency(a AttendanceRecord) float64 {
	if a.ScheduledHours == 0 {
		return math.NaN()
	}
	return (a.ScheduledHours - float64(a.AbsencesTaken)) / a.ScheduledHours * 100
}
