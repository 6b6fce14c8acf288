package grading_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mind-engage/mindengage-boletim/internal/grading"
)

func TestAttendanceMargin(t *testing.T) {
	ev := grading.New()
	tests := []struct {
		name        string
		rec         grading.AttendanceRecord
		wantAllowed int
		wantMargin  int
		wantStatus  grading.AttendanceStatus
	}{
		{"overage is not clamped", grading.AttendanceRecord{AbsencesTaken: 30, ScheduledHours: 100}, 25, -5, grading.LimitExceeded},
		{"exactly at limit", grading.AttendanceRecord{AbsencesTaken: 25, ScheduledHours: 100}, 25, 0, grading.AtLimit},
		{"slack left", grading.AttendanceRecord{AbsencesTaken: 3, ScheduledHours: 30}, 7, 4, grading.WithinLimit},
		{"allowance floors", grading.AttendanceRecord{ScheduledHours: 33}, 8, 8, grading.WithinLimit},
		{"no hours", grading.AttendanceRecord{AbsencesTaken: 2}, 0, -2, grading.LimitExceeded},
		{"absences beyond hours", grading.AttendanceRecord{AbsencesTaken: 50, ScheduledHours: 40}, 10, -40, grading.LimitExceeded},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.wantAllowed, ev.AllowedAbsences(tc.rec))
			m := ev.AttendanceMargin(tc.rec)
			assert.Equal(t, tc.wantMargin, m)
			assert.Equal(t, tc.wantStatus, grading.StatusOf(m))
		})
	}
}

func TestAttendanceMargin_CustomRatio(t *testing.T) {
	ev := grading.New(grading.WithAbsenceRatio(0.5))
	assert.Equal(t, 10, ev.AttendanceMargin(grading.AttendanceRecord{AbsencesTaken: 10, ScheduledHours: 40}))
}

func TestFrequency(t *testing.T) {
	assert.InDelta(t, 75.0, grading.Frequency(grading.AttendanceRecord{AbsencesTaken: 10, ScheduledHours: 40}), 1e-9)
	assert.True(t, math.IsNaN(grading.Frequency(grading.AttendanceRecord{AbsencesTaken: 1})))
}
