package grading_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-boletim/internal/grading"
)

func TestRegister_ProfileReachesEvaluate(t *testing.T) {
	pos := grading.Profile{
		Kind:        "posgrad",
		Weights:     []grading.Weight{{Slot: grading.N1, Weight: 1}, {Slot: grading.N2, Weight: 1}},
		Denominator: 2,
	}
	require.NoError(t, grading.Register(pos))

	got, ok := grading.Lookup("posgrad")
	require.True(t, ok)
	assert.Equal(t, pos, got)
	assert.Equal(t, grading.Kind("posgrad"), grading.ParseKind(" PosGrad "))

	ev := grading.New()
	res := ev.Evaluate(grading.ProfileFor("posgrad"), grading.Scores{grading.N1: 70, grading.N2: 50}, grading.AttendanceRecord{})
	assert.Equal(t, 60.0, res.PartialAverage)
	assert.Equal(t, grading.Approved, res.Outcome)

	res = ev.Evaluate(grading.ProfileFor("posgrad"), grading.Scores{grading.N1: 50, grading.N2: 50}, grading.AttendanceRecord{})
	assert.Equal(t, grading.NeedsFinal, res.Outcome)
	require.NotNil(t, res.RequiredFinalScore)
	assert.Equal(t, 70.0, *res.RequiredFinalScore)
	assert.Nil(t, res.RequiredSecondScore)
}

func TestRegister_Rejects(t *testing.T) {
	assert.Error(t, grading.Register(grading.Profile{Kind: "empty", Denominator: 1}))
	assert.Error(t, grading.Register(grading.Profile{Kind: "zero", Weights: grading.Standard.Weights}))
	assert.Error(t, grading.Register(grading.Profile{Kind: grading.KindStandard, Weights: grading.Standard.Weights, Denominator: 1}))

	assert.Equal(t, grading.Standard, grading.ProfileFor("unknown"))
	assert.Equal(t, grading.KindStandard, grading.ParseKind("unknown"))
}
