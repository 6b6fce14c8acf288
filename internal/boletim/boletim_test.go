package boletim_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-boletim/internal/boletim"
	"github.com/mind-engage/mindengage-boletim/internal/grading"
)

const sample = `[
  {
    "codigo_diario": "1234",
    "disciplina": "TEC.0001 - Algoritmos",
    "carga_horaria": 80,
    "carga_horaria_cumprida": 40,
    "numero_faltas": 6,
    "percentual_carga_horaria_frequentada": 85,
    "situacao": "Cursando",
    "quantidade_avaliacoes": 2,
    "media_disciplina": "50",
    "nota_etapa_1": {"nota": 50, "faltas": 2},
    "nota_etapa_2": {"nota": "50,0", "faltas": 4},
    "nota_avaliacao_final": {"nota": null}
  },
  {
    "disciplina": "TEC.0002 - Redes",
    "carga_horaria": "60",
    "carga_horaria_cumprida": 20,
    "numero_faltas": 4,
    "situacao": "Aprovado",
    "quantidade_avaliacoes": 4,
    "nota_etapa_1": {"nota": 90},
    "nota_etapa_2": {"nota": null},
    "nota_etapa_3": {"nota": ""},
    "nota_etapa_4": null
  },
  {
    "disciplina": "TEC.0003 - Banco de Dados",
    "carga_horaria": 40,
    "numero_faltas": 0,
    "situacao": "",
    "media_disciplina": 72,
    "nota_etapa_1": {"nota": 70},
    "nota_etapa_2": {"nota": 73.3}
  }
]`

func parse(t *testing.T) []boletim.Subject {
	t.Helper()
	subs, err := boletim.ParseSubjects([]byte(sample))
	require.NoError(t, err)
	require.Len(t, subs, 3)
	return subs
}

func TestParseSubjects_CoercesLooseValues(t *testing.T) {
	subs := parse(t)

	alg := subs[0]
	assert.Equal(t, "1234", alg.Diary)
	assert.Equal(t, 80, alg.Hours)
	require.NotNil(t, alg.Stages[0])
	require.NotNil(t, alg.Stages[1])
	assert.Equal(t, 50.0, *alg.Stages[1])
	assert.Nil(t, alg.Final)
	assert.Equal(t, grading.KindStandard, alg.Kind())

	redes := subs[1]
	assert.Equal(t, 60, redes.Hours)
	assert.Nil(t, redes.Stages[1])
	assert.Nil(t, redes.Stages[2])
	assert.Nil(t, redes.Stages[3])
	assert.Equal(t, grading.KindTechnical, redes.Kind())
	assert.Equal(t, grading.Scores{grading.N1: 90}, redes.Scores())
}

func TestParseSubjects_RejectsNonArray(t *testing.T) {
	_, err := boletim.ParseSubjects([]byte(`{"detail":"x"}`))
	assert.Error(t, err)
}

func TestComputeTotals(t *testing.T) {
	tot := boletim.ComputeTotals(parse(t))
	assert.Equal(t, 180, tot.Classes)
	assert.Equal(t, 60, tot.ClassesGiven)
	assert.Equal(t, 10, tot.Absences)
	assert.Equal(t, 83.33, tot.Frequency)

	assert.Equal(t, boletim.Totals{}, boletim.ComputeTotals(nil))
}

func TestSummarize(t *testing.T) {
	sum := boletim.Summarize(grading.New(), parse(t))
	assert.Equal(t, boletim.Summary{Subjects: 3, Approved: 2, AtRisk: 1}, sum)
}

func TestReportRows(t *testing.T) {
	rows := boletim.ReportRows(grading.New(), parse(t))
	require.Len(t, rows, 3)

	alg := rows[0]
	assert.Equal(t, 20.0, alg.MaxAbsences)
	assert.Equal(t, 14.0, alg.RemainingAbsences)
	assert.Equal(t, string(grading.NeedsFinal), alg.Outcome)
	require.NotNil(t, alg.RequiredFinal)
	assert.Equal(t, 70.0, *alg.RequiredFinal)

	assert.Equal(t, "Cursando", rows[2].Status)
	assert.Nil(t, rows[2].RequiredFinal)
}

func TestReportRows_RemainingStopsAtZero(t *testing.T) {
	rows := boletim.ReportRows(grading.New(), []boletim.Subject{{Name: "X", Hours: 20, Absences: 7}})
	assert.Equal(t, 5.0, rows[0].MaxAbsences)
	assert.Equal(t, 0.0, rows[0].RemainingAbsences)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, boletim.WriteCSV(&buf, boletim.ReportRows(grading.New(), parse(t))))

	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 4)
	assert.Equal(t, "Disciplina", recs[0][0])
	assert.Equal(t, "TEC.0001 - Algoritmos", recs[1][0])
	assert.Equal(t, "70.0", recs[1][11])
	assert.Equal(t, "", recs[3][11])
}

func TestParseSubjects_DropsNonFiniteNumbers(t *testing.T) {
	subs, err := boletim.ParseSubjects([]byte(`[{
		"disciplina": "Física",
		"carga_horaria": "Inf",
		"media_disciplina": "NaN",
		"nota_etapa_1": {"nota": "NaN"},
		"nota_etapa_2": {"nota": "50"},
		"nota_etapa_3": {"nota": "Infinity"},
		"nota_etapa_4": {"nota": "-Inf"}
	}]`))
	require.NoError(t, err)
	s := subs[0]
	assert.Nil(t, s.Stages[0])
	assert.Nil(t, s.Stages[2])
	assert.Nil(t, s.Stages[3])
	assert.Nil(t, s.Average)
	assert.Equal(t, 0, s.Hours)
	require.NotNil(t, s.Stages[1])

	res := boletim.Evaluate(grading.New(), s)
	assert.Equal(t, 30.0, res.PartialAverage)
	assert.Equal(t, grading.Failed, res.Outcome)

	_, err = json.Marshal(s)
	assert.NoError(t, err)
}

func TestSummarize_FollowsApprovalThreshold(t *testing.T) {
	n := 65.0
	subs := []boletim.Subject{{Name: "X", Status: "Cursando", Stages: [4]*float64{&n, &n}, Average: &n}}

	strict := grading.New(grading.WithApprovalThreshold(70))
	assert.Equal(t, boletim.Summary{Subjects: 1, AtRisk: 1}, boletim.Summarize(strict, subs))
	assert.Equal(t, grading.NeedsFinal, boletim.Evaluate(strict, subs[0]).Outcome)

	assert.Equal(t, boletim.Summary{Subjects: 1, Approved: 1}, boletim.Summarize(grading.New(), subs))
}

func TestReportRows_FollowsAbsenceRatio(t *testing.T) {
	ev := grading.New(grading.WithAbsenceRatio(0.5))
	rows := boletim.ReportRows(ev, []boletim.Subject{{Name: "X", Hours: 20, Absences: 7}})
	assert.Equal(t, 10.0, rows[0].MaxAbsences)
	assert.Equal(t, 3.0, rows[0].RemainingAbsences)
}
