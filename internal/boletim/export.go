package boletim

import (
	"encoding/csv"
	"io"
	"strconv"
)

var csvHeader = []string{
	"Disciplina", "N1", "N2", "Média", "Final", "Média Final", "Situação",
	"Faltas", "Máx. Faltas", "Faltas Restantes", "Carga Horária", "Nota Necessária",
}

// WriteCSV writes the report rows with a header line.
func WriteCSV(w io.Writer, rows []ReportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rows {
		required := ""
		if r.RequiredFinal != nil {
			required = num(*r.RequiredFinal)
		}
		rec := []string{
			r.Subject,
			num(r.N1), num(r.N2), num(r.Average), num(r.Final), num(r.FinalAverage),
			r.Status,
			strconv.Itoa(r.Absences), num(r.MaxAbsences), num(r.RemainingAbsences),
			strconv.Itoa(r.Hours),
			required,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func num(f float64) string { return strconv.FormatFloat(f, 'f', 1, 64) }
