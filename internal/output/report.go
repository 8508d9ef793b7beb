/*
PURPOSE:
  Collects score records and renders them as a console table.

REQUIREMENTS:
  User-specified:
  - Best answers first (test case count, descending).

  Implementation-discovered:
  - Sort must be stable so equal scores keep run order.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine (Runner), internal/cli (run, history show)
  - Consumes: internal/model.ScoreRecord

USAGE:
  rep := output.NewReport()
  rep.Add(rec)
  rep.Sort()
  rep.Render(os.Stdout)
*/

package output

import (
	"io"
	"slices"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rotisserie/eris"

	"github.com/daryltucker/forest-extract/internal/model"
)

// ReportColumns is the fixed column order of the rendered report.
var ReportColumns = []string{
	"Model",
	"Temperature",
	"Time Taken (s)",
	"Entity Count",
	"Test Case Count",
	"Valid JSON",
	"Parameter Size",
}

// Report accumulates one record per run and renders them as a table.
// It is owned by a single driver and is not safe for concurrent use.
type Report struct {
	records []model.ScoreRecord
}

// NewReport returns an empty report.
func NewReport() *Report {
	return &Report{}
}

// Add appends rec as-is.
func (r *Report) Add(rec model.ScoreRecord) {
	r.records = append(r.records, rec)
}

// Sort orders records by test case count, highest first. Ties keep
// insertion order.
func (r *Report) Sort() {
	slices.SortStableFunc(r.records, func(a, b model.ScoreRecord) int {
		return b.TestCaseCount - a.TestCaseCount
	})
}

// Records returns a copy of the records in their current order.
func (r *Report) Records() []model.ScoreRecord {
	return slices.Clone(r.records)
}

// Len reports the number of records.
func (r *Report) Len() int {
	return len(r.records)
}

// Rows returns the table cells of every record in column order.
func (r *Report) Rows() [][]string {
	rows := make([][]string, 0, len(r.records))
	for _, rec := range r.records {
		rows = append(rows, []string{
			rec.Model,
			FormatTemperature(rec.Temperature),
			strconv.FormatFloat(rec.TimeTaken, 'f', 4, 64),
			strconv.Itoa(rec.EntityCount),
			strconv.Itoa(rec.TestCaseCount),
			strconv.FormatBool(rec.ValidJSON),
			rec.ParameterSize,
		})
	}
	return rows
}

// Render writes the report table to w.
func (r *Report) Render(w io.Writer) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(ReportColumns...).
		Rows(r.Rows()...)

	if _, err := io.WriteString(w, t.String()+"\n"); err != nil {
		return eris.Wrap(err, "output: render report")
	}
	return nil
}
