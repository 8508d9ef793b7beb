/*
PURPOSE:
  Writes score records to a CSV file in the run directory.
  Ensures data integrity by flushing writes immediately.

REQUIREMENTS:
  Implementation-discovered:
  - Rows are written as runs finish, so a crashed benchmark keeps partial data.
  - The CSV carries the unsorted, per-run view; the console table is sorted.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine (through the Runner's sinks)
  - Consumes: internal/model.ScoreRecord

ERROR HANDLING:
  - Returns error on file creation or write failure.

IMPLEMENTATION RULES:
  - Use encoding/csv.
  - Flush() after every write (critical for crash resilience).

RELATED FILES:
  - internal/model/types.go
*/

package output

import (
	"encoding/csv"
	"os"
	"strconv"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/daryltucker/forest-extract/internal/model"
)

// CSVWriter handles writing results to a CSV file.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
}

// NewCSVWriter creates a new CSVWriter.
// It overwrites the file if it exists.
func NewCSVWriter(path string) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, eris.Wrapf(err, "output: create csv %s", path)
	}

	w := csv.NewWriter(f)

	header := []string{
		"model", "temperature", "input", "time_taken_s",
		"entity_count", "test_case_count", "valid_json",
		"parameter_size", "error",
	}
	if err := w.Write(header); err != nil {
		f.Close()
		return nil, eris.Wrap(err, "output: write csv header")
	}
	w.Flush()

	return &CSVWriter{
		file:   f,
		writer: w,
	}, nil
}

// Write writes a single record to the CSV file.
func (cw *CSVWriter) Write(r model.ScoreRecord) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	record := []string{
		r.Model,
		FormatTemperature(r.Temperature),
		strconv.Itoa(r.Input),
		strconv.FormatFloat(r.TimeTaken, 'f', 4, 64),
		strconv.Itoa(r.EntityCount),
		strconv.Itoa(r.TestCaseCount),
		strconv.FormatBool(r.ValidJSON),
		r.ParameterSize,
		r.Error,
	}

	if err := cw.writer.Write(record); err != nil {
		return eris.Wrap(err, "output: write csv row")
	}
	cw.writer.Flush()
	return cw.writer.Error()
}

// Close closes the underlying file.
func (cw *CSVWriter) Close() error {
	cw.writer.Flush()
	return cw.file.Close()
}
