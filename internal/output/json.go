/*
PURPOSE:
  Writes score records to a JSON Lines file (NDJSON).
  Optimized for machine parsing (jq, vecq).

REQUIREMENTS:
  Implementation-discovered:
  - JSON Lines is better for streaming/logging than a single large array (append-friendly).
  - One line per (model, temperature, input); "input" indexes test_string
    lists and "error" is present only for failed chat calls.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine (through the Runner's sinks)
  - Consumes: internal/model.ScoreRecord

ERROR HANDLING:
  - Returns error on file creation or write failure.

USAGE:
  w, err := output.NewJSONWriter("report.jsonl")
  w.Write(record)
  w.Close()
*/

package output

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/daryltucker/forest-extract/internal/model"
)

// JSONWriter handles writing records to a JSON Lines file.
type JSONWriter struct {
	file    *os.File
	encoder *json.Encoder
	mu      sync.Mutex
}

// NewJSONWriter creates a new JSONWriter.
func NewJSONWriter(path string) (*JSONWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, eris.Wrapf(err, "output: create jsonl %s", path)
	}

	return &JSONWriter{
		file:    f,
		encoder: json.NewEncoder(f),
	}, nil
}

// Write writes a single record as a JSON line.
func (jw *JSONWriter) Write(r model.ScoreRecord) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	return eris.Wrap(jw.encoder.Encode(r), "output: write jsonl row")
}

// Close closes the underlying file.
func (jw *JSONWriter) Close() error {
	return jw.file.Close()
}
