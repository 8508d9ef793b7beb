/*
PURPOSE:
  Defines the core data structures used throughout Forest Extract.
  These models describe which model is benchmarked, what it answered,
  what could be extracted from the answer and how the run scored.

REQUIREMENTS:
  User-specified:
  - Record wall-clock time, entity count, test case count and JSON validity.
  - Track model name and parameter size for every run.

  Implementation-discovered:
  - Entities have no fixed schema; keep them as decoded JSON values.
  - Need JSON tags for the JSONL report and the history store.

ARCHITECTURE INTEGRATION:
  - Used by: internal/extract, internal/engine, internal/output, internal/store
  - Shared across boundaries.

ERROR HANDLING:
  - None (pure data structs).

IMPLEMENTATION RULES:
  - Keep structs simple and public.
  - Records are values; never mutate one after it is appended to a report.

RELATED FILES:
  - internal/output/report.go
  - internal/output/csv.go
  - internal/store/sqlite.go

MAINTENANCE:
  - Update the CSV writer and the history schema when adding record fields.
*/

package model

// ModelSpec identifies a model served by Ollama.
type ModelSpec struct {
	Name          string `json:"name" yaml:"name"`
	ParameterSize string `json:"parameter_size" yaml:"parameter_size"`
}

// RunRequest is the work for one model: every input string is sent at
// every temperature.
type RunRequest struct {
	Model        ModelSpec
	Temperatures []float64
	Inputs       []string
}

// RawResponse is the verbatim chat content returned by a model.
type RawResponse struct {
	Content string `json:"content"`
}

// ExtractionResult is what could be recovered from a raw response.
// Entities holds whatever JSON value was decoded; it is an empty slice
// when Success is false.
type ExtractionResult struct {
	Entities any  `json:"entities"`
	Success  bool `json:"success"`
}

// ScoreRecord is the outcome of a single (model, temperature, input) run.
type ScoreRecord struct {
	Model         string  `json:"model"`
	Temperature   float64 `json:"temperature"`
	TimeTaken     float64 `json:"time_taken"` // seconds, chat call only
	EntityCount   int     `json:"entity_count"`
	TestCaseCount int     `json:"test_case_count"`
	ValidJSON     bool    `json:"valid_json"`
	ParameterSize string  `json:"parameter_size"`
	Input         int     `json:"input"`
	Error         string  `json:"error,omitempty"` // transport failure, if any
}
