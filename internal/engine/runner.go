/*
PURPOSE:
  High-level runner that orchestrates the benchmarking process.
  Loops through Models -> Inputs -> Temperatures and scores every answer.

REQUIREMENTS:
  User-specified:
  - Time each chat call, classify the answer as valid/invalid JSON,
    extract entities, count expected substrings.
  - Save raw and extracted artifacts, collect one record per run.

  Implementation-discovered:
  - Every dependency is passed in; the runner never decides where models
    come from or reads registry files itself.
  - A transport failure still produces a (zeroed) row unless FailFast is set.
  - Only answers that are valid JSON as a whole are scored; an answer the
    heuristic can still unwrap keeps zero counts unless ScoreExtracted is set.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli
  - Uses: internal/extract, internal/output, internal/model

ERROR HANDLING:
  - Logs transport errors and continues (resilience).
  - Artifact write errors abort the run.
  - Sink errors (CSV, JSONL, history) are logged, never fatal.

IMPLEMENTATION RULES:
  - Strictly sequential; one chat call and its writes finish before the next.
  - Time only the chat call.

USAGE:
  r := &engine.Runner{Chat: e, Models: src, Artifacts: w, Report: rep, ...}
  err := r.Run(ctx)

RELATED FILES:
  - internal/engine/client.go
  - internal/output/artifacts.go
  - internal/output/report.go
*/

package engine

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"

	"github.com/daryltucker/forest-extract/internal/extract"
	"github.com/daryltucker/forest-extract/internal/model"
	"github.com/daryltucker/forest-extract/internal/output"
)

// Sink receives every record as soon as it is produced.
type Sink interface {
	Write(rec model.ScoreRecord) error
}

// Runner executes a benchmark suite.
type Runner struct {
	Chat      ChatClient
	Models    ModelSource
	Artifacts *output.ArtifactWriter
	Report    *output.Report
	Sinks     []Sink

	Temperatures []float64
	Inputs       []string
	// MultiInput makes every input write into its own directory and adds
	// a shared raw-response archive per model.
	MultiInput      bool
	TestCases       []string
	MessageTemplate string

	// FailFast aborts on the first transport error.
	FailFast bool
	// ScoreExtracted also scores answers that are not valid JSON as a whole
	// but from which the heuristic recovered entities.
	ScoreExtracted bool
}

// Run executes the full benchmark suite.
func (r *Runner) Run(ctx context.Context) error {
	if len(r.Temperatures) == 0 {
		return eris.New("engine: no temperatures configured")
	}
	if len(r.Inputs) == 0 {
		return eris.New("engine: no inputs configured")
	}

	models, err := r.Models.Models(ctx)
	if err != nil {
		return eris.Wrap(err, "engine: resolve models")
	}
	output.Logger.Infow("Resolved models", "count", len(models))

	for _, m := range models {
		output.Logger.Infow("Testing Model", "model", m.Name, "parameter_size", m.ParameterSize)
		req := model.RunRequest{Model: m, Temperatures: r.Temperatures, Inputs: r.Inputs}
		if err := r.runRequest(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) runRequest(ctx context.Context, req model.RunRequest) error {
	if !r.MultiInput {
		_, err := r.runInput(ctx, r.Artifacts, req, 0)
		return err
	}

	archive := make([][]string, 0, len(req.Inputs))
	for i := range req.Inputs {
		responses, err := r.runInput(ctx, r.Artifacts.ForInput(i), req, i)
		if err != nil {
			return err
		}
		archive = append(archive, responses)
	}

	path, err := r.Artifacts.WriteArchive(req.Model.Name, archive)
	if err != nil {
		return err
	}
	output.Logger.Debugw("Wrote raw archive", "model", req.Model.Name, "path", path)
	return nil
}

// runInput sends one input at every temperature and returns the raw
// responses in temperature order.
func (r *Runner) runInput(ctx context.Context, w *output.ArtifactWriter, req model.RunRequest, input int) ([]string, error) {
	prompt := BuildPrompt(r.MessageTemplate, req.Inputs[input])

	responses := make([]string, 0, len(req.Temperatures))
	for _, temp := range req.Temperatures {
		rec, content, err := r.runOnce(ctx, w, req.Model, input, temp, prompt)
		if err != nil {
			return nil, err
		}
		r.record(rec)
		responses = append(responses, content)
	}
	return responses, nil
}

func (r *Runner) runOnce(ctx context.Context, w *output.ArtifactWriter, m model.ModelSpec, input int, temp float64, prompt string) (model.ScoreRecord, string, error) {
	rec := model.ScoreRecord{
		Model:         m.Name,
		Temperature:   temp,
		ParameterSize: m.ParameterSize,
		Input:         input,
	}

	start := time.Now()
	raw, err := r.Chat.Chat(ctx, m.Name, temp, prompt)
	rec.TimeTaken = time.Since(start).Seconds()

	if err != nil {
		var te *TransportError
		if r.FailFast || ctx.Err() != nil || !errors.As(err, &te) {
			return rec, "", err
		}
		output.Logger.Errorw("Chat Failed", "model", m.Name, "temperature", temp, "error", err)
		rec.Error = err.Error()
		return rec, "", nil
	}

	content := raw.Content
	rec.ValidJSON = extract.IsValidJSON(content)

	if _, err := w.WriteRaw(m.Name, temp, content); err != nil {
		return rec, content, err
	}

	res := extract.ExtractEntities(content)
	if res.Success && (rec.ValidJSON || r.ScoreExtracted) {
		if _, err := w.WriteEntities(m.Name, temp, res.Entities); err != nil {
			return rec, content, err
		}
		rec.EntityCount = extract.EntityCount(res.Entities)
		rec.TestCaseCount = extract.ScoreSubstrings(content, r.TestCases)
	}

	output.Logger.Infow("Run Complete",
		"model", m.Name,
		"temperature", temp,
		"input", input,
		"time_taken_s", rec.TimeTaken,
		"valid_json", rec.ValidJSON,
		"extracted", res.Success,
		"entities", rec.EntityCount,
		"test_cases", rec.TestCaseCount,
	)
	return rec, content, nil
}

func (r *Runner) record(rec model.ScoreRecord) {
	r.Report.Add(rec)
	for _, s := range r.Sinks {
		if err := s.Write(rec); err != nil {
			output.Logger.Errorw("Failed to write result", "model", rec.Model, "error", err)
		}
	}
}
