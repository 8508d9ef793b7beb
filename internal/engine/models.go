/*
PURPOSE:
  Model sources for a benchmark run.
  A run benchmarks a fixed list, the registry document, or whatever the
  Ollama host reports.

REQUIREMENTS:
  User-specified:
  - Suite models win over the registry document.
  - Skip embedding-only models when models are discovered.

  Implementation-discovered:
  - Exclude filters only apply to models nobody named explicitly
    (discovery, registry); a suite that lists a model gets it.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine (Runner), internal/cli
  - Uses: internal/config (registry document)

USAGE:
  src := engine.Filter(engine.RegistryFile{Path: "default_models.json"}, []string{"embed"})
  models, err := src.Models(ctx)
*/

package engine

import (
	"context"
	"strings"

	"github.com/daryltucker/forest-extract/internal/config"
	"github.com/daryltucker/forest-extract/internal/model"
	"github.com/daryltucker/forest-extract/internal/output"
)

// ModelSource supplies the models a run should benchmark.
type ModelSource interface {
	Models(ctx context.Context) ([]model.ModelSpec, error)
}

// StaticModels is a fixed model list, usually the suite's own.
type StaticModels []model.ModelSpec

// Models returns the list unchanged.
func (s StaticModels) Models(context.Context) ([]model.ModelSpec, error) {
	return s, nil
}

// RegistryFile reads models from a registry document on every call.
type RegistryFile struct {
	Path string
}

// Models loads the registry document.
func (r RegistryFile) Models(context.Context) ([]model.ModelSpec, error) {
	reg, err := config.LoadRegistry(r.Path)
	if err != nil {
		return nil, err
	}
	return reg.Models, nil
}

type filteredModels struct {
	src     ModelSource
	exclude []string
}

// Filter drops the models of src whose name matches one of the exclude
// filters. With no filters src is returned as is.
func Filter(src ModelSource, exclude []string) ModelSource {
	if len(exclude) == 0 {
		return src
	}
	return filteredModels{src: src, exclude: exclude}
}

func (f filteredModels) Models(ctx context.Context) ([]model.ModelSpec, error) {
	models, err := f.src.Models(ctx)
	if err != nil {
		return nil, err
	}

	kept := make([]model.ModelSpec, 0, len(models))
	for _, m := range models {
		if ex := Excluded(m.Name, f.exclude); ex != "" {
			output.Logger.Infow("Skipping model (excluded)", "model", m.Name, "filter", ex)
			continue
		}
		kept = append(kept, m)
	}
	return kept, nil
}

// Excluded reports the first exclude filter matching name
// (case-insensitive substring), or "" when none matches.
func Excluded(name string, exclude []string) string {
	lower := strings.ToLower(name)
	for _, ex := range exclude {
		if ex != "" && strings.Contains(lower, strings.ToLower(ex)) {
			return ex
		}
	}
	return ""
}
