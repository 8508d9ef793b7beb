/*
PURPOSE:
  Persists per-run artifacts: the raw model response and, when extraction
  succeeded, the extracted entities as pretty-printed JSON.

REQUIREMENTS:
  User-specified:
  - Raw response at {root}/{model}_temp_{temperature}_raw.json (literal text).
  - Entities at {root}/{model}_temp_{temperature}.json (4-space indent).

  Implementation-discovered:
  - Temperatures must render as 0.0 / 1.0 so names match earlier result sets.
  - Model names like "library/llama3:8b" would otherwise escape the root.
  - Multi-input runs need one directory per input plus a shared archive.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine (Runner)

ERROR HANDLING:
  - Every filesystem failure is returned as *IOError; nothing is retried.

IMPLEMENTATION RULES:
  - Create the root lazily on first write.
  - Overwrite existing files.

RELATED FILES:
  - internal/engine/runner.go
*/

package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// IOError reports an artifact that could not be written.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("write artifact %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ArtifactWriter writes run artifacts below Root.
type ArtifactWriter struct {
	Root string
}

// NewArtifactWriter returns a writer rooted at dir.
func NewArtifactWriter(dir string) *ArtifactWriter {
	return &ArtifactWriter{Root: dir}
}

// ForInput returns a writer for the i-th input of a multi-input request.
func (w *ArtifactWriter) ForInput(i int) *ArtifactWriter {
	return &ArtifactWriter{Root: filepath.Join(w.Root, fmt.Sprintf("input_%d", i))}
}

// RawPath is where the raw response for (modelName, temperature) is kept.
func (w *ArtifactWriter) RawPath(modelName string, temperature float64) string {
	return filepath.Join(w.Root, fmt.Sprintf("%s_temp_%s_raw.json", safeName(modelName), FormatTemperature(temperature)))
}

// EntitiesPath is where the extracted entities for (modelName, temperature) are kept.
func (w *ArtifactWriter) EntitiesPath(modelName string, temperature float64) string {
	return filepath.Join(w.Root, fmt.Sprintf("%s_temp_%s.json", safeName(modelName), FormatTemperature(temperature)))
}

// ArchivePath is the shared raw-response archive of a multi-input request.
func (w *ArtifactWriter) ArchivePath(modelName string) string {
	return filepath.Join(w.Root, fmt.Sprintf("%s_archive_raw.json", safeName(modelName)))
}

// WriteRaw stores content verbatim.
func (w *ArtifactWriter) WriteRaw(modelName string, temperature float64, content string) (string, error) {
	path := w.RawPath(modelName, temperature)
	return path, w.write(path, []byte(content))
}

// WriteEntities stores entities as JSON indented with four spaces.
func (w *ArtifactWriter) WriteEntities(modelName string, temperature float64, entities any) (string, error) {
	path := w.EntitiesPath(modelName, temperature)
	data, err := marshalIndent(entities)
	if err != nil {
		return path, &IOError{Path: path, Err: err}
	}
	return path, w.write(path, data)
}

// WriteArchive stores every raw response of a multi-input request, one
// list per input in temperature order.
func (w *ArtifactWriter) WriteArchive(modelName string, responses [][]string) (string, error) {
	path := w.ArchivePath(modelName)
	data, err := marshalIndent(responses)
	if err != nil {
		return path, &IOError{Path: path, Err: err}
	}
	return path, w.write(path, data)
}

func (w *ArtifactWriter) write(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &IOError{Path: path, Err: eris.Wrap(err, "output: create artifact directory")}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &IOError{Path: path, Err: eris.Wrap(err, "output: write artifact")}
	}
	return nil
}

func marshalIndent(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return nil, eris.Wrap(err, "output: encode json")
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// FormatTemperature renders a temperature the way result file names have
// always spelled it: the shortest decimal that round-trips, whole numbers
// keep a trailing ".0", and exponents below -4 or from 16 up use
// scientific notation ("1e-05", "1e+16").
func FormatTemperature(t float64) string {
	sci := strconv.FormatFloat(t, 'e', -1, 64)
	if i := strings.LastIndexByte(sci, 'e'); i >= 0 {
		if exp, err := strconv.Atoi(sci[i+1:]); err == nil && t != 0 && (exp < -4 || exp >= 16) {
			return sci
		}
	}

	s := strconv.FormatFloat(t, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

var nameReplacer = strings.NewReplacer("/", "_", "\\", "_")

func safeName(name string) string {
	return nameReplacer.Replace(name)
}
