/*
PURPOSE:
  Suite and model registry documents.

REQUIREMENTS:
  User-specified:
  - test_string is a single string or a list of strings.
  - Registry documents are JSON indented with four spaces.

  Implementation-discovered:
  - yaml.v3 reads both JSON and YAML suites.

ERROR HANDLING:
  - A suite without test_string is rejected at load time.

USAGE:
  suite, err := config.LoadSuite("suites/royalties.json")
*/

package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/daryltucker/forest-extract/internal/model"
)

// Suite is a benchmark suite document: what to send, what to look for
// and, optionally, which models to use.
type Suite struct {
	TestString      TestInput         `yaml:"test_string"`
	TestCases       []string          `yaml:"test_cases"`
	Models          []model.ModelSpec `yaml:"models"`
	MessageTemplate string            `yaml:"message_template"`
}

// TestInput is either a single string or a list of strings.
type TestInput struct {
	Values []string
	// List records whether the document used the list form.
	List bool
}

// UnmarshalYAML accepts a scalar or a sequence of scalars.
func (t *TestInput) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		t.Values, t.List = []string{s}, false
		return nil
	case yaml.SequenceNode:
		var ss []string
		if err := node.Decode(&ss); err != nil {
			return err
		}
		t.Values, t.List = ss, true
		return nil
	default:
		return eris.Errorf("config: test_string must be a string or a list of strings (line %d)", node.Line)
	}
}

// Registry is the default model registry document.
type Registry struct {
	Models []model.ModelSpec `yaml:"models" json:"models"`
}

// LoadSuite reads a suite document. JSON and YAML are both accepted.
func LoadSuite(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "config: read suite %s", path)
	}

	var s Suite
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, eris.Wrapf(err, "config: parse suite %s", path)
	}

	if len(s.TestString.Values) == 0 {
		return nil, eris.Errorf("config: suite %s has no test_string", path)
	}
	return &s, nil
}

// LoadRegistry reads a model registry document.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "config: read registry %s", path)
	}

	var r Registry
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, eris.Wrapf(err, "config: parse registry %s", path)
	}
	return &r, nil
}

// SuiteName is the suite file name up to its first dot, as used in run
// directory names.
func SuiteName(path string) string {
	base := filepath.Base(path)
	if i := strings.Index(base, "."); i >= 0 {
		return base[:i]
	}
	return base
}

// WriteRegistry stores the registry document as JSON indented with four
// spaces, creating parent directories as needed.
func WriteRegistry(path string, r *Registry) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return eris.Wrapf(err, "config: create registry directory %s", dir)
		}
	}

	if r.Models == nil {
		r.Models = []model.ModelSpec{}
	}
	data, err := json.MarshalIndent(r, "", "    ")
	if err != nil {
		return eris.Wrap(err, "config: encode registry")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return eris.Wrapf(err, "config: write registry %s", path)
	}
	return nil
}
