package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/forest-extract/internal/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadSuite_JSONSingleString(t *testing.T) {
	path := writeFile(t, "royalties.json", `{
  "test_string": "Payments from Hodder and Stoughton UK, received £439.82",
  "test_cases": ["Hodder and Stoughton UK", "EC4Y 0DZ"],
  "models": [{"name": "llama3:8b", "parameter_size": "8.0B"}]
}`)

	s, err := LoadSuite(path)
	require.NoError(t, err)

	assert.False(t, s.TestString.List)
	assert.Equal(t, []string{"Payments from Hodder and Stoughton UK, received £439.82"}, s.TestString.Values)
	assert.Equal(t, []string{"Hodder and Stoughton UK", "EC4Y 0DZ"}, s.TestCases)
	assert.Equal(t, []model.ModelSpec{{Name: "llama3:8b", ParameterSize: "8.0B"}}, s.Models)
}

func TestLoadSuite_YAMLList(t *testing.T) {
	path := writeFile(t, "multi.yaml", `
test_string:
  - first input
  - second input
test_cases: [first]
message_template: "List every entity in: {input}"
`)

	s, err := LoadSuite(path)
	require.NoError(t, err)

	assert.True(t, s.TestString.List)
	assert.Equal(t, []string{"first input", "second input"}, s.TestString.Values)
	assert.Empty(t, s.Models)
	assert.Equal(t, "List every entity in: {input}", s.MessageTemplate)
}

func TestLoadSuite_RejectsMapping(t *testing.T) {
	path := writeFile(t, "bad.yaml", "test_string:\n  a: b\ntest_cases: []\n")
	_, err := LoadSuite(path)
	assert.Error(t, err)
}

func TestLoadSuite_RequiresTestString(t *testing.T) {
	path := writeFile(t, "empty.json", `{"test_cases": ["x"]}`)
	_, err := LoadSuite(path)
	assert.Error(t, err)
}

func TestRegistryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "default_models.json")
	in := &Registry{Models: []model.ModelSpec{
		{Name: "qwen2.5:7b", ParameterSize: "7.6B"},
		{Name: "custom:latest", ParameterSize: "unknown"},
	}}

	require.NoError(t, WriteRegistry(path, in))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n    \"models\": [")

	out, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, in.Models, out.Models)
}

func TestSuiteName(t *testing.T) {
	assert.Equal(t, "royalties", SuiteName("configs/royalties.json"))
	assert.Equal(t, "royalties", SuiteName("royalties.v2.yaml"))
	assert.Equal(t, "noext", SuiteName("/tmp/noext"))
}
