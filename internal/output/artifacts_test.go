package output

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/forest-extract/internal/extract"
)

func TestFormatTemperature(t *testing.T) {
	assert.Equal(t, "0.0", FormatTemperature(0))
	assert.Equal(t, "1.0", FormatTemperature(1))
	assert.Equal(t, "0.7", FormatTemperature(0.7))
	assert.Equal(t, "1.25", FormatTemperature(1.25))
	assert.Equal(t, "0.0001", FormatTemperature(0.0001))
	assert.Equal(t, "1e-05", FormatTemperature(0.00001))
	assert.Equal(t, "1.5e-07", FormatTemperature(1.5e-7))
	assert.Equal(t, "1000000000000000.0", FormatTemperature(1e15))
	assert.Equal(t, "1e+16", FormatTemperature(1e16))
}

func TestArtifactWriter_Paths(t *testing.T) {
	w := NewArtifactWriter("results/suite_20240101-120000")

	assert.Equal(t, filepath.Join("results/suite_20240101-120000", "llama3:8b_temp_0.0_raw.json"), w.RawPath("llama3:8b", 0))
	assert.Equal(t, filepath.Join("results/suite_20240101-120000", "llama3:8b_temp_1.0.json"), w.EntitiesPath("llama3:8b", 1))
	assert.Equal(t, filepath.Join("results/suite_20240101-120000", "hf.co_org_model_temp_0.0_raw.json"), w.RawPath("hf.co/org/model", 0))
	assert.Equal(t, filepath.Join("results/suite_20240101-120000", "input_2", "m_temp_1.0.json"), w.ForInput(2).EntitiesPath("m", 1))
}

func TestArtifactWriter_WriteRawIsLiteral(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "run")
	w := NewArtifactWriter(root)

	content := "Sure!\n```json\n[{\"a\": \"<b>\"}]\n```"
	path, err := w.WriteRaw("qwen2.5:7b", 0, content)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestArtifactWriter_EntitiesRoundTrip(t *testing.T) {
	w := NewArtifactWriter(t.TempDir())

	res := extract.ExtractEntities("```json\n[{\"name\": \"HarperCollins UK\", \"amount\": 382.03, \"tags\": [\"<publisher>\", null]}]\n```")
	require.True(t, res.Success)

	path, err := w.WriteEntities("mistral", 1, res.Entities)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	back, err := extract.Decode(data)
	require.NoError(t, err)
	if diff := cmp.Diff(res.Entities, back); diff != "" {
		t.Errorf("entities changed after round trip (-want +got):\n%s", diff)
	}
}

func TestArtifactWriter_EntitiesIndentedWithFourSpaces(t *testing.T) {
	w := NewArtifactWriter(t.TempDir())

	path, err := w.WriteEntities("m", 0, map[string]any{"a": []any{"x"}})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"a\": [\n        \"x\"\n    ]\n}", string(data))
}

func TestArtifactWriter_Overwrites(t *testing.T) {
	w := NewArtifactWriter(t.TempDir())

	_, err := w.WriteRaw("m", 0, "first attempt, much longer")
	require.NoError(t, err)
	path, err := w.WriteRaw("m", 0, "second")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestArtifactWriter_WriteArchive(t *testing.T) {
	w := NewArtifactWriter(t.TempDir())

	path, err := w.WriteArchive("m", [][]string{{"a0", "a1"}, {"b0", "b1"}})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	back, err := extract.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, []any{[]any{"a0", "a1"}, []any{"b0", "b1"}}, back)
}

func TestArtifactWriter_UnwritableRoot(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	w := NewArtifactWriter(filepath.Join(blocker, "run"))
	_, err := w.WriteRaw("m", 0, "content")
	require.Error(t, err)

	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, w.RawPath("m", 0), ioErr.Path)
}
