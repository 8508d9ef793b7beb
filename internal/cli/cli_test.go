package cli

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/forest-extract/internal/model"
)

// fakeOllama answers chats with one expected substring at temperature 0
// and two at any other temperature.
func fakeOllama(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			_, _ = w.Write([]byte(`{"models":[{"name":"llama3:8b","details":{"parameter_size":"8.0B"}}]}`))
		case "/api/chat":
			var req struct {
				Options map[string]float64 `json:"options"`
			}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))

			content := `[{"org": "HarperCollins UK"}]`
			if req.Options["temperature"] != 0 {
				content = `[{"org": "HarperCollins UK"}, {"postcode": "EC4Y 0DZ"}]`
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"message": map[string]string{"role": "assistant", "content": content},
				"done":    true,
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeTestConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "forest_extract.yaml")
	content := "run:\n  results_dir: " + filepath.Join(dir, "results") + "\n" +
		"store:\n  path: " + filepath.Join(dir, "history.db") + "\n" +
		"registry:\n  path: " + filepath.Join(dir, "default_models.json") + "\n" +
		"log:\n  level: error\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		cfgFile, urlOverride, outputOverride, registryOutput = "", "", "", ""
		discoverModels, failFast, noHistory = false, false, false
		excludeOverride, modelsOverride, temperaturesOverride = nil, nil, nil
	})
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRun_RequiresExactlyOneSuite(t *testing.T) {
	out, err := execute(t, "run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
	assert.Contains(t, out, "Usage:")

	_, err = execute(t, "run", "a.json", "b.json")
	require.Error(t, err)
}

func TestRun_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	srv := fakeOllama(t)
	cfgPath := writeTestConfig(t, dir)

	suitePath := filepath.Join(dir, "royalties.json")
	require.NoError(t, os.WriteFile(suitePath, []byte(`{
  "test_string": "Payments from HarperCollins UK, 1 London Bridge St, London EC4Y 0DZ",
  "test_cases": ["HarperCollins UK", "EC4Y 0DZ", "Rogers, Coleridge and White Ltd"],
  "models": [{"name": "llama3:8b", "parameter_size": "8.0B"}]
}`), 0644))

	out, err := execute(t, "run", suitePath, "--config", cfgPath, "--url", srv.URL)
	require.NoError(t, err)

	var rows []string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "llama3:8b") {
			rows = append(rows, line)
		}
	}
	require.Len(t, rows, 2)
	assert.Contains(t, rows[0], "1.0")
	assert.NotContains(t, rows[1], "1.0")
	assert.Contains(t, out, "Test Case Count")

	runDirs, err := filepath.Glob(filepath.Join(dir, "results", "royalties_*"))
	require.NoError(t, err)
	require.Len(t, runDirs, 1)
	runDir := runDirs[0]

	for _, name := range []string{
		"llama3:8b_temp_0.0_raw.json",
		"llama3:8b_temp_0.0.json",
		"llama3:8b_temp_1.0_raw.json",
		"llama3:8b_temp_1.0.json",
		"report.csv",
		"report.jsonl",
	} {
		assert.FileExists(t, filepath.Join(runDir, name))
	}

	f, err := os.Open(filepath.Join(runDir, "report.jsonl"))
	require.NoError(t, err)
	defer f.Close()

	var recs []model.ScoreRecord
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var rec model.ScoreRecord
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rec))
		recs = append(recs, rec)
	}
	require.Len(t, recs, 2)
	assert.Equal(t, 1, recs[0].TestCaseCount)
	assert.True(t, recs[0].ValidJSON)
	assert.Equal(t, 2, recs[1].TestCaseCount)
	assert.True(t, recs[1].ValidJSON)

	out, err = execute(t, "history", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "royalties")
	assert.Contains(t, out, runDir)
}

func TestGenerateModelsThenRunFromRegistry(t *testing.T) {
	dir := t.TempDir()
	srv := fakeOllama(t)
	cfgPath := writeTestConfig(t, dir)

	_, err := execute(t, "generate-models", "--config", cfgPath, "--url", srv.URL)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "default_models.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"parameter_size": "8.0B"`)

	suitePath := filepath.Join(dir, "minimal.yaml")
	require.NoError(t, os.WriteFile(suitePath, []byte("test_string: HarperCollins UK\ntest_cases: [HarperCollins UK]\n"), 0644))

	out, err := execute(t, "run", suitePath, "--config", cfgPath, "--url", srv.URL, "--no-history")
	require.NoError(t, err)
	assert.Contains(t, out, "8.0B")
}

func TestRun_SuiteModelsIgnoreExcludeFilters(t *testing.T) {
	dir := t.TempDir()
	srv := fakeOllama(t)
	cfgPath := writeTestConfig(t, dir)

	suitePath := filepath.Join(dir, "embeddings.yaml")
	require.NoError(t, os.WriteFile(suitePath, []byte(
		"test_string: HarperCollins UK\n"+
			"test_cases: [HarperCollins UK]\n"+
			"models: [{name: \"nomic-embed-text:latest\", parameter_size: 137M}]\n"), 0644))

	out, err := execute(t, "run", suitePath, "--config", cfgPath, "--url", srv.URL, "--no-history")
	require.NoError(t, err)
	assert.Contains(t, out, "nomic-embed-text:latest")
	assert.Contains(t, out, "137M")
}

func TestHistoryShow_UnknownRun(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir)

	_, err := execute(t, "history", "show", "does-not-exist", "--config", cfgPath)
	assert.Error(t, err)
}

func TestListModels(t *testing.T) {
	dir := t.TempDir()
	srv := fakeOllama(t)
	cfgPath := writeTestConfig(t, dir)

	out, err := execute(t, "list-models", "--config", cfgPath, "--url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "- llama3:8b (8.0B)")
}
