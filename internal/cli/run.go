/*
PURPOSE:
  Defines the 'run' subcommand.
  Executes one benchmark suite and prints the sorted report.

REQUIREMENTS:
  User-specified:
  - Exactly one argument: the suite document.
  - Models come from the suite, else from the default registry document.

  Implementation-discovered:
  - Need to load config first.
  - Apply flag overrides to config.
  - Every run gets its own timestamped directory.

ARCHITECTURE INTEGRATION:
  - Calls: internal/engine.Runner.Run()
  - Uses: internal/config, internal/output, internal/store

ERROR HANDLING:
  - Returns error if the suite cannot be loaded or the run aborts.
  - The report collected so far is still printed when the run aborts.

USAGE:
  forest-extract run suites/royalties.json
*/

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/daryltucker/forest-extract/internal/config"
	"github.com/daryltucker/forest-extract/internal/engine"
	"github.com/daryltucker/forest-extract/internal/model"
	"github.com/daryltucker/forest-extract/internal/output"
	"github.com/daryltucker/forest-extract/internal/store"
)

var (
	outputOverride       string
	excludeOverride      []string
	modelsOverride       []string
	temperaturesOverride []float64
	discoverModels       bool
	failFast             bool
	noHistory            bool
)

var runCmd = &cobra.Command{
	Use:   "run <suite-file>",
	Short: "Run an entity-extraction benchmark suite",
	Long: `Runs a benchmark suite against Ollama models.
For every model, every test_string input and every temperature:
1. The extraction prompt is sent and the chat call is timed.
2. The raw answer is checked for JSON validity and saved.
3. Entities are extracted (json code fences and json...<|end-output|> are tolerated)
   and saved, and the expected test_cases are counted in the answer.

Models are taken from --models, then the suite's "models", then --discover,
then the registry document (see generate-models). The report is sorted by
test case count.`,
	Example: `  # Run a suite with the models listed in default_models.json
  forest-extract run suites/royalties.json

  # Run only specific models at three temperatures
  forest-extract run suites/royalties.json --models qwen2.5:7b,llama3.1:8b --temperatures 0,0.5,1

  # Ask the Ollama host which models exist instead of reading the registry
  forest-extract run suites/royalties.yaml --discover --exclude vision`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		suitePath := args[0]

		// 1. Load Suite
		suite, err := config.LoadSuite(suitePath)
		if err != nil {
			return err
		}

		// 2. Overrides
		if outputOverride != "" {
			cfg.Run.ResultsDir = outputOverride
		}
		if len(excludeOverride) > 0 {
			cfg.Run.Exclude = excludeOverride
		}
		if len(temperaturesOverride) > 0 {
			cfg.Run.Temperatures = temperaturesOverride
		}
		if failFast {
			cfg.Run.FailFast = true
		}

		e := engine.New(cfg.Ollama)
		dir := filepath.Join(cfg.Run.ResultsDir, fmt.Sprintf("%s_%s", config.SuiteName(suitePath), time.Now().Format("20060102-150405")))
		if err := os.MkdirAll(dir, 0755); err != nil {
			return eris.Wrapf(err, "failed to create output directory %s", dir)
		}

		// 3. Sinks
		csvWriter, err := output.NewCSVWriter(filepath.Join(dir, "report.csv"))
		if err != nil {
			return err
		}
		defer csvWriter.Close()

		jsonWriter, err := output.NewJSONWriter(filepath.Join(dir, "report.jsonl"))
		if err != nil {
			return err
		}
		defer jsonWriter.Close()

		sinks := []engine.Sink{csvWriter, jsonWriter}
		if cfg.Store.Path != "" && !noHistory {
			st, runID, err := openHistory(cmd.Context(), config.SuiteName(suitePath), dir)
			if err != nil {
				return err
			}
			defer st.Close()
			sinks = append(sinks, st.Recorder(cmd.Context(), runID))
			output.Logger.Infow("Recording history", "run_id", runID, "db", cfg.Store.Path)
		}

		// 4. Execution
		report := output.NewReport()
		runner := &engine.Runner{
			Chat:            e,
			Models:          modelSource(suite, e),
			Artifacts:       output.NewArtifactWriter(dir),
			Report:          report,
			Sinks:           sinks,
			Temperatures:    cfg.Run.Temperatures,
			Inputs:          suite.TestString.Values,
			MultiInput:      suite.TestString.List,
			TestCases:       suite.TestCases,
			MessageTemplate: suite.MessageTemplate,
			FailFast:        cfg.Run.FailFast,
			ScoreExtracted:  cfg.Run.ScoreExtracted,
		}

		output.Logger.Infow("Starting benchmark", "suite", suitePath, "dir", dir, "temperatures", cfg.Run.Temperatures)
		runErr := runner.Run(cmd.Context())

		// 5. Report
		report.Sort()
		if err := report.Render(cmd.OutOrStdout()); err != nil {
			return err
		}
		return runErr
	},
}

// modelSource picks where models come from; the first configured source wins.
// Exclude filters apply only to discovered and registry models.
func modelSource(suite *config.Suite, e *engine.Engine) engine.ModelSource {
	switch {
	case len(modelsOverride) > 0:
		specs := make([]model.ModelSpec, 0, len(modelsOverride))
		for _, name := range modelsOverride {
			specs = append(specs, model.ModelSpec{Name: name, ParameterSize: "unknown"})
		}
		return engine.StaticModels(specs)
	case len(suite.Models) > 0:
		return engine.StaticModels(suite.Models)
	case discoverModels:
		return engine.Filter(e, cfg.Run.Exclude)
	default:
		return engine.Filter(engine.RegistryFile{Path: cfg.Registry.Path}, cfg.Run.Exclude)
	}
}

func openHistory(ctx context.Context, suite, dir string) (*store.SQLiteStore, string, error) {
	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, "", err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, "", err
	}
	run, err := st.CreateRun(ctx, suite, dir)
	if err != nil {
		st.Close()
		return nil, "", err
	}
	return st, run.ID, nil
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&outputOverride, "output-dir", "o", "", "Directory that receives the per-run result directories")
	runCmd.Flags().StringSliceVar(&excludeOverride, "exclude", nil, "Comma-separated list of substrings to exclude from model names")
	runCmd.Flags().StringSliceVar(&modelsOverride, "models", nil, "Comma-separated list of specific models to run (skips suite models and registry)")
	runCmd.Flags().Float64SliceVar(&temperaturesOverride, "temperatures", nil, "Comma-separated list of temperatures (default from config: 0,1)")
	runCmd.Flags().BoolVar(&discoverModels, "discover", false, "Query the Ollama host for models when the suite lists none")
	runCmd.Flags().BoolVar(&failFast, "fail-fast", false, "Abort on the first failed chat call")
	runCmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record this run in the history database")
}
