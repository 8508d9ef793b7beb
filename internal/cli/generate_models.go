/*
PURPOSE:
  Defines the 'generate-models' subcommand.
  Writes the default model registry from the Ollama host's installed models.

ARCHITECTURE INTEGRATION:
  - Calls: internal/engine.ListModels(), internal/config.WriteRegistry()

USAGE:
  forest-extract generate-models -o default_models.json
*/

package cli

import (
	"github.com/spf13/cobra"

	"github.com/daryltucker/forest-extract/internal/config"
	"github.com/daryltucker/forest-extract/internal/engine"
	"github.com/daryltucker/forest-extract/internal/output"
)

var registryOutput string

var generateModelsCmd = &cobra.Command{
	Use:   "generate-models",
	Short: "Write the default model registry from the models installed on the Ollama host",
	Long: `Queries the Ollama host for installed models and writes them, with their
declared parameter size ("unknown" when absent), to the registry document used
by 'run' when a suite lists no models.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.Registry.Path
		if registryOutput != "" {
			path = registryOutput
		}

		models, err := engine.New(cfg.Ollama).ListModels(cmd.Context())
		if err != nil {
			return err
		}

		if err := config.WriteRegistry(path, &config.Registry{Models: models}); err != nil {
			return err
		}
		output.Logger.Infow("Wrote model registry", "path", path, "models", len(models))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateModelsCmd)
	generateModelsCmd.Flags().StringVarP(&registryOutput, "output", "o", "", "Registry file to write (default from config: default_models.json)")
}
