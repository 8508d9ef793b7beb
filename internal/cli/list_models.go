/*
PURPOSE:
  Defines the 'list-models' subcommand.
  Helps debug connectivity and model discovery.

ARCHITECTURE INTEGRATION:
  - Calls: internal/engine.ListModels()

USAGE:
  forest-extract list-models --url http://gpu-box:11434
*/

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daryltucker/forest-extract/internal/engine"
)

var listModelsCmd = &cobra.Command{
	Use:   "list-models",
	Short: "List models installed on the Ollama host",
	RunE: func(cmd *cobra.Command, args []string) error {
		e := engine.New(cfg.Ollama)

		fmt.Fprintf(cmd.OutOrStdout(), "Querying %s...\n", cfg.Ollama.URL)
		models, err := e.ListModels(cmd.Context())
		if err != nil {
			return err
		}
		for _, m := range models {
			fmt.Fprintf(cmd.OutOrStdout(), "- %s (%s)\n", m.Name, m.ParameterSize)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listModelsCmd)
}
