/*
PURPOSE:
  Defines the root Cobra command for the Forest Extract CLI.
  Handles global flags, configuration loading and logger setup.

REQUIREMENTS:
  User-specified:
  - Provide a CLI interface.
  - Support global flags like --config.

  Implementation-discovered:
  - Needs to expose an Execute() function for main.go.
  - Ctrl-C should abort an in-flight chat call instead of waiting for it.

ARCHITECTURE INTEGRATION:
  - Called by: cmd/forest-extract/main.go
  - Calls: Child commands (run, list-models, generate-models, history)
  - Modifies: Global configuration state (loaded once, passed down).

ERROR HANDLING:
  - Returns error to main.go for exit code handling.

IMPLEMENTATION RULES:
  - Use `PersistentFlags()` for flags available to all subcommands.
  - Keep Run logic in subcommands, Root only loads config and logging.

RELATED FILES:
  - cmd/forest-extract/main.go
  - internal/config/config.go
*/

package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/daryltucker/forest-extract/internal/config"
	"github.com/daryltucker/forest-extract/internal/output"
)

var (
	// cfgFile stores the path to the config file (if specified via flag)
	cfgFile string
	// urlOverride replaces ollama.url for every command
	urlOverride string

	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "forest-extract",
		Short: "Entity-extraction benchmark for local Ollama models",
		Long: `Sends an entity-extraction prompt to local Ollama models at a fixed set of
temperatures and reports latency, JSON validity and how many expected
substrings each answer contains. Use 'run --help' for benchmark options.`,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load(cfgFile)
			if err != nil {
				return eris.Wrap(err, "load config")
			}
			if urlOverride != "" {
				c.Ollama.URL = urlOverride
			}
			cfg = c

			if err := output.InitLogger(cfg.Log.Level, cfg.Log.Format); err != nil {
				return eris.Wrap(err, "init logger")
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = zap.L().Sync()
		},
	}
)

// Execute executes the root command. An interrupt cancels the command's context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./forest_extract.yaml or ./runner.yaml)")
	rootCmd.PersistentFlags().StringVar(&urlOverride, "url", "", "Ollama URL (overrides ollama.url)")
}
