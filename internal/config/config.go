/*
PURPOSE:
  Defines the runner configuration and its loading logic for Forest Extract.
  Adheres to "Config IS Code" philosophy.

REQUIREMENTS:
  User-specified:
  - Allow configuration of the Ollama URL, timeouts and temperatures.

  Implementation-discovered:
  - Needs to support YAML parsing.
  - Needs to support Environment variables overrides (FOREST_...).
  - The benchmark suite itself lives in a separate document (see suite.go).

ARCHITECTURE INTEGRATION:
  - Used by: internal/cli, internal/engine
  - Dependencies: github.com/spf13/viper

ERROR HANDLING:
  - Returns explicit error if config file is invalid.
  - A missing default file is not an error; defaults apply.

IMPLEMENTATION RULES:
  - Struct tags support both yaml and mapstructure.
  - Defaults should be sensible (e.g., 120s load timeout).

USAGE:
  cfg, err := config.Load("forest_extract.yaml")

RELATED FILES:
  - internal/cli/root.go
  - internal/config/suite.go
*/

package config

import (
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
)

// Config represents the full configuration for Forest Extract.
type Config struct {
	Ollama   OllamaConfig   `yaml:"ollama" mapstructure:"ollama"`
	Run      RunConfig      `yaml:"run" mapstructure:"run"`
	Registry RegistryConfig `yaml:"registry" mapstructure:"registry"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// OllamaConfig configures the chat transport.
type OllamaConfig struct {
	URL string `yaml:"url" mapstructure:"url"`
	// LoadTimeout bounds the wait for the first response header, which is
	// where model loading happens.
	LoadTimeout time.Duration `yaml:"load_timeout" mapstructure:"load_timeout"`
	// Timeout bounds the whole request.
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
	KeepAlive  string        `yaml:"keep_alive" mapstructure:"keep_alive"`
	FormatJSON bool          `yaml:"format_json" mapstructure:"format_json"`
}

// RunConfig configures the benchmark loop.
type RunConfig struct {
	Temperatures []float64 `yaml:"temperatures" mapstructure:"temperatures"`
	ResultsDir   string    `yaml:"results_dir" mapstructure:"results_dir"`
	// Exclude is a list of strings to filter discovered and registry model
	// names (substring match)
	Exclude  []string `yaml:"exclude" mapstructure:"exclude"`
	FailFast bool     `yaml:"fail_fast" mapstructure:"fail_fast"`
	// ScoreExtracted scores answers that only the extraction heuristic can
	// read; by default only valid JSON answers are scored.
	ScoreExtracted bool `yaml:"score_extracted" mapstructure:"score_extracted"`
}

// RegistryConfig locates the default model registry document.
type RegistryConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// StoreConfig configures the run history database. An empty path disables it.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// defaultFiles are searched in order when no config path is given.
var defaultFiles = []string{"forest_extract.yaml", "runner.yaml"}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ollama.url", "http://localhost:11434")
	v.SetDefault("ollama.load_timeout", 120*time.Second)
	v.SetDefault("ollama.timeout", 300*time.Second)
	v.SetDefault("ollama.keep_alive", "5m")
	v.SetDefault("ollama.format_json", true)
	v.SetDefault("run.temperatures", []float64{0.0, 1.0})
	v.SetDefault("run.results_dir", "./results")
	v.SetDefault("run.exclude", []string{"embed"})
	v.SetDefault("run.fail_fast", false)
	v.SetDefault("run.score_extracted", false)
	v.SetDefault("registry.path", "default_models.json")
	v.SetDefault("store.path", "results/history.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Load reads configuration from a file and the environment.
// If path is specified, that file must exist.
// If path is empty, it searches for default files in order and falls back
// to defaults when none is found.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetEnvPrefix("FOREST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path == "" {
		for _, name := range defaultFiles {
			if _, err := os.Stat(name); err == nil {
				path = name
				break
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, eris.Wrapf(err, "config: read file %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if len(cfg.Run.Temperatures) == 0 {
		return nil, eris.New("config: run.temperatures must not be empty")
	}

	return &cfg, nil
}
