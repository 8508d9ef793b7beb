/*
PURPOSE:
  Provides a structured logger for Forest Extract.
  Wraps zap for consistent output.

REQUIREMENTS:
  User-specified:
  - "Sane" CLI output. Not spammy.

  Implementation-discovered:
  - Needs Debug/Info/Warn/Error levels selectable from config.
  - Interactive runs want console output; CI wants JSON lines
    (any format other than "console").

ARCHITECTURE INTEGRATION:
  - Used everywhere.
  - Initialized by internal/cli before any command runs.

ERROR HANDLING:
  - InitLogger returns an error for unknown levels; the no-op default stays in place.

USAGE:
  output.Logger.Infow("message", "key", "value")

RELATED FILES:
  - internal/config/config.go (LogConfig)
*/

package output

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the process-wide logger. It discards everything until
// InitLogger or SetLogger is called, which keeps tests quiet.
var Logger = zap.NewNop().Sugar()

// loggerConfig maps log.format to a zap config: "console" (or unset) is the
// development console encoder, anything else production JSON.
func loggerConfig(format string) zap.Config {
	if format == "" || format == "console" {
		zapCfg := zap.NewDevelopmentConfig()
		zapCfg.DisableStacktrace = true
		return zapCfg
	}
	return zap.NewProductionConfig()
}

// InitLogger builds a zap logger for the given level and format and
// installs it as Logger and as zap's global logger.
func InitLogger(level, format string) error {
	zapCfg := loggerConfig(format)

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return eris.Wrap(err, "output: parse log level")
	}
	zapCfg.Level.SetLevel(lvl)

	l, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "output: build logger")
	}
	zap.ReplaceGlobals(l)
	SetLogger(l.Sugar())
	return nil
}

// SetLogger allows overriding the default logger (e.g. for testing).
func SetLogger(l *zap.SugaredLogger) {
	Logger = l
}
