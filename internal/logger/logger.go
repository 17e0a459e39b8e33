package logger

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// New builds the root logger. The logger is constructed before the config,
// so .env is loaded here too for LOG_LEVEL to take effect.
func New() zerolog.Logger {
	_ = godotenv.Load()
	level := zerolog.InfoLevel
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if parsed, err := zerolog.ParseLevel(v); err == nil {
			level = parsed
		}
	}
	return SetLevel(level)
}

func SetLevel(level zerolog.Level) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Caller().
		Logger()

	logger = logger.Level(level)

	return logger
}

// Component returns a child logger tagged with the component name.
func Component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}

var Module = fx.Provide(New)
