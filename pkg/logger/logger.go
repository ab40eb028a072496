package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global logger for a server process: human readable on
// stderr in development, JSON otherwise.
func Init(env string) {
	InitWithWriter(env, os.Stderr)
}

// InitWithWriter is Init with an explicit destination.
func InitWithWriter(env string, out io.Writer) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if env == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: out, NoColor: out != os.Stderr})
	} else {
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
	}

	zerolog.SetGlobalLevel(levelFromEnv(zerolog.InfoLevel))
}

// InitFile sends logs to a file. The console uses it so log lines never
// corrupt the terminal UI. The caller closes the returned file.
func InitFile(env, path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	InitWithWriter(env, f)
	return f, nil
}

func levelFromEnv(fallback zerolog.Level) zerolog.Level {
	raw := os.Getenv("LOG_LEVEL")
	if raw == "" {
		return fallback
	}
	lvl, err := zerolog.ParseLevel(raw)
	if err != nil {
		return fallback
	}
	return lvl
}
