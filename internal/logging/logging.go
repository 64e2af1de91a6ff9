package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

const permission = 0o600

type Config struct {
	// Path is the log file. Empty means discard.
	Path  string
	Debug bool
}

// Setup opens the log file and returns a logger writing JSON lines to it.
// The TUI owns stdout, so nothing is ever written there. On error a no-op
// logger is returned alongside the error so callers can keep going.
func Setup(cfg Config) (zerolog.Logger, func() error, error) {
	noop := func() error { return nil }
	if cfg.Path == "" {
		return zerolog.Nop(), noop, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return zerolog.Nop(), noop, err
	}
	f, err := os.OpenFile(cfg.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
	if err != nil {
		return zerolog.Nop(), noop, err
	}

	l := New(zerolog.SyncWriter(f), cfg.Debug)
	l.Info().Str("path", cfg.Path).Bool("debug", cfg.Debug).Msg("logger.initialized")
	return l, f.Close, nil
}

// New builds a logger over w.
func New(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
