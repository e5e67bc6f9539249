// Package logging builds the zerolog logger the CLI reports through.
// Progress and results go to stdout; structured log events go to stderr
// so report redirection stays clean.
package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = "info"

// New creates a console logger writing to w at the given level.
// Unknown level strings fall back to info rather than failing the run.
func New(w io.Writer, level string, noColor bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	console := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.Kitchen,
		NoColor:    noColor,
	}

	return zerolog.New(console).Level(lvl).With().Timestamp().Logger()
}

// Nop returns a disabled logger for tests and silent runs.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
