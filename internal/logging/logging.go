// Package logging builds the zerolog loggers used by the CLI and the
// resolution orchestrator.
package logging

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New returns a console logger tagged with app that writes to w at the
// given level. An unrecognized level falls back to info.
func New(app, level string, w io.Writer) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).Level(ParseLevel(level)).With().Timestamp().Str("app", app).Logger()
}

// ParseLevel maps a level name to a zerolog level. Empty or unknown names
// yield info.
func ParseLevel(level string) zerolog.Level {
	l, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}
