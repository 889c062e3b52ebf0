package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds a console logger writing to w. level is parsed into a
// zerolog level and defaults to InfoLevel on parse error.
func NewLogger(level string, w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	console := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(console).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

// OpenLogger builds the logger described by lc. Console output goes to w; when
// lc.File is set logs are appended to that file as JSON as well. The returned
// close function releases the file and is never nil.
func (lc LoggingConfig) OpenLogger(w io.Writer) (zerolog.Logger, func() error, error) {
	noop := func() error { return nil }
	if lc.File == "" {
		return NewLogger(lc.Level, w), noop, nil
	}

	f, err := os.OpenFile(lc.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return zerolog.Nop(), noop, fmt.Errorf("opening log file %s: %w", lc.File, err)
	}

	lvl, perr := zerolog.ParseLevel(lc.Level)
	if perr != nil || lc.Level == "" {
		lvl = zerolog.InfoLevel
	}
	multi := zerolog.MultiLevelWriter(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}, f)
	logger := zerolog.New(multi).
		Level(lvl).
		With().
		Timestamp().
		Logger()
	return logger, f.Close, nil
}
