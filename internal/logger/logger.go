// Package logger builds the zerolog loggers used across the daemon and the
// store. Console output is human readable; everything else is JSON.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

const timeFormat = "2006-01-02T15:04:05.000Z07:00"

// Config selects level and sinks
type Config struct {
	Level   string `yaml:"level"`
	Console bool   `yaml:"console"`
	File    string `yaml:"file"` // optional JSON log file, appended to
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New builds a logger writing to stdout and, when cfg.File is set, to that
// file as well. The returned closer releases the file.
func New(cfg Config) (zerolog.Logger, io.Closer, error) {
	var stdout io.Writer = os.Stdout
	if cfg.Console {
		stdout = console(os.Stdout)
	}
	if cfg.File == "" {
		return build(cfg, stdout), nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("failed to open log file: %w", err)
	}
	return build(cfg, zerolog.MultiLevelWriter(stdout, zerolog.SyncWriter(f))), f, nil
}

// NewWriter builds a logger on w, for tests and embedding
func NewWriter(cfg Config, w io.Writer) zerolog.Logger {
	if cfg.Console {
		w = console(w)
	}
	return build(cfg, w)
}

func console(w io.Writer) io.Writer {
	return zerolog.ConsoleWriter{Out: w, TimeFormat: timeFormat}
}

func build(cfg Config, w io.Writer) zerolog.Logger {
	zerolog.ErrorFieldName = "err"
	return zerolog.New(w).
		Level(ParseLevel(cfg.Level, zerolog.InfoLevel)).
		With().
		Timestamp().
		Logger()
}

// ParseLevel maps a level name to a zerolog level, def when unknown
func ParseLevel(s string, def zerolog.Level) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN", "WARNING":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	case "OFF", "DISABLED":
		return zerolog.Disabled
	}
	return def
}
