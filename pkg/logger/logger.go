// Package logger wraps zerolog so every command logs the same way.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config selects output format, level and an optional log file.
type Config struct {
	Format string // console (human readable) or json
	Level  string // trace, debug, info, warn, error
	File   string // when set, every entry is also appended here as JSON

	// Out is the primary destination. Nil means stderr, which keeps stdout
	// free for exported documents.
	Out io.Writer
}

// Logger is a thin wrapper over zerolog.
type Logger struct {
	zl   zerolog.Logger
	file *os.File
}

// New builds a structured logger and installs it as the zerolog global.
func New(cfg Config) (*Logger, error) {
	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}
	var w io.Writer = out
	if !strings.EqualFold(cfg.Format, "json") {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	l := &Logger{}
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		l.file = f
		w = zerolog.MultiLevelWriter(w, f)
	}

	l.zl = zerolog.New(w).Level(ParseLevel(cfg.Level)).With().Timestamp().Logger()
	log.Logger = l.zl
	return l, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// ParseLevel maps a level name to a zerolog level. Unknown names are info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *Logger) Trace() *zerolog.Event { return l.zl.Trace() }
func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }

// With creates a child logger context with fixed fields.
func (l *Logger) With() zerolog.Context { return l.zl.With() }

// Zerolog returns the underlying logger for packages that take one directly.
func (l *Logger) Zerolog() *zerolog.Logger { return &l.zl }

// HasFile reports whether the logger still holds its log file open.
func (l *Logger) HasFile() bool { return l.file != nil }

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
