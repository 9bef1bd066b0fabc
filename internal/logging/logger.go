// Package logging wraps zerolog with subsystem-scoped child loggers.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Console styles accepted by NewStyled.
const (
	StylePretty = "pretty"
	StyleJSON   = "json"
)

// Logger is a thin handle over a zerolog.Logger.
type Logger struct {
	zl zerolog.Logger
}

// New creates a root logger writing to w at the given level.
// A nil writer means pretty console output on stderr.
func New(w io.Writer, level string) *Logger {
	return NewStyled(w, level, StylePretty)
}

// NewStyled is New with an explicit console style. The style only applies
// when w is nil; an explicit writer always receives JSON lines.
func NewStyled(w io.Writer, level, style string) *Logger {
	if w == nil {
		if style == StyleJSON {
			w = os.Stderr
		} else {
			w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		}
	}
	zl := zerolog.New(w).With().Timestamp().Logger().Level(ParseLevel(level))
	return &Logger{zl: zl}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// Sub returns a child logger tagged with a subsystem name.
func (l *Logger) Sub(subsystem string) *Logger {
	return &Logger{zl: l.zl.With().Str("subsystem", subsystem).Logger()}
}

// With returns a child logger carrying an extra string field.
func (l *Logger) With(key, value string) *Logger {
	return &Logger{zl: l.zl.With().Str(key, value).Logger()}
}

func (l *Logger) Trace() *zerolog.Event { return l.zl.Trace() }
func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }

// Zerolog returns the underlying zerolog.Logger.
func (l *Logger) Zerolog() zerolog.Logger { return l.zl }

// ParseLevel maps a config level name to a zerolog level. Unknown names,
// including the empty string, fall back to info. Matching ignores case.
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
	case "fatal":
		return zerolog.FatalLevel
	case "silent":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
