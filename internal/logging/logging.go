// Package logging builds the application logger and the diagnostics channel
// that receives solve input and timing records.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// MetricsPrefix tags records on the diagnostics channel.
const MetricsPrefix = "metrics"

type Options struct {
	Level log.Level
	// File, when set, receives the log instead of Writer.
	File string
	JSON bool
	// Writer defaults to stderr.
	Writer io.Writer
}

// New returns a logger and a closer for the underlying file, if any.
func New(opts Options) (*log.Logger, io.Closer, error) {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		w, closer = f, f
	}

	lo := log.Options{
		Level:           opts.Level,
		ReportTimestamp: opts.File != "" || opts.JSON,
		TimeFormat:      time.RFC3339,
	}
	if opts.JSON {
		lo.Formatter = log.JSONFormatter
	}
	return log.NewWithOptions(w, lo), closer, nil
}

// Metrics derives the diagnostics channel from l.
func Metrics(l *log.Logger) *log.Logger {
	return l.WithPrefix(MetricsPrefix)
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// LevelFromVerbosity maps a repeated -v count onto a level: 0 warn, 1 info,
// 2 or more debug. quiet wins and selects error.
func LevelFromVerbosity(v int, quiet bool) log.Level {
	switch {
	case quiet:
		return log.ErrorLevel
	case v >= 2:
		return log.DebugLevel
	case v == 1:
		return log.InfoLevel
	default:
		return log.WarnLevel
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
