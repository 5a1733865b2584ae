package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init installs the global logger on stderr. format is "console" or "json".
func Init(verbose bool, format string) {
	zerolog.TimeFieldFormat = time.RFC3339

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Logger = NewLogger(format, os.Stderr)
}

// NewLogger builds a timestamped logger writing to w.
func NewLogger(format string, w io.Writer) zerolog.Logger {
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		return zerolog.New(w).With().Timestamp().Logger()
	}
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
	}
	return zerolog.New(output).With().Timestamp().Logger()
}

// WithComponent creates a logger with a component field
func WithComponent(component string) zerolog.Logger {
	return log.Logger.With().Str("component", component).Logger()
}

// Logf adapts a logger to the printf-style hook used by the pipeline.
func Logf(l zerolog.Logger) func(format string, args ...any) {
	return func(format string, args ...any) {
		l.Info().Msg(fmt.Sprintf(format, args...))
	}
}
