package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init initializes the global logger with configuration from environment variables.
// LAPSE_LOG_LEVEL controls the log level: debug, info, warn, error (default: info)
//
// Logs go to stderr so that prompts and inline images on stdout are never
// interleaved with structured output.
func Init() {
	InitWriter(os.Stderr)
}

// InitWriter is Init with an explicit destination.
func InitWriter(w io.Writer) {
	zerolog.SetGlobalLevel(ParseLevel(os.Getenv("LAPSE_LOG_LEVEL")))
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w})
}

// ParseLevel maps a LAPSE_LOG_LEVEL value to a zerolog level.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
